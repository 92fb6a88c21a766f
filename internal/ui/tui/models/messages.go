package models

import "github.com/PizzaHomicide/clipreel/internal/playback"

// SnapshotMsg carries a new session state from the playback loop
type SnapshotMsg struct {
	Snapshot playback.Snapshot
}

// SnapshotsClosedMsg is sent when the snapshot subscription ends
type SnapshotsClosedMsg struct{}

// CommandErrorMsg is sent when a transport command is rejected or fails
type CommandErrorMsg struct {
	Action string
	Error  error
}
