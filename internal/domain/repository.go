package domain

import "context"

// PlaylistSaver is the sink the orchestrator writes reordered playlists to
type PlaylistSaver interface {
	Save(ctx context.Context, playlist *Playlist) error
}

// PlaylistRepository defines the interface for playlist persistence
type PlaylistRepository interface {
	PlaylistSaver

	// List returns every stored playlist ordered by name
	List(ctx context.Context) ([]*Playlist, error)

	// Load returns the playlist with exactly the given name
	Load(ctx context.Context, name string) (*Playlist, error)

	// Find returns playlists whose name fuzzily matches the query, best match first
	Find(ctx context.Context, query string) ([]*Playlist, error)
}
