//go:build windows

package player

import (
	"os/exec"
	"syscall"
)

// setupPlayerProcess detaches mpv from the console running the TUI
func setupPlayerProcess(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{
		CreationFlags: syscall.CREATE_NEW_PROCESS_GROUP,
	}
}
