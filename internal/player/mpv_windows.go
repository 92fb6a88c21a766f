//go:build windows

package player

import (
	"context"
	"fmt"

	"github.com/PizzaHomicide/clipreel/internal/log"
	"gopkg.in/natefinch/npipe.v2"
)

// Connect establishes a connection with MPV for Windows
func (c *MPVIPCClient) Connect(ctx context.Context) error {
	log.Debug("Connecting to Windows named pipe", "path", c.socketPath)

	conn, err := npipe.Dial(c.socketPath)
	if err != nil {
		return fmt.Errorf("failed to connect to MPV pipe: %w", err)
	}

	c.attach(conn)
	return nil
}

// socketPathFor returns a per-process named pipe for the given player role
func socketPathFor(role, suffix string) string {
	return fmt.Sprintf(`\\.\pipe\clipreel-%s-%s`, role, suffix)
}
