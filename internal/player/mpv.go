package player

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"time"

	"github.com/PizzaHomicide/clipreel/internal/log"
)

const (
	connectAttempts = 20
	connectDelay    = 250 * time.Millisecond
	connectTimeout  = 10 * time.Second
	commandTimeout  = time.Second
)

// MPVOptions configures how an mpv process is launched
type MPVOptions struct {
	// Path to the mpv binary.  Defaults to "mpv".
	Path string
	// Args are extra command line arguments, parsed with ParseArgs
	Args string
	// Role names the instance ("video", "audio") and ends up in its socket path
	Role string
	// NoVideo starts mpv as a headless audio player
	NoVideo bool
}

// mpvProcess owns one idle mpv instance and the IPC connection to it
type mpvProcess struct {
	opts       MPVOptions
	socketPath string
	cmd        *exec.Cmd
	exited     chan struct{}
	ipc        *MPVIPCClient
}

func newMPVProcess(opts MPVOptions) *mpvProcess {
	suffix := make([]byte, 4)
	if _, err := rand.Read(suffix); err != nil {
		// Fall back to the pid, which is unique enough for a single user session
		suffix = []byte(fmt.Sprintf("%d", os.Getpid()))
	}
	socketPath := socketPathFor(opts.Role, hex.EncodeToString(suffix))
	return &mpvProcess{
		opts:       opts,
		socketPath: socketPath,
		ipc:        NewMPVIPCClient(socketPath),
		exited:     make(chan struct{}),
	}
}

// args builds the mpv command line for an idle instance controlled entirely over IPC
func (p *mpvProcess) args() []string {
	args := []string{
		"--no-terminal",
		"--idle=yes",
		"--keep-open=no",
		"--input-ipc-server=" + p.socketPath,
	}
	if p.opts.NoVideo {
		args = append(args, "--no-video", "--force-window=no")
	} else {
		args = append(args, "--force-window=yes", "--title=clipreel")
	}
	if p.opts.Args != "" {
		args = append(args, ParseArgs(p.opts.Args)...)
	}
	return args
}

// start launches mpv, connects to its IPC socket and subscribes to the given properties
func (p *mpvProcess) start(ctx context.Context, observe ...string) error {
	mpvPath := p.opts.Path
	if mpvPath == "" {
		mpvPath = "mpv"
	}

	log.Info("Starting MPV", "role", p.opts.Role, "path", mpvPath)
	cmd := exec.Command(mpvPath, p.args()...)
	setupPlayerProcess(cmd)

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to start MPV: %w", err)
	}
	p.cmd = cmd

	// Reap the process so it does not linger as a zombie
	go func() {
		_ = cmd.Wait()
		close(p.exited)
	}()

	connCtx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()
	if err := p.ipc.WaitForConnection(connCtx, connectAttempts, connectDelay); err != nil {
		p.kill()
		return err
	}

	for i, name := range observe {
		if err := p.ipc.ObserveProperty(i+1, name); err != nil {
			p.kill()
			return fmt.Errorf("observe %s: %w", name, err)
		}
	}
	return nil
}

// loadFile replaces whatever mpv is playing with target, starting at startOffset seconds
func (p *mpvProcess) loadFile(ctx context.Context, target string, startOffset float64) error {
	ctx, cancel := context.WithTimeout(ctx, commandTimeout)
	defer cancel()

	// start is a global option applying to the next loadfile, which avoids loadfile's version-dependent arguments
	if err := p.ipc.SetProperty(ctx, "start", fmt.Sprintf("%.3f", startOffset)); err != nil {
		return err
	}
	_, err := p.ipc.Request(ctx, "loadfile", target, "replace")
	return err
}

func (p *mpvProcess) setProperty(name string, value interface{}) error {
	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()
	return p.ipc.SetProperty(ctx, name, value)
}

func (p *mpvProcess) command(args ...interface{}) error {
	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()
	_, err := p.ipc.Request(ctx, args...)
	return err
}

func (p *mpvProcess) kill() {
	if p.cmd != nil && p.cmd.Process != nil {
		select {
		case <-p.exited:
		default:
			_ = p.cmd.Process.Kill()
		}
	}
}

// stop asks mpv to quit, kills it if it does not, and removes the socket
func (p *mpvProcess) stop() error {
	if p.ipc.conn != nil {
		_ = p.ipc.SendCommand([]interface{}{"quit"})
		_ = p.ipc.Close()
	}

	if p.cmd != nil {
		select {
		case <-p.exited:
		case <-time.After(2 * time.Second):
			log.Warn("MPV did not exit after quit, killing it", "role", p.opts.Role)
			p.kill()
		}
	}

	if _, err := os.Stat(p.socketPath); err == nil {
		if err := os.Remove(p.socketPath); err != nil {
			log.Warn("Failed to remove MPV socket file", "path", p.socketPath, "error", err)
		}
	}
	return nil
}

// decodeFloat reads a numeric property value.  mpv sends null while a property is unavailable.
func decodeFloat(data json.RawMessage) (float64, bool) {
	if len(data) == 0 || string(data) == "null" {
		return 0, false
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		log.Warn("Failed to unmarshal event data", "data", string(data))
		return 0, false
	}
	return v, true
}

func decodeBool(data json.RawMessage) (bool, bool) {
	var v bool
	if err := json.Unmarshal(data, &v); err != nil {
		return false, false
	}
	return v, true
}
