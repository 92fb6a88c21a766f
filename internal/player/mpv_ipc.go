package player

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"os"
	"runtime"
	"sync"
	"time"

	"github.com/PizzaHomicide/clipreel/internal/log"
)

// ErrIPCClosed is returned for commands sent after the mpv connection went away
var ErrIPCClosed = errors.New("mpv connection closed")

// MPVIPCClient provides communication with a running MPV instance
type MPVIPCClient struct {
	socketPath string
	conn       net.Conn
	events     chan MPVEvent

	mu      sync.Mutex // guards writes, nextID and pending
	nextID  int
	pending map[int]chan MPVEvent
	closed  chan struct{}
}

// MPVEvent is a single line received from mpv.  Replies to commands carry a RequestID and no Event.
type MPVEvent struct {
	Event     string          `json:"event,omitempty"`
	Name      string          `json:"name,omitempty"`
	ID        int             `json:"id,omitempty"`
	Data      json.RawMessage `json:"data,omitempty"`
	Reason    string          `json:"reason,omitempty"`
	FileError string          `json:"file_error,omitempty"`
	RequestID int             `json:"request_id,omitempty"`
	Error     string          `json:"error,omitempty"`
}

// NewMPVIPCClient creates a new MPV IPC client
func NewMPVIPCClient(socketPath string) *MPVIPCClient {
	return &MPVIPCClient{
		socketPath: socketPath,
		events:     make(chan MPVEvent, 100),
		pending:    make(map[int]chan MPVEvent),
		closed:     make(chan struct{}),
	}
}

// attach wires an established connection into the client and starts the reader
func (c *MPVIPCClient) attach(conn net.Conn) {
	c.conn = conn
	go c.readEvents()
}

// WaitForConnection attempts to connect to MPV with retries
func (c *MPVIPCClient) WaitForConnection(ctx context.Context, maxAttempts int, retryDelay time.Duration) error {
	log.Debug("Waiting for MPV to create socket", "socket_path", c.socketPath, "max_attempts", maxAttempts)

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		socketMissing := false
		if runtime.GOOS != "windows" {
			if _, err := os.Stat(c.socketPath); os.IsNotExist(err) {
				log.Trace("MPV socket does not exist yet", "attempt", attempt, "path", c.socketPath)
				socketMissing = true
			}
		}

		if !socketMissing {
			err := c.Connect(ctx)
			if err == nil {
				log.Info("Connected to MPV", "attempt", attempt, "socket_path", c.socketPath)
				return nil
			}
			log.Debug("Failed to connect to MPV", "attempt", attempt, "error", err)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(retryDelay):
		}
	}

	return fmt.Errorf("failed to connect to MPV after %d attempts", maxAttempts)
}

// Close closes the connection to MPV
func (c *MPVIPCClient) Close() error {
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}

// Done is closed once the connection to mpv is gone
func (c *MPVIPCClient) Done() <-chan struct{} {
	return c.closed
}

// readEvents continuously reads lines from MPV, routing command replies to their waiters and events to the channel
func (c *MPVIPCClient) readEvents() {
	scanner := bufio.NewScanner(c.conn)
	for scanner.Scan() {
		line := scanner.Bytes()
		log.Trace("Raw MPV event", "data", string(line))

		var event MPVEvent
		if err := json.Unmarshal(line, &event); err != nil {
			log.Error("Failed to unmarshal MPV event", "error", err)
			continue
		}

		if event.Event == "" {
			c.deliverReply(event)
			continue
		}

		select {
		case c.events <- event:
		default:
			log.Warn("Dropping MPV event, consumer is not keeping up", "event", event.Event)
		}
	}

	if err := scanner.Err(); err != nil && !errors.Is(err, net.ErrClosed) {
		log.Error("Error reading from MPV socket", "error", err)
	}

	log.Debug("MPV event reader stopped", "socket_path", c.socketPath)
	c.mu.Lock()
	for id, ch := range c.pending {
		close(ch)
		delete(c.pending, id)
	}
	c.mu.Unlock()
	close(c.closed)
	close(c.events)
}

func (c *MPVIPCClient) deliverReply(event MPVEvent) {
	c.mu.Lock()
	ch, ok := c.pending[event.RequestID]
	delete(c.pending, event.RequestID)
	c.mu.Unlock()
	if ok {
		ch <- event
	}
}

// Events returns the channel for MPV events.  It is closed when the connection ends.
func (c *MPVIPCClient) Events() <-chan MPVEvent {
	return c.events
}

func (c *MPVIPCClient) write(payload map[string]interface{}) error {
	if c.conn == nil {
		return fmt.Errorf("not connected to MPV")
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal command: %w", err)
	}

	data = append(data, '\n')
	if _, err := c.conn.Write(data); err != nil {
		return fmt.Errorf("failed to send command: %w", err)
	}
	return nil
}

// SendCommand sends a command to MPV without waiting for its reply
func (c *MPVIPCClient) SendCommand(cmd []interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.write(map[string]interface{}{"command": cmd})
}

// Request sends a command and waits for mpv's reply, returning its data
func (c *MPVIPCClient) Request(ctx context.Context, cmd ...interface{}) (json.RawMessage, error) {
	reply := make(chan MPVEvent, 1)

	c.mu.Lock()
	c.nextID++
	id := c.nextID
	c.pending[id] = reply
	err := c.write(map[string]interface{}{"command": cmd, "request_id": id})
	if err != nil {
		delete(c.pending, id)
	}
	c.mu.Unlock()
	if err != nil {
		return nil, err
	}

	select {
	case <-ctx.Done():
		c.mu.Lock()
		delete(c.pending, id)
		c.mu.Unlock()
		return nil, fmt.Errorf("mpv command %v: %w", cmd[0], ctx.Err())
	case ev, ok := <-reply:
		if !ok {
			return nil, ErrIPCClosed
		}
		if ev.Error != "" && ev.Error != "success" {
			return nil, fmt.Errorf("mpv command %v: %s", cmd[0], ev.Error)
		}
		return ev.Data, nil
	}
}

// ObserveProperty starts observing an MPV property
func (c *MPVIPCClient) ObserveProperty(id int, name string) error {
	return c.SendCommand([]interface{}{"observe_property", id, name})
}

// SetProperty sets an mpv property and waits for the reply
func (c *MPVIPCClient) SetProperty(ctx context.Context, name string, value interface{}) error {
	_, err := c.Request(ctx, "set_property", name, value)
	return err
}
