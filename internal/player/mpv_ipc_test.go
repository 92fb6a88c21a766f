package player

import (
	"bufio"
	"context"
	"encoding/json"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeMPV answers IPC commands on the far end of a pipe the way mpv does
type fakeMPV struct {
	t        *testing.T
	conn     net.Conn
	received chan []interface{}
}

func newFakeMPV(t *testing.T) (*MPVIPCClient, *fakeMPV) {
	clientConn, serverConn := net.Pipe()
	client := NewMPVIPCClient("test")
	client.attach(clientConn)

	srv := &fakeMPV{t: t, conn: serverConn, received: make(chan []interface{}, 10)}
	go srv.serve()
	t.Cleanup(func() {
		_ = client.Close()
		_ = serverConn.Close()
	})
	return client, srv
}

func (f *fakeMPV) serve() {
	scanner := bufio.NewScanner(f.conn)
	for scanner.Scan() {
		var req struct {
			Command   []interface{} `json:"command"`
			RequestID int           `json:"request_id"`
		}
		if err := json.Unmarshal(scanner.Bytes(), &req); err != nil {
			continue
		}
		f.received <- req.Command

		reply := map[string]interface{}{"request_id": req.RequestID, "error": "success"}
		switch req.Command[0] {
		case "get_property":
			reply["data"] = 12.5
		case "loadfile":
			if req.Command[1] == "bad://file" {
				reply["error"] = "invalid parameter"
			}
		case "hang":
			continue
		}
		f.send(reply)
	}
}

func (f *fakeMPV) send(msg map[string]interface{}) {
	data, _ := json.Marshal(msg)
	_, _ = f.conn.Write(append(data, '\n'))
}

func TestMPVIPCClient_Request(t *testing.T) {
	client, srv := newFakeMPV(t)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	data, err := client.Request(ctx, "get_property", "time-pos")
	require.NoError(t, err)
	assert.JSONEq(t, "12.5", string(data))
	assert.Equal(t, []interface{}{"get_property", "time-pos"}, <-srv.received)

	_, err = client.Request(ctx, "loadfile", "bad://file", "replace")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid parameter")
	<-srv.received
}

func TestMPVIPCClient_RequestTimeout(t *testing.T) {
	client, srv := newFakeMPV(t)
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := client.Request(ctx, "hang")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	<-srv.received
}

func TestMPVIPCClient_EventsAndClose(t *testing.T) {
	client, srv := newFakeMPV(t)

	go srv.send(map[string]interface{}{"event": "property-change", "id": 1, "name": "pause", "data": true})

	select {
	case ev := <-client.Events():
		assert.Equal(t, "property-change", ev.Event)
		assert.Equal(t, "pause", ev.Name)
		paused, ok := decodeBool(ev.Data)
		assert.True(t, ok)
		assert.True(t, paused)
	case <-time.After(time.Second):
		t.Fatal("no event received")
	}

	_ = srv.conn.Close()

	select {
	case <-client.Done():
	case <-time.After(time.Second):
		t.Fatal("client did not notice the closed connection")
	}
	_, ok := <-client.Events()
	assert.False(t, ok)

	_, err := client.Request(context.Background(), "get_property", "pause")
	assert.Error(t, err)
}
