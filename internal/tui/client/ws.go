// Package client connects the watch TUI to a crossfader server.
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/gorilla/websocket"
)

const (
	reconnectBaseDelay = 1 * time.Second
	reconnectMaxDelay  = 30 * time.Second
	writeTimeout       = 5 * time.Second
	// The server probes after one quiet second, so a few seconds of total
	// silence means the server is gone.
	readTimeout = 5 * time.Second
)

// FaderMessage mirrors the server's wire frame.
type FaderMessage struct {
	Crossfader *int `json:"crossfader"`
}

// WSClient manages the WebSocket connection to a crossfader server.
type WSClient struct {
	url    string
	dialer *websocket.Dialer

	mu   sync.Mutex
	conn *websocket.Conn
}

// NewWSClient creates a client that connects to the given WebSocket URL.
func NewWSClient(url string) *WSClient {
	return &WSClient{url: url, dialer: websocket.DefaultDialer}
}

// --- Bubble Tea messages ---

// WSConnectedMsg is sent when the WebSocket connects.
type WSConnectedMsg struct{}

// WSDisconnectedMsg is sent when the connection drops.
type WSDisconnectedMsg struct{ Err error }

// FaderMsg carries a crossfader value from the server.
type FaderMsg struct{ Value int }

// Listen returns a Bubble Tea command that connects, retrying with
// exponential backoff until ctx is done.
func (c *WSClient) Listen(ctx context.Context) tea.Cmd {
	return func() tea.Msg {
		delay := reconnectBaseDelay
		for {
			conn, _, err := c.dialer.DialContext(ctx, c.url, nil)
			if err == nil {
				c.mu.Lock()
				c.conn = conn
				c.mu.Unlock()
				return WSConnectedMsg{}
			}
			log.Printf("ws dial error: %v (retry in %v)", err, delay)

			select {
			case <-ctx.Done():
				return nil
			case <-time.After(delay):
			}
			delay = min(delay*2, reconnectMaxDelay)
		}
	}
}

// ReadLoop returns a Bubble Tea command that reads until the next fader
// value (or disconnect). Re-issue it after each message.
func (c *WSClient) ReadLoop(ctx context.Context) tea.Cmd {
	return func() tea.Msg {
		c.mu.Lock()
		conn := c.conn
		c.mu.Unlock()
		if conn == nil {
			return WSDisconnectedMsg{Err: fmt.Errorf("no connection")}
		}

		conn.SetPingHandler(func(data string) error {
			conn.SetReadDeadline(time.Now().Add(readTimeout))
			return conn.WriteControl(websocket.PongMessage, []byte(data), time.Now().Add(writeTimeout))
		})

		for {
			conn.SetReadDeadline(time.Now().Add(readTimeout))
			_, data, err := conn.ReadMessage()
			if err != nil {
				c.drop(conn)
				return WSDisconnectedMsg{Err: err}
			}
			if ctx.Err() != nil {
				return nil
			}

			if v, ok := Decode(data); ok {
				return FaderMsg{Value: v}
			}
		}
	}
}

// Close closes the active connection, if any.
func (c *WSClient) Close() {
	c.mu.Lock()
	conn := c.conn
	c.conn = nil
	c.mu.Unlock()
	if conn != nil {
		msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "bye")
		conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(writeTimeout))
		conn.Close()
	}
}

func (c *WSClient) drop(conn *websocket.Conn) {
	c.mu.Lock()
	if c.conn == conn {
		c.conn = nil
	}
	c.mu.Unlock()
	conn.Close()
}

// Decode parses a server frame. Frames without a crossfader field are
// ignored.
func Decode(data []byte) (int, bool) {
	var msg FaderMessage
	if err := json.Unmarshal(data, &msg); err != nil || msg.Crossfader == nil {
		return 0, false
	}
	return *msg.Crossfader, true
}
