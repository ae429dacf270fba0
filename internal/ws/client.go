package ws

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/jonboulle/clockwork"
)

type recvStatus int

const (
	recvOpen recvStatus = iota
	recvClosedByPeer
	recvTimedOut
	recvError
)

func (s recvStatus) String() string {
	switch s {
	case recvOpen:
		return "open"
	case recvClosedByPeer:
		return "closed by peer"
	case recvTimedOut:
		return "timed out"
	default:
		return "error"
	}
}

// recvResult is the outcome of one wait for inbound activity.
type recvResult struct {
	status recvStatus
	code   int
	reason string
	err    error
}

var timedOut = recvResult{
	status: recvTimedOut,
	code:   websocket.CloseNoStatusReceived,
	reason: "connection timed out",
}

// client is the server side of one WebSocket connection. Writes are
// serialised by writeMu; pings go through WriteControl, which gorilla allows
// concurrently with other writes.
type client struct {
	id           uuid.UUID
	conn         *websocket.Conn
	writeTimeout time.Duration

	writeMu sync.Mutex

	inbound   chan recvResult
	pongs     chan struct{}
	done      chan struct{}
	closeOnce sync.Once
}

func newClient(conn *websocket.Conn, writeTimeout time.Duration) *client {
	c := &client{
		id:           uuid.New(),
		conn:         conn,
		writeTimeout: writeTimeout,
		inbound:      make(chan recvResult, 1),
		pongs:        make(chan struct{}, 1),
		done:         make(chan struct{}),
	}
	conn.SetPongHandler(func(string) error {
		select {
		case c.pongs <- struct{}{}:
		default:
		}
		return nil
	})
	return c
}

// Send writes one text frame.
func (c *client) Send(msg []byte) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	c.conn.SetWriteDeadline(time.Now().Add(c.writeTimeout))
	return c.conn.WriteMessage(websocket.TextMessage, msg)
}

// Close tears the connection down. Safe to call more than once.
func (c *client) Close() error {
	c.closeOnce.Do(func() { close(c.done) })
	return c.conn.Close()
}

func (c *client) ping() error {
	return c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(c.writeTimeout))
}

// readPump reads until the connection fails and reports activity to
// receive. Payloads are discarded: inbound frames only prove liveness.
func (c *client) readPump() {
	for {
		_, _, err := c.conn.ReadMessage()
		if err != nil {
			res := recvResult{status: recvError, err: err}
			var ce *websocket.CloseError
			if errors.As(err, &ce) {
				res = recvResult{status: recvClosedByPeer, code: ce.Code, reason: ce.Text}
			}
			select {
			case c.inbound <- res:
			case <-c.done:
			}
			return
		}
		select {
		case c.inbound <- recvResult{status: recvOpen}:
		default:
			// A pending activity notice already covers this frame.
		}
	}
}

// receive waits up to idle for inbound activity. On silence it pings and
// waits up to pongWait for the pong (or any other frame) before declaring
// the connection dead.
func (c *client) receive(clock clockwork.Clock, idle, pongWait time.Duration) recvResult {
	select {
	case res := <-c.inbound:
		return res
	case <-c.done:
		return recvResult{status: recvError, err: errors.New("connection closed locally")}
	case <-clock.After(idle):
	}

	select {
	case <-c.pongs:
	default:
	}
	if err := c.ping(); err != nil {
		return recvResult{status: recvError, err: err}
	}

	select {
	case res := <-c.inbound:
		return res
	case <-c.pongs:
		return recvResult{status: recvOpen}
	case <-c.done:
		return recvResult{status: recvError, err: errors.New("connection closed locally")}
	case <-clock.After(pongWait):
		return timedOut
	}
}
