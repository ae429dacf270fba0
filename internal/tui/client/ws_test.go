package client

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecode(t *testing.T) {
	v, ok := Decode([]byte(`{"crossfader": 42}`))
	assert.True(t, ok)
	assert.Equal(t, 42, v)

	v, ok = Decode([]byte(`{"crossfader": 0}`))
	assert.True(t, ok)
	assert.Equal(t, 0, v)

	_, ok = Decode([]byte(`{"other": 1}`))
	assert.False(t, ok)

	_, ok = Decode([]byte(`not json`))
	assert.False(t, ok)
}

func TestWSClient_ReceivesValues(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		upgrader := websocket.Upgrader{}
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		conn.WriteMessage(websocket.TextMessage, []byte(`{"hello": true}`))
		conn.WriteMessage(websocket.TextMessage, []byte(`{"crossfader": 42}`))
		conn.WriteMessage(websocket.TextMessage, []byte(`{"crossfader": 43}`))
		conn.ReadMessage()
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	c := NewWSClient("ws" + strings.TrimPrefix(srv.URL, "http"))
	defer c.Close()

	require.IsType(t, WSConnectedMsg{}, c.Listen(ctx)())
	assert.Equal(t, FaderMsg{Value: 42}, c.ReadLoop(ctx)())
	assert.Equal(t, FaderMsg{Value: 43}, c.ReadLoop(ctx)())
}

func TestWSClient_ReadWithoutConnection(t *testing.T) {
	c := NewWSClient("ws://127.0.0.1:1/ws")
	msg := c.ReadLoop(context.Background())()
	assert.IsType(t, WSDisconnectedMsg{}, msg)
}

func TestWSClient_ListenStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	c := NewWSClient("ws://127.0.0.1:1/ws")
	assert.Nil(t, c.Listen(ctx)())
}
