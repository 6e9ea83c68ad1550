package feed

import (
	"context"
	"net/http"
	"net/http/httptest"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"

	"babelfeed/internal/config"
	"babelfeed/internal/logger"
)

func wsTestServer(t *testing.T, handle func(conn *websocket.Conn)) *httptest.Server {
	t.Helper()
	upgrader := websocket.Upgrader{}
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		handle(conn)
	}))
}

func TestWebSocketDeliversFrames(t *testing.T) {
	server := wsTestServer(t, func(conn *websocket.Conn) {
		_ = conn.WriteJSON(wsFrame{Content: "hello", Nickname: "viewer"})
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(time.Second))
		// Wait for the peer's close response so the frame is not lost to
		// an abrupt teardown.
		_, _, _ = conn.ReadMessage()
		conn.Close()
	})
	defer server.Close()

	w := NewWebSocket(config.WebSocketFeedConfig{
		URL: "ws" + strings.TrimPrefix(server.URL, "http"),
	}, logger.NopLogger())

	out := make(chan Event, 1)
	err := w.readLoop(context.Background(), out)
	require.NoError(t, err)

	ev := <-out
	require.Equal(t, "hello", ev.Text)
	require.Equal(t, "viewer", ev.Sender)
}

func TestWebSocketReadLoopReleasesWatcher(t *testing.T) {
	server := wsTestServer(t, func(conn *websocket.Conn) {
		// Drop the connection without a close handshake.
		conn.Close()
	})
	defer server.Close()

	w := NewWebSocket(config.WebSocketFeedConfig{
		URL: "ws" + strings.TrimPrefix(server.URL, "http"),
	}, logger.NopLogger())

	before := runtime.NumGoroutine()

	out := make(chan Event, 1)
	for i := 0; i < 5; i++ {
		err := w.readLoop(context.Background(), out)
		require.Error(t, err)
	}

	require.Eventually(t, func() bool {
		return runtime.NumGoroutine() <= before+1
	}, 2*time.Second, 20*time.Millisecond, "watcher goroutines survived their connections")
}
