package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dialHub(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	resp.Body.Close()
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readHubMessage(t *testing.T, conn *websocket.Conn) HubMessage {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)

	var msg HubMessage
	require.NoError(t, json.Unmarshal(data, &msg))
	return msg
}

func TestHub_GreetingAndBatchUpdates(t *testing.T) {
	s := newTestServer(t, &fakeClassifier{}, nil, Config{ChunkSize: 2})
	srv := httptest.NewServer(s.Handler())
	defer srv.Close()

	conn := dialHub(t, srv)

	greeting := readHubMessage(t, conn)
	assert.Equal(t, "after_connect", greeting.Event)
	assert.Equal(t, map[string]any{"data": "Connected to bookmark processing"}, greeting.Data)
	assert.Equal(t, 1, s.Hub().Len())

	req := uploadRequest(t, "/process_and_organize", "b.html", bookmarkFile(3))
	req.RequestURI = ""
	req.URL.Scheme = "http"
	req.URL.Host = strings.TrimPrefix(srv.URL, "http://")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	counts := []float64{2, 3}
	for _, want := range counts {
		msg := readHubMessage(t, conn)
		assert.Equal(t, "bookmark_update", msg.Event)

		data, ok := msg.Data.(map[string]any)
		require.True(t, ok)
		assert.Equal(t, want, data["count"])
		assert.NotEmpty(t, data["bookmarks"])
	}
}

func TestHub_BroadcastWithoutClients(t *testing.T) {
	h := NewHub(nil)
	h.Broadcast("bookmark_update", BookmarkUpdate{Count: 1})
	assert.Equal(t, 0, h.Len())
}

func TestHub_CloseDisconnectsClients(t *testing.T) {
	h := NewHub(nil)
	srv := httptest.NewServer(h)
	defer srv.Close()

	conn, resp, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	require.NoError(t, err)
	resp.Body.Close()
	defer conn.Close()

	readHubMessage(t, conn)
	h.Close()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	_, _, err = conn.ReadMessage()
	assert.Error(t, err)
	assert.Equal(t, 0, h.Len())
}

func TestHub_RejectsPlainHTTP(t *testing.T) {
	h := NewHub(nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ws", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, 0, h.Len())
}
