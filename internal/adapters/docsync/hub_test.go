package docsync

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dialDoc(t *testing.T, srv *httptest.Server, scope string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + PathPrefix + scope
	ws, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { ws.Close() })
	return ws
}

func readFrame(t *testing.T, ws *websocket.Conn) []byte {
	t.Helper()
	_, data := readTypedFrame(t, ws)
	return data
}

func readTypedFrame(t *testing.T, ws *websocket.Conn) (int, []byte) {
	t.Helper()
	require.NoError(t, ws.SetReadDeadline(time.Now().Add(2*time.Second)))
	mt, data, err := ws.ReadMessage()
	require.NoError(t, err)
	return mt, data
}

func TestFramesRelayVerbatim(t *testing.T) {
	srv := httptest.NewServer(NewHub(nil))
	defer srv.Close()

	a := dialDoc(t, srv, "room1/file1")
	b := dialDoc(t, srv, "room1/file1")

	payload := []byte{0x01, 0x02, 0xff, 0x00, 0x7f}
	require.NoError(t, a.WriteMessage(websocket.BinaryMessage, payload))
	mt, data := readTypedFrame(t, b)
	assert.Equal(t, websocket.BinaryMessage, mt)
	assert.Equal(t, payload, data)
}

func TestTextFrameTypePreserved(t *testing.T) {
	srv := httptest.NewServer(NewHub(nil))
	defer srv.Close()

	a := dialDoc(t, srv, "room1/file1")
	b := dialDoc(t, srv, "room1/file1")

	require.NoError(t, a.WriteMessage(websocket.TextMessage, []byte(`{"op":"ins"}`)))
	mt, data := readTypedFrame(t, b)
	assert.Equal(t, websocket.TextMessage, mt)
	assert.Equal(t, []byte(`{"op":"ins"}`), data)
}

func TestSenderIsExcluded(t *testing.T) {
	srv := httptest.NewServer(NewHub(nil))
	defer srv.Close()

	a := dialDoc(t, srv, "room1/file1")
	b := dialDoc(t, srv, "room1/file1")

	require.NoError(t, a.WriteMessage(websocket.BinaryMessage, []byte("from a")))
	require.NoError(t, b.WriteMessage(websocket.BinaryMessage, []byte("from b")))

	// Each side only sees the other's frame.
	assert.Equal(t, []byte("from b"), readFrame(t, a))
	assert.Equal(t, []byte("from a"), readFrame(t, b))
}

func TestScopesAreIsolated(t *testing.T) {
	srv := httptest.NewServer(NewHub(nil))
	defer srv.Close()

	a := dialDoc(t, srv, "room1/file1")
	other := dialDoc(t, srv, "room1/file2")
	b := dialDoc(t, srv, "room1/file1")

	require.NoError(t, a.WriteMessage(websocket.BinaryMessage, []byte("edit")))
	assert.Equal(t, []byte("edit"), readFrame(t, b))

	require.NoError(t, other.SetReadDeadline(time.Now().Add(100*time.Millisecond)))
	_, _, err := other.ReadMessage()
	assert.Error(t, err, "foreign scope must stay silent")
}

func TestMalformedScopeRejected(t *testing.T) {
	srv := httptest.NewServer(NewHub(nil))
	defer srv.Close()

	for _, scope := range []string{"roomonly", "room1/", "/file1"} {
		url := "ws" + strings.TrimPrefix(srv.URL, "http") + PathPrefix + scope
		_, resp, err := websocket.DefaultDialer.Dial(url, nil)
		require.Error(t, err)
		require.NotNil(t, resp)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode, "scope %q", scope)
	}
}

func TestEmptyScopeIsDropped(t *testing.T) {
	h := NewHub(nil)
	srv := httptest.NewServer(h)
	defer srv.Close()

	ws := dialDoc(t, srv, "room1/file1")
	require.Eventually(t, func() bool {
		h.mu.RLock()
		defer h.mu.RUnlock()
		return len(h.scopes) == 1
	}, time.Second, 10*time.Millisecond)

	ws.Close()
	require.Eventually(t, func() bool {
		h.mu.RLock()
		defer h.mu.RUnlock()
		return len(h.scopes) == 0
	}, time.Second, 10*time.Millisecond)
}

func TestSlowClientFramesDropped(t *testing.T) {
	s := newScope("room1/file1")
	fast := newClient(nil)
	slow := &client{out: make(chan frame)} // unbuffered, never read
	s.join(fast)
	s.join(slow)

	s.broadcast(nil, websocket.BinaryMessage, []byte("x"))

	select {
	case f := <-fast.out:
		assert.Equal(t, []byte("x"), f.data)
		assert.Equal(t, websocket.BinaryMessage, f.mt)
	default:
		t.Fatal("fast client should have received the frame")
	}
}
