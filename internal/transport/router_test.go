package transport

import (
	"bufio"
	"fmt"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func upgradeRequest(path string) *http.Request {
	r := httptest.NewRequest(http.MethodGet, path, nil)
	r.Header.Set("Connection", "Upgrade")
	r.Header.Set("Upgrade", "websocket")
	return r
}

func named(name string, hits *[]string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		*hits = append(*hits, name)
		w.WriteHeader(http.StatusSwitchingProtocols)
	})
}

func TestNonUpgradeFallsThrough(t *testing.T) {
	var hits []string
	rt := NewRouter(named("rest", &hits))
	rt.Handle("/ws/control", named("control", &hits))

	rec := httptest.NewRecorder()
	rt.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ws/control", nil))
	assert.Equal(t, []string{"rest"}, hits, "plain requests never hit upgrade handlers")
}

func TestExactlyOneHandlerWins(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{path: "/ws/control", want: "control"},
		{path: "/ws/control?roomId=abc", want: "control"},
		{path: "/ws/doc/abc/file-1", want: "doc"},
		{path: "/ws/doc/xyz/nested/scope", want: "doc"},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			var hits []string
			rt := NewRouter(named("rest", &hits))
			rt.Handle("/ws/control", named("control", &hits))
			rt.Handle("/ws/doc/", named("doc", &hits))

			rec := httptest.NewRecorder()
			rt.ServeHTTP(rec, upgradeRequest(tt.path))
			require.Equal(t, []string{tt.want}, hits)
		})
	}
}

func TestFirstMatchOwnsTheConnection(t *testing.T) {
	var hits []string
	rt := NewRouter(named("rest", &hits))
	rt.Handle("/ws/", named("broad", &hits))
	rt.Handle("/ws/doc/", named("doc", &hits))

	rec := httptest.NewRecorder()
	rt.ServeHTTP(rec, upgradeRequest("/ws/doc/abc/f"))
	assert.Equal(t, []string{"broad"}, hits, "matchers run in registration order")
}

func TestUnmatchedUpgradeClosesConnection(t *testing.T) {
	var hits []string
	rt := NewRouter(named("rest", &hits))
	rt.Handle("/ws/control", named("control", &hits))

	srv := httptest.NewServer(rt)
	defer srv.Close()

	conn, err := net.Dial("tcp", strings.TrimPrefix(srv.URL, "http://"))
	require.NoError(t, err)
	defer conn.Close()

	fmt.Fprintf(conn, "GET /ws/unknown HTTP/1.1\r\nHost: x\r\nConnection: Upgrade\r\nUpgrade: websocket\r\n\r\n")

	resp, err := http.ReadResponse(bufio.NewReader(conn), nil)
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()

	// The server must close the raw connection, not leave it parked.
	buf := make([]byte, 1)
	_, err = conn.Read(buf)
	assert.Error(t, err, "expected EOF after rejection")
	assert.Empty(t, hits)
}

func TestIsUpgradeHeaderParsing(t *testing.T) {
	tests := []struct {
		name       string
		connection string
		upgrade    string
		want       bool
	}{
		{name: "standard", connection: "Upgrade", upgrade: "websocket", want: true},
		{name: "keep-alive combo", connection: "keep-alive, Upgrade", upgrade: "websocket", want: true},
		{name: "case insensitive", connection: "upgrade", upgrade: "WebSocket", want: true},
		{name: "no upgrade header", connection: "keep-alive", upgrade: "", want: false},
		{name: "non websocket upgrade", connection: "Upgrade", upgrade: "h2c", want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.connection != "" {
				r.Header.Set("Connection", tt.connection)
			}
			if tt.upgrade != "" {
				r.Header.Set("Upgrade", tt.upgrade)
			}
			assert.Equal(t, tt.want, IsUpgrade(r))
		})
	}
}
