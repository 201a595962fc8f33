package control

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pairpad/pairpad/internal/app"
	"github.com/pairpad/pairpad/internal/auth"
	"github.com/pairpad/pairpad/internal/domain"
	"github.com/pairpad/pairpad/internal/transport"
)

type memStore struct {
	mu    sync.Mutex
	rooms map[domain.RoomID]*domain.Room
}

func (m *memStore) GetOrCreate(_ context.Context, roomID domain.RoomID, identity string) (*domain.Room, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.rooms[roomID]
	if !ok {
		r = &domain.Room{ID: roomID, HostIdentity: identity, CreatedAt: time.Now()}
		m.rooms[roomID] = r
	}
	cp := *r
	cp.Participants = append([]domain.Participant(nil), r.Participants...)
	return &cp, nil
}

func (m *memStore) AddParticipant(_ context.Context, roomID domain.RoomID, identity string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	r := m.rooms[roomID]
	if !r.IsParticipant(identity) {
		r.Participants = append(r.Participants, domain.Participant{Identity: identity, AddedAt: time.Now()})
	}
	return nil
}

func newTestServer(t *testing.T, authRequired bool) (*httptest.Server, *auth.JWT) {
	t.Helper()
	jwt := auth.New("test-secret")
	ctl := &Controller{
		Sessions:     app.NewSessionManager(&memStore{rooms: map[domain.RoomID]*domain.Room{}}, app.NewRegistry(), 0),
		Auth:         jwt,
		AuthRequired: authRequired,
		ReadLimit:    32768,
		PingPeriod:   50 * time.Second,
	}
	rt := transport.NewRouter(http.NotFoundHandler())
	rt.Handle("/ws/control", ctl)
	srv := httptest.NewServer(rt)
	t.Cleanup(srv.Close)
	return srv, jwt
}

func dial(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/control"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func send(t *testing.T, conn *websocket.Conn, v map[string]any) {
	t.Helper()
	require.NoError(t, conn.WriteJSON(v))
}

// readEvent reads frames until one of the wanted types arrives.
func readEvent(t *testing.T, conn *websocket.Conn, types ...string) map[string]any {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	require.NoError(t, conn.SetReadDeadline(deadline))
	for {
		_, data, err := conn.ReadMessage()
		require.NoError(t, err, "waiting for %v", types)
		var ev map[string]any
		require.NoError(t, json.Unmarshal(data, &ev))
		typ, _ := ev["type"].(string)
		for _, want := range types {
			if typ == want {
				return ev
			}
		}
	}
}

func TestJoinApprovalFlow(t *testing.T) {
	srv, _ := newTestServer(t, false)

	alice := dial(t, srv)
	send(t, alice, map[string]any{"type": "join_room", "roomId": "abc", "identity": "alice"})
	readEvent(t, alice, "access_granted")

	users := readEvent(t, alice, "room_users")["users"].([]any)
	require.Len(t, users, 1)
	first := users[0].(map[string]any)
	assert.Equal(t, "alice", first["identity"])
	assert.Equal(t, "host", first["role"])

	bob := dial(t, srv)
	send(t, bob, map[string]any{"type": "join_room", "roomId": "abc", "identity": "bob"})

	status := readEvent(t, bob, "status_update")
	assert.Equal(t, "waiting", status["status"])

	prompt := readEvent(t, alice, "request_entry")
	assert.Equal(t, "bob", prompt["identity"])
	bobID := prompt["connectionId"].(string)
	require.NotEmpty(t, bobID)

	send(t, alice, map[string]any{"type": "grant_access", "connectionId": bobID})
	readEvent(t, bob, "access_granted")

	users = readEvent(t, bob, "room_users")["users"].([]any)
	assert.Len(t, users, 2)
}

func TestDenyOverWire(t *testing.T) {
	srv, _ := newTestServer(t, false)

	alice := dial(t, srv)
	send(t, alice, map[string]any{"type": "join_room", "roomId": "abc", "identity": "alice"})
	readEvent(t, alice, "room_users")

	bob := dial(t, srv)
	send(t, bob, map[string]any{"type": "join_room", "roomId": "abc", "identity": "bob"})
	prompt := readEvent(t, alice, "request_entry")

	send(t, alice, map[string]any{"type": "deny_access", "connectionId": prompt["connectionId"]})
	readEvent(t, bob, "access_denied")

	// The server closes a denied connection.
	require.NoError(t, bob.SetReadDeadline(time.Now().Add(2*time.Second)))
	for {
		if _, _, err := bob.ReadMessage(); err != nil {
			break
		}
	}
}

func TestPendingDisconnectCancelsPrompt(t *testing.T) {
	srv, _ := newTestServer(t, false)

	alice := dial(t, srv)
	send(t, alice, map[string]any{"type": "join_room", "roomId": "abc", "identity": "alice"})
	readEvent(t, alice, "room_users")

	bob := dial(t, srv)
	send(t, bob, map[string]any{"type": "join_room", "roomId": "abc", "identity": "bob"})
	prompt := readEvent(t, alice, "request_entry")

	bob.Close()

	cancel := readEvent(t, alice, "request_cancelled")
	assert.Equal(t, prompt["connectionId"], cancel["connectionId"])
}

func TestRunSyncOverWire(t *testing.T) {
	srv, _ := newTestServer(t, false)

	alice := dial(t, srv)
	send(t, alice, map[string]any{"type": "join_room", "roomId": "abc", "identity": "alice"})
	readEvent(t, alice, "room_users")

	bob := dial(t, srv)
	send(t, bob, map[string]any{"type": "join_room", "roomId": "abc", "identity": "bob"})
	prompt := readEvent(t, alice, "request_entry")
	send(t, alice, map[string]any{"type": "grant_access", "connectionId": prompt["connectionId"]})
	readEvent(t, bob, "access_granted")

	send(t, bob, map[string]any{"type": "run_trigger"})
	start := readEvent(t, alice, "run_start")
	assert.Equal(t, "bob", start["identity"])

	send(t, bob, map[string]any{"type": "run_result", "logs": []string{"hello", "world"}})
	done := readEvent(t, alice, "run_complete")
	assert.Equal(t, []any{"hello", "world"}, done["logs"])
}

func TestMalformedFramesAreIgnored(t *testing.T) {
	srv, _ := newTestServer(t, false)

	alice := dial(t, srv)
	require.NoError(t, alice.WriteMessage(websocket.TextMessage, []byte("not json")))
	require.NoError(t, alice.WriteMessage(websocket.TextMessage, []byte(`{"type":"bogus_event"}`)))

	// The connection survives garbage and still joins.
	send(t, alice, map[string]any{"type": "join_room", "roomId": "abc", "identity": "alice"})
	readEvent(t, alice, "access_granted")
}

func TestAuthRequiredJoin(t *testing.T) {
	srv, jwt := newTestServer(t, true)

	// Token subject must match the claimed identity.
	tok, err := jwt.Sign("alice", time.Minute)
	require.NoError(t, err)

	mallory := dial(t, srv)
	send(t, mallory, map[string]any{"type": "join_room", "roomId": "abc", "identity": "mallory", "token": tok})
	status := readEvent(t, mallory, "status_update")
	assert.Equal(t, "error", status["status"])

	alice := dial(t, srv)
	send(t, alice, map[string]any{"type": "join_room", "roomId": "abc", "identity": "alice", "token": tok})
	readEvent(t, alice, "access_granted")
}
