// Package docsync relays the document-merge collaborator's traffic.
// One sub-connection per open (room, file); frames are opaque and are
// fanned out verbatim to the other sub-connections of the same scope.
package docsync

import (
	"context"
	"net/http"
	"strings"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/pairpad/pairpad/internal/metrics"
)

// PathPrefix is the transport route owned by this handler. The scope
// follows as {roomID}/{fileID}.
const PathPrefix = "/ws/doc/"

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Hub tracks one relay scope per (room, file). An optional bus carries
// frames across process instances; with a nil bus the relay is local
// only.
type Hub struct {
	bus *RedisBus

	mu     sync.RWMutex
	scopes map[string]*scope
}

func NewHub(bus *RedisBus) *Hub {
	return &Hub{bus: bus, scopes: make(map[string]*scope)}
}

// Run forwards bus traffic into local scopes until ctx is done.
func (h *Hub) Run(ctx context.Context) {
	if h.bus == nil {
		return
	}
	h.bus.Subscribe(ctx, func(m BusMessage) {
		h.mu.RLock()
		sc := h.scopes[m.Scope]
		h.mu.RUnlock()
		if sc == nil {
			return
		}
		mt := m.MsgType
		if mt != websocket.TextMessage && mt != websocket.BinaryMessage {
			mt = websocket.BinaryMessage
		}
		sc.broadcast(nil, mt, m.Payload)
	})
}

func (h *Hub) scope(key string) *scope {
	h.mu.Lock()
	defer h.mu.Unlock()
	sc := h.scopes[key]
	if sc == nil {
		sc = newScope(key)
		h.scopes[key] = sc
	}
	return sc
}

func (h *Hub) dropIfEmpty(sc *scope) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if sc.empty() {
		delete(h.scopes, sc.key)
	}
}

// ServeHTTP owns the raw connection handed over by the transport
// router. The path addresses the composite scope; a malformed scope is
// rejected before any handshake.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	key := strings.TrimPrefix(r.URL.Path, PathPrefix)
	roomID, fileID, ok := strings.Cut(key, "/")
	if !ok || roomID == "" || fileID == "" {
		http.Error(w, "scope must be roomId/fileId", http.StatusBadRequest)
		return
	}

	ws, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error().Err(err).Str("module", "docsync").Msg("ws upgrade")
		return
	}

	sc := h.scope(key)
	c := newClient(ws)
	sc.join(c)
	metrics.DocSyncConnections.Inc()
	log.Info().Str("module", "docsync").Str("scope", key).Msg("doc sub-connection open")

	go c.writeLoop()

	// Inbound frames are relayed without inspection.
	for {
		typ, data, err := ws.ReadMessage()
		if err != nil {
			break
		}
		if typ != websocket.TextMessage && typ != websocket.BinaryMessage {
			continue
		}
		sc.broadcast(c, typ, data)
		if h.bus != nil {
			_ = h.bus.Publish(r.Context(), BusMessage{Scope: key, MsgType: typ, Payload: data})
		}
	}

	sc.leave(c)
	c.close()
	h.dropIfEmpty(sc)
	metrics.DocSyncConnections.Dec()
}
