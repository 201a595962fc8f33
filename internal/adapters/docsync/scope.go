package docsync

import (
	"sync"

	"github.com/gorilla/websocket"
)

// frame is one queued outbound message. The websocket message type is
// carried through so text-protocol collaborators get their frames back
// as text, not rewritten to binary.
type frame struct {
	mt   int
	data []byte
}

// scope is the set of live sub-connections for one (room, file).
type scope struct {
	key string

	mu      sync.RWMutex
	clients map[*client]struct{}
}

func newScope(key string) *scope {
	return &scope{key: key, clients: make(map[*client]struct{})}
}

func (s *scope) join(c *client) {
	s.mu.Lock()
	s.clients[c] = struct{}{}
	s.mu.Unlock()
}

func (s *scope) leave(c *client) {
	s.mu.Lock()
	delete(s.clients, c)
	s.mu.Unlock()
}

func (s *scope) empty() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.clients) == 0
}

// broadcast relays a frame to every sub-connection except from.
// A full send buffer drops the frame for that client.
func (s *scope) broadcast(from *client, mt int, data []byte) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for c := range s.clients {
		if c == from {
			continue
		}
		select {
		case c.out <- frame{mt: mt, data: data}:
		default:
		}
	}
}

// client pairs a socket with its outbound queue.
type client struct {
	ws  *websocket.Conn
	out chan frame

	once sync.Once
}

func newClient(ws *websocket.Conn) *client {
	return &client{ws: ws, out: make(chan frame, 256)}
}

func (c *client) writeLoop() {
	for f := range c.out {
		if err := c.ws.WriteMessage(f.mt, f.data); err != nil {
			return
		}
	}
}

func (c *client) close() {
	c.once.Do(func() {
		close(c.out)
		_ = c.ws.Close()
	})
}
