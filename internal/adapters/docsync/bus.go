package docsync

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// BusMessage is one relayed frame tagged with its (room, file) scope.
// Origin identifies the publishing instance so it can skip its own
// messages; local fanout already happened before the publish.
type BusMessage struct {
	Scope   string `json:"scope"`
	MsgType int    `json:"msgType"`
	Payload []byte `json:"payload"`
	Origin  string `json:"origin"`
}

// RedisBus carries document-sync frames across process instances.
type RedisBus struct {
	rdb *redis.Client
	id  string
}

// NewRedisBus connects and verifies connectivity.
func NewRedisBus(ctx context.Context, addr string, db int) (*RedisBus, error) {
	rdb := redis.NewClient(&redis.Options{Addr: addr, DB: db})
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, err
	}
	return &RedisBus{rdb: rdb, id: uuid.NewString()}, nil
}

func (b *RedisBus) Publish(ctx context.Context, m BusMessage) error {
	m.Origin = b.id
	raw, _ := json.Marshal(m)
	return b.rdb.Publish(ctx, channel(m.Scope), raw).Err()
}

// Subscribe listens on all scope channels and invokes fn per foreign
// message until ctx is done.
func (b *RedisBus) Subscribe(ctx context.Context, fn func(BusMessage)) {
	pubsub := b.rdb.PSubscribe(ctx, channel("*"))
	ch := pubsub.Channel()

	for {
		select {
		case <-ctx.Done():
			_ = pubsub.Close()
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			var m BusMessage
			if err := json.Unmarshal([]byte(msg.Payload), &m); err != nil {
				log.Error().Err(err).Str("module", "docsync").Msg("bad bus message")
				continue
			}
			if m.Scope == "" || m.Origin == b.id {
				continue
			}
			fn(m)
		}
	}
}

func (b *RedisBus) Close() { _ = b.rdb.Close() }

func channel(scope string) string { return "doc:" + scope }
