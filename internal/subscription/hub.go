package subscription

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Loader returns the full current result set for a topic.
type Loader func(ctx context.Context) (any, error)

// Snapshot is a complete replacement of a subscriber's view. It is never a diff.
type Snapshot struct {
	Topic   string    `json:"topic"`
	Version uint64    `json:"version"`
	Data    any       `json:"data"`
	At      time.Time `json:"at"`
}

// Notifier announces that records behind topics changed.
type Notifier interface {
	Notify(ctx context.Context, topics ...string) error
}

type subscriber struct {
	topic  string
	loader Loader
	ctx    context.Context
	ch     chan Snapshot

	mu     sync.Mutex // serializes delivery and close
	last   uint64
	closed bool
}

// Hub fans change notifications out to subscribers as fresh snapshots.
// A slow subscriber only ever holds the newest snapshot.
type Hub struct {
	mu       sync.Mutex
	subs     map[string]map[*subscriber]struct{}
	versions map[string]uint64
	logger   *zap.Logger
}

func NewHub(logger *zap.Logger) *Hub {
	return &Hub{
		subs:     map[string]map[*subscriber]struct{}{},
		versions: map[string]uint64{},
		logger:   logger,
	}
}

var _ Notifier = (*Hub)(nil)

// Subscribe loads the current set, delivers it, and keeps delivering a new
// full set after every Notify for topic until ctx is done. Subscribing again
// after a drop re-delivers the full set.
func (h *Hub) Subscribe(ctx context.Context, topic string, loader Loader) (<-chan Snapshot, error) {
	sub := &subscriber{
		topic:  topic,
		loader: loader,
		ctx:    ctx,
		ch:     make(chan Snapshot, 1),
	}

	h.mu.Lock()
	version := h.versions[topic]
	if h.subs[topic] == nil {
		h.subs[topic] = map[*subscriber]struct{}{}
	}
	h.subs[topic][sub] = struct{}{}
	h.mu.Unlock()

	data, err := loader(ctx)
	if err != nil {
		h.remove(sub)
		return nil, fmt.Errorf("initial snapshot for %s: %w", topic, err)
	}
	h.deliver(sub, Snapshot{Topic: topic, Version: version, Data: data, At: time.Now().UTC()})

	go func() {
		<-ctx.Done()
		h.remove(sub)
	}()

	return sub.ch, nil
}

// Notify reloads every subscriber of each topic and pushes the result.
func (h *Hub) Notify(_ context.Context, topics ...string) error {
	for _, topic := range topics {
		h.mu.Lock()
		h.versions[topic]++
		version := h.versions[topic]
		subs := make([]*subscriber, 0, len(h.subs[topic]))
		for s := range h.subs[topic] {
			subs = append(subs, s)
		}
		h.mu.Unlock()

		for _, s := range subs {
			data, err := s.loader(s.ctx)
			if err != nil {
				if s.ctx.Err() == nil {
					h.logger.Warn("Failed to reload snapshot",
						zap.String("topic", topic),
						zap.Error(err),
					)
				}
				continue
			}
			h.deliver(s, Snapshot{Topic: topic, Version: version, Data: data, At: time.Now().UTC()})
		}
	}
	return nil
}

// Subscribers returns the number of live subscribers on topic.
func (h *Hub) Subscribers(topic string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs[topic])
}

// deliver replaces any undelivered snapshot. Snapshots older than the last
// delivered one are dropped so out-of-order reloads cannot roll a view back.
func (h *Hub) deliver(s *subscriber, snap Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	if snap.Version < s.last {
		return
	}
	s.last = snap.Version
	select {
	case <-s.ch:
	default:
	}
	s.ch <- snap
}

func (h *Hub) remove(s *subscriber) {
	h.mu.Lock()
	if set := h.subs[s.topic]; set != nil {
		delete(set, s)
		if len(set) == 0 {
			delete(h.subs, s.topic)
		}
	}
	h.mu.Unlock()

	s.mu.Lock()
	if !s.closed {
		s.closed = true
		close(s.ch)
	}
	s.mu.Unlock()
}
