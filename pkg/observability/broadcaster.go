package observability

import (
	"context"
	"sync"

	"github.com/aretw0/act/pkg/domain"
)

// Broadcaster fans history events out to subscribers. Slow subscribers drop
// events instead of blocking the history.
type Broadcaster struct {
	mu     sync.Mutex
	subs   map[chan domain.HistoryEvent]struct{}
	buffer int
}

// NewBroadcaster creates a broadcaster whose subscriber channels hold buffer events.
func NewBroadcaster(buffer int) *Broadcaster {
	if buffer < 1 {
		buffer = 1
	}
	return &Broadcaster{
		subs:   make(map[chan domain.HistoryEvent]struct{}),
		buffer: buffer,
	}
}

// Watch subscribes until ctx is done, then closes the channel.
func (b *Broadcaster) Watch(ctx context.Context) <-chan domain.HistoryEvent {
	ch := make(chan domain.HistoryEvent, b.buffer)
	b.mu.Lock()
	b.subs[ch] = struct{}{}
	b.mu.Unlock()

	go func() {
		<-ctx.Done()
		b.mu.Lock()
		delete(b.subs, ch)
		close(ch)
		b.mu.Unlock()
	}()
	return ch
}

// Subscribers returns the number of live subscriptions.
func (b *Broadcaster) Subscribers() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}

// Publish delivers e to every subscriber with room in its buffer.
func (b *Broadcaster) Publish(e domain.HistoryEvent) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for ch := range b.subs {
		select {
		case ch <- e:
		default:
		}
	}
}

// Hooks returns history hooks publishing every event.
func (b *Broadcaster) Hooks() domain.HistoryHooks {
	publish := func(e *domain.HistoryEvent) { b.Publish(*e) }
	return domain.HistoryHooks{OnCommit: publish, OnUndo: publish, OnRedo: publish}
}
