package events

import (
	"sync"

	"go.uber.org/zap"

	"github.com/trustlens/trustlens/internal/core"
)

// Bus delivers completed analyses to whoever is currently listening on a
// host-identity topic. Delivery is at most once and best effort: a
// subscriber whose buffer is full, or one that subscribes after the
// publish, simply misses that update. This mirrors the fire-and-forget
// notification the rest of the system is built around and is not a
// delivery guarantee.
type Bus struct {
	mu     sync.RWMutex
	subs   map[string][]chan *core.CompositeResult
	logger *zap.Logger
}

// NewBus creates a new event bus.
func NewBus(logger *zap.Logger) *Bus {
	return &Bus{
		subs:   make(map[string][]chan *core.CompositeResult),
		logger: logger,
	}
}

// Subscribe registers interest in analyses for one host identity. The
// returned cancel function removes the subscription and closes the
// channel; it is safe to call more than once.
func (b *Bus) Subscribe(identity string, buffer int) (<-chan *core.CompositeResult, func()) {
	if buffer < 1 {
		buffer = 1
	}
	ch := make(chan *core.CompositeResult, buffer)

	b.mu.Lock()
	b.subs[identity] = append(b.subs[identity], ch)
	b.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			channels := b.subs[identity]
			for i, c := range channels {
				if c == ch {
					b.subs[identity] = append(channels[:i], channels[i+1:]...)
					break
				}
			}
			if len(b.subs[identity]) == 0 {
				delete(b.subs, identity)
			}
			close(ch)
		})
	}
	return ch, cancel
}

// Publish hands the result to every current subscriber of the identity
// topic without blocking. Subscribers that cannot receive immediately
// are skipped.
func (b *Bus) Publish(identity string, result *core.CompositeResult) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for _, ch := range b.subs[identity] {
		select {
		case ch <- result:
		default:
			if b.logger != nil {
				b.logger.Debug("Dropped analysis update for slow subscriber",
					zap.String("host", identity))
			}
		}
	}
}
