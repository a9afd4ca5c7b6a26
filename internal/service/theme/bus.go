package theme

import (
	"log/slog"
	"sync"

	"astro-themes/internal/domain"
)

// Bus broadcasts the astro-themes:change event. Delivery is synchronous
// and in registration order; late subscribers see no earlier events.
type Bus struct {
	mu     sync.Mutex
	nextID int
	order  []int
	subs   map[int]func(domain.ChangeEvent)
	logger *slog.Logger
}

// NewBus creates a Bus.
func NewBus(logger *slog.Logger) *Bus {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Bus{subs: make(map[int]func(domain.ChangeEvent)), logger: logger}
}

// Subscribe registers fn and returns its unsubscribe func.
func (b *Bus) Subscribe(fn func(domain.ChangeEvent)) func() {
	if b == nil || fn == nil {
		return func() {}
	}
	b.mu.Lock()
	id := b.nextID
	b.nextID++
	b.subs[id] = fn
	b.order = append(b.order, id)
	count := len(b.subs)
	b.mu.Unlock()
	b.logger.Debug("theme bus subscribe", "subs", count)
	return func() {
		b.mu.Lock()
		if _, ok := b.subs[id]; ok {
			delete(b.subs, id)
			for i, v := range b.order {
				if v == id {
					b.order = append(b.order[:i], b.order[i+1:]...)
					break
				}
			}
		}
		b.mu.Unlock()
	}
}

// Publish delivers ev to every current subscriber.
func (b *Bus) Publish(ev domain.ChangeEvent) {
	if b == nil {
		return
	}
	b.mu.Lock()
	fns := make([]func(domain.ChangeEvent), 0, len(b.order))
	for _, id := range b.order {
		fns = append(fns, b.subs[id])
	}
	b.mu.Unlock()
	b.logger.Debug(domain.ChangeEventName, "theme", ev.Theme, "resolved_theme", ev.ResolvedTheme, "subs", len(fns))
	for _, fn := range fns {
		fn(ev)
	}
}
