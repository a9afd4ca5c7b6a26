package theme

import (
	"sync"

	"astro-themes/internal/domain"
)

// MediaQuery is a live prefers-color-scheme: dark watch.
type MediaQuery interface {
	Matches() bool
	OnChange(fn func(matches bool)) (stop func())
}

// MediaQueryList is an in-process MediaQuery whose match state is flipped
// with Set.
type MediaQueryList struct {
	mu      sync.Mutex
	matches bool
	nextID  int
	subs    map[int]func(bool)
}

// NewMediaQueryList creates a watch with the given initial match state.
func NewMediaQueryList(dark bool) *MediaQueryList {
	return &MediaQueryList{matches: dark, subs: make(map[int]func(bool))}
}

// Matches implements MediaQuery.
func (q *MediaQueryList) Matches() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.matches
}

// OnChange implements MediaQuery.
func (q *MediaQueryList) OnChange(fn func(bool)) func() {
	q.mu.Lock()
	id := q.nextID
	q.nextID++
	q.subs[id] = fn
	q.mu.Unlock()
	return func() {
		q.mu.Lock()
		delete(q.subs, id)
		q.mu.Unlock()
	}
}

// Set updates the match state and notifies listeners when it changed.
func (q *MediaQueryList) Set(dark bool) {
	q.mu.Lock()
	if q.matches == dark {
		q.mu.Unlock()
		return
	}
	q.matches = dark
	fns := make([]func(bool), 0, len(q.subs))
	for _, fn := range q.subs {
		fns = append(fns, fn)
	}
	q.mu.Unlock()
	for _, fn := range fns {
		fn(dark)
	}
}

// PreferenceObserver fans OS color-scheme changes out to subscribers.
type PreferenceObserver struct {
	mq     MediaQuery
	mu     sync.Mutex
	nextID int
	subs   map[int]func(domain.SystemTheme)
	stop   func()
}

// NewPreferenceObserver starts watching mq. A nil mq reports light and
// never changes.
func NewPreferenceObserver(mq MediaQuery) *PreferenceObserver {
	o := &PreferenceObserver{mq: mq, subs: make(map[int]func(domain.SystemTheme))}
	if mq != nil {
		o.stop = mq.OnChange(func(dark bool) {
			o.notify(domain.SystemThemeFromDark(dark))
		})
	}
	return o
}

// Current returns the OS preference right now.
func (o *PreferenceObserver) Current() domain.SystemTheme {
	if o == nil || o.mq == nil {
		return domain.SystemLight
	}
	return domain.SystemThemeFromDark(o.mq.Matches())
}

// Subscribe registers fn for future changes. The returned func removes
// only this subscription.
func (o *PreferenceObserver) Subscribe(fn func(domain.SystemTheme)) func() {
	o.mu.Lock()
	id := o.nextID
	o.nextID++
	o.subs[id] = fn
	o.mu.Unlock()
	var once sync.Once
	return func() {
		once.Do(func() {
			o.mu.Lock()
			delete(o.subs, id)
			o.mu.Unlock()
		})
	}
}

// Close detaches from the media query.
func (o *PreferenceObserver) Close() {
	if o.stop != nil {
		o.stop()
	}
}

func (o *PreferenceObserver) notify(pref domain.SystemTheme) {
	o.mu.Lock()
	fns := make([]func(domain.SystemTheme), 0, len(o.subs))
	for _, fn := range o.subs {
		fns = append(fns, fn)
	}
	o.mu.Unlock()
	for _, fn := range fns {
		fn(pref)
	}
}
