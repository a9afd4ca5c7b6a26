package theme

import (
	"maps"
	"slices"
	"sort"
	"strings"
	"sync"
)

// DOMState is a point-in-time view of a Root element.
type DOMState struct {
	Classes     []string          `json:"classes"`
	Attributes  map[string]string `json:"attributes"`
	ColorScheme string            `json:"colorScheme,omitempty"`
}

// ClassName joins the class list the way the class attribute renders it.
func (s DOMState) ClassName() string { return strings.Join(s.Classes, " ") }

// Root is an in-memory document root. It backs server-side rendering of
// forced pages, the resolve API and the tests.
type Root struct {
	mu          sync.Mutex
	classes     []string
	attrs       map[string]string
	colorScheme string
	paused      int
	pausedWrite int
}

// NewRoot creates an empty Root, optionally seeded with classes.
func NewRoot(classes ...string) *Root {
	r := &Root{attrs: make(map[string]string)}
	r.AddClass(classes...)
	return r
}

// AddClass appends each name not already present.
func (r *Root) AddClass(names ...string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, n := range names {
		if n == "" || slices.Contains(r.classes, n) {
			continue
		}
		r.classes = append(r.classes, n)
	}
	r.touch()
}

// RemoveClass drops each name that is present.
func (r *Root) RemoveClass(names ...string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.classes = slices.DeleteFunc(r.classes, func(c string) bool {
		return slices.Contains(names, c)
	})
	r.touch()
}

// SetAttribute overwrites a single attribute.
func (r *Root) SetAttribute(name, value string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.attrs[name] = value
	r.touch()
}

// SetColorScheme sets the color-scheme style hint.
func (r *Root) SetColorScheme(scheme string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.colorScheme = scheme
	r.touch()
}

// DisableTransitions pauses transitions until the returned func is called.
func (r *Root) DisableTransitions() func() {
	r.mu.Lock()
	r.paused++
	r.mu.Unlock()
	var once sync.Once
	return func() {
		once.Do(func() {
			r.mu.Lock()
			r.paused--
			r.mu.Unlock()
		})
	}
}

// TransitionsPaused reports whether a suppression is active.
func (r *Root) TransitionsPaused() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.paused > 0
}

// PausedWrites counts writes made while transitions were suppressed.
func (r *Root) PausedWrites() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.pausedWrite
}

// Attribute returns the value of name and whether it is set.
func (r *Root) Attribute(name string) (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	v, ok := r.attrs[name]
	return v, ok
}

// HasClass reports whether name is in the class list.
func (r *Root) HasClass(name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Contains(r.classes, name)
}

// ColorScheme returns the color-scheme hint, empty when never set.
func (r *Root) ColorScheme() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.colorScheme
}

// Snapshot copies the current state.
func (r *Root) Snapshot() DOMState {
	r.mu.Lock()
	defer r.mu.Unlock()
	return DOMState{
		Classes:     slices.Clone(r.classes),
		Attributes:  maps.Clone(r.attrs),
		ColorScheme: r.colorScheme,
	}
}

// AttributeNames returns the set attribute names in sorted order.
func (s DOMState) AttributeNames() []string {
	names := make([]string, 0, len(s.Attributes))
	for n := range s.Attributes {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

func (r *Root) touch() {
	if r.paused > 0 {
		r.pausedWrite++
	}
}
