package theme

import (
	"context"
	"log/slog"
	"sync"

	"astro-themes/internal/domain"
)

// Window is the public accessor API over the per-document state handle.
// Before a Controller is mounted every getter reports "not ready" with a
// zero value and SetTheme is a no-op.
type Window struct {
	bus *Bus

	mu   sync.RWMutex
	ctrl *Controller
}

// NewWindow creates an unmounted Window. Listeners may subscribe before a
// controller is mounted.
func NewWindow(logger *slog.Logger) *Window {
	return &Window{bus: NewBus(logger)}
}

// Bus returns the window's change bus. Pass it in Options so the mounted
// controller publishes to the same listeners.
func (w *Window) Bus() *Bus { return w.bus }

// Boot runs flash prevention on el and mounts the resulting controller.
func (w *Window) Boot(cfg domain.Config, el Element, opts Options) *Controller {
	opts.Bus = w.bus
	c := Boot(cfg, el, opts)
	w.Mount(c)
	return c
}

// Mount publishes c as the window's state handle.
func (w *Window) Mount(c *Controller) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.ctrl = c
}

func (w *Window) controller() *Controller {
	if w == nil {
		return nil
	}
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.ctrl
}

// State returns the current state, or false when nothing is mounted.
func (w *Window) State() (domain.ThemeState, bool) {
	c := w.controller()
	if c == nil {
		return domain.ThemeState{}, false
	}
	return c.State(), true
}

// SetTheme forwards to the mounted controller. Updater functions run with
// the controller locked and must not call back into the Window.
func (w *Window) SetTheme(in domain.ThemeInput) {
	if c := w.controller(); c != nil {
		c.SetTheme(in)
	}
}

// ResolvedTheme returns the resolved theme, or false when not ready.
func (w *Window) ResolvedTheme() (string, bool) {
	st, ok := w.State()
	return st.ResolvedTheme, ok
}

// SystemTheme returns the OS preference, or false when not ready.
func (w *Window) SystemTheme() (domain.SystemTheme, bool) {
	st, ok := w.State()
	return st.SystemTheme, ok
}

// IsForcedTheme reports whether the page pins a theme.
func (w *Window) IsForcedTheme() bool {
	st, _ := w.State()
	return st.ForcedTheme != ""
}

// Themes returns the configured theme list, empty when not ready.
func (w *Window) Themes() []string {
	st, ok := w.State()
	if !ok {
		return []string{}
	}
	return st.Themes
}

// OnThemeChange subscribes fn to the change broadcast.
func (w *Window) OnThemeChange(fn func(domain.ChangeEvent)) func() {
	if w == nil {
		return func() {}
	}
	return w.bus.Subscribe(fn)
}

// ToggleTheme swaps between light and dark; other themes switch to light.
func (w *Window) ToggleTheme() {
	if c := w.controller(); c != nil {
		c.Toggle()
	}
}

type windowKey struct{}

// WithWindow stores w in the context.
func WithWindow(ctx context.Context, w *Window) context.Context {
	return context.WithValue(ctx, windowKey{}, w)
}

// WindowFromContext extracts the Window from the context.
func WindowFromContext(ctx context.Context) (*Window, bool) {
	w, ok := ctx.Value(windowKey{}).(*Window)
	return w, ok && w != nil
}
