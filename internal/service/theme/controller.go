package theme

import (
	"log/slog"
	"slices"
	"sync"

	"astro-themes/internal/domain"
)

// Options carries the collaborators of a Controller. Zero values are
// usable: no storage, a light OS preference and a private bus.
type Options struct {
	Storage Storage
	Media   MediaQuery
	Bus     *Bus
	Logger  *slog.Logger
}

// Controller owns the single ThemeState of a document and keeps the root
// element, the storage slot and the bus in step with it.
type Controller struct {
	cfg      domain.Config
	el       Element
	store    *Persistence
	observer *PreferenceObserver
	bus      *Bus
	logger   *slog.Logger

	mu     sync.Mutex
	state  domain.ThemeState
	unwire func()
}

// Boot runs flash prevention (read, resolve, apply) synchronously and
// returns the Controller holding the resulting state. The configuration is
// trusted; validation belongs to the integration.
func Boot(cfg domain.Config, el Element, opts Options) *Controller {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	bus := opts.Bus
	if bus == nil {
		bus = NewBus(logger)
	}
	c := &Controller{
		cfg:      cfg,
		el:       el,
		store:    NewPersistence(opts.Storage, logger),
		observer: NewPreferenceObserver(opts.Media),
		bus:      bus,
		logger:   logger,
	}

	system := c.observer.Current()
	var persisted string
	if !cfg.Forced() {
		persisted, _ = c.store.Read(cfg.StorageKey)
	}
	res := Resolve(cfg, persisted, system)
	Apply(el, res.ResolvedTheme, cfg)

	c.state = domain.ThemeState{
		Theme:         res.Theme,
		ResolvedTheme: res.ResolvedTheme,
		SystemTheme:   system,
		ForcedTheme:   cfg.ForcedTheme,
		Themes:        slices.Clone(cfg.Themes),
		Mode:          res.Mode,
	}
	c.unwire = c.observer.Subscribe(c.onSystemChange)

	logger.Debug("theme booted",
		"theme", res.Theme,
		"resolved_theme", res.ResolvedTheme,
		"system_theme", string(system),
		"mode", res.Mode.String())
	return c
}

// Config returns the configuration the controller was booted with.
func (c *Controller) Config() domain.Config { return c.cfg }

// Bus returns the change bus.
func (c *Controller) Bus() *Bus { return c.bus }

// State returns a copy of the current state.
func (c *Controller) State() domain.ThemeState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.Clone()
}

// SetTheme applies the selection, persists it unless the page is forced,
// then publishes the change. An empty selection means the default theme.
// It returns the new state.
func (c *Controller) SetTheme(in domain.ThemeInput) domain.ThemeState {
	return c.set(func(st domain.ThemeState) string { return in.Next(st.Theme) })
}

// Toggle swaps the resolved theme between light and dark. Any other
// resolved theme switches to light.
func (c *Controller) Toggle() domain.ThemeState {
	return c.set(func(st domain.ThemeState) string { return toggled(st.ResolvedTheme) })
}

func (c *Controller) set(pick func(domain.ThemeState) string) domain.ThemeState {
	c.mu.Lock()
	next := pick(c.state)
	if next == "" {
		next = c.cfg.DefaultTheme
	}

	var res domain.Resolution
	if c.state.Mode == domain.ModeForced {
		res = resolveSession(c.cfg, next, c.state.SystemTheme)
	} else {
		c.store.Write(c.cfg.StorageKey, next)
		res = Resolve(c.cfg, next, c.state.SystemTheme)
	}
	applyChange(c.el, res.ResolvedTheme, c.cfg)

	c.state.Theme = res.Theme
	c.state.ResolvedTheme = res.ResolvedTheme
	c.state.Mode = res.Mode
	state := c.state.Clone()
	c.mu.Unlock()

	c.logger.Debug("theme set", "theme", state.Theme, "resolved_theme", state.ResolvedTheme, "mode", state.Mode.String())
	c.bus.Publish(domain.ChangeEvent{Theme: state.Theme, ResolvedTheme: state.ResolvedTheme})
	return state
}

// Close detaches the controller from the OS preference watch.
func (c *Controller) Close() {
	c.mu.Lock()
	unwire := c.unwire
	c.unwire = nil
	c.mu.Unlock()
	if unwire != nil {
		unwire()
	}
	c.observer.Close()
}

// onSystemChange records the new OS preference and re-resolves when the
// selection is "system".
func (c *Controller) onSystemChange(pref domain.SystemTheme) {
	c.mu.Lock()
	c.state.SystemTheme = pref
	if c.state.Theme != domain.ThemeSystem || !c.cfg.EnableSystem {
		c.mu.Unlock()
		return
	}
	if c.cfg.Forced() && c.state.Theme == c.cfg.ForcedTheme {
		c.mu.Unlock()
		return
	}
	c.state.ResolvedTheme = string(pref)
	applyChange(c.el, c.state.ResolvedTheme, c.cfg)
	ev := domain.ChangeEvent{Theme: c.state.Theme, ResolvedTheme: c.state.ResolvedTheme}
	c.mu.Unlock()

	c.logger.Debug("system theme changed", "system_theme", string(pref))
	c.bus.Publish(ev)
}

func toggled(resolved string) string {
	if resolved == domain.ThemeLight {
		return domain.ThemeDark
	}
	return domain.ThemeLight
}
