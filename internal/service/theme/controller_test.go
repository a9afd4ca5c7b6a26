package theme

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"astro-themes/internal/domain"
)

func TestBoot_WorkedExample(t *testing.T) {
	cfg := domain.Props{
		DefaultTheme: "system",
		Themes:       []string{"light", "dark"},
		Attribute:    []domain.Attribute{"data-theme"},
		EnableSystem: domain.Bool(true),
	}.Config()
	root := NewRoot()

	c := Boot(cfg, root, Options{Storage: NewMemoryStorage(), Media: NewMediaQueryList(true)})
	defer c.Close()

	v, _ := root.Attribute("data-theme")
	assert.Equal(t, "dark", v)
	assert.Equal(t, "dark", root.ColorScheme())

	st := c.State()
	assert.Equal(t, "system", st.Theme)
	assert.Equal(t, "dark", st.ResolvedTheme)
	assert.Equal(t, domain.SystemDark, st.SystemTheme)
	assert.Equal(t, []string{"light", "dark"}, st.Themes)
}

func TestSetTheme_RoundTripAcrossReload(t *testing.T) {
	cfg := defaultConfig()
	store := NewMemoryStorage()

	first := Boot(cfg, NewRoot(), Options{Storage: store, Media: NewMediaQueryList(false)})
	first.SetTheme(domain.Literal("dark"))
	first.Close()

	// Fresh page load on the same slot with a light OS preference.
	root := NewRoot()
	second := Boot(cfg, root, Options{Storage: store, Media: NewMediaQueryList(false)})
	defer second.Close()

	st := second.State()
	assert.Equal(t, "dark", st.ResolvedTheme)
	assert.Equal(t, domain.ModeExplicit, st.Mode)
	v, _ := root.Attribute("data-theme")
	assert.Equal(t, "dark", v)
}

func TestBoot_StorageDenied(t *testing.T) {
	cfg := defaultConfig()
	for _, system := range []bool{false, true} {
		root := NewRoot()
		c := Boot(cfg, root, Options{Storage: &MemoryStorage{Denied: true}, Media: NewMediaQueryList(system)})

		want := Resolve(cfg, "", domain.SystemThemeFromDark(system))
		st := c.State()
		assert.Equal(t, want.Theme, st.Theme)
		assert.Equal(t, want.ResolvedTheme, st.ResolvedTheme)

		assert.NotPanics(t, func() { c.SetTheme(domain.Literal("light")) })
		assert.Equal(t, "light", c.State().ResolvedTheme)
		c.Close()
	}
}

func TestBoot_StoragePanics(t *testing.T) {
	cfg := defaultConfig()
	root := NewRoot()

	var c *Controller
	require.NotPanics(t, func() {
		c = Boot(cfg, root, Options{Storage: panicStorage{}, Media: NewMediaQueryList(true)})
	})
	assert.Equal(t, "dark", c.State().ResolvedTheme)
}

func TestSetTheme_PipelineThenBus(t *testing.T) {
	cfg := defaultConfig()
	store := NewMemoryStorage()
	root := NewRoot()
	c := Boot(cfg, root, Options{Storage: store})

	var seen []domain.ChangeEvent
	c.Bus().Subscribe(func(ev domain.ChangeEvent) {
		// Persistence and DOM are already updated when listeners run.
		stored, _, _ := store.GetItem("theme")
		attr, _ := root.Attribute("data-theme")
		assert.Equal(t, ev.Theme, stored)
		assert.Equal(t, ev.ResolvedTheme, attr)
		seen = append(seen, ev)
	})

	c.SetTheme(domain.Literal("dark"))
	c.SetTheme(domain.Updater(func(prev string) string {
		assert.Equal(t, "dark", prev)
		return "light"
	}))

	assert.Equal(t, []domain.ChangeEvent{
		{Theme: "dark", ResolvedTheme: "dark"},
		{Theme: "light", ResolvedTheme: "light"},
	}, seen)
}

func TestSetTheme_EmptyFallsBackToDefault(t *testing.T) {
	tests := []struct {
		name string
		in   domain.ThemeInput
	}{
		{name: "literal", in: domain.Literal("")},
		{name: "updater", in: domain.Updater(func(string) string { return "" })},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := NewMemoryStorage()
			require.NoError(t, store.SetItem("theme", "light"))
			root := NewRoot()
			c := Boot(defaultConfig(), root, Options{Storage: store, Media: NewMediaQueryList(true)})
			defer c.Close()

			st := c.SetTheme(tt.in)
			assert.Equal(t, domain.ThemeSystem, st.Theme)
			assert.Equal(t, "dark", st.ResolvedTheme)
			assert.Equal(t, domain.ModeSystemFollowing, st.Mode)
			assert.Equal(t, "dark", root.Snapshot().Attributes["data-theme"])

			stored, ok, err := store.GetItem("theme")
			require.NoError(t, err)
			assert.True(t, ok)
			assert.Equal(t, domain.ThemeSystem, stored)
		})
	}
}

func TestSetTheme_StateMachine(t *testing.T) {
	cfg := defaultConfig()
	mq := NewMediaQueryList(false)
	c := Boot(cfg, NewRoot(), Options{Storage: NewMemoryStorage(), Media: mq})
	defer c.Close()

	assert.Equal(t, domain.ModeSystemFollowing, c.State().Mode)

	c.SetTheme(domain.Literal("dark"))
	assert.Equal(t, domain.ModeExplicit, c.State().Mode)

	// Explicit ignores OS changes.
	mq.Set(true)
	mq.Set(false)
	assert.Equal(t, "dark", c.State().ResolvedTheme)
	assert.Equal(t, domain.SystemLight, c.State().SystemTheme)

	c.SetTheme(domain.Literal("system"))
	st := c.State()
	assert.Equal(t, domain.ModeSystemFollowing, st.Mode)
	assert.Equal(t, "light", st.ResolvedTheme)

	var events []domain.ChangeEvent
	c.Bus().Subscribe(func(ev domain.ChangeEvent) { events = append(events, ev) })
	mq.Set(true)
	assert.Equal(t, "dark", c.State().ResolvedTheme)
	assert.Equal(t, []domain.ChangeEvent{{Theme: "system", ResolvedTheme: "dark"}}, events)
}

func TestSetTheme_ForcedNeverPersists(t *testing.T) {
	cfg := defaultConfig().WithForcedTheme("dark")
	store := NewMemoryStorage()
	require.NoError(t, store.SetItem("theme", "system"))
	root := NewRoot()

	c := Boot(cfg, root, Options{Storage: store, Media: NewMediaQueryList(false)})
	st := c.State()
	assert.Equal(t, "dark", st.Theme)
	assert.Equal(t, "dark", st.ResolvedTheme)
	assert.Equal(t, "dark", st.ForcedTheme)

	c.SetTheme(domain.Literal("light"))

	st = c.State()
	assert.Equal(t, "light", st.ResolvedTheme)
	assert.Equal(t, domain.ModeForced, st.Mode)
	assert.Equal(t, "dark", st.ForcedTheme)
	v, _, _ := store.GetItem("theme")
	assert.Equal(t, "system", v, "stored preference untouched")
	attr, _ := root.Attribute("data-theme")
	assert.Equal(t, "light", attr)

	// Session selection of "system" still resolves to a concrete theme.
	c.SetTheme(domain.Literal("system"))
	assert.Equal(t, "light", c.State().ResolvedTheme)
	assert.Equal(t, domain.ModeForced, c.State().Mode)
}

func TestToggle(t *testing.T) {
	tests := []struct {
		start string
		want  string
	}{
		{start: "dark", want: "light"},
		{start: "light", want: "dark"},
		{start: "sepia", want: "light"},
	}
	for _, tt := range tests {
		t.Run(tt.start, func(t *testing.T) {
			cfg := defaultConfig()
			cfg.Themes = []string{"light", "dark", "sepia"}
			store := NewMemoryStorage()
			require.NoError(t, store.SetItem("theme", tt.start))

			c := Boot(cfg, NewRoot(), Options{Storage: store})
			require.Equal(t, tt.start, c.State().ResolvedTheme)

			assert.Equal(t, tt.want, c.Toggle().ResolvedTheme)
		})
	}
}

func TestSetTheme_TransitionSuppression(t *testing.T) {
	cfg := defaultConfig()
	cfg.DisableTransitionOnChange = true
	root := NewRoot()

	c := Boot(cfg, root, Options{})
	assert.Zero(t, root.PausedWrites(), "initial application is never suppressed")

	c.SetTheme(domain.Literal("dark"))
	assert.Positive(t, root.PausedWrites())
	assert.False(t, root.TransitionsPaused())
}

func TestWindow_NotReady(t *testing.T) {
	w := NewWindow(nil)

	_, ok := w.State()
	assert.False(t, ok)
	_, ok = w.ResolvedTheme()
	assert.False(t, ok)
	_, ok = w.SystemTheme()
	assert.False(t, ok)
	assert.False(t, w.IsForcedTheme())
	assert.NotNil(t, w.Themes())
	assert.Empty(t, w.Themes())
	assert.NotPanics(t, func() {
		w.SetTheme(domain.Literal("dark"))
		w.ToggleTheme()
	})
}

func TestWindow_Accessors(t *testing.T) {
	w := NewWindow(nil)

	var events []domain.ChangeEvent
	stop := w.OnThemeChange(func(ev domain.ChangeEvent) { events = append(events, ev) })

	root := NewRoot()
	c := w.Boot(defaultConfig(), root, Options{Storage: NewMemoryStorage(), Media: NewMediaQueryList(true)})
	defer c.Close()

	resolved, ok := w.ResolvedTheme()
	require.True(t, ok)
	assert.Equal(t, "dark", resolved)
	sys, _ := w.SystemTheme()
	assert.Equal(t, domain.SystemDark, sys)
	assert.Equal(t, []string{"light", "dark"}, w.Themes())
	assert.False(t, w.IsForcedTheme())

	w.ToggleTheme()
	resolved, _ = w.ResolvedTheme()
	assert.Equal(t, "light", resolved)

	stop()
	w.SetTheme(domain.Updater(func(prev string) string { return strings.ToUpper(prev[:1]) + prev[1:] }))

	assert.Equal(t, []domain.ChangeEvent{{Theme: "light", ResolvedTheme: "light"}}, events)
	st, _ := w.State()
	assert.Equal(t, "Light", st.Theme)
}

func TestWindow_Forced(t *testing.T) {
	w := NewWindow(nil)
	w.Boot(defaultConfig().WithForcedTheme("light"), NewRoot(), Options{})
	assert.True(t, w.IsForcedTheme())
}

func TestWindowContext(t *testing.T) {
	_, ok := WindowFromContext(context.Background())
	assert.False(t, ok)

	w := NewWindow(nil)
	got, ok := WindowFromContext(WithWindow(context.Background(), w))
	require.True(t, ok)
	assert.Same(t, w, got)
}
