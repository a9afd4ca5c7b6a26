package theme

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"astro-themes/internal/domain"
)

func TestApply_DataAttribute(t *testing.T) {
	cfg := defaultConfig()
	root := NewRoot()

	Apply(root, "dark", cfg)

	v, ok := root.Attribute("data-theme")
	require.True(t, ok)
	assert.Equal(t, "dark", v)
	assert.Equal(t, "dark", root.ColorScheme())
}

func TestApply_ClassReplacesConfiguredThemesOnly(t *testing.T) {
	cfg := defaultConfig()
	cfg.Attributes = []domain.Attribute{domain.AttributeClass}
	root := NewRoot("antialiased", "light")

	Apply(root, "dark", cfg)

	snap := root.Snapshot()
	assert.Equal(t, []string{"antialiased", "dark"}, snap.Classes)
}

func TestApply_Idempotent(t *testing.T) {
	cfg := defaultConfig()
	cfg.Attributes = []domain.Attribute{domain.AttributeClass, "data-theme", domain.AttributeClass}

	once := NewRoot()
	Apply(once, "dark", cfg)

	twice := NewRoot()
	Apply(twice, "dark", cfg)
	Apply(twice, "dark", cfg)

	assert.Equal(t, once.Snapshot(), twice.Snapshot())
	assert.Equal(t, []string{"dark"}, twice.Snapshot().Classes)
}

func TestApply_ValueOverride(t *testing.T) {
	cfg := defaultConfig()
	cfg.Attributes = []domain.Attribute{domain.AttributeClass}
	cfg.Value = map[string]string{"dark": "theme-dark", "light": "theme-light"}
	root := NewRoot()

	Apply(root, "light", cfg)
	Apply(root, "dark", cfg)

	assert.Equal(t, []string{"theme-dark"}, root.Snapshot().Classes)
	assert.False(t, root.HasClass("dark"))
}

func TestApply_ClassAndDataShareOverride(t *testing.T) {
	cfg := defaultConfig()
	cfg.Attributes = []domain.Attribute{domain.AttributeClass, "data-mode"}
	cfg.Value = map[string]string{"dark": "night"}
	root := NewRoot()

	Apply(root, "dark", cfg)

	snap := root.Snapshot()
	assert.Equal(t, []string{"night"}, snap.Classes)
	assert.Equal(t, "night", snap.Attributes["data-mode"])
	// The color-scheme hint follows the theme name, not the mapped value.
	assert.Equal(t, "dark", snap.ColorScheme)
}

func TestApply_ColorSchemeOnlyForBuiltins(t *testing.T) {
	cfg := defaultConfig()
	cfg.Themes = []string{"light", "dark", "sepia"}
	root := NewRoot()

	Apply(root, "dark", cfg)
	Apply(root, "sepia", cfg)

	assert.Equal(t, "dark", root.ColorScheme(), "custom theme leaves the hint untouched")

	cfg.EnableColorScheme = false
	fresh := NewRoot()
	Apply(fresh, "light", cfg)
	assert.Empty(t, fresh.ColorScheme())
}

func TestApply_NoAttributes(t *testing.T) {
	cfg := defaultConfig()
	cfg.Attributes = nil
	cfg.EnableColorScheme = false
	root := NewRoot("x")

	Apply(root, "dark", cfg)

	assert.Equal(t, DOMState{Classes: []string{"x"}, Attributes: map[string]string{}}, root.Snapshot())
}

func TestApplyChange_SuppressesTransitions(t *testing.T) {
	cfg := defaultConfig()
	cfg.DisableTransitionOnChange = true
	root := NewRoot()

	applyChange(root, "dark", cfg)

	assert.Positive(t, root.PausedWrites())
	assert.False(t, root.TransitionsPaused())

	plain := NewRoot()
	cfg.DisableTransitionOnChange = false
	applyChange(plain, "dark", cfg)
	assert.Zero(t, plain.PausedWrites())
}
