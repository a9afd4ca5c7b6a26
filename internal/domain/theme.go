package domain

import (
	"slices"
	"strings"
)

// Well-known theme names.
const (
	ThemeSystem = "system"
	ThemeLight  = "light"
	ThemeDark   = "dark"
)

// ChangeEventName is the broadcast event fired on every theme change.
const ChangeEventName = "astro-themes:change"

// DarkSchemeQuery is the media query watched for the OS preference.
const DarkSchemeQuery = "(prefers-color-scheme: dark)"

// GlobalStateSlot is the window property holding the live ThemeState.
const GlobalStateSlot = "__ASTRO_THEMES__"

// Attribute names a root-element attribute the theme is written to.
// It is either AttributeClass or a custom data-* attribute.
type Attribute string

// AttributeClass selects the class-list form.
const AttributeClass Attribute = "class"

// IsClass reports whether the attribute is the class-list form.
func (a Attribute) IsClass() bool { return a == AttributeClass }

// IsData reports whether the attribute is a data-* attribute.
func (a Attribute) IsData() bool {
	return strings.HasPrefix(string(a), "data-") && len(a) > len("data-")
}

// SystemTheme is the OS-level color scheme preference.
type SystemTheme string

// Supported system preferences.
const (
	SystemLight SystemTheme = ThemeLight
	SystemDark  SystemTheme = ThemeDark
)

// SystemThemeFromDark maps a prefers-color-scheme: dark match to a preference.
func SystemThemeFromDark(dark bool) SystemTheme {
	if dark {
		return SystemDark
	}
	return SystemLight
}

// ParseSystemTheme accepts "dark" or "light" (case-insensitive).
func ParseSystemTheme(s string) (SystemTheme, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case ThemeDark:
		return SystemDark, nil
	case ThemeLight:
		return SystemLight, nil
	default:
		return "", ErrValidation("system theme must be %q or %q, got %q", ThemeDark, ThemeLight, s)
	}
}

// Config is the immutable theme configuration supplied at setup time.
type Config struct {
	StorageKey                string
	DefaultTheme              string
	ForcedTheme               string // empty means no forced theme
	EnableSystem              bool
	EnableColorScheme         bool
	DisableTransitionOnChange bool
	Themes                    []string
	Attributes                []Attribute
	Value                     map[string]string // theme name -> attribute value override
}

// Forced reports whether the configuration pins a theme for the page.
func (c Config) Forced() bool { return c.ForcedTheme != "" }

// AttributeValue maps a theme name through the override table.
func (c Config) AttributeValue(theme string) string {
	if v, ok := c.Value[theme]; ok && v != "" {
		return v
	}
	return theme
}

// WithForcedTheme returns a copy of c pinned to theme for a single page.
func (c Config) WithForcedTheme(theme string) Config {
	c.ForcedTheme = theme
	return c
}

// Validate checks the build-time configuration contract. The runtime path
// never validates; the integration calls this before emitting anything.
func (c Config) Validate() error {
	if strings.TrimSpace(c.StorageKey) == "" {
		return ErrValidation("storage key must not be empty")
	}
	if len(c.Themes) == 0 {
		return ErrValidation("theme list must not be empty")
	}
	seen := make(map[string]struct{}, len(c.Themes))
	for _, t := range c.Themes {
		if strings.TrimSpace(t) == "" {
			return ErrValidation("theme names must not be empty")
		}
		if t == ThemeSystem {
			return ErrValidation("%q is reserved and cannot be listed as a theme", ThemeSystem)
		}
		if _, dup := seen[t]; dup {
			return ErrValidation("duplicate theme %q", t)
		}
		seen[t] = struct{}{}
	}
	for _, a := range c.Attributes {
		if !a.IsClass() && !a.IsData() {
			return ErrValidation("attribute %q must be \"class\" or a data-* attribute", a)
		}
	}
	if c.DefaultTheme == "" {
		return ErrValidation("default theme must not be empty")
	}
	if c.ForcedTheme == ThemeSystem {
		return ErrValidation("forced theme cannot be %q", ThemeSystem)
	}
	if c.ForcedTheme != "" && !slices.Contains(c.Themes, c.ForcedTheme) {
		return ErrValidation("forced theme %q is not one of %v", c.ForcedTheme, c.Themes)
	}
	for k := range c.Value {
		if !slices.Contains(c.Themes, k) {
			return ErrValidation("value override for unknown theme %q", k)
		}
	}
	return nil
}

// Mode is the state-machine position of a ThemeState.
type Mode int

const (
	// ModeExplicit follows a concrete, user-chosen theme name.
	ModeExplicit Mode = iota
	// ModeSystemFollowing re-resolves on every OS preference change.
	ModeSystemFollowing
	// ModeForced is pinned by the page and terminal for the session.
	ModeForced
)

func (m Mode) String() string {
	switch m {
	case ModeSystemFollowing:
		return "system"
	case ModeForced:
		return "forced"
	default:
		return "explicit"
	}
}

// Resolution is the Resolver output.
type Resolution struct {
	Theme         string // as chosen; may be "system"
	ResolvedTheme string
	Mode          Mode
}

// ThemeState is the live per-window theme state.
type ThemeState struct {
	Theme         string      `json:"theme"`
	ResolvedTheme string      `json:"resolvedTheme"`
	SystemTheme   SystemTheme `json:"systemTheme"`
	ForcedTheme   string      `json:"forcedTheme,omitempty"`
	Themes        []string    `json:"themes"`
	Mode          Mode        `json:"-"`
}

// Clone returns a copy that does not share the theme list.
func (s ThemeState) Clone() ThemeState {
	s.Themes = slices.Clone(s.Themes)
	return s
}

// ChangeEvent is the payload of the astro-themes:change broadcast.
type ChangeEvent struct {
	Theme         string `json:"theme"`
	ResolvedTheme string `json:"resolvedTheme"`
}
