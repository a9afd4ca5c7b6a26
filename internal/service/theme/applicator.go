package theme

import "astro-themes/internal/domain"

// Element is the document root the applicator writes to.
type Element interface {
	AddClass(names ...string)
	RemoveClass(names ...string)
	SetAttribute(name, value string)
	SetColorScheme(scheme string)
}

// TransitionSuppressor is implemented by elements that can pause CSS
// transitions. The returned func restores them.
type TransitionSuppressor interface {
	DisableTransitions() (restore func())
}

// Apply writes the resolved theme to every configured attribute of el and,
// when enabled, the color-scheme hint for the built-in light and dark
// themes. Attributes are written in configured order. Re-applying the same
// theme leaves el unchanged.
func Apply(el Element, resolved string, cfg domain.Config) {
	if el == nil {
		return
	}
	value := cfg.AttributeValue(resolved)
	for _, attr := range cfg.Attributes {
		if attr.IsClass() {
			el.RemoveClass(classValues(cfg)...)
			el.AddClass(value)
			continue
		}
		el.SetAttribute(string(attr), value)
	}
	if cfg.EnableColorScheme && isColorScheme(resolved) {
		el.SetColorScheme(resolved)
	}
}

// applyChange is Apply for runtime changes, wrapped in transition
// suppression when the configuration asks for it.
func applyChange(el Element, resolved string, cfg domain.Config) {
	if cfg.DisableTransitionOnChange {
		if s, ok := el.(TransitionSuppressor); ok {
			restore := s.DisableTransitions()
			defer restore()
		}
	}
	Apply(el, resolved, cfg)
}

func classValues(cfg domain.Config) []string {
	out := make([]string, 0, len(cfg.Themes))
	for _, t := range cfg.Themes {
		out = append(out, cfg.AttributeValue(t))
	}
	return out
}

func isColorScheme(theme string) bool {
	return theme == domain.ThemeLight || theme == domain.ThemeDark
}
