// Package theme implements the runtime theme model: resolution, application
// to the document root, persistence, OS preference observation, change
// notification and the public accessor API.
package theme

import "astro-themes/internal/domain"

// Resolve maps the persisted choice, the configuration and the OS
// preference to the active and resolved theme. An empty persisted value
// means nothing is stored. Resolve is pure and total.
func Resolve(cfg domain.Config, persisted string, system domain.SystemTheme) domain.Resolution {
	if cfg.Forced() {
		return domain.Resolution{
			Theme:         cfg.ForcedTheme,
			ResolvedTheme: cfg.ForcedTheme,
			Mode:          domain.ModeForced,
		}
	}

	candidate := persisted
	if candidate == "" {
		candidate = cfg.DefaultTheme
	}

	if candidate == domain.ThemeSystem && cfg.EnableSystem {
		return domain.Resolution{
			Theme:         candidate,
			ResolvedTheme: string(system),
			Mode:          domain.ModeSystemFollowing,
		}
	}

	// With system detection off, "system" is kept as a literal name.
	return domain.Resolution{
		Theme:         candidate,
		ResolvedTheme: candidate,
		Mode:          domain.ModeExplicit,
	}
}

// resolveSession resolves a runtime selection on a forced page. The stored
// preference is bypassed, but the chosen name still resolves "system" so
// that the resolved theme stays concrete.
func resolveSession(cfg domain.Config, next string, system domain.SystemTheme) domain.Resolution {
	res := Resolve(cfg.WithForcedTheme(""), next, system)
	res.Mode = domain.ModeForced
	return res
}
