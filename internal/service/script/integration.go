package script

import (
	"fmt"
	"log/slog"

	"astro-themes/internal/domain"
)

// Toolbar app registration values.
const (
	ToolbarAppID         = "astro-themes-toolbar"
	ToolbarAppName       = "Theme Switcher"
	ToolbarAppEntrypoint = "/_themes/toolbar"
	ToolbarAppIcon       = `<svg xmlns="http://www.w3.org/2000/svg" width="16" height="16" viewBox="0 0 24 24" fill="none" stroke="currentColor" stroke-width="2" stroke-linecap="round" stroke-linejoin="round"><circle cx="12" cy="12" r="4"/><path d="M12 2v2"/><path d="M12 20v2"/><path d="m4.93 4.93 1.41 1.41"/><path d="m17.66 17.66 1.41 1.41"/><path d="M2 12h2"/><path d="M20 12h2"/><path d="m6.34 17.66-1.41 1.41"/><path d="m19.07 4.93-1.41 1.41"/></svg>`
)

// ToolbarApp describes the dev-toolbar theme switcher.
type ToolbarApp struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Icon       string `json:"icon"`
	Entrypoint string `json:"entrypoint"`
}

// Setup is what the host build receives from the integration hook.
type Setup struct {
	// ScriptSource is the minified inline script; empty unless auto
	// injection is enabled.
	ScriptSource    string        `json:"scriptSource,omitempty"`
	TypeDeclaration string        `json:"typeDeclaration"`
	TypesFilename   string        `json:"typesFilename"`
	ToolbarApp      *ToolbarApp   `json:"toolbarApp,omitempty"`
	Config          domain.Config `json:"-"`
	Props           domain.Props  `json:"props"`
}

// Integration is the build-time hook.
type Integration struct {
	opts   domain.IntegrationOptions
	logger *slog.Logger
}

// NewIntegration creates an Integration for opts.
func NewIntegration(opts domain.IntegrationOptions, logger *slog.Logger) *Integration {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Integration{opts: opts, logger: logger}
}

// Options returns the integration options.
func (i *Integration) Options() domain.IntegrationOptions { return i.opts }

// Setup validates the merged configuration and produces the artifacts for
// command. Invalid configuration is rejected here so the emitted script
// never has to check it.
func (i *Integration) Setup(command string) (Setup, error) {
	cfg := i.opts.Props.Config()
	if err := cfg.Validate(); err != nil {
		return Setup{}, fmt.Errorf("invalid theme config: %w", err)
	}
	i.logger.Info("astro-themes initialized", "command", command)

	out := Setup{
		TypeDeclaration: TypeDeclaration,
		TypesFilename:   TypesFilename,
		Config:          cfg,
		Props:           i.opts.Props,
	}
	if i.opts.InjectScript {
		rendered, err := Render(cfg)
		if err != nil {
			return Setup{}, err
		}
		out.ScriptSource = rendered.Minified
	}
	if i.opts.DevToolbarEnabled() && command == domain.CommandDev {
		out.ToolbarApp = &ToolbarApp{
			ID:         ToolbarAppID,
			Name:       ToolbarAppName,
			Icon:       ToolbarAppIcon,
			Entrypoint: ToolbarAppEntrypoint,
		}
		i.logger.Debug("dev toolbar app registered", "id", ToolbarAppID)
	}
	return out, nil
}
