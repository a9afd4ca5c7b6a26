package ui

import (
	"log/slog"
	"net/http"
	"slices"
	"strings"

	"astro-themes/internal/service/script"

	gomponents "maragu.dev/gomponents"
)

// Handler serves the playground, the toolbar panel and the artifacts of one
// integration setup.
type Handler struct {
	Setup  script.Setup
	Script script.Script
	Logger *slog.Logger
}

// NewHandler runs the integration hook for command and keeps its output.
func NewHandler(integration *script.Integration, command string, logger *slog.Logger) (*Handler, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	setup, err := integration.Setup(command)
	if err != nil {
		return nil, err
	}
	rendered, err := script.Render(setup.Config)
	if err != nil {
		return nil, err
	}
	return &Handler{Setup: setup, Script: rendered, Logger: logger}, nil
}

// ToolbarEnabled reports whether the dev-toolbar panel is registered.
func (h *Handler) ToolbarEnabled() bool { return h.Setup.ToolbarApp != nil }

// Playground renders the demo page. ?forced=<theme> pins the page.
func (h *Handler) Playground(w http.ResponseWriter, r *http.Request) {
	props := h.Setup.Props
	cfg := h.Setup.Config
	if forced := strings.TrimSpace(r.URL.Query().Get("forced")); forced != "" {
		if !slices.Contains(cfg.Themes, forced) {
			renderHTML(w, http.StatusBadRequest, errorPage("Unknown theme", "Forced theme "+forced+" is not in the configured theme list."))
			return
		}
		props.ForcedTheme = forced
		cfg = cfg.WithForcedTheme(forced)
	}

	provider, rendered, err := renderProvider(props)
	if err != nil {
		h.Logger.Error("render theme provider", "error", err)
		renderHTML(w, http.StatusInternalServerError, errorPage("Theme error", err.Error()))
		return
	}
	dom, state := prerender(cfg, r, h.Logger)

	w.Header().Set("Accept-CH", clientHintHeader)
	w.Header().Add("Vary", clientHintHeader)
	w.Header().Add("Vary", "Cookie")
	renderHTML(w, http.StatusOK, playgroundPage(playgroundView{
		Provider: provider,
		Root:     dom,
		State:    state,
		Config:   cfg,
		CSPHash:  script.CSPHash(rendered.Minified),
		Toolbar:  h.Setup.ToolbarApp,
	}))
}

// Toolbar renders the dev-toolbar theme switcher panel.
func (h *Handler) Toolbar(w http.ResponseWriter, _ *http.Request) {
	if h.Setup.ToolbarApp == nil {
		renderHTML(w, http.StatusNotFound, errorPage("Not found", "The dev toolbar is disabled."))
		return
	}
	renderHTML(w, http.StatusOK, toolbarPage(h.Setup.ToolbarApp, h.Setup.Config))
}

// ScriptJS serves the inline script. ?minify=false serves the readable form.
func (h *Handler) ScriptJS(w http.ResponseWriter, r *http.Request) {
	body := h.Script.Minified
	if r.URL.Query().Get("minify") == "false" {
		body = h.Script.Source
	}
	w.Header().Set("Content-Type", "text/javascript; charset=utf-8")
	w.Header().Set("Cache-Control", "no-cache")
	_, _ = w.Write([]byte(body))
}

// TypesDTS serves the injected type declarations.
func (h *Handler) TypesDTS(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/typescript; charset=utf-8")
	_, _ = w.Write([]byte(h.Setup.TypeDeclaration))
}

// HeadHTML serves the ThemeProvider element as an HTML fragment.
func (h *Handler) HeadHTML(w http.ResponseWriter, _ *http.Request) {
	snippet, err := HeadSnippet(h.Setup.Props)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write([]byte(snippet))
}

func renderHTML(w http.ResponseWriter, status int, node gomponents.Node) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_ = node.Render(w)
}
