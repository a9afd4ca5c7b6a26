// Package api provides the JSON API of the playground server.
package api

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"sync"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/go-chi/chi/v5"

	"astro-themes/internal/domain"
	"astro-themes/internal/service/script"
	"astro-themes/internal/service/theme"
)

const maxBodyBytes = 64 << 10

// Handler serves the JSON API for one integration setup.
type Handler struct {
	setup  script.Setup
	spec   *openapi3.T
	logger *slog.Logger
}

// NewHandler creates a Handler. spec must come from LoadSpec.
func NewHandler(setup script.Setup, spec *openapi3.T, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Handler{setup: setup, spec: spec, logger: logger}
}

// MountRoutes registers the API routes.
func MountRoutes(r chi.Router, h *Handler) {
	r.Get("/health", h.Health)
	r.Get("/openapi.json", h.OpenAPI)
	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/config", h.GetConfig)
		r.Post("/resolve", h.Resolve)
	})
}

// Health reports liveness.
func (h *Handler) Health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// OpenAPI serves the API description.
func (h *Handler) OpenAPI(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.spec)
}

// ConfigResponse is the configuration after defaults, next to the props it
// came from.
type ConfigResponse struct {
	Props                     domain.Props       `json:"props"`
	StorageKey                string             `json:"storageKey"`
	DefaultTheme              string             `json:"defaultTheme"`
	ForcedTheme               string             `json:"forcedTheme,omitempty"`
	EnableSystem              bool               `json:"enableSystem"`
	EnableColorScheme         bool               `json:"enableColorScheme"`
	DisableTransitionOnChange bool               `json:"disableTransitionOnChange"`
	Themes                    []string           `json:"themes"`
	Attributes                []domain.Attribute `json:"attributes"`
	Value                     map[string]string  `json:"value,omitempty"`
	CSPHash                   string             `json:"cspHash,omitempty"`
}

// GetConfig returns the effective configuration.
func (h *Handler) GetConfig(w http.ResponseWriter, _ *http.Request) {
	cfg := h.setup.Config
	resp := ConfigResponse{
		Props:                     h.setup.Props,
		StorageKey:                cfg.StorageKey,
		DefaultTheme:              cfg.DefaultTheme,
		ForcedTheme:               cfg.ForcedTheme,
		EnableSystem:              cfg.EnableSystem,
		EnableColorScheme:         cfg.EnableColorScheme,
		DisableTransitionOnChange: cfg.DisableTransitionOnChange,
		Themes:                    cfg.Themes,
		Attributes:                cfg.Attributes,
		Value:                     cfg.Value,
	}
	if h.setup.ScriptSource != "" {
		resp.CSPHash = script.CSPHash(h.setup.ScriptSource)
	}
	writeJSON(w, http.StatusOK, resp)
}

// ResolveRequest describes one simulated page load. Props default to the
// server's props. SetTheme entries run after boot in order, then
// SystemChanges flip the OS preference.
type ResolveRequest struct {
	Props         *domain.Props `json:"props,omitempty"`
	Persisted     string        `json:"persisted,omitempty"`
	System        string        `json:"system,omitempty"`
	SetTheme      []string      `json:"setTheme,omitempty"`
	SystemChanges []string      `json:"systemChanges,omitempty"`
}

// ResolvedState is ThemeState with its mode spelled out.
type ResolvedState struct {
	domain.ThemeState
	Mode string `json:"mode"`
}

// ResolveResponse is the outcome of a simulated page load.
type ResolveResponse struct {
	State  ResolvedState        `json:"state"`
	Root   theme.DOMState       `json:"root"`
	Stored string               `json:"stored,omitempty"`
	Events []domain.ChangeEvent `json:"events"`
}

// Resolve boots a controller against an in-memory document and replays the
// requested changes.
func (h *Handler) Resolve(w http.ResponseWriter, r *http.Request) {
	raw, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes+1))
	if err != nil {
		writeError(w, http.StatusBadRequest, "read request body")
		return
	}
	if len(raw) > maxBodyBytes {
		writeError(w, http.StatusRequestEntityTooLarge, "request body too large")
		return
	}
	var generic any
	if err := json.Unmarshal(raw, &generic); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if err := validateBody(h.spec, "ResolveRequest", generic); err != nil {
		writeDomainError(w, err)
		return
	}
	var req ResolveRequest
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	resp, err := h.resolve(req)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) resolve(req ResolveRequest) (ResolveResponse, error) {
	cfg := h.setup.Config
	if req.Props != nil {
		cfg = req.Props.Config()
		if err := cfg.Validate(); err != nil {
			return ResolveResponse{}, err
		}
	}
	system := domain.SystemLight
	if req.System != "" {
		s, err := domain.ParseSystemTheme(req.System)
		if err != nil {
			return ResolveResponse{}, err
		}
		system = s
	}

	store := theme.NewMemoryStorage()
	if req.Persisted != "" {
		_ = store.SetItem(cfg.StorageKey, req.Persisted)
	}
	media := theme.NewMediaQueryList(system == domain.SystemDark)
	root := theme.NewRoot()
	ctrl := theme.Boot(cfg, root, theme.Options{Storage: store, Media: media, Logger: h.logger})
	defer ctrl.Close()

	var mu sync.Mutex
	events := []domain.ChangeEvent{}
	unsubscribe := ctrl.Bus().Subscribe(func(ev domain.ChangeEvent) {
		mu.Lock()
		defer mu.Unlock()
		events = append(events, ev)
	})
	defer unsubscribe()

	for _, name := range req.SetTheme {
		ctrl.SetTheme(domain.Literal(name))
	}
	for _, change := range req.SystemChanges {
		s, err := domain.ParseSystemTheme(change)
		if err != nil {
			return ResolveResponse{}, err
		}
		media.Set(s == domain.SystemDark)
	}

	st := ctrl.State()
	stored, _, _ := store.GetItem(cfg.StorageKey)
	mu.Lock()
	defer mu.Unlock()
	return ResolveResponse{
		State:  ResolvedState{ThemeState: st, Mode: st.Mode.String()},
		Root:   root.Snapshot(),
		Stored: stored,
		Events: events,
	}, nil
}
