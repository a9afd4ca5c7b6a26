package ui

import (
	"io/fs"
	"net/http"

	"github.com/go-chi/chi/v5"

	"astro-themes/internal/service/script"
	"astro-themes/internal/ui/assets"
)

// MountRoutes registers the playground, artifact and toolbar routes.
func MountRoutes(r chi.Router, h *Handler) {
	staticFS, err := fs.Sub(assets.StaticFS(), "static")
	if err == nil {
		r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.FS(staticFS))))
	}

	r.Get("/", h.Playground)
	r.Route("/themes", func(r chi.Router) {
		r.Get("/script.js", h.ScriptJS)
		r.Get("/head.html", h.HeadHTML)
		r.Get("/"+script.TypesFilename, h.TypesDTS)
	})
	if h.ToolbarEnabled() {
		r.Get(script.ToolbarAppEntrypoint, h.Toolbar)
	}
}
