package middleware

import (
	"log/slog"
	"net/http"

	"astro-themes/internal/service/theme"
)

// ThemeWindow gives every request its own unmounted theme.Window, reachable
// with theme.WindowFromContext.
func ThemeWindow(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := theme.WithWindow(r.Context(), theme.NewWindow(logger))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
