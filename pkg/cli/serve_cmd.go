package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"astro-themes/internal/api"
	"astro-themes/internal/config"
	"astro-themes/internal/domain"
	"astro-themes/internal/middleware"
	"astro-themes/internal/service/script"
	"astro-themes/internal/ui"
)

const shutdownTimeout = 10 * time.Second

func newServeCmd(g *globalFlags) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the playground server",
		Long:  "Serve the playground page, the theme artifacts and the JSON API.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.LoadFromEnv()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			if cmd.Flags().Changed("addr") {
				cfg.ListenAddr = addr
			}
			if !cmd.Root().PersistentFlags().Changed("log-level") && os.Getenv("LOG_LEVEL") == "" {
				g.logLevel = cfg.LogLevel
			}
			logger := g.logger(cmd.ErrOrStderr())
			for _, w := range cfg.Warnings {
				logger.Warn(w)
			}
			if !cmd.Root().PersistentFlags().Changed("config") && os.Getenv("THEMES_CONFIG") == "" {
				g.configPath = cfg.ThemesConfig
			}
			opts, err := g.loadOptions()
			if err != nil {
				return err
			}

			ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGTERM, syscall.SIGINT)
			defer cancel()
			return serve(ctx, cfg, opts, logger)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", ":4321", "Listen address (overrides LISTEN_ADDR)")
	return cmd
}

// newServerHandler builds the playground router. The dev toolbar is
// mounted outside production.
func newServerHandler(ctx context.Context, cfg *config.Config, opts domain.IntegrationOptions, logger *slog.Logger) (http.Handler, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	command := domain.CommandDev
	if cfg.IsProduction() {
		command = domain.CommandPreview
	}
	uiHandler, err := ui.NewHandler(script.NewIntegration(opts, logger), command, logger)
	if err != nil {
		return nil, err
	}
	spec, err := api.LoadSpec(ctx)
	if err != nil {
		return nil, err
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RequestLogger(logger))
	r.Use(chimw.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.CORSAllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID", "X-RateLimit-Limit", "X-RateLimit-Remaining"},
		MaxAge:         300,
	}))
	r.Use(middleware.RateLimiter(ctx, middleware.RateLimitConfig{
		RequestsPerSecond: cfg.RateLimitRPS,
		Burst:             cfg.RateLimitBurst,
		Exempt:            func(r *http.Request) bool { return r.URL.Path == "/health" },
	}))
	r.Use(middleware.ThemeWindow(logger))

	ui.MountRoutes(r, uiHandler)
	api.MountRoutes(r, api.NewHandler(uiHandler.Setup, spec, logger))
	return r, nil
}

func serve(ctx context.Context, cfg *config.Config, opts domain.IntegrationOptions, logger *slog.Logger) error {
	handler, err := newServerHandler(ctx, cfg, opts, logger)
	if err != nil {
		return err
	}
	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		scheme := "http"
		if cfg.TLSCertFile != "" {
			scheme = "https"
		}
		logger.Info("playground listening",
			"addr", cfg.ListenAddr,
			"url", scheme+"://"+browseHost(cfg.ListenAddr)+"/")
		var err error
		if cfg.TLSCertFile != "" {
			err = srv.ListenAndServeTLS(cfg.TLSCertFile, cfg.TLSKeyFile)
		} else {
			err = srv.ListenAndServe()
		}
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down playground")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

// browseHost turns a listen address into a host:port a browser can open.
// Wildcard hosts become localhost.
func browseHost(listenAddr string) string {
	addr := strings.TrimSpace(listenAddr)
	if addr == "" {
		return "localhost:4321"
	}
	host, port, err := net.SplitHostPort(addr)
	if err != nil {
		return addr
	}
	switch host {
	case "", "0.0.0.0", "::":
		host = "localhost"
	}
	return net.JoinHostPort(host, port)
}
