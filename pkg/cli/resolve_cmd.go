package cli

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"astro-themes/internal/domain"
	"astro-themes/internal/service/theme"
	"astro-themes/internal/service/updater"
)

// session is a page load against an in-memory document.
type session struct {
	cfg   domain.Config
	root  *theme.Root
	store *theme.MemoryStorage
	media *theme.MediaQueryList
	ctrl  *theme.Controller

	mu     sync.Mutex
	events []domain.ChangeEvent
}

func bootSession(cfg domain.Config, persisted, system string, logger *slog.Logger) (*session, error) {
	pref := domain.SystemLight
	if system != "" {
		p, err := domain.ParseSystemTheme(system)
		if err != nil {
			return nil, err
		}
		pref = p
	}
	s := &session{
		cfg:   cfg,
		root:  theme.NewRoot(),
		store: theme.NewMemoryStorage(),
		media: theme.NewMediaQueryList(pref == domain.SystemDark),
	}
	if persisted != "" {
		_ = s.store.SetItem(cfg.StorageKey, persisted)
	}
	s.ctrl = theme.Boot(cfg, s.root, theme.Options{Storage: s.store, Media: s.media, Logger: logger})
	s.ctrl.Bus().Subscribe(func(ev domain.ChangeEvent) {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.events = append(s.events, ev)
	})
	return s, nil
}

// sessionReport is the printable outcome of a session.
type sessionReport struct {
	State  domain.ThemeState    `json:"state"`
	Mode   string               `json:"mode"`
	Root   theme.DOMState       `json:"root"`
	Stored string               `json:"stored,omitempty"`
	Events []domain.ChangeEvent `json:"events,omitempty"`
}

func (s *session) report() sessionReport {
	st := s.ctrl.State()
	stored, _, _ := s.store.GetItem(s.cfg.StorageKey)
	s.mu.Lock()
	defer s.mu.Unlock()
	return sessionReport{
		State:  st,
		Mode:   st.Mode.String(),
		Root:   s.root.Snapshot(),
		Stored: stored,
		Events: append([]domain.ChangeEvent(nil), s.events...),
	}
}

func writeReport(cmd *cobra.Command, r sessionReport) error {
	if getOutputFormat(cmd) == "json" {
		return printJSON(cmd.OutOrStdout(), r)
	}
	rows := [][]string{
		{"theme", r.State.Theme},
		{"resolved theme", r.State.ResolvedTheme},
		{"system theme", string(r.State.SystemTheme)},
		{"forced theme", r.State.ForcedTheme},
		{"mode", r.Mode},
		{"stored", r.Stored},
		{"class", r.Root.ClassName()},
	}
	for _, name := range r.Root.AttributeNames() {
		rows = append(rows, []string{name, r.Root.Attributes[name]})
	}
	if r.Root.ColorScheme != "" {
		rows = append(rows, []string{"color-scheme", r.Root.ColorScheme})
	}
	if err := printTable(cmd.OutOrStdout(), []string{"field", "value"}, rows); err != nil {
		return err
	}
	if len(r.Events) == 0 {
		return nil
	}
	_, _ = fmt.Fprintln(cmd.OutOrStdout())
	eventRows := make([][]string, len(r.Events))
	for i, ev := range r.Events {
		eventRows[i] = []string{fmt.Sprint(i + 1), ev.Theme, ev.ResolvedTheme}
	}
	return printTable(cmd.OutOrStdout(), []string{"event", "theme", "resolved"}, eventRows)
}

func newResolveCmd(g *globalFlags) *cobra.Command {
	var persisted, system, forced string
	cmd := &cobra.Command{
		Use:   "resolve",
		Short: "Show what a page load would apply",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := g.themeConfig(forced)
			if err != nil {
				return err
			}
			s, err := bootSession(cfg, persisted, system, g.logger(cmd.ErrOrStderr()))
			if err != nil {
				return err
			}
			defer s.ctrl.Close()
			return writeReport(cmd, s.report())
		},
	}
	cmd.Flags().StringVar(&persisted, "persisted", "", "Value found in storage")
	cmd.Flags().StringVar(&system, "system", "light", "OS color scheme preference (light, dark)")
	cmd.Flags().StringVar(&forced, "forced", "", "Pin the page to this theme")
	return cmd
}

func newSimulateCmd(g *globalFlags) *cobra.Command {
	var persisted, system, forced string
	cmd := &cobra.Command{
		Use:   "simulate [step...]",
		Short: "Replay theme changes against a page load",
		Long: `Boot a page, then replay steps in order and print every change event.

Steps:
  set=NAME        call setTheme with a theme name or "system"
  toggle          swap light and dark
  os=light|dark   flip the OS color scheme preference
  updater=FILE    call setTheme with a Starlark updater read from FILE`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := g.themeConfig(forced)
			if err != nil {
				return err
			}
			logger := g.logger(cmd.ErrOrStderr())
			s, err := bootSession(cfg, persisted, system, logger)
			if err != nil {
				return err
			}
			defer s.ctrl.Close()
			for _, step := range args {
				if err := s.apply(step, logger); err != nil {
					return err
				}
			}
			return writeReport(cmd, s.report())
		},
	}
	cmd.Flags().StringVar(&persisted, "persisted", "", "Value found in storage")
	cmd.Flags().StringVar(&system, "system", "light", "OS color scheme preference (light, dark)")
	cmd.Flags().StringVar(&forced, "forced", "", "Pin the page to this theme")
	return cmd
}

func (s *session) apply(step string, logger *slog.Logger) error {
	name, arg, _ := strings.Cut(step, "=")
	switch name {
	case "set":
		if arg == "" {
			return domain.ErrValidation("step %q needs a theme name", step)
		}
		s.ctrl.SetTheme(domain.Literal(arg))
	case "toggle":
		s.ctrl.Toggle()
	case "os":
		pref, err := domain.ParseSystemTheme(arg)
		if err != nil {
			return err
		}
		s.media.Set(pref == domain.SystemDark)
	case "updater":
		prog, err := loadUpdater(arg, s.cfg.Themes)
		if err != nil {
			return err
		}
		s.ctrl.SetTheme(prog.Input(logger))
	default:
		return domain.ErrValidation("unknown step %q", step)
	}
	return nil
}

func loadUpdater(path string, themes []string) (*updater.Program, error) {
	f, err := os.Open(path) //nolint:gosec // path comes from the operator
	if errors.Is(err, fs.ErrNotExist) {
		return nil, domain.ErrNotFound("updater %s not found", path)
	}
	if err != nil {
		return nil, fmt.Errorf("open updater: %w", err)
	}
	defer f.Close() //nolint:errcheck
	src, err := io.ReadAll(io.LimitReader(f, 64<<10))
	if err != nil {
		return nil, fmt.Errorf("read updater: %w", err)
	}
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return updater.Compile(name, string(src), themes)
}
