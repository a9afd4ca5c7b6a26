package cli

import (
	"fmt"
	"slices"

	"github.com/spf13/cobra"

	"astro-themes/internal/domain"
	"astro-themes/internal/service/script"
)

var buildCommands = []string{domain.CommandDev, domain.CommandBuild, domain.CommandPreview, domain.CommandSync}

// themeConfig loads the props and applies a forced theme override.
func (g *globalFlags) themeConfig(forced string) (domain.Config, error) {
	opts, err := g.loadOptions()
	if err != nil {
		return domain.Config{}, err
	}
	cfg := opts.Props.Config()
	if forced != "" {
		if !slices.Contains(cfg.Themes, forced) {
			return domain.Config{}, domain.ErrValidation("forced theme %q is not one of %v", forced, cfg.Themes)
		}
		cfg = cfg.WithForcedTheme(forced)
	}
	if err := cfg.Validate(); err != nil {
		return domain.Config{}, err
	}
	return cfg, nil
}

func newScriptCmd(g *globalFlags) *cobra.Command {
	var (
		minify  bool
		forced  string
		cspHash bool
	)
	cmd := &cobra.Command{
		Use:   "script",
		Short: "Print the inline theme script",
		Long:  "Print the inline script that applies the stored theme before first paint.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := g.themeConfig(forced)
			if err != nil {
				return err
			}
			rendered, err := script.Render(cfg)
			if err != nil {
				return err
			}
			src := rendered.Source
			if minify {
				src = rendered.Minified
			}
			if getOutputFormat(cmd) == "json" {
				return printJSON(cmd.OutOrStdout(), map[string]string{
					"script":  src,
					"cspHash": script.CSPHash(src),
				})
			}
			if cspHash {
				_, err = fmt.Fprintln(cmd.OutOrStdout(), script.CSPHash(src))
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), src)
			return err
		},
	}
	cmd.Flags().BoolVar(&minify, "minify", true, "Minify the script")
	cmd.Flags().StringVar(&forced, "forced", "", "Pin the page to this theme")
	cmd.Flags().BoolVar(&cspHash, "csp-hash", false, "Print the CSP source hash instead of the script")
	return cmd
}

func newTypesCmd(_ *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "types",
		Short: "Print the TypeScript declaration for the window global",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if getOutputFormat(cmd) == "json" {
				return printJSON(cmd.OutOrStdout(), map[string]string{
					"filename": script.TypesFilename,
					"content":  script.TypeDeclaration,
				})
			}
			_, err := fmt.Fprint(cmd.OutOrStdout(), script.TypeDeclaration)
			return err
		},
	}
}

func newSetupCmd(g *globalFlags) *cobra.Command {
	var command string
	cmd := &cobra.Command{
		Use:   "setup",
		Short: "Run the integration setup hook for a build command",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !slices.Contains(buildCommands, command) {
				return domain.ErrValidation("unknown command %q: use one of %v", command, buildCommands)
			}
			opts, err := g.loadOptions()
			if err != nil {
				return err
			}
			setup, err := script.NewIntegration(opts, g.logger(cmd.ErrOrStderr())).Setup(command)
			if err != nil {
				return err
			}
			if getOutputFormat(cmd) == "json" {
				return printJSON(cmd.OutOrStdout(), setup)
			}

			toolbar := "disabled"
			if setup.ToolbarApp != nil {
				toolbar = setup.ToolbarApp.ID + " at " + setup.ToolbarApp.Entrypoint
			}
			injected := "no"
			if setup.ScriptSource != "" {
				injected = fmt.Sprintf("yes (%d bytes, %s)", len(setup.ScriptSource), script.CSPHash(setup.ScriptSource))
			}
			return printTable(cmd.OutOrStdout(), []string{"field", "value"}, [][]string{
				{"command", command},
				{"storage key", setup.Config.StorageKey},
				{"default theme", setup.Config.DefaultTheme},
				{"themes", fmt.Sprint(setup.Config.Themes)},
				{"attributes", fmt.Sprint(setup.Config.Attributes)},
				{"script injected", injected},
				{"types", setup.TypesFilename},
				{"toolbar", toolbar},
			})
		},
	}
	cmd.Flags().StringVar(&command, "command", domain.CommandDev, "Build command (dev, build, preview, sync)")
	return cmd
}
