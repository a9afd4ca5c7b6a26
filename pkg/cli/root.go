// Package cli implements the themes command-line tool.
package cli

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"astro-themes/internal/config"
	"astro-themes/internal/domain"
)

var (
	version = "dev"
	commit  = "none"
)

// Execute runs the CLI.
func Execute() int {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		output, _ := rootCmd.PersistentFlags().GetString("output")
		if output == "json" {
			errObj := map[string]any{
				"error": err.Error(),
			}
			var validation *domain.ValidationError
			if errors.As(err, &validation) {
				errObj["code"] = "validation"
			}
			_ = printJSON(os.Stdout, errObj)
		} else {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		return 1
	}
	return 0
}

// globalFlags are the persistent flags shared by every command.
type globalFlags struct {
	configPath string
	output     string
	logLevel   string
}

func newRootCmd() *cobra.Command {
	g := &globalFlags{}

	rootCmd := &cobra.Command{
		Use:           "themes",
		Short:         "Theme switching without the flash",
		Long:          "Render, inspect, serve and publish the flash-free theme script.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			// Apply precedence: flag > env > default
			if !cmd.Flags().Changed("config") {
				if v := os.Getenv("THEMES_CONFIG"); v != "" {
					g.configPath = v
				}
			}
			if !cmd.Flags().Changed("output") {
				if v := os.Getenv("THEMES_OUTPUT"); v != "" {
					g.output = v
				}
			}
			if !cmd.Flags().Changed("log-level") {
				if v := os.Getenv("LOG_LEVEL"); v != "" {
					g.logLevel = v
				}
			}
			return validateOutputFormat(g.output)
		},
	}

	rootCmd.PersistentFlags().StringVarP(&g.configPath, "config", "c", config.DefaultThemesConfig, "Integration config file")
	rootCmd.PersistentFlags().StringVarP(&g.output, "output", "o", "table", "Output format (table, json)")
	rootCmd.PersistentFlags().StringVar(&g.logLevel, "log-level", "warn", "Log level (debug, info, warn, error)")

	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newScriptCmd(g))
	rootCmd.AddCommand(newTypesCmd(g))
	rootCmd.AddCommand(newSetupCmd(g))
	rootCmd.AddCommand(newResolveCmd(g))
	rootCmd.AddCommand(newSimulateCmd(g))
	rootCmd.AddCommand(newServeCmd(g))
	rootCmd.AddCommand(newPublishCmd(g))
	rootCmd.AddCommand(newCommandsCmd())

	// Shell completions
	rootCmd.AddCommand(newCompletionCmd())

	return rootCmd
}

// loadOptions reads the integration config file. A missing file yields the
// defaults.
func (g *globalFlags) loadOptions() (domain.IntegrationOptions, error) {
	return config.LoadIntegration(g.configPath)
}

// logger writes JSON logs to w at the configured level.
func (g *globalFlags) logger(w io.Writer) *slog.Logger {
	cfg := config.Config{LogLevel: g.logLevel}
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: cfg.SlogLevel()}))
}

func newCompletionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			switch strings.ToLower(args[0]) {
			case "bash":
				return cmd.Root().GenBashCompletion(out)
			case "zsh":
				return cmd.Root().GenZshCompletion(out)
			case "fish":
				return cmd.Root().GenFishCompletion(out, true)
			case "powershell":
				return cmd.Root().GenPowerShellCompletionWithDesc(out)
			default:
				return fmt.Errorf("unsupported shell: %s", args[0])
			}
		},
	}
	return cmd
}
