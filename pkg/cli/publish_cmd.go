package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"astro-themes/internal/config"
	"astro-themes/internal/service/publish"
	"astro-themes/internal/service/script"
	"astro-themes/internal/ui"
)

func newPublishCmd(g *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "publish DESTINATION",
		Short: "Upload the theme artifacts",
		Long: `Render the theme script, head snippet and manifest and upload them.

DESTINATION is a local directory or a file://, s3://, gs:// or az:// URL.
Object-store credentials come from the environment.`,
		Example: `  themes publish ./dist/themes
  themes publish s3://assets/themes/v1`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadFromEnv()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			logger := g.logger(cmd.ErrOrStderr())
			for _, w := range cfg.Warnings {
				logger.Warn(w)
			}
			opts, err := g.loadOptions()
			if err != nil {
				return err
			}
			themeCfg := opts.Props.Config()
			if err := themeCfg.Validate(); err != nil {
				return err
			}
			rendered, err := script.Render(themeCfg)
			if err != nil {
				return err
			}
			head, err := ui.HeadSnippet(opts.Props)
			if err != nil {
				return err
			}
			artifacts, err := publish.Artifacts(rendered, head)
			if err != nil {
				return err
			}

			results, err := publish.NewPublisher(cfg.Publish, logger).Publish(cmd.Context(), args[0], artifacts)
			if err != nil {
				return err
			}
			if getOutputFormat(cmd) == "json" {
				return printJSON(cmd.OutOrStdout(), results)
			}
			rows := make([][]string, len(results))
			for i, r := range results {
				rows[i] = []string{r.Name, r.Location, fmt.Sprint(r.Bytes)}
			}
			return printTable(cmd.OutOrStdout(), []string{"name", "location", "bytes"}, rows)
		},
	}
	return cmd
}
