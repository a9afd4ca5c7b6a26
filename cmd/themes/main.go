// Package main is the entry point for the themes binary.
package main

import (
	"log/slog"
	"os"

	"astro-themes/internal/config"
	"astro-themes/pkg/cli"
)

func main() {
	if err := config.LoadDotEnv(".env"); err != nil {
		slog.Warn("could not load .env", "error", err)
	}
	os.Exit(cli.Execute())
}
