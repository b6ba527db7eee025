package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/postforge/postforge/internal/interfaces/cli/migrate"
	"github.com/postforge/postforge/internal/interfaces/cli/server"
	"github.com/postforge/postforge/internal/interfaces/cli/worker"
	"github.com/postforge/postforge/internal/shared/version"
)

func main() {
	rootCmd := &cobra.Command{
		Use:     "postforge",
		Short:   "PostForge - entitlement and billing engine for LinkedIn content generation",
		Long:    `PostForge meters generated posts and comments, enforces plan quotas, and manages subscriptions, payment webhooks and discount offers.`,
		Version: version.String(),
	}

	rootCmd.AddCommand(
		server.NewCommand(),
		worker.NewCommand(),
		migrate.NewCommand(),
	)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
