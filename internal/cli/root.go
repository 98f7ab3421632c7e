// Package cli wires configuration, observability and the generation
// pipeline into the scribe command line.
package cli

import (
	"log"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

// NewRootCommand builds the scribe command tree. Running scribe without a
// subcommand starts the HTTP server.
func NewRootCommand(version string) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:     "scribe",
		Short:   "Scribe - product documentation from a few parameters",
		Long:    `Scribe composes role-tagged prompts for release notes, user stories and product specs and sends them to an LLM.`,
		Version: version,
		PersistentPreRun: func(_ *cobra.Command, _ []string) {
			if err := godotenv.Load(); err != nil {
				log.Println("No .env file found, using environment variables")
			}
		},
		SilenceUsage: true,
	}

	serveCmd := newServeCommand(version)
	rootCmd.RunE = serveCmd.RunE

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(newComposeCommand())
	rootCmd.AddCommand(newCatalogCommand())

	return rootCmd
}

// Execute runs the root command
func Execute(version string) error {
	return NewRootCommand(version).Execute()
}
