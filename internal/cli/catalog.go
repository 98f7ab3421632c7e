package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/Conceptual-Machines/scribe-api/internal/api/handlers"
	"github.com/Conceptual-Machines/scribe-api/internal/config"
	"github.com/spf13/cobra"
)

func newCatalogCommand() *cobra.Command {
	var (
		catalogPath string
		asJSON      bool
	)

	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "List the templates, personalities and formats a request may use",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := config.Load()
			if catalogPath != "" {
				cfg.PromptCatalogPath = catalogPath
			}

			composer, err := loadComposer(cfg)
			if err != nil {
				return err
			}
			listing := handlers.BuildCatalogResponse(composer.Catalog())

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(listing)
			}

			sections := []struct {
				title   string
				entries []handlers.CatalogEntry
			}{
				{"Templates", listing.Templates},
				{"Personalities", listing.Personalities},
				{"Output formats", listing.OutputFormats},
				{"Tones", listing.Tones},
				{"Lengths", listing.Lengths},
			}
			for i, section := range sections {
				if i > 0 {
					fmt.Fprintln(out)
				}
				fmt.Fprintf(out, "%s:\n", section.title)
				for _, e := range section.entries {
					fmt.Fprintf(out, "  %s\n", describeEntry(e))
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&catalogPath, "catalog", "", "prompt catalog YAML (overrides PROMPT_CATALOG_PATH)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the catalog as JSON")
	return cmd
}

func describeEntry(e handlers.CatalogEntry) string {
	var extra []string
	if e.DisplayName != "" {
		extra = append(extra, e.DisplayName)
	}
	if e.WordTarget > 0 {
		extra = append(extra, fmt.Sprintf("~%d words", e.WordTarget))
	}
	if len(extra) == 0 {
		return e.Key
	}
	return fmt.Sprintf("%-16s %s", e.Key, strings.Join(extra, ", "))
}
