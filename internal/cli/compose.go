package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/Conceptual-Machines/scribe-api/internal/config"
	"github.com/Conceptual-Machines/scribe-api/internal/models"
	"github.com/Conceptual-Machines/scribe-api/internal/prompt"
	"github.com/spf13/cobra"
)

// composeOutput is what `scribe compose` prints
type composeOutput struct {
	Request    prompt.NormalizedRequest `json:"request"`
	WordTarget int                      `json:"wordTarget"`
	Messages   []models.Message         `json:"messages"`
}

func newComposeCommand() *cobra.Command {
	var catalogPath string

	cmd := &cobra.Command{
		Use:   "compose [request.json]",
		Short: "Print the prompt messages for a generation request",
		Long: `Normalize a generation request and print the composed prompt messages as JSON.
No completion provider is contacted.

The request is read from the given file, or from stdin when no file (or "-") is given.

Examples:
  scribe compose request.json
  echo '{"template":"release-notes","personality":"shreyas","context":"v2 ships"}' | scribe compose`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()
			if catalogPath != "" {
				cfg.PromptCatalogPath = catalogPath
			}
			return runCompose(cmd, cfg, args)
		},
	}

	cmd.Flags().StringVar(&catalogPath, "catalog", "", "prompt catalog YAML (overrides PROMPT_CATALOG_PATH)")
	return cmd
}

func runCompose(cmd *cobra.Command, cfg *config.Config, args []string) error {
	composer, err := loadComposer(cfg)
	if err != nil {
		return err
	}

	raw, err := readRequestInput(cmd, args)
	if err != nil {
		return err
	}

	var req models.GenerationRequest
	if err := json.Unmarshal(raw, &req); err != nil {
		return fmt.Errorf("failed to parse generation request: %w", err)
	}

	normalized, messages, err := composer.ComposeRequest(req)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(composeOutput{
		Request:    normalized,
		WordTarget: normalized.WordTarget(),
		Messages:   messages,
	})
}

func readRequestInput(cmd *cobra.Command, args []string) ([]byte, error) {
	if len(args) == 0 || args[0] == "-" {
		raw, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return nil, fmt.Errorf("failed to read request from stdin: %w", err)
		}
		return raw, nil
	}

	raw, err := os.ReadFile(args[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read request file: %w", err)
	}
	return raw, nil
}
