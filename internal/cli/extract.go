package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/estrattori/eventi/internal/llm"
	"github.com/estrattori/eventi/internal/model"
	"github.com/estrattori/eventi/internal/pipeline"
)

var (
	extractDocID   string
	extractPage    int
	extractOut     string
	extractTimeout time.Duration
	llmProvider    string
	llmModel       string
)

// extractCmd represents the extract command
var extractCmd = &cobra.Command{
	Use:   "extract [file]",
	Short: "Extract events from a text file (or stdin)",
	Long: `Extract runs the full pipeline over one document:
- annotates the text (sentences, tokens, entities)
- fires lexical and dependency trigger rules per sentence
- collects participants, places, amounts and phone mentions
- deduplicates overlapping detections, keeping the best-supported event

Example:
  eventi extract verbale.txt --doc-id D123 --page 4
  cat verbale.txt | eventi extract --json events.json
  eventi extract verbale.txt --llm openai`,
	Args: cobra.MaximumNArgs(1),
	RunE: runExtract,
}

func init() {
	rootCmd.AddCommand(extractCmd)

	extractCmd.Flags().StringVar(&extractDocID, "doc-id", "", "document id recorded in event provenance")
	extractCmd.Flags().IntVar(&extractPage, "page", 0, "page number recorded in event provenance")
	extractCmd.Flags().StringVar(&extractOut, "json", "", "output JSON path (default: stdout)")
	extractCmd.Flags().DurationVar(&extractTimeout, "timeout", 2*time.Minute, "overall extraction timeout")

	extractCmd.Flags().StringVar(&llmProvider, "llm", "", "generate a briefing with this provider (openai, ollama)")
	extractCmd.Flags().StringVar(&llmModel, "llm-model", "", "LLM model name")
}

func runExtract(cmd *cobra.Command, args []string) error {
	text, err := readInput(args)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), extractTimeout)
	defer cancel()

	cfg := loadConfig()
	annotator := buildAnnotator(cfg)

	p, err := pipeline.New(cfg, annotator)
	if err != nil {
		return err
	}

	meta := map[string]interface{}{}
	if extractDocID != "" {
		meta["doc_id"] = extractDocID
	}
	if extractPage > 0 {
		meta["page"] = extractPage
	}

	started := time.Now()
	events, err := p.Extract(ctx, text, meta)
	if err != nil {
		return fmt.Errorf("extract: %w", err)
	}
	if verbose {
		fmt.Fprintf(os.Stderr, "Extracted %d event(s) in %v\n", len(events), time.Since(started).Round(time.Millisecond))
	}

	if err := writeEvents(events); err != nil {
		return err
	}

	// Briefing is presentation-only; failures warn, never fail the run
	if llmProvider != "" {
		if err := printBriefing(ctx, cfg, events); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: briefing failed: %v\n", err)
		}
	}
	return nil
}

func readInput(args []string) (string, error) {
	if len(args) == 1 {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return "", fmt.Errorf("read input: %w", err)
		}
		return string(data), nil
	}
	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return "", fmt.Errorf("read stdin: %w", err)
	}
	return string(data), nil
}

func writeEvents(events []model.Event) error {
	data, err := json.MarshalIndent(map[string]interface{}{"events": events}, "", "  ")
	if err != nil {
		return fmt.Errorf("encode events: %w", err)
	}
	if extractOut == "" {
		fmt.Println(string(data))
		return nil
	}
	if err := os.WriteFile(extractOut, append(data, '\n'), 0644); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	if verbose {
		fmt.Fprintf(os.Stderr, "Wrote %s\n", extractOut)
	}
	return nil
}

func printBriefing(ctx context.Context, cfg *model.Config, events []model.Event) error {
	cfg.LLM.Provider = llmProvider
	cfg.LLM.Model = llmModel
	if llmProvider == "openai" {
		cfg.LLM.APIKey = os.Getenv("OPENAI_API_KEY")
		if cfg.LLM.APIKey == "" {
			return fmt.Errorf("OPENAI_API_KEY environment variable not set")
		}
	}

	provider, err := llm.NewProvider(cfg.LLM)
	if err != nil {
		return err
	}
	if provider == nil {
		return nil
	}

	resp, err := provider.Brief(ctx, llm.BriefRequest{Events: events})
	if err != nil {
		return err
	}
	fmt.Fprintln(os.Stderr)
	fmt.Fprintln(os.Stderr, resp.Summary)
	return nil
}
