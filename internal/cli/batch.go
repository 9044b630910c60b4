package cli

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/estrattori/eventi/internal/model"
	"github.com/estrattori/eventi/internal/pipeline"
	"github.com/estrattori/eventi/internal/worker"
)

var (
	batchOut     string
	batchWorkers int
	batchTimeout time.Duration
)

// batchCmd represents the batch command
var batchCmd = &cobra.Command{
	Use:   "batch <file.jsonl>",
	Short: "Extract events from many items concurrently",
	Long: `Batch reads items from a JSONL file (one {"text": ..., "meta": ...}
object per line) and extracts each independently on a bounded worker pool.
Results keep the input order; a failed item reports its own error without
affecting siblings.

Example:
  eventi batch verbali.jsonl --workers 8 --json results.json`,
	Args: cobra.ExactArgs(1),
	RunE: runBatch,
}

func init() {
	rootCmd.AddCommand(batchCmd)

	batchCmd.Flags().StringVar(&batchOut, "json", "", "output JSON path (default: stdout)")
	batchCmd.Flags().IntVar(&batchWorkers, "workers", 0, "worker count (default: CPU count)")
	batchCmd.Flags().DurationVar(&batchTimeout, "timeout", 10*time.Minute, "overall batch timeout")
}

func runBatch(cmd *cobra.Command, args []string) error {
	items, err := readItems(args[0])
	if err != nil {
		return err
	}
	if len(items) == 0 {
		return fmt.Errorf("no items in %s", args[0])
	}

	ctx, cancel := context.WithTimeout(context.Background(), batchTimeout)
	defer cancel()

	cfg := loadConfig()
	if batchWorkers > 0 {
		cfg.Concurrency.BatchWorkers = batchWorkers
	}
	annotator := buildAnnotator(cfg)

	p, err := pipeline.New(cfg, annotator)
	if err != nil {
		return err
	}

	if verbose {
		fmt.Fprintf(os.Stderr, "Processing %d item(s) on %d worker(s)\n", len(items), cfg.Concurrency.BatchWorkers)
	}

	started := time.Now()
	processor := worker.NewBatchProcessor(p, cfg.Concurrency.BatchWorkers)
	results := processor.Process(ctx, items)

	failed := 0
	for _, r := range results {
		if !r.OK {
			failed++
		}
	}
	if verbose {
		fmt.Fprintf(os.Stderr, "Done in %v (%d failed)\n", time.Since(started).Round(time.Millisecond), failed)
	}

	data, err := json.MarshalIndent(map[string]interface{}{"results": results}, "", "  ")
	if err != nil {
		return fmt.Errorf("encode results: %w", err)
	}
	if batchOut == "" {
		fmt.Println(string(data))
		return nil
	}
	if err := os.WriteFile(batchOut, append(data, '\n'), 0644); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	return nil
}

// readItems parses one JSON item per line, skipping blanks and # comments
func readItems(path string) ([]model.ExtractItem, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer func() { _ = file.Close() }()

	var items []model.ExtractItem
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	line := 0
	for scanner.Scan() {
		line++
		raw := strings.TrimSpace(scanner.Text())
		if raw == "" || strings.HasPrefix(raw, "#") {
			continue
		}
		var item model.ExtractItem
		if err := json.Unmarshal([]byte(raw), &item); err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		items = append(items, item)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan file: %w", err)
	}
	return items, nil
}

// ensure the pipeline satisfies the batch extractor contract
var _ worker.Extractor = (*pipeline.Pipeline)(nil)
