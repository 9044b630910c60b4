package worker

import (
	"context"

	"github.com/estrattori/eventi/internal/model"
)

// Extractor defines the interface for extracting events from one text
type Extractor interface {
	Extract(ctx context.Context, text string, meta map[string]interface{}) ([]model.Event, error)
}

// extractJob is one indexed batch item; the index restores input order
// on output since batch results are positional
type extractJob struct {
	index     int
	item      model.ExtractItem
	extractor Extractor
}

// extractOutcome carries the indexed result of one item
type extractOutcome struct {
	index  int
	result model.ExtractResult
	err    error
}

// GetError returns the item's extraction error, if any
func (o *extractOutcome) GetError() error {
	return o.err
}

// Execute runs the extraction for one item. Failures stay local to the
// item; sibling items are unaffected.
func (j *extractJob) Execute(ctx context.Context) Result {
	events, err := j.extractor.Extract(ctx, j.item.Text, j.item.Meta)
	if err != nil {
		return &extractOutcome{
			index: j.index,
			result: model.ExtractResult{
				OK:     false,
				Events: []model.Event{},
				Meta:   j.item.Meta,
				Error:  err.Error(),
			},
			err: err,
		}
	}
	return &extractOutcome{
		index: j.index,
		result: model.ExtractResult{
			OK:     true,
			Events: events,
			Meta:   j.item.Meta,
		},
	}
}

// BatchProcessor extracts multiple independent items concurrently
type BatchProcessor struct {
	extractor   Extractor
	concurrency int
}

// NewBatchProcessor creates a batch processor bounded to the given
// concurrency
func NewBatchProcessor(extractor Extractor, concurrency int) *BatchProcessor {
	return &BatchProcessor{
		extractor:   extractor,
		concurrency: concurrency,
	}
}

// Process runs every item through the extractor and returns results in
// input order regardless of completion order
func (b *BatchProcessor) Process(ctx context.Context, items []model.ExtractItem) []model.ExtractResult {
	if len(items) == 0 {
		return []model.ExtractResult{}
	}

	pool := NewPoolContext(ctx, b.concurrency)
	pool.Start()

	// Submit and drain concurrently: batches larger than the pool's channel
	// capacity would otherwise stall workers on the full results channel
	// while the submitter is still blocked on the queue
	go func() {
		for i, item := range items {
			pool.Submit(&extractJob{
				index:     i,
				item:      item,
				extractor: b.extractor,
			})
		}
		pool.Close()
	}()

	results := make([]model.ExtractResult, len(items))
	for r := range pool.Results() {
		outcome := r.(*extractOutcome)
		results[outcome.index] = outcome.result
	}
	return results
}
