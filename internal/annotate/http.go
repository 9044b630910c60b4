package annotate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

// HTTPAnnotator talks to an external annotation service that runs the
// full Italian model (tokens, lemmas, POS, dependencies, entities).
type HTTPAnnotator struct {
	url        string
	httpClient *http.Client
	limiter    *rate.Limiter
	maxBytes   int64
}

// NewHTTPAnnotator creates an annotator client for the given service URL
func NewHTTPAnnotator(url string, timeout time.Duration, perSec float64, burst int) *HTTPAnnotator {
	if burst <= 0 {
		burst = 5
	}
	if perSec <= 0 {
		perSec = 20
	}
	return &HTTPAnnotator{
		url: url,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		limiter:  rate.NewLimiter(rate.Limit(perSec), burst),
		maxBytes: 8 << 20,
	}
}

type annotateRequest struct {
	Text string `json:"text"`
}

// Annotate sends the text to the annotation service and decodes the document
func (a *HTTPAnnotator) Annotate(ctx context.Context, text string) (*Document, error) {
	if err := a.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit: %w", err)
	}

	body, err := json.Marshal(annotateRequest{Text: text})
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: unexpected status %d", ErrAnnotation, resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, a.maxBytes))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}

	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: decode document: %v", ErrAnnotation, err)
	}
	return &doc, nil
}
