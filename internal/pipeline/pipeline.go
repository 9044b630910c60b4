package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/estrattori/eventi/internal/annotate"
	"github.com/estrattori/eventi/internal/cache"
	"github.com/estrattori/eventi/internal/extract"
	"github.com/estrattori/eventi/internal/model"
	"github.com/estrattori/eventi/internal/rules"
	"github.com/estrattori/eventi/internal/timeres"
)

var (
	// ErrEmptyInput means the text was empty or whitespace-only
	ErrEmptyInput = errors.New("empty input text")

	// ErrMalformedInput means the text was not valid UTF-8
	ErrMalformedInput = errors.New("input text is not valid UTF-8")
)

// Pipeline orchestrates one extraction run: annotation, per-sentence
// trigger matching and entity collection, event building, document-level
// deduplication, then caller metadata merge.
type Pipeline struct {
	annotator annotate.Annotator
	matcher   *rules.Matcher
	collector *extract.Collector
	builder   *extract.Builder
	resolver  *timeres.Resolver
	cache     cache.Cache
	cacheTTL  time.Duration
}

// New creates a pipeline from configuration and a shared annotator.
// The rule registry is loaded once here and shared read-only afterwards.
func New(cfg *model.Config, annotator annotate.Annotator) (*Pipeline, error) {
	registry := rules.DefaultRegistry()
	if cfg.RulesPath != "" {
		loaded, err := rules.Load(cfg.RulesPath)
		if err != nil {
			return nil, fmt.Errorf("load rules: %w", err)
		}
		registry = loaded
	}

	p := &Pipeline{
		annotator: annotator,
		matcher:   rules.NewMatcher(registry),
		collector: extract.NewCollector(),
		builder:   extract.NewBuilder(),
		resolver:  timeres.NewResolver(),
	}
	if cfg.Cache.Enabled {
		p.cache = cache.NewMemoryCache(cfg.Cache.TTL, cfg.Cache.TTL)
		p.cacheTTL = cfg.Cache.TTL
	}
	return p, nil
}

// Extract runs the full pipeline over one text. Caller metadata is merged
// into each surviving event's source after deduplication, so it changes
// identity and provenance but never the survivor set.
func (p *Pipeline) Extract(ctx context.Context, text string, meta map[string]interface{}) ([]model.Event, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyInput
	}
	if !utf8.ValidString(text) {
		return nil, ErrMalformedInput
	}
	if looksLikeHTML(text) {
		text = StripHTML(text)
	}

	events, err := p.extractCached(ctx, text)
	if err != nil {
		return nil, err
	}

	if len(meta) > 0 {
		for i := range events {
			for k, v := range meta {
				events[i].Source[k] = v
			}
			events[i].ID = extract.EventID(events[i].Type, events[i].Participants,
				events[i].Time, events[i].PlaceRaw, events[i].Source)
		}
	}
	return events, nil
}

// extractCached returns the deduplicated pre-merge event list for the text,
// serving repeated texts from cache when enabled
func (p *Pipeline) extractCached(ctx context.Context, text string) ([]model.Event, error) {
	if p.cache != nil {
		if events, found := p.cache.Get(text); found {
			return events, nil
		}
	}

	events, err := p.extract(ctx, text)
	if err != nil {
		return nil, err
	}

	if p.cache != nil {
		_ = p.cache.Set(text, events, p.cacheTTL)
	}
	return events, nil
}

func (p *Pipeline) extract(ctx context.Context, text string) ([]model.Event, error) {
	doc, err := p.annotator.Annotate(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("annotate: %w", err)
	}

	events := []model.Event{}
	for i := range doc.Sentences {
		sent := &doc.Sentences[i]

		families := p.matcher.Match(sent)
		if len(families) == 0 {
			// No trigger fired: skip entity extraction entirely
			continue
		}

		collected, err := p.collector.Collect(sent)
		if err != nil {
			return nil, fmt.Errorf("collect entities: %w", err)
		}

		timeISO, _ := p.resolver.Resolve(sent.Text)

		for _, family := range families {
			events = append(events, p.builder.Build(sent.Text, family, collected, timeISO, sent.Start, sent.End))
		}
	}

	return extract.Dedupe(events), nil
}
