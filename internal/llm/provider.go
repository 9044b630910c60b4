package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/estrattori/eventi/internal/model"
)

// Provider generates investigator briefings over extracted events.
// A briefing is presentation-only: it never feeds back into extraction,
// confidence or identity.
type Provider interface {
	// Name returns the provider name
	Name() string

	// Brief generates a briefing strictly grounded on the supplied events
	Brief(ctx context.Context, req BriefRequest) (*BriefResponse, error)

	// IsAvailable checks if the provider is configured and reachable
	IsAvailable(ctx context.Context) bool
}

// BriefRequest contains the input for briefing generation
type BriefRequest struct {
	// Events is the STRICT ground truth; the model must not introduce
	// people, places or times beyond this list
	Events []model.Event

	// Prompt overrides the default prompt when non-empty
	Prompt string

	// Model is the provider-specific model name
	Model string

	// MaxTokens limits the response length
	MaxTokens int
}

// BriefResponse contains the generated briefing
type BriefResponse struct {
	Summary    string
	Model      string
	TokensUsed int
}

// NewProvider creates a provider from configuration; a blank provider name
// means briefings are disabled and returns (nil, nil)
func NewProvider(cfg model.LLMConfig) (Provider, error) {
	switch strings.ToLower(cfg.Provider) {
	case "openai", "ollama":
		return NewOpenAIProvider(cfg)
	case "":
		return nil, nil
	default:
		return nil, fmt.Errorf("unknown LLM provider: %s (supported: openai, ollama)", cfg.Provider)
	}
}

// BuildPrompt constructs the default briefing prompt. Every event is listed
// explicitly so the model has no reason to reach beyond them.
func BuildPrompt(events []model.Event) string {
	var b strings.Builder
	b.WriteString(`Sei un assistente che riassume eventi estratti automaticamente da atti di indagine.

REGOLE:
1. Cita SOLO gli eventi elencati sotto, identificati dal loro id.
2. Non inventare persone, luoghi, orari o importi non presenti nell'elenco.
3. Se un campo manca, scrivi che non risulta.
4. Non esprimere giudizi di colpevolezza.

Eventi estratti:
`)
	for _, ev := range events {
		fmt.Fprintf(&b, "- [%s] %s: partecipanti=%s", ev.ID, ev.Type, strings.Join(ev.Participants, ", "))
		if ev.Time != "" {
			fmt.Fprintf(&b, "; quando=%s", ev.Time)
		}
		if ev.PlaceRaw != "" {
			fmt.Fprintf(&b, "; dove=%s", ev.PlaceRaw)
		}
		if ev.Amount != "" {
			fmt.Fprintf(&b, "; importo=%s", ev.Amount)
		}
		b.WriteString("\n")
	}
	b.WriteString("\nScrivi un breve riepilogo cronologico in italiano.")
	return b.String()
}
