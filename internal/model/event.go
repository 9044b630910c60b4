package model

// EventType identifies the trigger family an event belongs to
type EventType string

const (
	EventMeeting   EventType = "meeting"    // In-person meeting between subjects
	EventPhoneCall EventType = "phone-call" // Phone contact between subjects
	EventHandoff   EventType = "handoff"    // Hand-over of money or objects
)

// Artefact is a coarse tag for an object class referenced by an event
type Artefact string

const (
	ArtefactMoney Artefact = "money"
	ArtefactPhone Artefact = "phone"
)

// Event represents one structured event extracted from investigative text
type Event struct {
	Type         EventType              `json:"type"`                // Trigger family
	Text         string                 `json:"text"`                // Sentence the event was extracted from
	Participants []string               `json:"participants"`        // Name mentions, first-appearance order, max 4
	Time         string                 `json:"time,omitempty"`      // ISO-8601 timestamp, empty if unresolved
	PlaceRaw     string                 `json:"place_raw,omitempty"` // First place mention, verbatim
	Artefacts    []Artefact             `json:"artefacts"`           // money/phone tags
	Amount       string                 `json:"amount,omitempty"`    // Raw matched money text
	Source       map[string]interface{} `json:"source"`              // Provenance keys (sentence offsets, caller meta)
	Confidence   float64                `json:"confidence"`          // 0.6..1.0 per corroborating signals
	ID           string                 `json:"id"`                  // Deterministic identity (evt_ + 16 hex)
}

// ExtractItem is one unit of work in a batch extraction request
type ExtractItem struct {
	Text string                 `json:"text"`
	Meta map[string]interface{} `json:"meta,omitempty"`
}

// ExtractResult is the outcome of extracting a single item
type ExtractResult struct {
	OK     bool                   `json:"ok"`
	Events []Event                `json:"events"`
	Meta   map[string]interface{} `json:"meta,omitempty"`
	Error  string                 `json:"error,omitempty"`
}
