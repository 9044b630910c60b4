package extract

import (
	"strings"

	"github.com/estrattori/eventi/internal/model"
)

const maxParticipants = 4

// Builder assembles Event records from trigger matches and collected entities
type Builder struct{}

// NewBuilder creates a new event builder
func NewBuilder() *Builder {
	return &Builder{}
}

// Build creates one Event for a firing trigger family. sentStart/sentEnd are
// character offsets of the sentence in the source document.
func (b *Builder) Build(sentText string, family model.EventType, col Collected, timeISO string, sentStart, sentEnd int) model.Event {
	participants := capParticipants(col.Participants)

	place := ""
	if len(col.Places) > 0 {
		place = col.Places[0]
	}

	artefacts := []model.Artefact{}
	if col.Amount != "" {
		artefacts = append(artefacts, model.ArtefactMoney)
	}
	if len(col.Phones) > 0 {
		artefacts = append(artefacts, model.ArtefactPhone)
	}

	confidence := 0.6
	if len(participants) >= 2 {
		confidence += 0.1
	}
	if timeISO != "" {
		confidence += 0.1
	}
	if place != "" {
		confidence += 0.1
	}
	if confidence > 1.0 {
		confidence = 1.0
	}

	source := map[string]interface{}{
		"sent_start": sentStart,
		"sent_end":   sentEnd,
	}

	ev := model.Event{
		Type:         family,
		Text:         sentText,
		Participants: participants,
		Time:         timeISO,
		PlaceRaw:     place,
		Artefacts:    artefacts,
		Amount:       col.Amount,
		Source:       source,
		Confidence:   confidence,
	}
	ev.ID = EventID(ev.Type, ev.Participants, ev.Time, ev.PlaceRaw, ev.Source)
	return ev
}

// capParticipants enforces the participant invariants: no case-insensitive
// duplicates, at most four entries, first-appearance order
func capParticipants(names []string) []string {
	seen := make(map[string]bool, len(names))
	out := make([]string, 0, maxParticipants)
	for _, n := range names {
		key := strings.ToLower(strings.TrimSpace(n))
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, n)
		if len(out) == maxParticipants {
			break
		}
	}
	return out
}
