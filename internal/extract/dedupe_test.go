package extract

import (
	"reflect"
	"testing"

	"github.com/estrattori/eventi/internal/model"
)

func meetingEvent(text string, confidence float64) model.Event {
	return model.Event{
		Type:         model.EventMeeting,
		Text:         text,
		Participants: []string{"Mario", "Luca"},
		Time:         "2024-03-11T18:00:00",
		PlaceRaw:     "Piazza Duomo, Milano",
		Confidence:   confidence,
	}
}

func TestDedupe_KeepsHighestConfidence(t *testing.T) {
	low := meetingEvent("prima frase", 0.7)
	high := meetingEvent("seconda frase", 0.9)

	out := Dedupe([]model.Event{low, high})
	if len(out) != 1 {
		t.Fatalf("expected 1 survivor, got %d", len(out))
	}
	if out[0].Text != "seconda frase" {
		t.Errorf("survivor = %q, want the higher-confidence event", out[0].Text)
	}
}

func TestDedupe_TieKeepsFirstSeen(t *testing.T) {
	first := meetingEvent("prima", 0.8)
	second := meetingEvent("seconda", 0.8)

	out := Dedupe([]model.Event{first, second})
	if len(out) != 1 || out[0].Text != "prima" {
		t.Errorf("tie should keep first seen, got %+v", out)
	}
}

func TestDedupe_KeyComponents(t *testing.T) {
	base := meetingEvent("a", 0.7)

	differentType := base
	differentType.Type = model.EventHandoff

	differentDate := base
	differentDate.Time = "2024-03-12T18:00:00"

	sameDateOtherClock := base
	sameDateOtherClock.Text = "b"
	sameDateOtherClock.Time = "2024-03-11T21:00:00"

	samePlacePrefix := base
	samePlacePrefix.Text = "c"
	samePlacePrefix.PlaceRaw = "piazza duomo, Milano Centro"

	caseSwappedParticipants := base
	caseSwappedParticipants.Text = "d"
	caseSwappedParticipants.Participants = []string{"LUCA", "mario"}

	out := Dedupe([]model.Event{base, differentType, differentDate, sameDateOtherClock, samePlacePrefix, caseSwappedParticipants})

	// base, sameDateOtherClock, samePlacePrefix and caseSwappedParticipants
	// share a key; the two real variants survive separately
	if len(out) != 3 {
		t.Fatalf("expected 3 survivors, got %d: %+v", len(out), out)
	}
}

func TestDedupe_PaddedParticipantsShareKey(t *testing.T) {
	plain := meetingEvent("a", 0.7)
	padded := meetingEvent("b", 0.7)
	padded.Participants = []string{" Mario ", "Luca "}

	// Events whose participants differ only in padding share an identity,
	// so they must share a dedup key too
	out := Dedupe([]model.Event{plain, padded})
	if len(out) != 1 {
		t.Fatalf("expected 1 survivor, got %d: %+v", len(out), out)
	}
}

func TestDedupe_Idempotent(t *testing.T) {
	events := []model.Event{
		meetingEvent("a", 0.7),
		meetingEvent("b", 0.9),
		{Type: model.EventPhoneCall, Participants: []string{"Anna"}, Confidence: 0.6},
	}

	once := Dedupe(events)
	twice := Dedupe(once)
	if !reflect.DeepEqual(once, twice) {
		t.Errorf("dedupe not idempotent:\nonce:  %+v\ntwice: %+v", once, twice)
	}
}

func TestDedupe_PreservesFirstSeenOrder(t *testing.T) {
	call := model.Event{Type: model.EventPhoneCall, Participants: []string{"Anna"}, Confidence: 0.6}
	handoff := model.Event{Type: model.EventHandoff, Participants: []string{"Anna"}, Confidence: 0.6}

	out := Dedupe([]model.Event{call, handoff, meetingEvent("x", 0.7)})
	wantTypes := []model.EventType{model.EventPhoneCall, model.EventHandoff, model.EventMeeting}
	for i, ev := range out {
		if ev.Type != wantTypes[i] {
			t.Fatalf("order changed: got %v at %d, want %v", ev.Type, i, wantTypes[i])
		}
	}
}

func TestDedupe_Empty(t *testing.T) {
	if out := Dedupe(nil); len(out) != 0 {
		t.Errorf("expected empty output, got %v", out)
	}
}
