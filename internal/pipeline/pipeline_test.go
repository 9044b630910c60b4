package pipeline

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/estrattori/eventi/internal/annotate"
	"github.com/estrattori/eventi/internal/model"
	"github.com/estrattori/eventi/internal/timeres"
)

const (
	meetingText = "Mario ha incontrato Luca ieri alle 18 in Piazza Duomo."
	handoffText = "Giovanni ha telefonato a Paolo, gli ha consegnato 500 euro."
)

// fakeAnnotator serves pre-annotated documents keyed by exact text
type fakeAnnotator struct {
	docs  map[string]*annotate.Document
	calls int
}

func (f *fakeAnnotator) Annotate(ctx context.Context, text string) (*annotate.Document, error) {
	f.calls++
	if doc, ok := f.docs[text]; ok {
		return doc, nil
	}
	return &annotate.Document{}, nil
}

func meetingDoc() *annotate.Document {
	return &annotate.Document{
		Sentences: []annotate.Sentence{{
			Text:  meetingText,
			Start: 0,
			End:   54,
			Tokens: []annotate.Token{
				{Text: "Mario", Lemma: "Mario", POS: "PROPN", Head: -1},
				{Text: "ha", Lemma: "avere", POS: "AUX", Head: -1},
				{Text: "incontrato", Lemma: "incontrare", POS: "VERB", Head: -1},
				{Text: "Luca", Lemma: "Luca", POS: "PROPN", Head: -1},
				{Text: "ieri", Lemma: "ieri", POS: "ADV", Head: -1},
				{Text: "alle", Lemma: "a", POS: "ADP", Head: -1},
				{Text: "18", Lemma: "18", POS: "NUM", Head: -1},
				{Text: "in", Lemma: "in", POS: "ADP", Head: -1},
				{Text: "Piazza", Lemma: "Piazza", POS: "PROPN", Head: -1},
				{Text: "Duomo", Lemma: "Duomo", POS: "PROPN", Head: -1},
			},
			Entities: []annotate.Entity{
				{Text: "Mario", Label: annotate.LabelPerson},
				{Text: "Luca", Label: annotate.LabelPerson},
				{Text: "Piazza Duomo", Label: annotate.LabelLocation},
			},
		}},
	}
}

func handoffDoc() *annotate.Document {
	return &annotate.Document{
		Sentences: []annotate.Sentence{{
			Text:  handoffText,
			Start: 0,
			End:   59,
			Tokens: []annotate.Token{
				{Text: "Giovanni", Lemma: "Giovanni", POS: "PROPN", Head: -1},
				{Text: "ha", Lemma: "avere", POS: "AUX", Head: -1},
				{Text: "telefonato", Lemma: "telefonare", POS: "VERB", Head: -1},
				{Text: "a", Lemma: "a", POS: "ADP", Head: -1},
				{Text: "Paolo", Lemma: "Paolo", POS: "PROPN", Head: -1},
				{Text: "gli", Lemma: "gli", POS: "PRON", Head: -1},
				{Text: "ha", Lemma: "avere", POS: "AUX", Head: -1},
				{Text: "consegnato", Lemma: "consegnare", POS: "VERB", Head: -1},
				{Text: "500", Lemma: "500", POS: "NUM", Head: -1},
				{Text: "euro", Lemma: "euro", POS: "NOUN", Head: -1},
			},
			Entities: []annotate.Entity{
				{Text: "Giovanni", Label: annotate.LabelPerson},
				{Text: "Paolo", Label: annotate.LabelPerson},
			},
		}},
	}
}

func newTestPipeline(t *testing.T, fake *fakeAnnotator) *Pipeline {
	t.Helper()
	p, err := New(model.DefaultConfig(), fake)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	p.resolver = timeres.NewResolverAt(func() time.Time {
		return time.Date(2024, time.March, 12, 10, 0, 0, 0, time.UTC)
	})
	return p
}

func TestExtract_Meeting(t *testing.T) {
	fake := &fakeAnnotator{docs: map[string]*annotate.Document{meetingText: meetingDoc()}}
	p := newTestPipeline(t, fake)

	events, err := p.Extract(context.Background(), meetingText, nil)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}

	ev := events[0]
	if ev.Type != model.EventMeeting {
		t.Errorf("type = %v, want meeting", ev.Type)
	}
	if !reflect.DeepEqual(ev.Participants, []string{"Mario", "Luca"}) {
		t.Errorf("participants = %v", ev.Participants)
	}
	if ev.Time != "2024-03-11T18:00:00" {
		t.Errorf("time = %q, want yesterday 18:00", ev.Time)
	}
	if ev.PlaceRaw != "Piazza Duomo" {
		t.Errorf("place_raw = %q", ev.PlaceRaw)
	}
	if len(ev.Artefacts) != 0 {
		t.Errorf("artefacts = %v, want none", ev.Artefacts)
	}
	if ev.Confidence != 0.9 {
		t.Errorf("confidence = %v, want 0.9", ev.Confidence)
	}
	if ev.ID != "evt_66b5ada80b4e587e" {
		t.Errorf("id = %s", ev.ID)
	}
}

func TestExtract_PhoneCallAndHandoff(t *testing.T) {
	fake := &fakeAnnotator{docs: map[string]*annotate.Document{handoffText: handoffDoc()}}
	p := newTestPipeline(t, fake)

	events, err := p.Extract(context.Background(), handoffText, nil)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("expected 2 events, got %d: %+v", len(events), events)
	}

	if events[0].Type != model.EventPhoneCall || events[1].Type != model.EventHandoff {
		t.Fatalf("types = %v, %v", events[0].Type, events[1].Type)
	}

	for _, ev := range events {
		if !reflect.DeepEqual(ev.Participants, []string{"Giovanni", "Paolo"}) {
			t.Errorf("%s participants = %v", ev.Type, ev.Participants)
		}
		if ev.Amount != "500 euro" {
			t.Errorf("%s amount = %q", ev.Type, ev.Amount)
		}
		want := []model.Artefact{model.ArtefactMoney, model.ArtefactPhone}
		if !reflect.DeepEqual(ev.Artefacts, want) {
			t.Errorf("%s artefacts = %v, want %v", ev.Type, ev.Artefacts, want)
		}
		if ev.Confidence != 0.7 {
			t.Errorf("%s confidence = %v, want 0.7", ev.Type, ev.Confidence)
		}
		if ev.Time != "" || ev.PlaceRaw != "" {
			t.Errorf("%s unexpected time/place: %q %q", ev.Type, ev.Time, ev.PlaceRaw)
		}
	}

	if events[0].ID != "evt_f0ece94035d2039d" {
		t.Errorf("phone-call id = %s", events[0].ID)
	}
	if events[1].ID != "evt_293e48f3be9019e8" {
		t.Errorf("handoff id = %s", events[1].ID)
	}
}

func TestExtract_MetaMergeChangesIdentity(t *testing.T) {
	fake := &fakeAnnotator{docs: map[string]*annotate.Document{meetingText: meetingDoc()}}
	p := newTestPipeline(t, fake)

	plain, err := p.Extract(context.Background(), meetingText, nil)
	if err != nil {
		t.Fatal(err)
	}
	tagged, err := p.Extract(context.Background(), meetingText, map[string]interface{}{"doc_id": "D1", "page": 3})
	if err != nil {
		t.Fatal(err)
	}

	if plain[0].ID != "evt_66b5ada80b4e587e" {
		t.Errorf("plain id = %s", plain[0].ID)
	}
	if tagged[0].ID != "evt_e1b28dafb097f2d9" {
		t.Errorf("tagged id = %s", tagged[0].ID)
	}
	if tagged[0].Source["doc_id"] != "D1" {
		t.Errorf("source missing doc_id: %v", tagged[0].Source)
	}
	if _, ok := tagged[0].Source["sent_start"]; !ok {
		t.Errorf("meta merge dropped sentence offsets: %v", tagged[0].Source)
	}
}

func TestExtract_CrossSentenceDedupe(t *testing.T) {
	twoSent := meetingText + " Mario ha incontrato Luca ieri alle 21 in Piazza Duomo, Milano."

	first := meetingDoc().Sentences[0]
	second := first
	second.Text = "Mario ha incontrato Luca ieri alle 21 in Piazza Duomo, Milano."
	second.Start = 55
	second.End = 118
	second.Entities = []annotate.Entity{
		{Text: "Mario", Label: annotate.LabelPerson},
		{Text: "Luca", Label: annotate.LabelPerson},
		{Text: "Piazza Duomo, Milano", Label: annotate.LabelLocation},
	}

	fake := &fakeAnnotator{docs: map[string]*annotate.Document{
		twoSent: {Sentences: []annotate.Sentence{first, second}},
	}}
	p := newTestPipeline(t, fake)

	events, err := p.Extract(context.Background(), twoSent, nil)
	if err != nil {
		t.Fatal(err)
	}

	// Same type, date, place prefix and participant set collapse to one
	// event; the tie keeps the first sentence's mention
	if len(events) != 1 {
		t.Fatalf("expected 1 deduplicated event, got %d", len(events))
	}
	if events[0].Text != meetingText {
		t.Errorf("survivor text = %q, want the first mention", events[0].Text)
	}
}

func TestExtract_InputErrors(t *testing.T) {
	p := newTestPipeline(t, &fakeAnnotator{})

	if _, err := p.Extract(context.Background(), "   \n\t ", nil); !errors.Is(err, ErrEmptyInput) {
		t.Errorf("whitespace input: err = %v, want ErrEmptyInput", err)
	}
	if _, err := p.Extract(context.Background(), string([]byte{0xff, 0xfe, 0xfd}), nil); !errors.Is(err, ErrMalformedInput) {
		t.Errorf("invalid UTF-8: err = %v, want ErrMalformedInput", err)
	}
}

func TestExtract_NoTriggerReturnsEmptySlice(t *testing.T) {
	noTrigger := "Il tempo era bello e la strada deserta."
	fake := &fakeAnnotator{docs: map[string]*annotate.Document{
		noTrigger: {Sentences: []annotate.Sentence{{
			Text:   noTrigger,
			Tokens: []annotate.Token{{Text: "Il", Lemma: "il", Head: -1}, {Text: "tempo", Lemma: "tempo", Head: -1}},
		}}},
	}}
	p := newTestPipeline(t, fake)

	events, err := p.Extract(context.Background(), noTrigger, nil)
	if err != nil {
		t.Fatal(err)
	}
	if events == nil {
		t.Fatal("expected empty slice, got nil")
	}
	if len(events) != 0 {
		t.Errorf("expected no events, got %+v", events)
	}
}

func TestExtract_HTMLInput(t *testing.T) {
	fake := &fakeAnnotator{docs: map[string]*annotate.Document{meetingText: meetingDoc()}}
	p := newTestPipeline(t, fake)

	htmlInput := "<html><body><p>" + meetingText + "</p></body></html>"
	events, err := p.Extract(context.Background(), htmlInput, nil)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if len(events) != 1 || events[0].Type != model.EventMeeting {
		t.Fatalf("expected the meeting event from stripped text, got %+v", events)
	}
}

func TestExtract_CacheSkipsAnnotation(t *testing.T) {
	fake := &fakeAnnotator{docs: map[string]*annotate.Document{meetingText: meetingDoc()}}
	p := newTestPipeline(t, fake)

	first, err := p.Extract(context.Background(), meetingText, nil)
	if err != nil {
		t.Fatal(err)
	}
	second, err := p.Extract(context.Background(), meetingText, nil)
	if err != nil {
		t.Fatal(err)
	}

	if fake.calls != 1 {
		t.Errorf("annotator called %d times, want 1", fake.calls)
	}
	if first[0].ID != second[0].ID || first[0].Confidence != second[0].Confidence {
		t.Errorf("cached result diverged: %+v vs %+v", first[0], second[0])
	}
}

func TestExtract_Deterministic(t *testing.T) {
	fake := &fakeAnnotator{docs: map[string]*annotate.Document{handoffText: handoffDoc()}}
	p := newTestPipeline(t, fake)

	first, err := p.Extract(context.Background(), handoffText, nil)
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 10; i++ {
		again, err := p.Extract(context.Background(), handoffText, nil)
		if err != nil {
			t.Fatal(err)
		}
		if !reflect.DeepEqual(first, again) {
			t.Fatalf("run %d: results diverged", i)
		}
	}
}

func TestStripHTML(t *testing.T) {
	in := "<html><head><style>p{color:red}</style></head><body><p>Mario ha incontrato Luca.</p><script>alert(1)</script></body></html>"
	got := StripHTML(in)
	if got != "Mario ha incontrato Luca." {
		t.Errorf("StripHTML = %q", got)
	}
}

func TestLooksLikeHTML(t *testing.T) {
	if looksLikeHTML("Mario < Luca per statura.") {
		t.Error("bare comparison sign misdetected as markup")
	}
	if !looksLikeHTML("<div>testo</div>") {
		t.Error("div markup not detected")
	}
}
