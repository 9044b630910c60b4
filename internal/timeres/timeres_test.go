package timeres

import (
	"testing"
	"time"
)

func fixedClock() func() time.Time {
	return func() time.Time {
		return time.Date(2024, time.March, 12, 10, 30, 0, 0, time.UTC)
	}
}

func TestResolve(t *testing.T) {
	tests := []struct {
		name   string
		text   string
		want   string
		wantOK bool
	}{
		{"relative with clock", "Mario ha incontrato Luca ieri alle 18 in Piazza Duomo.", "2024-03-11T18:00:00", true},
		{"today", "Si sono visti oggi alle 9:15 al bar.", "2024-03-12T09:15:00", true},
		{"tomorrow", "Appuntamento fissato per domani.", "2024-03-13T00:00:00", true},
		{"explicit date", "Incontro avvenuto il 05/11/2023 presso la sede.", "2023-11-05T00:00:00", true},
		{"explicit date with clock", "Il 05/11/2023 alle ore 14:30 si incontravano.", "2023-11-05T14:30:00", true},
		{"two digit year", "Telefonata del 3-7-21 intercettata.", "2021-07-03T00:00:00", true},
		{"month name", "Consegna avvenuta il 5 marzo 2022.", "2022-03-05T00:00:00", true},
		{"month name without year", "Visti insieme il 20 giugno al porto.", "2024-06-20T00:00:00", true},
		{"clock only defaults to reference date", "Contattato alle ore 21.45 dal numero noto.", "2024-03-12T21:45:00", true},
		{"bare year near clock", "Nel 2019 alle 10 avveniva la consegna.", "2019-01-01T10:00:00", true},
		{"bare year alone", "Nel 2019 avveniva la consegna.", "2019-01-01T00:00:00", true},
		{"dotted hour marker", "Rientrava h. 7 presso il domicilio.", "2024-03-12T07:00:00", true},
		{"no clue", "Mario ha incontrato Luca al solito posto.", "", false},
		{"invalid hour", "Riferiva di alle 29 senza senso.", "", false},
		{"invalid calendar date", "Documento datato 45/13/99 risultava illeggibile.", "", false},
		{"invalid date keeps bare year", "Documento datato 45/13/2023 risultava illeggibile.", "2023-01-01T00:00:00", true},
	}

	r := NewResolverAt(fixedClock())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := r.Resolve(tt.text)
			if ok != tt.wantOK {
				t.Fatalf("ok = %v, want %v (got %q)", ok, tt.wantOK, got)
			}
			if got != tt.want {
				t.Errorf("Resolve = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestResolve_ExplicitDateBeatsRelative(t *testing.T) {
	r := NewResolverAt(fixedClock())
	got, ok := r.Resolve("Ieri, cioè il 01/02/2023, avveniva l'incontro.")
	if !ok || got != "2023-02-01T00:00:00" {
		t.Errorf("Resolve = %q ok=%v, want explicit date to win", got, ok)
	}
}

func TestResolve_WindowExcludesDistantClues(t *testing.T) {
	r := NewResolverAt(fixedClock())

	// The relative word sits well outside the ±20 rune window around the
	// clock clue and must not contribute a date
	text := "Ieri veniva redatta la presente annotazione di servizio; il soggetto veniva contattato alle 18 dal numero in uso."
	got, ok := r.Resolve(text)
	if !ok {
		t.Fatal("expected a resolved timestamp")
	}
	if got != "2024-03-12T18:00:00" {
		t.Errorf("Resolve = %q, want reference date with clue clock", got)
	}
}

func TestResolve_Deterministic(t *testing.T) {
	r := NewResolverAt(fixedClock())
	first, _ := r.Resolve("ieri alle 18")
	for i := 0; i < 20; i++ {
		if got, _ := r.Resolve("ieri alle 18"); got != first {
			t.Fatalf("run %d: %q != %q", i, got, first)
		}
	}
}
