package extract

import (
	"sort"
	"strings"

	"github.com/estrattori/eventi/internal/model"
)

// Dedupe reduces a document's events to one survivor per deduplication key:
// (type, date portion of time, lowercased first segment of place,
// case-insensitive participant set). The survivor is the event with the
// highest confidence; ties keep the first seen. Output preserves first-seen
// key order so repeated runs yield identical lists.
func Dedupe(events []model.Event) []model.Event {
	if len(events) == 0 {
		return events
	}

	index := make(map[string]int, len(events))
	out := make([]model.Event, 0, len(events))

	for _, ev := range events {
		key := dedupeKey(ev)
		if at, ok := index[key]; ok {
			if ev.Confidence > out[at].Confidence {
				out[at] = ev
			}
			continue
		}
		index[key] = len(out)
		out = append(out, ev)
	}
	return out
}

func dedupeKey(ev model.Event) string {
	date, _, _ := strings.Cut(ev.Time, "T")

	place := strings.ToLower(strings.SplitN(ev.PlaceRaw, ",", 2)[0])

	// Trim to stay aligned with the identity key's participant handling
	parts := make([]string, len(ev.Participants))
	for i, p := range ev.Participants {
		parts[i] = strings.ToLower(strings.TrimSpace(p))
	}
	sort.Strings(parts)

	return string(ev.Type) + "|" + date + "|" + place + "|" + strings.Join(parts, ",")
}
