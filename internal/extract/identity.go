package extract

import (
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/estrattori/eventi/internal/model"
)

// EventID computes the deterministic event identity. The key layout and the
// 16-hex SHA-1 truncation are a compatibility contract shared with earlier
// deployments; do not change either without a migration plan.
//
// key = type|sorted-lowercased-participants-joined-","|time|lower(place)|docID:page
func EventID(typ model.EventType, participants []string, timeISO, place string, source map[string]interface{}) string {
	lowered := make([]string, len(participants))
	for i, p := range participants {
		lowered[i] = strings.ToLower(strings.TrimSpace(p))
	}
	sort.Strings(lowered)

	key := strings.Join([]string{
		string(typ),
		strings.Join(lowered, ","),
		strings.TrimSpace(timeISO),
		strings.ToLower(strings.TrimSpace(place)),
		sourceString(source, "doc_id") + ":" + sourceString(source, "page"),
	}, "|")

	sum := sha1.Sum([]byte(key))
	return "evt_" + hex.EncodeToString(sum[:])[:16]
}

// sourceString renders a provenance value the way the identity contract
// expects: strings verbatim, integral numbers without a decimal point,
// missing keys as empty
func sourceString(source map[string]interface{}, key string) string {
	if source == nil {
		return ""
	}
	v, ok := source[key]
	if !ok || v == nil {
		return ""
	}
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(t), 'f', -1, 32)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case bool:
		return strconv.FormatBool(t)
	default:
		return fmt.Sprintf("%v", t)
	}
}
