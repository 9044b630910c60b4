// Package address normalizes free-form Italian postal addresses into
// structured components. It is a regex engine: precleaning expands odonym
// abbreviations and strips residence boilerplate, then component patterns
// pull out road, civic number, CAP, municipality and province.
package address

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/estrattori/eventi/internal/model"
)

// Version tags normalizer output for downstream audit trails
const Version = "addr-normalizer@1.0"

// Request is one normalization call
type Request struct {
	Type    string                 `json:"type"`
	Text    string                 `json:"text"`
	Context map[string]interface{} `json:"context,omitempty"`
}

type alias struct {
	re  *regexp.Regexp
	rep string
}

var (
	aliases = []alias{
		{regexp.MustCompile(`(?i)\bP\.zza\b`), "Piazza"},
		{regexp.MustCompile(`(?i)\bP\.za\b`), "Piazza"},
		{regexp.MustCompile(`(?i)\bV\.le\b`), "Viale"},
		{regexp.MustCompile(`(?i)\bV\.lo\b`), "Vicolo"},
		{regexp.MustCompile(`(?i)\bC\.so\b`), "Corso"},
		{regexp.MustCompile(`(?i)\bL\.go\b`), "Largo"},
		{regexp.MustCompile(`(?i)\bS\.N\.C\.?\b`), "SNC"},
	}

	prefixRe   = regexp.MustCompile(`(?i)(ivi\s+residente\s+in|residente\s+in|domiciliat[oa]\s+in|dom\.\s*in|con\s+domicilio\s+eletto\s+presso)`)
	careOfRe   = regexp.MustCompile(`(?i)(?:c/o|presso)\s+([^,;]+)`)
	roadRe     = regexp.MustCompile(`(?i)(Via|Viale|Vicolo|Vico|Piazza|Corso|Strada|Largo|Piazzale)\s+([^,;]+)`)
	houseRe    = regexp.MustCompile(`,\s*(\d+\w?)\b`)
	capRe      = regexp.MustCompile(`\b(\d{2})\.(\d{3})\b|\b(\d{5})\b`)
	provRe     = regexp.MustCompile(`\(([A-Z]{2})\)`)
	provTailRe = regexp.MustCompile(`\b([A-Z]{2})\b$`)
	spaceRe    = regexp.MustCompile(`\s+`)
)

// Normalizer turns raw address mentions into structured records
type Normalizer struct{}

// NewNormalizer creates a new address normalizer
func NewNormalizer() *Normalizer {
	return &Normalizer{}
}

// Normalize cleans and parses one address mention. The context key
// "last_place" backs the municipality for "ivi residente" style references.
func (n *Normalizer) Normalize(req Request) model.Address {
	cleaned := Preclean(req.Text)
	comps := parseComponents(cleaned)

	// The c/o segment is stripped before parsing; recover the recipient
	// from the raw mention
	if m := careOfRe.FindStringSubmatch(req.Text); m != nil {
		comps.Recipient = strings.TrimSpace(m[1])
	}

	if comps.Municipality == "" && req.Context != nil {
		if lp, ok := req.Context["last_place"].(string); ok && lp != "" {
			comps.Municipality = lp
		}
	}
	if comps.Country == "" {
		comps.Country = "Italia"
	}

	norm := assemble(comps)
	if norm == "" {
		norm = cleaned
	}

	conf := 0.5
	if comps.Postcode != "" {
		conf += 0.2
	}
	if comps.Road != "" {
		conf += 0.2
	}
	if conf < 0.3 {
		conf = 0.3
	}
	if conf > 1.0 {
		conf = 1.0
	}

	return model.Address{
		Type:       req.Type,
		Raw:        req.Text,
		Cleaned:    cleaned,
		Components: comps,
		Norm:       norm,
		Confidence: conf,
		Engine:     "regex",
		Notes:      []string{},
		Version:    Version,
	}
}

// Preclean strips c/o segments and residence prefixes, expands odonym
// abbreviations and collapses whitespace
func Preclean(s string) string {
	s = strings.TrimSpace(s)

	if m := careOfRe.FindStringIndex(s); m != nil {
		s = strings.ReplaceAll(s[:m[0]]+s[m[1]:], "  ", " ")
	}
	if m := prefixRe.FindStringIndex(s); m != nil {
		s = strings.TrimLeft(s[m[1]:], ",; ")
	}
	for _, a := range aliases {
		s = a.re.ReplaceAllString(s, a.rep)
	}
	return strings.TrimSpace(spaceRe.ReplaceAllString(s, " "))
}

func parseComponents(cleaned string) model.AddressComponents {
	var comps model.AddressComponents

	if m := roadRe.FindStringSubmatch(cleaned); m != nil {
		comps.Road = titleCase(m[1]) + " " + strings.TrimSpace(m[2])
	}
	// A five-digit match after the comma is the CAP, not a civic number
	if m := houseRe.FindStringSubmatch(cleaned); m != nil && !capRe.MatchString(m[1]) {
		comps.HouseNumber = m[1]
	}
	if m := capRe.FindStringSubmatch(cleaned); m != nil {
		if m[1] != "" {
			comps.Postcode = m[1] + m[2]
		} else {
			comps.Postcode = m[3]
		}
	}
	if m := provRe.FindStringSubmatch(cleaned); m != nil {
		comps.Province = m[1]
	} else if m := provTailRe.FindStringSubmatch(cleaned); m != nil {
		comps.Province = m[1]
	}

	segments := strings.Split(cleaned, ",")
	tail := strings.TrimSpace(segments[len(segments)-1])
	if tail != "" {
		city := provRe.ReplaceAllString(tail, "")
		city = strings.TrimSpace(capRe.ReplaceAllString(city, ""))
		city = strings.TrimSpace(provTailRe.ReplaceAllString(city, ""))
		if strings.IndexFunc(city, unicode.IsLetter) >= 0 {
			comps.Municipality = city
		}
	}

	return comps
}

// assemble builds the normalized display string: road + civic number,
// then "CAP Municipality (PR)"
func assemble(comps model.AddressComponents) string {
	var parts []string
	if comps.Road != "" {
		parts = append(parts, titleCase(comps.Road))
	}
	if comps.HouseNumber != "" {
		if len(parts) > 0 {
			parts[len(parts)-1] = parts[len(parts)-1] + " " + comps.HouseNumber
		} else {
			parts = append(parts, comps.HouseNumber)
		}
	}

	var tail []string
	if comps.Postcode != "" {
		tail = append(tail, comps.Postcode)
	}
	if comps.Municipality != "" {
		tail = append(tail, titleCase(comps.Municipality))
	}
	if comps.Province != "" && len(tail) > 0 {
		tail[len(tail)-1] = tail[len(tail)-1] + " (" + strings.ToUpper(comps.Province) + ")"
	}
	if len(tail) > 0 {
		parts = append(parts, strings.Join(tail, " "))
	}

	return strings.Join(parts, ", ")
}

// titleCase uppercases the first letter of each word, lowercasing the rest
func titleCase(s string) string {
	words := strings.Fields(strings.ToLower(s))
	for i, w := range words {
		runes := []rune(w)
		runes[0] = unicode.ToUpper(runes[0])
		words[i] = string(runes)
	}
	return strings.Join(words, " ")
}
