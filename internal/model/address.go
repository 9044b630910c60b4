package model

// AddressComponents holds the structured parts of a normalized Italian address
type AddressComponents struct {
	Recipient    string `json:"recipient,omitempty"`    // c/o or named recipient, when detected
	Road         string `json:"road,omitempty"`         // Odonym plus street name (e.g. "Via Roma")
	HouseNumber  string `json:"house_number,omitempty"` // Civic number, may carry a letter suffix
	Municipality string `json:"municipality,omitempty"`
	Province     string `json:"province,omitempty"` // Two-letter sigla
	Postcode     string `json:"postcode,omitempty"` // Five-digit CAP
	Country      string `json:"country"`
}

// Address is the result of normalizing one free-form address mention
type Address struct {
	Type       string            `json:"type"`       // Caller-supplied mention type (residence, domicile, ...)
	Raw        string            `json:"raw"`        // Original text, untouched
	Cleaned    string            `json:"cleaned"`    // After preclean (aliases expanded, prefixes stripped)
	Components AddressComponents `json:"components"`
	Norm       string            `json:"norm"`       // Normalized display string
	Confidence float64           `json:"confidence"` // 0.3..1.0
	Engine     string            `json:"engine"`     // Which engine produced the components
	Notes      []string          `json:"notes"`
	Version    string            `json:"version"`
}
