package domain

// Document types accepted by the registration form.
const (
	DocumentRUT       = "RUT"
	DocumentPasaporte = "Pasaporte"
	DocumentDNI       = "DNI"
)

// DocumentTypes lists the accepted identity document kinds.
var DocumentTypes = []string{DocumentRUT, DocumentPasaporte, DocumentDNI}

// BeltRank is a taekwondo grade with its display color.
type BeltRank struct {
	Label string
	Color string
}

// DefaultBeltColor is used for rank labels outside BeltRanks.
const DefaultBeltColor = "#6B7280"

// BeltRanks holds the ten grades ordered by seniority (lowest first).
var BeltRanks = []BeltRank{
	{Label: "Cinta Blanca", Color: "#FFFFFF"},
	{Label: "Cinta Amarilla", Color: "#FFD700"},
	{Label: "Cinta Naranja", Color: "#FF8C00"},
	{Label: "Cinta Verde", Color: "#22C55E"},
	{Label: "Cinta Azul", Color: "#3B82F6"},
	{Label: "Cinta Roja", Color: "#EF4444"},
	{Label: "Cinta Roja-Negra", Color: "linear-gradient(90deg, #EF4444 50%, #1F2937 50%)"},
	{Label: "Cinta Negra 1° Dan", Color: "#1F2937"},
	{Label: "Cinta Negra 2° Dan", Color: "#1F2937"},
	{Label: "Cinta Negra 3° Dan", Color: "#1F2937"},
}

// WhiteBelt is rendered with an outline so it stays visible on light themes.
const WhiteBelt = "Cinta Blanca"

var beltIndex = func() map[string]int {
	m := make(map[string]int, len(BeltRanks))
	for i, b := range BeltRanks {
		m[b.Label] = i
	}
	return m
}()

// BeltSeniority returns the zero-based seniority of label and whether the
// label is a known rank.
func BeltSeniority(label string) (int, bool) {
	i, ok := beltIndex[label]
	return i, ok
}

// BeltColor returns the display color for label, DefaultBeltColor if unknown.
func BeltColor(label string) string {
	if i, ok := beltIndex[label]; ok {
		return BeltRanks[i].Color
	}
	return DefaultBeltColor
}

// IsBeltRank reports whether label is one of BeltRanks.
func IsBeltRank(label string) bool {
	_, ok := beltIndex[label]
	return ok
}

// IsDocumentType reports whether v is one of DocumentTypes.
func IsDocumentType(v string) bool {
	for _, d := range DocumentTypes {
		if d == v {
			return true
		}
	}
	return false
}
