// Package dashboard derives the tournament summary shown on the control
// board from a materialized set of registrations. Everything here is pure and
// never fails: empty input yields zero counts and empty maps.
package dashboard

import (
	"math"
	"sort"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/tbourn/tkd-inscripciones/internal/domain"
)

// Summary is the aggregate view over a registration set.
type Summary struct {
	TotalCount  int            `json:"totalCount"`
	SchoolCount int            `json:"schoolCount"`
	PerSchool   map[string]int `json:"perSchool"`
	PerBeltRank map[string]int `json:"perBeltRank"`
	SchoolBars  []SchoolBar    `json:"schoolBars"`
	BeltBars    []BeltBar      `json:"beltBars"`
}

// SchoolBar is one bar of the students-per-school chart.
type SchoolBar struct {
	Nombre  string `json:"nombre"`
	Alumnos int    `json:"alumnos"`
}

// BeltBar is one row of the registrations-per-belt chart.
//
// WidthPct is the share of TotalCount as a percentage rounded to two
// decimals. Gradient is set when Color is a CSS gradient rather than a plain
// color; Outlined marks the white belt, which needs a border to be visible.
type BeltBar struct {
	Label    string  `json:"label"`
	Count    int     `json:"count"`
	Color    string  `json:"color"`
	WidthPct float64 `json:"widthPct"`
	Gradient bool    `json:"gradient"`
	Outlined bool    `json:"outlined"`
}

// Aggregate computes the Summary of records.
func Aggregate(records []domain.Inscripcion) Summary {
	s := Summary{
		TotalCount:  len(records),
		PerSchool:   make(map[string]int),
		PerBeltRank: make(map[string]int),
		SchoolBars:  []SchoolBar{},
		BeltBars:    []BeltBar{},
	}
	for _, r := range records {
		s.PerSchool[r.NombreEscuela]++
		s.PerBeltRank[r.GradoCinturon]++
	}
	s.SchoolCount = len(s.PerSchool)
	s.SchoolBars = schoolBars(s.PerSchool)
	s.BeltBars = beltBars(s.PerBeltRank, s.TotalCount)
	return s
}

// schoolBars orders schools by count (desc), then by Spanish collation.
func schoolBars(per map[string]int) []SchoolBar {
	out := make([]SchoolBar, 0, len(per))
	for name, n := range per {
		out = append(out, SchoolBar{Nombre: name, Alumnos: n})
	}
	col := collate.New(language.Spanish, collate.IgnoreCase)
	sort.Slice(out, func(i, j int) bool {
		if out[i].Alumnos != out[j].Alumnos {
			return out[i].Alumnos > out[j].Alumnos
		}
		if c := col.CompareString(out[i].Nombre, out[j].Nombre); c != 0 {
			return c < 0
		}
		return out[i].Nombre < out[j].Nombre
	})
	return out
}

// beltBars orders ranks by seniority; unknown labels follow, alphabetically.
func beltBars(per map[string]int, total int) []BeltBar {
	out := make([]BeltBar, 0, len(per))
	for label, n := range per {
		color := domain.BeltColor(label)
		out = append(out, BeltBar{
			Label:    label,
			Count:    n,
			Color:    color,
			WidthPct: WidthPct(n, total),
			Gradient: strings.Contains(color, "gradient"),
			Outlined: label == domain.WhiteBelt,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		ri, oki := domain.BeltSeniority(out[i].Label)
		rj, okj := domain.BeltSeniority(out[j].Label)
		switch {
		case oki && okj:
			return ri < rj
		case oki != okj:
			return oki
		default:
			return out[i].Label < out[j].Label
		}
	})
	return out
}

// WidthPct returns count as a percentage of total, rounded to two decimals.
// A zero total yields 0.
func WidthPct(count, total int) float64 {
	if total <= 0 {
		return 0
	}
	return math.Round(float64(count)/float64(total)*10000) / 100
}
