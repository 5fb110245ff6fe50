package dashboard

import (
	"reflect"
	"testing"

	"pgregory.net/rapid"

	"github.com/tbourn/tkd-inscripciones/internal/domain"
)

func rec(school, belt string) domain.Inscripcion {
	return domain.Inscripcion{NombreEscuela: school, GradoCinturon: belt}
}

func TestAggregate_PerBeltRankAndWidth(t *testing.T) {
	s := Aggregate([]domain.Inscripcion{
		rec("A", "Cinta Blanca"),
		rec("B", "Cinta Blanca"),
		rec("C", "Cinta Azul"),
	})

	if s.TotalCount != 3 {
		t.Fatalf("TotalCount = %d", s.TotalCount)
	}
	want := map[string]int{"Cinta Blanca": 2, "Cinta Azul": 1}
	if !reflect.DeepEqual(s.PerBeltRank, want) {
		t.Fatalf("PerBeltRank = %v", s.PerBeltRank)
	}
	if len(s.BeltBars) != 2 {
		t.Fatalf("BeltBars = %+v", s.BeltBars)
	}
	white, blue := s.BeltBars[0], s.BeltBars[1]
	if white.Label != "Cinta Blanca" || white.WidthPct != 66.67 || !white.Outlined || white.Color != "#FFFFFF" {
		t.Fatalf("white bar = %+v", white)
	}
	if blue.Label != "Cinta Azul" || blue.WidthPct != 33.33 || blue.Outlined || blue.Color != "#3B82F6" {
		t.Fatalf("blue bar = %+v", blue)
	}
}

func TestAggregate_PerSchool(t *testing.T) {
	s := Aggregate([]domain.Inscripcion{
		rec("A", "Cinta Verde"),
		rec("A", "Cinta Verde"),
		rec("B", "Cinta Verde"),
	})

	if !reflect.DeepEqual(s.PerSchool, map[string]int{"A": 2, "B": 1}) || s.SchoolCount != 2 {
		t.Fatalf("PerSchool = %v SchoolCount = %d", s.PerSchool, s.SchoolCount)
	}
	want := []SchoolBar{{Nombre: "A", Alumnos: 2}, {Nombre: "B", Alumnos: 1}}
	if !reflect.DeepEqual(s.SchoolBars, want) {
		t.Fatalf("SchoolBars = %+v", s.SchoolBars)
	}
}

func TestAggregate_Empty(t *testing.T) {
	for _, in := range [][]domain.Inscripcion{nil, {}} {
		s := Aggregate(in)
		if s.TotalCount != 0 || s.SchoolCount != 0 {
			t.Fatalf("counts = %+v", s)
		}
		if s.PerSchool == nil || len(s.PerSchool) != 0 || s.PerBeltRank == nil || len(s.PerBeltRank) != 0 {
			t.Fatalf("maps should be empty, not nil: %+v", s)
		}
		if s.SchoolBars == nil || s.BeltBars == nil {
			t.Fatalf("bar slices should be empty, not nil")
		}
	}
}

func TestSchoolBars_SpanishCollationOnTies(t *testing.T) {
	s := Aggregate([]domain.Inscripcion{
		rec("Ñandú", "Cinta Roja"),
		rec("Oeste", "Cinta Roja"),
		rec("Norte", "Cinta Roja"),
		rec("Ángeles", "Cinta Roja"),
		rec("Zeta", "Cinta Roja"),
		rec("Zeta", "Cinta Roja"),
	})
	var got []string
	for _, b := range s.SchoolBars {
		got = append(got, b.Nombre)
	}
	want := []string{"Zeta", "Ángeles", "Norte", "Ñandú", "Oeste"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("order = %v; want %v", got, want)
	}
}

func TestBeltBars_SeniorityThenUnknown(t *testing.T) {
	s := Aggregate([]domain.Inscripcion{
		rec("A", "Cinta Plateada"),
		rec("A", "Cinta Negra 3° Dan"),
		rec("A", "Cinta Roja-Negra"),
		rec("A", "Cinta Amarilla"),
		rec("A", "Cinta Dorada"),
	})
	var got []string
	for _, b := range s.BeltBars {
		got = append(got, b.Label)
	}
	want := []string{"Cinta Amarilla", "Cinta Roja-Negra", "Cinta Negra 3° Dan", "Cinta Dorada", "Cinta Plateada"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("order = %v; want %v", got, want)
	}
	for _, b := range s.BeltBars {
		switch b.Label {
		case "Cinta Roja-Negra":
			if !b.Gradient {
				t.Fatalf("gradient not flagged: %+v", b)
			}
		case "Cinta Dorada", "Cinta Plateada":
			if b.Color != domain.DefaultBeltColor || b.Gradient {
				t.Fatalf("unknown rank bar = %+v", b)
			}
		}
	}
}

func TestWidthPct(t *testing.T) {
	tests := []struct {
		count, total int
		want         float64
	}{
		{0, 0, 0},
		{3, 0, 0},
		{1, 1, 100},
		{1, 3, 33.33},
		{2, 3, 66.67},
		{1, 8, 12.5},
	}
	for _, tt := range tests {
		if got := WidthPct(tt.count, tt.total); got != tt.want {
			t.Errorf("WidthPct(%d,%d) = %v; want %v", tt.count, tt.total, got, tt.want)
		}
	}
}

func TestAggregate_CountsAddUp(t *testing.T) {
	labels := make([]string, 0, len(domain.BeltRanks)+1)
	for _, b := range domain.BeltRanks {
		labels = append(labels, b.Label)
	}
	labels = append(labels, "Cinta Desconocida")

	rapid.Check(t, func(t *rapid.T) {
		n := rapid.IntRange(0, 60).Draw(t, "n")
		recs := make([]domain.Inscripcion, n)
		for i := range recs {
			recs[i] = rec(
				rapid.SampledFrom([]string{"A", "B", "C", "D"}).Draw(t, "school"),
				rapid.SampledFrom(labels).Draw(t, "belt"),
			)
		}
		s := Aggregate(recs)

		sumSchools, sumBelts := 0, 0
		for _, v := range s.PerSchool {
			sumSchools += v
		}
		for _, b := range s.BeltBars {
			sumBelts += b.Count
			if b.WidthPct < 0 || b.WidthPct > 100 {
				t.Fatalf("width out of range: %+v", b)
			}
		}
		if sumSchools != n || sumBelts != n || s.TotalCount != n {
			t.Fatalf("totals: schools=%d belts=%d total=%d n=%d", sumSchools, sumBelts, s.TotalCount, n)
		}
		if len(s.SchoolBars) != s.SchoolCount {
			t.Fatalf("one bar per school expected")
		}
	})
}
