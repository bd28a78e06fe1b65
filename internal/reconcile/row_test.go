package reconcile

import (
	"errors"
	"strings"
	"testing"

	"sheetloader/internal/schema"
)

func TestBuildRow(t *testing.T) {
	tg := mustTarget(t, []schema.FieldSpec{
		{Name: "feature_name"},
		{Name: "Title"},
		{Name: "Year", Type: schema.TypeYear, Nullable: true},
		{Name: "Accuracy", Type: schema.TypeNumeric, Nullable: true},
		{Name: "Citations", Type: schema.TypeInteger, Nullable: true},
		{Name: "Notes", Nullable: true},
	})
	m := &Mapping{TargetToSource: []int{0, 1, 2, 3, 4, Absent}}

	row, err := BuildRow(m, tg, []string{"SMD", " a title ", "2015.0", "85%", "12"}, DefaultCoercion())
	if err != nil {
		t.Fatalf("BuildRow: %v", err)
	}
	want := []any{"SMD", "a title", int64(2015), 85.0, int64(12), nil}
	for i := range want {
		if row[i] != want[i] {
			t.Fatalf("row[%d] = %#v; want %#v", i, row[i], want[i])
		}
	}
}

func TestBuildRowNullMarkers(t *testing.T) {
	tg := mustTarget(t, []schema.FieldSpec{
		{Name: "feature_name"},
		{Name: "Notes", Nullable: true},
	})
	m := &Mapping{TargetToSource: []int{0, 1}}

	for _, marker := range DefaultCoercion().NullMarkers {
		row, err := BuildRow(m, tg, []string{"SMD", marker}, DefaultCoercion())
		if err != nil {
			t.Fatalf("BuildRow(%q): %v", marker, err)
		}
		if row[1] != nil {
			t.Fatalf("marker %q coerced to %#v; want nil", marker, row[1])
		}
	}

	// "SMD" is a legitimate value, never a null marker.
	row, err := BuildRow(m, tg, []string{"SMD", "SMD"}, DefaultCoercion())
	if err != nil {
		t.Fatalf("BuildRow: %v", err)
	}
	if row[1] != "SMD" {
		t.Fatalf("row[1] = %#v; want SMD preserved", row[1])
	}
}

func TestBuildRowNullInRequiredField(t *testing.T) {
	tg := mustTarget(t, []schema.FieldSpec{{Name: "feature_name"}})
	m := &Mapping{TargetToSource: []int{0}}

	_, err := BuildRow(m, tg, []string{"N/A"}, DefaultCoercion())
	var cerr *CellError
	if !errors.As(err, &cerr) {
		t.Fatalf("err = %v; want CellError", err)
	}
	if cerr.Field != "feature_name" {
		t.Fatalf("Field = %q; want feature_name", cerr.Field)
	}
}

func TestBuildRowBadCells(t *testing.T) {
	tg := mustTarget(t, []schema.FieldSpec{
		{Name: "Year", Type: schema.TypeYear, Nullable: true},
		{Name: "Citations", Type: schema.TypeInteger, Nullable: true},
		{Name: "Accuracy", Type: schema.TypeNumeric, Nullable: true},
	})
	m := &Mapping{TargetToSource: []int{0, 1, 2}}

	cases := [][]string{
		{"15", "", ""},      // year out of range
		{"", "12.5", ""},    // fractional integer
		{"", "", "n/a pct"}, // unparseable numeric
	}
	for _, raw := range cases {
		var cerr *CellError
		if _, err := BuildRow(m, tg, raw, DefaultCoercion()); !errors.As(err, &cerr) {
			t.Fatalf("BuildRow(%v) err = %v; want CellError", raw, err)
		}
	}
}

func TestBuildRowClampsText(t *testing.T) {
	tg := mustTarget(t, []schema.FieldSpec{{Name: "Notes", Nullable: true}})
	m := &Mapping{TargetToSource: []int{0}}

	long := strings.Repeat("x", 2500)
	row, err := BuildRow(m, tg, []string{long}, DefaultCoercion())
	if err != nil {
		t.Fatalf("BuildRow: %v", err)
	}
	if got := len(row[0].(string)); got != 2000 {
		t.Fatalf("clamped length = %d; want 2000", got)
	}
}

func TestBuildRowShortSourceRow(t *testing.T) {
	tg := mustTarget(t, []schema.FieldSpec{
		{Name: "feature_name"},
		{Name: "Notes", Nullable: true},
	})
	m := &Mapping{TargetToSource: []int{0, 1}}

	row, err := BuildRow(m, tg, []string{"SMD"}, DefaultCoercion())
	if err != nil {
		t.Fatalf("BuildRow: %v", err)
	}
	if row[1] != nil {
		t.Fatalf("missing trailing cell = %#v; want nil", row[1])
	}
}

func TestParseInteger(t *testing.T) {
	cases := []struct {
		in      string
		want    int64
		wantErr bool
	}{
		{"2015", 2015, false},
		{"2015.0", 2015, false},
		{"-3", -3, false},
		{"2015.5", 0, true},
		{"abc", 0, true},
	}
	for _, tc := range cases {
		got, err := parseInteger(tc.in)
		if (err != nil) != tc.wantErr {
			t.Fatalf("parseInteger(%q) err = %v; wantErr=%v", tc.in, err, tc.wantErr)
		}
		if err == nil && got != tc.want {
			t.Fatalf("parseInteger(%q) = %d; want %d", tc.in, got, tc.want)
		}
	}
}
