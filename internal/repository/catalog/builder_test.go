package catalog

import (
	"reflect"
	"testing"
)

func TestBuildEqualityFilter_Empty(t *testing.T) {
	where, args := buildEqualityFilter(map[string]any{}, exactColumns)
	if where != "" {
		t.Errorf("expected empty clause, got %q", where)
	}
	if len(args) != 0 {
		t.Errorf("expected no args, got %v", args)
	}
}

func TestBuildEqualityFilter_SortedAndParameterized(t *testing.T) {
	where, args := buildEqualityFilter(map[string]any{
		"season_id":      2,
		"base_colour_id": 3,
	}, exactColumns)

	want := " AND base_colour_id = $1 AND season_id = $2"
	if where != want {
		t.Errorf("clause mismatch:\ngot:  %q\nwant: %q", where, want)
	}
	if !reflect.DeepEqual(args, []any{3, 2}) {
		t.Errorf("expected args [3 2], got %v", args)
	}
}

func TestBuildEqualityFilter_DropsUnknownColumns(t *testing.T) {
	// LLM output is untrusted; anything outside the allowlist must never
	// reach SQL text.
	where, args := buildEqualityFilter(map[string]any{
		"base_colour_id":         1,
		"id; DROP TABLE products": 1,
		"made_up_column":          "x",
	}, exactColumns)

	want := " AND base_colour_id = $1"
	if where != want {
		t.Errorf("clause mismatch:\ngot:  %q\nwant: %q", where, want)
	}
	if len(args) != 1 {
		t.Errorf("expected 1 arg, got %v", args)
	}
}

func TestBuildEqualityFilter_StyleSubset(t *testing.T) {
	// Hard attributes are not valid style filters.
	where, _ := buildEqualityFilter(map[string]any{
		"base_colour_id": 1,
		"season_id":      4,
	}, styleColumns)

	want := " AND season_id = $1"
	if where != want {
		t.Errorf("clause mismatch:\ngot:  %q\nwant: %q", where, want)
	}
}
