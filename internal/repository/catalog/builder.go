package catalog

import (
	"fmt"
	"sort"
	"strings"
)

// Attribute allowlists. Filter keys arrive from LLM output and are untrusted:
// only allowlisted column names ever reach SQL text, values are always bound
// as parameters.
var (
	exactColumns = map[string]struct{}{
		"gender_id":          {},
		"master_category_id": {},
		"sub_category_id":    {},
		"article_type_id":    {},
		"base_colour_id":     {},
		"season_id":          {},
		"usage_id":           {},
		"brand_id":           {},
		"year":               {},
	}

	// Soft attributes used by style search.
	styleColumns = map[string]struct{}{
		"season_id": {},
		"usage_id":  {},
		"gender_id": {},
		"year":      {},
	}
)

// buildEqualityFilter renders a conjunctive equality WHERE clause over the
// allowlisted subset of attrs. Keys outside the allowlist are dropped.
// Keys are sorted so the generated SQL is deterministic.
func buildEqualityFilter(attrs map[string]any, allowed map[string]struct{}) (string, []any) {
	keys := make([]string, 0, len(attrs))
	for k := range attrs {
		if _, ok := allowed[k]; ok {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	var sb strings.Builder
	args := make([]any, 0, len(keys))
	for i, k := range keys {
		sb.WriteString(fmt.Sprintf(" AND %s = $%d", k, i+1))
		args = append(args, attrs[k])
	}
	return sb.String(), args
}
