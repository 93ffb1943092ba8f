package query

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"metron/internal/schema"
)

// The composer operates on in-memory sequences: every function returns a new
// slice and leaves its input untouched, so compositions are referentially
// transparent. The fixed order for list endpoints is
// filter -> search -> include -> sort -> paginate.

type SortClause struct {
	field      *schema.Field
	descending bool
}

// ParseSort parses "field [asc|desc]{, field [asc|desc]}" against the
// descriptor's field set. Any unknown field or malformed clause fails the
// whole expression; callers fall back to the default chain.
func ParseSort(d *schema.Descriptor, expr string) ([]SortClause, error) {
	var clauses []SortClause
	for _, raw := range strings.Split(expr, ",") {
		parts := strings.Fields(strings.TrimSpace(raw))
		if len(parts) == 0 || len(parts) > 2 {
			return nil, fmt.Errorf("malformed sort clause %q", raw)
		}
		field, ok := d.Field(parts[0])
		if !ok {
			return nil, fmt.Errorf("unknown sort field %q for %s", parts[0], d.Entity)
		}
		clause := SortClause{field: field}
		if len(parts) == 2 {
			switch strings.ToLower(parts[1]) {
			case "asc":
			case "desc", "descending":
				clause.descending = true
			default:
				return nil, fmt.Errorf("unknown sort direction %q", parts[1])
			}
		}
		clauses = append(clauses, clause)
	}
	return clauses, nil
}

// defaultSort is the deterministic fallback chain: modifiedAt descending,
// else createdAt descending, else id ascending.
func defaultSort(d *schema.Descriptor) []SortClause {
	if f, ok := d.Field("modifiedAt"); ok {
		return []SortClause{{field: f, descending: true}}
	}
	if f, ok := d.Field("createdAt"); ok {
		return []SortClause{{field: f, descending: true}}
	}
	if f, ok := d.Field("id"); ok {
		return []SortClause{{field: f}}
	}
	return nil
}

// ApplySort orders items by the given expression, or by the default chain
// when the expression is empty or does not parse. A bad expression is a
// non-fatal condition: it is logged and degraded, never surfaced.
func ApplySort[T any](items []T, expr string, d *schema.Descriptor) []T {
	clauses := defaultSort(d)
	if strings.TrimSpace(expr) != "" {
		parsed, err := ParseSort(d, expr)
		if err != nil {
			slog.Warn("invalid sort expression, using default order",
				"entity", d.Entity, "sortBy", expr, "error", err)
		} else {
			clauses = parsed
		}
	}
	if len(clauses) == 0 {
		return items
	}

	out := make([]T, len(items))
	copy(out, items)
	sort.SliceStable(out, func(i, j int) bool {
		for _, c := range clauses {
			cmp := compareValues(c.field.Get(out[i]), c.field.Get(out[j]))
			if cmp == 0 {
				continue
			}
			if c.descending {
				return cmp > 0
			}
			return cmp < 0
		}
		return false
	})
	return out
}

func compareValues(a, b any) int {
	if a == nil || b == nil {
		switch {
		case a == nil && b == nil:
			return 0
		case a == nil:
			return -1
		default:
			return 1
		}
	}
	switch av := a.(type) {
	case int64:
		return compareOrdered(av, b.(int64))
	case int:
		return compareOrdered(av, b.(int))
	case float64:
		return compareOrdered(av, b.(float64))
	case string:
		return strings.Compare(strings.ToLower(av), strings.ToLower(b.(string)))
	case bool:
		bv := b.(bool)
		switch {
		case av == bv:
			return 0
		case !av:
			return -1
		default:
			return 1
		}
	case time.Time:
		return av.Compare(b.(time.Time))
	default:
		return 0
	}
}

func compareOrdered[T int | int64 | float64](a, b T) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

// ApplySearch keeps items whose allowed textual fields contain the term,
// case-insensitively, combining fields with OR. Unknown or non-textual
// fields are skipped without error; an empty term or allow-list is a no-op.
func ApplySearch[T any](items []T, term string, allowed []string, d *schema.Descriptor) []T {
	term = strings.TrimSpace(term)
	if term == "" || len(allowed) == 0 {
		return items
	}

	var fields []*schema.Field
	for _, name := range allowed {
		f, ok := d.Field(name)
		if !ok || !f.Kind.Textual() {
			slog.Debug("skipping non-searchable field",
				"entity", d.Entity, "field", name)
			continue
		}
		fields = append(fields, f)
	}
	if len(fields) == 0 {
		return items
	}

	needle := strings.ToLower(term)
	out := make([]T, 0, len(items))
	for _, item := range items {
		for _, f := range fields {
			v := f.Get(item)
			if v == nil {
				continue
			}
			if strings.Contains(strings.ToLower(v.(string)), needle) {
				out = append(out, item)
				break
			}
		}
	}
	return out
}

// ValidIncludePaths validates each dotted path against the descriptor and,
// recursively, the target of each navigation. Paths that do not resolve are
// dropped with a diagnostic, never an error: include strings come from
// callers.
func ValidIncludePaths(d *schema.Descriptor, paths []string) []string {
	out := make([]string, 0, len(paths))
	for _, path := range paths {
		if d.ValidatePath(path) {
			out = append(out, path)
			continue
		}
		slog.Warn("dropping unresolvable include path",
			"entity", d.Entity, "path", path)
	}
	return out
}

// Paginate returns the pageNumber-th page of size pageSize.
func Paginate[T any](items []T, pageNumber, pageSize int) []T {
	start := (pageNumber - 1) * pageSize
	if start >= len(items) {
		return []T{}
	}
	end := start + pageSize
	if end > len(items) {
		end = len(items)
	}
	out := make([]T, end-start)
	copy(out, items[start:end])
	return out
}
