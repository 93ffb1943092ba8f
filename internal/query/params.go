package query

import "strings"

const (
	// DefaultPageSize applies when the caller does not ask for a size.
	DefaultPageSize = 10
	// MaxPageSize is the hard cap; larger requests clamp silently.
	MaxPageSize = 50
)

// Parameters is the list-endpoint contract: pagination, an optional sort
// expression ("field [asc|desc], ..."), a free-text search term and a
// comma-separated include-path list. Malformed sort or include input never
// fails a request; it degrades to defaults.
type Parameters struct {
	PageNumber  int
	PageSize    int
	SortBy      string
	SearchQuery string
	Include     string
}

// Normalized returns a copy with defaults applied and the page size clamped.
func (p Parameters) Normalized() Parameters {
	if p.PageNumber < 1 {
		p.PageNumber = 1
	}
	if p.PageSize < 1 {
		p.PageSize = DefaultPageSize
	}
	if p.PageSize > MaxPageSize {
		p.PageSize = MaxPageSize
	}
	return p
}

// IncludePaths splits the include list into trimmed, non-empty paths.
func (p Parameters) IncludePaths() []string {
	if strings.TrimSpace(p.Include) == "" {
		return nil
	}
	parts := strings.Split(p.Include, ",")
	paths := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			paths = append(paths, trimmed)
		}
	}
	return paths
}
