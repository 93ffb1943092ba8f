package query

import "testing"

func TestParametersNormalized(t *testing.T) {
	tests := []struct {
		name     string
		in       Parameters
		wantPage int
		wantSize int
	}{
		{"defaults applied", Parameters{}, 1, DefaultPageSize},
		{"zero page becomes first", Parameters{PageNumber: 0, PageSize: 5}, 1, 5},
		{"negative page becomes first", Parameters{PageNumber: -3, PageSize: 5}, 1, 5},
		{"oversized page size silently clamps", Parameters{PageNumber: 2, PageSize: 1000}, 2, MaxPageSize},
		{"in-range values pass through", Parameters{PageNumber: 4, PageSize: 25}, 4, 25},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.in.Normalized()
			if got.PageNumber != tt.wantPage || got.PageSize != tt.wantSize {
				t.Errorf("got page=%d size=%d, want page=%d size=%d",
					got.PageNumber, got.PageSize, tt.wantPage, tt.wantSize)
			}
		})
	}
}

func TestIncludePaths(t *testing.T) {
	p := Parameters{Include: " card, card.operations ,,location "}
	got := p.IncludePaths()
	want := []string{"card", "card.operations", "location"}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("got %v, want %v", got, want)
		}
	}
}

func TestPagedResult(t *testing.T) {
	tests := []struct {
		name      string
		items     int
		page      int
		size      int
		total     int
		wantPages int
		wantPrev  bool
		wantNext  bool
	}{
		{"middle page", 10, 2, 10, 35, 4, true, true},
		{"last short page", 5, 4, 10, 35, 4, true, false},
		{"single page", 3, 1, 10, 3, 1, false, false},
		{"empty set", 0, 1, 10, 0, 0, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			items := make([]int, tt.items)
			p := NewPagedResult(items, tt.page, tt.size, tt.total)
			if got := p.TotalPages(); got != tt.wantPages {
				t.Errorf("TotalPages() = %d, want %d", got, tt.wantPages)
			}
			if got := p.HasPreviousPage(); got != tt.wantPrev {
				t.Errorf("HasPreviousPage() = %v, want %v", got, tt.wantPrev)
			}
			if got := p.HasNextPage(); got != tt.wantNext {
				t.Errorf("HasNextPage() = %v, want %v", got, tt.wantNext)
			}
		})
	}
}
