package service

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

func intPtr(v int) *int { return &v }

func TestPaginate(t *testing.T) {
	tests := []struct {
		name          string
		page          int
		size          int
		totalElements int
		want          Pagination
	}{
		{
			name: "empty result set",
			page: 1, size: 10, totalElements: 0,
			want: Pagination{TotalPages: 0, TotalElements: 0},
		},
		{
			name: "fewer elements than one page",
			page: 1, size: 10, totalElements: 3,
			want: Pagination{TotalPages: 1, TotalElements: 3},
		},
		{
			name: "exactly one full page",
			page: 1, size: 10, totalElements: 10,
			want: Pagination{TotalPages: 1, TotalElements: 10},
		},
		{
			name: "first of many pages",
			page: 1, size: 2, totalElements: 15,
			want: Pagination{TotalPages: 8, TotalElements: 15, NextPage: intPtr(2)},
		},
		{
			name: "middle page has both neighbours",
			page: 4, size: 2, totalElements: 15,
			want: Pagination{TotalPages: 8, TotalElements: 15, PreviousPage: intPtr(3), NextPage: intPtr(5)},
		},
		{
			name: "last page has only previous",
			page: 8, size: 2, totalElements: 15,
			want: Pagination{TotalPages: 8, TotalElements: 15, PreviousPage: intPtr(7)},
		},
		{
			name: "page past the end has no neighbours",
			page: 9, size: 2, totalElements: 15,
			want: Pagination{TotalPages: 8, TotalElements: 15},
		},
		{
			name: "even split has no partial page",
			page: 2, size: 5, totalElements: 20,
			want: Pagination{TotalPages: 4, TotalElements: 20, PreviousPage: intPtr(1), NextPage: intPtr(3)},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Paginate(tt.page, tt.size, tt.totalElements)

			if got.TotalPages != tt.want.TotalPages {
				t.Errorf("TotalPages = %d, want %d", got.TotalPages, tt.want.TotalPages)
			}
			if got.TotalElements != tt.want.TotalElements {
				t.Errorf("TotalElements = %d, want %d", got.TotalElements, tt.want.TotalElements)
			}
			if !intPtrEqual(got.PreviousPage, tt.want.PreviousPage) {
				t.Errorf("PreviousPage = %v, want %v", fmtPtr(got.PreviousPage), fmtPtr(tt.want.PreviousPage))
			}
			if !intPtrEqual(got.NextPage, tt.want.NextPage) {
				t.Errorf("NextPage = %v, want %v", fmtPtr(got.NextPage), fmtPtr(tt.want.NextPage))
			}
		})
	}
}

func intPtrEqual(a, b *int) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func fmtPtr(p *int) interface{} {
	if p == nil {
		return nil
	}
	return *p
}

func TestProperty_PaginationInvariants(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("page metadata is internally consistent", prop.ForAll(
		func(page int, size int, totalElements int) bool {
			p := Paginate(page, size, totalElements)

			if p.TotalElements != totalElements {
				t.Logf("FAIL: total elements not echoed back")
				return false
			}

			// Pages cover all elements with no empty trailing page
			if totalElements > 0 {
				if p.TotalPages*size < totalElements {
					t.Logf("FAIL: pages do not cover elements")
					return false
				}
				if (p.TotalPages-1)*size >= totalElements {
					t.Logf("FAIL: empty trailing page")
					return false
				}
			} else if p.TotalPages != 0 {
				t.Logf("FAIL: empty set produced pages")
				return false
			}

			// Neighbour pages stay within bounds
			if p.PreviousPage != nil && (*p.PreviousPage < 1 || *p.PreviousPage >= page) {
				t.Logf("FAIL: previous page out of range")
				return false
			}
			if p.NextPage != nil && (*p.NextPage != page+1 || *p.NextPage > p.TotalPages) {
				t.Logf("FAIL: next page out of range")
				return false
			}

			// A page past the end has no neighbours at all
			if page > p.TotalPages && (p.PreviousPage != nil || p.NextPage != nil) {
				t.Logf("FAIL: out-of-range page has neighbours")
				return false
			}

			return true
		},
		gen.IntRange(1, 50),
		gen.IntRange(1, 100),
		gen.IntRange(0, 1000),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}
