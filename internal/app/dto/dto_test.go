package dto

import "testing"

func TestNewPagination(t *testing.T) {
	cases := []struct {
		total, page, pageSize int
		wantPages             int
		wantHasMore           bool
	}{
		{13, 1, 6, 3, true},
		{13, 2, 6, 3, true},
		{13, 3, 6, 3, false},
		{13, 4, 6, 3, false},
		{0, 1, 10, 0, false},
		{10, 1, 10, 1, false},
	}
	for _, tc := range cases {
		got := NewPagination(tc.total, tc.page, tc.pageSize)
		if got.TotalPages != tc.wantPages {
			t.Errorf("NewPagination(%d,%d,%d).TotalPages = %d, want %d",
				tc.total, tc.page, tc.pageSize, got.TotalPages, tc.wantPages)
		}
		if got.HasMore != tc.wantHasMore {
			t.Errorf("NewPagination(%d,%d,%d).HasMore = %v, want %v",
				tc.total, tc.page, tc.pageSize, got.HasMore, tc.wantHasMore)
		}
		if got.TotalCount != tc.total || got.CurrentPage != tc.page {
			t.Errorf("NewPagination(%d,%d,%d) echoed %d/%d",
				tc.total, tc.page, tc.pageSize, got.TotalCount, got.CurrentPage)
		}
	}
}
