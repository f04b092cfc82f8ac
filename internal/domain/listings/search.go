package listings

import (
	"strings"
	"time"
)

const (
	defaultPageSize = 10
	maxPageSize     = 60
)

// SearchParams describe catalog filters and paging options. All filters are
// optional and conjunctive.
type SearchParams struct {
	Location string
	MinPrice *float64
	MaxPrice *float64
	Search   string
	Start    time.Time
	End      time.Time
	Page     int
	PageSize int
}

// Normalized returns a sanitized copy of params.
func (p SearchParams) Normalized() SearchParams {
	normalized := p
	normalized.Location = strings.TrimSpace(strings.ToLower(normalized.Location))
	normalized.Search = strings.TrimSpace(strings.ToLower(normalized.Search))
	if normalized.MinPrice != nil && *normalized.MinPrice < 0 {
		normalized.MinPrice = nil
	}
	if normalized.MaxPrice != nil && *normalized.MaxPrice < 0 {
		normalized.MaxPrice = nil
	}
	normalized.Start = normalized.Start.UTC()
	normalized.End = normalized.End.UTC()
	if !normalized.Start.IsZero() && !normalized.End.IsZero() && !normalized.End.After(normalized.Start) {
		normalized.Start = time.Time{}
		normalized.End = time.Time{}
	}
	if normalized.Page < 1 {
		normalized.Page = 1
	}
	if normalized.PageSize <= 0 {
		normalized.PageSize = defaultPageSize
	}
	if normalized.PageSize > maxPageSize {
		normalized.PageSize = maxPageSize
	}
	return normalized
}

// HasDateFilter reports whether both bounds of the availability filter are set.
func (p SearchParams) HasDateFilter() bool {
	return !p.Start.IsZero() && !p.End.IsZero()
}

// Offset converts page/pageSize into a skip count.
func (p SearchParams) Offset() int {
	return (p.Page - 1) * p.PageSize
}

// SearchResult wraps one page of hits with the total match count.
type SearchResult struct {
	Items []*Listing
	Total int
}
