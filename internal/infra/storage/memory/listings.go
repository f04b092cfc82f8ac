package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	domainlistings "stayhub/internal/domain/listings"
	"stayhub/internal/domain/shared/daterange"
	domainuser "stayhub/internal/domain/user"
)

// ListingRepository is an in-memory implementation backing tests and local runs.
type ListingRepository struct {
	mu    sync.RWMutex
	items map[domainlistings.ListingID]*domainlistings.Listing
}

func NewListingRepository() *ListingRepository {
	return &ListingRepository{
		items: make(map[domainlistings.ListingID]*domainlistings.Listing),
	}
}

func (r *ListingRepository) ByID(ctx context.Context, id domainlistings.ListingID) (*domainlistings.Listing, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	listing, ok := r.items[id]
	if !ok {
		return nil, domainlistings.ErrNotFound
	}
	return cloneListing(listing), nil
}

func (r *ListingRepository) ByHost(ctx context.Context, host domainuser.ID) ([]*domainlistings.Listing, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	matches := make([]*domainlistings.Listing, 0)
	for _, listing := range r.items {
		if listing.Host == host {
			matches = append(matches, cloneListing(listing))
		}
	}
	sortNewestFirst(matches)
	return matches, nil
}

func (r *ListingRepository) Save(ctx context.Context, listing *domainlistings.Listing) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[listing.ID] = cloneListing(listing)
	return nil
}

func (r *ListingRepository) Delete(ctx context.Context, id domainlistings.ListingID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[id]; !ok {
		return domainlistings.ErrNotFound
	}
	delete(r.items, id)
	return nil
}

// Search applies the conjunctive filters and pages the result newest-first.
func (r *ListingRepository) Search(ctx context.Context, params domainlistings.SearchParams) (domainlistings.SearchResult, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	opts := params.Normalized()
	matches := make([]*domainlistings.Listing, 0, len(r.items))
	for _, listing := range r.items {
		select {
		case <-ctx.Done():
			return domainlistings.SearchResult{}, ctx.Err()
		default:
		}

		if opts.Location != "" && !strings.Contains(strings.ToLower(listing.Location), opts.Location) {
			continue
		}
		if opts.MinPrice != nil && listing.Price < *opts.MinPrice {
			continue
		}
		if opts.MaxPrice != nil && listing.Price > *opts.MaxPrice {
			continue
		}
		if opts.Search != "" && !matchSearch(listing, opts.Search) {
			continue
		}
		if opts.HasDateFilter() {
			dr := daterange.DateRange{CheckIn: opts.Start, CheckOut: opts.End}
			if !listing.CanAccommodate(dr) {
				continue
			}
		}
		matches = append(matches, listing)
	}

	sortNewestFirst(matches)

	total := len(matches)
	start := opts.Offset()
	if start > total {
		start = total
	}
	end := start + opts.PageSize
	if end > total {
		end = total
	}

	page := make([]*domainlistings.Listing, 0, end-start)
	for _, listing := range matches[start:end] {
		page = append(page, cloneListing(listing))
	}
	return domainlistings.SearchResult{Items: page, Total: total}, nil
}

func matchSearch(listing *domainlistings.Listing, needle string) bool {
	return strings.Contains(strings.ToLower(listing.Title), needle) ||
		strings.Contains(strings.ToLower(listing.Description), needle)
}

func sortNewestFirst(items []*domainlistings.Listing) {
	sort.SliceStable(items, func(i, j int) bool {
		if items[i].CreatedAt.Equal(items[j].CreatedAt) {
			return items[i].ID < items[j].ID
		}
		return items[i].CreatedAt.After(items[j].CreatedAt)
	})
}

func cloneListing(l *domainlistings.Listing) *domainlistings.Listing {
	if l == nil {
		return nil
	}
	copyListing := *l
	copyListing.Images = append([]string(nil), l.Images...)
	copyListing.Availability = append([]domainlistings.AvailabilityWindow(nil), l.Availability...)
	return &copyListing
}

var _ domainlistings.Repository = (*ListingRepository)(nil)
