package memory

import (
	"context"
	"sort"
	"sync"

	domainbooking "stayhub/internal/domain/booking"
	domainlistings "stayhub/internal/domain/listings"
	domainuser "stayhub/internal/domain/user"
)

// BookingRepository stores bookings in memory. The overlap check and the
// insert run under one lock, so concurrent conflicting requests serialize
// and exactly one wins.
type BookingRepository struct {
	mu        sync.RWMutex
	items     map[domainbooking.BookingID]*domainbooking.Booking
	byListing map[domainlistings.ListingID][]domainbooking.BookingID
}

func NewBookingRepository() *BookingRepository {
	return &BookingRepository{
		items:     make(map[domainbooking.BookingID]*domainbooking.Booking),
		byListing: make(map[domainlistings.ListingID][]domainbooking.BookingID),
	}
}

func (r *BookingRepository) CreateIfNoOverlap(ctx context.Context, b *domainbooking.Booking) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, id := range r.byListing[b.ListingID] {
		existing := r.items[id]
		if existing.Range.Overlaps(b.Range) {
			return domainbooking.ErrDatesConflict
		}
	}
	copyBooking := *b
	r.items[b.ID] = &copyBooking
	r.byListing[b.ListingID] = append(r.byListing[b.ListingID], b.ID)
	return nil
}

func (r *BookingRepository) ByID(ctx context.Context, id domainbooking.BookingID) (*domainbooking.Booking, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	booking, ok := r.items[id]
	if !ok {
		return nil, domainbooking.ErrNotFound
	}
	copyBooking := *booking
	return &copyBooking, nil
}

func (r *BookingRepository) ListByUser(ctx context.Context, userID domainuser.ID) ([]*domainbooking.Booking, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	matches := make([]*domainbooking.Booking, 0)
	for _, booking := range r.items {
		if booking.UserID == userID {
			copyBooking := *booking
			matches = append(matches, &copyBooking)
		}
	}
	sortBookingsNewestFirst(matches)
	return matches, nil
}

func (r *BookingRepository) ListByListing(ctx context.Context, listingID domainlistings.ListingID) ([]*domainbooking.Booking, error) {
	return r.ListByListings(ctx, []domainlistings.ListingID{listingID})
}

func (r *BookingRepository) ListByListings(ctx context.Context, listingIDs []domainlistings.ListingID) ([]*domainbooking.Booking, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	matches := make([]*domainbooking.Booking, 0)
	for _, listingID := range listingIDs {
		for _, id := range r.byListing[listingID] {
			copyBooking := *r.items[id]
			matches = append(matches, &copyBooking)
		}
	}
	sortBookingsNewestFirst(matches)
	return matches, nil
}

func sortBookingsNewestFirst(items []*domainbooking.Booking) {
	sort.SliceStable(items, func(i, j int) bool {
		if items[i].CreatedAt.Equal(items[j].CreatedAt) {
			return items[i].ID < items[j].ID
		}
		return items[i].CreatedAt.After(items[j].CreatedAt)
	})
}

var _ domainbooking.Repository = (*BookingRepository)(nil)
