package booking

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	domainbooking "stayhub/internal/domain/booking"
	domainlistings "stayhub/internal/domain/listings"
	"stayhub/internal/domain/shared/daterange"
	domainuser "stayhub/internal/domain/user"
)

var ErrNotConfigured = errors.New("booking: service not configured")

type EventPublisher interface {
	BookingCreated(ctx context.Context, bookingID, userID, listingID string, checkIn, checkOut time.Time, totalPrice float64)
}

type Service struct {
	Bookings domainbooking.Repository
	Listings domainlistings.Repository
	Users    domainuser.Repository
	Events   EventPublisher
	Logger   *slog.Logger
}

type CreateParams struct {
	UserID    domainuser.ID
	ListingID domainlistings.ListingID
	CheckIn   time.Time
	CheckOut  time.Time
}

// WithListing pairs a booking with its listing for guest-facing views. The
// listing is nil when it has since been deleted.
type WithListing struct {
	Booking *domainbooking.Booking
	Listing *domainlistings.Listing
}

// HostView additionally resolves the guest who made the booking.
type HostView struct {
	Booking *domainbooking.Booking
	Listing *domainlistings.Listing
	Guest   *domainuser.User
}

func (s *Service) Create(ctx context.Context, params CreateParams) (*domainbooking.Booking, error) {
	if err := s.ensureDependencies(); err != nil {
		return nil, err
	}
	dr, err := daterange.New(params.CheckIn, params.CheckOut)
	if err != nil {
		return nil, err
	}
	listing, err := s.Listings.ByID(ctx, params.ListingID)
	if err != nil {
		return nil, err
	}
	nights := dr.Nights()
	booking, err := domainbooking.NewBooking(domainbooking.CreateParams{
		ID:         domainbooking.BookingID(uuid.NewString()),
		UserID:     params.UserID,
		ListingID:  listing.ID,
		Range:      dr,
		TotalPrice: listing.Price * float64(nights),
		Now:        time.Now(),
	})
	if err != nil {
		return nil, err
	}
	// Advisory overlap probe so a request that is both overlapping and
	// outside availability reports the conflict, not the window miss.
	existing, err := s.Bookings.ListByListing(ctx, listing.ID)
	if err != nil {
		return nil, err
	}
	for _, other := range existing {
		if dr.Overlaps(other.Range) {
			return nil, domainbooking.ErrDatesConflict
		}
	}
	if !listing.CanAccommodate(dr) {
		return nil, domainbooking.ErrNotAvailable
	}
	// CreateIfNoOverlap is the authoritative overlap guard: the check and
	// the insert run under the same per-listing lock, so two racing
	// requests for the same dates cannot both land.
	if err := s.Bookings.CreateIfNoOverlap(ctx, booking); err != nil {
		return nil, err
	}
	if s.Events != nil {
		s.Events.BookingCreated(ctx, string(booking.ID), string(booking.UserID), string(booking.ListingID),
			booking.Range.CheckIn, booking.Range.CheckOut, booking.TotalPrice)
	}
	if s.Logger != nil {
		s.Logger.Info("booking created",
			"booking_id", booking.ID,
			"listing_id", booking.ListingID,
			"user_id", booking.UserID,
			"nights", nights,
			"total_price", booking.TotalPrice)
	}
	return booking, nil
}

func (s *Service) ByID(ctx context.Context, id domainbooking.BookingID) (*domainbooking.Booking, error) {
	if err := s.ensureDependencies(); err != nil {
		return nil, err
	}
	return s.Bookings.ByID(ctx, id)
}

// ForUser returns the guest's bookings, newest first, each joined with its
// listing when the listing still exists.
func (s *Service) ForUser(ctx context.Context, userID domainuser.ID) ([]WithListing, error) {
	if err := s.ensureDependencies(); err != nil {
		return nil, err
	}
	bookings, err := s.Bookings.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	out := make([]WithListing, 0, len(bookings))
	for _, b := range bookings {
		item := WithListing{Booking: b}
		listing, err := s.Listings.ByID(ctx, b.ListingID)
		if err == nil {
			item.Listing = listing
		} else if !errors.Is(err, domainlistings.ErrNotFound) {
			return nil, err
		}
		out = append(out, item)
	}
	return out, nil
}

// ForHost returns every booking made against any of the host's listings.
func (s *Service) ForHost(ctx context.Context, hostID domainuser.ID) ([]HostView, error) {
	if err := s.ensureDependencies(); err != nil {
		return nil, err
	}
	hostListings, err := s.Listings.ByHost(ctx, hostID)
	if err != nil {
		return nil, err
	}
	byID := make(map[domainlistings.ListingID]*domainlistings.Listing, len(hostListings))
	ids := make([]domainlistings.ListingID, 0, len(hostListings))
	for _, l := range hostListings {
		byID[l.ID] = l
		ids = append(ids, l.ID)
	}
	if len(ids) == 0 {
		return []HostView{}, nil
	}
	bookings, err := s.Bookings.ListByListings(ctx, ids)
	if err != nil {
		return nil, err
	}
	guests := make(map[domainuser.ID]*domainuser.User)
	out := make([]HostView, 0, len(bookings))
	for _, b := range bookings {
		view := HostView{Booking: b, Listing: byID[b.ListingID]}
		guest, ok := guests[b.UserID]
		if !ok {
			guest, err = s.Users.ByID(ctx, b.UserID)
			if err != nil && !errors.Is(err, domainuser.ErrNotFound) {
				return nil, err
			}
			guests[b.UserID] = guest
		}
		view.Guest = guest
		out = append(out, view)
	}
	return out, nil
}

// ForListing returns the raw bookings of one listing, used to surface
// unavailable dates on the listing page.
func (s *Service) ForListing(ctx context.Context, listingID domainlistings.ListingID) ([]*domainbooking.Booking, error) {
	if err := s.ensureDependencies(); err != nil {
		return nil, err
	}
	if _, err := s.Listings.ByID(ctx, listingID); err != nil {
		return nil, err
	}
	return s.Bookings.ListByListing(ctx, listingID)
}

func (s *Service) ensureDependencies() error {
	if s.Bookings == nil || s.Listings == nil || s.Users == nil {
		return ErrNotConfigured
	}
	return nil
}
