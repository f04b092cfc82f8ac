package booking

import (
	"context"
	"errors"
	"strings"
	"time"

	"stayhub/internal/domain/listings"
	"stayhub/internal/domain/shared/daterange"
	"stayhub/internal/domain/user"
)

var (
	ErrIDRequired    = errors.New("booking: id is required")
	ErrUserRequired  = errors.New("booking: user is required")
	ErrCheckInInPast = errors.New("booking: check-in date is in the past")
	ErrMaxStay       = errors.New("booking: max stay exceeded")
	ErrDatesConflict = errors.New("booking: listing already booked for selected dates")
	ErrNotAvailable  = errors.New("booking: requested dates are outside availability")
	ErrNotFound      = errors.New("booking: not found")
)

// MaxStayNights caps the length of a single stay.
const MaxStayNights = 30

type BookingID string

// Booking is immutable once created; there is no update or cancel path.
type Booking struct {
	ID         BookingID
	UserID     user.ID
	ListingID  listings.ListingID
	Range      daterange.DateRange
	TotalPrice float64
	CreatedAt  time.Time
}

type Repository interface {
	// CreateIfNoOverlap persists the booking only if no existing booking for
	// the same listing overlaps its range. The overlap check and the insert
	// run under a per-listing critical section; a detected overlap returns
	// ErrDatesConflict.
	CreateIfNoOverlap(ctx context.Context, b *Booking) error
	ByID(ctx context.Context, id BookingID) (*Booking, error)
	ListByUser(ctx context.Context, userID user.ID) ([]*Booking, error)
	ListByListing(ctx context.Context, listingID listings.ListingID) ([]*Booking, error)
	ListByListings(ctx context.Context, listingIDs []listings.ListingID) ([]*Booking, error)
}

type CreateParams struct {
	ID         BookingID
	UserID     user.ID
	ListingID  listings.ListingID
	Range      daterange.DateRange
	TotalPrice float64
	Now        time.Time
}

func NewBooking(params CreateParams) (*Booking, error) {
	if strings.TrimSpace(string(params.ID)) == "" {
		return nil, ErrIDRequired
	}
	if strings.TrimSpace(string(params.UserID)) == "" {
		return nil, ErrUserRequired
	}
	if err := params.Range.Validate(); err != nil {
		return nil, err
	}
	now := params.Now
	if now.IsZero() {
		now = time.Now()
	}
	now = now.UTC()
	if err := ValidateCheckIn(params.Range, now); err != nil {
		return nil, err
	}
	if params.Range.Nights() > MaxStayNights {
		return nil, ErrMaxStay
	}
	return &Booking{
		ID:         params.ID,
		UserID:     params.UserID,
		ListingID:  params.ListingID,
		Range:      params.Range,
		TotalPrice: params.TotalPrice,
		CreatedAt:  now,
	}, nil
}

// ValidateCheckIn rejects check-in dates before the current calendar day.
func ValidateCheckIn(dr daterange.DateRange, now time.Time) error {
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	checkInDate := time.Date(dr.CheckIn.Year(), dr.CheckIn.Month(), dr.CheckIn.Day(), 0, 0, 0, 0, time.UTC)
	if checkInDate.Before(today) {
		return ErrCheckInInPast
	}
	return nil
}
