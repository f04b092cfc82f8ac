package listings

import (
	"context"
	"errors"
	"strings"
	"time"

	"stayhub/internal/domain/shared/daterange"
	"stayhub/internal/domain/user"
)

var (
	ErrIDRequired          = errors.New("listings: id is required")
	ErrHostRequired        = errors.New("listings: host is required")
	ErrTitleTooShort       = errors.New("listings: title must be at least 3 characters")
	ErrDescriptionTooShort = errors.New("listings: description must be at least 10 characters")
	ErrNegativePrice       = errors.New("listings: price must be non-negative")
	ErrLocationRequired    = errors.New("listings: location is required")
	ErrWindowRequired      = errors.New("listings: at least one availability window is required")
	ErrWindowInvalid       = errors.New("listings: availability window end must be after start")
	ErrNotFound            = errors.New("listings: not found")
	ErrNotOwner            = errors.New("listings: requester does not own this listing")
)

const (
	minTitleLen       = 3
	minDescriptionLen = 10
)

type ListingID string

// AvailabilityWindow is a host-declared [Start, End] interval during which
// the listing may be booked.
type AvailabilityWindow struct {
	Start time.Time
	End   time.Time
}

func (w AvailabilityWindow) Validate() error {
	if w.Start.IsZero() || w.End.IsZero() || !w.End.After(w.Start) {
		return ErrWindowInvalid
	}
	return nil
}

type Listing struct {
	ID           ListingID
	Host         user.ID
	Title        string
	Description  string
	Price        float64
	Location     string
	Images       []string
	Availability []AvailabilityWindow
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type Repository interface {
	ByID(ctx context.Context, id ListingID) (*Listing, error)
	ByHost(ctx context.Context, host user.ID) ([]*Listing, error)
	Save(ctx context.Context, listing *Listing) error
	Delete(ctx context.Context, id ListingID) error
	Search(ctx context.Context, params SearchParams) (SearchResult, error)
}

type CreateParams struct {
	ID           ListingID
	Host         user.ID
	Title        string
	Description  string
	Price        float64
	Location     string
	Images       []string
	Availability []AvailabilityWindow
	Now          time.Time
}

func NewListing(params CreateParams) (*Listing, error) {
	if strings.TrimSpace(string(params.ID)) == "" {
		return nil, ErrIDRequired
	}
	if strings.TrimSpace(string(params.Host)) == "" {
		return nil, ErrHostRequired
	}
	title := strings.TrimSpace(params.Title)
	if len(title) < minTitleLen {
		return nil, ErrTitleTooShort
	}
	description := strings.TrimSpace(params.Description)
	if len(description) < minDescriptionLen {
		return nil, ErrDescriptionTooShort
	}
	if params.Price < 0 {
		return nil, ErrNegativePrice
	}
	location := strings.TrimSpace(params.Location)
	if location == "" {
		return nil, ErrLocationRequired
	}
	windows, err := normalizeWindows(params.Availability)
	if err != nil {
		return nil, err
	}
	if len(windows) == 0 {
		return nil, ErrWindowRequired
	}

	now := params.Now
	if now.IsZero() {
		now = time.Now()
	}
	now = now.UTC()

	return &Listing{
		ID:           params.ID,
		Host:         params.Host,
		Title:        title,
		Description:  description,
		Price:        params.Price,
		Location:     location,
		Images:       append([]string(nil), params.Images...),
		Availability: windows,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

// UpdateParams carries a partial update; nil fields are left untouched.
type UpdateParams struct {
	Title        *string
	Description  *string
	Price        *float64
	Location     *string
	Availability []AvailabilityWindow
	Now          time.Time
}

func (l *Listing) Apply(params UpdateParams) error {
	if params.Title != nil {
		title := strings.TrimSpace(*params.Title)
		if len(title) < minTitleLen {
			return ErrTitleTooShort
		}
		l.Title = title
	}
	if params.Description != nil {
		description := strings.TrimSpace(*params.Description)
		if len(description) < minDescriptionLen {
			return ErrDescriptionTooShort
		}
		l.Description = description
	}
	if params.Price != nil {
		if *params.Price < 0 {
			return ErrNegativePrice
		}
		l.Price = *params.Price
	}
	if params.Location != nil {
		location := strings.TrimSpace(*params.Location)
		if location == "" {
			return ErrLocationRequired
		}
		l.Location = location
	}
	if params.Availability != nil {
		windows, err := normalizeWindows(params.Availability)
		if err != nil {
			return err
		}
		if len(windows) == 0 {
			return ErrWindowRequired
		}
		l.Availability = windows
	}
	l.touch(params.Now)
	return nil
}

// ReplaceImages swaps the image set after a media upload cycle.
func (l *Listing) ReplaceImages(images []string, now time.Time) {
	l.Images = append([]string(nil), images...)
	l.touch(now)
}

// OwnedBy reports whether the requester owns this listing.
func (l *Listing) OwnedBy(requester user.ID) bool {
	return l.Host == requester
}

// CanAccommodate reports whether the requested range falls entirely inside
// at least one declared availability window.
func (l *Listing) CanAccommodate(dr daterange.DateRange) bool {
	for _, w := range l.Availability {
		if dr.Within(w.Start, w.End) {
			return true
		}
	}
	return false
}

func (l *Listing) touch(now time.Time) {
	if now.IsZero() {
		now = time.Now()
	}
	l.UpdatedAt = now.UTC()
}

func normalizeWindows(windows []AvailabilityWindow) ([]AvailabilityWindow, error) {
	if len(windows) == 0 {
		return nil, nil
	}
	out := make([]AvailabilityWindow, 0, len(windows))
	for _, w := range windows {
		w.Start = w.Start.UTC()
		w.End = w.End.UTC()
		if err := w.Validate(); err != nil {
			return nil, err
		}
		out = append(out, w)
	}
	return out, nil
}
