package wishlist

import (
	"context"
	"errors"
	"strings"
	"time"

	"stayhub/internal/domain/listings"
	"stayhub/internal/domain/user"
)

var ErrUserRequired = errors.New("wishlist: user is required")

// Wishlist is a per-user saved set of listings. At most one exists per user.
type Wishlist struct {
	UserID    user.ID
	Listings  []listings.ListingID
	CreatedAt time.Time
	UpdatedAt time.Time
}

type Repository interface {
	// ByUser returns the user's wishlist or nil when none exists yet.
	ByUser(ctx context.Context, userID user.ID) (*Wishlist, error)
	Save(ctx context.Context, w *Wishlist) error
}

func New(userID user.ID, now time.Time) (*Wishlist, error) {
	if strings.TrimSpace(string(userID)) == "" {
		return nil, ErrUserRequired
	}
	if now.IsZero() {
		now = time.Now()
	}
	now = now.UTC()
	return &Wishlist{UserID: userID, CreatedAt: now, UpdatedAt: now}, nil
}

// Add inserts the listing into the set. Returns false when it was already
// present, keeping the operation idempotent.
func (w *Wishlist) Add(id listings.ListingID, now time.Time) bool {
	for _, existing := range w.Listings {
		if existing == id {
			return false
		}
	}
	w.Listings = append(w.Listings, id)
	w.touch(now)
	return true
}

// Remove drops the listing from the set. Returns false when it was absent.
func (w *Wishlist) Remove(id listings.ListingID, now time.Time) bool {
	for i, existing := range w.Listings {
		if existing == id {
			w.Listings = append(w.Listings[:i], w.Listings[i+1:]...)
			w.touch(now)
			return true
		}
	}
	return false
}

func (w *Wishlist) Contains(id listings.ListingID) bool {
	for _, existing := range w.Listings {
		if existing == id {
			return true
		}
	}
	return false
}

func (w *Wishlist) touch(now time.Time) {
	if now.IsZero() {
		now = time.Now()
	}
	w.UpdatedAt = now.UTC()
}
