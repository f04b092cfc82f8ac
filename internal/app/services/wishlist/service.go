package wishlist

import (
	"context"
	"errors"
	"log/slog"
	"time"

	domainlistings "stayhub/internal/domain/listings"
	domainuser "stayhub/internal/domain/user"
	domainwishlist "stayhub/internal/domain/wishlist"
)

var ErrNotConfigured = errors.New("wishlist: service not configured")

type Service struct {
	Wishlists domainwishlist.Repository
	Listings  domainlistings.Repository
	Logger    *slog.Logger
}

// Add saves the listing onto the user's wishlist. Adding a listing that is
// already present is a no-op, not an error.
func (s *Service) Add(ctx context.Context, userID domainuser.ID, listingID domainlistings.ListingID) (*domainwishlist.Wishlist, error) {
	if err := s.ensureDependencies(); err != nil {
		return nil, err
	}
	if _, err := s.Listings.ByID(ctx, listingID); err != nil {
		return nil, err
	}
	wl, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	if wl.Add(listingID, time.Now()) {
		if err := s.Wishlists.Save(ctx, wl); err != nil {
			return nil, err
		}
		if s.Logger != nil {
			s.Logger.Info("wishlist item added", "user_id", userID, "listing_id", listingID)
		}
	}
	return wl, nil
}

// Remove takes the listing off the wishlist; removing an absent entry is a
// no-op. The listing itself may already be deleted, so no existence check.
func (s *Service) Remove(ctx context.Context, userID domainuser.ID, listingID domainlistings.ListingID) (*domainwishlist.Wishlist, error) {
	if err := s.ensureDependencies(); err != nil {
		return nil, err
	}
	wl, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	if wl.Remove(listingID, time.Now()) {
		if err := s.Wishlists.Save(ctx, wl); err != nil {
			return nil, err
		}
		if s.Logger != nil {
			s.Logger.Info("wishlist item removed", "user_id", userID, "listing_id", listingID)
		}
	}
	return wl, nil
}

// Get resolves the wishlist into full listing records. Entries whose
// listing has been deleted are silently skipped.
func (s *Service) Get(ctx context.Context, userID domainuser.ID) ([]*domainlistings.Listing, error) {
	if err := s.ensureDependencies(); err != nil {
		return nil, err
	}
	wl, err := s.Wishlists.ByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if wl == nil {
		return []*domainlistings.Listing{}, nil
	}
	out := make([]*domainlistings.Listing, 0, len(wl.Listings))
	for _, id := range wl.Listings {
		listing, err := s.Listings.ByID(ctx, id)
		if err != nil {
			if errors.Is(err, domainlistings.ErrNotFound) {
				continue
			}
			return nil, err
		}
		out = append(out, listing)
	}
	return out, nil
}

func (s *Service) load(ctx context.Context, userID domainuser.ID) (*domainwishlist.Wishlist, error) {
	wl, err := s.Wishlists.ByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if wl == nil {
		return domainwishlist.New(userID, time.Now())
	}
	return wl, nil
}

func (s *Service) ensureDependencies() error {
	if s.Wishlists == nil || s.Listings == nil {
		return ErrNotConfigured
	}
	return nil
}
