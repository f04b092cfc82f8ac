package memory

import (
	"context"
	"sync"

	domainlistings "stayhub/internal/domain/listings"
	domainuser "stayhub/internal/domain/user"
	domainwishlist "stayhub/internal/domain/wishlist"
)

// WishlistRepository keeps per-user wishlists in memory.
type WishlistRepository struct {
	mu    sync.RWMutex
	items map[domainuser.ID]*domainwishlist.Wishlist
}

func NewWishlistRepository() *WishlistRepository {
	return &WishlistRepository{items: make(map[domainuser.ID]*domainwishlist.Wishlist)}
}

func (r *WishlistRepository) ByUser(ctx context.Context, userID domainuser.ID) (*domainwishlist.Wishlist, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	w, ok := r.items[userID]
	if !ok {
		return nil, nil
	}
	return cloneWishlist(w), nil
}

func (r *WishlistRepository) Save(ctx context.Context, w *domainwishlist.Wishlist) error {
	if w == nil {
		return domainwishlist.ErrUserRequired
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[w.UserID] = cloneWishlist(w)
	return nil
}

func cloneWishlist(w *domainwishlist.Wishlist) *domainwishlist.Wishlist {
	copyWishlist := *w
	copyWishlist.Listings = append([]domainlistings.ListingID(nil), w.Listings...)
	return &copyWishlist
}

var _ domainwishlist.Repository = (*WishlistRepository)(nil)
