package wishlist

import (
	"context"
	"errors"
	"testing"
	"time"

	domainlistings "stayhub/internal/domain/listings"
	"stayhub/internal/infra/storage/memory"
)

func seedListing(t *testing.T, repo *memory.ListingRepository, id domainlistings.ListingID) *domainlistings.Listing {
	t.Helper()
	start := time.Now().UTC().AddDate(0, 0, 7)
	listing, err := domainlistings.NewListing(domainlistings.CreateParams{
		ID:          id,
		Host:        "host-1",
		Title:       "Attic studio",
		Description: "Small studio under the roof, great light.",
		Price:       60,
		Location:    "Vienna",
		Availability: []domainlistings.AvailabilityWindow{
			{Start: start, End: start.AddDate(0, 1, 0)},
		},
	})
	if err != nil {
		t.Fatalf("NewListing: %v", err)
	}
	if err := repo.Save(context.Background(), listing); err != nil {
		t.Fatalf("save listing: %v", err)
	}
	return listing
}

func newTestService(t *testing.T) (*Service, *memory.ListingRepository) {
	t.Helper()
	listings := memory.NewListingRepository()
	return &Service{
		Wishlists: memory.NewWishlistRepository(),
		Listings:  listings,
	}, listings
}

func TestAddIsIdempotent(t *testing.T) {
	svc, listings := newTestService(t)
	seedListing(t, listings, "l-1")

	first, err := svc.Add(context.Background(), "u-1", "l-1")
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	second, err := svc.Add(context.Background(), "u-1", "l-1")
	if err != nil {
		t.Fatalf("second Add: %v", err)
	}
	if len(first.Listings) != 1 || len(second.Listings) != 1 {
		t.Fatalf("duplicate add must keep one entry, got %d then %d", len(first.Listings), len(second.Listings))
	}
}

func TestAddUnknownListing(t *testing.T) {
	svc, _ := newTestService(t)
	if _, err := svc.Add(context.Background(), "u-1", "ghost"); !errors.Is(err, domainlistings.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestRemoveAbsentEntryIsNoOp(t *testing.T) {
	svc, listings := newTestService(t)
	seedListing(t, listings, "l-1")

	wl, err := svc.Remove(context.Background(), "u-1", "l-1")
	if err != nil {
		t.Fatalf("Remove on empty wishlist: %v", err)
	}
	if len(wl.Listings) != 0 {
		t.Fatalf("expected empty wishlist, got %d entries", len(wl.Listings))
	}
}

func TestGetSkipsDeletedListings(t *testing.T) {
	svc, listings := newTestService(t)
	seedListing(t, listings, "l-1")
	seedListing(t, listings, "l-2")

	for _, id := range []domainlistings.ListingID{"l-1", "l-2"} {
		if _, err := svc.Add(context.Background(), "u-1", id); err != nil {
			t.Fatalf("Add %s: %v", id, err)
		}
	}
	if err := listings.Delete(context.Background(), "l-1"); err != nil {
		t.Fatalf("delete listing: %v", err)
	}

	resolved, err := svc.Get(context.Background(), "u-1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if len(resolved) != 1 || resolved[0].ID != "l-2" {
		t.Fatalf("expected only the surviving listing, got %v", resolved)
	}
}

func TestGetForUnknownUserReturnsEmpty(t *testing.T) {
	svc, _ := newTestService(t)
	resolved, err := svc.Get(context.Background(), "nobody")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if resolved == nil || len(resolved) != 0 {
		t.Fatalf("expected empty non-nil slice, got %v", resolved)
	}
}
