package booking

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	domainbooking "stayhub/internal/domain/booking"
	domainlistings "stayhub/internal/domain/listings"
	domainuser "stayhub/internal/domain/user"
	"stayhub/internal/infra/storage/memory"
)

type fixture struct {
	service  *Service
	listings *memory.ListingRepository
	bookings *memory.BookingRepository
	users    *memory.UserRepository
	listing  *domainlistings.Listing
	base     time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	listings := memory.NewListingRepository()
	bookings := memory.NewBookingRepository()
	users := memory.NewUserRepository()

	base := time.Now().UTC().AddDate(0, 1, 0).Truncate(24 * time.Hour)
	listing, err := domainlistings.NewListing(domainlistings.CreateParams{
		ID:          "l-1",
		Host:        "host-1",
		Title:       "City loft",
		Description: "Bright loft in the old town with fast wifi.",
		Price:       1000,
		Location:    "Porto",
		Availability: []domainlistings.AvailabilityWindow{
			{Start: base.AddDate(0, 0, -7), End: base.AddDate(0, 0, 60)},
		},
	})
	if err != nil {
		t.Fatalf("NewListing: %v", err)
	}
	if err := listings.Save(context.Background(), listing); err != nil {
		t.Fatalf("save listing: %v", err)
	}

	return &fixture{
		service:  &Service{Bookings: bookings, Listings: listings, Users: users},
		listings: listings,
		bookings: bookings,
		users:    users,
		listing:  listing,
		base:     base,
	}
}

func (f *fixture) createParams(startOffset, endOffset int) CreateParams {
	return CreateParams{
		UserID:    "guest-1",
		ListingID: f.listing.ID,
		CheckIn:   f.base.AddDate(0, 0, startOffset),
		CheckOut:  f.base.AddDate(0, 0, endOffset),
	}
}

func TestCreateComputesTotalPrice(t *testing.T) {
	f := newFixture(t)
	booking, err := f.service.Create(context.Background(), f.createParams(0, 3))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if booking.TotalPrice != 3000 {
		t.Errorf("TotalPrice = %v, want 3000 (1000 x 3 nights)", booking.TotalPrice)
	}
	stored, err := f.bookings.ByID(context.Background(), booking.ID)
	if err != nil {
		t.Fatalf("booking not persisted: %v", err)
	}
	if stored.TotalPrice != booking.TotalPrice {
		t.Errorf("stored price %v differs from returned %v", stored.TotalPrice, booking.TotalPrice)
	}
}

func TestCreateRejectsOverlap(t *testing.T) {
	f := newFixture(t)
	if _, err := f.service.Create(context.Background(), f.createParams(0, 3)); err != nil {
		t.Fatalf("first booking: %v", err)
	}
	overlapping := f.createParams(2, 5)
	overlapping.UserID = "guest-2"
	if _, err := f.service.Create(context.Background(), overlapping); !errors.Is(err, domainbooking.ErrDatesConflict) {
		t.Fatalf("expected ErrDatesConflict, got %v", err)
	}
}

func TestCreateReportsConflictBeforeAvailability(t *testing.T) {
	f := newFixture(t)
	if _, err := f.service.Create(context.Background(), f.createParams(57, 59)); err != nil {
		t.Fatalf("first booking: %v", err)
	}
	// overlaps the existing booking and also runs past the availability
	// window; the conflict wins
	request := f.createParams(58, 62)
	request.UserID = "guest-2"
	if _, err := f.service.Create(context.Background(), request); !errors.Is(err, domainbooking.ErrDatesConflict) {
		t.Fatalf("expected ErrDatesConflict, got %v", err)
	}
}

func TestCreateAllowsBackToBack(t *testing.T) {
	f := newFixture(t)
	if _, err := f.service.Create(context.Background(), f.createParams(0, 3)); err != nil {
		t.Fatalf("first booking: %v", err)
	}
	next := f.createParams(3, 6)
	next.UserID = "guest-2"
	if _, err := f.service.Create(context.Background(), next); err != nil {
		t.Fatalf("back-to-back booking should succeed, got %v", err)
	}
}

func TestCreateRejectsOutsideAvailability(t *testing.T) {
	f := newFixture(t)
	outside := f.createParams(58, 62)
	if _, err := f.service.Create(context.Background(), outside); !errors.Is(err, domainbooking.ErrNotAvailable) {
		t.Fatalf("expected ErrNotAvailable, got %v", err)
	}
}

func TestCreateRejectsUnknownListing(t *testing.T) {
	f := newFixture(t)
	params := f.createParams(0, 3)
	params.ListingID = "missing"
	if _, err := f.service.Create(context.Background(), params); !errors.Is(err, domainlistings.ErrNotFound) {
		t.Fatalf("expected listings.ErrNotFound, got %v", err)
	}
}

func TestCreateConcurrentConflictOneWinner(t *testing.T) {
	f := newFixture(t)

	const attempts = 16
	var wg sync.WaitGroup
	errs := make([]error, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			params := f.createParams(0, 3)
			params.UserID = domainuser.ID("guest-" + string(rune('a'+i)))
			_, errs[i] = f.service.Create(context.Background(), params)
		}(i)
	}
	wg.Wait()

	var wins, conflicts int
	for _, err := range errs {
		switch {
		case err == nil:
			wins++
		case errors.Is(err, domainbooking.ErrDatesConflict):
			conflicts++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if wins != 1 {
		t.Fatalf("exactly one concurrent request must win, got %d", wins)
	}
	if conflicts != attempts-1 {
		t.Fatalf("expected %d conflicts, got %d", attempts-1, conflicts)
	}
}

func TestForUserJoinsListings(t *testing.T) {
	f := newFixture(t)
	created, err := f.service.Create(context.Background(), f.createParams(0, 3))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	items, err := f.service.ForUser(context.Background(), "guest-1")
	if err != nil {
		t.Fatalf("ForUser: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("expected 1 booking, got %d", len(items))
	}
	if items[0].Booking.ID != created.ID {
		t.Errorf("unexpected booking %s", items[0].Booking.ID)
	}
	if items[0].Listing == nil || items[0].Listing.ID != f.listing.ID {
		t.Error("listing join missing")
	}
}

func TestForHostResolvesGuests(t *testing.T) {
	f := newFixture(t)
	guest, err := domainuser.NewUser(domainuser.CreateParams{
		ID:           "guest-1",
		Email:        "guest@example.com",
		PasswordHash: "x",
	})
	if err != nil {
		t.Fatalf("NewUser: %v", err)
	}
	if err := f.users.Save(context.Background(), guest); err != nil {
		t.Fatalf("save user: %v", err)
	}
	if _, err := f.service.Create(context.Background(), f.createParams(0, 3)); err != nil {
		t.Fatalf("Create: %v", err)
	}

	items, err := f.service.ForHost(context.Background(), "host-1")
	if err != nil {
		t.Fatalf("ForHost: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("expected 1 booking, got %d", len(items))
	}
	if items[0].Guest == nil || items[0].Guest.Email != "guest@example.com" {
		t.Error("guest join missing")
	}
	if items[0].Listing == nil {
		t.Error("listing join missing")
	}

	other, err := f.service.ForHost(context.Background(), "host-2")
	if err != nil {
		t.Fatalf("ForHost other: %v", err)
	}
	if len(other) != 0 {
		t.Fatalf("host without listings must see no bookings, got %d", len(other))
	}
}
