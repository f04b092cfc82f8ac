package listings

import (
	"errors"
	"testing"
	"time"

	"stayhub/internal/domain/shared/daterange"
)

var (
	windowStart = time.Date(2026, time.September, 1, 0, 0, 0, 0, time.UTC)
	windowEnd   = time.Date(2026, time.September, 30, 0, 0, 0, 0, time.UTC)
)

func validCreateParams() CreateParams {
	return CreateParams{
		ID:          "l-1",
		Host:        "h-1",
		Title:       "Seaside cottage",
		Description: "Two bedrooms, a deck, and a short walk to the beach.",
		Price:       120,
		Location:    "Lisbon",
		Availability: []AvailabilityWindow{
			{Start: windowStart, End: windowEnd},
		},
	}
}

func TestNewListingValidation(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*CreateParams)
		want   error
	}{
		{"short title", func(p *CreateParams) { p.Title = "ab" }, ErrTitleTooShort},
		{"short description", func(p *CreateParams) { p.Description = "tiny" }, ErrDescriptionTooShort},
		{"negative price", func(p *CreateParams) { p.Price = -1 }, ErrNegativePrice},
		{"blank location", func(p *CreateParams) { p.Location = "  " }, ErrLocationRequired},
		{"no windows", func(p *CreateParams) { p.Availability = nil }, ErrWindowRequired},
		{"inverted window", func(p *CreateParams) {
			p.Availability = []AvailabilityWindow{{Start: windowEnd, End: windowStart}}
		}, ErrWindowInvalid},
		{"missing host", func(p *CreateParams) { p.Host = "" }, ErrHostRequired},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			params := validCreateParams()
			tc.mutate(&params)
			if _, err := NewListing(params); !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}
}

func TestApplyUpdatesOnlyProvidedFields(t *testing.T) {
	listing, err := NewListing(validCreateParams())
	if err != nil {
		t.Fatalf("NewListing: %v", err)
	}
	newPrice := 250.0
	if err := listing.Apply(UpdateParams{Price: &newPrice}); err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if listing.Price != 250 {
		t.Errorf("Price = %v, want 250", listing.Price)
	}
	if listing.Title != "Seaside cottage" {
		t.Errorf("Title changed unexpectedly: %q", listing.Title)
	}

	badTitle := "ab"
	if err := listing.Apply(UpdateParams{Title: &badTitle}); !errors.Is(err, ErrTitleTooShort) {
		t.Fatalf("expected ErrTitleTooShort, got %v", err)
	}
}

func TestOwnedBy(t *testing.T) {
	listing, _ := NewListing(validCreateParams())
	if !listing.OwnedBy("h-1") {
		t.Fatal("host must own its listing")
	}
	if listing.OwnedBy("someone-else") {
		t.Fatal("non-host must not own the listing")
	}
}

func TestCanAccommodate(t *testing.T) {
	listing, _ := NewListing(validCreateParams())

	inside, _ := daterange.New(windowStart.AddDate(0, 0, 2), windowStart.AddDate(0, 0, 5))
	if !listing.CanAccommodate(inside) {
		t.Fatal("range inside the window must be accommodated")
	}

	spillsOver, _ := daterange.New(windowEnd.AddDate(0, 0, -1), windowEnd.AddDate(0, 0, 2))
	if listing.CanAccommodate(spillsOver) {
		t.Fatal("range extending past the window must be rejected")
	}

	exact, _ := daterange.New(windowStart, windowEnd)
	if !listing.CanAccommodate(exact) {
		t.Fatal("range equal to the window must be accommodated")
	}
}
