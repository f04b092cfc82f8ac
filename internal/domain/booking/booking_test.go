package booking

import (
	"errors"
	"testing"
	"time"

	"stayhub/internal/domain/shared/daterange"
)

var testNow = time.Date(2026, time.September, 1, 12, 0, 0, 0, time.UTC)

func mustRange(t *testing.T, checkIn, checkOut time.Time) daterange.DateRange {
	t.Helper()
	dr, err := daterange.New(checkIn, checkOut)
	if err != nil {
		t.Fatalf("daterange.New: %v", err)
	}
	return dr
}

func validParams(t *testing.T) CreateParams {
	return CreateParams{
		ID:         "b-1",
		UserID:     "u-1",
		ListingID:  "l-1",
		Range:      mustRange(t, testNow.AddDate(0, 0, 1), testNow.AddDate(0, 0, 4)),
		TotalPrice: 300,
		Now:        testNow,
	}
}

func TestNewBooking(t *testing.T) {
	b, err := NewBooking(validParams(t))
	if err != nil {
		t.Fatalf("NewBooking: %v", err)
	}
	if b.TotalPrice != 300 {
		t.Errorf("TotalPrice = %v, want 300", b.TotalPrice)
	}
	if !b.CreatedAt.Equal(testNow) {
		t.Errorf("CreatedAt = %v, want %v", b.CreatedAt, testNow)
	}
}

func TestNewBookingRejectsPastCheckIn(t *testing.T) {
	params := validParams(t)
	params.Range = mustRange(t, testNow.AddDate(0, 0, -1), testNow.AddDate(0, 0, 2))
	if _, err := NewBooking(params); !errors.Is(err, ErrCheckInInPast) {
		t.Fatalf("expected ErrCheckInInPast, got %v", err)
	}
}

func TestNewBookingAllowsSameDayCheckIn(t *testing.T) {
	params := validParams(t)
	// check-in earlier on the same calendar day than "now"
	params.Range = mustRange(t, testNow.Truncate(24*time.Hour), testNow.AddDate(0, 0, 2))
	if _, err := NewBooking(params); err != nil {
		t.Fatalf("same-day check-in should be allowed, got %v", err)
	}
}

func TestNewBookingEnforcesMaxStay(t *testing.T) {
	params := validParams(t)
	params.Range = mustRange(t, testNow.AddDate(0, 0, 1), testNow.AddDate(0, 0, 1+MaxStayNights+1))
	if _, err := NewBooking(params); !errors.Is(err, ErrMaxStay) {
		t.Fatalf("expected ErrMaxStay, got %v", err)
	}

	params.Range = mustRange(t, testNow.AddDate(0, 0, 1), testNow.AddDate(0, 0, 1+MaxStayNights))
	if _, err := NewBooking(params); err != nil {
		t.Fatalf("stay of exactly %d nights should be allowed, got %v", MaxStayNights, err)
	}
}

func TestNewBookingRequiresIDAndUser(t *testing.T) {
	params := validParams(t)
	params.ID = ""
	if _, err := NewBooking(params); !errors.Is(err, ErrIDRequired) {
		t.Fatalf("expected ErrIDRequired, got %v", err)
	}
	params = validParams(t)
	params.UserID = "  "
	if _, err := NewBooking(params); !errors.Is(err, ErrUserRequired) {
		t.Fatalf("expected ErrUserRequired, got %v", err)
	}
}
