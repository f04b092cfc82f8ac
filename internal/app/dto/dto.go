// Package dto holds the response shapes the HTTP layer serializes. Keeping
// them out of the domain packages lets the wire format evolve without
// touching entities.
package dto

import (
	"time"

	domainbooking "stayhub/internal/domain/booking"
	domainlistings "stayhub/internal/domain/listings"
	domainuser "stayhub/internal/domain/user"
)

type UserSummary struct {
	ID    string `json:"_id"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

func NewUserSummary(u *domainuser.User) UserSummary {
	return UserSummary{
		ID:    string(u.ID),
		Email: u.Email,
		Role:  string(u.Role),
	}
}

type AvailabilityWindow struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

type ListingResponse struct {
	ID           string               `json:"_id"`
	Host         string               `json:"host"`
	HostDetail   *UserSummary         `json:"hostDetail,omitempty"`
	Title        string               `json:"title"`
	Description  string               `json:"description"`
	Price        float64              `json:"price"`
	Location     string               `json:"location"`
	Images       []string             `json:"images"`
	Availability []AvailabilityWindow `json:"availability"`
	CreatedAt    time.Time            `json:"createdAt"`
	UpdatedAt    time.Time            `json:"updatedAt"`
}

func NewListingResponse(l *domainlistings.Listing) ListingResponse {
	windows := make([]AvailabilityWindow, 0, len(l.Availability))
	for _, w := range l.Availability {
		windows = append(windows, AvailabilityWindow{Start: w.Start, End: w.End})
	}
	images := l.Images
	if images == nil {
		images = []string{}
	}
	return ListingResponse{
		ID:           string(l.ID),
		Host:         string(l.Host),
		Title:        l.Title,
		Description:  l.Description,
		Price:        l.Price,
		Location:     l.Location,
		Images:       images,
		Availability: windows,
		CreatedAt:    l.CreatedAt,
		UpdatedAt:    l.UpdatedAt,
	}
}

// NewListingDetail attaches the host summary for single-listing reads.
func NewListingDetail(l *domainlistings.Listing, host *domainuser.User) ListingResponse {
	resp := NewListingResponse(l)
	if host != nil {
		summary := NewUserSummary(host)
		resp.HostDetail = &summary
	}
	return resp
}

func NewListingResponses(items []*domainlistings.Listing) []ListingResponse {
	out := make([]ListingResponse, 0, len(items))
	for _, l := range items {
		out = append(out, NewListingResponse(l))
	}
	return out
}

type Pagination struct {
	TotalCount  int  `json:"totalCount"`
	TotalPages  int  `json:"totalPages"`
	CurrentPage int  `json:"currentPage"`
	HasMore     bool `json:"hasMore"`
}

func NewPagination(total, page, pageSize int) Pagination {
	pages := 0
	if pageSize > 0 {
		pages = (total + pageSize - 1) / pageSize
	}
	return Pagination{
		TotalCount:  total,
		TotalPages:  pages,
		CurrentPage: page,
		HasMore:     page < pages,
	}
}

type ListingPage struct {
	Listings   []ListingResponse `json:"listings"`
	Pagination Pagination        `json:"pagination"`
}

type BookingResponse struct {
	ID         string           `json:"_id"`
	User       string           `json:"user"`
	UserDetail *UserSummary     `json:"userDetail,omitempty"`
	Listing    string           `json:"listing"`
	ListingRef *ListingResponse `json:"listingDetail,omitempty"`
	CheckIn    time.Time        `json:"checkIn"`
	CheckOut   time.Time        `json:"checkOut"`
	TotalPrice float64          `json:"totalPrice"`
	CreatedAt  time.Time        `json:"createdAt"`
}

func NewBookingResponse(b *domainbooking.Booking) BookingResponse {
	return BookingResponse{
		ID:         string(b.ID),
		User:       string(b.UserID),
		Listing:    string(b.ListingID),
		CheckIn:    b.Range.CheckIn,
		CheckOut:   b.Range.CheckOut,
		TotalPrice: b.TotalPrice,
		CreatedAt:  b.CreatedAt,
	}
}

// WithListing populates the joined listing; dangling references stay nil.
func (r BookingResponse) WithListing(l *domainlistings.Listing) BookingResponse {
	if l != nil {
		listing := NewListingResponse(l)
		r.ListingRef = &listing
	}
	return r
}

// WithUser populates the joined guest for host-facing views.
func (r BookingResponse) WithUser(u *domainuser.User) BookingResponse {
	if u != nil {
		summary := NewUserSummary(u)
		r.UserDetail = &summary
	}
	return r
}
