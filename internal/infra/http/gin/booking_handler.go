package ginserver

import (
	"log/slog"
	"net/http"
	"time"

	gin "github.com/gin-gonic/gin"

	"stayhub/internal/app/dto"
	bookingsvc "stayhub/internal/app/services/booking"
	domainlistings "stayhub/internal/domain/listings"
	domainuser "stayhub/internal/domain/user"
)

type BookingHTTP interface {
	Create(c *gin.Context)
	UserBookings(c *gin.Context)
	HostBookings(c *gin.Context)
	ListingBookings(c *gin.Context)
}

type BookingHandler struct {
	Service *bookingsvc.Service
	Logger  *slog.Logger
}

type createBookingRequest struct {
	ListingID string    `json:"listingId"`
	CheckIn   time.Time `json:"checkIn"`
	CheckOut  time.Time `json:"checkOut"`
}

func (h BookingHandler) Create(c *gin.Context) {
	p, ok := requireAuth(c)
	if !ok {
		return
	}
	var req createBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "invalid request body")
		return
	}
	booking, err := h.Service.Create(c.Request.Context(), bookingsvc.CreateParams{
		UserID:    domainuser.ID(p.ID),
		ListingID: domainlistings.ListingID(req.ListingID),
		CheckIn:   req.CheckIn,
		CheckOut:  req.CheckOut,
	})
	if err != nil {
		respondServiceError(c, h.Logger, err)
		return
	}
	respond(c, http.StatusCreated, "Booking successful", dto.NewBookingResponse(booking))
}

func (h BookingHandler) UserBookings(c *gin.Context) {
	p, ok := requireAuth(c)
	if !ok {
		return
	}
	items, err := h.Service.ForUser(c.Request.Context(), domainuser.ID(p.ID))
	if err != nil {
		respondServiceError(c, h.Logger, err)
		return
	}
	out := make([]dto.BookingResponse, 0, len(items))
	for _, item := range items {
		out = append(out, dto.NewBookingResponse(item.Booking).WithListing(item.Listing))
	}
	respond(c, http.StatusOK, "User bookings fetched", out)
}

func (h BookingHandler) HostBookings(c *gin.Context) {
	p, ok := requireAuth(c)
	if !ok {
		return
	}
	items, err := h.Service.ForHost(c.Request.Context(), domainuser.ID(p.ID))
	if err != nil {
		respondServiceError(c, h.Logger, err)
		return
	}
	out := make([]dto.BookingResponse, 0, len(items))
	for _, item := range items {
		out = append(out, dto.NewBookingResponse(item.Booking).WithListing(item.Listing).WithUser(item.Guest))
	}
	respond(c, http.StatusOK, "Host bookings fetched", out)
}

// ListingBookings exposes the booked ranges of one listing so clients can
// grey out unavailable dates.
func (h BookingHandler) ListingBookings(c *gin.Context) {
	if _, ok := requireAuth(c); !ok {
		return
	}
	items, err := h.Service.ForListing(c.Request.Context(), domainlistings.ListingID(c.Param("id")))
	if err != nil {
		respondServiceError(c, h.Logger, err)
		return
	}
	out := make([]dto.BookingResponse, 0, len(items))
	for _, b := range items {
		out = append(out, dto.NewBookingResponse(b))
	}
	respond(c, http.StatusOK, "Listing bookings fetched", out)
}

var _ BookingHTTP = BookingHandler{}
