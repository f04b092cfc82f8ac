package ginserver

import (
	"log/slog"
	"net/http"

	gin "github.com/gin-gonic/gin"

	"stayhub/internal/app/dto"
	wishlistsvc "stayhub/internal/app/services/wishlist"
	domainlistings "stayhub/internal/domain/listings"
	domainuser "stayhub/internal/domain/user"
)

type WishlistHTTP interface {
	Add(c *gin.Context)
	Remove(c *gin.Context)
	Get(c *gin.Context)
}

type WishlistHandler struct {
	Service *wishlistsvc.Service
	Logger  *slog.Logger
}

func (h WishlistHandler) Add(c *gin.Context) {
	p, ok := requireAuth(c)
	if !ok {
		return
	}
	wl, err := h.Service.Add(c.Request.Context(), domainuser.ID(p.ID), domainlistings.ListingID(c.Param("listingId")))
	if err != nil {
		respondServiceError(c, h.Logger, err)
		return
	}
	respond(c, http.StatusOK, "Listing added to wishlist", listingIDs(wl.Listings))
}

func (h WishlistHandler) Remove(c *gin.Context) {
	p, ok := requireAuth(c)
	if !ok {
		return
	}
	wl, err := h.Service.Remove(c.Request.Context(), domainuser.ID(p.ID), domainlistings.ListingID(c.Param("listingId")))
	if err != nil {
		respondServiceError(c, h.Logger, err)
		return
	}
	respond(c, http.StatusOK, "Listing removed from wishlist", listingIDs(wl.Listings))
}

func (h WishlistHandler) Get(c *gin.Context) {
	p, ok := requireAuth(c)
	if !ok {
		return
	}
	items, err := h.Service.Get(c.Request.Context(), domainuser.ID(p.ID))
	if err != nil {
		respondServiceError(c, h.Logger, err)
		return
	}
	respond(c, http.StatusOK, "Wishlist fetched successfully", dto.NewListingResponses(items))
}

func listingIDs(ids []domainlistings.ListingID) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		out = append(out, string(id))
	}
	return out
}

var _ WishlistHTTP = WishlistHandler{}
