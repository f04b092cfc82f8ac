package ginserver

import (
	"errors"
	"log/slog"
	"net/http"

	gin "github.com/gin-gonic/gin"

	authsvc "stayhub/internal/app/services/auth"
	listingsvc "stayhub/internal/app/services/listing"
	domainauth "stayhub/internal/domain/auth"
	domainbooking "stayhub/internal/domain/booking"
	domainlistings "stayhub/internal/domain/listings"
	"stayhub/internal/domain/shared/daterange"
	domainuser "stayhub/internal/domain/user"
	"stayhub/internal/infra/security"
)

// envelope is the uniform response body: every endpoint, success or
// failure, wraps its payload in {statusCode, message, data}.
type envelope struct {
	StatusCode int    `json:"statusCode"`
	Message    string `json:"message"`
	Data       any    `json:"data,omitempty"`
}

func respond(c *gin.Context, status int, message string, data any) {
	c.JSON(status, envelope{StatusCode: status, Message: message, Data: data})
}

func respondError(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, envelope{StatusCode: status, Message: message})
}

var (
	badRequestErrors = []error{
		daterange.ErrInvalidRange,
		domainbooking.ErrCheckInInPast,
		domainbooking.ErrMaxStay,
		domainlistings.ErrTitleTooShort,
		domainlistings.ErrDescriptionTooShort,
		domainlistings.ErrNegativePrice,
		domainlistings.ErrLocationRequired,
		domainlistings.ErrWindowRequired,
		domainlistings.ErrWindowInvalid,
		domainuser.ErrEmailRequired,
		domainuser.ErrEmailInvalid,
		domainuser.ErrInvalidRole,
		authsvc.ErrPasswordTooShort,
		listingsvc.ErrMediaRequired,
		listingsvc.ErrUnknownImage,
		domainbooking.ErrNotAvailable,
	}
	unauthorizedErrors = []error{
		authsvc.ErrInvalidCredentials,
		domainauth.ErrTokenRequired,
		domainauth.ErrSessionNotFound,
		security.ErrTokenInvalid,
		security.ErrTokenExpired,
	}
	notFoundErrors = []error{
		domainlistings.ErrNotFound,
		domainbooking.ErrNotFound,
		domainuser.ErrNotFound,
	}
	conflictErrors = []error{
		domainbooking.ErrDatesConflict,
		domainuser.ErrEmailAlreadyUsed,
	}
)

// respondServiceError translates domain and service sentinels to HTTP
// status codes. Anything unrecognized is logged and collapsed to a 500 so
// internals never leak into responses.
func respondServiceError(c *gin.Context, logger *slog.Logger, err error) {
	if status, ok := statusForError(err); ok {
		respondError(c, status, err.Error())
		return
	}
	if logger != nil {
		logger.Error("request failed", "path", c.FullPath(), "error", err)
	}
	respondError(c, http.StatusInternalServerError, "internal error")
}

func statusForError(err error) (int, bool) {
	for _, target := range badRequestErrors {
		if errors.Is(err, target) {
			return http.StatusBadRequest, true
		}
	}
	for _, target := range unauthorizedErrors {
		if errors.Is(err, target) {
			return http.StatusUnauthorized, true
		}
	}
	if errors.Is(err, domainlistings.ErrNotOwner) {
		return http.StatusForbidden, true
	}
	for _, target := range notFoundErrors {
		if errors.Is(err, target) {
			return http.StatusNotFound, true
		}
	}
	for _, target := range conflictErrors {
		if errors.Is(err, target) {
			return http.StatusConflict, true
		}
	}
	if errors.Is(err, listingsvc.ErrMediaUpload) {
		return http.StatusBadGateway, true
	}
	return 0, false
}
