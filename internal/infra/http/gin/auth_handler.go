package ginserver

import (
	"log/slog"
	"net/http"
	"time"

	gin "github.com/gin-gonic/gin"

	"stayhub/internal/app/dto"
	authsvc "stayhub/internal/app/services/auth"
)

type AuthHTTP interface {
	SignUp(c *gin.Context)
	SignIn(c *gin.Context)
	Refresh(c *gin.Context)
	SignOut(c *gin.Context)
	CurrentUser(c *gin.Context)
}

// CookieSettings controls the auth cookies the handler writes.
type CookieSettings struct {
	Secure     bool
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

type AuthHandler struct {
	Service *authsvc.Service
	Cookies CookieSettings
	Logger  *slog.Logger
}

type signUpRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

type signInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h AuthHandler) SignUp(c *gin.Context) {
	var req signUpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "invalid request body")
		return
	}
	if _, err := h.Service.SignUp(c.Request.Context(), authsvc.SignUpParams{
		Email:    req.Email,
		Password: req.Password,
		Role:     req.Role,
	}); err != nil {
		respondServiceError(c, h.Logger, err)
		return
	}
	respond(c, http.StatusCreated, "User created successfully.", nil)
}

func (h AuthHandler) SignIn(c *gin.Context) {
	var req signInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "invalid request body")
		return
	}
	result, err := h.Service.SignIn(c.Request.Context(), authsvc.SignInParams{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		respondServiceError(c, h.Logger, err)
		return
	}
	h.setAuthCookies(c, result.AccessToken, result.RefreshToken)
	respond(c, http.StatusCreated, "User signed in successfully.", gin.H{
		"user": dto.NewUserSummary(result.User),
	})
}

func (h AuthHandler) Refresh(c *gin.Context) {
	token, _ := c.Cookie(refreshTokenCookie)
	result, err := h.Service.RefreshAccess(c.Request.Context(), token)
	if err != nil {
		respondServiceError(c, h.Logger, err)
		return
	}
	h.setCookie(c, accessTokenCookie, result.AccessToken, h.Cookies.AccessTTL)
	respond(c, http.StatusOK, "Access token refreshed.", gin.H{
		"user": dto.NewUserSummary(result.User),
	})
}

func (h AuthHandler) SignOut(c *gin.Context) {
	if _, ok := requireAuth(c); !ok {
		return
	}
	token, _ := c.Cookie(refreshTokenCookie)
	if err := h.Service.SignOut(c.Request.Context(), token); err != nil {
		respondServiceError(c, h.Logger, err)
		return
	}
	h.clearAuthCookies(c)
	respond(c, http.StatusCreated, "User signed out successfully.", nil)
}

func (h AuthHandler) CurrentUser(c *gin.Context) {
	p, ok := requireAuth(c)
	if !ok {
		return
	}
	user, err := h.Service.CurrentUser(c.Request.Context(), p.ID)
	if err != nil {
		respondServiceError(c, h.Logger, err)
		return
	}
	respond(c, http.StatusOK, "Current user fetched successfully.", gin.H{
		"user": dto.NewUserSummary(user),
	})
}

func (h AuthHandler) setAuthCookies(c *gin.Context, access, refresh string) {
	h.setCookie(c, accessTokenCookie, access, h.Cookies.AccessTTL)
	h.setCookie(c, refreshTokenCookie, refresh, h.Cookies.RefreshTTL)
}

func (h AuthHandler) clearAuthCookies(c *gin.Context) {
	h.setCookie(c, accessTokenCookie, "", -time.Second)
	h.setCookie(c, refreshTokenCookie, "", -time.Second)
}

func (h AuthHandler) setCookie(c *gin.Context, name, value string, ttl time.Duration) {
	maxAge := int(ttl / time.Second)
	if value == "" {
		maxAge = -1
	}
	c.SetCookie(name, value, maxAge, "/", "", h.Cookies.Secure, true)
}

var _ AuthHTTP = AuthHandler{}
