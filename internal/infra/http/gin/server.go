package ginserver

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	gin "github.com/gin-gonic/gin"

	"stayhub/internal/infra/config"
	"stayhub/internal/infra/obs"
)

type Handlers struct {
	Auth           AuthHTTP
	Listing        ListingHTTP
	Booking        BookingHTTP
	Wishlist       WishlistHTTP
	AuthMiddleware gin.HandlerFunc
}

func NewServer(cfg config.Config, obsMW obs.Middleware, health obs.HealthHandlers, h Handlers) *http.Server {
	mode := configureGinMode(cfg.Env)
	if obsMW.Logger != nil {
		obsMW.Logger.Info("gin initialized", "mode", mode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(obsMW.RequestID())
	router.Use(obsMW.LoggerMiddleware())
	router.Use(cors.New(corsConfig(cfg.ClientURL)))
	if h.AuthMiddleware != nil {
		router.Use(h.AuthMiddleware)
	}

	router.GET("/livez", health.Livez)
	router.GET("/readyz", health.Readyz)

	api := router.Group("/api/v1")
	if h.Auth != nil {
		users := api.Group("/users")
		users.POST("/signup", h.Auth.SignUp)
		users.POST("/signin", h.Auth.SignIn)
		users.POST("/refresh-access-token", h.Auth.Refresh)
		users.POST("/signout", h.Auth.SignOut)
		users.GET("/current-user", h.Auth.CurrentUser)
	}
	if h.Listing != nil {
		listings := api.Group("/listings")
		listings.POST("/create-listing", h.Listing.Create)
		listings.GET("/all-listings", h.Listing.All)
		listings.GET("/listing/:id", h.Listing.Get)
		listings.GET("/host-listings", h.Listing.HostListings)
		listings.PUT("/update-listing/:id", h.Listing.Update)
		listings.DELETE("/delete-listing/:id", h.Listing.Delete)
	}
	if h.Booking != nil {
		bookings := api.Group("/bookings")
		bookings.POST("/create-booking", h.Booking.Create)
		bookings.GET("/user-bookings", h.Booking.UserBookings)
		bookings.GET("/host-bookings", h.Booking.HostBookings)
		bookings.GET("/get-bookings/:id", h.Booking.ListingBookings)
	}
	if h.Wishlist != nil {
		wishlists := api.Group("/wishlists")
		wishlists.POST("/add-wishlist/:listingId", h.Wishlist.Add)
		wishlists.DELETE("/remove-wishlist/:listingId", h.Wishlist.Remove)
		wishlists.GET("/get-wishlist", h.Wishlist.Get)
	}

	return &http.Server{Addr: cfg.HTTPAddr, Handler: router}
}

func corsConfig(clientURL string) cors.Config {
	origins := []string{"http://localhost:5173"}
	if clientURL = strings.TrimSpace(clientURL); clientURL != "" {
		origins = strings.Split(clientURL, ",")
		for i := range origins {
			origins[i] = strings.TrimSpace(origins[i])
		}
	}
	return cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length", "Content-Type", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
}

func configureGinMode(env string) string {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "debug", "dev", "development":
		gin.SetMode(gin.DebugMode)
		return gin.DebugMode
	case "test", "testing":
		gin.SetMode(gin.TestMode)
		return gin.TestMode
	default:
		gin.SetMode(gin.ReleaseMode)
		return gin.ReleaseMode
	}
}
