package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	authsvc "stayhub/internal/app/services/auth"
	bookingsvc "stayhub/internal/app/services/booking"
	listingsvc "stayhub/internal/app/services/listing"
	wishlistsvc "stayhub/internal/app/services/wishlist"
	domainauth "stayhub/internal/domain/auth"
	domainbooking "stayhub/internal/domain/booking"
	domainlistings "stayhub/internal/domain/listings"
	domainuser "stayhub/internal/domain/user"
	domainwishlist "stayhub/internal/domain/wishlist"
	"stayhub/internal/infra/broker/kafka"
	"stayhub/internal/infra/config"
	stayhubmongo "stayhub/internal/infra/db/mongo"
	ginserver "stayhub/internal/infra/http/gin"
	"stayhub/internal/infra/obs"
	"stayhub/internal/infra/security"
	"stayhub/internal/infra/storage/memory"
	"stayhub/internal/infra/storage/s3"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("configuration invalid", "error", err)
		os.Exit(1)
	}
	logger := obs.NewLogger(cfg.Env)

	app, cleanup, err := buildApplication(ctx, cfg, logger)
	if err != nil {
		logger.Error("startup failed", "error", err)
		os.Exit(1)
	}
	defer cleanup()

	server := ginserver.NewServer(cfg, obs.Middleware{Logger: logger}, obs.HealthHandlers{
		Ready: app.ready,
	}, app.handlers)

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("http shutdown failed", "error", err)
		}
	}()

	logger.Info("HTTP server starting", "addr", cfg.HTTPAddr, "storage", cfg.StorageMode)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("http server failed", "error", err)
		os.Exit(1)
	}
	logger.Info("HTTP server stopped")
}

type application struct {
	handlers ginserver.Handlers
	ready    func() error
}

type repositories struct {
	users     domainuser.Repository
	sessions  domainauth.SessionStore
	listings  domainlistings.Repository
	bookings  domainbooking.Repository
	wishlists domainwishlist.Repository
}

func buildApplication(ctx context.Context, cfg config.Config, logger *slog.Logger) (application, func(), error) {
	var cleanups []func()
	cleanup := func() {
		for i := len(cleanups) - 1; i >= 0; i-- {
			cleanups[i]()
		}
	}

	repos, ready, mongoCleanup, err := buildRepositories(ctx, cfg)
	if err != nil {
		return application{}, cleanup, err
	}
	if mongoCleanup != nil {
		cleanups = append(cleanups, mongoCleanup)
	}

	media, err := buildMediaStore(cfg, logger)
	if err != nil {
		return application{}, cleanup, err
	}

	events, eventsCleanup, err := buildEvents(cfg, logger)
	if err != nil {
		return application{}, cleanup, err
	}
	if eventsCleanup != nil {
		cleanups = append(cleanups, eventsCleanup)
	}

	accessTokens := &security.AccessTokenManager{
		Secret: []byte(cfg.AccessTokenSecret),
		TTL:    cfg.AccessTokenTTL,
	}
	authService := &authsvc.Service{
		Users:      repos.users,
		Sessions:   repos.sessions,
		Passwords:  security.BcryptHasher{Cost: cfg.BcryptCost},
		Access:     accessTokens,
		Refresh:    security.RandomTokenGenerator{},
		RefreshTTL: cfg.RefreshTokenTTL,
		Logger:     logger,
	}
	listingService := &listingsvc.Service{
		Listings: repos.listings,
		Users:    repos.users,
		Media:    media,
		Events:   events,
		Logger:   logger,
	}
	bookingService := &bookingsvc.Service{
		Bookings: repos.bookings,
		Listings: repos.listings,
		Users:    repos.users,
		Events:   events,
		Logger:   logger,
	}
	wishlistService := &wishlistsvc.Service{
		Wishlists: repos.wishlists,
		Listings:  repos.listings,
		Logger:    logger,
	}

	cookies := ginserver.CookieSettings{
		Secure:     cfg.CookieSecure,
		AccessTTL:  cfg.AccessTokenTTL,
		RefreshTTL: cfg.RefreshTokenTTL,
	}
	handlers := ginserver.Handlers{
		Auth:           ginserver.AuthHandler{Service: authService, Cookies: cookies, Logger: logger},
		Listing:        ginserver.ListingHandler{Service: listingService, Logger: logger},
		Booking:        ginserver.BookingHandler{Service: bookingService, Logger: logger},
		Wishlist:       ginserver.WishlistHandler{Service: wishlistService, Logger: logger},
		AuthMiddleware: ginserver.AuthMiddleware{Tokens: accessTokens, Logger: logger}.Handle,
	}

	return application{handlers: handlers, ready: ready}, cleanup, nil
}

func buildRepositories(ctx context.Context, cfg config.Config) (repositories, func() error, func(), error) {
	if cfg.StorageMode == "mongo" {
		client, err := stayhubmongo.New(cfg.MongoURI, cfg.MongoDB)
		if err != nil {
			return repositories{}, nil, nil, err
		}
		cleanup := func() {
			closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = client.Close(closeCtx)
		}
		users, err := stayhubmongo.NewUserRepository(client.DB)
		if err != nil {
			return repositories{}, nil, cleanup, err
		}
		sessions, err := stayhubmongo.NewSessionStore(client.DB)
		if err != nil {
			return repositories{}, nil, cleanup, err
		}
		listings, err := stayhubmongo.NewListingRepository(client.DB)
		if err != nil {
			return repositories{}, nil, cleanup, err
		}
		bookings, err := stayhubmongo.NewBookingRepository(client.DB)
		if err != nil {
			return repositories{}, nil, cleanup, err
		}
		repos := repositories{
			users:     users,
			sessions:  sessions,
			listings:  listings,
			bookings:  bookings,
			wishlists: stayhubmongo.NewWishlistRepository(client.DB),
		}
		ready := func() error {
			pingCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			return client.Ping(pingCtx)
		}
		if err := client.Ping(ctx); err != nil {
			return repositories{}, nil, cleanup, err
		}
		return repos, ready, cleanup, nil
	}

	repos := repositories{
		users:     memory.NewUserRepository(),
		sessions:  memory.NewSessionStore(),
		listings:  memory.NewListingRepository(),
		bookings:  memory.NewBookingRepository(),
		wishlists: memory.NewWishlistRepository(),
	}
	return repos, func() error { return nil }, nil, nil
}

func buildMediaStore(cfg config.Config, logger *slog.Logger) (listingsvc.MediaStore, error) {
	if cfg.StorageMode == "memory" {
		return memory.NewMediaStore(), nil
	}
	return s3.NewClient(cfg.S3Endpoint, cfg.S3UseSSL, cfg.S3AccessKey, cfg.S3SecretKey, cfg.S3Bucket, cfg.S3PublicEndpoint, logger)
}

func buildEvents(cfg config.Config, logger *slog.Logger) (*kafka.Events, func(), error) {
	if len(cfg.KafkaBrokers) == 0 {
		return nil, nil, nil
	}
	producer, err := kafka.NewProducer(cfg.KafkaBrokers, nil)
	if err != nil {
		return nil, nil, err
	}
	events := kafka.NewEvents(producer, cfg.KafkaTopicPrefix, logger)
	return events, func() { _ = events.Close() }, nil
}
