package ginserver

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	authsvc "stayhub/internal/app/services/auth"
	bookingsvc "stayhub/internal/app/services/booking"
	listingsvc "stayhub/internal/app/services/listing"
	wishlistsvc "stayhub/internal/app/services/wishlist"
	domainlistings "stayhub/internal/domain/listings"
	"stayhub/internal/infra/config"
	"stayhub/internal/infra/obs"
	"stayhub/internal/infra/security"
	"stayhub/internal/infra/storage/memory"
)

type testEnv struct {
	handler  http.Handler
	listings *memory.ListingRepository
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	users := memory.NewUserRepository()
	sessions := memory.NewSessionStore()
	listings := memory.NewListingRepository()
	bookings := memory.NewBookingRepository()
	wishlists := memory.NewWishlistRepository()
	media := memory.NewMediaStore()

	tokens := &security.AccessTokenManager{Secret: []byte("test-secret"), TTL: time.Minute}
	authService := &authsvc.Service{
		Users:      users,
		Sessions:   sessions,
		Passwords:  security.BcryptHasher{Cost: bcrypt.MinCost},
		Access:     tokens,
		Refresh:    security.RandomTokenGenerator{},
		RefreshTTL: time.Hour,
	}
	listingService := &listingsvc.Service{Listings: listings, Users: users, Media: media}
	bookingService := &bookingsvc.Service{Bookings: bookings, Listings: listings, Users: users}
	wishlistService := &wishlistsvc.Service{Wishlists: wishlists, Listings: listings}

	cookies := CookieSettings{AccessTTL: time.Minute, RefreshTTL: time.Hour}
	server := NewServer(
		config.Config{Env: "test", HTTPAddr: ":0"},
		obs.Middleware{},
		obs.HealthHandlers{},
		Handlers{
			Auth:           AuthHandler{Service: authService, Cookies: cookies},
			Listing:        ListingHandler{Service: listingService},
			Booking:        BookingHandler{Service: bookingService},
			Wishlist:       WishlistHandler{Service: wishlistService},
			AuthMiddleware: AuthMiddleware{Tokens: tokens}.Handle,
		},
	)
	return &testEnv{handler: server.Handler, listings: listings}
}

func (e *testEnv) do(t *testing.T, method, path string, body any, cookies []*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	for _, c := range cookies {
		req.AddCookie(c)
	}
	resp := httptest.NewRecorder()
	e.handler.ServeHTTP(resp, req)
	return resp
}

func (e *testEnv) signUpAndIn(t *testing.T, email string) []*http.Cookie {
	t.Helper()
	creds := map[string]string{"email": email, "password": "correct horse"}
	if resp := e.do(t, http.MethodPost, "/api/v1/users/signup", creds, nil); resp.Code != http.StatusCreated {
		t.Fatalf("signup: expected 201, got %d (%s)", resp.Code, resp.Body.String())
	}
	resp := e.do(t, http.MethodPost, "/api/v1/users/signin", creds, nil)
	if resp.Code != http.StatusCreated {
		t.Fatalf("signin: expected 201, got %d (%s)", resp.Code, resp.Body.String())
	}
	cookies := resp.Result().Cookies()
	if len(cookies) < 2 {
		t.Fatalf("signin must set access and refresh cookies, got %d", len(cookies))
	}
	return cookies
}

func (e *testEnv) seedListing(t *testing.T, id domainlistings.ListingID, price float64) {
	t.Helper()
	start := time.Now().UTC().AddDate(0, 0, 1)
	listing, err := domainlistings.NewListing(domainlistings.CreateParams{
		ID:          id,
		Host:        "host-1",
		Title:       "Harbour flat",
		Description: "Top floor flat overlooking the harbour.",
		Price:       price,
		Location:    "Hamburg",
		Images:      []string{"memory://media/seed.jpg"},
		Availability: []domainlistings.AvailabilityWindow{
			{Start: start, End: start.AddDate(0, 2, 0)},
		},
	})
	if err != nil {
		t.Fatalf("NewListing: %v", err)
	}
	if err := e.listings.Save(context.Background(), listing); err != nil {
		t.Fatalf("save listing: %v", err)
	}
}

type envelopeBody struct {
	StatusCode int             `json:"statusCode"`
	Message    string          `json:"message"`
	Data       json.RawMessage `json:"data"`
}

func decodeEnvelope(t *testing.T, resp *httptest.ResponseRecorder) envelopeBody {
	t.Helper()
	var env envelopeBody
	if err := json.Unmarshal(resp.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode envelope: %v (%s)", err, resp.Body.String())
	}
	return env
}

func TestSignUpSignInCurrentUser(t *testing.T) {
	env := newTestEnv(t)
	cookies := env.signUpAndIn(t, "guest@example.com")

	resp := env.do(t, http.MethodGet, "/api/v1/users/current-user", nil, cookies)
	if resp.Code != http.StatusOK {
		t.Fatalf("current-user: expected 200, got %d (%s)", resp.Code, resp.Body.String())
	}
	body := decodeEnvelope(t, resp)
	if body.StatusCode != http.StatusOK {
		t.Errorf("envelope statusCode = %d, want 200", body.StatusCode)
	}
	var data struct {
		User struct {
			Email string `json:"email"`
		} `json:"user"`
	}
	if err := json.Unmarshal(body.Data, &data); err != nil {
		t.Fatalf("decode data: %v", err)
	}
	if data.User.Email != "guest@example.com" {
		t.Errorf("email = %q", data.User.Email)
	}
}

func TestProtectedRoutesRejectAnonymous(t *testing.T) {
	env := newTestEnv(t)
	paths := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/api/v1/users/current-user"},
		{http.MethodGet, "/api/v1/listings/all-listings"},
		{http.MethodPost, "/api/v1/bookings/create-booking"},
		{http.MethodGet, "/api/v1/wishlists/get-wishlist"},
	}
	for _, p := range paths {
		resp := env.do(t, p.method, p.path, nil, nil)
		if resp.Code != http.StatusUnauthorized {
			t.Errorf("%s %s: expected 401, got %d", p.method, p.path, resp.Code)
		}
	}
}

func TestSignUpDuplicateEmailConflict(t *testing.T) {
	env := newTestEnv(t)
	creds := map[string]string{"email": "guest@example.com", "password": "correct horse"}
	if resp := env.do(t, http.MethodPost, "/api/v1/users/signup", creds, nil); resp.Code != http.StatusCreated {
		t.Fatalf("first signup: %d", resp.Code)
	}
	if resp := env.do(t, http.MethodPost, "/api/v1/users/signup", creds, nil); resp.Code != http.StatusConflict {
		t.Fatalf("duplicate signup: expected 409, got %d", resp.Code)
	}
}

func TestCreateBookingFlow(t *testing.T) {
	env := newTestEnv(t)
	env.seedListing(t, "l-1", 1000)
	cookies := env.signUpAndIn(t, "guest@example.com")

	checkIn := time.Now().UTC().AddDate(0, 0, 2).Truncate(24 * time.Hour)
	payload := map[string]any{
		"listingId": "l-1",
		"checkIn":   checkIn.Format(time.RFC3339),
		"checkOut":  checkIn.AddDate(0, 0, 3).Format(time.RFC3339),
	}
	resp := env.do(t, http.MethodPost, "/api/v1/bookings/create-booking", payload, cookies)
	if resp.Code != http.StatusCreated {
		t.Fatalf("create-booking: expected 201, got %d (%s)", resp.Code, resp.Body.String())
	}
	var data struct {
		CheckIn    time.Time `json:"checkIn"`
		CheckOut   time.Time `json:"checkOut"`
		TotalPrice float64   `json:"totalPrice"`
	}
	body := decodeEnvelope(t, resp)
	if err := json.Unmarshal(body.Data, &data); err != nil {
		t.Fatalf("decode data: %v", err)
	}
	if data.TotalPrice != 3000 {
		t.Errorf("totalPrice = %v, want 3000", data.TotalPrice)
	}
	if !data.CheckIn.Equal(checkIn) {
		t.Errorf("checkIn = %v, want %v", data.CheckIn, checkIn)
	}
	if data.CheckOut.IsZero() {
		t.Error("checkOut missing from booking response")
	}

	// same dates again collide
	resp = env.do(t, http.MethodPost, "/api/v1/bookings/create-booking", payload, cookies)
	if resp.Code != http.StatusConflict {
		t.Fatalf("overlapping booking: expected 409, got %d (%s)", resp.Code, resp.Body.String())
	}

	resp = env.do(t, http.MethodGet, "/api/v1/bookings/user-bookings", nil, cookies)
	if resp.Code != http.StatusOK {
		t.Fatalf("user-bookings: expected 200, got %d", resp.Code)
	}
}

func TestCreateBookingOutsideAvailability(t *testing.T) {
	env := newTestEnv(t)
	env.seedListing(t, "l-1", 1000)
	cookies := env.signUpAndIn(t, "guest@example.com")

	// seeded availability ends two months out
	checkIn := time.Now().UTC().AddDate(0, 6, 0).Truncate(24 * time.Hour)
	payload := map[string]any{
		"listingId": "l-1",
		"checkIn":   checkIn.Format(time.RFC3339),
		"checkOut":  checkIn.AddDate(0, 0, 3).Format(time.RFC3339),
	}
	resp := env.do(t, http.MethodPost, "/api/v1/bookings/create-booking", payload, cookies)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("outside availability: expected 400, got %d (%s)", resp.Code, resp.Body.String())
	}
}

func TestListingResponseWindowFieldNames(t *testing.T) {
	env := newTestEnv(t)
	env.seedListing(t, "l-1", 120)
	cookies := env.signUpAndIn(t, "guest@example.com")

	resp := env.do(t, http.MethodGet, "/api/v1/listings/listing/l-1", nil, cookies)
	if resp.Code != http.StatusOK {
		t.Fatalf("get listing: expected 200, got %d (%s)", resp.Code, resp.Body.String())
	}
	var data struct {
		Availability []struct {
			Start time.Time `json:"start"`
			End   time.Time `json:"end"`
		} `json:"availability"`
	}
	body := decodeEnvelope(t, resp)
	if err := json.Unmarshal(body.Data, &data); err != nil {
		t.Fatalf("decode data: %v", err)
	}
	if len(data.Availability) != 1 {
		t.Fatalf("expected 1 availability window, got %d", len(data.Availability))
	}
	if data.Availability[0].Start.IsZero() || data.Availability[0].End.IsZero() {
		t.Errorf("window bounds missing: %+v", data.Availability[0])
	}
}

func TestWishlistFlow(t *testing.T) {
	env := newTestEnv(t)
	env.seedListing(t, "l-1", 120)
	cookies := env.signUpAndIn(t, "guest@example.com")

	if resp := env.do(t, http.MethodPost, "/api/v1/wishlists/add-wishlist/l-1", nil, cookies); resp.Code != http.StatusOK {
		t.Fatalf("add-wishlist: expected 200, got %d (%s)", resp.Code, resp.Body.String())
	}
	resp := env.do(t, http.MethodGet, "/api/v1/wishlists/get-wishlist", nil, cookies)
	if resp.Code != http.StatusOK {
		t.Fatalf("get-wishlist: expected 200, got %d", resp.Code)
	}
	var items []json.RawMessage
	body := decodeEnvelope(t, resp)
	if err := json.Unmarshal(body.Data, &items); err != nil {
		t.Fatalf("decode data: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("expected 1 wishlist listing, got %d", len(items))
	}

	if resp := env.do(t, http.MethodDelete, "/api/v1/wishlists/remove-wishlist/l-1", nil, cookies); resp.Code != http.StatusOK {
		t.Fatalf("remove-wishlist: expected 200, got %d", resp.Code)
	}
	if resp := env.do(t, http.MethodPost, "/api/v1/wishlists/add-wishlist/ghost", nil, cookies); resp.Code != http.StatusNotFound {
		t.Fatalf("unknown listing: expected 404, got %d", resp.Code)
	}
}

func TestSignOutClearsAccess(t *testing.T) {
	env := newTestEnv(t)
	cookies := env.signUpAndIn(t, "guest@example.com")

	if resp := env.do(t, http.MethodPost, "/api/v1/users/signout", nil, cookies); resp.Code != http.StatusCreated {
		t.Fatalf("signout: expected 201, got %d (%s)", resp.Code, resp.Body.String())
	}

	// refresh token was invalidated server-side
	resp := env.do(t, http.MethodPost, "/api/v1/users/refresh-access-token", nil, cookies)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("refresh after signout: expected 401, got %d", resp.Code)
	}
}
