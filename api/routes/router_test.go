package routes

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/angelmondragon/wanderlust-backend/api/controllers"
	"github.com/angelmondragon/wanderlust-backend/internal/auth"
	"github.com/angelmondragon/wanderlust-backend/internal/listings"
	"github.com/angelmondragon/wanderlust-backend/internal/reviews"
	"github.com/angelmondragon/wanderlust-backend/internal/wishlist"
	pkgAuth "github.com/angelmondragon/wanderlust-backend/pkg/auth"
	"github.com/angelmondragon/wanderlust-backend/pkg/config"
	"github.com/angelmondragon/wanderlust-backend/pkg/db/models"
	"github.com/angelmondragon/wanderlust-backend/pkg/logger"
	"github.com/angelmondragon/wanderlust-backend/pkg/metrics"
)

type stubPinger struct{}

func (stubPinger) Ping(context.Context) error {
	return nil
}

type stubSessions struct{}

func (stubSessions) HasSession(ctx context.Context, sessionID string, userID uuid.UUID) (bool, error) {
	return true, nil
}

type stubListings struct {
	deleted uuid.UUID
}

func (s *stubListings) Index(ctx context.Context, viewerID uuid.UUID, q listings.ListQuery) (*listings.IndexPage, error) {
	return &listings.IndexPage{Listings: []listings.ListingSummary{}}, nil
}

func (s *stubListings) Get(ctx context.Context, viewerID, id uuid.UUID) (*listings.ListingDetail, error) {
	return &listings.ListingDetail{ID: id}, nil
}

func (s *stubListings) EditForm(ctx context.Context, userID, id uuid.UUID) (*listings.EditForm, error) {
	return &listings.EditForm{}, nil
}

func (s *stubListings) Create(ctx context.Context, ownerID uuid.UUID, in listings.CreateInput) (*listings.ListingDetail, error) {
	return &listings.ListingDetail{}, nil
}

func (s *stubListings) Update(ctx context.Context, userID, id uuid.UUID, in listings.UpdateInput) (*listings.ListingDetail, error) {
	return &listings.ListingDetail{ID: id}, nil
}

func (s *stubListings) Delete(ctx context.Context, userID, id uuid.UUID) error {
	s.deleted = id
	return nil
}

type stubWishlist struct{}

func (stubWishlist) Toggle(ctx context.Context, userID, listingID uuid.UUID) (*wishlist.ToggleResult, error) {
	return &wishlist.ToggleResult{IsLiked: true}, nil
}

func (stubWishlist) List(ctx context.Context, userID uuid.UUID) ([]wishlist.LikedListing, error) {
	return nil, nil
}

type stubReviews struct{}

func (stubReviews) Create(ctx context.Context, authorID, listingID uuid.UUID, in reviews.CreateInput) (*models.Review, error) {
	return &models.Review{}, nil
}

func (stubReviews) Delete(ctx context.Context, userID, listingID, reviewID uuid.UUID) error {
	return nil
}

type stubAuth struct{}

func (stubAuth) Signup(ctx context.Context, req auth.SignupRequest) (*auth.Session, error) {
	return &auth.Session{AccessToken: "t", ExpiresAt: time.Now().Add(time.Hour)}, nil
}

func (stubAuth) Login(ctx context.Context, req auth.LoginRequest) (*auth.Session, error) {
	return &auth.Session{AccessToken: "t", ExpiresAt: time.Now().Add(time.Hour)}, nil
}

func (stubAuth) Logout(ctx context.Context, sessionID string) error {
	return nil
}

func testConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{Env: "test"},
		JWT: config.JWTConfig{Secret: "secret", Issuer: "wanderlust", ExpirationMinutes: 60},
	}
}

func newTestRouter(t *testing.T, svc *stubListings) http.Handler {
	t.Helper()
	return NewRouter(RouterParams{
		Config:   testConfig(),
		Logger:   logger.Nop(),
		Sessions: stubSessions{},
		Metrics:  metrics.New(prometheus.NewRegistry()),
		Pingers:  map[string]controllers.Pinger{"db": stubPinger{}},
		Listings: svc,
		Wishlist: stubWishlist{},
		Reviews:  stubReviews{},
		Auth:     stubAuth{},
	})
}

func bearer(t *testing.T, cfg *config.Config) string {
	t.Helper()
	token, err := pkgAuth.MintAccessToken(cfg.JWT, time.Now(), pkgAuth.AccessTokenPayload{
		UserID:    uuid.New(),
		Username:  "wanderer",
		SessionID: uuid.NewString(),
	})
	if err != nil {
		t.Fatalf("mint: %v", err)
	}
	return "Bearer " + token
}

func TestUnknownRouteAnswersPageNotFound(t *testing.T) {
	h := newTestRouter(t, &stubListings{})
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/nowhere", nil))

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
	var body struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Error.Message != "Page Not Found!" {
		t.Fatalf("unexpected message %q", body.Error.Message)
	}
}

func TestListingsIndexIsPublic(t *testing.T) {
	h := newTestRouter(t, &stubListings{})
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/listings?sort=newest", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestNewListingRequiresLogin(t *testing.T) {
	h := newTestRouter(t, &stubListings{})
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/listings/new", nil))
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("expected 303, got %d", rec.Code)
	}
	if loc := rec.Header().Get("Location"); loc != "/login?redirect=%2Flistings%2Fnew" {
		t.Fatalf("unexpected location %q", loc)
	}
}

func TestWishlistToggleRoute(t *testing.T) {
	cfg := testConfig()
	h := newTestRouter(t, &stubListings{})
	id := uuid.NewString()

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPut, "/listings/"+id+"/wishlist", nil)
	req.Header.Set("Accept", "application/json")
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("anonymous toggle: expected 401, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPut, "/listings/"+id+"/wishlist", nil)
	req.Header.Set("Authorization", bearer(t, cfg))
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"isLiked":true`) {
		t.Fatalf("unexpected body %s", rec.Body.String())
	}
}

func TestMethodOverrideReachesDelete(t *testing.T) {
	cfg := testConfig()
	svc := &stubListings{}
	h := newTestRouter(t, svc)
	id := uuid.New()

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/listings/"+id.String()+"?_method=DELETE", nil)
	req.Header.Set("Authorization", bearer(t, cfg))
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("expected 303, got %d", rec.Code)
	}
	if svc.deleted != id {
		t.Fatalf("expected delete of %s, got %s", id, svc.deleted)
	}
}

func TestMetricsEndpointExposesRequests(t *testing.T) {
	h := newTestRouter(t, &stubListings{})
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/health/live", nil))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	body, _ := io.ReadAll(rec.Body)
	if !strings.Contains(string(body), `route="/health/live"`) {
		t.Fatalf("expected health route in metrics output")
	}
}
