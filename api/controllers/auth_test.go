package controllers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/wanderlust-backend/api/validators"
	"github.com/angelmondragon/wanderlust-backend/internal/auth"
	"github.com/angelmondragon/wanderlust-backend/internal/users"
	"github.com/angelmondragon/wanderlust-backend/pkg/config"
	pkgerrors "github.com/angelmondragon/wanderlust-backend/pkg/errors"
	"github.com/angelmondragon/wanderlust-backend/pkg/logger"
)

type fakeAuth struct {
	signupErr error
	loginErr  error
	logoutErr error

	lastSignup  auth.SignupRequest
	lastLogin   auth.LoginRequest
	revokedSess string
}

func (f *fakeAuth) session() *auth.Session {
	return &auth.Session{
		AccessToken: "signed.jwt.token",
		SessionID:   "sess-1",
		ExpiresAt:   time.Now().Add(time.Hour),
		User:        &users.UserDTO{ID: uuid.New(), Username: "wanderer"},
	}
}

func (f *fakeAuth) Signup(ctx context.Context, req auth.SignupRequest) (*auth.Session, error) {
	f.lastSignup = req
	if f.signupErr != nil {
		return nil, f.signupErr
	}
	return f.session(), nil
}

func (f *fakeAuth) Login(ctx context.Context, req auth.LoginRequest) (*auth.Session, error) {
	f.lastLogin = req
	if f.loginErr != nil {
		return nil, f.loginErr
	}
	return f.session(), nil
}

func (f *fakeAuth) Logout(ctx context.Context, sessionID string) error {
	f.revokedSess = sessionID
	return f.logoutErr
}

func formPost(path string, values url.Values) *http.Request {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

func sessionCookie(rec *httptest.ResponseRecorder) *http.Cookie {
	for _, c := range rec.Result().Cookies() {
		if c.Name == validators.AccessTokenCookie {
			return c
		}
	}
	return nil
}

func TestSignupSetsCookieAndWelcomes(t *testing.T) {
	svc := &fakeAuth{}
	req := formPost("/signup", url.Values{
		"user[username]": {" wanderer "},
		"user[email]":    {"w@example.com"},
		"user[password]": {" secret pass "},
	})
	rec := httptest.NewRecorder()

	AuthSignup(svc, config.HTTPConfig{}, logger.Nop())(rec, req)

	assertRedirect(t, rec, "/listings", "success", "Welcome to Wanderlust!")
	c := sessionCookie(rec)
	if c == nil || c.Value != "signed.jwt.token" || !c.HttpOnly {
		t.Fatalf("expected http-only session cookie, got %+v", c)
	}
	if svc.lastSignup.Username != "wanderer" || svc.lastSignup.Password != " secret pass " {
		t.Fatalf("unexpected signup request %+v", svc.lastSignup)
	}
}

func TestSignupDuplicateUsername(t *testing.T) {
	msg := "A user with the given username is already registered"
	svc := &fakeAuth{signupErr: pkgerrors.New(pkgerrors.CodeConflict, msg)}
	req := formPost("/signup", url.Values{"username": {"taken"}, "email": {"t@example.com"}, "password": {"secret1"}})
	rec := httptest.NewRecorder()

	AuthSignup(svc, config.HTTPConfig{}, logger.Nop())(rec, req)

	assertRedirect(t, rec, "/signup", "error", msg)
	if sessionCookie(rec) != nil {
		t.Fatalf("no session cookie expected on failure")
	}
}

func TestSignupValidation(t *testing.T) {
	svc := &fakeAuth{}
	req := formPost("/signup", url.Values{"username": {"ab"}, "email": {"nope"}, "password": {"1"}})
	rec := httptest.NewRecorder()

	AuthSignup(svc, config.HTTPConfig{}, logger.Nop())(rec, req)

	if rec.Code != http.StatusSeeOther || rec.Header().Get("Location") != "/signup" {
		t.Fatalf("expected redirect to signup, got %d %q", rec.Code, rec.Header().Get("Location"))
	}
	if svc.lastSignup.Username != "" {
		t.Fatalf("service should not be called")
	}
}

func TestLoginRedirectsToSavedDestination(t *testing.T) {
	svc := &fakeAuth{}
	req := formPost("/login", url.Values{
		"username": {"wanderer"},
		"password": {"secret1"},
		"redirect": {"/listings/new"},
	})
	rec := httptest.NewRecorder()

	AuthLogin(svc, config.HTTPConfig{SecureCookies: true}, logger.Nop())(rec, req)

	assertRedirect(t, rec, "/listings/new", "success", "Welcome back!")
	if c := sessionCookie(rec); c == nil || !c.Secure {
		t.Fatalf("expected secure session cookie, got %+v", c)
	}
}

func TestLoginIgnoresOffsiteRedirect(t *testing.T) {
	req := formPost("/login?redirect=//evil.example.com", url.Values{"username": {"wanderer"}, "password": {"secret1"}})
	rec := httptest.NewRecorder()

	AuthLogin(&fakeAuth{}, config.HTTPConfig{}, logger.Nop())(rec, req)

	assertRedirect(t, rec, "/listings", "success", "Welcome back!")
}

func TestLoginBadCredentials(t *testing.T) {
	msg := "Password or username is incorrect"
	svc := &fakeAuth{loginErr: pkgerrors.New(pkgerrors.CodeUnauthorized, msg)}
	req := formPost("/login", url.Values{"username": {"wanderer"}, "password": {"wrong"}, "redirect": {"/wishlist"}})
	rec := httptest.NewRecorder()

	AuthLogin(svc, config.HTTPConfig{}, logger.Nop())(rec, req)

	assertRedirect(t, rec, "/login?redirect=%2Fwishlist", "error", msg)
}

func TestLoginJSONClientGetsSession(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(`{"username":"wanderer","password":"secret1"}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	rec := httptest.NewRecorder()

	AuthLogin(&fakeAuth{}, config.HTTPConfig{}, logger.Nop())(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "signed.jwt.token") {
		t.Fatalf("expected token in body: %s", rec.Body.String())
	}
}

func TestLogoutRevokesAndClears(t *testing.T) {
	svc := &fakeAuth{logoutErr: errors.New("redis down")}
	req := asUser(httptest.NewRequest(http.MethodPost, "/logout", nil), uuid.New())
	rec := httptest.NewRecorder()

	AuthLogout(svc, config.HTTPConfig{}, logger.Nop())(rec, req)

	assertRedirect(t, rec, "/listings", "success", "You have logged out!")
	if svc.revokedSess != "sess-1" {
		t.Fatalf("expected session revoke, got %q", svc.revokedSess)
	}
	if c := sessionCookie(rec); c == nil || c.MaxAge >= 0 {
		t.Fatalf("expected cleared cookie, got %+v", c)
	}
}
