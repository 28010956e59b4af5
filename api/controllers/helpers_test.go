package controllers

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/angelmondragon/wanderlust-backend/api/middleware"
	"github.com/angelmondragon/wanderlust-backend/api/responses"
	"github.com/angelmondragon/wanderlust-backend/pkg/types"
)

// withParams attaches chi URL params the way the router would.
func withParams(r *http.Request, kv ...string) *http.Request {
	rctx := chi.NewRouteContext()
	for i := 0; i+1 < len(kv); i += 2 {
		rctx.URLParams.Add(kv[i], kv[i+1])
	}
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

func asUser(r *http.Request, id uuid.UUID) *http.Request {
	return r.WithContext(middleware.WithSession(r.Context(), id, "wanderer", "sess-1"))
}

// flashOf decodes the flash cookie set on a redirect.
func flashOf(t *testing.T, rec *httptest.ResponseRecorder) types.Flash {
	t.Helper()
	for _, c := range rec.Result().Cookies() {
		if c.Name != responses.FlashCookie || c.Value == "" {
			continue
		}
		raw, err := base64.RawURLEncoding.DecodeString(c.Value)
		if err != nil {
			t.Fatalf("decode flash: %v", err)
		}
		var f types.Flash
		if err := json.Unmarshal(raw, &f); err != nil {
			t.Fatalf("unmarshal flash: %v", err)
		}
		return f
	}
	t.Fatalf("no flash cookie set")
	return types.Flash{}
}

func assertRedirect(t *testing.T, rec *httptest.ResponseRecorder, location, kind, message string) {
	t.Helper()
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("expected 303, got %d (%s)", rec.Code, rec.Body.String())
	}
	if got := rec.Header().Get("Location"); got != location {
		t.Fatalf("expected redirect to %q, got %q", location, got)
	}
	f := flashOf(t, rec)
	if f.Type != kind || f.Message != message {
		t.Fatalf("unexpected flash %+v, want %s %q", f, kind, message)
	}
}
