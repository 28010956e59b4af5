package middleware

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/angelmondragon/wanderlust-backend/api/responses"
	"github.com/angelmondragon/wanderlust-backend/api/validators"
	pkgAuth "github.com/angelmondragon/wanderlust-backend/pkg/auth"
	"github.com/angelmondragon/wanderlust-backend/pkg/auth/session"
	"github.com/angelmondragon/wanderlust-backend/pkg/config"
	"github.com/angelmondragon/wanderlust-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/wanderlust-backend/pkg/errors"
	"github.com/angelmondragon/wanderlust-backend/pkg/logger"
)

const (
	MsgLoginRequired = "You must be logged in first!"

	loginPath = "/login"
)

// Auth requires a valid token backed by a live session. Browsers are sent to
// the login page with a flash, API clients get a 401 envelope.
func Auth(cfg config.JWTConfig, verifier session.Checker, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, err := authenticate(r, cfg, verifier, logg)
			if err != nil {
				rejectUnauthenticated(w, r, logg, err)
				return
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// OptionalAuth seeds the context when credentials are valid and otherwise
// lets the visitor through anonymously.
func OptionalAuth(cfg config.JWTConfig, verifier session.Checker, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, err := authenticate(r, cfg, verifier, logg)
			if err != nil {
				if pkgerrors.IsCode(err, pkgerrors.CodeDependency) && logg != nil {
					logg.Warn(logg.WithField(r.Context(), "error", err.Error()), "auth.optional.session_check_failed")
				}
				next.ServeHTTP(w, r)
				return
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func authenticate(r *http.Request, cfg config.JWTConfig, verifier session.Checker, logg *logger.Logger) (context.Context, error) {
	token, err := validators.AccessToken(r)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, MsgLoginRequired)
	}

	claims, err := pkgAuth.ParseAccessToken(cfg, token)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, MsgLoginRequired)
	}
	if claims.ID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, MsgLoginRequired)
	}

	if verifier != nil {
		ok, err := verifier.HasSession(r.Context(), claims.ID, claims.UserID)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "validate session")
		}
		if !ok {
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, MsgLoginRequired)
		}
	}

	ctx := WithSession(r.Context(), claims.UserID, claims.Username, claims.ID)
	if logg != nil {
		ctx = logg.WithUserID(ctx, claims.UserID.String())
	}
	return ctx, nil
}

func rejectUnauthenticated(w http.ResponseWriter, r *http.Request, logg *logger.Logger, err error) {
	if WantsJSON(r) || pkgerrors.IsCode(err, pkgerrors.CodeDependency) {
		responses.WriteError(r.Context(), logg, w, err)
		return
	}
	target := loginPath + "?redirect=" + url.QueryEscape(returnTo(r))
	responses.Redirect(w, r, target, enums.FlashError, MsgLoginRequired)
}

// returnTo is the page to resume after login. Only GETs can be replayed.
func returnTo(r *http.Request) string {
	if r.Method == http.MethodGet {
		return r.URL.RequestURI()
	}
	return "/listings"
}

// WantsJSON reports whether the caller is a script rather than a page load.
func WantsJSON(r *http.Request) bool {
	if strings.EqualFold(r.Header.Get("X-Requested-With"), "XMLHttpRequest") {
		return true
	}
	if r.Header.Get("Authorization") != "" {
		return true
	}
	accept := strings.ToLower(r.Header.Get("Accept"))
	return strings.Contains(accept, "application/json") && !strings.Contains(accept, "text/html")
}
