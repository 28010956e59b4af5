package controllers

import (
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/angelmondragon/wanderlust-backend/api/middleware"
	"github.com/angelmondragon/wanderlust-backend/api/responses"
	"github.com/angelmondragon/wanderlust-backend/api/validators"
	"github.com/angelmondragon/wanderlust-backend/internal/auth"
	"github.com/angelmondragon/wanderlust-backend/pkg/config"
	"github.com/angelmondragon/wanderlust-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/wanderlust-backend/pkg/errors"
	"github.com/angelmondragon/wanderlust-backend/pkg/logger"
)

const (
	msgWelcome     = "Welcome to Wanderlust!"
	msgWelcomeBack = "Welcome back!"
	msgLoggedOut   = "You have logged out!"

	signupPath = "/signup"
	loginPath  = "/login"
)

type authFormPage struct {
	Form     string `json:"form"`
	Redirect string `json:"redirect,omitempty"`
}

// AuthSignupForm and AuthLoginForm return the state the auth pages need.
func AuthSignupForm() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		responses.WritePage(w, r, authFormPage{Form: "signup"})
	}
}

func AuthLoginForm() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		redirect := responses.SafeRedirect(r.URL.Query().Get("redirect"), "")
		responses.WritePage(w, r, authFormPage{Form: "login", Redirect: redirect})
	}
}

// AuthSignup registers the account and signs the visitor in.
func AuthSignup(svc auth.Service, httpCfg config.HTTPConfig, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		var req auth.SignupRequest
		if err := decodeSignup(r, &req); err != nil {
			authFailure(w, r, logg, err, signupPath)
			return
		}

		sess, err := svc.Signup(ctx, req)
		if err != nil {
			authFailure(w, r, logg, err, signupPath)
			return
		}

		setSessionCookie(w, r, httpCfg, sess)
		if middleware.WantsJSON(r) {
			responses.WriteSuccessStatus(w, http.StatusCreated, sess)
			return
		}
		responses.Redirect(w, r, listingsPath, enums.FlashSuccess, msgWelcome)
	}
}

// AuthLogin verifies credentials and resumes the page that required login.
func AuthLogin(svc auth.Service, httpCfg config.HTTPConfig, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		var req auth.LoginRequest
		decodeErr := decodeLogin(r, &req)
		if req.Redirect == "" {
			req.Redirect = r.URL.Query().Get("redirect")
		}
		redirect := responses.SafeRedirect(req.Redirect, listingsPath)

		retry := loginPath
		if redirect != listingsPath {
			retry += "?redirect=" + url.QueryEscape(redirect)
		}

		if decodeErr != nil {
			authFailure(w, r, logg, decodeErr, retry)
			return
		}

		sess, err := svc.Login(ctx, req)
		if err != nil {
			authFailure(w, r, logg, err, retry)
			return
		}

		setSessionCookie(w, r, httpCfg, sess)
		if middleware.WantsJSON(r) {
			responses.WriteSuccess(w, sess)
			return
		}
		responses.Redirect(w, r, redirect, enums.FlashSuccess, msgWelcomeBack)
	}
}

// AuthLogout revokes the server-side session and clears the cookie. It
// succeeds for anonymous visitors too.
func AuthLogout(svc auth.Service, httpCfg config.HTTPConfig, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		if sid := middleware.SessionIDFromContext(ctx); sid != "" {
			if err := svc.Logout(ctx, sid); err != nil && logg != nil {
				logg.Warn(logg.WithField(ctx, "error", err.Error()), "auth.logout.revoke_failed")
			}
		}

		clearSessionCookie(w, r, httpCfg)
		if middleware.WantsJSON(r) {
			responses.WriteSuccess(w, map[string]bool{"logged_out": true})
			return
		}
		responses.Redirect(w, r, listingsPath, enums.FlashSuccess, msgLoggedOut)
	}
}

func authFailure(w http.ResponseWriter, r *http.Request, logg *logger.Logger, err error, target string) {
	if middleware.WantsJSON(r) {
		responses.WriteError(r.Context(), logg, w, err)
		return
	}
	responses.LogError(r.Context(), logg, err)

	msg := responses.PublicMessage(err)
	switch pkgerrors.CodeOf(err) {
	case pkgerrors.CodeInternal, pkgerrors.CodeDependency:
		msg = msgGenericError
	}
	responses.Redirect(w, r, target, enums.FlashError, msg)
}

func decodeSignup(r *http.Request, req *auth.SignupRequest) error {
	if validators.IsJSON(r) {
		return validators.DecodeJSONBody(r, req)
	}
	if err := r.ParseForm(); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid form submission")
	}
	req.Username = strings.TrimSpace(formValue(r, "user", "username"))
	req.Email = strings.TrimSpace(formValue(r, "user", "email"))
	req.Password = formValue(r, "user", "password")
	return validators.Validate(req)
}

func decodeLogin(r *http.Request, req *auth.LoginRequest) error {
	if validators.IsJSON(r) {
		return validators.DecodeJSONBody(r, req)
	}
	if err := r.ParseForm(); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid form submission")
	}
	req.Username = strings.TrimSpace(formValue(r, "user", "username"))
	req.Password = formValue(r, "user", "password")
	req.Redirect = strings.TrimSpace(r.PostFormValue("redirect"))
	return validators.Validate(req)
}

func setSessionCookie(w http.ResponseWriter, r *http.Request, cfg config.HTTPConfig, sess *auth.Session) {
	if sess == nil {
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     validators.AccessTokenCookie,
		Value:    sess.AccessToken,
		Path:     "/",
		Expires:  sess.ExpiresAt,
		MaxAge:   int(time.Until(sess.ExpiresAt).Seconds()),
		HttpOnly: true,
		Secure:   cfg.SecureCookies || responses.IsSecure(r),
		SameSite: http.SameSiteLaxMode,
	})
}

func clearSessionCookie(w http.ResponseWriter, r *http.Request, cfg config.HTTPConfig) {
	http.SetCookie(w, &http.Cookie{
		Name:     validators.AccessTokenCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   cfg.SecureCookies || responses.IsSecure(r),
		SameSite: http.SameSiteLaxMode,
	})
}
