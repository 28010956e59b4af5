package controllers

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/angelmondragon/wanderlust-backend/api/middleware"
	"github.com/angelmondragon/wanderlust-backend/api/responses"
	"github.com/angelmondragon/wanderlust-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/wanderlust-backend/pkg/errors"
	"github.com/angelmondragon/wanderlust-backend/pkg/logger"
)

const (
	msgGenericError = "An error occurred. Please try again."

	listingsPath = "/listings"
)

// failureTargets says where each class of failure sends the browser. Empty
// targets fall back to fallback.
type failureTargets struct {
	form      string
	forbidden string
	missing   string
	fallback  string
	// generic replaces the message of internal and dependency failures.
	generic string
}

// redirectOnError flashes a typed error and redirects according to its code.
func redirectOnError(w http.ResponseWriter, r *http.Request, logg *logger.Logger, err error, to failureTargets) {
	responses.LogError(r.Context(), logg, err)

	target := to.fallback
	msg := responses.PublicMessage(err)

	switch pkgerrors.CodeOf(err) {
	case pkgerrors.CodeValidation, pkgerrors.CodeConflict, pkgerrors.CodeRateLimit:
		target = pick(to.form, to.fallback)
	case pkgerrors.CodeForbidden:
		target = pick(to.forbidden, to.fallback)
	case pkgerrors.CodeNotFound:
		target = pick(to.missing, to.fallback)
	case pkgerrors.CodeUnauthorized:
		target = "/login?redirect=" + url.QueryEscape(r.URL.RequestURI())
	default:
		msg = pick(to.generic, msgGenericError)
	}

	responses.Redirect(w, r, pick(target, listingsPath), enums.FlashError, msg)
}

func pick(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func requireUser(r *http.Request) (uuid.UUID, error) {
	id, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeUnauthorized, middleware.MsgLoginRequired)
	}
	return id, nil
}

// viewer returns the signed-in user or uuid.Nil for anonymous visitors.
func viewer(r *http.Request) uuid.UUID {
	id, _ := middleware.UserIDFromContext(r.Context())
	return id
}

func uuidParam(r *http.Request, name string) (uuid.UUID, bool) {
	raw := strings.TrimSpace(chi.URLParam(r, name))
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}

func listingPath(id uuid.UUID) string {
	return fmt.Sprintf("%s/%s", listingsPath, id)
}

func editListingPath(id uuid.UUID) string {
	return listingPath(id) + "/edit"
}

// formValue reads a flat ("username") or nested ("user[username]") field.
// Values are returned untrimmed so passwords survive intact.
func formValue(r *http.Request, scope, field string) string {
	if v := r.PostFormValue(scope + "[" + field + "]"); v != "" {
		return v
	}
	return r.PostFormValue(field)
}
