package controllers

import (
	"net/http"

	"github.com/angelmondragon/wanderlust-backend/api/responses"
	"github.com/angelmondragon/wanderlust-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/wanderlust-backend/pkg/errors"
	"github.com/angelmondragon/wanderlust-backend/pkg/logger"
)

const msgPageNotFound = "Page Not Found!"

type homePage struct {
	Categories []enums.ListingCategory `json:"categories"`
}

// Home sends visitors to the listing index, or renders the pending flash when
// one is set.
func Home() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if c, err := r.Cookie(responses.FlashCookie); err == nil && c.Value != "" {
			responses.WritePage(w, r, homePage{Categories: enums.ListingCategories()})
			return
		}
		http.Redirect(w, r, listingsPath, http.StatusFound)
	}
}

// NotFound answers unknown routes and unsupported methods.
func NotFound(logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeNotFound, msgPageNotFound))
	}
}
