package controllers

import (
	"net/http"

	"github.com/angelmondragon/wanderlust-backend/api/responses"
	"github.com/angelmondragon/wanderlust-backend/api/validators"
	"github.com/angelmondragon/wanderlust-backend/internal/listings"
	"github.com/angelmondragon/wanderlust-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/wanderlust-backend/pkg/errors"
	"github.com/angelmondragon/wanderlust-backend/pkg/logger"
)

const (
	msgListingsUnavailable = "Unable to fetch listings. Please try again."
	msgListingCreated      = "New listing created successfully!"
	msgListingCreateFailed = "An error occurred while creating the listing."
	msgListingUpdated      = "Listing updated successfully!"
	msgListingUpdateFailed = "An error occurred while updating the listing."
	msgListingDeleted      = "Listing deleted successfully!"
	msgListingDeleteFailed = "An error occurred while deleting the listing."

	newListingPath = "/listings/new"
)

type newListingPage struct {
	Categories []enums.ListingCategory `json:"categories"`
}

// ListingsIndex renders the filtered, sorted listing index.
func ListingsIndex(svc listings.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "listing service unavailable"))
			return
		}

		q, err := validators.ParseListingQuery(r)
		if err != nil {
			redirectOnError(w, r, logg, err, failureTargets{fallback: "/", generic: msgListingsUnavailable})
			return
		}

		page, err := svc.Index(ctx, viewer(r), q)
		if err != nil {
			redirectOnError(w, r, logg, err, failureTargets{fallback: "/", generic: msgListingsUnavailable})
			return
		}

		responses.WritePage(w, r, page)
	}
}

// ListingNewForm returns what the new-listing form needs.
func ListingNewForm() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		responses.WritePage(w, r, newListingPage{Categories: enums.ListingCategories()})
	}
}

// ListingShow renders one listing with its reviews.
func ListingShow(svc listings.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := uuidParam(r, "id")
		if !ok {
			responses.Redirect(w, r, listingsPath, enums.FlashError, listings.MsgNotFound)
			return
		}

		detail, err := svc.Get(r.Context(), viewer(r), id)
		if err != nil {
			redirectOnError(w, r, logg, err, failureTargets{fallback: listingsPath})
			return
		}

		responses.WritePage(w, r, detail)
	}
}

// ListingEditForm returns the listing and a thumbnail for its owner.
func ListingEditForm(svc listings.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := requireUser(r)
		if err != nil {
			redirectOnError(w, r, logg, err, failureTargets{})
			return
		}
		id, ok := uuidParam(r, "id")
		if !ok {
			responses.Redirect(w, r, listingsPath, enums.FlashError, listings.MsgNotFound)
			return
		}

		form, err := svc.EditForm(r.Context(), userID, id)
		if err != nil {
			redirectOnError(w, r, logg, err, failureTargets{
				forbidden: listingPath(id),
				fallback:  listingsPath,
			})
			return
		}

		responses.WritePage(w, r, form)
	}
}

// ListingCreate handles the multipart new-listing form.
func ListingCreate(svc listings.Service, maxUploadBytes int64, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := requireUser(r)
		if err != nil {
			redirectOnError(w, r, logg, err, failureTargets{})
			return
		}

		targets := failureTargets{
			form:     newListingPath,
			fallback: newListingPath,
			generic:  msgListingCreateFailed,
		}

		form, err := validators.ParseListingForm(w, r, maxUploadBytes)
		if err != nil {
			redirectOnError(w, r, logg, err, targets)
			return
		}
		input, err := form.CreateInput()
		if err != nil {
			redirectOnError(w, r, logg, err, targets)
			return
		}

		if _, err := svc.Create(r.Context(), userID, input); err != nil {
			redirectOnError(w, r, logg, err, targets)
			return
		}

		responses.Redirect(w, r, listingsPath, enums.FlashSuccess, msgListingCreated)
	}
}

// ListingUpdate handles the multipart edit form. Only submitted fields change.
func ListingUpdate(svc listings.Service, maxUploadBytes int64, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := requireUser(r)
		if err != nil {
			redirectOnError(w, r, logg, err, failureTargets{})
			return
		}
		id, ok := uuidParam(r, "id")
		if !ok {
			responses.Redirect(w, r, listingsPath, enums.FlashError, listings.MsgNotFound)
			return
		}

		targets := failureTargets{
			form:      editListingPath(id),
			forbidden: listingPath(id),
			missing:   listingsPath,
			fallback:  listingPath(id),
			generic:   msgListingUpdateFailed,
		}

		form, err := validators.ParseListingForm(w, r, maxUploadBytes)
		if err != nil {
			redirectOnError(w, r, logg, err, targets)
			return
		}

		if _, err := svc.Update(r.Context(), userID, id, form.UpdateInput()); err != nil {
			redirectOnError(w, r, logg, err, targets)
			return
		}

		responses.Redirect(w, r, listingPath(id), enums.FlashSuccess, msgListingUpdated)
	}
}

// ListingDelete removes a listing with its reviews and wishlist entries.
func ListingDelete(svc listings.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := requireUser(r)
		if err != nil {
			redirectOnError(w, r, logg, err, failureTargets{})
			return
		}
		id, ok := uuidParam(r, "id")
		if !ok {
			responses.Redirect(w, r, listingsPath, enums.FlashError, listings.MsgNotFound)
			return
		}

		if err := svc.Delete(r.Context(), userID, id); err != nil {
			redirectOnError(w, r, logg, err, failureTargets{
				forbidden: listingPath(id),
				fallback:  listingsPath,
				generic:   msgListingDeleteFailed,
			})
			return
		}

		responses.Redirect(w, r, listingsPath, enums.FlashSuccess, msgListingDeleted)
	}
}
