package controllers

import (
	"net/http"

	"github.com/angelmondragon/wanderlust-backend/api/middleware"
	"github.com/angelmondragon/wanderlust-backend/api/responses"
	"github.com/angelmondragon/wanderlust-backend/internal/wishlist"
	pkgerrors "github.com/angelmondragon/wanderlust-backend/pkg/errors"
	"github.com/angelmondragon/wanderlust-backend/pkg/logger"
	"github.com/angelmondragon/wanderlust-backend/pkg/types"
)

const msgWishlistUnavailable = "Unable to fetch your wishlist. Please try again."

type wishlistPage struct {
	Listings []wishlist.LikedListing `json:"listings"`
}

// WishlistToggle flips the caller's like on a listing and answers with the
// card contract: {success, isLiked} or {success:false, message}.
func WishlistToggle(svc wishlist.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		userID, err := requireUser(r)
		if err != nil {
			responses.WriteJSON(w, http.StatusUnauthorized, types.ToggleFailure{Message: middleware.MsgLoginRequired})
			return
		}
		listingID, ok := uuidParam(r, "id")
		if !ok {
			responses.WriteJSON(w, http.StatusNotFound, types.ToggleFailure{Message: wishlist.MsgListingNotFound})
			return
		}

		res, err := svc.Toggle(ctx, userID, listingID)
		if err != nil {
			responses.LogError(ctx, logg, err)
			switch pkgerrors.CodeOf(err) {
			case pkgerrors.CodeNotFound:
				responses.WriteJSON(w, http.StatusNotFound, types.ToggleFailure{Message: wishlist.MsgListingNotFound})
			case pkgerrors.CodeUnauthorized:
				responses.WriteJSON(w, http.StatusUnauthorized, types.ToggleFailure{Message: middleware.MsgLoginRequired})
			default:
				responses.WriteJSON(w, http.StatusInternalServerError, types.ToggleFailure{Message: wishlist.MsgToggleFailed})
			}
			return
		}

		responses.WriteJSON(w, http.StatusOK, types.ToggleResponse{Success: true, IsLiked: res.IsLiked})
	}
}

// WishlistIndex lists the caller's liked listings, most recent first.
func WishlistIndex(svc wishlist.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := requireUser(r)
		if err != nil {
			redirectOnError(w, r, logg, err, failureTargets{})
			return
		}

		items, err := svc.List(r.Context(), userID)
		if err != nil {
			redirectOnError(w, r, logg, err, failureTargets{fallback: listingsPath, generic: msgWishlistUnavailable})
			return
		}
		if items == nil {
			items = []wishlist.LikedListing{}
		}

		responses.WritePage(w, r, wishlistPage{Listings: items})
	}
}
