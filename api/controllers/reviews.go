package controllers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/angelmondragon/wanderlust-backend/api/responses"
	"github.com/angelmondragon/wanderlust-backend/api/validators"
	"github.com/angelmondragon/wanderlust-backend/internal/listings"
	"github.com/angelmondragon/wanderlust-backend/internal/reviews"
	"github.com/angelmondragon/wanderlust-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/wanderlust-backend/pkg/errors"
	"github.com/angelmondragon/wanderlust-backend/pkg/logger"
)

const (
	msgReviewCreated      = "New review created!"
	msgReviewDeleted      = "Review deleted!"
	msgReviewCreateFailed = "An error occurred while adding your review."
	msgReviewDeleteFailed = "An error occurred while deleting the review."

	maxReviewLen = 2000
)

type reviewPayload struct {
	Comment string `json:"comment"`
	Body    string `json:"body"`
	Rating  int    `json:"rating"`
}

// ReviewCreate adds a review to a listing.
func ReviewCreate(svc reviews.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := requireUser(r)
		if err != nil {
			redirectOnError(w, r, logg, err, failureTargets{})
			return
		}
		listingID, ok := uuidParam(r, "id")
		if !ok {
			responses.Redirect(w, r, listingsPath, enums.FlashError, listings.MsgNotFound)
			return
		}

		targets := failureTargets{
			form:     listingPath(listingID),
			missing:  listingsPath,
			fallback: listingPath(listingID),
			generic:  msgReviewCreateFailed,
		}

		input, err := decodeReview(r)
		if err != nil {
			redirectOnError(w, r, logg, err, targets)
			return
		}

		if _, err := svc.Create(r.Context(), userID, listingID, input); err != nil {
			redirectOnError(w, r, logg, err, targets)
			return
		}

		responses.Redirect(w, r, listingPath(listingID), enums.FlashSuccess, msgReviewCreated)
	}
}

// ReviewDelete removes a review written by the caller.
func ReviewDelete(svc reviews.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := requireUser(r)
		if err != nil {
			redirectOnError(w, r, logg, err, failureTargets{})
			return
		}
		listingID, ok := uuidParam(r, "id")
		if !ok {
			responses.Redirect(w, r, listingsPath, enums.FlashError, listings.MsgNotFound)
			return
		}
		reviewID, ok := uuidParam(r, "reviewID")
		if !ok {
			responses.Redirect(w, r, listingPath(listingID), enums.FlashError, reviews.MsgReviewNotFound)
			return
		}

		if err := svc.Delete(r.Context(), userID, listingID, reviewID); err != nil {
			redirectOnError(w, r, logg, err, failureTargets{
				fallback: listingPath(listingID),
				generic:  msgReviewDeleteFailed,
			})
			return
		}

		responses.Redirect(w, r, listingPath(listingID), enums.FlashSuccess, msgReviewDeleted)
	}
}

// decodeReview accepts JSON or a form posted as review[comment]/review[rating].
func decodeReview(r *http.Request) (reviews.CreateInput, error) {
	var payload reviewPayload
	if validators.IsJSON(r) {
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			return reviews.CreateInput{}, err
		}
	} else {
		if err := r.ParseForm(); err != nil {
			return reviews.CreateInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid form submission")
		}
		payload.Comment = formValue(r, "review", "comment")
		payload.Body = formValue(r, "review", "body")
		if raw := strings.TrimSpace(formValue(r, "review", "rating")); raw != "" {
			rating, err := strconv.Atoi(raw)
			if err != nil {
				return reviews.CreateInput{}, pkgerrors.New(pkgerrors.CodeValidation, "Rating must be between 1 and 5.")
			}
			payload.Rating = rating
		}
	}

	body := payload.Body
	if body == "" {
		body = payload.Comment
	}
	return reviews.CreateInput{
		Body:   validators.SanitizeString(body, maxReviewLen),
		Rating: payload.Rating,
	}, nil
}
