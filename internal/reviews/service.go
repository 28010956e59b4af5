package reviews

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/wanderlust-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/wanderlust-backend/pkg/errors"
)

const (
	MsgListingNotFound = "The listing you requested does not exist."
	MsgReviewNotFound  = "Review not found."
	MsgNotAuthor       = "You are not the author of this review!"
)

// CreateInput is a validated review submission.
type CreateInput struct {
	Body   string
	Rating int
}

// Service manages reviews on listings.
type Service interface {
	Create(ctx context.Context, authorID, listingID uuid.UUID, input CreateInput) (*models.Review, error)
	Delete(ctx context.Context, userID, listingID, reviewID uuid.UUID) error
}

type invalidator interface {
	Invalidate(ctx context.Context, id uuid.UUID) error
}

type service struct {
	repo  *Repository
	cache invalidator
}

// NewService builds the review service. cache may be nil; when set, the
// owning listing's cached detail is dropped after every change.
func NewService(repo *Repository, cache invalidator) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("review repository required")
	}
	return &service{repo: repo, cache: cache}, nil
}

func (s *service) Create(ctx context.Context, authorID, listingID uuid.UUID, input CreateInput) (*models.Review, error) {
	body := strings.TrimSpace(input.Body)
	if body == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "Review text is required.")
	}
	if input.Rating < 1 || input.Rating > 5 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "Rating must be between 1 and 5.")
	}

	exists, err := s.repo.ListingExists(ctx, listingID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "check listing")
	}
	if !exists {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, MsgListingNotFound)
	}

	review := &models.Review{ListingID: listingID, AuthorID: authorID, Body: body, Rating: input.Rating}
	if err := s.repo.Create(ctx, review); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create review")
	}
	s.invalidate(ctx, listingID)
	return review, nil
}

func (s *service) Delete(ctx context.Context, userID, listingID, reviewID uuid.UUID) error {
	review, err := s.repo.FindInListing(ctx, listingID, reviewID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.Wrap(pkgerrors.CodeNotFound, err, MsgReviewNotFound)
		}
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load review")
	}
	if review.AuthorID != userID {
		return pkgerrors.New(pkgerrors.CodeForbidden, MsgNotAuthor)
	}
	if err := s.repo.Delete(ctx, reviewID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete review")
	}
	s.invalidate(ctx, listingID)
	return nil
}

func (s *service) invalidate(ctx context.Context, listingID uuid.UUID) {
	if s.cache != nil {
		_ = s.cache.Invalidate(ctx, listingID)
	}
}
