package wishlist

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/wanderlust-backend/pkg/db"
	pkgerrors "github.com/angelmondragon/wanderlust-backend/pkg/errors"
	"github.com/angelmondragon/wanderlust-backend/pkg/logger"
)

// Service exposes wishlist operations for signed-in users.
type Service interface {
	Toggle(ctx context.Context, userID, listingID uuid.UUID) (*ToggleResult, error)
	List(ctx context.Context, userID uuid.UUID) ([]LikedListing, error)
}

type toggleRecorder interface {
	IncWishlistToggle(result string)
}

// ServiceParams wires the wishlist service. Metrics and Logger are optional.
type ServiceParams struct {
	Repo    *Repository
	Tx      db.TxRunner
	Metrics toggleRecorder
	Logger  *logger.Logger
}

type service struct {
	repo    *Repository
	tx      db.TxRunner
	metrics toggleRecorder
	logg    *logger.Logger
}

// NewService constructs the wishlist service.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("wishlist repository required")
	}
	if params.Tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	logg := params.Logger
	if logg == nil {
		logg = logger.Nop()
	}
	return &service{repo: params.Repo, tx: params.Tx, metrics: params.Metrics, logg: logg}, nil
}

// Toggle flips membership of listingID in the user's wishlist. The lock on the
// user row plus the conditional delete/insert make the flip atomic per user.
func (s *service) Toggle(ctx context.Context, userID, listingID uuid.UUID) (*ToggleResult, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "You must be logged in first!")
	}

	var liked bool
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		if err := repo.LockUser(ctx, userID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeUnauthorized, "You must be logged in first!")
			}
			return err
		}

		exists, err := repo.ListingExists(ctx, listingID)
		if err != nil {
			return err
		}
		if !exists {
			return pkgerrors.New(pkgerrors.CodeNotFound, MsgListingNotFound)
		}

		removed, err := repo.RemoveItem(ctx, userID, listingID)
		if err != nil {
			return err
		}
		if removed {
			liked = false
			return nil
		}

		if err := repo.AddItem(ctx, userID, listingID); err != nil {
			return err
		}
		liked = true
		return nil
	})
	if err != nil {
		s.record("error")
		if typed := pkgerrors.As(err); typed != nil {
			return nil, typed
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, MsgToggleFailed)
	}

	if liked {
		s.record("added")
	} else {
		s.record("removed")
	}
	s.logg.Debug(s.logg.WithFields(ctx, map[string]any{"listing_id": listingID.String(), "is_liked": liked}), "wishlist.toggled")
	return &ToggleResult{IsLiked: liked}, nil
}

func (s *service) List(ctx context.Context, userID uuid.UUID) ([]LikedListing, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "You must be logged in first!")
	}
	items, err := s.repo.ListItems(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list wishlist")
	}
	return items, nil
}

func (s *service) record(result string) {
	if s.metrics != nil {
		s.metrics.IncWishlistToggle(result)
	}
}
