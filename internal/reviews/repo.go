package reviews

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/wanderlust-backend/pkg/db/models"
)

// Repository persists reviews.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) Create(ctx context.Context, review *models.Review) error {
	return r.db.WithContext(ctx).Omit("Author").Create(review).Error
}

// FindInListing loads a review only if it belongs to listingID.
func (r *Repository) FindInListing(ctx context.Context, listingID, reviewID uuid.UUID) (*models.Review, error) {
	var review models.Review
	if err := r.db.WithContext(ctx).
		Where("id = ? AND listing_id = ?", reviewID, listingID).
		First(&review).Error; err != nil {
		return nil, err
	}
	return &review, nil
}

func (r *Repository) Delete(ctx context.Context, reviewID uuid.UUID) error {
	return r.db.WithContext(ctx).Where("id = ?", reviewID).Delete(&models.Review{}).Error
}

// ListingExists reports whether the listing is present.
func (r *Repository) ListingExists(ctx context.Context, listingID uuid.UUID) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Listing{}).Where("id = ?", listingID).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}
