package wishlist

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/angelmondragon/wanderlust-backend/pkg/db/models"
)

// Repository encapsulates wishlist persistence.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a wishlist repository bound to the provided gorm DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

// LockUser takes a row lock on the user so concurrent toggles by the same
// user run one after another. Returns gorm.ErrRecordNotFound for unknown users.
func (r *Repository) LockUser(ctx context.Context, userID uuid.UUID) error {
	var user models.User
	return r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Select("id").
		First(&user, "id = ?", userID).Error
}

// ListingExists reports whether the listing is present.
func (r *Repository) ListingExists(ctx context.Context, listingID uuid.UUID) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.Listing{}).
		Where("id = ?", listingID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// RemoveItem deletes the like if it exists and reports whether a row went away.
func (r *Repository) RemoveItem(ctx context.Context, userID, listingID uuid.UUID) (bool, error) {
	res := r.db.WithContext(ctx).
		Where("user_id = ? AND listing_id = ?", userID, listingID).
		Delete(&models.WishlistItem{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// AddItem inserts a like and ignores duplicates.
func (r *Repository) AddItem(ctx context.Context, userID, listingID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "listing_id"}},
			DoNothing: true,
		}).
		Create(&models.WishlistItem{UserID: userID, ListingID: listingID}).Error
}

// IsLiked reports membership of one listing.
func (r *Repository) IsLiked(ctx context.Context, userID, listingID uuid.UUID) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.WishlistItem{}).
		Where("user_id = ? AND listing_id = ?", userID, listingID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// LikedSet returns the subset of listingIDs the user has liked.
func (r *Repository) LikedSet(ctx context.Context, userID uuid.UUID, listingIDs []uuid.UUID) (map[uuid.UUID]bool, error) {
	liked := make(map[uuid.UUID]bool)
	if userID == uuid.Nil || len(listingIDs) == 0 {
		return liked, nil
	}

	var ids []uuid.UUID
	if err := r.db.WithContext(ctx).
		Model(&models.WishlistItem{}).
		Where("user_id = ? AND listing_id IN ?", userID, listingIDs).
		Pluck("listing_id", &ids).Error; err != nil {
		return nil, err
	}
	for _, id := range ids {
		liked[id] = true
	}
	return liked, nil
}

// ListItems returns the user's liked listings, most recently liked first.
func (r *Repository) ListItems(ctx context.Context, userID uuid.UUID) ([]LikedListing, error) {
	var records []likedListingRecord
	err := r.db.WithContext(ctx).
		Table("wishlist_items wi").
		Select("l.id AS listing_id, l.title, l.image, l.price, l.location, l.country, l.category, wi.created_at AS liked_at").
		Joins("JOIN listings l ON l.id = wi.listing_id").
		Where("wi.user_id = ?", userID).
		Order("wi.created_at DESC").
		Order("wi.id DESC").
		Scan(&records).Error
	if err != nil {
		return nil, err
	}

	items := make([]LikedListing, 0, len(records))
	for _, record := range records {
		items = append(items, record.toDTO())
	}
	return items, nil
}
