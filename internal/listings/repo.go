package listings

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/angelmondragon/wanderlust-backend/pkg/db/models"
)

// Repository persists listings and performs the cascading delete.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

// List returns listings matching the query in the requested order.
func (r *Repository) List(ctx context.Context, q ListQuery) ([]models.Listing, error) {
	var rows []models.Listing
	if err := r.db.WithContext(ctx).
		Model(&models.Listing{}).
		Scopes(q.Scope()).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// FindByID loads the listing without associations.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Listing, error) {
	var listing models.Listing
	if err := r.db.WithContext(ctx).First(&listing, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &listing, nil
}

// FindForUpdate loads and row-locks the listing inside a transaction.
func (r *Repository) FindForUpdate(ctx context.Context, id uuid.UUID) (*models.Listing, error) {
	var listing models.Listing
	if err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&listing, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &listing, nil
}

// FindDetail loads the listing with its owner and reviews (oldest first) and
// each review's author.
func (r *Repository) FindDetail(ctx context.Context, id uuid.UUID) (*models.Listing, error) {
	var listing models.Listing
	err := r.db.WithContext(ctx).
		Preload("Owner").
		Preload("Reviews", func(db *gorm.DB) *gorm.DB {
			return db.Order("reviews.created_at ASC").Order("reviews.id ASC")
		}).
		Preload("Reviews.Author").
		First(&listing, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &listing, nil
}

// Create inserts the listing. Associations are never written through it.
func (r *Repository) Create(ctx context.Context, listing *models.Listing) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(listing).Error
}

// Save writes every column of an existing listing.
func (r *Repository) Save(ctx context.Context, listing *models.Listing) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(listing).Error
}

// DeleteCascade removes the listing's reviews, then the wishlist rows that
// point at it, then the listing itself, all in one transaction. Foreign keys
// are RESTRICT so a wrong order fails instead of orphaning rows. Returns
// gorm.ErrRecordNotFound when the listing does not exist.
func (r *Repository) DeleteCascade(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("listing_id = ?", id).Delete(&models.Review{}).Error; err != nil {
			return err
		}
		if err := tx.Where("listing_id = ?", id).Delete(&models.WishlistItem{}).Error; err != nil {
			return err
		}
		res := tx.Where("id = ?", id).Delete(&models.Listing{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}
