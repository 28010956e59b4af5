package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// WishlistItem links a user to a liked listing. (user_id, listing_id) is unique.
type WishlistItem struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	UserID    uuid.UUID `gorm:"column:user_id;type:uuid;not null;uniqueIndex:wishlist_items_user_listing_key"`
	ListingID uuid.UUID `gorm:"column:listing_id;type:uuid;not null;index:wishlist_items_listing_id_idx;uniqueIndex:wishlist_items_user_listing_key"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (w *WishlistItem) BeforeCreate(*gorm.DB) error {
	id, err := newID(w.ID)
	if err != nil {
		return err
	}
	w.ID = id
	return nil
}
