package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Review belongs to exactly one listing and is removed with it.
type Review struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	ListingID uuid.UUID `gorm:"column:listing_id;type:uuid;not null;index:reviews_listing_id_idx"`
	AuthorID  uuid.UUID `gorm:"column:author_id;type:uuid;not null"`
	Body      string    `gorm:"column:body;not null"`
	Rating    int       `gorm:"column:rating;not null"`
	Author    *User     `gorm:"foreignKey:AuthorID"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (r *Review) BeforeCreate(*gorm.DB) error {
	id, err := newID(r.ID)
	if err != nil {
		return err
	}
	r.ID = id
	return nil
}
