package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/angelmondragon/wanderlust-backend/pkg/enums"
	"github.com/angelmondragon/wanderlust-backend/pkg/types"
)

// Listing is a property offered on the marketplace.
type Listing struct {
	ID          uuid.UUID              `gorm:"column:id;type:uuid;primaryKey"`
	Title       string                 `gorm:"column:title;not null"`
	Description string                 `gorm:"column:description;not null;default:''"`
	Image       *types.Image           `gorm:"column:image;type:jsonb"`
	Price       decimal.Decimal        `gorm:"column:price;type:numeric(12,2);not null"`
	Location    string                 `gorm:"column:location;not null;default:''"`
	Country     string                 `gorm:"column:country;not null;default:''"`
	Category    *enums.ListingCategory `gorm:"column:category"`
	OwnerID     uuid.UUID              `gorm:"column:owner_id;type:uuid;not null;index:listings_owner_id_idx"`
	Geometry    types.PointGeometry    `gorm:"column:geometry;type:jsonb;not null"`
	Owner       *User                  `gorm:"foreignKey:OwnerID"`
	Reviews     []Review               `gorm:"foreignKey:ListingID"`
	CreatedAt   time.Time              `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time              `gorm:"column:updated_at;autoUpdateTime"`
}

func (l *Listing) BeforeCreate(*gorm.DB) error {
	id, err := newID(l.ID)
	if err != nil {
		return err
	}
	l.ID = id
	return nil
}

func (l *Listing) BeforeSave(*gorm.DB) error {
	return l.Geometry.Validate()
}
