package wishlist

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/wanderlust-backend/pkg/enums"
	"github.com/angelmondragon/wanderlust-backend/pkg/types"
)

const (
	MsgListingNotFound = "Listing not found"
	MsgToggleFailed    = "Error updating wishlist"
)

// ToggleResult reports the membership after a toggle.
type ToggleResult struct {
	IsLiked bool
}

// LikedListing is a wishlist entry joined with its listing.
type LikedListing struct {
	ID       uuid.UUID              `json:"id"`
	Title    string                 `json:"title"`
	Image    *types.Image           `json:"image,omitempty"`
	Price    decimal.Decimal        `json:"price"`
	Location string                 `json:"location"`
	Country  string                 `json:"country"`
	Category *enums.ListingCategory `json:"category,omitempty"`
	IsLiked  bool                   `json:"is_liked"`
	LikedAt  time.Time              `json:"liked_at"`
}

type likedListingRecord struct {
	ListingID uuid.UUID
	Title     string
	Image     *types.Image
	Price     decimal.Decimal
	Location  string
	Country   string
	Category  *enums.ListingCategory
	LikedAt   time.Time
}

func (r likedListingRecord) toDTO() LikedListing {
	return LikedListing{
		ID:       r.ListingID,
		Title:    r.Title,
		Image:    r.Image,
		Price:    r.Price,
		Location: r.Location,
		Country:  r.Country,
		Category: r.Category,
		IsLiked:  true,
		LikedAt:  r.LikedAt,
	}
}
