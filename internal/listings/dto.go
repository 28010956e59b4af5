package listings

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/wanderlust-backend/pkg/db/models"
	"github.com/angelmondragon/wanderlust-backend/pkg/enums"
	"github.com/angelmondragon/wanderlust-backend/pkg/types"
)

const editThumbnailWidth = 250

// ListingSummary is one card on the index page.
type ListingSummary struct {
	ID       uuid.UUID              `json:"id"`
	Title    string                 `json:"title"`
	Image    *types.Image           `json:"image,omitempty"`
	Price    decimal.Decimal        `json:"price"`
	Location string                 `json:"location"`
	Country  string                 `json:"country"`
	Category *enums.ListingCategory `json:"category,omitempty"`
	IsLiked  bool                   `json:"is_liked"`
}

// UserSummary exposes the public part of a user.
type UserSummary struct {
	ID       uuid.UUID `json:"id"`
	Username string    `json:"username"`
}

// ReviewDTO is a review as shown on the listing page.
type ReviewDTO struct {
	ID        uuid.UUID    `json:"id"`
	Body      string       `json:"body"`
	Rating    int          `json:"rating"`
	Author    *UserSummary `json:"author,omitempty"`
	CreatedAt time.Time    `json:"created_at"`
}

// ListingDetail is the full listing with owner and reviews.
type ListingDetail struct {
	ID          uuid.UUID              `json:"id"`
	Title       string                 `json:"title"`
	Description string                 `json:"description"`
	Image       *types.Image           `json:"image,omitempty"`
	Price       decimal.Decimal        `json:"price"`
	Location    string                 `json:"location"`
	Country     string                 `json:"country"`
	Category    *enums.ListingCategory `json:"category,omitempty"`
	Geometry    types.PointGeometry    `json:"geometry"`
	Owner       UserSummary            `json:"owner"`
	Reviews     []ReviewDTO            `json:"reviews"`
	IsLiked     bool                   `json:"is_liked"`
	CreatedAt   time.Time              `json:"created_at"`
	UpdatedAt   time.Time              `json:"updated_at"`
}

// EditForm backs the edit page.
type EditForm struct {
	Listing      ListingDetail           `json:"listing"`
	ThumbnailURL string                  `json:"thumbnail_url,omitempty"`
	Categories   []enums.ListingCategory `json:"categories"`
}

// Filters echoes the normalized query back to the index page.
type Filters struct {
	Search   string `json:"search,omitempty"`
	Category string `json:"category,omitempty"`
	Sort     string `json:"sort,omitempty"`
}

// IndexPage is the listing index view-model.
type IndexPage struct {
	Listings   []ListingSummary        `json:"listings"`
	Categories []enums.ListingCategory `json:"categories"`
	Filters    Filters                 `json:"filters"`
}

func summaryFromModel(m models.Listing) ListingSummary {
	return ListingSummary{
		ID:       m.ID,
		Title:    m.Title,
		Image:    m.Image,
		Price:    m.Price,
		Location: m.Location,
		Country:  m.Country,
		Category: m.Category,
	}
}

func detailFromModel(m *models.Listing) ListingDetail {
	detail := ListingDetail{
		ID:          m.ID,
		Title:       m.Title,
		Description: m.Description,
		Image:       m.Image,
		Price:       m.Price,
		Location:    m.Location,
		Country:     m.Country,
		Category:    m.Category,
		Geometry:    m.Geometry,
		Owner:       UserSummary{ID: m.OwnerID},
		Reviews:     make([]ReviewDTO, 0, len(m.Reviews)),
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
	if m.Owner != nil {
		detail.Owner.Username = m.Owner.Username
	}
	for _, r := range m.Reviews {
		dto := ReviewDTO{ID: r.ID, Body: r.Body, Rating: r.Rating, CreatedAt: r.CreatedAt}
		if r.Author != nil {
			dto.Author = &UserSummary{ID: r.Author.ID, Username: r.Author.Username}
		}
		detail.Reviews = append(detail.Reviews, dto)
	}
	return detail
}
