package listings

import (
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/angelmondragon/wanderlust-backend/pkg/db/models"
	"github.com/angelmondragon/wanderlust-backend/pkg/enums"
	"github.com/angelmondragon/wanderlust-backend/pkg/types"
)

func mustCreateUser(t *testing.T, db *gorm.DB, username string) *models.User {
	t.Helper()
	user := &models.User{
		Username:     username,
		Email:        fmt.Sprintf("%s_%s@example.com", username, uuid.NewString()[:8]),
		PasswordHash: "hash",
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("create user: %v", err)
	}
	return user
}

type listingSeed struct {
	title    string
	location string
	country  string
	price    int64
	category enums.ListingCategory
}

func mustCreateListing(t *testing.T, db *gorm.DB, ownerID uuid.UUID, seed listingSeed) *models.Listing {
	t.Helper()
	listing := &models.Listing{
		Title:    seed.title,
		Location: seed.location,
		Country:  seed.country,
		Price:    decimal.NewFromInt(seed.price),
		OwnerID:  ownerID,
		Geometry: types.NewPoint(10, 20),
	}
	if seed.category != "" {
		c := seed.category
		listing.Category = &c
	}
	if err := db.Create(listing).Error; err != nil {
		t.Fatalf("create listing: %v", err)
	}
	return listing
}

func mustCreateReview(t *testing.T, db *gorm.DB, listingID, authorID uuid.UUID, body string) *models.Review {
	t.Helper()
	review := &models.Review{ListingID: listingID, AuthorID: authorID, Body: body, Rating: 4}
	if err := db.Create(review).Error; err != nil {
		t.Fatalf("create review: %v", err)
	}
	return review
}

func titles(rows []models.Listing) []string {
	out := make([]string, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.Title)
	}
	return out
}
