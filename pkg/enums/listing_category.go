package enums

import "fmt"

// ListingCategory represents the closed set of categories a listing can be filed under.
type ListingCategory string

const (
	ListingCategoryTrending     ListingCategory = "Trending"
	ListingCategoryRooms        ListingCategory = "Rooms"
	ListingCategoryIconic       ListingCategory = "Iconic"
	ListingCategoryMountains    ListingCategory = "Mountains"
	ListingCategoryCastles      ListingCategory = "Castles"
	ListingCategoryAmazingPools ListingCategory = "Amazing Pools"
	ListingCategoryCamping      ListingCategory = "Camping"
	ListingCategoryFarms        ListingCategory = "Farms"
	ListingCategoryArctic       ListingCategory = "Arctic"
	ListingCategoryDomes        ListingCategory = "Domes"
	ListingCategoryBoats        ListingCategory = "Boats"
)

var validListingCategories = []ListingCategory{
	ListingCategoryTrending,
	ListingCategoryRooms,
	ListingCategoryIconic,
	ListingCategoryMountains,
	ListingCategoryCastles,
	ListingCategoryAmazingPools,
	ListingCategoryCamping,
	ListingCategoryFarms,
	ListingCategoryArctic,
	ListingCategoryDomes,
	ListingCategoryBoats,
}

// ListingCategories returns the categories in display order.
func ListingCategories() []ListingCategory {
	out := make([]ListingCategory, len(validListingCategories))
	copy(out, validListingCategories)
	return out
}

// String implements fmt.Stringer.
func (c ListingCategory) String() string {
	return string(c)
}

// IsValid reports whether the value is a known ListingCategory.
func (c ListingCategory) IsValid() bool {
	for _, candidate := range validListingCategories {
		if candidate == c {
			return true
		}
	}
	return false
}

// ParseListingCategory converts raw input into a ListingCategory. Matching is exact.
func ParseListingCategory(value string) (ListingCategory, error) {
	for _, candidate := range validListingCategories {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid listing category %q", value)
}
