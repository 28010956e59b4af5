package enums

// ListingSort enumerates the orderings the listing index understands.
type ListingSort string

const (
	ListingSortPriceLow  ListingSort = "price_low"
	ListingSortPriceHigh ListingSort = "price_high"
	ListingSortNewest    ListingSort = "newest"
)

var validListingSorts = []ListingSort{
	ListingSortPriceLow,
	ListingSortPriceHigh,
	ListingSortNewest,
}

func (s ListingSort) String() string {
	return string(s)
}

func (s ListingSort) IsValid() bool {
	for _, candidate := range validListingSorts {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseListingSort never fails: unknown values fall back to the store's
// default order, reported as ok=false.
func ParseListingSort(value string) (ListingSort, bool) {
	for _, candidate := range validListingSorts {
		if string(candidate) == value {
			return candidate, true
		}
	}
	return "", false
}
