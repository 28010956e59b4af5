package listings

import (
	"strings"

	"gorm.io/gorm"

	"github.com/angelmondragon/wanderlust-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/wanderlust-backend/pkg/errors"
)

// ListQuery is the normalized form of the index page parameters.
//
// A non-empty Search wins over Category: the category is neither validated
// nor applied when a search term is present.
type ListQuery struct {
	Search   string
	Category *enums.ListingCategory
	Sort     enums.ListingSort
}

// ParseListQuery normalizes raw request values. Only an unknown category in the
// non-search branch is an error; unknown sort keys fall back to store order.
func ParseListQuery(search, category, sort string) (ListQuery, error) {
	q := ListQuery{Search: strings.TrimSpace(search)}

	if s, ok := enums.ParseListingSort(strings.TrimSpace(sort)); ok {
		q.Sort = s
	}

	if q.Search != "" {
		return q, nil
	}

	category = strings.TrimSpace(category)
	if category == "" {
		return q, nil
	}
	parsed, err := enums.ParseListingCategory(category)
	if err != nil {
		return ListQuery{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "Invalid category. Please try again.")
	}
	q.Category = &parsed
	return q, nil
}

// Filters returns the values echoed to the page.
func (q ListQuery) Filters() Filters {
	f := Filters{Search: q.Search, Sort: q.Sort.String()}
	if q.Category != nil {
		f.Category = q.Category.String()
	}
	return f
}

// Scope applies the filter and ordering to a query on listings.
func (q ListQuery) Scope() func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		switch {
		case q.Search != "":
			pattern := "%" + escapeLike(strings.ToLower(q.Search)) + "%"
			db = db.Where(
				`(LOWER(listings.title) LIKE ? ESCAPE '\' OR LOWER(listings.location) LIKE ? ESCAPE '\' OR LOWER(listings.country) LIKE ? ESCAPE '\' OR LOWER(COALESCE(listings.category, '')) LIKE ? ESCAPE '\')`,
				pattern, pattern, pattern, pattern,
			)
		case q.Category != nil:
			db = db.Where("listings.category = ?", q.Category.String())
		}

		switch q.Sort {
		case enums.ListingSortPriceLow:
			db = db.Order("listings.price ASC")
		case enums.ListingSortPriceHigh:
			db = db.Order("listings.price DESC")
		case enums.ListingSortNewest:
			db = db.Order("listings.id DESC")
		}
		return db
	}
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// escapeLike makes user input match literally inside a LIKE pattern.
func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
