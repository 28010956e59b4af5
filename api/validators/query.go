package validators

import (
	"net/http"

	"github.com/angelmondragon/wanderlust-backend/internal/listings"
)

const maxSearchLen = 100

// ParseListingQuery reads search, category and sort from the index URL. The
// search term is sanitized and capped before it reaches the store.
func ParseListingQuery(r *http.Request) (listings.ListQuery, error) {
	params := r.URL.Query()
	return listings.ParseListQuery(
		SanitizeString(params.Get("search"), maxSearchLen),
		SanitizeString(params.Get("category"), 0),
		SanitizeString(params.Get("sort"), 0),
	)
}
