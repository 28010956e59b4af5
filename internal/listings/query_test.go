package listings

import (
	"testing"

	"github.com/angelmondragon/wanderlust-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/wanderlust-backend/pkg/errors"
)

func TestParseListQuery(t *testing.T) {
	q, err := ParseListQuery("", "Mountains", "price_high")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if q.Category == nil || *q.Category != enums.ListingCategoryMountains {
		t.Fatalf("expected Mountains category, got %v", q.Category)
	}
	if q.Sort != enums.ListingSortPriceHigh {
		t.Fatalf("expected price_high, got %q", q.Sort)
	}

	if _, err := ParseListQuery("", "Spaceships", ""); !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error for unknown category, got %v", err)
	}

	q, err = ParseListQuery("castle", "Spaceships", "")
	if err != nil {
		t.Fatalf("unknown category must be ignored while searching: %v", err)
	}
	if q.Category != nil || q.Search != "castle" {
		t.Fatalf("unexpected query %+v", q)
	}

	q, err = ParseListQuery("   ", "", "cheapest")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if q.Search != "" || q.Sort != "" {
		t.Fatalf("blank search and unknown sort should be dropped, got %+v", q)
	}
}

func TestListQueryFilters(t *testing.T) {
	c := enums.ListingCategoryDomes
	f := ListQuery{Category: &c, Sort: enums.ListingSortNewest}.Filters()
	if f.Category != "Domes" || f.Sort != "newest" || f.Search != "" {
		t.Fatalf("unexpected filters %+v", f)
	}
}

func TestEscapeLike(t *testing.T) {
	cases := map[string]string{
		"plain":  "plain",
		"50%":    `50\%`,
		"a_b":    `a\_b`,
		`back\`:  `back\\`,
		`%_\mix`: `\%\_\\mix`,
	}
	for in, want := range cases {
		if got := escapeLike(in); got != want {
			t.Fatalf("escapeLike(%q) = %q, want %q", in, got, want)
		}
	}
}
