package models

// All returns every model in foreign key order, for sqlite AutoMigrate.
func All() []any {
	return []any{&User{}, &Listing{}, &Review{}, &WishlistItem{}}
}
