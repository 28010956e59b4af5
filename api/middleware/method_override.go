package middleware

import (
	"net/http"
	"strings"
)

const methodOverrideParam = "_method"

// MethodOverride lets HTML forms, which can only POST, reach PUT and DELETE
// routes via ?_method=PUT.
func MethodOverride(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			switch m := strings.ToUpper(strings.TrimSpace(r.URL.Query().Get(methodOverrideParam))); m {
			case http.MethodPut, http.MethodDelete:
				r.Method = m
			}
		}
		next.ServeHTTP(w, r)
	})
}
