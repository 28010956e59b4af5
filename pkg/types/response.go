package types

// Flash is a one-shot message carried across a redirect.
type Flash struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

type SuccessEnvelope struct {
	Data  any    `json:"data"`
	Flash *Flash `json:"flash,omitempty"`
}

type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

// ToggleResponse is the wishlist toggle contract consumed by the listing cards.
type ToggleResponse struct {
	Success bool `json:"success"`
	IsLiked bool `json:"isLiked"`
}

type ToggleFailure struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}
