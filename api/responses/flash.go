package responses

import (
	"encoding/base64"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/angelmondragon/wanderlust-backend/pkg/enums"
	"github.com/angelmondragon/wanderlust-backend/pkg/types"
)

const FlashCookie = "flash"

// SetFlash stores a one-shot message that the next page render pops.
func SetFlash(w http.ResponseWriter, r *http.Request, kind enums.FlashKind, message string) {
	if message == "" {
		return
	}
	raw, err := json.Marshal(types.Flash{Type: kind.String(), Message: message})
	if err != nil {
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     FlashCookie,
		Value:    base64.RawURLEncoding.EncodeToString(raw),
		Path:     "/",
		HttpOnly: true,
		Secure:   IsSecure(r),
		SameSite: http.SameSiteLaxMode,
	})
}

// PopFlash reads the pending flash and clears the cookie. A tampered or
// missing cookie yields nil.
func PopFlash(w http.ResponseWriter, r *http.Request) *types.Flash {
	c, err := r.Cookie(FlashCookie)
	if err != nil || c.Value == "" {
		return nil
	}
	http.SetCookie(w, &http.Cookie{
		Name:     FlashCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   IsSecure(r),
		SameSite: http.SameSiteLaxMode,
	})

	raw, err := base64.RawURLEncoding.DecodeString(c.Value)
	if err != nil {
		return nil
	}
	var f types.Flash
	if err := json.Unmarshal(raw, &f); err != nil || f.Message == "" {
		return nil
	}
	return &f
}

// Redirect sets a flash (when message is non-empty) and issues a 303 so the
// browser follows with a GET.
func Redirect(w http.ResponseWriter, r *http.Request, target string, kind enums.FlashKind, message string) {
	SetFlash(w, r, kind, message)
	http.Redirect(w, r, target, http.StatusSeeOther)
}

// WritePage renders a page view model together with any pending flash.
func WritePage(w http.ResponseWriter, r *http.Request, data any) {
	flash := PopFlash(w, r)
	writeJSON(w, http.StatusOK, types.SuccessEnvelope{Data: data, Flash: flash})
}

// IsSecure reports whether the request arrived over TLS, directly or via a
// terminating proxy.
func IsSecure(r *http.Request) bool {
	if r == nil {
		return false
	}
	if r.TLS != nil {
		return true
	}
	return strings.EqualFold(r.Header.Get("X-Forwarded-Proto"), "https")
}

// SafeRedirect keeps post-login redirects on this host.
func SafeRedirect(target, fallback string) string {
	target = strings.TrimSpace(target)
	if target == "" || !strings.HasPrefix(target, "/") ||
		strings.HasPrefix(target, "//") || strings.HasPrefix(target, "/\\") {
		return fallback
	}
	return target
}
