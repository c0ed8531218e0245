package edge

import (
	"net/http"
	"strings"
)

// Route prefixes that require an authenticated browser.
var protectedPrefixes = []string{"/dashboard", "/templates"}

const (
	unauthorizedPath = "/401"
	loginPath        = "/login"
	defaultHomePath  = "/dashboard/users"
)

// Decision is the guard's verdict for a request.
type Decision struct {
	// RedirectTo is the location to send the browser to; empty means the
	// request may proceed to the upstream.
	RedirectTo string
}

// Allowed reports whether the request may proceed.
func (d Decision) Allowed() bool { return d.RedirectTo == "" }

// Decide applies the route rules: protected prefixes need a session cookie,
// and a logged-in browser visiting the login page is sent home. The cookie's
// validity is not checked here; an invalid session fails at the API instead.
func Decide(path string, hasSessionCookie bool) Decision {
	if !hasSessionCookie {
		for _, prefix := range protectedPrefixes {
			if path == prefix || strings.HasPrefix(path, prefix+"/") {
				return Decision{RedirectTo: unauthorizedPath}
			}
		}
		return Decision{}
	}
	if path == loginPath {
		return Decision{RedirectTo: defaultHomePath}
	}
	return Decision{}
}

// CookieCandidates returns the session cookie names to look for: the
// configured name plus its dash/underscore variant, covering deployments that
// renamed the cookie either way.
func CookieCandidates(name string) []string {
	variant := ""
	switch {
	case strings.Contains(name, "_"):
		variant = strings.ReplaceAll(name, "_", "-")
	case strings.Contains(name, "-"):
		variant = strings.ReplaceAll(name, "-", "_")
	}
	if variant == "" || variant == name {
		return []string{name}
	}
	return []string{name, variant}
}

// hasSessionCookie reports whether the request carries any candidate session
// cookie with a non-empty value.
func hasSessionCookie(r *http.Request, name string) bool {
	for _, candidate := range CookieCandidates(name) {
		if c, err := r.Cookie(candidate); err == nil && c.Value != "" {
			return true
		}
	}
	return false
}
