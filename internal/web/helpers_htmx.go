package web

import (
	"net/http"
	"net/url"
	"strings"
)

func isHTMX(r *http.Request) bool {
	return strings.ToLower(r.Header.Get("HX-Request")) == "true"
}

// htmxTarget is the id of the element an htmx request swaps into.
func htmxTarget(r *http.Request) string {
	return strings.TrimSpace(r.Header.Get("HX-Target"))
}

// safeReturnTo accepts only local paths so forms cannot redirect off-site.
func safeReturnTo(value, fallback string) string {
	value = strings.TrimSpace(value)
	if value == "" || !strings.HasPrefix(value, "/") || strings.HasPrefix(value, "//") || strings.HasPrefix(value, "/\\") {
		return fallback
	}
	u, err := url.Parse(value)
	if err != nil || u.Scheme != "" || u.Host != "" {
		return fallback
	}
	return u.RequestURI()
}

func redirectWithNotice(w http.ResponseWriter, r *http.Request, target, notice string, extra url.Values) {
	u, err := url.Parse(target)
	if err != nil {
		u = &url.URL{Path: "/"}
	}
	query := u.Query()
	query.Set("notice", notice)
	for key, values := range extra {
		for _, v := range values {
			query.Set(key, v)
		}
	}
	u.RawQuery = query.Encode()
	http.Redirect(w, r, u.RequestURI(), http.StatusSeeOther)
}
