// Package routepath stores canonical HTTP paths for the site.
package routepath

import (
	"net/url"
	"strings"
)

const (
	Root           = "/"
	Health         = "/up"
	Metrics        = "/metrics"
	PagesPrefix    = "/pages/"
	PagePattern    = PagesPrefix + "{slug}"
	APIPagesPrefix = "/api/pages/"
	APIPagePattern = APIPagesPrefix + "{slug}"
	APIRoot        = "/api/pages"
)

// Page returns the route of the page with slug.
func Page(slug string) string {
	return PagesPrefix + escapeSegment(slug)
}

// APIPage returns the JSON route of the page with slug.
func APIPage(slug string) string {
	return APIPagesPrefix + escapeSegment(slug)
}

func escapeSegment(raw string) string {
	return url.PathEscape(strings.TrimSpace(raw))
}
