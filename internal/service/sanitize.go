package service

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var (
	plainTextPolicy   = bluemonday.StrictPolicy()
	descriptionPolicy = bluemonday.UGCPolicy()
)

// sanitizeText strips all markup and returns plain text.
func sanitizeText(s string) string {
	return strings.TrimSpace(html.UnescapeString(plainTextPolicy.Sanitize(s)))
}

// sanitizeDescription keeps basic formatting and drops scripts, handlers and unsafe links.
func sanitizeDescription(s string) string {
	return strings.TrimSpace(descriptionPolicy.Sanitize(s))
}
