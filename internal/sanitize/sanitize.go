// Package sanitize holds the input cleaning helpers applied at the trust
// boundary: shopper-entered text, search queries, and email addresses.
package sanitize

import (
	"regexp"
	"strings"
)

var (
	htmlTags     = regexp.MustCompile(`<[^>]*>?`)
	queryAllowed = regexp.MustCompile(`[^\w\s.'-]`)
)

var entityReplacer = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&#039;",
)

// Text strips markup and escapes the remaining HTML-significant characters.
func Text(input string) string {
	if input == "" {
		return ""
	}
	return entityReplacer.Replace(htmlTags.ReplaceAllString(input, ""))
}

// SearchQuery reduces a query to alphanumerics, spaces, apostrophes,
// hyphens and periods, trimmed and capped at 100 characters.
func SearchQuery(query string) string {
	if query == "" {
		return ""
	}
	q := strings.TrimSpace(queryAllowed.ReplaceAllString(query, ""))
	if len(q) > 100 {
		q = q[:100]
	}
	return q
}

// Email strips markup, lowercases, and caps at the RFC 5321 maximum.
func Email(email string) string {
	if email == "" {
		return ""
	}
	e := strings.ToLower(strings.TrimSpace(htmlTags.ReplaceAllString(email, "")))
	if len(e) > 254 {
		e = e[:254]
	}
	return e
}
