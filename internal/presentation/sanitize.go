package presentation

import (
	"html"
	"net/url"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

const (
	// LinkTarget opens evidence links in a new browsing context
	LinkTarget = "_blank"
	// LinkRel keeps the referrer and the opener handle away from the linked page
	LinkRel = "noopener noreferrer"
)

var stripPolicy = bluemonday.StrictPolicy()

// PlainText strips any markup from service-provided text. The result is
// unescaped plain text; escaping is left to whichever renderer prints it.
func PlainText(s string) string {
	return strings.TrimSpace(html.UnescapeString(stripPolicy.Sanitize(s)))
}

// SafeLink returns the URL when it is an absolute http(s) link, otherwise "".
func SafeLink(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return ""
	}
	switch strings.ToLower(u.Scheme) {
	case "http", "https":
		return u.String()
	default:
		return ""
	}
}
