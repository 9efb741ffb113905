package domain

import "strings"

// WebPage is the title and description scraped from a remote post.
type WebPage struct {
	Title       string
	Description string
}

// titleEntities are the only entities decoded in titles. Anything else is
// left as written.
var titleEntities = strings.NewReplacer(
	"&amp;", "&",
	"&lt;", "<",
	"&gt;", ">",
	"&#39;", "'",
	"&quot;", `"`,
	"&#x3D;", "=",
	"&#x27;", "'",
)

// UnescapeTitle decodes the small set of HTML entities that appear in post titles.
// Decoding is a single pass: "&amp;lt;" becomes "&lt;", not "<".
func UnescapeTitle(s string) string {
	return titleEntities.Replace(s)
}
