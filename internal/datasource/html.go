package datasource

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// cleanHTML strips HTML tags and entities from a string using goquery.
// Plain text is returned trimmed without parsing.
func cleanHTML(s string) string {
	if !strings.ContainsAny(s, "<&") {
		return strings.TrimSpace(s)
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader("<body>" + s + "</body>"))
	if err != nil {
		return strings.TrimSpace(s)
	}
	return strings.Join(strings.Fields(doc.Text()), " ")
}
