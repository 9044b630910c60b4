package pipeline

import (
	"regexp"
	"strings"

	"golang.org/x/net/html"
)

var htmlTagRe = regexp.MustCompile(`(?i)<\s*(html|body|head|p|div|span|br|table|li)\b`)

// looksLikeHTML is a cheap check for markup input (OCR exports arrive as
// HTML in the surrounding document workspace)
func looksLikeHTML(text string) bool {
	return strings.Contains(text, "<") && htmlTagRe.MatchString(text)
}

// StripHTML extracts visible text from HTML markup, skipping script and
// style content. Invalid markup degrades to whatever the tolerant parser
// recovers; it never errors.
func StripHTML(content string) string {
	doc, err := html.Parse(strings.NewReader(content))
	if err != nil {
		return content
	}

	var buf strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "script", "style", "noscript", "iframe":
				return
			}
		}
		if n.Type == html.TextNode {
			text := strings.TrimSpace(n.Data)
			if text != "" {
				buf.WriteString(text)
				buf.WriteString(" ")
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return strings.TrimSpace(buf.String())
}
