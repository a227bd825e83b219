package ingestion

import (
	"regexp"
	"strings"

	md "github.com/JohannesKaufmann/html-to-markdown"
)

var htmlTagRegex = regexp.MustCompile(`<[^>]+>`)

// htmlToMarkdown normalizes an HTML fragment into markdown before parsing,
// falling back to a tag-stripped plain-text rendering if the converter
// fails or yields nothing.
func htmlToMarkdown(html, baseURL string) string {
	if html == "" {
		return ""
	}

	converter := md.NewConverter(baseURL, true, nil)
	converted, err := converter.ConvertString(html)
	if err != nil || strings.TrimSpace(converted) == "" {
		return stripHTMLTags(html)
	}
	return converted
}

func stripHTMLTags(html string) string {
	return strings.TrimSpace(htmlTagRegex.ReplaceAllString(html, ""))
}
