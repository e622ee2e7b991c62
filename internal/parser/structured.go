package parser

import (
	"encoding/json"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// metaKeywords are the name/property substrings worth keeping from
// <meta> tags. Everything else on a catalog page is ad-tech noise.
var metaKeywords = []string{"description", "keywords", "title", "og:", "product"}

// Metadata pulls page-level structured data: interesting meta tags,
// the document title, and the first parseable JSON-LD block. The map
// is empty, never nil, when the page carries none of these.
func Metadata(doc *goquery.Document) map[string]any {
	meta := make(map[string]any)

	doc.Find("meta").Each(func(_ int, sel *goquery.Selection) {
		key, ok := sel.Attr("name")
		if !ok {
			key, ok = sel.Attr("property")
		}
		if !ok || key == "" {
			return
		}
		content, ok := sel.Attr("content")
		if !ok || content == "" {
			return
		}
		lower := strings.ToLower(key)
		for _, kw := range metaKeywords {
			if strings.Contains(lower, kw) {
				meta[key] = content
				break
			}
		}
	})

	if title := strings.TrimSpace(doc.Find("title").First().Text()); title != "" {
		meta["page_title"] = title
	}

	if ld := firstJSONLD(doc); ld != nil {
		meta["json_ld"] = ld
	}

	return meta
}

// firstJSONLD returns the first script[type="application/ld+json"]
// block that parses, or nil. Malformed blocks are skipped.
func firstJSONLD(doc *goquery.Document) any {
	var result any
	doc.Find(`script[type="application/ld+json"]`).EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		var parsed any
		if err := json.Unmarshal([]byte(sel.Text()), &parsed); err != nil {
			return true
		}
		result = parsed
		return false
	})
	return result
}
