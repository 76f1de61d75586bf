// internal/imagesearch/query.go
package imagesearch

import (
	"strings"
)

// Filler words stripped from garment descriptions before querying.
var fillerWords = map[string]bool{
	"a": true, "an": true, "the": true, "or": true, "with": true,
	"for": true, "e.g.": true, "etc": true, "and": true, "of": true,
	"in": true, "very": true,
}

// Category-specific shopping suffixes keep results on product images
// instead of editorial photos.
var categorySuffix = map[string]string{
	"top":    "fashion clothing online shop product image",
	"bottom": "pants trousers fashion clothing online shop product image",
	"shoes":  "footwear fashion online shop product image",
}

// BuildQuery turns a free-text garment description into a targeted image
// search query for the given category (top/bottom/shoes).
func BuildQuery(description, category string) string {
	var words []string
	for _, w := range strings.Fields(description) {
		w = strings.Trim(w, "*-•")
		if w == "" || fillerWords[strings.ToLower(w)] {
			continue
		}
		words = append(words, w)
	}

	suffix, ok := categorySuffix[category]
	if !ok {
		suffix = "fashion clothing online shop product image"
	}

	return strings.TrimSpace(strings.Join(words, " ") + " " + suffix + " buy")
}

// Hosts whose images are rarely direct product shots.
var blockedHosts = []string{
	"pinterest", "youtube", "instagram", "facebook",
	"twitter", "reddit", "tumblr", "blog",
}

// usableURL reports whether a provider result looks like a product image.
func usableURL(rawURL string) bool {
	if rawURL == "" {
		return false
	}
	lower := strings.ToLower(rawURL)
	if !strings.HasPrefix(lower, "http://") && !strings.HasPrefix(lower, "https://") {
		return false
	}
	for _, bad := range blockedHosts {
		if strings.Contains(lower, bad) {
			return false
		}
	}
	return true
}
