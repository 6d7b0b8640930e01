package service

// DefaultUpstreamCategory is used for labels without a mapping.
const DefaultUpstreamCategory = "general"

// Categories lists the user-facing labels accepted by /articles, in display order.
var Categories = []string{
	"Tech",
	"Politics",
	"Finance",
	"Health",
	"Sports",
	"Entertainment",
}

// the provider has no politics category, so it maps to general
var categoryMap = map[string]string{
	"Tech":          "technology",
	"Politics":      "general",
	"Finance":       "business",
	"Health":        "health",
	"Sports":        "sports",
	"Entertainment": "entertainment",
}

// IsCategory reports whether label is in the whitelist. Matching is exact.
func IsCategory(label string) bool {
	_, ok := categoryMap[label]
	return ok
}

// UpstreamCategory maps a label to the provider's category token.
func UpstreamCategory(label string) string {
	if c, ok := categoryMap[label]; ok {
		return c
	}
	return DefaultUpstreamCategory
}

// SortOrders accepted by the search endpoint.
var SortOrders = []string{"relevancy", "popularity", "publishedAt"}

// DefaultSortBy is applied when a search does not name an order.
const DefaultSortBy = "publishedAt"

// IsSortOrder reports whether s is a sort order the provider understands.
func IsSortOrder(s string) bool {
	for _, o := range SortOrders {
		if o == s {
			return true
		}
	}
	return false
}
