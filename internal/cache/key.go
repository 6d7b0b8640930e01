package cache

import (
	"net/url"
	"strconv"
)

// Kind identifies the endpoint a cache entry belongs to.
type Kind string

const (
	KindArticles Kind = "articles"
	KindSearch   Kind = "search"
	KindTrending Kind = "trending"
)

// AllCategories is the category label used in keys when no filter was given.
const AllCategories = "all"

// Key is the structured identity of a cached response. Only the fields
// relevant to Kind take part in String.
type Key struct {
	Kind     Kind
	Category string
	Query    string
	SortBy   string
	From     string
	To       string
	Page     int
	Limit    int
}

// ArticlesKey builds the key for a headlines listing.
func ArticlesKey(category string, page, limit int) Key {
	if category == "" {
		category = AllCategories
	}
	return Key{Kind: KindArticles, Category: category, Page: page, Limit: limit}
}

// SearchKey builds the key for a search listing.
func SearchKey(query, sortBy, from, to string, page, limit int) Key {
	return Key{Kind: KindSearch, Query: query, SortBy: sortBy, From: from, To: to, Page: page, Limit: limit}
}

// TrendingKey is the single key used for the trending carousel.
func TrendingKey() Key {
	return Key{Kind: KindTrending}
}

// String serializes the key. Parameters are URL-escaped and sorted, so
// values containing separators cannot collide with other keys.
func (k Key) String() string {
	v := url.Values{}
	switch k.Kind {
	case KindArticles:
		v.Set("category", k.Category)
		v.Set("page", strconv.Itoa(k.Page))
		v.Set("limit", strconv.Itoa(k.Limit))
	case KindSearch:
		v.Set("q", k.Query)
		v.Set("sortBy", k.SortBy)
		v.Set("page", strconv.Itoa(k.Page))
		v.Set("limit", strconv.Itoa(k.Limit))
		if k.From != "" {
			v.Set("from", k.From)
		}
		if k.To != "" {
			v.Set("to", k.To)
		}
	default:
		return string(k.Kind)
	}
	return string(k.Kind) + "?" + v.Encode()
}
