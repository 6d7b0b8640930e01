package models

// Article is the simplified article shape served on every endpoint.
type Article struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Summary     string `json:"summary"`
	Image       string `json:"image"`
	Category    string `json:"category"`
	URL         string `json:"url"`
	PublishedAt string `json:"publishedAt"`
	Author      string `json:"author"`
	Source      string `json:"source"`
}

// RawSource is the nested source object of an upstream record.
type RawSource struct {
	ID   *string `json:"id"`
	Name *string `json:"name"`
}

// RawArticle is a record as returned by the news provider. Every field may be null.
type RawArticle struct {
	Source      *RawSource `json:"source"`
	Author      *string    `json:"author"`
	Title       *string    `json:"title"`
	Description *string    `json:"description"`
	URL         *string    `json:"url"`
	URLToImage  *string    `json:"urlToImage"`
	PublishedAt *string    `json:"publishedAt"`
	Content     *string    `json:"content"`
}
