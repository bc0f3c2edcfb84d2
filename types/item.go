package types

import "time"

// FeedItem is the normalized form of a single feed entry or article candidate
// before it has been hydrated with full text. Published keeps the raw feed
// string for display; PublishedAt is the parsed form when the feed had one.
type FeedItem struct {
	URL         string     `json:"url"`
	Title       string     `json:"title"`
	Summary     string     `json:"summary"`
	Published   string     `json:"published"`
	PublishedAt *time.Time `json:"published_at,omitempty"`
	Source      string     `json:"source,omitempty"`
}

// FetchAttempt records one provider attempt during a topic fetch, kept
// regardless of success so callers can see why a topic came back empty.
type FetchAttempt struct {
	Source string `json:"source"`
	Count  int    `json:"count"`
	Diag   string `json:"diag"`
}

// TopicResult is the outcome of a topic fetch across the provider chain.
// SourceUsed is empty when every provider failed or returned nothing.
type TopicResult struct {
	SourceUsed string         `json:"source_used"`
	Attempts   []FetchAttempt `json:"attempts"`
	Items      []FeedItem     `json:"items"`
}

// ArticlePage is the hydrated content of a single article URL. Text is empty
// on total failure; Diag explains what happened either way.
type ArticlePage struct {
	Title string `json:"title"`
	Text  string `json:"text"`
	Diag  string `json:"diag,omitempty"`
}
