package config

import "time"

// Fetch Constants
const (
	// DefaultHTTPTimeout bounds every outbound fetch so one slow upstream
	// cannot stall a whole ingestion job
	DefaultHTTPTimeout = 20 * time.Second

	// FetchUserAgent is a browser-like UA; many publishers block obvious bots
	FetchUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) " +
		"AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36"

	// MaxItemsCap is the hard upper bound on items returned per topic fetch
	MaxItemsCap = 60
)

// Ingestion Constants
const (
	// MinArticleLen is the minimum extracted-body length to accept full text
	MinArticleLen = 300

	// MinSummaryLen is the lower floor applied to the feed summary fallback
	MinSummaryLen = 100

	// MaxEmbedChars limits how much document text feeds the embedder
	MaxEmbedChars = 4000

	// RelationMention is the relation label written for extracted entities
	RelationMention = "MENTION"
)

// Job Constants
const (
	// JobTTL is how long job records are retained for polling
	JobTTL = 24 * time.Hour
)
