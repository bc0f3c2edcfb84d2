package fetch

import (
	"newsgraph/config"
	"newsgraph/types"
)

// FetchTopic queries the configured news providers for a topic, stopping at
// the first provider that returns at least one item. Every attempt is
// recorded regardless of outcome.
func (c *Client) FetchTopic(topic string, maxItems int) types.TopicResult {
	if maxItems <= 0 {
		maxItems = 30
	}
	if maxItems > config.MaxItemsCap {
		maxItems = config.MaxItemsCap
	}

	attempts := make([]types.FetchAttempt, 0, len(c.providers))
	for _, p := range c.providers {
		feedURL := p.FeedURL(topic)
		c.log.Info("topic fetch attempt", "provider", p.Name, "url", feedURL)

		items, diag := c.FetchFeed(feedURL)
		attempts = append(attempts, types.FetchAttempt{Source: p.Name, Count: len(items), Diag: diag})

		if len(items) > 0 {
			if len(items) > maxItems {
				items = items[:maxItems]
			}
			for i := range items {
				items[i].Source = "topic:" + p.Name
			}
			return types.TopicResult{SourceUsed: p.Name, Attempts: attempts, Items: items}
		}
	}

	c.log.Warn("topic fetch exhausted all providers", "topic", topic, "attempts", len(attempts))
	return types.TopicResult{Attempts: attempts, Items: []types.FeedItem{}}
}
