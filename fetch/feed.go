package fetch

import (
	"fmt"
	"strings"

	"newsgraph/types"

	"github.com/mmcdole/gofeed"
)

const rssAccept = "application/rss+xml, application/xml;q=0.9, */*;q=0.8"

// FetchFeed retrieves and parses an RSS/Atom feed. It tries a direct GET with
// feed headers first, then falls back to gofeed's own URL fetch path. On total
// failure it returns an empty slice and a diagnostic encoding both reasons.
func (c *Client) FetchFeed(feedURL string) ([]types.FeedItem, string) {
	body, _, err := c.get(feedURL, rssAccept)
	if err == nil {
		feed, perr := gofeed.NewParser().ParseString(string(body))
		if perr == nil {
			items := feedItems(feed)
			return items, fmt.Sprintf("direct-get ok [%d]", len(items))
		}
		err = perr
	}
	firstDiag := err.Error()
	c.log.Warn("feed fetch via direct GET failed", "url", feedURL, "err", firstDiag)

	// The fallback must share the timeout-bounded client; gofeed's default
	// client would wait on a slow upstream forever.
	parser := gofeed.NewParser()
	parser.Client = c.httpClient
	feed, err2 := parser.ParseURL(feedURL)
	if err2 == nil {
		items := feedItems(feed)
		return items, fmt.Sprintf("gofeed-fetch ok [%d]", len(items))
	}
	c.log.Warn("feed fetch via gofeed failed", "url", feedURL, "err", err2)

	return nil, fmt.Sprintf("both failed: %s; %s", firstDiag, err2.Error())
}

// feedItems normalizes gofeed items, skipping entries without a usable link.
func feedItems(feed *gofeed.Feed) []types.FeedItem {
	items := make([]types.FeedItem, 0, len(feed.Items))
	for _, it := range feed.Items {
		link := it.Link
		if link == "" {
			link = it.GUID
		}
		if strings.TrimSpace(link) == "" {
			continue
		}

		title := clean(it.Title)
		if title == "" {
			title = link
		}

		summary := it.Description
		if summary == "" {
			summary = it.Content
		}

		published := it.Published
		publishedAt := it.PublishedParsed
		if published == "" {
			published = it.Updated
			publishedAt = it.UpdatedParsed
		}

		items = append(items, types.FeedItem{
			URL:         clean(link),
			Title:       title,
			Summary:     clean(summary),
			Published:   clean(published),
			PublishedAt: publishedAt,
		})
	}
	return items
}
