package fetch

import (
	"bytes"
	"net/url"
	"regexp"
	"strings"

	"newsgraph/types"

	readability "github.com/go-shiori/go-readability"
)

const htmlAccept = "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8"

var (
	titleRe  = regexp.MustCompile(`(?is)<title[^>]*>(.*?)</title>`)
	scriptRe = regexp.MustCompile(`(?is)<script.*?>.*?</script>`)
	styleRe  = regexp.MustCompile(`(?is)<style.*?>.*?</style>`)
	tagRe    = regexp.MustCompile(`(?s)<[^>]+>`)
)

// FetchArticle retrieves a single article URL and extracts its main body
// text. Boilerplate removal uses readability; if that fails the HTML gets a
// crude tag-stripping pass. The call never fails outright: on total failure
// the page comes back with empty text and a diagnostic.
func (c *Client) FetchArticle(rawURL string) types.ArticlePage {
	body, contentType, err := c.get(rawURL, htmlAccept)
	if err != nil {
		c.log.Warn("article fetch failed", "url", rawURL, "err", err)
		return types.ArticlePage{Title: rawURL, Diag: "fetch failed: " + err.Error()}
	}
	if contentType != "" && !strings.Contains(contentType, "text/html") {
		return types.ArticlePage{Title: rawURL, Diag: "not html: " + contentType}
	}

	html := string(body)
	page := types.ArticlePage{Title: rawURL}

	parsed, _ := url.Parse(rawURL)
	article, rerr := readability.FromReader(bytes.NewReader(body), parsed)
	if rerr == nil && strings.TrimSpace(article.TextContent) != "" {
		page.Text = clean(article.TextContent)
		if t := clean(article.Title); t != "" {
			page.Title = t
		}
		page.Diag = "readability ok"
	} else {
		page.Text = stripTags(html)
		page.Diag = "readability failed, tag-strip fallback"
		if rerr != nil {
			c.log.Warn("readability extraction failed", "url", rawURL, "err", rerr)
		}
	}

	// Last-resort title from the <title> tag when readability had none
	if page.Title == rawURL {
		if m := titleRe.FindStringSubmatch(html); m != nil {
			if t := clean(m[1]); t != "" {
				page.Title = t
			}
		}
	}

	return page
}

// stripTags removes scripts, styles, and all markup, collapsing whitespace.
// Kept intentionally simple; it is only the fallback path.
func stripTags(html string) string {
	text := scriptRe.ReplaceAllString(html, " ")
	text = styleRe.ReplaceAllString(text, " ")
	text = tagRe.ReplaceAllString(text, " ")
	return clean(text)
}
