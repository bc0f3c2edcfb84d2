package fetch

import (
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"newsgraph/config"
	"newsgraph/logger"
)

// Provider names a topic feed source and how to build its search URL.
type Provider struct {
	Name    string
	FeedURL func(topic string) string
}

// Client retrieves feeds and articles over HTTP. Network failures never
// surface as errors; every operation degrades to an empty result plus a
// diagnostic string.
type Client struct {
	httpClient *http.Client
	providers  []Provider
	log        *logger.Logger
}

// NewClient builds a fetch client. topicSource forces a single provider
// ("google" or "bing"); anything else tries both in order.
func NewClient(timeout time.Duration, topicSource string, log *logger.Logger) *Client {
	if timeout <= 0 {
		timeout = config.DefaultHTTPTimeout
	}
	if log == nil {
		log = logger.NewNop()
	}

	google := Provider{Name: "google", FeedURL: googleNewsRSS}
	bing := Provider{Name: "bing", FeedURL: bingNewsRSS}

	var providers []Provider
	switch topicSource {
	case "google":
		providers = []Provider{google}
	case "bing":
		providers = []Provider{bing}
	default:
		providers = []Provider{google, bing}
	}

	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		providers:  providers,
		log:        log.With("component", "fetch"),
	}
}

func googleNewsRSS(topic string) string {
	q := url.QueryEscape(topic)
	return "https://news.google.com/rss/search?q=" + q + "&hl=en-US&gl=US&ceid=US:en"
}

func bingNewsRSS(topic string) string {
	q := url.QueryEscape(topic)
	return "https://www.bing.com/news/search?q=" + q + "&setlang=en&format=RSS"
}

// get performs a GET with the given Accept header and a browser-like UA,
// returning the body bytes and content type.
func (c *Client) get(rawURL, accept string) ([]byte, string, error) {
	req, err := http.NewRequest(http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, "", err
	}
	req.Header.Set("User-Agent", config.FetchUserAgent)
	req.Header.Set("Accept", accept)
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, "", &statusError{code: resp.StatusCode, url: rawURL}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", err
	}
	return body, resp.Header.Get("Content-Type"), nil
}

type statusError struct {
	code int
	url  string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("unexpected status %d fetching %s", e.code, e.url)
}
