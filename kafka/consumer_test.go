package kafka

import (
	"errors"
	"testing"

	"newsgraph/logger"
)

// fakeSubmitter records submissions and can fail on demand.
type fakeSubmitter struct {
	topics []string
	feeds  []string
	urls   []string
	err    error
}

func (f *fakeSubmitter) SubmitTopic(topic string, _ int) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.topics = append(f.topics, topic)
	return "job-1", nil
}

func (f *fakeSubmitter) SubmitFeed(feedURL string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.feeds = append(f.feeds, feedURL)
	return "job-2", nil
}

func (f *fakeSubmitter) SubmitURL(rawURL string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.urls = append(f.urls, rawURL)
	return "job-3", nil
}

func newTestConsumer(sub Submitter) *Consumer {
	return &Consumer{submitter: sub, log: logger.NewNop()}
}

func TestHandleDispatchesByKind(t *testing.T) {
	sub := &fakeSubmitter{}
	c := newTestConsumer(sub)

	tests := []struct {
		raw  string
		want *[]string
	}{
		{`{"kind":"topic","value":"semiconductors","max_items":10}`, &sub.topics},
		{`{"kind":"rss","value":"https://a.example/feed.xml"}`, &sub.feeds},
		{`{"kind":"url","value":"https://a.example/story"}`, &sub.urls},
	}
	for _, tt := range tests {
		mark, err := c.handle([]byte(tt.raw))
		if err != nil || !mark {
			t.Fatalf("handle(%s) = %v, %v", tt.raw, mark, err)
		}
	}
	if len(sub.topics) != 1 || len(sub.feeds) != 1 || len(sub.urls) != 1 {
		t.Errorf("submissions = %v / %v / %v", sub.topics, sub.feeds, sub.urls)
	}
}

func TestHandleDropsBadMessages(t *testing.T) {
	sub := &fakeSubmitter{}
	c := newTestConsumer(sub)

	for _, raw := range []string{
		`not json`,
		`{"kind":"topic","value":"  "}`,
		`{"kind":"mystery","value":"x"}`,
	} {
		mark, err := c.handle([]byte(raw))
		if err != nil {
			t.Fatalf("handle(%s) err = %v, want drop without error", raw, err)
		}
		if !mark {
			t.Errorf("handle(%s) should mark bad messages to skip them", raw)
		}
	}
	if len(sub.topics)+len(sub.feeds)+len(sub.urls) != 0 {
		t.Errorf("bad messages were submitted")
	}
}

func TestHandleRetainsMessageOnSubmissionFailure(t *testing.T) {
	sub := &fakeSubmitter{err: errors.New("job store down")}
	c := newTestConsumer(sub)

	mark, err := c.handle([]byte(`{"kind":"url","value":"https://a.example/story"}`))
	if err == nil {
		t.Fatal("expected submission error to surface")
	}
	if mark {
		t.Error("failed submission must not be marked, so it can retry")
	}
}
