package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"newsgraph/graph"
	"newsgraph/ingest"
	"newsgraph/jobs"
	"newsgraph/nlp"
	"newsgraph/store"
	"newsgraph/types"

	"github.com/gin-gonic/gin"
)

// fakeFetcher serves canned feeds and articles to the ingestion service.
type fakeFetcher struct {
	topic    types.TopicResult
	items    []types.FeedItem
	feedDiag string
	pages    map[string]types.ArticlePage
}

func (f *fakeFetcher) FetchTopic(string, int) types.TopicResult { return f.topic }
func (f *fakeFetcher) FetchFeed(string) ([]types.FeedItem, string) {
	return f.items, f.feedDiag
}
func (f *fakeFetcher) FetchArticle(rawURL string) types.ArticlePage { return f.pages[rawURL] }

var apiDBSeq int

var errTest = errors.New("index down")

func newTestRouter(t *testing.T, fetcher *fakeFetcher) (*gin.Engine, *store.Store, jobs.Store) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	apiDBSeq++
	dsn := fmt.Sprintf("file:api_%s_%d?mode=memory&cache=shared",
		strings.ReplaceAll(t.Name(), "/", "_"), apiDBSeq)
	st, err := store.Open(dsn, nil)
	if err != nil {
		t.Fatalf("store.Open: %v", err)
	}

	jobStore := jobs.NewMemoryStore()
	pipeline := ingest.NewPipeline(fetcher, nlp.NewHeuristicExtractor(), nil, st, nil, nil, nil)
	svc := ingest.NewService(fetcher, pipeline, jobStore, nil)
	builder := graph.NewBuilder(st, graph.DefaultConfig(), nil)

	r := NewRouter(Deps{Ingest: svc, Jobs: jobStore, Graph: builder, Store: st})
	return r, st, jobStore
}

func doJSON(t *testing.T, r *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal request: %v", err)
		}
		reader = bytes.NewReader(b)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func pollJob(t *testing.T, r *gin.Engine, jobID string) types.JobRecord {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		w := doJSON(t, r, http.MethodGet, "/api/jobs/"+jobID, nil)
		if w.Code == http.StatusOK {
			var rec types.JobRecord
			if err := json.Unmarshal(w.Body.Bytes(), &rec); err != nil {
				t.Fatalf("unmarshal job: %v", err)
			}
			if rec.Status == types.JobDone || rec.Status == types.JobError {
				return rec
			}
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("job %s did not resolve", jobID)
	return types.JobRecord{}
}

func TestHealth(t *testing.T) {
	r, _, _ := newTestRouter(t, &fakeFetcher{})
	w := doJSON(t, r, http.MethodGet, "/api/health", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
}

func TestIngestRSSEndToEnd(t *testing.T) {
	article := strings.Repeat("Foxconn opens a new plant in India. ", 20)
	fetcher := &fakeFetcher{
		items:    []types.FeedItem{{URL: "https://a.example/1", Title: "Foxconn plant"}},
		feedDiag: "direct-get ok [1]",
		pages: map[string]types.ArticlePage{
			"https://a.example/1": {Title: "Foxconn plant", Text: article},
		},
	}
	r, st, _ := newTestRouter(t, fetcher)

	w := doJSON(t, r, http.MethodPost, "/api/ingest/rss", gin.H{"rss_url": "https://a.example/feed.xml"})
	if w.Code != http.StatusAccepted {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	var resp struct {
		JobID string `json:"job_id"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil || resp.JobID == "" {
		t.Fatalf("bad submit response: %s", w.Body.String())
	}

	rec := pollJob(t, r, resp.JobID)
	if rec.Status != types.JobDone {
		t.Fatalf("job = %+v", rec)
	}
	if rec.Result == nil || rec.Result.Counters.Saved != 1 {
		t.Fatalf("result = %+v", rec.Result)
	}

	counts, err := st.TableCounts(context.Background())
	if err != nil {
		t.Fatalf("TableCounts: %v", err)
	}
	if counts.Documents != 1 || counts.Entities == 0 {
		t.Errorf("counts = %+v", counts)
	}
}

func TestIngestValidation(t *testing.T) {
	r, _, _ := newTestRouter(t, &fakeFetcher{})

	tests := []struct {
		path string
		body gin.H
	}{
		{"/api/ingest/topic", gin.H{"topic": "   "}},
		{"/api/ingest/topic", gin.H{}},
		{"/api/ingest/rss", gin.H{"rss_url": "not-a-url"}},
		{"/api/ingest/url", gin.H{"url": "ftp://a.example/file"}},
	}
	for _, tt := range tests {
		if w := doJSON(t, r, http.MethodPost, tt.path, tt.body); w.Code != http.StatusBadRequest {
			t.Errorf("POST %s %v: status = %d, want 400", tt.path, tt.body, w.Code)
		}
	}
}

func TestJobNotFound(t *testing.T) {
	r, _, _ := newTestRouter(t, &fakeFetcher{})
	if w := doJSON(t, r, http.MethodGet, "/api/jobs/unknown", nil); w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", w.Code)
	}
}

func TestGraphExpand(t *testing.T) {
	r, st, _ := newTestRouter(t, &fakeFetcher{})

	now := time.Now().UTC()
	docID, err := st.UpsertDocument(context.Background(), &store.Document{
		URL:         "https://a.example/1",
		Title:       "Tata expands Foxconn plant",
		PublishedAt: &now,
		Text:        "Tata and Foxconn announced an expansion.",
	})
	if err != nil {
		t.Fatalf("UpsertDocument: %v", err)
	}
	if err := st.SaveExtraction(context.Background(), docID, []store.EntityInput{
		{Name: "Tata", Type: "ORG"}, {Name: "Foxconn", Type: "ORG"},
	}, "MENTION"); err != nil {
		t.Fatalf("SaveExtraction: %v", err)
	}

	w := doJSON(t, r, http.MethodPost, "/api/graph/expand", gin.H{"window_days": 7})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}

	var g types.Graph
	if err := json.Unmarshal(w.Body.Bytes(), &g); err != nil {
		t.Fatalf("unmarshal graph: %v", err)
	}
	if len(g.Nodes) != 3 { // 1 doc + 2 entities
		t.Fatalf("nodes = %+v", g.Nodes)
	}
	ids := make(map[string]bool)
	for _, n := range g.Nodes {
		ids[n.ID] = true
	}
	for _, e := range g.Edges {
		if !ids[e.Source] || !ids[e.Target] {
			t.Errorf("dangling edge %s -> %s", e.Source, e.Target)
		}
	}
}

// fakeIndexCounter stands in for the document index in stats tests.
type fakeIndexCounter struct {
	n   int
	err error
}

func (f *fakeIndexCounter) Count() (int, error) { return f.n, f.err }

func TestAdminStatsIncludesIndexCount(t *testing.T) {
	gin.SetMode(gin.TestMode)

	apiDBSeq++
	dsn := fmt.Sprintf("file:api_%s_%d?mode=memory&cache=shared",
		strings.ReplaceAll(t.Name(), "/", "_"), apiDBSeq)
	st, err := store.Open(dsn, nil)
	if err != nil {
		t.Fatalf("store.Open: %v", err)
	}

	r := NewRouter(Deps{Store: st, Index: &fakeIndexCounter{n: 7}})

	w := doJSON(t, r, http.MethodGet, "/api/admin/stats", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var resp map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal stats: %v", err)
	}
	if got, ok := resp["index_documents"].(float64); !ok || int(got) != 7 {
		t.Fatalf("index_documents = %v, want 7", resp["index_documents"])
	}

	// An unreachable index degrades to table counts only.
	r = NewRouter(Deps{Store: st, Index: &fakeIndexCounter{err: errTest}})
	w = doJSON(t, r, http.MethodGet, "/api/admin/stats", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status with failing index = %d", w.Code)
	}
	resp = map[string]interface{}{}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal stats: %v", err)
	}
	if _, present := resp["index_documents"]; present {
		t.Errorf("index_documents reported despite count failure")
	}
}

func TestAdminStatsAndFlush(t *testing.T) {
	r, st, _ := newTestRouter(t, &fakeFetcher{})

	if _, err := st.UpsertDocument(context.Background(), &store.Document{URL: "https://a.example/1", Text: "x"}); err != nil {
		t.Fatalf("UpsertDocument: %v", err)
	}

	w := doJSON(t, r, http.MethodGet, "/api/admin/stats", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("stats status = %d", w.Code)
	}
	var counts store.Counts
	if err := json.Unmarshal(w.Body.Bytes(), &counts); err != nil || counts.Documents != 1 {
		t.Fatalf("counts = %+v (%v)", counts, err)
	}

	if w := doJSON(t, r, http.MethodPost, "/api/admin/flush", nil); w.Code != http.StatusOK {
		t.Fatalf("flush status = %d", w.Code)
	}

	w = doJSON(t, r, http.MethodGet, "/api/admin/stats", nil)
	if err := json.Unmarshal(w.Body.Bytes(), &counts); err != nil || counts.Documents != 0 {
		t.Fatalf("counts after flush = %+v (%v)", counts, err)
	}
}
