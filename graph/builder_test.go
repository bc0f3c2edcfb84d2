package graph

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"newsgraph/store"
	"newsgraph/types"

	"github.com/google/uuid"
)

// fakeSource feeds the builder canned documents and links.
type fakeSource struct {
	docs  []store.Document
	links map[uuid.UUID][]store.EntityLink
	err   error
}

func (f *fakeSource) RecentDocuments(_ context.Context, _ int, limit int) ([]store.Document, error) {
	if f.err != nil {
		return nil, f.err
	}
	if len(f.docs) > limit {
		return f.docs[:limit], nil
	}
	return f.docs, nil
}

func (f *fakeSource) EntitiesForDocument(_ context.Context, docID uuid.UUID) ([]store.EntityLink, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.links[docID], nil
}

func testDoc(title, text string) store.Document {
	now := time.Now().UTC()
	return store.Document{
		ID:          uuid.New(),
		URL:         "https://example.com/" + uuid.NewString(),
		Title:       title,
		Text:        text,
		PublishedAt: &now,
	}
}

func mention(name, etype string) store.EntityLink {
	return store.EntityLink{Name: name, Type: etype, Relation: "MENTION"}
}

func findEdge(edges []types.GraphEdge, source, target string) (string, bool) {
	for _, e := range edges {
		if e.Source == source && e.Target == target {
			return e.Label, true
		}
	}
	return "", false
}

func TestBuildAboutVsMentions(t *testing.T) {
	d := testDoc("Tata expands Foxconn plant", "Tata is growing. Smith commented briefly.")
	src := &fakeSource{
		docs: []store.Document{d},
		links: map[uuid.UUID][]store.EntityLink{
			d.ID: {mention("Tata", "ORG"), mention("Smith", "PERSON")},
		},
	}
	b := NewBuilder(src, DefaultConfig(), nil)

	g, err := b.Build(context.Background(), nil, 7)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	docID := "doc:" + d.ID.String()
	// Tata: in title (1.0) + ORG (0.5) + mention bonus -> about
	if label, ok := findEdge(g.Edges, docID, "ent:TATA"); !ok || label != "about" {
		t.Errorf("TATA edge = %q, %v; want about", label, ok)
	}
	// Smith: not in title, not preferred, one mention (0.1) -> mentions
	if label, ok := findEdge(g.Edges, docID, "ent:SMITH"); !ok || label != "mentions" {
		t.Errorf("SMITH edge = %q, %v; want mentions", label, ok)
	}
}

func TestBuildRelatedEdgeEmittedOnce(t *testing.T) {
	d1 := testDoc("Tata expands Foxconn plant", "Tata Foxconn India news.")
	d2 := testDoc("Foxconn opens new India site", "Foxconn India Tata supply chain.")
	shared := []store.EntityLink{
		mention("Foxconn", "ORG"), mention("Tata", "ORG"), mention("India", "GPE"),
	}
	src := &fakeSource{
		docs: []store.Document{d1, d2},
		links: map[uuid.UUID][]store.EntityLink{
			d1.ID: shared,
			d2.ID: shared,
		},
	}
	b := NewBuilder(src, DefaultConfig(), nil)

	g, err := b.Build(context.Background(), nil, 7)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	related := 0
	for _, e := range g.Edges {
		if e.Label == "related" {
			related++
			lo, hi := d1.ID.String(), d2.ID.String()
			if lo > hi {
				lo, hi = hi, lo
			}
			if e.Source != "doc:"+lo || e.Target != "doc:"+hi {
				t.Errorf("related edge %s -> %s not in canonical order", e.Source, e.Target)
			}
		}
	}
	if related != 1 {
		t.Fatalf("related edges = %d, want exactly 1", related)
	}
}

func TestBuildNoRelatedEdgeBelowThreshold(t *testing.T) {
	d1 := testDoc("Apple news", "Apple Samsung story.")
	d2 := testDoc("Samsung news", "Samsung Apple story.")
	shared := []store.EntityLink{mention("Apple", "ORG"), mention("Samsung", "ORG")}
	src := &fakeSource{
		docs:  []store.Document{d1, d2},
		links: map[uuid.UUID][]store.EntityLink{d1.ID: shared, d2.ID: shared},
	}
	b := NewBuilder(src, DefaultConfig(), nil)

	g, err := b.Build(context.Background(), nil, 7)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	for _, e := range g.Edges {
		if e.Label == "related" {
			t.Fatalf("unexpected related edge with only 2 shared entities: %s -> %s", e.Source, e.Target)
		}
	}
}

func TestBuildBlacklistAndPerDocDedup(t *testing.T) {
	d := testDoc("Markets today", "Google News aggregated this. Apple apple APPLE.")
	src := &fakeSource{
		docs: []store.Document{d},
		links: map[uuid.UUID][]store.EntityLink{
			d.ID: {
				mention("Google News", "ORG"),
				mention("Apple", "ORG"),
				mention("apple", "ORG"), // same entity, different case
			},
		},
	}
	b := NewBuilder(src, DefaultConfig(), nil)

	g, err := b.Build(context.Background(), nil, 7)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	var entIDs []string
	for _, n := range g.Nodes {
		if n.Type == "entity" {
			entIDs = append(entIDs, n.ID)
		}
	}
	if len(entIDs) != 1 || entIDs[0] != "ent:APPLE" {
		t.Fatalf("entity nodes = %v, want [ent:APPLE]", entIDs)
	}
}

func TestBuildNodeCapKeepsDocsAndDropsDanglingEdges(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxNodes = 3

	d1 := testDoc("First", "Alpha Beta Gamma text.")
	d2 := testDoc("Second", "Alpha text.")
	src := &fakeSource{
		docs: []store.Document{d1, d2},
		links: map[uuid.UUID][]store.EntityLink{
			d1.ID: {mention("Alpha", "ORG"), mention("Beta", "ORG"), mention("Gamma", "ORG")},
			d2.ID: {mention("Alpha", "ORG")},
		},
	}
	b := NewBuilder(src, cfg, nil)

	g, err := b.Build(context.Background(), nil, 7)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	if len(g.Nodes) > cfg.MaxNodes {
		t.Fatalf("nodes = %d, exceeds cap %d", len(g.Nodes), cfg.MaxNodes)
	}

	ids := make(map[string]bool, len(g.Nodes))
	docNodes := 0
	for _, n := range g.Nodes {
		ids[n.ID] = true
		if n.Type == "doc" {
			docNodes++
		}
	}
	if docNodes != 2 {
		t.Errorf("doc nodes = %d, want both kept", docNodes)
	}
	// Alpha has the highest document frequency; it is the surviving entity.
	if !ids["ent:ALPHA"] {
		t.Errorf("expected ent:ALPHA to survive the trim, nodes: %v", ids)
	}
	for _, e := range g.Edges {
		if !ids[e.Source] || !ids[e.Target] {
			t.Errorf("dangling edge %s -> %s", e.Source, e.Target)
		}
	}
}

func TestBuildSeedEntitySurvivesTrim(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxNodes = 2

	d := testDoc("First", "Alpha Zeta text.")
	src := &fakeSource{
		docs: []store.Document{d},
		links: map[uuid.UUID][]store.EntityLink{
			d.ID: {mention("Alpha", "ORG"), mention("Zeta", "ORG")},
		},
	}
	b := NewBuilder(src, cfg, nil)

	// Zeta loses the frequency tie to Alpha unless seeded.
	g, err := b.Build(context.Background(), []string{"ent:Zeta"}, 7)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	found := false
	for _, n := range g.Nodes {
		if n.ID == "ent:ZETA" {
			found = true
		}
		if n.ID == "ent:ALPHA" {
			t.Errorf("ent:ALPHA kept over seeded ent:ZETA")
		}
	}
	if !found {
		t.Fatalf("seeded entity trimmed away; nodes: %+v", g.Nodes)
	}
}

func TestBuildEdgeCapPrefersAboutAndRelated(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxEdges = 2
	cfg.RelatedDocMinShared = 2

	d1 := testDoc("Tata expands Foxconn plant", "Tata Foxconn details. Smith Jones quoted.")
	d2 := testDoc("Foxconn and Tata deal", "Foxconn Tata partnership.")
	src := &fakeSource{
		docs: []store.Document{d1, d2},
		links: map[uuid.UUID][]store.EntityLink{
			d1.ID: {
				mention("Tata", "ORG"), mention("Foxconn", "ORG"),
				mention("Smith", "PERSON"), mention("Jones", "PERSON"),
			},
			d2.ID: {mention("Tata", "ORG"), mention("Foxconn", "ORG")},
		},
	}
	b := NewBuilder(src, cfg, nil)

	g, err := b.Build(context.Background(), nil, 7)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if len(g.Edges) > cfg.MaxEdges {
		t.Fatalf("edges = %d, exceeds cap %d", len(g.Edges), cfg.MaxEdges)
	}
	for _, e := range g.Edges {
		if e.Label == "mentions" {
			t.Errorf("plain mentions edge %s -> %s kept while preferred edges were cut", e.Source, e.Target)
		}
	}
}

func TestBuildStoreErrorFailsQuery(t *testing.T) {
	src := &fakeSource{err: errors.New("db down")}
	b := NewBuilder(src, DefaultConfig(), nil)

	if _, err := b.Build(context.Background(), nil, 7); err == nil {
		t.Fatal("expected error when the store is unreachable")
	}
}

func TestDocNodeLabel(t *testing.T) {
	b := NewBuilder(&fakeSource{}, DefaultConfig(), nil)

	long := strings.Repeat("x", 80)
	d := testDoc(long, "")
	node := b.docNode(d)
	if got := len([]rune(node.Label)); got != 61 { // 60 runes + ellipsis
		t.Errorf("label rune length = %d, want 61", got)
	}
	if !strings.HasSuffix(node.Label, "…") {
		t.Errorf("truncated label %q missing ellipsis", node.Label)
	}

	d2 := testDoc("", "")
	if node := b.docNode(d2); node.Label != d2.URL {
		t.Errorf("untitled doc label = %q, want URL fallback", node.Label)
	}
}

func TestMentionCount(t *testing.T) {
	tests := []struct {
		text, name string
		want       int
	}{
		{"Tata and TATA and tata", "Tata", 3},
		{"no occurrences here", "Tata", 1}, // floor of one for linked entities
		{"", "", 0},
	}
	for _, tt := range tests {
		if got := mentionCount(tt.text, tt.name); got != tt.want {
			t.Errorf("mentionCount(%q, %q) = %d, want %d", tt.text, tt.name, got, tt.want)
		}
	}
}
