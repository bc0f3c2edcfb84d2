package graph

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"newsgraph/logger"
	"newsgraph/store"
	"newsgraph/types"

	"github.com/google/uuid"
)

// Source is the read-only slice of the store the builder needs. It keeps the
// engine testable against hand-written fakes.
type Source interface {
	RecentDocuments(ctx context.Context, windowDays int, limit int) ([]store.Document, error)
	EntitiesForDocument(ctx context.Context, docID uuid.UUID) ([]store.EntityLink, error)
}

// Builder derives a bounded, ranked node/edge graph from stored documents and
// their entity links. Every call recomputes from scratch; nothing is cached
// between queries, and the builder performs reads only.
type Builder struct {
	cfg    Config
	source Source
	log    *logger.Logger
}

// NewBuilder wires a graph builder to a document source.
func NewBuilder(source Source, cfg Config, log *logger.Logger) *Builder {
	if log == nil {
		log = logger.NewNop()
	}
	return &Builder{cfg: cfg, source: source, log: log.With("component", "graph")}
}

// docEntity is one surviving (document, entity) pair with per-doc stats.
type docEntity struct {
	key     string // upper-cased canonical name; also node id suffix
	name    string // display form
	etype   string
	count   int  // mentions inside this document
	inTitle bool // entity name appears in the document title
}

// Build selects documents inside the trailing window, scores their entities,
// and returns a graph trimmed to the configured node and edge caps. Seed ids
// ("doc:<id>" / "ent:<NAME>") keep their entity nodes through trimming.
// If the store is unreachable the whole query fails; a partial graph is worse
// than none.
func (b *Builder) Build(ctx context.Context, seedIDs []string, windowDays int) (types.Graph, error) {
	if windowDays <= 0 {
		windowDays = 14
	}

	docs, err := b.source.RecentDocuments(ctx, windowDays, b.cfg.MaxDocs)
	if err != nil {
		return types.Graph{}, fmt.Errorf("graph query failed: %w", err)
	}

	seedEnts := make(map[string]bool)
	for _, sid := range seedIDs {
		if name, ok := strings.CutPrefix(sid, "ent:"); ok {
			seedEnts[strings.ToUpper(name)] = true
		}
	}

	// Collect filtered entities per document plus global frequencies.
	perDoc := make(map[uuid.UUID][]docEntity, len(docs))
	docFreq := make(map[string]int)      // docs containing the entity
	totalMentions := make(map[string]int) // mentions across all docs
	display := make(map[string]string)
	entType := make(map[string]string)

	for _, d := range docs {
		links, err := b.source.EntitiesForDocument(ctx, d.ID)
		if err != nil {
			return types.Graph{}, fmt.Errorf("graph query failed: %w", err)
		}

		seen := make(map[string]bool, len(links))
		ents := make([]docEntity, 0, len(links))
		for _, link := range links {
			name := strings.TrimSpace(link.Name)
			if name == "" {
				continue
			}
			key := strings.ToUpper(name)
			if b.cfg.Blacklist[key] || seen[key] {
				continue
			}
			seen[key] = true

			ents = append(ents, docEntity{
				key:     key,
				name:    name,
				etype:   strings.ToUpper(link.Type),
				count:   mentionCount(d.Text, name),
				inTitle: containsFold(d.Title, name),
			})

			docFreq[key]++
			if _, ok := display[key]; !ok {
				display[key] = name
			}
			if entType[key] == "" {
				entType[key] = strings.ToUpper(link.Type)
			}
		}
		perDoc[d.ID] = ents
		for _, e := range ents {
			totalMentions[e.key] += e.count
		}
	}

	nodes, edges := b.assemble(docs, perDoc, display, entType, totalMentions)
	edges = append(edges, b.relatedEdges(docs, perDoc)...)

	nodes, edges = b.trimNodes(nodes, edges, docFreq, seedEnts)
	edges = b.trimEdges(edges)

	b.log.Debug("graph built",
		"docs", len(docs), "nodes", len(nodes), "edges", len(edges), "window_days", windowDays)
	return types.Graph{Nodes: nodes, Edges: edges}, nil
}

// assemble emits document nodes, entity nodes, and doc->entity edges labeled
// by aboutness. Entity nodes come out in deterministic (sorted) order.
func (b *Builder) assemble(
	docs []store.Document,
	perDoc map[uuid.UUID][]docEntity,
	display map[string]string,
	entType map[string]string,
	totalMentions map[string]int,
) ([]types.GraphNode, []types.GraphEdge) {
	nodes := make([]types.GraphNode, 0, len(docs)+len(display))
	for _, d := range docs {
		nodes = append(nodes, b.docNode(d))
	}

	entKeys := make([]string, 0, len(display))
	for key := range display {
		entKeys = append(entKeys, key)
	}
	sort.Strings(entKeys)
	for _, key := range entKeys {
		nodes = append(nodes, types.GraphNode{
			ID:         "ent:" + key,
			Label:      display[key],
			Type:       "entity",
			Mentions:   totalMentions[key],
			EntityType: entType[key],
		})
	}

	var edges []types.GraphEdge
	for _, d := range docs {
		docNodeID := "doc:" + d.ID.String()
		for _, e := range perDoc[d.ID] {
			label := "mentions"
			if b.score(e) >= 1.0 {
				label = "about"
			}
			edges = append(edges, types.GraphEdge{
				Source: docNodeID,
				Target: "ent:" + e.key,
				Label:  label,
			})
		}
	}
	return nodes, edges
}

// score rates how central an entity is to one document:
// +1.0 title presence, +0.5 preferred type, +0.1 per mention capped at 0.7.
func (b *Builder) score(e docEntity) float64 {
	score := 0.0
	if e.inTitle {
		score += 1.0
	}
	if b.cfg.PreferredTypes[e.etype] {
		score += 0.5
	}
	count := e.count
	if count < 0 {
		count = 0
	}
	bonus := 0.1 * float64(count)
	if bonus > 0.7 {
		bonus = 0.7
	}
	return score + bonus
}

// relatedEdges emits one "related" edge per unordered document pair sharing
// at least RelatedDocMinShared entities. Pair keys are canonicalized by
// sorting the two ids so iteration order cannot double count.
func (b *Builder) relatedEdges(docs []store.Document, perDoc map[uuid.UUID][]docEntity) []types.GraphEdge {
	entToDocs := make(map[string][]string)
	for _, d := range docs {
		id := d.ID.String()
		for _, e := range perDoc[d.ID] {
			entToDocs[e.key] = append(entToDocs[e.key], id)
		}
	}

	shared := make(map[[2]string]int)
	for _, dlist := range entToDocs {
		if len(dlist) < 2 {
			continue
		}
		for i := 0; i < len(dlist); i++ {
			for j := i + 1; j < len(dlist); j++ {
				a, c := dlist[i], dlist[j]
				if a > c {
					a, c = c, a
				}
				shared[[2]string{a, c}]++
			}
		}
	}

	pairs := make([][2]string, 0, len(shared))
	for pair, n := range shared {
		if n >= b.cfg.RelatedDocMinShared {
			pairs = append(pairs, pair)
		}
	}
	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i][0] != pairs[j][0] {
			return pairs[i][0] < pairs[j][0]
		}
		return pairs[i][1] < pairs[j][1]
	})

	edges := make([]types.GraphEdge, 0, len(pairs))
	for _, pair := range pairs {
		edges = append(edges, types.GraphEdge{
			Source: "doc:" + pair[0],
			Target: "doc:" + pair[1],
			Label:  "related",
		})
	}
	return edges
}

// trimNodes enforces MaxNodes: document nodes are the visualization anchor
// and stay; entities are ranked by global document frequency (seeds first)
// and cut to the remaining budget. Edges touching removed nodes are dropped.
func (b *Builder) trimNodes(
	nodes []types.GraphNode,
	edges []types.GraphEdge,
	docFreq map[string]int,
	seedEnts map[string]bool,
) ([]types.GraphNode, []types.GraphEdge) {
	if len(nodes) <= b.cfg.MaxNodes {
		return nodes, edges
	}

	var docNodes, entNodes []types.GraphNode
	for _, n := range nodes {
		if n.Type == "doc" {
			docNodes = append(docNodes, n)
		} else {
			entNodes = append(entNodes, n)
		}
	}

	if len(docNodes) >= b.cfg.MaxNodes {
		docNodes = docNodes[:b.cfg.MaxNodes]
		entNodes = nil
	} else {
		sort.SliceStable(entNodes, func(i, j int) bool {
			ki := strings.TrimPrefix(entNodes[i].ID, "ent:")
			kj := strings.TrimPrefix(entNodes[j].ID, "ent:")
			if seedEnts[ki] != seedEnts[kj] {
				return seedEnts[ki]
			}
			if docFreq[ki] != docFreq[kj] {
				return docFreq[ki] > docFreq[kj]
			}
			return ki < kj
		})
		budget := b.cfg.MaxNodes - len(docNodes)
		if len(entNodes) > budget {
			entNodes = entNodes[:budget]
		}
	}

	kept := append(docNodes, entNodes...)
	keptIDs := make(map[string]bool, len(kept))
	for _, n := range kept {
		keptIDs[n.ID] = true
	}

	filtered := edges[:0]
	for _, e := range edges {
		if keptIDs[e.Source] && keptIDs[e.Target] {
			filtered = append(filtered, e)
		}
	}
	return kept, filtered
}

// trimEdges enforces MaxEdges, preferring about and related edges over plain
// mentions. If the preferred set alone busts the cap it is truncated.
func (b *Builder) trimEdges(edges []types.GraphEdge) []types.GraphEdge {
	if len(edges) <= b.cfg.MaxEdges {
		return edges
	}

	var preferred, mentions []types.GraphEdge
	for _, e := range edges {
		if e.Label == "mentions" {
			mentions = append(mentions, e)
		} else {
			preferred = append(preferred, e)
		}
	}

	if len(preferred) >= b.cfg.MaxEdges {
		return preferred[:b.cfg.MaxEdges]
	}
	remainder := b.cfg.MaxEdges - len(preferred)
	if len(mentions) > remainder {
		mentions = mentions[:remainder]
	}
	return append(preferred, mentions...)
}

// docNode builds the node for one document: truncated title, or the URL when
// there is no title at all.
func (b *Builder) docNode(d store.Document) types.GraphNode {
	label := truncateLabel(d.Title, b.cfg.LabelMaxLen)
	if label == "" {
		label = d.URL
	}

	var published string
	if d.PublishedAt != nil {
		published = d.PublishedAt.UTC().Format(time.RFC3339)
	}
	return types.GraphNode{
		ID:          "doc:" + d.ID.String(),
		Label:       label,
		Type:        "doc",
		URL:         d.URL,
		Source:      d.Source,
		PublishedAt: published,
	}
}

// truncateLabel cuts at max runes, appending an ellipsis when cut.
func truncateLabel(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max]) + "…"
}

// mentionCount counts case-insensitive occurrences of name in text, with a
// floor of one: a linked entity was mentioned at least once even when the
// stored text no longer shows it.
func mentionCount(text, name string) int {
	if name == "" {
		return 0
	}
	n := strings.Count(strings.ToUpper(text), strings.ToUpper(name))
	if n < 1 {
		n = 1
	}
	return n
}

func containsFold(haystack, needle string) bool {
	if needle == "" {
		return false
	}
	return strings.Contains(strings.ToUpper(haystack), strings.ToUpper(needle))
}
