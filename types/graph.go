package types

// GraphNode is a derived view node, rebuilt on every graph query.
// IDs use the "doc:<uuid>" and "ent:<UPPERCASED NAME>" formats.
type GraphNode struct {
	ID          string `json:"id"`
	Label       string `json:"label"`
	Type        string `json:"type"` // "doc" | "entity"
	URL         string `json:"url,omitempty"`
	Source      string `json:"source,omitempty"`
	PublishedAt string `json:"published_at,omitempty"`
	Mentions    int    `json:"mentions,omitempty"`
	EntityType  string `json:"entity_type,omitempty"`
}

// GraphEdge connects two node IDs. Labels: "about", "mentions", "related".
type GraphEdge struct {
	Source string `json:"source"`
	Target string `json:"target"`
	Label  string `json:"label"`
}

// Graph is the bounded node/edge set returned by a graph query.
type Graph struct {
	Nodes []GraphNode `json:"nodes"`
	Edges []GraphEdge `json:"edges"`
}
