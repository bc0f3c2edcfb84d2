package graph

// Config holds the knobs for graph construction. It is treated as immutable
// once handed to a Builder so tests can run different configs side by side.
type Config struct {
	// Blacklist holds upper-cased entity names never shown in a graph
	// (feed sources, protocol noise, boilerplate).
	Blacklist map[string]bool

	// PreferredTypes get a scoring boost when deciding aboutness.
	PreferredTypes map[string]bool

	// RelatedDocMinShared is the minimum shared-entity count before two
	// documents get a "related" edge.
	RelatedDocMinShared int

	// MaxNodes and MaxEdges cap the returned graph.
	MaxNodes int
	MaxEdges int

	// MaxDocs bounds the candidate document set before any node work.
	MaxDocs int

	// LabelMaxLen is the character budget for document node labels.
	LabelMaxLen int
}

// DefaultConfig returns the production configuration.
func DefaultConfig() Config {
	return Config{
		Blacklist: map[string]bool{
			"GOOGLE NEWS": true,
			"RSS":         true,
			"HTTP":        true,
			"HTTPS":       true,
			"WWW":         true,
		},
		PreferredTypes: map[string]bool{
			"ORG":     true,
			"PRODUCT": true,
			"GPE":     true,
		},
		RelatedDocMinShared: 3,
		MaxNodes:            250,
		MaxEdges:            1200,
		MaxDocs:             200,
		LabelMaxLen:         60,
	}
}
