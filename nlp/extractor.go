package nlp

import (
	"regexp"
	"strings"
)

// EntityMention is one entity surfaced from document text.
type EntityMention struct {
	Name string
	Type string // ORG / PERSON / GPE / ...
}

// Extractor turns document text into entity mentions. Implementations wrap
// external NLP models; the pipeline only depends on this contract.
type Extractor interface {
	Extract(text, title string) []EntityMention
}

// maxEntities bounds the mentions returned per document.
const maxEntities = 40

// hintOrgs and hintGeos seed the heuristic extractor with names that matter
// for the manufacturing/tech news beat this service was built around.
var hintOrgs = []string{
	"Apple", "Foxconn", "Tata", "Tata Group", "Tata Electronics", "HCL", "HCLTech",
	"TSMC", "Samsung", "LG Electronics", "Eli Lilly", "Mahindra", "Embraer",
	"Nvidia", "Oppo", "Pegatron", "Wistron", "BEL", "BOE", "Sony", "Google",
	"Microsoft", "Amazon", "Meta",
}

var hintGeos = []string{
	"India", "Taiwan", "China", "United States", "U.S.", "USA", "Japan",
	"Malaysia", "Vietnam", "South Korea", "France", "Germany",
}

var stopWords = map[string]bool{
	"The": true, "A": true, "An": true, "Of": true, "For": true, "And": true,
	"In": true, "On": true, "At": true, "By": true, "From": true, "To": true,
	"With": true, "As": true, "Or": true, "But": true, "Not": true, "Is": true,
	"Are": true, "Was": true, "Be": true, "It": true, "That": true, "This": true,
	"These": true, "Those": true, "You": true, "We": true, "They": true,
}

// capitalized chunk of 1-4 tokens, e.g. "Tata Electronics"
var propnChunkRe = regexp.MustCompile(`\b([A-Z][\w&.-]+(?:\s+[A-Z][\w&.-]+){0,3})\b`)

var spaceRe = regexp.MustCompile(`\s+`)

// HeuristicExtractor finds entities without a model: keyword hints plus
// capitalized proper-noun chunks. It stands in wherever a real NER model is
// not configured and doubles as the test extractor.
type HeuristicExtractor struct{}

// NewHeuristicExtractor returns the default model-free extractor.
func NewHeuristicExtractor() *HeuristicExtractor {
	return &HeuristicExtractor{}
}

func (h *HeuristicExtractor) Extract(text, title string) []EntityMention {
	blob := normalize(title) + "\n" + normalize(text)
	low := strings.ToLower(blob)

	var out []EntityMention
	for _, kw := range hintOrgs {
		if strings.Contains(low, strings.ToLower(kw)) {
			out = append(out, EntityMention{Name: kw, Type: "ORG"})
		}
	}
	for _, kw := range hintGeos {
		if strings.Contains(low, strings.ToLower(kw)) {
			out = append(out, EntityMention{Name: kw, Type: "GPE"})
		}
	}

	geoSet := make(map[string]bool, len(hintGeos))
	for _, g := range hintGeos {
		geoSet[g] = true
	}

	for _, m := range propnChunkRe.FindAllStringSubmatch(blob, -1) {
		phrase := normalize(m[1])
		if !looksLikeEntity(phrase) {
			continue
		}
		etype := "ORG"
		if geoSet[phrase] {
			etype = "GPE"
		}
		out = append(out, EntityMention{Name: phrase, Type: etype})
	}

	return dedupMentions(out, maxEntities)
}

func normalize(s string) string {
	return strings.TrimSpace(spaceRe.ReplaceAllString(s, " "))
}

func looksLikeEntity(phrase string) bool {
	if phrase == "" || stopWords[phrase] {
		return false
	}
	if len(phrase) < 3 {
		return false
	}
	for _, r := range phrase {
		if r >= '0' && r <= '9' {
			return false
		}
	}
	return true
}

// dedupMentions keeps the first occurrence of each (lowered name, type) pair.
func dedupMentions(in []EntityMention, limit int) []EntityMention {
	seen := make(map[string]bool, len(in))
	out := make([]EntityMention, 0, len(in))
	for _, m := range in {
		key := strings.ToLower(m.Name) + "\x00" + m.Type
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, m)
		if len(out) >= limit {
			break
		}
	}
	return out
}
