package store

import (
	"time"

	"github.com/google/uuid"
)

// Document is one ingested article, keyed by its globally unique URL.
type Document struct {
	ID          uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	URL         string     `gorm:"uniqueIndex;not null" json:"url"`
	Title       string     `json:"title"`
	Source      string     `json:"source,omitempty"`
	PublishedAt *time.Time `json:"published_at,omitempty"`
	Text        string     `json:"-"`
}

// Entity is shared reference data: many documents point at the same row.
// NameKey is the upper-cased dedup key; Name keeps the first-seen casing.
type Entity struct {
	ID      uint   `gorm:"primaryKey" json:"id"`
	Name    string `gorm:"not null" json:"name"`
	NameKey string `gorm:"uniqueIndex;not null" json:"-"`
	Type    string `gorm:"size:50" json:"type,omitempty"`
}

// DocEntity links a document to an entity under a relation label. The triple
// is unique; re-linking is a no-op. Deleting either endpoint cascades.
type DocEntity struct {
	ID       uint      `gorm:"primaryKey"`
	DocID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uq_doc_ent_rel"`
	EntID    uint      `gorm:"not null;uniqueIndex:uq_doc_ent_rel"`
	Relation string    `gorm:"size:50;not null;uniqueIndex:uq_doc_ent_rel"`

	Document Document `gorm:"foreignKey:DocID;constraint:OnDelete:CASCADE"`
	Entity   Entity   `gorm:"foreignKey:EntID;constraint:OnDelete:CASCADE"`
}

// EntityInput is what the ingestion pipeline hands the store per mention.
type EntityInput struct {
	Name string
	Type string
}

// EntityLink is an entity attached to a specific document.
type EntityLink struct {
	Name     string `json:"name"`
	Type     string `json:"type"`
	Relation string `json:"relation"`
}

// EntityCount is an entity ranked by how many documents link to it.
type EntityCount struct {
	Name  string `json:"name"`
	Type  string `json:"type"`
	Links int    `json:"links"`
}

// Counts reports table sizes for the admin surface.
type Counts struct {
	Documents int64 `json:"documents"`
	Entities  int64 `json:"entities"`
	Links     int64 `json:"links"`
}
