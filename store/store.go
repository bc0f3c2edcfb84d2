package store

import (
	"context"
	"fmt"
	"strings"

	"newsgraph/logger"

	"github.com/google/uuid"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormlogger "gorm.io/gorm/logger"
)

// Store wraps the relational database holding documents, entities, and their
// links. All writes go through constraint-backed upserts so concurrent
// ingestion of the same URL or entity name cannot create duplicates.
type Store struct {
	db  *gorm.DB
	log *logger.Logger
}

// Open connects to the database named by dsn and migrates the schema.
// A postgres:// DSN selects Postgres; anything else (including empty, which
// means in-memory) selects SQLite.
func Open(dsn string, baseLog *logger.Logger) (*Store, error) {
	if baseLog == nil {
		baseLog = logger.NewNop()
	}

	var dialector gorm.Dialector
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") {
		dialector = postgres.Open(dsn)
	} else {
		if dsn == "" {
			dsn = "file::memory:?cache=shared"
		}
		dialector = sqlite.Open(dsn)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.AutoMigrate(&Document{}, &Entity{}, &DocEntity{}); err != nil {
		return nil, fmt.Errorf("failed to migrate schema: %w", err)
	}

	return &Store{db: db, log: baseLog.With("component", "store")}, nil
}

// UpsertDocument inserts or updates a document by URL and returns its ID.
// The published timestamp is only overwritten when the new value is non-null.
func (s *Store) UpsertDocument(ctx context.Context, doc *Document) (uuid.UUID, error) {
	if doc.ID == uuid.Nil {
		doc.ID = uuid.New()
	}

	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "url"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"title":        doc.Title,
			"source":       doc.Source,
			"text":         doc.Text,
			"published_at": gorm.Expr("COALESCE(excluded.published_at, documents.published_at)"),
		}),
	}).Create(doc).Error
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to upsert document: %w", err)
	}

	// The conflict path keeps the existing row's ID; read it back by URL.
	var saved Document
	if err := s.db.WithContext(ctx).Select("id").Take(&saved, "url = ?", doc.URL).Error; err != nil {
		return uuid.Nil, fmt.Errorf("failed to resolve document id: %w", err)
	}
	doc.ID = saved.ID
	return saved.ID, nil
}

// SaveExtraction upserts the given entities and their (doc, entity, relation)
// links inside one transaction. Re-running with the same inputs is a no-op.
func (s *Store) SaveExtraction(ctx context.Context, docID uuid.UUID, mentions []EntityInput, relation string) error {
	relation = strings.TrimSpace(relation)
	if relation == "" {
		relation = "mentions"
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, m := range mentions {
			name := strings.TrimSpace(m.Name)
			if name == "" {
				continue
			}

			ent := Entity{Name: name, NameKey: strings.ToUpper(name), Type: m.Type}
			if err := tx.Clauses(clause.OnConflict{
				Columns: []clause.Column{{Name: "name_key"}},
				DoUpdates: clause.Assignments(map[string]interface{}{
					// Refresh the type only when the new mention carries one
					"type": gorm.Expr("COALESCE(NULLIF(excluded.type, ''), entities.type)"),
				}),
			}).Create(&ent).Error; err != nil {
				return fmt.Errorf("failed to upsert entity %q: %w", name, err)
			}

			// The conflict path keeps the existing row's ID; read it back
			if err := tx.Select("id").Take(&ent, "name_key = ?", ent.NameKey).Error; err != nil {
				return fmt.Errorf("failed to resolve entity id for %q: %w", name, err)
			}

			link := DocEntity{DocID: docID, EntID: ent.ID, Relation: relation}
			if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&link).Error; err != nil {
				return fmt.Errorf("failed to link entity %q: %w", name, err)
			}
		}
		return nil
	})
}
