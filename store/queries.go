package store

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// RecentDocuments returns documents with a known publish time inside the
// trailing window, newest first, capped at limit.
func (s *Store) RecentDocuments(ctx context.Context, windowDays int, limit int) ([]Document, error) {
	since := time.Now().UTC().AddDate(0, 0, -windowDays)

	var docs []Document
	err := s.db.WithContext(ctx).
		Where("published_at IS NOT NULL AND published_at >= ?", since).
		Order("published_at DESC").
		Limit(limit).
		Find(&docs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list recent documents: %w", err)
	}
	return docs, nil
}

// EntitiesForDocument returns the entities linked to one document.
func (s *Store) EntitiesForDocument(ctx context.Context, docID uuid.UUID) ([]EntityLink, error) {
	var links []EntityLink
	err := s.db.WithContext(ctx).
		Model(&DocEntity{}).
		Select("entities.name AS name, entities.type AS type, doc_entities.relation AS relation").
		Joins("JOIN entities ON entities.id = doc_entities.ent_id").
		Where("doc_entities.doc_id = ?", docID).
		Scan(&links).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list entities for document: %w", err)
	}
	return links, nil
}

// Flush removes all stored rows. Links go first so cascade order never
// matters across dialects.
func (s *Store) Flush(ctx context.Context) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, model := range []interface{}{&DocEntity{}, &Entity{}, &Document{}} {
			if err := tx.Where("1 = 1").Delete(model).Error; err != nil {
				return fmt.Errorf("failed to flush: %w", err)
			}
		}
		return nil
	})
}

// TableCounts reports row counts per table.
func (s *Store) TableCounts(ctx context.Context) (Counts, error) {
	var c Counts
	db := s.db.WithContext(ctx)
	if err := db.Model(&Document{}).Count(&c.Documents).Error; err != nil {
		return c, err
	}
	if err := db.Model(&Entity{}).Count(&c.Entities).Error; err != nil {
		return c, err
	}
	if err := db.Model(&DocEntity{}).Count(&c.Links).Error; err != nil {
		return c, err
	}
	return c, nil
}

// TopEntities lists entities ordered by how many links point at them.
func (s *Store) TopEntities(ctx context.Context, limit int) ([]EntityCount, error) {
	var out []EntityCount
	err := s.db.WithContext(ctx).
		Model(&Entity{}).
		Select("entities.name AS name, entities.type AS type, COUNT(doc_entities.id) AS links").
		Joins("JOIN doc_entities ON doc_entities.ent_id = entities.id").
		Group("entities.id, entities.name, entities.type").
		Order("links DESC").
		Limit(limit).
		Scan(&out).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list top entities: %w", err)
	}
	return out, nil
}

// LatestDocuments lists the most recently published documents for the admin
// surface, including rows without a publish time (ingest order fallback).
func (s *Store) LatestDocuments(ctx context.Context, limit int) ([]Document, error) {
	var docs []Document
	err := s.db.WithContext(ctx).
		Order("published_at DESC").
		Limit(limit).
		Find(&docs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}
	return docs, nil
}
