// Package index mirrors document metadata and embeddings into a Chroma
// collection. The index is a read optimization only: every call here is
// best-effort and the relational store stays the source of truth.
package index

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"newsgraph/logger"
)

// Record is one document entry pushed to the index.
type Record struct {
	ID          string
	Title       string
	URL         string
	Source      string
	PublishedAt string
	Entities    []string
	Text        string
	Embedding   []float32
}

// Chroma wraps the Chroma vector database REST API (v2).
type Chroma struct {
	baseURL        string
	tenant         string
	database       string
	collectionName string
	collectionID   string
	httpClient     *http.Client
	log            *logger.Logger
}

// Config holds connection settings for the Chroma index.
type Config struct {
	Host           string
	Port           int
	CollectionName string
}

// NewChroma connects to Chroma and ensures the collection exists.
func NewChroma(cfg Config, baseLog *logger.Logger) (*Chroma, error) {
	if baseLog == nil {
		baseLog = logger.NewNop()
	}
	c := &Chroma{
		baseURL:        fmt.Sprintf("http://%s:%d/api/v2", cfg.Host, cfg.Port),
		tenant:         "default_tenant",
		database:       "default_database",
		collectionName: cfg.CollectionName,
		httpClient:     &http.Client{Timeout: 15 * time.Second},
		log:            baseLog.With("component", "index"),
	}

	collectionID, err := c.getOrCreateCollection(cfg.CollectionName)
	if err != nil {
		return nil, fmt.Errorf("failed to get or create collection: %w", err)
	}
	c.collectionID = collectionID
	return c, nil
}

// getOrCreateCollection gets an existing collection or creates a new one
func (c *Chroma) getOrCreateCollection(name string) (string, error) {
	url := fmt.Sprintf("%s/tenants/%s/databases/%s/collections/%s", c.baseURL, c.tenant, c.database, name)
	resp, err := c.httpClient.Get(url)
	if err == nil && resp.StatusCode == http.StatusOK {
		defer resp.Body.Close()
		var result map[string]interface{}
		if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
			return "", err
		}
		if id, ok := result["id"].(string); ok {
			return id, nil
		}
		return "", fmt.Errorf("collection response missing id")
	}
	if resp != nil {
		resp.Body.Close()
	}

	createURL := fmt.Sprintf("%s/tenants/%s/databases/%s/collections", c.baseURL, c.tenant, c.database)
	payload := map[string]interface{}{
		"name":          name,
		"metadata":      map[string]interface{}{"description": "newsgraph document index"},
		"get_or_create": true,
	}
	jsonData, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}

	resp, err = c.httpClient.Post(createURL, "application/json", bytes.NewBuffer(jsonData))
	if err != nil {
		return "", fmt.Errorf("failed to create collection: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("failed to create collection (status %d): %s", resp.StatusCode, string(body))
	}

	var result map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", err
	}
	id, ok := result["id"].(string)
	if !ok {
		return "", fmt.Errorf("create collection response missing id")
	}
	return id, nil
}

func (c *Chroma) collectionURL() string {
	return fmt.Sprintf("%s/tenants/%s/databases/%s/collections/%s",
		c.baseURL, c.tenant, c.database, c.collectionID)
}

// Upsert writes one document record to the collection. Chroma v2 expects
// client-supplied embeddings; records without one are skipped.
func (c *Chroma) Upsert(rec Record) error {
	if len(rec.Embedding) == 0 {
		c.log.Debug("skipping index upsert without embedding", "id", rec.ID)
		return nil
	}

	payload := map[string]interface{}{
		"ids":        []string{rec.ID},
		"embeddings": [][]float32{rec.Embedding},
		"documents":  []string{rec.Text},
		"metadatas": []map[string]interface{}{{
			"title":        rec.Title,
			"url":          rec.URL,
			"source":       rec.Source,
			"published_at": rec.PublishedAt,
			"entities":     joinEntities(rec.Entities),
		}},
	}

	jsonData, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	resp, err := c.httpClient.Post(c.collectionURL()+"/upsert", "application/json", bytes.NewBuffer(jsonData))
	if err != nil {
		return fmt.Errorf("failed to upsert document: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("upsert failed (status %d): %s", resp.StatusCode, string(body))
	}
	return nil
}

// Count returns how many records the collection holds.
func (c *Chroma) Count() (int, error) {
	resp, err := c.httpClient.Get(c.collectionURL() + "/count")
	if err != nil {
		return 0, fmt.Errorf("failed to count collection: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return 0, fmt.Errorf("count failed (status %d): %s", resp.StatusCode, string(body))
	}

	var count int
	if err := json.NewDecoder(resp.Body).Decode(&count); err != nil {
		return 0, err
	}
	return count, nil
}

// joinEntities flattens entity names; Chroma metadata values must be scalar.
func joinEntities(entities []string) string {
	out := ""
	for i, e := range entities {
		if i > 0 {
			out += ", "
		}
		out += e
	}
	return out
}
