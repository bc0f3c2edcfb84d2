package api

import (
	"net/http"
	"strconv"
	"time"

	"newsgraph/logger"
	"newsgraph/store"

	"github.com/gin-gonic/gin"
)

// RegisterAdminRoutes registers maintenance endpoints. These are external
// utilities, not part of the ingestion/graph core.
func RegisterAdminRoutes(r *gin.Engine, st *store.Store, idx IndexCounter, log *logger.Logger) {
	g := r.Group("/api/admin")
	g.POST("/flush", handleAdminFlush(st, log))
	g.GET("/stats", handleAdminStats(st, idx, log))
	g.GET("/entities/top", handleTopEntities(st, log))
	g.GET("/documents/recent", handleRecentDocuments(st, log))
}

func handleAdminFlush(st *store.Store, log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := st.Flush(c.Request.Context()); err != nil {
			log.Error("flush failed", "err", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "flush failed"})
			return
		}
		log.Info("store flushed")
		c.JSON(http.StatusOK, gin.H{"status": "flushed"})
	}
}

func handleAdminStats(st *store.Store, idx IndexCounter, log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		counts, err := st.TableCounts(c.Request.Context())
		if err != nil {
			log.Error("stats query failed", "err", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "stats query failed"})
			return
		}

		resp := gin.H{
			"documents": counts.Documents,
			"entities":  counts.Entities,
			"links":     counts.Links,
		}
		// The index is best-effort; an unreachable one must not fail stats.
		if idx != nil {
			if n, err := idx.Count(); err == nil {
				resp["index_documents"] = n
			} else {
				log.Warn("index count failed", "err", err)
			}
		}
		c.JSON(http.StatusOK, resp)
	}
}

func handleTopEntities(st *store.Store, log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		limit := queryInt(c, "limit", 20)
		out, err := st.TopEntities(c.Request.Context(), limit)
		if err != nil {
			log.Error("top entities query failed", "err", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"entities": out})
	}
}

func handleRecentDocuments(st *store.Store, log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		limit := queryInt(c, "limit", 20)
		docs, err := st.LatestDocuments(c.Request.Context(), limit)
		if err != nil {
			log.Error("recent documents query failed", "err", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
			return
		}

		// Trim payloads: the admin list never needs full article text.
		type docRow struct {
			ID          string `json:"id"`
			Title       string `json:"title"`
			URL         string `json:"url"`
			Source      string `json:"source,omitempty"`
			PublishedAt string `json:"published_at,omitempty"`
		}
		rows := make([]docRow, 0, len(docs))
		for _, d := range docs {
			row := docRow{ID: d.ID.String(), Title: d.Title, URL: d.URL, Source: d.Source}
			if d.PublishedAt != nil {
				row.PublishedAt = d.PublishedAt.UTC().Format(time.RFC3339)
			}
			rows = append(rows, row)
		}
		c.JSON(http.StatusOK, gin.H{"documents": rows})
	}
}

func queryInt(c *gin.Context, key string, def int) int {
	raw := c.Query(key)
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return def
	}
	return n
}
