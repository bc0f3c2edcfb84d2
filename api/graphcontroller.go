package api

import (
	"net/http"

	"newsgraph/graph"
	"newsgraph/logger"

	"github.com/gin-gonic/gin"
)

// RegisterGraphRoutes registers the graph query endpoint.
func RegisterGraphRoutes(r *gin.Engine, builder *graph.Builder, log *logger.Logger) {
	r.POST("/api/graph/expand", handleGraphExpand(builder, log))
}

// GraphExpandRequest asks for a bounded graph over a trailing window.
// Seed IDs use the `doc:<id>` / `ent:<NAME>` node id format. MaxHops is a
// hint; only single-hop semantics are implemented.
type GraphExpandRequest struct {
	SeedIDs    []string `json:"seed_ids"`
	WindowDays int      `json:"window_days"`
	MaxHops    int      `json:"max_hops"`
}

func handleGraphExpand(builder *graph.Builder, log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req GraphExpandRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if req.WindowDays < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "window_days must not be negative"})
			return
		}

		g, err := builder.Build(c.Request.Context(), req.SeedIDs, req.WindowDays)
		if err != nil {
			log.Error("graph build failed", "err", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to build graph"})
			return
		}
		c.JSON(http.StatusOK, g)
	}
}
