package api

import (
	"errors"
	"net/http"

	"newsgraph/jobs"

	"github.com/gin-gonic/gin"
)

// RegisterJobRoutes registers the job polling endpoint.
func RegisterJobRoutes(r *gin.Engine, jobStore jobs.Store) {
	r.GET("/api/jobs/:id", handleGetJob(jobStore))
}

func handleGetJob(jobStore jobs.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		rec, err := jobStore.Get(c.Request.Context(), c.Param("id"))
		if err != nil {
			if errors.Is(err, jobs.ErrNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "job not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, rec)
	}
}
