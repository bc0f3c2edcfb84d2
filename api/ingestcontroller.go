package api

import (
	"net/http"
	"net/url"
	"strings"

	"newsgraph/ingest"
	"newsgraph/logger"

	"github.com/gin-gonic/gin"
)

// RegisterIngestRoutes registers the job submission endpoints. Each returns
// 202 Accepted with a job ID; results are polled via /api/jobs/:id.
func RegisterIngestRoutes(r *gin.Engine, svc *ingest.Service, log *logger.Logger) {
	g := r.Group("/api/ingest")
	g.POST("/topic", handleIngestTopic(svc, log))
	g.POST("/rss", handleIngestRSS(svc, log))
	g.POST("/url", handleIngestURL(svc, log))
}

// IngestTopicRequest submits a news topic for ingestion.
type IngestTopicRequest struct {
	Topic    string `json:"topic" binding:"required"`
	MaxItems int    `json:"max_items"`
}

// IngestRSSRequest submits a feed URL for ingestion.
type IngestRSSRequest struct {
	RSSURL string `json:"rss_url" binding:"required"`
}

// IngestURLRequest submits a single article URL for ingestion.
type IngestURLRequest struct {
	URL string `json:"url" binding:"required"`
}

func handleIngestTopic(svc *ingest.Service, log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req IngestTopicRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		topic := strings.TrimSpace(req.Topic)
		if topic == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "topic must not be blank"})
			return
		}

		jobID, err := svc.SubmitTopic(topic, req.MaxItems)
		if err != nil {
			log.Error("topic job submission failed", "topic", topic, "err", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to queue job"})
			return
		}
		c.JSON(http.StatusAccepted, gin.H{"job_id": jobID, "status": "queued"})
	}
}

func handleIngestRSS(svc *ingest.Service, log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req IngestRSSRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if !validHTTPURL(req.RSSURL) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "rss_url must be an http(s) URL"})
			return
		}

		jobID, err := svc.SubmitFeed(strings.TrimSpace(req.RSSURL))
		if err != nil {
			log.Error("rss job submission failed", "url", req.RSSURL, "err", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to queue job"})
			return
		}
		c.JSON(http.StatusAccepted, gin.H{"job_id": jobID, "status": "queued"})
	}
}

func handleIngestURL(svc *ingest.Service, log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req IngestURLRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if !validHTTPURL(req.URL) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "url must be an http(s) URL"})
			return
		}

		jobID, err := svc.SubmitURL(strings.TrimSpace(req.URL))
		if err != nil {
			log.Error("url job submission failed", "url", req.URL, "err", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to queue job"})
			return
		}
		c.JSON(http.StatusAccepted, gin.H{"job_id": jobID, "status": "queued"})
	}
}

func validHTTPURL(raw string) bool {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
