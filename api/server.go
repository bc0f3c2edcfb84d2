// Package api exposes the HTTP surface: job submission, job polling, graph
// expansion, and admin utilities.
package api

import (
	"github.com/gin-gonic/gin"

	"newsgraph/graph"
	"newsgraph/ingest"
	"newsgraph/jobs"
	"newsgraph/logger"
	"newsgraph/store"
)

// IndexCounter reports the size of the optional document index.
type IndexCounter interface {
	Count() (int, error)
}

// Deps bundles the collaborators the HTTP layer routes into. Index is nil
// when no document index is configured.
type Deps struct {
	Ingest *ingest.Service
	Jobs   jobs.Store
	Graph  *graph.Builder
	Store  *store.Store
	Index  IndexCounter
	Log    *logger.Logger
}

// NewRouter constructs a Gin engine with registered routes.
func NewRouter(deps Deps) *gin.Engine {
	if deps.Log == nil {
		deps.Log = logger.NewNop()
	}

	r := gin.New()
	// Minimal middleware: recovery; logger optional to reduce verbosity
	r.Use(gin.Recovery())

	// Register resource routers
	RegisterHealthRoutes(r)
	RegisterIngestRoutes(r, deps.Ingest, deps.Log)
	RegisterJobRoutes(r, deps.Jobs)
	RegisterGraphRoutes(r, deps.Graph, deps.Log)
	RegisterAdminRoutes(r, deps.Store, deps.Index, deps.Log)
	return r
}
