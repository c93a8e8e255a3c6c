// Package server exposes the verification pipeline over HTTP. All decision
// logic lives below; handlers only decode uploads, invoke the pipeline and
// shape responses.
package server

import (
	"github.com/gin-gonic/gin"

	"github.com/verimed/verimed/observability"
	"github.com/verimed/verimed/pipeline"
	"github.com/verimed/verimed/store"
)

const apiVersion = "1.0.0"

// Option configures the router.
type Option func(*handlers)

// WithAuditLog exposes the verification history endpoint over st.
func WithAuditLog(st *store.Store) Option {
	return func(h *handlers) { h.audit = st }
}

// New builds the HTTP router over the pipeline.
func New(p *pipeline.Pipeline, logger observability.Logger, opts ...Option) *gin.Engine {
	h := &handlers{pipeline: p, logger: logger}
	for _, opt := range opts {
		opt(h)
	}
	g := gin.New()
	g.Use(gin.Logger(), gin.Recovery())
	attachRoutes(g, h)
	return g
}

func attachRoutes(g *gin.Engine, h *handlers) {
	g.GET("/", h.root)
	g.GET("/healthz", h.health)

	v1 := g.Group("/api/v1")
	v1.POST("/verify", h.verify)
	v1.POST("/report", h.report)
	if h.audit != nil {
		v1.GET("/verifications", h.history)
	}
}
