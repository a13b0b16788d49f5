package handler

import (
	"github.com/gin-gonic/gin"

	"grievancedesk/backend/internal/config"
	"grievancedesk/backend/internal/dedupe"
	"grievancedesk/backend/internal/resolution"
	"grievancedesk/backend/internal/storage"
)

// Handler wires the HTTP surface to the core services. It stays thin: bind
// the request, call the core, map the error.
type Handler struct {
	Storage    storage.Storage
	Engine     *dedupe.Engine
	Resolution *resolution.Service
	Config     *config.Config
}

func NewHandler(s storage.Storage, e *dedupe.Engine, r *resolution.Service, cfg *config.Config) *Handler {
	return &Handler{Storage: s, Engine: e, Resolution: r, Config: cfg}
}

// RegisterRoutes mounts all endpoints on the router.
func (h *Handler) RegisterRoutes(r *gin.Engine) {
	r.POST("/complaints", h.CreateComplaint)
	r.POST("/dedupe/run", h.RunDedupe)
	r.GET("/groups", h.ListGroups)
	r.POST("/groups/:id/decision", h.DecideGroup)
	r.GET("/audit/export", h.ExportAudit)
	r.GET("/audit/verify", h.VerifyAudit)
}
