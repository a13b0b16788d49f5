package handler

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"grievancedesk/backend/internal/audit"
)

// ExportAudit returns the full audit chain in append order, for external
// integrity verification.
func (h *Handler) ExportAudit(c *gin.Context) {
	recs, err := h.Storage.ExportAudit()
	if err != nil {
		log.Printf("ERROR: Failed to export audit log: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to export audit log"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"records": recs})
}

// VerifyAudit replays the stored chain and reports the first tamper finding,
// if any. Findings are reported, never repaired.
func (h *Handler) VerifyAudit(c *gin.Context) {
	recs, err := h.Storage.ExportAudit()
	if err != nil {
		log.Printf("ERROR: Failed to export audit log: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to export audit log"})
		return
	}
	if err := audit.Verify(recs); err != nil {
		c.JSON(http.StatusOK, gin.H{"ok": false, "records": len(recs), "finding": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "records": len(recs)})
}
