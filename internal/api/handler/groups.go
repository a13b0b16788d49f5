package handler

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"grievancedesk/backend/internal/dedupe"
	"grievancedesk/backend/internal/models"
	"grievancedesk/backend/internal/resolution"
)

// RunDedupe triggers a full dedupe pass. An optional ?threshold= overrides
// the configured clustering threshold for this run.
func (h *Handler) RunDedupe(c *gin.Context) {
	threshold := h.Config.Threshold
	if raw := c.Query("threshold"); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil || v <= 0 || v > 1 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "threshold must be in (0,1]"})
			return
		}
		threshold = v
	}

	summary, err := h.Engine.Run(c.Request.Context(), threshold)
	if err != nil {
		if errors.Is(err, dedupe.ErrRunInProgress) {
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
			return
		}
		log.Printf("ERROR: Dedupe run failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "dedupe run failed"})
		return
	}
	c.JSON(http.StatusOK, summary)
}

// ListGroups returns groups in the requested status (default suggested) with
// members and derived evidence embedded.
func (h *Handler) ListGroups(c *gin.Context) {
	status := models.GroupStatus(c.DefaultQuery("status", string(models.StatusSuggested)))
	switch status {
	case models.StatusSuggested, models.StatusApproved, models.StatusRejected, models.StatusMerged:
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid status"})
		return
	}

	views, err := h.Resolution.ListGroups(status)
	if err != nil {
		log.Printf("ERROR: Failed to list groups: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list groups"})
		return
	}
	c.JSON(http.StatusOK, views)
}

// DecisionIn is the reviewer decision payload.
type DecisionIn struct {
	Decision          string `json:"decision" binding:"required"`
	Actor             string `json:"actor" binding:"required"`
	TargetCanonicalID *uint  `json:"target_canonical_id"`
}

// DecideGroup applies a reviewer decision to a group.
func (h *Handler) DecideGroup(c *gin.Context) {
	groupID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid group id"})
		return
	}

	var in DecisionIn
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "decision and actor are required"})
		return
	}
	kind, err := models.ParseDecisionKind(in.Decision)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	err = h.Resolution.Decide(uint(groupID), kind, in.Actor, in.TargetCanonicalID)
	switch {
	case err == nil:
		c.JSON(http.StatusOK, gin.H{"ok": true})
	case errors.Is(err, resolution.ErrGroupNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, resolution.ErrGroupResolved):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, resolution.ErrEmptyGroup),
		errors.Is(err, resolution.ErrTargetRequired),
		errors.Is(err, resolution.ErrTargetNotFound),
		errors.Is(err, resolution.ErrTargetNotMember),
		errors.Is(err, resolution.ErrCanonicalCycle):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		log.Printf("ERROR: Failed to apply decision to group %d: %v", groupID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to apply decision"})
	}
}
