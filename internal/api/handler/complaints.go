package handler

import (
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"grievancedesk/backend/internal/models"
	"grievancedesk/backend/internal/normalize"
)

// ComplaintIn is the raw intake payload. Every field is optional; bad values
// degrade to null during normalization instead of rejecting the record.
type ComplaintIn struct {
	ExternalID *string `json:"external_id"`
	Name       *string `json:"name"`
	Phone      *string `json:"phone"`
	Email      *string `json:"email"`
	Timestamp  *string `json:"timestamp"`
	Text       *string `json:"text"`
}

// CreateComplaint normalizes and stores one incoming complaint.
func (h *Handler) CreateComplaint(c *gin.Context) {
	var in ComplaintIn
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}

	rec := &models.ComplaintRecord{
		ExternalID: in.ExternalID,
	}
	if in.Name != nil {
		if name := strings.TrimSpace(*in.Name); name != "" {
			rec.Name = &name
		}
	}
	if in.Phone != nil {
		rec.Phone = normalize.Phone(*in.Phone, h.Config.DefaultRegion)
	}
	if in.Email != nil {
		rec.Email = normalize.Email(*in.Email)
	}
	if in.Timestamp != nil {
		rec.Timestamp = normalize.Timestamp(*in.Timestamp)
	}
	if in.Text != nil {
		rec.Text = normalize.Text(*in.Text)
	}

	if err := h.Storage.IngestComplaint(rec, "system"); err != nil {
		log.Printf("ERROR: Failed to ingest complaint: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to store complaint"})
		return
	}
	c.JSON(http.StatusOK, rec)
}
