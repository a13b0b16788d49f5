package models

// ComplaintRecord is a single grievance as stored after ingestion. All contact
// fields are nullable: normalization degrades bad input to NULL instead of
// rejecting the record.
type ComplaintRecord struct {
	ID         uint    `gorm:"primaryKey" json:"id"`
	ExternalID *string `gorm:"size:64" json:"external_id"`
	Name       *string `gorm:"size:256" json:"name"`
	Phone      *string `gorm:"size:32;index" json:"phone"`
	Email      *string `gorm:"size:256;index" json:"email"`
	Timestamp  *string `gorm:"size:32;index" json:"timestamp"` // ISO-8601, second precision
	Text       *string `gorm:"type:text" json:"text"`

	// CanonicalOf points at the record this one was resolved into. Only the
	// resolution state machine writes it. Never self-referencing.
	CanonicalOf *uint `gorm:"index" json:"canonical_of"`
}

func (ComplaintRecord) TableName() string { return "complaints" }
