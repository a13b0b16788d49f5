package models

import (
	"fmt"
	"time"
)

// DecisionKind is the closed set of reviewer decisions. Free-form strings are
// parsed once at the API boundary so the state machine only ever sees these
// three values.
type DecisionKind string

const (
	DecisionApprove      DecisionKind = "approve"
	DecisionKeepSeparate DecisionKind = "keep_separate"
	DecisionMergeInto    DecisionKind = "merge_into"
)

// ParseDecisionKind validates a raw decision string.
func ParseDecisionKind(raw string) (DecisionKind, error) {
	switch DecisionKind(raw) {
	case DecisionApprove, DecisionKeepSeparate, DecisionMergeInto:
		return DecisionKind(raw), nil
	}
	return "", fmt.Errorf("invalid decision %q", raw)
}

// Decision is one reviewer action against a group. Rows are append-only;
// the storage layer installs triggers that reject UPDATE and DELETE.
type Decision struct {
	ID                uint         `gorm:"primaryKey" json:"id"`
	GroupID           uint         `gorm:"not null;index" json:"group_id"`
	Actor             string       `gorm:"size:128;not null" json:"actor"`
	Decision          DecisionKind `gorm:"size:24;not null" json:"decision"`
	TargetCanonicalID *uint        `json:"target_canonical_id"`
	CreatedAt         time.Time    `json:"created_at"`
}

func (Decision) TableName() string { return "decisions" }
