package models

import "time"

// GroupStatus is the lifecycle state of a DuplicateGroup.
type GroupStatus string

const (
	StatusSuggested GroupStatus = "suggested"
	StatusApproved  GroupStatus = "approved"
	StatusRejected  GroupStatus = "rejected"
	StatusMerged    GroupStatus = "merged"
)

// Terminal reports whether no further decision may be applied to a group in
// this status.
func (s GroupStatus) Terminal() bool {
	return s == StatusApproved || s == StatusRejected || s == StatusMerged
}

// DuplicateGroup is a clusterer-suggested set of probable duplicates awaiting
// a reviewer decision. Rows are immutable except for Status.
type DuplicateGroup struct {
	ID           uint        `gorm:"primaryKey" json:"id"`
	Status       GroupStatus `gorm:"size:24;default:suggested;index" json:"status"`
	ScoreSummary string      `gorm:"type:text" json:"score_summary"`
	CreatedAt    time.Time   `json:"created_at"`
}

func (DuplicateGroup) TableName() string { return "dup_groups" }

// GroupMember links a complaint into a group. The pair is unique per group
// and only removed by cascading group deletion, which the normal flow never
// performs.
type GroupMember struct {
	ID          uint `gorm:"primaryKey" json:"id"`
	GroupID     uint `gorm:"not null;uniqueIndex:idx_group_complaint" json:"group_id"`
	ComplaintID uint `gorm:"not null;uniqueIndex:idx_group_complaint" json:"complaint_id"`
}

func (GroupMember) TableName() string { return "group_members" }
