package models

// AuditRecord is one link of the tamper-evident log. For record k>1,
// hash_k = SHA-256(prev_hash_k || canonical_payload_k) and prev_hash_k equals
// hash_{k-1}; the first record carries prev_hash = "".
//
// The unique index on PrevHash is deliberate: two appends racing on the same
// predecessor cannot both commit, so the chain stays linear even if the
// in-process serialization is ever bypassed.
type AuditRecord struct {
	ID         uint   `gorm:"primaryKey" json:"id"`
	TS         string `gorm:"column:ts;size:32;not null" json:"ts"`
	Actor      string `gorm:"size:128;not null" json:"actor"`
	Action     string `gorm:"size:64;not null" json:"action"`
	EntityType string `gorm:"size:64;not null" json:"entity_type"`
	EntityID   string `gorm:"size:64;not null" json:"entity_id"`
	BeforeJSON string `gorm:"type:text" json:"before_json"`
	AfterJSON  string `gorm:"type:text" json:"after_json"`
	PrevHash   string `gorm:"size:128;uniqueIndex" json:"prev_hash"`
	Hash       string `gorm:"size:128;not null" json:"hash"`
}

func (AuditRecord) TableName() string { return "audit_log" }
