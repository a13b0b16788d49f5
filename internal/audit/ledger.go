// Package audit builds and verifies the tamper-evident hash chain recorded
// alongside every mutation. Each record commits to its predecessor's hash, so
// retroactive edits anywhere in the log are detectable by replay.
package audit

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"grievancedesk/backend/internal/models"
)

// NowISO is the timestamp format used for audit rows: UTC, second precision.
func NowISO() string {
	return time.Now().UTC().Format("2006-01-02T15:04:05Z")
}

// CanonicalJSON marshals a snapshot deterministically: keys sorted, fixed
// "," / ":" separators, no insignificant whitespace. encoding/json already
// guarantees sorted keys for maps, which is what makes the chain reproducible
// across processes.
func CanonicalJSON(v map[string]any) (string, error) {
	if v == nil {
		v = map[string]any{}
	}
	b, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("canonicalize snapshot: %w", err)
	}
	return string(b), nil
}

// BuildRecord assembles the next chain link. The hash covers the previous
// hash concatenated with the canonical payload, which itself embeds the
// previous hash, so both the linkage and the content are committed.
func BuildRecord(prevHash, ts, actor, action, entityType, entityID string, before, after map[string]any) (*models.AuditRecord, error) {
	if before == nil {
		before = map[string]any{}
	}
	if after == nil {
		after = map[string]any{}
	}
	beforeJSON, err := CanonicalJSON(before)
	if err != nil {
		return nil, err
	}
	afterJSON, err := CanonicalJSON(after)
	if err != nil {
		return nil, err
	}
	payload, err := canonicalPayload(ts, actor, action, entityType, entityID, before, after, prevHash)
	if err != nil {
		return nil, err
	}
	return &models.AuditRecord{
		TS:         ts,
		Actor:      actor,
		Action:     action,
		EntityType: entityType,
		EntityID:   entityID,
		BeforeJSON: beforeJSON,
		AfterJSON:  afterJSON,
		PrevHash:   prevHash,
		Hash:       chainHash(prevHash, payload),
	}, nil
}

// TamperError reports the first record at which chain verification failed.
type TamperError struct {
	Index  int    // zero-based position in the verified sequence
	ID     uint   // stored record id, if any
	Reason string
}

func (e *TamperError) Error() string {
	return fmt.Sprintf("audit chain broken at record %d (id=%d): %s", e.Index, e.ID, e.Reason)
}

// Verify replays an exported chain from the first record, recomputing every
// hash from the stored fields. Any recomputed-hash mismatch or prev_hash
// linkage break fails verification. Findings are never auto-repaired.
func Verify(records []models.AuditRecord) error {
	prev := ""
	for i := range records {
		rec := &records[i]
		if rec.PrevHash != prev {
			return &TamperError{Index: i, ID: rec.ID, Reason: fmt.Sprintf("prev_hash %q does not link to %q", rec.PrevHash, prev)}
		}
		before, err := parseSnapshot(rec.BeforeJSON)
		if err != nil {
			return &TamperError{Index: i, ID: rec.ID, Reason: "before_json is not valid JSON"}
		}
		after, err := parseSnapshot(rec.AfterJSON)
		if err != nil {
			return &TamperError{Index: i, ID: rec.ID, Reason: "after_json is not valid JSON"}
		}
		payload, err := canonicalPayload(rec.TS, rec.Actor, rec.Action, rec.EntityType, rec.EntityID, before, after, rec.PrevHash)
		if err != nil {
			return &TamperError{Index: i, ID: rec.ID, Reason: err.Error()}
		}
		if got := chainHash(rec.PrevHash, payload); got != rec.Hash {
			return &TamperError{Index: i, ID: rec.ID, Reason: "recomputed hash does not match stored hash"}
		}
		prev = rec.Hash
	}
	return nil
}

func canonicalPayload(ts, actor, action, entityType, entityID string, before, after map[string]any, prevHash string) ([]byte, error) {
	payload := map[string]any{
		"ts":          ts,
		"actor":       actor,
		"action":      action,
		"entity_type": entityType,
		"entity_id":   entityID,
		"before":      before,
		"after":       after,
		"prev_hash":   prevHash,
	}
	b, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("canonicalize payload: %w", err)
	}
	return b, nil
}

func chainHash(prevHash string, payload []byte) string {
	h := sha256.New()
	h.Write([]byte(prevHash))
	h.Write(payload)
	return hex.EncodeToString(h.Sum(nil))
}

func parseSnapshot(raw string) (map[string]any, error) {
	if raw == "" {
		return map[string]any{}, nil
	}
	var m map[string]any
	if err := json.Unmarshal([]byte(raw), &m); err != nil {
		return nil, err
	}
	return m, nil
}
