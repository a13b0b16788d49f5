package storage

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"grievancedesk/backend/internal/audit"
	"grievancedesk/backend/internal/config"
	"grievancedesk/backend/internal/models"
)

// ApplyResolution commits one reviewer decision atomically: decision row,
// member canonical_of updates, group status transition and the decision audit
// entry either all land or none do. The group row is locked and its status
// re-checked inside the transaction, so a decision racing another reviewer
// surfaces ErrStaleGroupStatus instead of double-applying.
func (s *Service) ApplyResolution(u *ResolutionUpdate) error {
	s.auditMu.Lock()
	defer s.auditMu.Unlock()
	return s.DB.Transaction(func(tx *gorm.DB) error {
		var g models.DuplicateGroup
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&g, u.GroupID).Error; err != nil {
			return err
		}
		if g.Status != u.FromStatus {
			return ErrStaleGroupStatus
		}

		if err := tx.Create(u.Decision).Error; err != nil {
			return err
		}

		for _, cid := range u.MemberIDs {
			if err := tx.Model(&models.ComplaintRecord{}).
				Where("id = ?", cid).
				Update("canonical_of", u.CanonicalID).Error; err != nil {
				return err
			}
		}

		if err := tx.Model(&models.DuplicateGroup{}).
			Where("id = ?", u.GroupID).
			Update("status", u.ToStatus).Error; err != nil {
			return err
		}

		return s.appendAuditTx(tx, u.Decision.Actor, "decision", "dup_group", idKey(u.GroupID),
			map[string]any{"status": string(u.FromStatus)},
			map[string]any{"status": string(u.ToStatus), "decision": string(u.Decision.Decision)})
	})
}

// appendAuditTx performs the read-hash, build, insert sequence for one audit
// record inside the caller's transaction. Callers hold auditMu.
func (s *Service) appendAuditTx(tx *gorm.DB, actor, action, entityType, entityID string, before, after map[string]any) error {
	prev := ""
	var last models.AuditRecord
	err := tx.Order("id desc").First(&last).Error
	if err == nil {
		prev = last.Hash
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	rec, err := audit.BuildRecord(prev, audit.NowISO(), actor, action, entityType, entityID, before, after)
	if err != nil {
		return err
	}
	if err := tx.Create(rec).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return fmt.Errorf("%w: %v", ErrAuditConflict, err)
		}
		return err
	}
	return nil
}

// ExportAudit returns the full chain in append order.
func (s *Service) ExportAudit() ([]models.AuditRecord, error) {
	var recs []models.AuditRecord
	if err := s.DB.Order("id asc").Find(&recs).Error; err != nil {
		return nil, err
	}
	return recs, nil
}

// AcquireRunLock takes the system-wide dedupe run lock in Redis. Returns
// false without error when another run holds it. The TTL bounds how long a
// crashed run can block the system.
func (s *Service) AcquireRunLock(runID string, ttl time.Duration) (bool, error) {
	return s.Redis.SetNX(s.Ctx, config.RunLockKey, runID, ttl).Result()
}

// ReleaseRunLock drops the dedupe run lock.
func (s *Service) ReleaseRunLock() error {
	return s.Redis.Del(s.Ctx, config.RunLockKey).Err()
}

// Watermark returns the highest complaint id processed by a completed run,
// 0 when no run has completed yet.
func (s *Service) Watermark() (uint, error) {
	raw, err := s.Redis.Get(s.Ctx, config.WatermarkKey).Result()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	v, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("corrupt watermark %q: %w", raw, err)
	}
	return uint(v), nil
}

// SetWatermark records the highest complaint id seen by a completed run.
func (s *Service) SetWatermark(id uint) error {
	return s.Redis.Set(s.Ctx, config.WatermarkKey, strconv.FormatUint(uint64(id), 10), 0).Err()
}
