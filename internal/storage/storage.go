package storage

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"grievancedesk/backend/internal/models"
)

// ErrAuditConflict is returned when two audit appends race on the same
// predecessor hash; the unique index on prev_hash makes the second insert
// fail instead of corrupting the chain.
var ErrAuditConflict = errors.New("concurrent audit append conflict")

// ErrStaleGroupStatus is returned when a resolution is applied against a
// group whose status changed since it was read.
var ErrStaleGroupStatus = errors.New("group status changed concurrently")

// ResolutionUpdate is the full effect of one reviewer decision. Everything in
// it commits atomically: the decision row, the member canonical assignments,
// the status transition and the audit entry.
type ResolutionUpdate struct {
	GroupID     uint
	FromStatus  models.GroupStatus
	ToStatus    models.GroupStatus
	CanonicalID *uint  // nil for keep_separate
	MemberIDs   []uint // members whose canonical_of is set; excludes the canonical itself
	Decision    *models.Decision
}

type Storage interface {
	IngestComplaint(c *models.ComplaintRecord, actor string) error
	GetComplaintByID(id uint) (*models.ComplaintRecord, error)
	GetAllComplaints() ([]models.ComplaintRecord, error)
	GetComplaintsByIDs(ids []uint) ([]models.ComplaintRecord, error)
	CountComplaints() (int64, error)

	CreateGroupWithMembers(group *models.DuplicateGroup, memberIDs []uint, actor string) error
	GetGroupByID(id uint) (*models.DuplicateGroup, error)
	GetGroupsByStatus(status models.GroupStatus) ([]models.DuplicateGroup, error)
	GetGroupMemberIDs(groupID uint) ([]uint, error)

	ApplyResolution(u *ResolutionUpdate) error
	RecordRun(runID, actor string, summary map[string]any) error

	ExportAudit() ([]models.AuditRecord, error)

	AcquireRunLock(runID string, ttl time.Duration) (bool, error)
	ReleaseRunLock() error
	Watermark() (uint, error)
	SetWatermark(id uint) error
}

// Service backs Storage with PostgreSQL (rows) and Redis (run lock and
// clustering watermark).
type Service struct {
	DB    *gorm.DB
	Redis *redis.Client
	Ctx   context.Context

	// auditMu serializes the read-hash/build/insert sequence of audit
	// appends within this process. The prev_hash unique index covers the
	// multi-process case.
	auditMu sync.Mutex
}

// NewStorageService Constructor
func NewStorageService(db *gorm.DB, rdb *redis.Client) *Service {
	return &Service{
		DB:    db,
		Redis: rdb,
		Ctx:   context.Background(),
	}
}

// IngestComplaint stores a normalized complaint and its ingest audit entry in
// one transaction.
func (s *Service) IngestComplaint(c *models.ComplaintRecord, actor string) error {
	s.auditMu.Lock()
	defer s.auditMu.Unlock()
	return s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(c).Error; err != nil {
			return err
		}
		return s.appendAuditTx(tx, actor, "ingest", "complaint", idKey(c.ID),
			nil, map[string]any{"complaint": c.ID})
	})
}

func (s *Service) GetComplaintByID(id uint) (*models.ComplaintRecord, error) {
	var c models.ComplaintRecord
	err := s.DB.First(&c, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// GetAllComplaints returns every complaint ordered by id. Blocking and
// clustering depend on this order for canonical pair ids.
func (s *Service) GetAllComplaints() ([]models.ComplaintRecord, error) {
	var recs []models.ComplaintRecord
	if err := s.DB.Order("id asc").Find(&recs).Error; err != nil {
		return nil, err
	}
	return recs, nil
}

func (s *Service) GetComplaintsByIDs(ids []uint) ([]models.ComplaintRecord, error) {
	var recs []models.ComplaintRecord
	if err := s.DB.Where("id IN ?", ids).Order("id asc").Find(&recs).Error; err != nil {
		return nil, err
	}
	return recs, nil
}

func (s *Service) CountComplaints() (int64, error) {
	var n int64
	err := s.DB.Model(&models.ComplaintRecord{}).Count(&n).Error
	return n, err
}

// CreateGroupWithMembers persists a suggested group, its member rows and the
// group_created audit entry atomically, so a failure mid-sequence never
// leaves a partial group behind.
func (s *Service) CreateGroupWithMembers(group *models.DuplicateGroup, memberIDs []uint, actor string) error {
	s.auditMu.Lock()
	defer s.auditMu.Unlock()
	return s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(group).Error; err != nil {
			return err
		}
		for _, cid := range memberIDs {
			if err := tx.Create(&models.GroupMember{GroupID: group.ID, ComplaintID: cid}).Error; err != nil {
				return err
			}
		}
		return s.appendAuditTx(tx, actor, "group_created", "dup_group", idKey(group.ID),
			nil, map[string]any{"status": string(group.Status), "members": len(memberIDs)})
	})
}

func (s *Service) GetGroupByID(id uint) (*models.DuplicateGroup, error) {
	var g models.DuplicateGroup
	err := s.DB.First(&g, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &g, nil
}

func (s *Service) GetGroupsByStatus(status models.GroupStatus) ([]models.DuplicateGroup, error) {
	var groups []models.DuplicateGroup
	if err := s.DB.Where("status = ?", status).Order("id asc").Find(&groups).Error; err != nil {
		return nil, err
	}
	return groups, nil
}

func (s *Service) GetGroupMemberIDs(groupID uint) ([]uint, error) {
	var ids []uint
	if err := s.DB.Model(&models.GroupMember{}).
		Where("group_id = ?", groupID).
		Order("complaint_id asc").
		Pluck("complaint_id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}

// RecordRun appends the dedupe_run audit entry for a completed run.
func (s *Service) RecordRun(runID, actor string, summary map[string]any) error {
	s.auditMu.Lock()
	defer s.auditMu.Unlock()
	return s.DB.Transaction(func(tx *gorm.DB) error {
		return s.appendAuditTx(tx, actor, "dedupe_run", "dedupe", runID, nil, summary)
	})
}

func idKey(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}
