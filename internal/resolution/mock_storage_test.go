package resolution_test

import (
	"time"

	"github.com/stretchr/testify/mock"

	"grievancedesk/backend/internal/models"
	"grievancedesk/backend/internal/storage"
)

type MockStorage struct {
	mock.Mock
}

func (m *MockStorage) IngestComplaint(c *models.ComplaintRecord, actor string) error {
	args := m.Called(c, actor)
	return args.Error(0)
}

func (m *MockStorage) GetComplaintByID(id uint) (*models.ComplaintRecord, error) {
	args := m.Called(id)
	rec, _ := args.Get(0).(*models.ComplaintRecord)
	return rec, args.Error(1)
}

func (m *MockStorage) GetAllComplaints() ([]models.ComplaintRecord, error) {
	args := m.Called()
	recs, _ := args.Get(0).([]models.ComplaintRecord)
	return recs, args.Error(1)
}

func (m *MockStorage) GetComplaintsByIDs(ids []uint) ([]models.ComplaintRecord, error) {
	args := m.Called(ids)
	recs, _ := args.Get(0).([]models.ComplaintRecord)
	return recs, args.Error(1)
}

func (m *MockStorage) CountComplaints() (int64, error) {
	args := m.Called()
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockStorage) CreateGroupWithMembers(group *models.DuplicateGroup, memberIDs []uint, actor string) error {
	args := m.Called(group, memberIDs, actor)
	return args.Error(0)
}

func (m *MockStorage) GetGroupByID(id uint) (*models.DuplicateGroup, error) {
	args := m.Called(id)
	g, _ := args.Get(0).(*models.DuplicateGroup)
	return g, args.Error(1)
}

func (m *MockStorage) GetGroupsByStatus(status models.GroupStatus) ([]models.DuplicateGroup, error) {
	args := m.Called(status)
	groups, _ := args.Get(0).([]models.DuplicateGroup)
	return groups, args.Error(1)
}

func (m *MockStorage) GetGroupMemberIDs(groupID uint) ([]uint, error) {
	args := m.Called(groupID)
	ids, _ := args.Get(0).([]uint)
	return ids, args.Error(1)
}

func (m *MockStorage) ApplyResolution(u *storage.ResolutionUpdate) error {
	args := m.Called(u)
	return args.Error(0)
}

func (m *MockStorage) RecordRun(runID, actor string, summary map[string]any) error {
	args := m.Called(runID, actor, summary)
	return args.Error(0)
}

func (m *MockStorage) ExportAudit() ([]models.AuditRecord, error) {
	args := m.Called()
	recs, _ := args.Get(0).([]models.AuditRecord)
	return recs, args.Error(1)
}

func (m *MockStorage) AcquireRunLock(runID string, ttl time.Duration) (bool, error) {
	args := m.Called(runID, ttl)
	return args.Bool(0), args.Error(1)
}

func (m *MockStorage) ReleaseRunLock() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockStorage) Watermark() (uint, error) {
	args := m.Called()
	return args.Get(0).(uint), args.Error(1)
}

func (m *MockStorage) SetWatermark(id uint) error {
	args := m.Called(id)
	return args.Error(0)
}
