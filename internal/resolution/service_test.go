package resolution_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"grievancedesk/backend/internal/models"
	"grievancedesk/backend/internal/resolution"
	"grievancedesk/backend/internal/storage"
)

func strPtr(s string) *string { return &s }
func uintPtr(v uint) *uint    { return &v }

func suggestedGroup(id uint) *models.DuplicateGroup {
	return &models.DuplicateGroup{ID: id, Status: models.StatusSuggested}
}

func TestDecide_ApproveDefaultsToLowestMemberID(t *testing.T) {
	// Arrange
	storageMock := new(MockStorage)
	svc := resolution.NewService(storageMock)

	storageMock.On("GetGroupByID", uint(10)).Return(suggestedGroup(10), nil).Once()
	storageMock.On("GetGroupMemberIDs", uint(10)).Return([]uint{3, 7}, nil).Once()
	storageMock.On("ApplyResolution", mock.MatchedBy(func(u *storage.ResolutionUpdate) bool {
		return u.GroupID == 10 &&
			u.FromStatus == models.StatusSuggested &&
			u.ToStatus == models.StatusApproved &&
			u.CanonicalID != nil && *u.CanonicalID == 3 &&
			len(u.MemberIDs) == 1 && u.MemberIDs[0] == 7 &&
			u.Decision.Decision == models.DecisionApprove &&
			u.Decision.Actor == "reviewer1"
	})).Return(nil).Once()

	// Act
	err := svc.Decide(10, models.DecisionApprove, "reviewer1", nil)

	// Assert
	require.NoError(t, err)
	storageMock.AssertExpectations(t)
}

func TestDecide_ApproveWithExplicitTarget(t *testing.T) {
	storageMock := new(MockStorage)
	svc := resolution.NewService(storageMock)

	storageMock.On("GetGroupByID", uint(10)).Return(suggestedGroup(10), nil).Once()
	storageMock.On("GetGroupMemberIDs", uint(10)).Return([]uint{3, 7}, nil).Once()
	storageMock.On("ApplyResolution", mock.MatchedBy(func(u *storage.ResolutionUpdate) bool {
		return *u.CanonicalID == 7 && len(u.MemberIDs) == 1 && u.MemberIDs[0] == 3
	})).Return(nil).Once()

	err := svc.Decide(10, models.DecisionApprove, "reviewer1", uintPtr(7))

	require.NoError(t, err)
	storageMock.AssertExpectations(t)
}

func TestDecide_ApproveTargetOutsideGroupRejected(t *testing.T) {
	storageMock := new(MockStorage)
	svc := resolution.NewService(storageMock)

	storageMock.On("GetGroupByID", uint(10)).Return(suggestedGroup(10), nil).Once()
	storageMock.On("GetGroupMemberIDs", uint(10)).Return([]uint{3, 7}, nil).Once()

	err := svc.Decide(10, models.DecisionApprove, "reviewer1", uintPtr(99))

	assert.ErrorIs(t, err, resolution.ErrTargetNotMember)
	storageMock.AssertNotCalled(t, "ApplyResolution")
}

func TestDecide_ApproveEmptyGroupRejected(t *testing.T) {
	storageMock := new(MockStorage)
	svc := resolution.NewService(storageMock)

	storageMock.On("GetGroupByID", uint(10)).Return(suggestedGroup(10), nil).Once()
	storageMock.On("GetGroupMemberIDs", uint(10)).Return([]uint{}, nil).Once()

	err := svc.Decide(10, models.DecisionApprove, "reviewer1", nil)

	assert.ErrorIs(t, err, resolution.ErrEmptyGroup)
	storageMock.AssertNotCalled(t, "ApplyResolution")
}

func TestDecide_KeepSeparateOnlyChangesStatus(t *testing.T) {
	storageMock := new(MockStorage)
	svc := resolution.NewService(storageMock)

	storageMock.On("GetGroupByID", uint(10)).Return(suggestedGroup(10), nil).Once()
	storageMock.On("GetGroupMemberIDs", uint(10)).Return([]uint{3, 7}, nil).Once()
	storageMock.On("ApplyResolution", mock.MatchedBy(func(u *storage.ResolutionUpdate) bool {
		return u.ToStatus == models.StatusRejected &&
			u.CanonicalID == nil &&
			len(u.MemberIDs) == 0
	})).Return(nil).Once()

	err := svc.Decide(10, models.DecisionKeepSeparate, "reviewer1", nil)

	require.NoError(t, err)
	storageMock.AssertExpectations(t)
}

// merge_into without a target is a validation failure: no state change and no
// audit entry, because nothing is ever written.
func TestDecide_MergeWithoutTargetRejected(t *testing.T) {
	storageMock := new(MockStorage)
	svc := resolution.NewService(storageMock)

	storageMock.On("GetGroupByID", uint(10)).Return(suggestedGroup(10), nil).Once()
	storageMock.On("GetGroupMemberIDs", uint(10)).Return([]uint{3, 7}, nil).Once()

	err := svc.Decide(10, models.DecisionMergeInto, "reviewer1", nil)

	assert.ErrorIs(t, err, resolution.ErrTargetRequired)
	storageMock.AssertNotCalled(t, "ApplyResolution")
}

func TestDecide_MergeIntoExistingTarget(t *testing.T) {
	storageMock := new(MockStorage)
	svc := resolution.NewService(storageMock)

	target := &models.ComplaintRecord{ID: 99}
	storageMock.On("GetGroupByID", uint(10)).Return(suggestedGroup(10), nil).Once()
	storageMock.On("GetGroupMemberIDs", uint(10)).Return([]uint{3, 7}, nil).Once()
	storageMock.On("GetComplaintByID", uint(99)).Return(target, nil).Once()
	storageMock.On("ApplyResolution", mock.MatchedBy(func(u *storage.ResolutionUpdate) bool {
		return u.ToStatus == models.StatusMerged &&
			*u.CanonicalID == 99 &&
			len(u.MemberIDs) == 2
	})).Return(nil).Once()

	err := svc.Decide(10, models.DecisionMergeInto, "reviewer1", uintPtr(99))

	require.NoError(t, err)
	storageMock.AssertExpectations(t)
}

func TestDecide_MergeIntoUnknownTargetRejected(t *testing.T) {
	storageMock := new(MockStorage)
	svc := resolution.NewService(storageMock)

	storageMock.On("GetGroupByID", uint(10)).Return(suggestedGroup(10), nil).Once()
	storageMock.On("GetGroupMemberIDs", uint(10)).Return([]uint{3, 7}, nil).Once()
	storageMock.On("GetComplaintByID", uint(99)).Return(nil, nil).Once()

	err := svc.Decide(10, models.DecisionMergeInto, "reviewer1", uintPtr(99))

	assert.ErrorIs(t, err, resolution.ErrTargetNotFound)
	storageMock.AssertNotCalled(t, "ApplyResolution")
}

// The target's canonical chain leading back into a member would make a
// record its own ultimate canonical.
func TestDecide_MergeIntoCycleRejected(t *testing.T) {
	storageMock := new(MockStorage)
	svc := resolution.NewService(storageMock)

	// Target 99 already resolves into member 3.
	target := &models.ComplaintRecord{ID: 99, CanonicalOf: uintPtr(3)}
	storageMock.On("GetGroupByID", uint(10)).Return(suggestedGroup(10), nil).Once()
	storageMock.On("GetGroupMemberIDs", uint(10)).Return([]uint{3, 7}, nil).Once()
	storageMock.On("GetComplaintByID", uint(99)).Return(target, nil).Once()

	err := svc.Decide(10, models.DecisionMergeInto, "reviewer1", uintPtr(99))

	assert.ErrorIs(t, err, resolution.ErrCanonicalCycle)
	storageMock.AssertNotCalled(t, "ApplyResolution")
}

func TestDecide_UnknownGroup(t *testing.T) {
	storageMock := new(MockStorage)
	svc := resolution.NewService(storageMock)

	storageMock.On("GetGroupByID", uint(404)).Return(nil, nil).Once()

	err := svc.Decide(404, models.DecisionApprove, "reviewer1", nil)

	assert.ErrorIs(t, err, resolution.ErrGroupNotFound)
}

// A group already in a terminal status rejects any further decision with a
// conflict, for every terminal status.
func TestDecide_TerminalGroupRejected(t *testing.T) {
	for _, status := range []models.GroupStatus{models.StatusApproved, models.StatusRejected, models.StatusMerged} {
		t.Run(string(status), func(t *testing.T) {
			storageMock := new(MockStorage)
			svc := resolution.NewService(storageMock)

			storageMock.On("GetGroupByID", uint(10)).
				Return(&models.DuplicateGroup{ID: 10, Status: status}, nil).Once()

			err := svc.Decide(10, models.DecisionApprove, "reviewer1", nil)

			assert.ErrorIs(t, err, resolution.ErrGroupResolved)
			storageMock.AssertNotCalled(t, "ApplyResolution")
		})
	}
}

func TestDecide_ConcurrentResolutionSurfacesConflict(t *testing.T) {
	storageMock := new(MockStorage)
	svc := resolution.NewService(storageMock)

	storageMock.On("GetGroupByID", uint(10)).Return(suggestedGroup(10), nil).Once()
	storageMock.On("GetGroupMemberIDs", uint(10)).Return([]uint{3, 7}, nil).Once()
	storageMock.On("ApplyResolution", mock.Anything).Return(storage.ErrStaleGroupStatus).Once()

	err := svc.Decide(10, models.DecisionApprove, "reviewer1", nil)

	assert.ErrorIs(t, err, resolution.ErrGroupResolved)
}

func TestListGroups_DerivesEvidence(t *testing.T) {
	storageMock := new(MockStorage)
	svc := resolution.NewService(storageMock)

	groups := []models.DuplicateGroup{{ID: 1, Status: models.StatusSuggested, ScoreSummary: "2 members"}}
	members := []models.ComplaintRecord{
		{ID: 3, Phone: strPtr("+919876543210"), Email: strPtr("a@mail.com")},
		{ID: 7, Phone: strPtr("+919876543210"), Email: strPtr("b@mail.com")},
	}
	storageMock.On("GetGroupsByStatus", models.StatusSuggested).Return(groups, nil).Once()
	storageMock.On("GetGroupMemberIDs", uint(1)).Return([]uint{3, 7}, nil).Once()
	storageMock.On("GetComplaintsByIDs", []uint{3, 7}).Return(members, nil).Once()

	views, err := svc.ListGroups(models.StatusSuggested)

	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.True(t, views[0].TopEvidence.SamePhone, "all members share one phone")
	assert.False(t, views[0].TopEvidence.SameEmail, "two distinct emails")
	assert.Equal(t, "2 members", views[0].ScoreSummary)
	assert.Len(t, views[0].Members, 2)
}
