package resolution

import "grievancedesk/backend/internal/models"

// TopEvidence summarizes the strongest shared signals of a group: a flag is
// true iff all members carry exactly one distinct non-null value for that
// field.
type TopEvidence struct {
	SamePhone bool `json:"same_phone"`
	SameEmail bool `json:"same_email"`
}

// GroupView is a group with its members embedded, as served to reviewers.
type GroupView struct {
	ID           uint                     `json:"id"`
	Status       models.GroupStatus       `json:"status"`
	ScoreSummary string                   `json:"score_summary"`
	Members      []models.ComplaintRecord `json:"members"`
	TopEvidence  TopEvidence              `json:"top_evidence"`
}

// ListGroups returns every group in the given status with members and derived
// evidence.
func (s *Service) ListGroups(status models.GroupStatus) ([]GroupView, error) {
	groups, err := s.Storage.GetGroupsByStatus(status)
	if err != nil {
		return nil, err
	}

	views := make([]GroupView, 0, len(groups))
	for _, g := range groups {
		memberIDs, err := s.Storage.GetGroupMemberIDs(g.ID)
		if err != nil {
			return nil, err
		}
		members, err := s.Storage.GetComplaintsByIDs(memberIDs)
		if err != nil {
			return nil, err
		}
		views = append(views, GroupView{
			ID:           g.ID,
			Status:       g.Status,
			ScoreSummary: g.ScoreSummary,
			Members:      members,
			TopEvidence:  deriveEvidence(members),
		})
	}
	return views, nil
}

func deriveEvidence(members []models.ComplaintRecord) TopEvidence {
	phones := make(map[string]struct{})
	emails := make(map[string]struct{})
	for i := range members {
		if members[i].Phone != nil {
			phones[*members[i].Phone] = struct{}{}
		}
		if members[i].Email != nil {
			emails[*members[i].Email] = struct{}{}
		}
	}
	return TopEvidence{
		SamePhone: len(phones) == 1,
		SameEmail: len(emails) == 1,
	}
}
