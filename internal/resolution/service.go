// Package resolution applies reviewer decisions to suggested duplicate
// groups and serves the review-screen listing.
package resolution

import (
	"errors"
	"fmt"
	"log"

	"grievancedesk/backend/internal/models"
	"grievancedesk/backend/internal/storage"
)

var (
	ErrGroupNotFound   = errors.New("group not found")
	ErrGroupResolved   = errors.New("group is already in a terminal status")
	ErrEmptyGroup      = errors.New("group has no members")
	ErrTargetRequired  = errors.New("target_canonical_id is required for merge_into")
	ErrTargetNotFound  = errors.New("target canonical record does not exist")
	ErrCanonicalCycle  = errors.New("assignment would create a canonical cycle")
	ErrTargetNotMember = errors.New("target canonical record is not a group member")
)

// Service handles the business logic for resolving duplicate groups.
type Service struct {
	Storage storage.Storage
}

// NewService creates a new resolution service.
func NewService(s storage.Storage) *Service {
	return &Service{Storage: s}
}

// Decide applies one reviewer decision to a group.
//
// approve:       canonical = explicit target (must be a member) or the lowest
//                member id; every other member's canonical_of is set to it.
// keep_separate: no member mutation, the group is marked rejected.
// merge_into:    requires an existing target record; every member's
//                canonical_of is set to it.
//
// A decision against a group already in a terminal status is rejected with
// ErrGroupResolved. All validation happens before any write; a rejected
// decision changes nothing and leaves no audit entry.
func (s *Service) Decide(groupID uint, kind models.DecisionKind, actor string, targetCanonicalID *uint) error {
	group, err := s.Storage.GetGroupByID(groupID)
	if err != nil {
		return err
	}
	if group == nil {
		return ErrGroupNotFound
	}
	if group.Status.Terminal() {
		return fmt.Errorf("%w: %s", ErrGroupResolved, group.Status)
	}

	memberIDs, err := s.Storage.GetGroupMemberIDs(groupID)
	if err != nil {
		return err
	}

	update := &storage.ResolutionUpdate{
		GroupID:    groupID,
		FromStatus: group.Status,
		Decision: &models.Decision{
			GroupID:           groupID,
			Actor:             actor,
			Decision:          kind,
			TargetCanonicalID: targetCanonicalID,
		},
	}

	switch kind {
	case models.DecisionApprove:
		if len(memberIDs) == 0 {
			return ErrEmptyGroup
		}
		canonical := memberIDs[0] // member ids are sorted ascending
		if targetCanonicalID != nil {
			if !contains(memberIDs, *targetCanonicalID) {
				return ErrTargetNotMember
			}
			canonical = *targetCanonicalID
		}
		update.ToStatus = models.StatusApproved
		update.CanonicalID = &canonical
		update.MemberIDs = without(memberIDs, canonical)

	case models.DecisionKeepSeparate:
		update.ToStatus = models.StatusRejected

	case models.DecisionMergeInto:
		if targetCanonicalID == nil {
			return ErrTargetRequired
		}
		if err := s.checkMergeTarget(*targetCanonicalID, memberIDs); err != nil {
			return err
		}
		update.ToStatus = models.StatusMerged
		update.CanonicalID = targetCanonicalID
		update.MemberIDs = without(memberIDs, *targetCanonicalID)

	default:
		return fmt.Errorf("invalid decision %q", kind)
	}

	if err := s.Storage.ApplyResolution(update); err != nil {
		if errors.Is(err, storage.ErrStaleGroupStatus) {
			return fmt.Errorf("%w: decided concurrently", ErrGroupResolved)
		}
		return err
	}

	log.Printf("Group %d resolved as %s by %s", groupID, update.ToStatus, actor)
	return nil
}

// checkMergeTarget validates that the merge target exists and that pointing
// the members at it cannot close a canonical_of cycle: the target's own
// canonical chain must not pass through any member about to be reassigned.
func (s *Service) checkMergeTarget(targetID uint, memberIDs []uint) error {
	target, err := s.Storage.GetComplaintByID(targetID)
	if err != nil {
		return err
	}
	if target == nil {
		return ErrTargetNotFound
	}

	members := make(map[uint]struct{}, len(memberIDs))
	for _, id := range memberIDs {
		members[id] = struct{}{}
	}

	cur := target
	for depth := 0; cur.CanonicalOf != nil; depth++ {
		if depth > len(memberIDs)+64 {
			return ErrCanonicalCycle
		}
		next := *cur.CanonicalOf
		if next == targetID {
			return ErrCanonicalCycle
		}
		if _, isMember := members[next]; isMember && next != targetID {
			return ErrCanonicalCycle
		}
		cur, err = s.Storage.GetComplaintByID(next)
		if err != nil {
			return err
		}
		if cur == nil {
			return nil // dangling reference upstream; nothing more to walk
		}
	}
	return nil
}

func contains(ids []uint, id uint) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

func without(ids []uint, id uint) []uint {
	out := make([]uint, 0, len(ids))
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}
