package graph

import (
	"sort"

	"github.com/google/uuid"

	"kintree/internal/model"
)

// Snapshot is a point-in-time, read-only view of one tree's members and
// relationship edges. It holds flat tables keyed by id with lookup
// indexes; all derivation walks these indexes rather than object
// references, so the data itself can never form a live cycle.
//
// Soft-deleted members are dropped at construction, together with every
// edge that references a dropped member in any participant slot.
type Snapshot struct {
	treeID  uuid.UUID
	members map[uuid.UUID]model.Member
	order   []uuid.UUID

	// CHILDREN edges indexed by each participant slot.
	childrenFrom    map[uuid.UUID][]model.RelationshipEdge // primary parent
	childrenPartner map[uuid.UUID][]model.RelationshipEdge // co-parent slot
	childrenTo      map[uuid.UUID][]model.RelationshipEdge // the child

	// PARTNER edges indexed by direction.
	partnerFrom map[uuid.UUID][]model.RelationshipEdge
	partnerTo   map[uuid.UUID][]model.RelationshipEdge
}

// NewSnapshot builds the arena from flat member and edge lists. Input
// order does not matter; members are re-ordered by (CreatedAt, ID) so
// every derived sequence is deterministic.
func NewSnapshot(treeID uuid.UUID, members []model.Member, edges []model.RelationshipEdge) *Snapshot {
	s := &Snapshot{
		treeID:          treeID,
		members:         make(map[uuid.UUID]model.Member, len(members)),
		childrenFrom:    make(map[uuid.UUID][]model.RelationshipEdge),
		childrenPartner: make(map[uuid.UUID][]model.RelationshipEdge),
		childrenTo:      make(map[uuid.UUID][]model.RelationshipEdge),
		partnerFrom:     make(map[uuid.UUID][]model.RelationshipEdge),
		partnerTo:       make(map[uuid.UUID][]model.RelationshipEdge),
	}

	for _, m := range members {
		if m.Deleted || m.TreeID != treeID {
			continue
		}
		s.members[m.ID] = m
		s.order = append(s.order, m.ID)
	}
	sort.Slice(s.order, func(i, j int) bool {
		a, b := s.members[s.order[i]], s.members[s.order[j]]
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.Before(b.CreatedAt)
		}
		return a.ID.String() < b.ID.String()
	})

	for _, e := range edges {
		if e.Deleted || e.TreeID != treeID {
			continue
		}
		if !s.has(e.FromMemberID) || !s.has(e.ToMemberID) {
			continue
		}
		if e.FromPartnerID != nil && !s.has(*e.FromPartnerID) {
			continue
		}
		switch e.Category {
		case model.CategoryChildren:
			s.childrenFrom[e.FromMemberID] = append(s.childrenFrom[e.FromMemberID], e)
			if e.FromPartnerID != nil {
				s.childrenPartner[*e.FromPartnerID] = append(s.childrenPartner[*e.FromPartnerID], e)
			}
			s.childrenTo[e.ToMemberID] = append(s.childrenTo[e.ToMemberID], e)
		case model.CategoryPartner:
			s.partnerFrom[e.FromMemberID] = append(s.partnerFrom[e.FromMemberID], e)
			s.partnerTo[e.ToMemberID] = append(s.partnerTo[e.ToMemberID], e)
		}
	}

	return s
}

func (s *Snapshot) has(id uuid.UUID) bool {
	_, ok := s.members[id]
	return ok
}

func (s *Snapshot) TreeID() uuid.UUID {
	return s.treeID
}

// Member returns the member record for id, if it is part of the snapshot.
func (s *Snapshot) Member(id uuid.UUID) (model.Member, bool) {
	m, ok := s.members[id]
	return m, ok
}

// MemberIDs returns all member ids ordered by (CreatedAt, ID).
func (s *Snapshot) MemberIDs() []uuid.UUID {
	out := make([]uuid.UUID, len(s.order))
	copy(out, s.order)
	return out
}

func (s *Snapshot) Len() int {
	return len(s.members)
}

// Root returns the member flagged as the tree's traversal entry point.
func (s *Snapshot) Root() (model.Member, bool) {
	for _, id := range s.order {
		if m := s.members[id]; m.IsRoot {
			return m, true
		}
	}
	return model.Member{}, false
}

// FallbackRoot returns the earliest-created member. Used when no member
// carries the root flag; deterministic because order ties break on id.
func (s *Snapshot) FallbackRoot() (model.Member, bool) {
	if len(s.order) == 0 {
		return model.Member{}, false
	}
	return s.members[s.order[0]], true
}

func sortIDs(ids []uuid.UUID) {
	sort.Slice(ids, func(i, j int) bool { return ids[i].String() < ids[j].String() })
}
