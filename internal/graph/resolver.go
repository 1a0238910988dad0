package graph

import (
	"sort"

	"github.com/google/uuid"

	"kintree/internal/model"
)

// ChildGroup is the set of a member's children that share one co-parent.
// CoParentID is nil for children recorded without a co-parent. ChildIDs
// are ordered ascending by birthday, members without a birthday last.
type ChildGroup struct {
	CoParentID *uuid.UUID  `json:"co_parent_id,omitempty"`
	ChildIDs   []uuid.UUID `json:"child_ids"`
}

// Flags are the boolean relationship facts derived for one member.
type Flags struct {
	HasFather   bool `json:"has_father"`
	HasMother   bool `json:"has_mother"`
	HasSiblings bool `json:"has_siblings"`
	HasPartner  bool `json:"has_partner"`
	HasChildren bool `json:"has_children"`
}

// Partners returns the ids of members connected to id by a PARTNER edge.
// Partnerships may be recorded from either side, so when the primary
// direction (id as edge source) yields nothing, the inverse direction is
// checked before returning empty. Partners whose status is the undefined
// sentinel or who are flagged divorced are excluded.
func (s *Snapshot) Partners(id uuid.UUID) []uuid.UUID {
	ids := s.partnersFrom(id)
	if len(ids) == 0 {
		ids = s.partnersTo(id)
	}
	sortIDs(ids)
	return ids
}

func (s *Snapshot) partnersFrom(id uuid.UUID) []uuid.UUID {
	var out []uuid.UUID
	for _, e := range s.partnerFrom[id] {
		if s.qualifyingPartner(e.ToMemberID) {
			out = append(out, e.ToMemberID)
		}
	}
	return out
}

func (s *Snapshot) partnersTo(id uuid.UUID) []uuid.UUID {
	var out []uuid.UUID
	for _, e := range s.partnerTo[id] {
		if s.qualifyingPartner(e.FromMemberID) {
			out = append(out, e.FromMemberID)
		}
	}
	return out
}

func (s *Snapshot) qualifyingPartner(id uuid.UUID) bool {
	m, ok := s.members[id]
	if !ok {
		return false
	}
	return m.Status != model.StatusUndefined && !m.IsDivorced
}

// ChildrenGroupedByCoParent collects the CHILDREN edges where id is the
// primary parent, grouped by the co-parent slot. Group order and
// intra-group child order are deterministic regardless of edge input
// order: the nil group first, then groups ascending by co-parent id;
// children ascending by birthday with absent birthdays last, ties on id.
func (s *Snapshot) ChildrenGroupedByCoParent(id uuid.UUID) []ChildGroup {
	grouped := make(map[uuid.UUID][]uuid.UUID)
	var nilGroup []uuid.UUID
	var coParents []uuid.UUID

	for _, e := range s.childrenFrom[id] {
		if e.FromPartnerID == nil {
			nilGroup = append(nilGroup, e.ToMemberID)
			continue
		}
		cp := *e.FromPartnerID
		if _, seen := grouped[cp]; !seen {
			coParents = append(coParents, cp)
		}
		grouped[cp] = append(grouped[cp], e.ToMemberID)
	}
	sortIDs(coParents)

	var out []ChildGroup
	if len(nilGroup) > 0 {
		s.sortByBirthday(nilGroup)
		out = append(out, ChildGroup{ChildIDs: nilGroup})
	}
	for _, cp := range coParents {
		children := grouped[cp]
		s.sortByBirthday(children)
		cp := cp
		out = append(out, ChildGroup{CoParentID: &cp, ChildIDs: children})
	}
	return out
}

func (s *Snapshot) sortByBirthday(ids []uuid.UUID) {
	sort.SliceStable(ids, func(i, j int) bool {
		a, b := s.members[ids[i]], s.members[ids[j]]
		switch {
		case a.Birthday == nil && b.Birthday == nil:
			return a.ID.String() < b.ID.String()
		case a.Birthday == nil:
			return false
		case b.Birthday == nil:
			return true
		case !a.Birthday.Equal(*b.Birthday):
			return a.Birthday.Before(*b.Birthday)
		}
		return a.ID.String() < b.ID.String()
	})
}

// RelationshipFlags derives the five boolean facts for one member. A
// member with no edges yields the zero value.
func (s *Snapshot) RelationshipFlags(id uuid.UUID) Flags {
	var f Flags

	for _, e := range s.childrenTo[id] {
		if parent, ok := s.members[e.FromMemberID]; ok {
			if parent.Gender == model.GenderMale {
				f.HasFather = true
			} else {
				f.HasMother = true
			}
		}
		// A parent in the co-parent slot only counts while its status
		// is defined.
		if e.FromPartnerID != nil {
			if partner, ok := s.members[*e.FromPartnerID]; ok && partner.Status != model.StatusUndefined {
				if partner.Gender == model.GenderMale {
					f.HasFather = true
				} else {
					f.HasMother = true
				}
			}
		}

		fromCount := s.outgoingChildrenCount(e.FromMemberID)
		partnerCount := 0
		if e.FromPartnerID != nil {
			partnerCount = s.outgoingChildrenCount(*e.FromPartnerID)
		}
		// Matches the recorded-data semantics: each parent's count alone,
		// plus both counts summed. The sum can double-count a child
		// recorded once per parent.
		if fromCount > 1 || partnerCount > 1 || fromCount+partnerCount > 1 {
			f.HasSiblings = true
		}
	}

	if len(s.partnersFrom(id)) > 0 || len(s.partnersTo(id)) > 0 {
		f.HasPartner = true
	}

	if len(s.childrenFrom[id]) > 0 || len(s.childrenPartner[id]) > 0 {
		f.HasChildren = true
	}

	return f
}

// outgoingChildrenCount is the member's total CHILDREN edges across both
// parent slots.
func (s *Snapshot) outgoingChildrenCount(id uuid.UUID) int {
	return len(s.childrenFrom[id]) + len(s.childrenPartner[id])
}
