package graph

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"kintree/internal/model"
)

var ErrEmptyTree = errors.New("tree has no members")

// Node is one rendered member with its derived structural facts.
type Node struct {
	ID          uuid.UUID          `json:"id"`
	FullName    string             `json:"full_name"`
	Gender      model.Gender       `json:"gender"`
	Birthday    *string            `json:"birthday,omitempty"`
	Status      model.MemberStatus `json:"status"`
	IsRoot      bool               `json:"is_root"`
	PartnerIDs  []uuid.UUID        `json:"partner_ids"`
	ChildGroups []ChildGroup       `json:"child_groups"`
	Flags       Flags              `json:"flags"`
}

// RenderTree is the ordered, cycle-free render list for one tree.
type RenderTree struct {
	TreeID uuid.UUID `json:"tree_id"`
	RootID uuid.UUID `json:"root_id"`
	Nodes  []Node    `json:"nodes"`
}

// BuildTree traverses the snapshot outward from the root member along
// PARTNER and CHILDREN edges and returns one node per reachable member.
// Each member is visited at most once, so traversal terminates even when
// the edge data contains a cycle. If no member carries the root flag the
// earliest-created member is used instead.
//
// The computation carries no state between calls and either returns the
// complete reachable subgraph or an error; a cancelled context aborts
// between member visits and returns ctx.Err().
func BuildTree(ctx context.Context, s *Snapshot) (*RenderTree, error) {
	root, ok := s.Root()
	if !ok {
		root, ok = s.FallbackRoot()
	}
	if !ok {
		return nil, ErrEmptyTree
	}

	tree := &RenderTree{TreeID: s.TreeID(), RootID: root.ID}
	visited := make(map[uuid.UUID]bool, s.Len())
	queue := []uuid.UUID{root.ID}
	visited[root.ID] = true

	for len(queue) > 0 {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		id := queue[0]
		queue = queue[1:]

		member, ok := s.Member(id)
		if !ok {
			continue
		}

		node := Node{
			ID:          member.ID,
			FullName:    member.FullName,
			Gender:      member.Gender,
			Status:      member.Status,
			IsRoot:      member.IsRoot,
			PartnerIDs:  s.Partners(id),
			ChildGroups: s.ChildrenGroupedByCoParent(id),
			Flags:       s.RelationshipFlags(id),
		}
		if member.Birthday != nil {
			b := member.Birthday.Format("2006-01-02")
			node.Birthday = &b
		}
		tree.Nodes = append(tree.Nodes, node)

		for _, next := range s.neighbors(id) {
			if !visited[next] {
				visited[next] = true
				queue = append(queue, next)
			}
		}
	}

	return tree, nil
}

// neighbors lists the members adjacent to id over PARTNER and CHILDREN
// edges in both directions, deterministically ordered.
func (s *Snapshot) neighbors(id uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]bool)
	var out []uuid.UUID
	add := func(ids ...uuid.UUID) {
		for _, n := range ids {
			if n != id && !seen[n] && s.has(n) {
				seen[n] = true
				out = append(out, n)
			}
		}
	}

	for _, e := range s.partnerFrom[id] {
		add(e.ToMemberID)
	}
	for _, e := range s.partnerTo[id] {
		add(e.FromMemberID)
	}
	for _, e := range s.childrenFrom[id] {
		add(e.ToMemberID)
		if e.FromPartnerID != nil {
			add(*e.FromPartnerID)
		}
	}
	for _, e := range s.childrenPartner[id] {
		add(e.ToMemberID, e.FromMemberID)
	}
	for _, e := range s.childrenTo[id] {
		add(e.FromMemberID)
		if e.FromPartnerID != nil {
			add(*e.FromPartnerID)
		}
	}

	sortIDs(out)
	return out
}
