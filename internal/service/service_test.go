package service

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"kintree/internal/access"
	"kintree/internal/filter"
	"kintree/internal/graph"
	"kintree/internal/model"
	"kintree/internal/repository"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testLimiter(t *testing.T) *RateLimiter {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewRateLimiter(client)
}

// memRepo is an in-memory Repository. Audit writes arrive on a separate
// goroutine, hence the mutex.
type memRepo struct {
	mu            sync.Mutex
	users         map[uuid.UUID]model.User
	registrations map[uuid.UUID]model.UserRegistration
	trees         map[uuid.UUID]model.Tree
	members       map[uuid.UUID]model.Member
	edges         map[uuid.UUID]model.RelationshipEdge
	bindings      map[string]model.TreeUserBinding
	grants        map[uuid.UUID]model.PermissionGrant
	invitations   map[uuid.UUID]model.Invitation
	events        map[uuid.UUID]model.Event
	funds         map[uuid.UUID]model.Fund
	auditLogs     []model.AuditLog
}

func newMemRepo() *memRepo {
	return &memRepo{
		users:         make(map[uuid.UUID]model.User),
		registrations: make(map[uuid.UUID]model.UserRegistration),
		trees:         make(map[uuid.UUID]model.Tree),
		members:       make(map[uuid.UUID]model.Member),
		edges:         make(map[uuid.UUID]model.RelationshipEdge),
		bindings:      make(map[string]model.TreeUserBinding),
		grants:        make(map[uuid.UUID]model.PermissionGrant),
		invitations:   make(map[uuid.UUID]model.Invitation),
		events:        make(map[uuid.UUID]model.Event),
		funds:         make(map[uuid.UUID]model.Fund),
	}
}

func bindingKey(treeID, userID uuid.UUID) string {
	return treeID.String() + "/" + userID.String()
}

func listQuery(field, op, value string) filter.Query {
	return filter.Query{Conditions: []filter.Condition{{Field: field, Operator: op, Value: value}}}
}

func (r *memRepo) CreateUser(_ context.Context, user model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.users[user.ID] = user
	return nil
}

func (r *memRepo) GetUserByID(_ context.Context, id uuid.UUID) (model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[id]
	if !ok {
		return model.User{}, repository.ErrUserNotFound
	}
	return user, nil
}

func (r *memRepo) GetUserByEmail(_ context.Context, email string) (model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, user := range r.users {
		if user.Email == email {
			return user, nil
		}
	}
	return model.User{}, repository.ErrUserNotFound
}

func (r *memRepo) UpdateUser(_ context.Context, user model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[user.ID]; !ok {
		return repository.ErrUserNotFound
	}
	r.users[user.ID] = user
	return nil
}

func (r *memRepo) CreateUserRegistration(_ context.Context, reg model.UserRegistration) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.registrations[reg.ID] = reg
	return nil
}

func (r *memRepo) GetUserRegistrationByUserID(_ context.Context, userID uuid.UUID) (model.UserRegistration, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, reg := range r.registrations {
		if reg.UserID == userID {
			return reg, nil
		}
	}
	return model.UserRegistration{}, repository.ErrUserNotFound
}

func (r *memRepo) DeleteUserRegistration(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.registrations, id)
	return nil
}

func (r *memRepo) CreateTree(_ context.Context, tree model.Tree) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.trees[tree.ID] = tree
	return nil
}

func (r *memRepo) GetTreeByID(_ context.Context, id uuid.UUID) (model.Tree, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	tree, ok := r.trees[id]
	if !ok {
		return model.Tree{}, repository.ErrTreeNotFound
	}
	return tree, nil
}

func (r *memRepo) UpdateTree(_ context.Context, tree model.Tree) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.trees[tree.ID]; !ok {
		return repository.ErrTreeNotFound
	}
	r.trees[tree.ID] = tree
	return nil
}

func (r *memRepo) DeleteTree(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.trees, id)
	return nil
}

func (r *memRepo) GetTreesByUser(_ context.Context, userID uuid.UUID) ([]model.Tree, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.Tree
	for _, b := range r.bindings {
		if b.UserID == userID {
			if tree, ok := r.trees[b.TreeID]; ok {
				out = append(out, tree)
			}
		}
	}
	return out, nil
}

func (r *memRepo) CreateMember(_ context.Context, member model.Member) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.members[member.ID] = member
	return nil
}

func (r *memRepo) GetMemberByID(_ context.Context, id uuid.UUID) (model.Member, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	member, ok := r.members[id]
	if !ok {
		return model.Member{}, repository.ErrMemberNotFound
	}
	return member, nil
}

func (r *memRepo) UpdateMember(_ context.Context, member model.Member) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.members[member.ID]; !ok {
		return repository.ErrMemberNotFound
	}
	r.members[member.ID] = member
	return nil
}

func (r *memRepo) SoftDeleteMember(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	member, ok := r.members[id]
	if !ok {
		return repository.ErrMemberNotFound
	}
	member.Deleted = true
	r.members[id] = member
	return nil
}

func (r *memRepo) GetMembersByTree(_ context.Context, treeID uuid.UUID) ([]model.Member, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.Member
	for _, m := range r.members {
		if m.TreeID == treeID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (r *memRepo) CreateEdge(_ context.Context, edge model.RelationshipEdge) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.edges[edge.ID] = edge
	return nil
}

func (r *memRepo) GetEdgeByID(_ context.Context, id uuid.UUID) (model.RelationshipEdge, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	edge, ok := r.edges[id]
	if !ok {
		return model.RelationshipEdge{}, repository.ErrEdgeNotFound
	}
	return edge, nil
}

func (r *memRepo) SoftDeleteEdge(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	edge, ok := r.edges[id]
	if !ok {
		return repository.ErrEdgeNotFound
	}
	edge.Deleted = true
	r.edges[id] = edge
	return nil
}

func (r *memRepo) GetEdgesByTree(_ context.Context, treeID uuid.UUID) ([]model.RelationshipEdge, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.RelationshipEdge
	for _, e := range r.edges {
		if e.TreeID == treeID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (r *memRepo) CreateTreeUserBinding(_ context.Context, binding model.TreeUserBinding) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := bindingKey(binding.TreeID, binding.UserID)
	if _, ok := r.bindings[key]; ok {
		return repository.ErrDuplicateBinding
	}
	r.bindings[key] = binding
	return nil
}

func (r *memRepo) GetTreeUserBinding(_ context.Context, treeID, userID uuid.UUID) (model.TreeUserBinding, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	binding, ok := r.bindings[bindingKey(treeID, userID)]
	if !ok {
		return model.TreeUserBinding{}, access.ErrBindingNotFound
	}
	return binding, nil
}

func (r *memRepo) GetBindingsByTree(_ context.Context, treeID uuid.UUID) ([]model.TreeUserBinding, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.TreeUserBinding
	for _, b := range r.bindings {
		if b.TreeID == treeID {
			out = append(out, b)
		}
	}
	return out, nil
}

func (r *memRepo) DeleteTreeUserBinding(_ context.Context, treeID, userID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.bindings, bindingKey(treeID, userID))
	return nil
}

func (r *memRepo) UpsertGrant(_ context.Context, grant model.PermissionGrant) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, g := range r.grants {
		if g.TreeID == grant.TreeID && g.MemberID == grant.MemberID && g.Feature == grant.Feature {
			grant.ID = g.ID
			r.grants[id] = grant
			return nil
		}
	}
	r.grants[grant.ID] = grant
	return nil
}

func (r *memRepo) GetGrantsByMember(_ context.Context, treeID, memberID uuid.UUID) ([]model.PermissionGrant, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.PermissionGrant
	for _, g := range r.grants {
		if g.TreeID == treeID && g.MemberID == memberID {
			out = append(out, g)
		}
	}
	return out, nil
}

func (r *memRepo) GetGrantsByTree(_ context.Context, treeID uuid.UUID) ([]model.PermissionGrant, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.PermissionGrant
	for _, g := range r.grants {
		if g.TreeID == treeID {
			out = append(out, g)
		}
	}
	return out, nil
}

func (r *memRepo) DeleteGrant(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.grants, id)
	return nil
}

func (r *memRepo) DeleteGrantsByMember(_ context.Context, treeID, memberID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, g := range r.grants {
		if g.TreeID == treeID && g.MemberID == memberID {
			delete(r.grants, id)
		}
	}
	return nil
}

func (r *memRepo) CreateInvitation(_ context.Context, inv model.Invitation) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.invitations[inv.ID] = inv
	return nil
}

func (r *memRepo) GetInvitationByCode(_ context.Context, code string) (model.Invitation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, inv := range r.invitations {
		if inv.Code == code {
			return inv, nil
		}
	}
	return model.Invitation{}, repository.ErrInvitationNotFound
}

func (r *memRepo) MarkInvitationUsed(_ context.Context, id, usedBy uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	inv, ok := r.invitations[id]
	if !ok {
		return repository.ErrInvitationNotFound
	}
	now := time.Now()
	inv.UsedAt = &now
	inv.UsedBy = &usedBy
	r.invitations[id] = inv
	return nil
}

func (r *memRepo) GetInvitationsByTree(_ context.Context, treeID uuid.UUID) ([]model.Invitation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.Invitation
	for _, inv := range r.invitations {
		if inv.TreeID == treeID {
			out = append(out, inv)
		}
	}
	return out, nil
}

func (r *memRepo) CreateEvent(_ context.Context, event model.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events[event.ID] = event
	return nil
}

func (r *memRepo) GetEventByID(_ context.Context, id uuid.UUID) (model.Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	event, ok := r.events[id]
	if !ok {
		return model.Event{}, repository.ErrEventNotFound
	}
	return event, nil
}

func (r *memRepo) UpdateEvent(_ context.Context, event model.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.events[event.ID]; !ok {
		return repository.ErrEventNotFound
	}
	r.events[event.ID] = event
	return nil
}

func (r *memRepo) SoftDeleteEvent(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	event, ok := r.events[id]
	if !ok {
		return repository.ErrEventNotFound
	}
	event.Deleted = true
	r.events[id] = event
	return nil
}

func (r *memRepo) GetEventsByTree(_ context.Context, treeID uuid.UUID) ([]model.Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.Event
	for _, e := range r.events {
		if e.TreeID == treeID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (r *memRepo) CreateFund(_ context.Context, fund model.Fund) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.funds[fund.ID] = fund
	return nil
}

func (r *memRepo) GetFundByID(_ context.Context, id uuid.UUID) (model.Fund, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	fund, ok := r.funds[id]
	if !ok {
		return model.Fund{}, repository.ErrFundNotFound
	}
	return fund, nil
}

func (r *memRepo) UpdateFund(_ context.Context, fund model.Fund) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.funds[fund.ID]; !ok {
		return repository.ErrFundNotFound
	}
	r.funds[fund.ID] = fund
	return nil
}

func (r *memRepo) SoftDeleteFund(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	fund, ok := r.funds[id]
	if !ok {
		return repository.ErrFundNotFound
	}
	fund.Deleted = true
	r.funds[id] = fund
	return nil
}

func (r *memRepo) GetFundsByTree(_ context.Context, treeID uuid.UUID) ([]model.Fund, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.Fund
	for _, f := range r.funds {
		if f.TreeID == treeID {
			out = append(out, f)
		}
	}
	return out, nil
}

func (r *memRepo) CreateAuditLog(_ context.Context, entry model.AuditLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.auditLogs = append(r.auditLogs, entry)
	return nil
}

func (r *memRepo) HealthCheck(_ context.Context) error {
	return nil
}

// fakeCache records invalidations so tests can assert on them.
type fakeCache struct {
	mu          sync.Mutex
	entries     map[uuid.UUID]*graph.RenderTree
	invalidated []uuid.UUID
	sets        int
}

func newFakeCache() *fakeCache {
	return &fakeCache{entries: make(map[uuid.UUID]*graph.RenderTree)}
}

func (c *fakeCache) Get(_ context.Context, treeID uuid.UUID) (*graph.RenderTree, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	tree, ok := c.entries[treeID]
	return tree, ok
}

func (c *fakeCache) Set(_ context.Context, tree *graph.RenderTree) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sets++
	c.entries[tree.TreeID] = tree
}

func (c *fakeCache) Invalidate(_ context.Context, treeID uuid.UUID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, treeID)
	c.invalidated = append(c.invalidated, treeID)
}

func (c *fakeCache) wasInvalidated(treeID uuid.UUID) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, id := range c.invalidated {
		if id == treeID {
			return true
		}
	}
	return false
}

// fakeSender counts outbound mail without sending anything.
type fakeSender struct {
	mu            sync.Mutex
	invitations   []string
	verifications []string
}

func (s *fakeSender) SendInvitation(_ context.Context, to, _, _ string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.invitations = append(s.invitations, to)
	return nil
}

func (s *fakeSender) SendVerification(_ context.Context, to, _ string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.verifications = append(s.verifications, to)
	return nil
}
