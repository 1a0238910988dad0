package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kintree/internal/model"
)

func seedUser(t *testing.T, repo *memRepo, name string) model.User {
	t.Helper()
	user := model.User{
		ID:            uuid.New(),
		Name:          name,
		Email:         name + "@example.com",
		EmailVerified: true,
		CreatedAt:     time.Now(),
	}
	require.NoError(t, repo.CreateUser(context.Background(), user))
	return user
}

func TestCreateTreeEnrollsOwner(t *testing.T) {
	repo := newMemRepo()
	cache := newFakeCache()
	svc := NewTreeService(repo, cache, NewAuditService(repo), testLogger())

	owner := seedUser(t, repo, "alice")
	tree, err := svc.CreateTree(context.Background(), owner.ID, "Smith family")
	require.NoError(t, err)
	assert.Equal(t, "Smith family", tree.Name)
	assert.Equal(t, owner.ID, tree.OwnerID)

	members, err := repo.GetMembersByTree(context.Background(), tree.ID)
	require.NoError(t, err)
	require.Len(t, members, 1)
	assert.True(t, members[0].IsRoot)
	assert.Equal(t, owner.Name, members[0].FullName)
	assert.Equal(t, model.StatusUndefined, members[0].Status)

	binding, err := repo.GetTreeUserBinding(context.Background(), tree.ID, owner.ID)
	require.NoError(t, err)
	assert.Equal(t, model.RoleOwner, binding.Role)
	assert.Equal(t, members[0].ID, binding.MemberID)
}

func TestCreateTreeRequiresName(t *testing.T) {
	repo := newMemRepo()
	svc := NewTreeService(repo, newFakeCache(), NewAuditService(repo), testLogger())

	owner := seedUser(t, repo, "alice")
	_, err := svc.CreateTree(context.Background(), owner.ID, "")
	assert.ErrorIs(t, err, ErrTreeNameRequired)
}

func TestRenameTree(t *testing.T) {
	repo := newMemRepo()
	svc := NewTreeService(repo, newFakeCache(), NewAuditService(repo), testLogger())

	owner := seedUser(t, repo, "alice")
	tree, err := svc.CreateTree(context.Background(), owner.ID, "old name")
	require.NoError(t, err)

	renamed, err := svc.RenameTree(context.Background(), tree.ID, "new name", owner.ID)
	require.NoError(t, err)
	assert.Equal(t, "new name", renamed.Name)

	stored, err := svc.GetTree(context.Background(), tree.ID)
	require.NoError(t, err)
	assert.Equal(t, "new name", stored.Name)
}

func TestDeleteTreeInvalidatesRenderCache(t *testing.T) {
	repo := newMemRepo()
	cache := newFakeCache()
	svc := NewTreeService(repo, cache, NewAuditService(repo), testLogger())

	owner := seedUser(t, repo, "alice")
	tree, err := svc.CreateTree(context.Background(), owner.ID, "doomed")
	require.NoError(t, err)

	require.NoError(t, svc.DeleteTree(context.Background(), tree.ID, owner.ID))
	assert.True(t, cache.wasInvalidated(tree.ID))

	_, err = svc.GetTree(context.Background(), tree.ID)
	assert.ErrorIs(t, err, ErrTreeNotFound)
}

func TestDeleteTreeNotFound(t *testing.T) {
	repo := newMemRepo()
	svc := NewTreeService(repo, newFakeCache(), NewAuditService(repo), testLogger())

	err := svc.DeleteTree(context.Background(), uuid.New(), uuid.New())
	assert.ErrorIs(t, err, ErrTreeNotFound)
}

func TestRenderTreeCachesResult(t *testing.T) {
	repo := newMemRepo()
	cache := newFakeCache()
	svc := NewTreeService(repo, cache, NewAuditService(repo), testLogger())

	owner := seedUser(t, repo, "alice")
	tree, err := svc.CreateTree(context.Background(), owner.ID, "Smith family")
	require.NoError(t, err)

	first, err := svc.RenderTree(context.Background(), tree.ID)
	require.NoError(t, err)
	require.NotNil(t, first)
	assert.Equal(t, tree.ID, first.TreeID)
	assert.Len(t, first.Nodes, 1)
	assert.Equal(t, 1, cache.sets)

	// Second render is served from the cache.
	second, err := svc.RenderTree(context.Background(), tree.ID)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, cache.sets)
}

func TestListMyTrees(t *testing.T) {
	repo := newMemRepo()
	svc := NewTreeService(repo, newFakeCache(), NewAuditService(repo), testLogger())

	alice := seedUser(t, repo, "alice")
	bob := seedUser(t, repo, "bob")

	_, err := svc.CreateTree(context.Background(), alice.ID, "alice tree")
	require.NoError(t, err)
	_, err = svc.CreateTree(context.Background(), bob.ID, "bob tree")
	require.NoError(t, err)

	trees, err := svc.ListMyTrees(context.Background(), alice.ID)
	require.NoError(t, err)
	require.Len(t, trees, 1)
	assert.Equal(t, "alice tree", trees[0].Name)
}
