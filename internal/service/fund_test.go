package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kintree/internal/filter"
)

func TestFundLifecycle(t *testing.T) {
	repo := newMemRepo()
	svc := NewFundService(repo, NewAuditService(repo), testLogger())

	treeID := uuid.New()
	actor := uuid.New()

	fund, err := svc.CreateFund(context.Background(), treeID, FundRequest{
		Name:     "Reunion pot",
		Amount:   12500,
		Currency: "EUR",
	}, actor)
	require.NoError(t, err)
	assert.Equal(t, int64(12500), fund.Amount)

	updated, err := svc.UpdateFund(context.Background(), treeID, fund.ID, FundRequest{
		Name:     "Reunion pot",
		Amount:   20000,
		Currency: "EUR",
	}, actor)
	require.NoError(t, err)
	assert.Equal(t, int64(20000), updated.Amount)

	require.NoError(t, svc.DeleteFund(context.Background(), treeID, fund.ID, actor))

	_, total, err := svc.ListFunds(context.Background(), treeID, filter.Query{})
	require.NoError(t, err)
	assert.Zero(t, total)
}

func TestListFundsByAmount(t *testing.T) {
	repo := newMemRepo()
	svc := NewFundService(repo, NewAuditService(repo), testLogger())

	treeID := uuid.New()
	actor := uuid.New()

	for _, amount := range []int64{500, 1500, 2500} {
		_, err := svc.CreateFund(context.Background(), treeID, FundRequest{
			Name:     "pot",
			Amount:   amount,
			Currency: "EUR",
		}, actor)
		require.NoError(t, err)
	}

	_, total, err := svc.ListFunds(context.Background(), treeID,
		listQuery("Amount", "GREATEREQUAL", "1500"))
	require.NoError(t, err)
	assert.Equal(t, 2, total)
}
