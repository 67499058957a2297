package memstore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fiado/internal/ledger"
	"fiado/internal/storetest"
)

func TestConformance(t *testing.T) {
	storetest.Run(t, func(t *testing.T) ledger.Store {
		return New()
	})
}

func TestIDsStartAtOneAndShareCounter(t *testing.T) {
	ctx := context.Background()
	s := New()

	c, err := s.AddClient(ctx, "larry", "")
	require.NoError(t, err)
	assert.Equal(t, int64(1), c.ID)

	a, err := s.AddAlias(ctx, c.ID, "el larry")
	require.NoError(t, err)
	assert.Equal(t, int64(2), a.ID)

	tx, err := s.AddTransaction(ctx, &c.ID, 100, 100, "", 1000)
	require.NoError(t, err)
	assert.Equal(t, int64(3), tx.ID)
}

func TestCountersAreInstancePrivate(t *testing.T) {
	ctx := context.Background()

	a := New()
	b := New()

	ca, err := a.AddClient(ctx, "larry", "")
	require.NoError(t, err)
	cb, err := b.AddClient(ctx, "moe", "")
	require.NoError(t, err)

	assert.Equal(t, ca.ID, cb.ID, "independent stores allocate independently")
}

func TestUpdateClient_KeepsIDOrder(t *testing.T) {
	ctx := context.Background()
	s := New()

	first, err := s.AddClient(ctx, "larry", "")
	require.NoError(t, err)
	_, err = s.AddClient(ctx, "moe", "")
	require.NoError(t, err)

	first.Name = "astracalustro"
	require.NoError(t, s.UpdateClient(ctx, first))

	clients, err := s.GetClients(ctx, ledger.NewClientFilter())
	require.NoError(t, err)
	require.Len(t, clients, 2)
	assert.Equal(t, "astracalustro", clients[0].Name, "updated record stays in id position")
	assert.Equal(t, "moe", clients[1].Name)
}

func TestClose_IsANoOp(t *testing.T) {
	s := New()
	assert.NoError(t, s.Close())
	assert.NoError(t, s.Close())
}
