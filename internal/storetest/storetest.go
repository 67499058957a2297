// Package storetest holds the conformance suite every storage backend
// must pass. Both backend packages run it, so a behavioral difference
// between them is a test failure rather than a latent bug.
package storetest

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fiado/internal/ledger"
)

// Factory creates a fresh, empty store for one subtest. The suite
// closes the store when the subtest finishes.
type Factory func(t *testing.T) ledger.Store

// Run executes the full conformance suite against the backend produced
// by the factory.
func Run(t *testing.T, newStore Factory) {
	tests := []struct {
		name string
		fn   func(t *testing.T, s ledger.Store)
	}{
		{"NewClientHasZeroBalance", testNewClientHasZeroBalance},
		{"AddClientRejectsEmptyName", testAddClientRejectsEmptyName},
		{"ClientIDsMonotonic", testClientIDsMonotonic},
		{"UpdateClientRewritesNameAndDetail", testUpdateClientRewritesNameAndDetail},
		{"UpdateClientPreservesBalance", testUpdateClientPreservesBalance},
		{"UpdateClientMissing", testUpdateClientMissing},
		{"RemoveClientIdempotent", testRemoveClientIdempotent},
		{"RemoveClientCascades", testRemoveClientCascades},
		{"GetClientsFilters", testGetClientsFilters},
		{"Aliases", testAliases},
		{"AliasMissingClient", testAliasMissingClient},
		{"RemoveAliasIdempotent", testRemoveAliasIdempotent},
		{"UpdateAliasMissing", testUpdateAliasMissing},
		{"RecomputeBalanceLaw", testRecomputeBalanceLaw},
		{"AdjustBalanceInverse", testAdjustBalanceInverse},
		{"AdjustAndRecomputeConverge", testAdjustAndRecomputeConverge},
		{"AnonymousTransactionInvariant", testAnonymousTransactionInvariant},
		{"TransactionMutationsLeaveBalanceAlone", testTransactionMutationsLeaveBalanceAlone},
		{"TransactionFilters", testTransactionFilters},
		{"UpdateTransaction", testUpdateTransaction},
		{"UpdateTransactionMissingClient", testUpdateTransactionMissingClient},
		{"TargetedTransactionUpdates", testTargetedTransactionUpdates},
		{"RemoveTransactionIdempotent", testRemoveTransactionIdempotent},
		{"EndToEndScenario", testEndToEndScenario},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newStore(t)
			defer s.Close()
			tt.fn(t, s)
		})
	}
}

func testNewClientHasZeroBalance(t *testing.T, s ledger.Store) {
	ctx := context.Background()

	c, err := s.AddClient(ctx, "larry", "regular")
	require.NoError(t, err)
	assert.Equal(t, int64(0), c.Balance)

	got := fetchClient(t, s, c.ID)
	assert.Equal(t, int64(0), got.Balance, "balance must stay 0 until a transaction exists")
}

func testAddClientRejectsEmptyName(t *testing.T, s ledger.Store) {
	ctx := context.Background()

	_, err := s.AddClient(ctx, "", "no name")
	require.Error(t, err)
	assert.True(t, ledger.IsValidation(err))

	clients, err := s.GetClients(ctx, ledger.NewClientFilter())
	require.NoError(t, err)
	assert.Empty(t, clients, "failed validation must not leave partial state")
}

func testClientIDsMonotonic(t *testing.T, s ledger.Store) {
	ctx := context.Background()

	a, err := s.AddClient(ctx, "a", "")
	require.NoError(t, err)
	b, err := s.AddClient(ctx, "b", "")
	require.NoError(t, err)
	require.NoError(t, s.RemoveClient(ctx, b.ID))

	c, err := s.AddClient(ctx, "c", "")
	require.NoError(t, err)

	assert.Greater(t, b.ID, a.ID)
	assert.Greater(t, c.ID, b.ID, "ids are never reused within a store's lifetime")
}

func testUpdateClientRewritesNameAndDetail(t *testing.T, s ledger.Store) {
	ctx := context.Background()

	c, err := s.AddClient(ctx, "larry", "old")
	require.NoError(t, err)

	c.Name = "astracalustro"
	c.Detail = "new"
	require.NoError(t, s.UpdateClient(ctx, c))

	got := fetchClient(t, s, c.ID)
	assert.Equal(t, "astracalustro", got.Name)
	assert.Equal(t, "new", got.Detail)
}

func testUpdateClientPreservesBalance(t *testing.T, s ledger.Store) {
	ctx := context.Background()

	c, err := s.AddClient(ctx, "larry", "")
	require.NoError(t, err)
	require.NoError(t, s.AdjustBalance(ctx, c.ID, 250))

	// An update carrying a stale balance must not clobber the stored
	// value; balance moves only through the balance operations.
	c.Balance = -9999
	c.Name = "moe"
	require.NoError(t, s.UpdateClient(ctx, c))

	got := fetchClient(t, s, c.ID)
	assert.Equal(t, int64(250), got.Balance)
}

func testUpdateClientMissing(t *testing.T, s ledger.Store) {
	ctx := context.Background()

	err := s.UpdateClient(ctx, ledger.Client{ID: 404, Name: "ghost"})
	assert.True(t, ledger.IsNotFound(err))
}

func testRemoveClientIdempotent(t *testing.T, s ledger.Store) {
	ctx := context.Background()

	c, err := s.AddClient(ctx, "larry", "")
	require.NoError(t, err)

	require.NoError(t, s.RemoveClient(ctx, c.ID))
	require.NoError(t, s.RemoveClient(ctx, c.ID), "second removal is a no-op")
	require.NoError(t, s.RemoveClient(ctx, 404), "unknown id is a no-op")
}

func testRemoveClientCascades(t *testing.T, s ledger.Store) {
	ctx := context.Background()

	c, err := s.AddClient(ctx, "larry", "")
	require.NoError(t, err)
	_, err = s.AddAlias(ctx, c.ID, "el larry")
	require.NoError(t, err)
	tx, err := s.AddTransaction(ctx, &c.ID, 1000, 400, "credit", 1700000000)
	require.NoError(t, err)

	require.NoError(t, s.RemoveClient(ctx, c.ID))

	aliases, err := s.GetAliases(ctx, c.ID)
	require.NoError(t, err)
	assert.Empty(t, aliases, "aliases die with the client")

	got := fetchTransaction(t, s, tx.ID)
	assert.Nil(t, got.ClientID, "transaction history survives as anonymous")
	assert.Equal(t, int64(1000), got.Price)
}

func testGetClientsFilters(t *testing.T, s ledger.Store) {
	ctx := context.Background()

	larry, err := s.AddClient(ctx, "larry", "")
	require.NoError(t, err)
	_, err = s.AddClient(ctx, "moe", "")
	require.NoError(t, err)

	byName, err := s.GetClients(ctx, ledger.NewClientFilter().WithName("larry"))
	require.NoError(t, err)
	require.Len(t, byName, 1)
	assert.Equal(t, larry.ID, byName[0].ID)

	byBoth, err := s.GetClients(ctx, ledger.NewClientFilter().WithName("larry").WithID(larry.ID+1))
	require.NoError(t, err)
	assert.Empty(t, byBoth, "clauses combine with AND")

	all, err := s.GetClients(ctx, ledger.NewClientFilter())
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func testAliases(t *testing.T, s ledger.Store) {
	ctx := context.Background()

	c, err := s.AddClient(ctx, "larry", "")
	require.NoError(t, err)

	a1, err := s.AddAlias(ctx, c.ID, "el larry")
	require.NoError(t, err)
	a2, err := s.AddAlias(ctx, c.ID, "lazarus")
	require.NoError(t, err)

	aliases, err := s.GetAliases(ctx, c.ID)
	require.NoError(t, err)
	require.Len(t, aliases, 2)
	assert.Equal(t, []int64{a1.ID, a2.ID}, []int64{aliases[0].ID, aliases[1].ID})

	a1.Alias = "don larry"
	require.NoError(t, s.UpdateAlias(ctx, a1))

	aliases, err = s.GetAliases(ctx, c.ID)
	require.NoError(t, err)
	require.Len(t, aliases, 2)
	assert.Equal(t, "don larry", aliases[0].Alias)
	assert.Equal(t, c.ID, aliases[0].ClientID, "owning client never changes")
}

func testAliasMissingClient(t *testing.T, s ledger.Store) {
	ctx := context.Background()

	_, err := s.AddAlias(ctx, 404, "ghost")
	assert.True(t, ledger.IsNotFound(err))
}

func testRemoveAliasIdempotent(t *testing.T, s ledger.Store) {
	ctx := context.Background()

	c, err := s.AddClient(ctx, "larry", "")
	require.NoError(t, err)
	a, err := s.AddAlias(ctx, c.ID, "el larry")
	require.NoError(t, err)

	require.NoError(t, s.RemoveAlias(ctx, a.ID))
	require.NoError(t, s.RemoveAlias(ctx, a.ID), "second removal is a no-op")
}

func testUpdateAliasMissing(t *testing.T, s ledger.Store) {
	ctx := context.Background()

	err := s.UpdateAlias(ctx, ledger.Alias{ID: 404, Alias: "ghost"})
	assert.True(t, ledger.IsNotFound(err))
}

func testRecomputeBalanceLaw(t *testing.T, s ledger.Store) {
	ctx := context.Background()

	c, err := s.AddClient(ctx, "larry", "")
	require.NoError(t, err)
	other, err := s.AddClient(ctx, "moe", "")
	require.NoError(t, err)

	// larry: (400-1000) + (200-200) + (500-300) = -400
	for _, tc := range []struct{ price, payment int64 }{
		{1000, 400},
		{200, 200},
		{300, 500},
	} {
		_, err := s.AddTransaction(ctx, &c.ID, tc.price, tc.payment, "", 1700000000)
		require.NoError(t, err)
	}
	// Noise owned by another client and an anonymous record; neither
	// may leak into larry's balance.
	_, err = s.AddTransaction(ctx, &other.ID, 9000, 0, "", 1700000000)
	require.NoError(t, err)
	_, err = s.AddTransaction(ctx, nil, 50, 50, "", 1700000000)
	require.NoError(t, err)

	require.NoError(t, s.RecomputeBalance(ctx, c.ID))
	assert.Equal(t, int64(-400), fetchClient(t, s, c.ID).Balance)

	require.NoError(t, s.RecomputeBalance(ctx, other.ID))
	assert.Equal(t, int64(-9000), fetchClient(t, s, other.ID).Balance)
}

func testAdjustBalanceInverse(t *testing.T, s ledger.Store) {
	ctx := context.Background()

	c, err := s.AddClient(ctx, "larry", "")
	require.NoError(t, err)

	require.NoError(t, s.AdjustBalance(ctx, c.ID, 700))
	require.NoError(t, s.AdjustBalance(ctx, c.ID, -700))
	assert.Equal(t, int64(0), fetchClient(t, s, c.ID).Balance)

	assert.True(t, ledger.IsNotFound(s.AdjustBalance(ctx, 404, 1)))
	assert.True(t, ledger.IsNotFound(s.RecomputeBalance(ctx, 404)))
}

func testAdjustAndRecomputeConverge(t *testing.T, s ledger.Store) {
	ctx := context.Background()

	c, err := s.AddClient(ctx, "larry", "")
	require.NoError(t, err)

	// Fast path: pair each transaction write with a delta adjustment.
	tx, err := s.AddTransaction(ctx, &c.ID, 1000, 400, "", 1700000000)
	require.NoError(t, err)
	require.NoError(t, s.AdjustBalance(ctx, c.ID, 400-1000))

	require.NoError(t, s.UpdateTransactionBalance(ctx, tx.ID, 250))
	require.NoError(t, s.AdjustBalance(ctx, c.ID, 250))

	fast := fetchClient(t, s, c.ID).Balance

	// Slow path over the same history must land on the same value.
	require.NoError(t, s.RecomputeBalance(ctx, c.ID))
	assert.Equal(t, fast, fetchClient(t, s, c.ID).Balance)
	assert.Equal(t, int64(-350), fast)
}

func testAnonymousTransactionInvariant(t *testing.T, s ledger.Store) {
	ctx := context.Background()

	_, err := s.AddTransaction(ctx, nil, 100, 100, "walk-in", 1700000000)
	require.NoError(t, err, "fully paid anonymous transaction is fine")

	_, err = s.AddTransaction(ctx, nil, 100, 40, "walk-in", 1700000000)
	require.Error(t, err)
	assert.True(t, ledger.IsAnonPaymentMismatch(err))

	txs, err := s.GetTransactions(ctx, ledger.NewTransactionFilter())
	require.NoError(t, err)
	assert.Len(t, txs, 1, "rejected transaction must not be written")
}

func testTransactionMutationsLeaveBalanceAlone(t *testing.T, s ledger.Store) {
	ctx := context.Background()

	c, err := s.AddClient(ctx, "larry", "")
	require.NoError(t, err)

	tx, err := s.AddTransaction(ctx, &c.ID, 1000, 400, "", 1700000000)
	require.NoError(t, err)
	assert.Equal(t, int64(0), fetchClient(t, s, c.ID).Balance, "add does not touch the cached balance")

	require.NoError(t, s.UpdateTransactionPrice(ctx, tx.ID, 1500))
	require.NoError(t, s.UpdateTransactionBalance(ctx, tx.ID, 100))
	require.NoError(t, s.RemoveTransaction(ctx, tx.ID))
	assert.Equal(t, int64(0), fetchClient(t, s, c.ID).Balance, "targeted updates and removal do not either")
}

func testTransactionFilters(t *testing.T, s ledger.Store) {
	ctx := context.Background()

	c, err := s.AddClient(ctx, "larry", "")
	require.NoError(t, err)

	early, err := s.AddTransaction(ctx, &c.ID, 100, 100, "early", 1000)
	require.NoError(t, err)
	mid, err := s.AddTransaction(ctx, &c.ID, 5000, 0, "mid", 2000)
	require.NoError(t, err)
	_, err = s.AddTransaction(ctx, nil, 70, 70, "anon", 3000)
	require.NoError(t, err)

	byClient, err := s.GetTransactions(ctx, ledger.NewTransactionFilter().WithClient(c.ID))
	require.NoError(t, err)
	assert.Len(t, byClient, 2)

	byDate, err := s.GetTransactions(ctx, ledger.NewTransactionFilter().WithDateRange(1000, 2000))
	require.NoError(t, err)
	assert.Len(t, byDate, 2, "date range is inclusive")

	byPrice, err := s.GetTransactions(ctx, ledger.NewTransactionFilter().WithPriceRange(0, 100))
	require.NoError(t, err)
	assert.Len(t, byPrice, 2)

	combined, err := s.GetTransactions(ctx, ledger.NewTransactionFilter().
		WithClient(c.ID).
		WithDateRange(1500, 3000).
		WithPriceRange(4000, 6000))
	require.NoError(t, err)
	require.Len(t, combined, 1)
	assert.Equal(t, mid.ID, combined[0].ID)

	byID, err := s.GetTransactions(ctx, ledger.NewTransactionFilter().WithID(early.ID))
	require.NoError(t, err)
	require.Len(t, byID, 1)
	assert.Equal(t, "early", byID[0].Detail)
}

func testUpdateTransaction(t *testing.T, s ledger.Store) {
	ctx := context.Background()

	a, err := s.AddClient(ctx, "larry", "")
	require.NoError(t, err)
	b, err := s.AddClient(ctx, "moe", "")
	require.NoError(t, err)

	tx, err := s.AddTransaction(ctx, &a.ID, 1000, 400, "old", 1000)
	require.NoError(t, err)

	tx.ClientID = &b.ID
	tx.Date = 2000
	tx.Detail = "new"
	tx.Price = 77 // must be ignored; price moves through UpdateTransactionPrice
	require.NoError(t, s.UpdateTransaction(ctx, tx))

	got := fetchTransaction(t, s, tx.ID)
	require.NotNil(t, got.ClientID)
	assert.Equal(t, b.ID, *got.ClientID)
	assert.Equal(t, int64(2000), got.Date)
	assert.Equal(t, "new", got.Detail)
	assert.Equal(t, int64(1000), got.Price)
	assert.Equal(t, int64(400), got.Payment)

	err = s.UpdateTransaction(ctx, ledger.Transaction{ID: 404})
	assert.True(t, ledger.IsNotFound(err))
}

func testUpdateTransactionMissingClient(t *testing.T, s ledger.Store) {
	ctx := context.Background()

	c, err := s.AddClient(ctx, "larry", "")
	require.NoError(t, err)
	tx, err := s.AddTransaction(ctx, &c.ID, 1000, 400, "", 1000)
	require.NoError(t, err)

	// Reassigning to a client that does not exist fails the same way
	// AddTransaction does, and leaves the record untouched.
	ghost := int64(404)
	tx.ClientID = &ghost
	err = s.UpdateTransaction(ctx, tx)
	assert.True(t, ledger.IsNotFound(err), "got %v", err)

	got := fetchTransaction(t, s, tx.ID)
	require.NotNil(t, got.ClientID)
	assert.Equal(t, c.ID, *got.ClientID)
}

func testTargetedTransactionUpdates(t *testing.T, s ledger.Store) {
	ctx := context.Background()

	c, err := s.AddClient(ctx, "larry", "")
	require.NoError(t, err)
	tx, err := s.AddTransaction(ctx, &c.ID, 1000, 0, "", 1000)
	require.NoError(t, err)

	require.NoError(t, s.UpdateTransactionPrice(ctx, tx.ID, 1200))
	require.NoError(t, s.UpdateTransactionBalance(ctx, tx.ID, 500))
	require.NoError(t, s.UpdateTransactionBalance(ctx, tx.ID, 500))

	got := fetchTransaction(t, s, tx.ID)
	assert.Equal(t, int64(1200), got.Price)
	assert.Equal(t, int64(1000), got.Payment, "payment deltas accumulate")

	assert.True(t, ledger.IsNotFound(s.UpdateTransactionPrice(ctx, 404, 1)))
	assert.True(t, ledger.IsNotFound(s.UpdateTransactionBalance(ctx, 404, 1)))
}

func testRemoveTransactionIdempotent(t *testing.T, s ledger.Store) {
	ctx := context.Background()

	c, err := s.AddClient(ctx, "larry", "")
	require.NoError(t, err)
	tx, err := s.AddTransaction(ctx, &c.ID, 100, 100, "", 1000)
	require.NoError(t, err)

	require.NoError(t, s.RemoveTransaction(ctx, tx.ID))
	require.NoError(t, s.RemoveTransaction(ctx, tx.ID), "second removal is a no-op")
}

func testEndToEndScenario(t *testing.T, s ledger.Store) {
	ctx := context.Background()

	_, err := s.AddClient(ctx, "lul", "1")
	require.NoError(t, err)

	clients, err := s.GetClients(ctx, ledger.NewClientFilter().WithName("lul"))
	require.NoError(t, err)
	require.Len(t, clients, 1)
	c := clients[0]
	assert.Equal(t, int64(0), c.Balance)

	_, err = s.AddTransaction(ctx, &c.ID, 1000, 400, "pague weeee", 1700000000)
	require.NoError(t, err)

	require.NoError(t, s.RecomputeBalance(ctx, c.ID))

	assert.Equal(t, int64(-600), fetchClient(t, s, c.ID).Balance)
}

func fetchClient(t *testing.T, s ledger.Store, id int64) ledger.Client {
	t.Helper()
	clients, err := s.GetClients(context.Background(), ledger.NewClientFilter().WithID(id))
	require.NoError(t, err)
	require.Len(t, clients, 1)
	return clients[0]
}

func fetchTransaction(t *testing.T, s ledger.Store, id int64) ledger.Transaction {
	t.Helper()
	txs, err := s.GetTransactions(context.Background(), ledger.NewTransactionFilter().WithID(id))
	require.NoError(t, err)
	require.Len(t, txs, 1)
	return txs[0]
}
