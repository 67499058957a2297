package ledger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClientFilter_EmptyMatchesAll(t *testing.T) {
	f := NewClientFilter()

	assert.True(t, f.Matches(Client{ID: 1, Name: "larry"}))
	assert.True(t, f.Matches(Client{ID: 99, Name: "", Balance: -600}))
}

func TestClientFilter_NameClause(t *testing.T) {
	f := NewClientFilter().WithName("larry")

	assert.True(t, f.Matches(Client{ID: 1, Name: "larry"}))
	assert.False(t, f.Matches(Client{ID: 2, Name: "moe"}))

	name, ok := f.Name()
	require.True(t, ok)
	assert.Equal(t, "larry", name)

	_, ok = f.ID()
	assert.False(t, ok, "id clause should be unset")
}

func TestClientFilter_ClausesCombineWithAND(t *testing.T) {
	f := NewClientFilter().WithName("larry").WithID(1)

	assert.True(t, f.Matches(Client{ID: 1, Name: "larry"}))
	assert.False(t, f.Matches(Client{ID: 2, Name: "larry"}), "id clause must also hold")
	assert.False(t, f.Matches(Client{ID: 1, Name: "moe"}), "name clause must also hold")
}

func TestClientFilter_BuilderDoesNotMutateOriginal(t *testing.T) {
	base := NewClientFilter()
	derived := base.WithName("larry")

	_, ok := base.Name()
	assert.False(t, ok, "base filter must stay empty")

	name, ok := derived.Name()
	require.True(t, ok)
	assert.Equal(t, "larry", name)
}

func TestClientFilter_NameIsNormalized(t *testing.T) {
	// U+0065 U+0301 (e + combining acute) vs U+00E9 (precomposed).
	decomposed := "josé"
	precomposed := "josé"

	f := NewClientFilter().WithName(decomposed)
	assert.True(t, f.Matches(Client{ID: 1, Name: precomposed}))
}

func TestTransactionFilter_EmptyMatchesAll(t *testing.T) {
	f := NewTransactionFilter()

	cid := int64(3)
	assert.True(t, f.Matches(Transaction{ID: 1}))
	assert.True(t, f.Matches(Transaction{ID: 2, ClientID: &cid, Price: 1000}))
}

func TestTransactionFilter_ClientClauseExcludesAnonymous(t *testing.T) {
	f := NewTransactionFilter().WithClient(3)

	cid := int64(3)
	other := int64(4)
	assert.True(t, f.Matches(Transaction{ID: 1, ClientID: &cid}))
	assert.False(t, f.Matches(Transaction{ID: 2, ClientID: &other}))
	assert.False(t, f.Matches(Transaction{ID: 3, ClientID: nil}), "anonymous never matches a client clause")
}

func TestTransactionFilter_DateRangeInclusive(t *testing.T) {
	f := NewTransactionFilter().WithDateRange(100, 200)

	assert.True(t, f.Matches(Transaction{Date: 100}), "lower bound inclusive")
	assert.True(t, f.Matches(Transaction{Date: 200}), "upper bound inclusive")
	assert.True(t, f.Matches(Transaction{Date: 150}))
	assert.False(t, f.Matches(Transaction{Date: 99}))
	assert.False(t, f.Matches(Transaction{Date: 201}))
}

func TestTransactionFilter_PriceRangeInclusive(t *testing.T) {
	f := NewTransactionFilter().WithPriceRange(-50, 50)

	assert.True(t, f.Matches(Transaction{Price: -50}))
	assert.True(t, f.Matches(Transaction{Price: 50}))
	assert.False(t, f.Matches(Transaction{Price: 51}))
}

func TestTransactionFilter_AllClauses(t *testing.T) {
	f := NewTransactionFilter().
		WithID(7).
		WithClient(3).
		WithDateRange(100, 200).
		WithPriceRange(0, 5000)

	cid := int64(3)
	match := Transaction{ID: 7, ClientID: &cid, Date: 150, Price: 1000}
	assert.True(t, f.Matches(match))

	miss := match
	miss.Price = 9999
	assert.False(t, f.Matches(miss))
}
