package harness

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fiado/internal/memstore"
)

func TestRun_TagsEachRunWithAToken(t *testing.T) {
	scenario := &Scenario{
		Name:  "token",
		Steps: []Step{{Op: "add_client", Name: "lul"}},
	}

	s := memstore.New()
	defer s.Close()

	r1, err := Run(context.Background(), s, scenario)
	require.NoError(t, err)

	s2 := memstore.New()
	defer s2.Close()
	r2, err := Run(context.Background(), s2, scenario)
	require.NoError(t, err)

	assert.NotEmpty(t, r1.RunID)
	assert.NotEqual(t, r1.RunID, r2.RunID)
}

func TestRun_UnknownClientReference(t *testing.T) {
	scenario := &Scenario{
		Name: "dangling",
		Steps: []Step{
			{Op: "recompute_balance", Client: "nobody"},
		},
	}

	s := memstore.New()
	defer s.Close()

	_, err := Run(context.Background(), s, scenario)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown client "nobody"`)
}

func TestRun_ExpectationFailureDoesNotAbort(t *testing.T) {
	scenario := &Scenario{
		Name: "wrong-balance",
		Steps: []Step{
			{Op: "add_client", Name: "lul"},
		},
		Expect: &Expect{Balances: map[string]int64{"lul": -600}},
	}

	s := memstore.New()
	defer s.Close()

	result, err := Run(context.Background(), s, scenario)
	require.NoError(t, err, "expectation failures are collected, not fatal")
	assert.False(t, result.Pass)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "balance = 0, expected -600")
}

func TestRun_UpdateClientRenamesReference(t *testing.T) {
	scenario := &Scenario{
		Name: "rename",
		Steps: []Step{
			{Op: "add_client", Name: "larry"},
			{Op: "update_client", Client: "larry", Name: "astracalustro", Detail: "renamed"},
			{Op: "adjust_balance", Client: "astracalustro", Delta: 5},
		},
		Expect: &Expect{Balances: map[string]int64{"astracalustro": 5}},
	}

	s := memstore.New()
	defer s.Close()

	result, err := Run(context.Background(), s, scenario)
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)

	require.Len(t, result.Snapshot.Clients, 1)
	assert.Equal(t, "astracalustro", result.Snapshot.Clients[0].Name)
}

func TestRun_RemoveAliasByText(t *testing.T) {
	scenario := &Scenario{
		Name: "alias-remove",
		Steps: []Step{
			{Op: "add_client", Name: "larry"},
			{Op: "add_alias", Client: "larry", Alias: "el larry"},
			{Op: "add_alias", Client: "larry", Alias: "lazarus"},
			{Op: "remove_alias", Client: "larry", Alias: "el larry"},
		},
	}

	s := memstore.New()
	defer s.Close()

	result, err := Run(context.Background(), s, scenario)
	require.NoError(t, err)
	require.Len(t, result.Snapshot.Aliases, 1)
	assert.Equal(t, "lazarus", result.Snapshot.Aliases[0].Alias)
}

func TestBuildSnapshot_EmptyStore(t *testing.T) {
	s := memstore.New()
	defer s.Close()

	snap, err := BuildSnapshot(context.Background(), s)
	require.NoError(t, err)

	data, err := snap.MarshalIndent()
	require.NoError(t, err)
	assert.JSONEq(t, `{"clients":[],"aliases":[],"transactions":[]}`, string(data))
}
