package cli

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// runCLI executes the root command against the given database and
// returns the combined output.
func runCLI(t *testing.T, dbPath string, args ...string) (string, error) {
	t.Helper()

	buf := &bytes.Buffer{}
	cmd := NewRootCommand()
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs(append([]string{"--db", dbPath}, args...))

	err := cmd.Execute()
	return buf.String(), err
}

func TestClientLifecycle(t *testing.T) {
	db := filepath.Join(t.TempDir(), "ledger.db")

	out, err := runCLI(t, db, "client", "add", "lul", "--detail", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "added client 1 (lul)")

	out, err = runCLI(t, db, "client", "ls", "--name", "lul")
	require.NoError(t, err)
	assert.Contains(t, out, "lul")

	out, err = runCLI(t, db, "client", "set", "1", "astracalustro")
	require.NoError(t, err)
	assert.Contains(t, out, "updated client 1")

	out, err = runCLI(t, db, "client", "ls", "--name", "lul")
	require.NoError(t, err)
	assert.Empty(t, out, "old name no longer matches")

	_, err = runCLI(t, db, "client", "rm", "1")
	require.NoError(t, err)

	// Removal is idempotent.
	_, err = runCLI(t, db, "client", "rm", "1")
	require.NoError(t, err)
}

func TestClientAddEmptyNameFails(t *testing.T) {
	db := filepath.Join(t.TempDir(), "ledger.db")

	out, err := runCLI(t, db, "client", "add", "")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "VALIDATION")
}

func TestAliasLifecycle(t *testing.T) {
	db := filepath.Join(t.TempDir(), "ledger.db")

	_, err := runCLI(t, db, "client", "add", "larry")
	require.NoError(t, err)

	out, err := runCLI(t, db, "alias", "add", "1", "el larry")
	require.NoError(t, err)
	assert.Contains(t, out, "el larry")

	out, err = runCLI(t, db, "alias", "ls", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "el larry")

	_, err = runCLI(t, db, "alias", "set", "1", "lazarus")
	require.NoError(t, err)

	out, err = runCLI(t, db, "alias", "ls", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "lazarus")
	assert.NotContains(t, out, "el larry")

	_, err = runCLI(t, db, "alias", "rm", "1")
	require.NoError(t, err)
	_, err = runCLI(t, db, "alias", "rm", "1")
	require.NoError(t, err, "alias removal is idempotent")
}

func TestAliasAddMissingClient(t *testing.T) {
	db := filepath.Join(t.TempDir(), "ledger.db")

	out, err := runCLI(t, db, "alias", "add", "42", "ghost")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "NOT_FOUND")
}

func TestAnonymousTransactionMustBeFullyPaid(t *testing.T) {
	db := filepath.Join(t.TempDir(), "ledger.db")

	out, err := runCLI(t, db, "tx", "add", "1000", "--payment", "400")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "ANON_PAYMENT_MISMATCH", "the specific code, not the broader VALIDATION")

	_, err = runCLI(t, db, "tx", "add", "70", "--payment", "70")
	require.NoError(t, err, "fully paid anonymous transaction is fine")
}

func TestCreditAndRecompute(t *testing.T) {
	db := filepath.Join(t.TempDir(), "ledger.db")

	_, err := runCLI(t, db, "client", "add", "lul", "--detail", "1")
	require.NoError(t, err)

	out, err := runCLI(t, db, "tx", "add", "1000",
		"--client", "1", "--payment", "400",
		"--detail", "pague weeee", "--date", "1700000000")
	require.NoError(t, err)
	assert.Contains(t, out, "price 1000, payment 400")

	out, err = runCLI(t, db, "balance", "recompute", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "balance is -600")
}

func TestPaymentFastPathConverges(t *testing.T) {
	db := filepath.Join(t.TempDir(), "ledger.db")

	_, err := runCLI(t, db, "client", "add", "moe")
	require.NoError(t, err)
	_, err = runCLI(t, db, "tx", "add", "1000", "--client", "1", "--payment", "400")
	require.NoError(t, err)

	// "--" keeps the negative delta from being parsed as flags.
	out, err := runCLI(t, db, "balance", "adjust", "1", "--", "-600")
	require.NoError(t, err)
	assert.Contains(t, out, "balance is -600")

	out, err = runCLI(t, db, "tx", "pay", "1", "250")
	require.NoError(t, err)
	assert.Contains(t, out, "recorded payment of 250")

	// The fast path and a full recompute agree.
	out, err = runCLI(t, db, "balance", "recompute", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "balance is -350")
}

func TestTxPriceThenRecompute(t *testing.T) {
	db := filepath.Join(t.TempDir(), "ledger.db")

	_, err := runCLI(t, db, "client", "add", "moe")
	require.NoError(t, err)
	_, err = runCLI(t, db, "tx", "add", "1000", "--client", "1", "--payment", "1000")
	require.NoError(t, err)

	_, err = runCLI(t, db, "tx", "price", "1", "1200")
	require.NoError(t, err)

	out, err := runCLI(t, db, "balance", "recompute", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "balance is -200")
}

func TestTxListFilters(t *testing.T) {
	db := filepath.Join(t.TempDir(), "ledger.db")

	_, err := runCLI(t, db, "client", "add", "moe")
	require.NoError(t, err)
	_, err = runCLI(t, db, "tx", "add", "100", "--client", "1", "--date", "1000", "--detail", "first")
	require.NoError(t, err)
	_, err = runCLI(t, db, "tx", "add", "900", "--payment", "900", "--date", "2000", "--detail", "second")
	require.NoError(t, err)

	out, err := runCLI(t, db, "tx", "ls", "--client", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "first")
	assert.NotContains(t, out, "second")

	out, err = runCLI(t, db, "tx", "ls", "--from", "1500", "--to", "2500")
	require.NoError(t, err)
	assert.Contains(t, out, "second")
	assert.NotContains(t, out, "first")

	out, err = runCLI(t, db, "tx", "ls", "--price-min", "500", "--price-max", "1000")
	require.NoError(t, err)
	assert.Contains(t, out, "second")
	assert.NotContains(t, out, "first")

	// Single-ended ranges leave the other bound open.
	out, err = runCLI(t, db, "tx", "ls", "--from", "1500")
	require.NoError(t, err)
	assert.Contains(t, out, "second")
	assert.NotContains(t, out, "first")

	out, err = runCLI(t, db, "tx", "ls", "--to", "1500")
	require.NoError(t, err)
	assert.Contains(t, out, "first")
	assert.NotContains(t, out, "second")

	out, err = runCLI(t, db, "tx", "ls", "--price-min", "500")
	require.NoError(t, err)
	assert.Contains(t, out, "second")
	assert.NotContains(t, out, "first")

	out, err = runCLI(t, db, "tx", "ls", "--price-max", "500")
	require.NoError(t, err)
	assert.Contains(t, out, "first")
	assert.NotContains(t, out, "second")
}

func TestRemoveClientAnonymizesTransactions(t *testing.T) {
	db := filepath.Join(t.TempDir(), "ledger.db")

	_, err := runCLI(t, db, "client", "add", "larry")
	require.NoError(t, err)
	_, err = runCLI(t, db, "tx", "add", "500", "--client", "1", "--detail", "credit")
	require.NoError(t, err)
	_, err = runCLI(t, db, "client", "rm", "1")
	require.NoError(t, err)

	out, err := runCLI(t, db, "--format", "json", "tx", "ls", "--id", "1")
	require.NoError(t, err)

	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)

	txs, ok := resp.Data.([]interface{})
	require.True(t, ok)
	require.Len(t, txs, 1)
	tx := txs[0].(map[string]interface{})
	assert.NotContains(t, tx, "client_id", "ownership is cleared on client removal")
}

func TestJSONOutput(t *testing.T) {
	db := filepath.Join(t.TempDir(), "ledger.db")

	out, err := runCLI(t, db, "--format", "json", "client", "add", "lul")
	require.NoError(t, err)

	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)

	data, ok := resp.Data.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "lul", data["name"])
	assert.Equal(t, float64(0), data["balance"])
}

func TestOpenStoreBadPath(t *testing.T) {
	_, err := runCLI(t, "/nonexistent/dir/ledger.db", "client", "ls")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}
