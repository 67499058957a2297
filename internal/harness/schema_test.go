package harness

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateScenarioBytes_Valid(t *testing.T) {
	data := []byte(`
name: ok
steps:
  - op: add_client
    name: lul
  - op: add_transaction
    client: lul
    price: 1000
    payment: 400
    date: 1700000000
`)
	assert.NoError(t, ValidateScenarioBytes("ok.yaml", data))
}

func TestValidateScenarioBytes_MissingName(t *testing.T) {
	data := []byte(`
steps:
  - op: add_client
    name: lul
`)
	err := ValidateScenarioBytes("missing.yaml", data)
	require.Error(t, err)
}

func TestValidateScenarioBytes_NegativeDate(t *testing.T) {
	data := []byte(`
name: bad-date
steps:
  - op: add_transaction
    price: 10
    payment: 10
    date: -5
`)
	err := ValidateScenarioBytes("bad-date.yaml", data)
	require.Error(t, err)
}

func TestValidateScenarioBytes_ZeroTxIndex(t *testing.T) {
	data := []byte(`
name: bad-tx
steps:
  - op: remove_transaction
    tx: 0
`)
	err := ValidateScenarioBytes("bad-tx.yaml", data)
	require.Error(t, err)
}

func TestValidateScenarioBytes_NotYAML(t *testing.T) {
	err := ValidateScenarioBytes("garbage.yaml", []byte("\t{{{"))
	require.Error(t, err)
}
