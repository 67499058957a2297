package harness

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeScenario(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "scenario.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadScenario_Valid(t *testing.T) {
	path := writeScenario(t, `
name: minimal
steps:
  - op: add_client
    name: lul
`)

	s, err := LoadScenario(path)
	require.NoError(t, err)
	assert.Equal(t, "minimal", s.Name)
	require.Len(t, s.Steps, 1)
	assert.Equal(t, "add_client", s.Steps[0].Op)
	assert.Nil(t, s.Expect)
}

func TestLoadScenario_UnknownOpRejectedBySchema(t *testing.T) {
	path := writeScenario(t, `
name: bad
steps:
  - op: destroy_everything
`)

	_, err := LoadScenario(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "does not match schema")
}

func TestLoadScenario_MissingSteps(t *testing.T) {
	path := writeScenario(t, `
name: empty
steps: []
`)

	_, err := LoadScenario(path)
	require.Error(t, err)
}

func TestLoadScenario_WrongFieldTypeRejected(t *testing.T) {
	path := writeScenario(t, `
name: bad-types
steps:
  - op: add_transaction
    price: "a lot"
`)

	_, err := LoadScenario(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "does not match schema")
}

func TestLoadScenario_FileMissing(t *testing.T) {
	_, err := LoadScenario(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}
