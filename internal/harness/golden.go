package harness

import (
	"context"
	"testing"

	"github.com/sebdah/goldie/v2"

	"fiado/internal/ledger"
	"fiado/internal/memstore"
)

// RunWithGolden executes a scenario against a fresh in-memory store and
// compares the final snapshot against a golden file under
// testdata/golden/{scenario.Name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
//
// The in-memory backend is the reference here because its id sequence
// is a single counter shared by all record kinds, which keeps golden
// files stable; backend equivalence itself is covered by the
// conformance suite in internal/storetest.
func RunWithGolden(t *testing.T, scenario *Scenario) *Result {
	t.Helper()

	var s ledger.Store = memstore.New()
	defer s.Close()

	result, err := Run(context.Background(), s, scenario)
	if err != nil {
		t.Fatalf("scenario %s failed: %v", scenario.Name, err)
	}
	for _, msg := range result.Errors {
		t.Errorf("scenario %s: %s", scenario.Name, msg)
	}

	data, err := result.Snapshot.MarshalIndent()
	if err != nil {
		t.Fatalf("scenario %s: %v", scenario.Name, err)
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenario.Name, data)

	return result
}
