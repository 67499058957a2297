package harness

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"fiado/internal/ledger"
)

// Result is the outcome of a scenario execution.
type Result struct {
	// RunID is a UUIDv7 tagging this execution. Time-sortable, so
	// interleaved logs from several runs stay readable.
	RunID string `json:"run_id"`

	// Pass indicates all expectations held.
	Pass bool `json:"pass"`

	// Errors lists failed expectations. Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`

	// Snapshot is the final store state.
	Snapshot *Snapshot `json:"snapshot"`
}

// AddError records a failed expectation and marks the result failed.
func (r *Result) AddError(msg string) {
	r.Errors = append(r.Errors, msg)
	r.Pass = false
}

// Run executes a scenario against the given store, which should be
// fresh and empty. Step failures abort the run with an error;
// expectation failures are collected on the Result instead.
//
// Clients are referenced by name and transactions by their 1-based
// position among the scenario's add_transaction steps; the runner
// tracks the engine-assigned ids.
func Run(ctx context.Context, s ledger.Store, scenario *Scenario) (*Result, error) {
	result := &Result{
		RunID: uuid.Must(uuid.NewV7()).String(),
		Pass:  true,
	}
	slog.Debug("running scenario", "run_id", result.RunID, "scenario", scenario.Name)

	clients := map[string]int64{}
	var txIDs []int64

	clientID := func(step Step, name string) (int64, error) {
		id, ok := clients[name]
		if !ok {
			return 0, fmt.Errorf("step %q references unknown client %q", step.Op, name)
		}
		return id, nil
	}
	txID := func(step Step) (int64, error) {
		if step.Tx < 1 || step.Tx > len(txIDs) {
			return 0, fmt.Errorf("step %q references unknown transaction %d", step.Op, step.Tx)
		}
		return txIDs[step.Tx-1], nil
	}

	for i, step := range scenario.Steps {
		if err := runStep(ctx, s, step, clients, &txIDs, clientID, txID); err != nil {
			return nil, fmt.Errorf("scenario %s step %d: %w", scenario.Name, i+1, err)
		}
	}

	if scenario.Expect != nil {
		checkExpectations(ctx, s, scenario.Expect, clients, result)
	}

	snap, err := BuildSnapshot(ctx, s)
	if err != nil {
		return nil, fmt.Errorf("scenario %s: snapshot: %w", scenario.Name, err)
	}
	result.Snapshot = snap

	return result, nil
}

func runStep(
	ctx context.Context,
	s ledger.Store,
	step Step,
	clients map[string]int64,
	txIDs *[]int64,
	clientID func(Step, string) (int64, error),
	txID func(Step) (int64, error),
) error {
	switch step.Op {
	case "add_client":
		c, err := s.AddClient(ctx, step.Name, step.Detail)
		if err != nil {
			return err
		}
		clients[step.Name] = c.ID

	case "update_client":
		id, err := clientID(step, step.Client)
		if err != nil {
			return err
		}
		c := ledger.Client{ID: id, Name: step.Name, Detail: step.Detail}
		if err := s.UpdateClient(ctx, c); err != nil {
			return err
		}
		delete(clients, step.Client)
		clients[step.Name] = id

	case "remove_client":
		id, err := clientID(step, step.Name)
		if err != nil {
			return err
		}
		if err := s.RemoveClient(ctx, id); err != nil {
			return err
		}
		delete(clients, step.Name)

	case "add_alias":
		id, err := clientID(step, step.Client)
		if err != nil {
			return err
		}
		if _, err := s.AddAlias(ctx, id, step.Alias); err != nil {
			return err
		}

	case "remove_alias":
		id, err := clientID(step, step.Client)
		if err != nil {
			return err
		}
		aliases, err := s.GetAliases(ctx, id)
		if err != nil {
			return err
		}
		for _, a := range aliases {
			if a.Alias == ledger.NormalizeText(step.Alias) {
				return s.RemoveAlias(ctx, a.ID)
			}
		}
		return fmt.Errorf("client %q has no alias %q", step.Client, step.Alias)

	case "add_transaction":
		var owner *int64
		if step.Client != "" {
			id, err := clientID(step, step.Client)
			if err != nil {
				return err
			}
			owner = &id
		}
		tx, err := s.AddTransaction(ctx, owner, step.Price, step.Payment, step.Detail, step.Date)
		if err != nil {
			return err
		}
		*txIDs = append(*txIDs, tx.ID)

	case "remove_transaction":
		id, err := txID(step)
		if err != nil {
			return err
		}
		return s.RemoveTransaction(ctx, id)

	case "update_transaction_price":
		id, err := txID(step)
		if err != nil {
			return err
		}
		return s.UpdateTransactionPrice(ctx, id, step.Price)

	case "update_transaction_balance":
		id, err := txID(step)
		if err != nil {
			return err
		}
		return s.UpdateTransactionBalance(ctx, id, step.Delta)

	case "adjust_balance":
		id, err := clientID(step, step.Client)
		if err != nil {
			return err
		}
		return s.AdjustBalance(ctx, id, step.Delta)

	case "recompute_balance":
		id, err := clientID(step, step.Client)
		if err != nil {
			return err
		}
		return s.RecomputeBalance(ctx, id)

	default:
		// The CUE schema rejects unknown ops before we get here; this
		// guards direct construction of Scenario values.
		return fmt.Errorf("unknown op %q", step.Op)
	}

	return nil
}

func checkExpectations(ctx context.Context, s ledger.Store, expect *Expect, clients map[string]int64, result *Result) {
	for name, want := range expect.Balances {
		id, ok := clients[name]
		if !ok {
			result.AddError(fmt.Sprintf("expected balance for unknown client %q", name))
			continue
		}
		got, err := s.GetClients(ctx, ledger.NewClientFilter().WithID(id))
		if err != nil {
			result.AddError(fmt.Sprintf("fetch client %q: %v", name, err))
			continue
		}
		if len(got) != 1 {
			result.AddError(fmt.Sprintf("client %q not found for balance check", name))
			continue
		}
		if got[0].Balance != want {
			result.AddError(fmt.Sprintf("client %q balance = %d, expected %d", name, got[0].Balance, want))
		}
	}
}
