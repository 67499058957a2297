package harness

import (
	"context"
	"encoding/json"
	"fmt"

	"fiado/internal/ledger"
)

// Snapshot captures the complete final state of a store. Record slices
// come back from the store in id order, so marshaling a snapshot is
// deterministic for a given scenario.
type Snapshot struct {
	Clients      []ClientState      `json:"clients"`
	Aliases      []AliasState       `json:"aliases"`
	Transactions []TransactionState `json:"transactions"`
}

// ClientState is the snapshot form of a client.
type ClientState struct {
	ID      int64  `json:"id"`
	Name    string `json:"name"`
	Detail  string `json:"detail,omitempty"`
	Balance int64  `json:"balance"`
}

// AliasState is the snapshot form of an alias.
type AliasState struct {
	ID       int64  `json:"id"`
	ClientID int64  `json:"client_id"`
	Alias    string `json:"alias"`
}

// TransactionState is the snapshot form of a transaction. ClientID is
// omitted for anonymous records.
type TransactionState struct {
	ID       int64  `json:"id"`
	ClientID *int64 `json:"client_id,omitempty"`
	Date     int64  `json:"date"`
	Price    int64  `json:"price"`
	Payment  int64  `json:"payment"`
	Detail   string `json:"detail,omitempty"`
}

// BuildSnapshot reads the full store state through the public contract.
func BuildSnapshot(ctx context.Context, s ledger.Store) (*Snapshot, error) {
	snap := &Snapshot{
		Clients:      []ClientState{},
		Aliases:      []AliasState{},
		Transactions: []TransactionState{},
	}

	clients, err := s.GetClients(ctx, ledger.NewClientFilter())
	if err != nil {
		return nil, fmt.Errorf("snapshot clients: %w", err)
	}
	for _, c := range clients {
		snap.Clients = append(snap.Clients, ClientState{
			ID:      c.ID,
			Name:    c.Name,
			Detail:  c.Detail,
			Balance: c.Balance,
		})

		aliases, err := s.GetAliases(ctx, c.ID)
		if err != nil {
			return nil, fmt.Errorf("snapshot aliases: %w", err)
		}
		for _, a := range aliases {
			snap.Aliases = append(snap.Aliases, AliasState{
				ID:       a.ID,
				ClientID: a.ClientID,
				Alias:    a.Alias,
			})
		}
	}

	txs, err := s.GetTransactions(ctx, ledger.NewTransactionFilter())
	if err != nil {
		return nil, fmt.Errorf("snapshot transactions: %w", err)
	}
	for _, t := range txs {
		ts := TransactionState{
			ID:      t.ID,
			Date:    t.Date,
			Price:   t.Price,
			Payment: t.Payment,
			Detail:  t.Detail,
		}
		if t.ClientID != nil {
			id := *t.ClientID
			ts.ClientID = &id
		}
		snap.Transactions = append(snap.Transactions, ts)
	}

	return snap, nil
}

// MarshalIndent renders the snapshot as indented JSON with a trailing
// newline, the exact byte form stored in golden files.
func (s *Snapshot) MarshalIndent() ([]byte, error) {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal snapshot: %w", err)
	}
	return append(data, '\n'), nil
}
