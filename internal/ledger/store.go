package ledger

import "context"

// ClientStore is the storage contract for clients and their aliases,
// including balance maintenance. Every backend must satisfy it with
// identical semantics; internal/storetest holds the shared conformance
// suite.
type ClientStore interface {
	// AddClient creates a client with a fresh id and balance 0.
	// Fails with a validation error if name is empty.
	AddClient(ctx context.Context, name, detail string) (Client, error)

	// UpdateClient replaces name and detail for the record matching
	// c.ID. It never touches the balance; only the balance operations
	// do. Fails with a not-found error if the id does not exist.
	UpdateClient(ctx context.Context, c Client) error

	// RemoveClient deletes the client, cascades alias deletion, and
	// clears the client reference on the client's transactions so
	// their history survives as anonymous. Removal is idempotent: a
	// missing id is a no-op, not an error.
	RemoveClient(ctx context.Context, id int64) error

	// GetClients returns all clients matching the filter. Ordering is
	// stable for a given unmutated store state. Individually malformed
	// rows are skipped, not fatal to the whole read.
	GetClients(ctx context.Context, f ClientFilter) ([]Client, error)

	// AddAlias creates an alias owned by the given client. Fails with
	// a not-found error if the client no longer exists.
	AddAlias(ctx context.Context, clientID int64, alias string) (Alias, error)

	// GetAliases returns all aliases currently owned by the client.
	GetAliases(ctx context.Context, clientID int64) ([]Alias, error)

	// RemoveAlias deletes an alias by id. Idempotent.
	RemoveAlias(ctx context.Context, id int64) error

	// UpdateAlias rewrites the alias text for the given id. Fails with
	// a not-found error if the id does not exist.
	UpdateAlias(ctx context.Context, a Alias) error

	// RecomputeBalance sets the client's stored balance to the sum of
	// payments minus the sum of prices over that client's
	// transactions, computed from a single consistent snapshot.
	RecomputeBalance(ctx context.Context, clientID int64) error

	// AdjustBalance adds delta to the stored balance directly, without
	// scanning transactions. The caller is responsible for pairing the
	// delta with an actual transaction change; this is the fast path
	// for "payment received".
	AdjustBalance(ctx context.Context, clientID int64, delta int64) error
}

// TransactionStore is the storage contract for transactions.
//
// None of these operations touch the owning client's cached balance.
// Callers batch transaction mutations and then pay the consistency
// cost once, through ClientStore.RecomputeBalance or
// ClientStore.AdjustBalance. The decoupling is the contract, not an
// oversight.
type TransactionStore interface {
	// AddTransaction creates a transaction. clientID nil means
	// anonymous, and an anonymous transaction must be fully paid:
	// payment != price fails validation before any write.
	AddTransaction(ctx context.Context, clientID *int64, price, payment int64, detail string, date int64) (Transaction, error)

	// GetTransactions returns all transactions matching the filter,
	// with the same clause-combination semantics as GetClients.
	GetTransactions(ctx context.Context, f TransactionFilter) ([]Transaction, error)

	// UpdateTransaction rewrites date, owning client, and detail for
	// the record matching t.ID. Price and payment are adjusted through
	// the targeted operations below. Fails with a not-found error if
	// the id does not exist, or if t.ClientID names a missing client.
	UpdateTransaction(ctx context.Context, t Transaction) error

	// UpdateTransactionPrice sets a new price for the transaction.
	// The owning client's cached balance is NOT adjusted; that remains
	// the caller's obligation.
	UpdateTransactionPrice(ctx context.Context, id int64, newPrice int64) error

	// UpdateTransactionBalance adds paymentDelta to the transaction's
	// payment. The owning client's cached balance is NOT adjusted;
	// that remains the caller's obligation.
	UpdateTransactionBalance(ctx context.Context, id int64, paymentDelta int64) error

	// RemoveTransaction deletes a transaction by id. Idempotent, and
	// does not adjust the owning client's cached balance.
	RemoveTransaction(ctx context.Context, id int64) error
}

// Store is the full storage surface a backend provides.
type Store interface {
	ClientStore
	TransactionStore

	// Close releases backend resources. Safe to call more than once.
	Close() error
}

// ValidateNewClient checks the add-client invariants shared by every
// backend: the name must be non-empty after normalization.
func ValidateNewClient(name string) error {
	if NormalizeText(name) == "" {
		return NewValidationError("client", "client name must not be empty")
	}
	return nil
}

// ValidateNewTransaction checks the add-transaction invariants shared
// by every backend. An anonymous transaction cannot carry an
// outstanding balance, because there is no client to later collect
// from.
func ValidateNewTransaction(clientID *int64, price, payment int64) error {
	if clientID == nil && payment != price {
		return NewAnonPaymentError(price, payment)
	}
	return nil
}
