// Package memstore implements the ledger storage contracts on ordered
// in-memory sets. It is useful for tests and for embedding without an
// external engine.
//
// The store is not safe for concurrent mutation from multiple
// goroutines; a caller needing that wraps the whole store in its own
// mutex. Ids come from a counter private to the store instance,
// starting at 1, and are never reused within the store's lifetime.
package memstore

import (
	"context"
	"sort"

	"fiado/internal/ledger"
)

// Store holds three id-ordered collections. Records are kept sorted by
// id so reads are stable for a given unmutated store state, matching
// the SQL backend's ORDER BY id.
type Store struct {
	lastID       int64
	clients      []ledger.Client
	aliases      []ledger.Alias
	transactions []ledger.Transaction
}

var _ ledger.Store = (*Store)(nil)

// New creates an empty store.
func New() *Store {
	return &Store{}
}

// Close implements ledger.Store. The in-memory backend holds no
// external resources.
func (s *Store) Close() error {
	return nil
}

// nextID allocates a fresh id. Ids are shared across the three
// collections; monotonicity is all the contract asks for.
func (s *Store) nextID() int64 {
	s.lastID++
	return s.lastID
}

// AddClient creates a client with a fresh id and balance 0.
func (s *Store) AddClient(_ context.Context, name, detail string) (ledger.Client, error) {
	if err := ledger.ValidateNewClient(name); err != nil {
		return ledger.Client{}, err
	}

	c := ledger.Client{
		ID:     s.nextID(),
		Name:   ledger.NormalizeText(name),
		Detail: detail,
	}
	s.clients = insertClient(s.clients, c)
	return c, nil
}

// UpdateClient replaces name and detail for the record matching c.ID.
// Equality in the ordered set is by id only, so the update is
// remove-matching-id then insert-new-value: the whole new value becomes
// visible atomically instead of being patched field by field. The
// stored balance is preserved; only the balance operations change it.
func (s *Store) UpdateClient(_ context.Context, c ledger.Client) error {
	if err := ledger.ValidateNewClient(c.Name); err != nil {
		return err
	}

	i, ok := findClient(s.clients, c.ID)
	if !ok {
		return ledger.NewNotFoundError("client", c.ID)
	}

	replacement := s.clients[i]
	replacement.Name = ledger.NormalizeText(c.Name)
	replacement.Detail = c.Detail

	s.clients = append(s.clients[:i], s.clients[i+1:]...)
	s.clients = insertClient(s.clients, replacement)
	return nil
}

// RemoveClient deletes the client, its aliases, and anonymizes its
// transactions, mirroring the SQL backend's cascade semantics. A
// missing id is a no-op.
func (s *Store) RemoveClient(_ context.Context, id int64) error {
	i, ok := findClient(s.clients, id)
	if !ok {
		return nil
	}
	s.clients = append(s.clients[:i], s.clients[i+1:]...)

	kept := s.aliases[:0]
	for _, a := range s.aliases {
		if a.ClientID != id {
			kept = append(kept, a)
		}
	}
	s.aliases = kept

	for j := range s.transactions {
		if s.transactions[j].ClientID != nil && *s.transactions[j].ClientID == id {
			s.transactions[j].ClientID = nil
		}
	}
	return nil
}

// GetClients returns all clients matching the filter, in id order.
func (s *Store) GetClients(_ context.Context, f ledger.ClientFilter) ([]ledger.Client, error) {
	clients := []ledger.Client{}
	for _, c := range s.clients {
		if f.Matches(c) {
			clients = append(clients, c)
		}
	}
	return clients, nil
}

// AddAlias creates an alias owned by the given client.
func (s *Store) AddAlias(_ context.Context, clientID int64, alias string) (ledger.Alias, error) {
	if _, ok := findClient(s.clients, clientID); !ok {
		return ledger.Alias{}, ledger.NewNotFoundError("client", clientID)
	}

	a := ledger.Alias{
		ID:       s.nextID(),
		ClientID: clientID,
		Alias:    ledger.NormalizeText(alias),
	}
	s.aliases = append(s.aliases, a)
	return a, nil
}

// GetAliases returns all aliases owned by the client, in id order.
func (s *Store) GetAliases(_ context.Context, clientID int64) ([]ledger.Alias, error) {
	aliases := []ledger.Alias{}
	for _, a := range s.aliases {
		if a.ClientID == clientID {
			aliases = append(aliases, a)
		}
	}
	return aliases, nil
}

// RemoveAlias deletes an alias by id. A missing id is a no-op.
func (s *Store) RemoveAlias(_ context.Context, id int64) error {
	for i, a := range s.aliases {
		if a.ID == id {
			s.aliases = append(s.aliases[:i], s.aliases[i+1:]...)
			return nil
		}
	}
	return nil
}

// UpdateAlias rewrites the alias text for the given id, keeping the
// owning client. Remove-then-insert, same as UpdateClient.
func (s *Store) UpdateAlias(_ context.Context, a ledger.Alias) error {
	for i, old := range s.aliases {
		if old.ID == a.ID {
			replacement := old
			replacement.Alias = ledger.NormalizeText(a.Alias)
			s.aliases = append(s.aliases[:i], s.aliases[i+1:]...)
			s.aliases = insertAlias(s.aliases, replacement)
			return nil
		}
	}
	return ledger.NewNotFoundError("alias", a.ID)
}

// RecomputeBalance sets the stored balance to the sum of payments minus
// the sum of prices over the client's transactions. The whole scan runs
// between two statements of a single caller, which is all the snapshot
// consistency this backend promises.
func (s *Store) RecomputeBalance(_ context.Context, clientID int64) error {
	i, ok := findClient(s.clients, clientID)
	if !ok {
		return ledger.NewNotFoundError("client", clientID)
	}

	var balance int64
	for _, t := range s.transactions {
		if t.ClientID != nil && *t.ClientID == clientID {
			balance += t.Payment - t.Price
		}
	}
	s.clients[i].Balance = balance
	return nil
}

// AdjustBalance adds delta to the stored balance directly.
func (s *Store) AdjustBalance(_ context.Context, clientID int64, delta int64) error {
	i, ok := findClient(s.clients, clientID)
	if !ok {
		return ledger.NewNotFoundError("client", clientID)
	}
	s.clients[i].Balance += delta
	return nil
}

// AddTransaction creates a transaction, checking the anonymous-payment
// invariant before anything is stored.
func (s *Store) AddTransaction(_ context.Context, clientID *int64, price, payment int64, detail string, date int64) (ledger.Transaction, error) {
	if err := ledger.ValidateNewTransaction(clientID, price, payment); err != nil {
		return ledger.Transaction{}, err
	}
	if clientID != nil {
		if _, ok := findClient(s.clients, *clientID); !ok {
			return ledger.Transaction{}, ledger.NewNotFoundError("client", *clientID)
		}
	}

	t := ledger.Transaction{
		ID:      s.nextID(),
		Date:    date,
		Price:   price,
		Payment: payment,
		Detail:  detail,
	}
	if clientID != nil {
		id := *clientID
		t.ClientID = &id
	}
	s.transactions = append(s.transactions, t)
	return t, nil
}

// GetTransactions returns all transactions matching the filter, in id
// order.
func (s *Store) GetTransactions(_ context.Context, f ledger.TransactionFilter) ([]ledger.Transaction, error) {
	txs := []ledger.Transaction{}
	for _, t := range s.transactions {
		if f.Matches(t) {
			txs = append(txs, t)
		}
	}
	return txs, nil
}

// UpdateTransaction rewrites date, owning client, and detail for the
// record matching t.ID. Price and payment keep their stored values.
func (s *Store) UpdateTransaction(_ context.Context, t ledger.Transaction) error {
	if t.ClientID != nil {
		if _, ok := findClient(s.clients, *t.ClientID); !ok {
			return ledger.NewNotFoundError("client", *t.ClientID)
		}
	}
	for i, old := range s.transactions {
		if old.ID == t.ID {
			replacement := old
			replacement.Date = t.Date
			replacement.Detail = t.Detail
			replacement.ClientID = nil
			if t.ClientID != nil {
				id := *t.ClientID
				replacement.ClientID = &id
			}
			s.transactions = append(s.transactions[:i], s.transactions[i+1:]...)
			s.transactions = insertTransaction(s.transactions, replacement)
			return nil
		}
	}
	return ledger.NewNotFoundError("transaction", t.ID)
}

// UpdateTransactionPrice sets a new price. Client balances are not
// touched.
func (s *Store) UpdateTransactionPrice(_ context.Context, id int64, newPrice int64) error {
	for i := range s.transactions {
		if s.transactions[i].ID == id {
			s.transactions[i].Price = newPrice
			return nil
		}
	}
	return ledger.NewNotFoundError("transaction", id)
}

// UpdateTransactionBalance adds paymentDelta to the transaction's
// payment. Client balances are not touched.
func (s *Store) UpdateTransactionBalance(_ context.Context, id int64, paymentDelta int64) error {
	for i := range s.transactions {
		if s.transactions[i].ID == id {
			s.transactions[i].Payment += paymentDelta
			return nil
		}
	}
	return ledger.NewNotFoundError("transaction", id)
}

// RemoveTransaction deletes a transaction by id. A missing id is a
// no-op, and client balances are not touched.
func (s *Store) RemoveTransaction(_ context.Context, id int64) error {
	for i, t := range s.transactions {
		if t.ID == id {
			s.transactions = append(s.transactions[:i], s.transactions[i+1:]...)
			return nil
		}
	}
	return nil
}

// findClient locates a client by id in the ordered slice.
func findClient(clients []ledger.Client, id int64) (int, bool) {
	i := sort.Search(len(clients), func(i int) bool { return clients[i].ID >= id })
	if i < len(clients) && clients[i].ID == id {
		return i, true
	}
	return 0, false
}

func insertClient(clients []ledger.Client, c ledger.Client) []ledger.Client {
	i := sort.Search(len(clients), func(i int) bool { return clients[i].ID >= c.ID })
	clients = append(clients, ledger.Client{})
	copy(clients[i+1:], clients[i:])
	clients[i] = c
	return clients
}

func insertAlias(aliases []ledger.Alias, a ledger.Alias) []ledger.Alias {
	i := sort.Search(len(aliases), func(i int) bool { return aliases[i].ID >= a.ID })
	aliases = append(aliases, ledger.Alias{})
	copy(aliases[i+1:], aliases[i:])
	aliases[i] = a
	return aliases
}

func insertTransaction(txs []ledger.Transaction, t ledger.Transaction) []ledger.Transaction {
	i := sort.Search(len(txs), func(i int) bool { return txs[i].ID >= t.ID })
	txs = append(txs, ledger.Transaction{})
	copy(txs[i+1:], txs[i:])
	txs[i] = t
	return txs
}
