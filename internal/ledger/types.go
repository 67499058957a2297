package ledger

import "golang.org/x/text/unicode/norm"

// Client is a payer entity with a running balance.
//
// Identity is the ID alone: two clients with the same ID are the same
// client regardless of the other fields. IDs are engine-assigned,
// monotonically increasing, and never reused within a store's lifetime.
//
// Balance is derived state. It must equal the sum of payments minus the
// sum of prices over the client's transactions, but only after the
// caller has run RecomputeBalance (or kept it current via
// AdjustBalance). No operation other than the balance operations
// touches it.
type Client struct {
	ID      int64  `json:"id"`
	Name    string `json:"name"`
	Detail  string `json:"detail,omitempty"`
	Balance int64  `json:"balance"`
}

// Alias is an alternate name bound to exactly one client for its
// lifetime. Moving an alias to another client is removal plus
// recreation, never reassignment.
type Alias struct {
	ID       int64  `json:"id"`
	ClientID int64  `json:"client_id"`
	Alias    string `json:"alias"`
}

// Transaction is a billed/paid record, optionally tied to a client.
//
// ClientID is nil for anonymous (walk-in) transactions. An anonymous
// transaction must be fully paid at creation: with nobody to collect
// from later, Payment must equal Price. Date is a Unix timestamp in
// seconds. Price and Payment are signed integers in the smallest
// currency unit.
type Transaction struct {
	ID       int64  `json:"id"`
	ClientID *int64 `json:"client_id,omitempty"`
	Date     int64  `json:"date"`
	Price    int64  `json:"price"`
	Payment  int64  `json:"payment"`
	Detail   string `json:"detail,omitempty"`
}

// Anonymous reports whether the transaction has no owning client.
func (t Transaction) Anonymous() bool {
	return t.ClientID == nil
}

// Outstanding returns the unpaid remainder of the transaction.
func (t Transaction) Outstanding() int64 {
	return t.Price - t.Payment
}

// NormalizeText returns s in Unicode NFC form. Names and alias text are
// normalized on write and on filter match so that lookups are stable
// across encodings of the same visual string.
func NormalizeText(s string) string {
	return norm.NFC.String(s)
}
