package ledger

// ClientFilter selects clients by optional field equality. An empty
// filter matches every client; set fields combine with logical AND.
//
// Filters are built once through the With* methods and consumed by a
// single read call. The methods return copies, so a built filter is
// effectively immutable.
type ClientFilter struct {
	name *string
	id   *int64
}

// NewClientFilter returns a filter that matches every client.
func NewClientFilter() ClientFilter {
	return ClientFilter{}
}

// WithName restricts the filter to clients with exactly this name.
// The name is NFC-normalized before matching.
func (f ClientFilter) WithName(name string) ClientFilter {
	n := NormalizeText(name)
	f.name = &n
	return f
}

// WithID restricts the filter to the client with this id.
func (f ClientFilter) WithID(id int64) ClientFilter {
	f.id = &id
	return f
}

// Name returns the name clause and whether it is set.
func (f ClientFilter) Name() (string, bool) {
	if f.name == nil {
		return "", false
	}
	return *f.name, true
}

// ID returns the id clause and whether it is set.
func (f ClientFilter) ID() (int64, bool) {
	if f.id == nil {
		return 0, false
	}
	return *f.id, true
}

// Matches reports whether the client satisfies every set clause.
// Both backends answer filtered reads through this predicate semantics:
// the in-memory backend calls it directly and the SQL backend compiles
// the same clauses into a WHERE conjunction.
func (f ClientFilter) Matches(c Client) bool {
	if f.id != nil && *f.id != c.ID {
		return false
	}
	if f.name != nil && *f.name != NormalizeText(c.Name) {
		return false
	}
	return true
}

// TransactionFilter selects transactions by optional id, owning client,
// inclusive date range, and inclusive price range. Same combination
// semantics as ClientFilter.
type TransactionFilter struct {
	id       *int64
	clientID *int64
	dateMin  *int64
	dateMax  *int64
	priceMin *int64
	priceMax *int64
}

// NewTransactionFilter returns a filter that matches every transaction.
func NewTransactionFilter() TransactionFilter {
	return TransactionFilter{}
}

// WithID restricts the filter to the transaction with this id.
func (f TransactionFilter) WithID(id int64) TransactionFilter {
	f.id = &id
	return f
}

// WithClient restricts the filter to transactions owned by this client.
// Anonymous transactions never match a client clause.
func (f TransactionFilter) WithClient(clientID int64) TransactionFilter {
	f.clientID = &clientID
	return f
}

// WithDateRange restricts the filter to transactions whose date lies in
// [min, max], inclusive on both ends.
func (f TransactionFilter) WithDateRange(min, max int64) TransactionFilter {
	f.dateMin = &min
	f.dateMax = &max
	return f
}

// WithPriceRange restricts the filter to transactions whose price lies
// in [min, max], inclusive on both ends.
func (f TransactionFilter) WithPriceRange(min, max int64) TransactionFilter {
	f.priceMin = &min
	f.priceMax = &max
	return f
}

// ID returns the id clause and whether it is set.
func (f TransactionFilter) ID() (int64, bool) {
	if f.id == nil {
		return 0, false
	}
	return *f.id, true
}

// Client returns the owning-client clause and whether it is set.
func (f TransactionFilter) Client() (int64, bool) {
	if f.clientID == nil {
		return 0, false
	}
	return *f.clientID, true
}

// DateRange returns the date-range clause and whether it is set.
func (f TransactionFilter) DateRange() (min, max int64, ok bool) {
	if f.dateMin == nil {
		return 0, 0, false
	}
	return *f.dateMin, *f.dateMax, true
}

// PriceRange returns the price-range clause and whether it is set.
func (f TransactionFilter) PriceRange() (min, max int64, ok bool) {
	if f.priceMin == nil {
		return 0, 0, false
	}
	return *f.priceMin, *f.priceMax, true
}

// Matches reports whether the transaction satisfies every set clause.
func (f TransactionFilter) Matches(t Transaction) bool {
	if f.id != nil && *f.id != t.ID {
		return false
	}
	if f.clientID != nil {
		if t.ClientID == nil || *t.ClientID != *f.clientID {
			return false
		}
	}
	if f.dateMin != nil && (t.Date < *f.dateMin || t.Date > *f.dateMax) {
		return false
	}
	if f.priceMin != nil && (t.Price < *f.priceMin || t.Price > *f.priceMax) {
		return false
	}
	return true
}
