package sqlstore

import (
	"database/sql"
	"strings"

	"fiado/internal/ledger"
)

// Filter compilation: each set clause on a filter becomes one
// parameterized predicate; clauses join with AND. Values are never
// interpolated into the SQL text. An empty filter compiles to an empty
// WHERE clause, matching every row.
//
// All reads ORDER BY id ASC so results are stable for a given
// unmutated store state.

// compileClientFilter converts a ClientFilter to a WHERE clause and its
// parameters. Returns "" when the filter has no clauses.
func compileClientFilter(f ledger.ClientFilter) (string, []any) {
	var preds []string
	var params []any

	if id, ok := f.ID(); ok {
		preds = append(preds, "id = ?")
		params = append(params, id)
	}
	if name, ok := f.Name(); ok {
		preds = append(preds, "name = ?")
		params = append(params, name)
	}

	return whereClause(preds), params
}

// compileTransactionFilter converts a TransactionFilter to a WHERE
// clause and its parameters. Range clauses compile to inclusive bounds.
func compileTransactionFilter(f ledger.TransactionFilter) (string, []any) {
	var preds []string
	var params []any

	if id, ok := f.ID(); ok {
		preds = append(preds, "id = ?")
		params = append(params, id)
	}
	if clientID, ok := f.Client(); ok {
		preds = append(preds, "client_id = ?")
		params = append(params, clientID)
	}
	if min, max, ok := f.DateRange(); ok {
		preds = append(preds, "date >= ?", "date <= ?")
		params = append(params, min, max)
	}
	if min, max, ok := f.PriceRange(); ok {
		preds = append(preds, "price >= ?", "price <= ?")
		params = append(params, min, max)
	}

	return whereClause(preds), params
}

func whereClause(preds []string) string {
	if len(preds) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(preds, " AND ")
}

// nullString maps an optional text field to its column value. Empty
// strings are stored as NULL, matching the nullable detail columns.
func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

// nullID maps an optional client reference to its column value.
func nullID(id *int64) sql.NullInt64 {
	if id == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *id, Valid: true}
}
