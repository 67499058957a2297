package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"fiado/internal/ledger"
)

// AddTransaction creates a transaction. The anonymous-payment invariant
// is checked before any write: an anonymous record that is not fully
// paid never reaches the database.
//
// The owning client's cached balance is NOT updated here; callers pair
// transaction writes with AdjustBalance or RecomputeBalance.
func (s *Store) AddTransaction(ctx context.Context, clientID *int64, price, payment int64, detail string, date int64) (ledger.Transaction, error) {
	if err := ledger.ValidateNewTransaction(clientID, price, payment); err != nil {
		return ledger.Transaction{}, err
	}
	if clientID != nil {
		if err := s.requireClient(ctx, *clientID); err != nil {
			return ledger.Transaction{}, err
		}
	}

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO transactions (client_id, date, price, payment, detail)
		VALUES (?, ?, ?, ?, ?)
	`, nullID(clientID), date, price, payment, nullString(detail))
	if err != nil {
		return ledger.Transaction{}, ledger.NewBackendError("add transaction", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return ledger.Transaction{}, ledger.NewBackendError("add transaction: read id", err)
	}

	return ledger.Transaction{
		ID:       id,
		ClientID: clientID,
		Date:     date,
		Price:    price,
		Payment:  payment,
		Detail:   detail,
	}, nil
}

// GetTransactions returns all transactions matching the filter, ordered
// by id. Rows that fail to scan are skipped, same policy as GetClients.
func (s *Store) GetTransactions(ctx context.Context, f ledger.TransactionFilter) ([]ledger.Transaction, error) {
	where, params := compileTransactionFilter(f)

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, client_id, date, price, payment, detail
		FROM transactions`+where+`
		ORDER BY id ASC
	`, params...)
	if err != nil {
		return nil, ledger.NewBackendError("query transactions", err)
	}
	defer rows.Close()

	txs := []ledger.Transaction{}
	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			continue // skip malformed row
		}
		txs = append(txs, tx)
	}
	if err := rows.Err(); err != nil {
		return nil, ledger.NewBackendError("iterate transactions", err)
	}

	return txs, nil
}

// UpdateTransaction rewrites date, owning client, and detail for the
// record matching t.ID. Price and payment go through the targeted
// operations instead.
func (s *Store) UpdateTransaction(ctx context.Context, t ledger.Transaction) error {
	if t.ClientID != nil {
		if err := s.requireClient(ctx, *t.ClientID); err != nil {
			return err
		}
	}

	res, err := s.db.ExecContext(ctx, `
		UPDATE transactions
		SET client_id = ?, date = ?, detail = ?
		WHERE id = ?
	`, nullID(t.ClientID), t.Date, nullString(t.Detail), t.ID)
	if err != nil {
		return ledger.NewBackendError("update transaction", err)
	}

	return requireRow(res, "transaction", t.ID)
}

// UpdateTransactionPrice sets a new price. The owning client's cached
// balance is not adjusted; that obligation stays with the caller.
func (s *Store) UpdateTransactionPrice(ctx context.Context, id int64, newPrice int64) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE transactions
		SET price = ?
		WHERE id = ?
	`, newPrice, id)
	if err != nil {
		return ledger.NewBackendError("update transaction price", err)
	}

	return requireRow(res, "transaction", id)
}

// UpdateTransactionBalance adds paymentDelta to the transaction's
// payment. The owning client's cached balance is not adjusted; that
// obligation stays with the caller.
func (s *Store) UpdateTransactionBalance(ctx context.Context, id int64, paymentDelta int64) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE transactions
		SET payment = payment + ?
		WHERE id = ?
	`, paymentDelta, id)
	if err != nil {
		return ledger.NewBackendError("update transaction balance", err)
	}

	return requireRow(res, "transaction", id)
}

// RemoveTransaction deletes a transaction by id. A missing id is a
// no-op, and the owning client's cached balance is not adjusted.
func (s *Store) RemoveTransaction(ctx context.Context, id int64) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM transactions WHERE id = ?`, id); err != nil {
		return ledger.NewBackendError("remove transaction", err)
	}
	return nil
}

// RecordPayment is the convenience path for "payment received": it
// bumps the transaction's payment and the owning client's stored
// balance in one database transaction, so a crash between the two
// writes cannot leave them diverged. The primitive operations remain
// available and independently correct; this wrapper only composes them.
//
// Anonymous transactions have no balance to adjust, so only the payment
// column changes.
func (s *Store) RecordPayment(ctx context.Context, txID int64, amount int64) error {
	dbtx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return ledger.NewBackendError("record payment: begin tx", err)
	}
	defer dbtx.Rollback() // No-op if committed

	var clientID sql.NullInt64
	err = dbtx.QueryRowContext(ctx, `
		SELECT client_id FROM transactions WHERE id = ?
	`, txID).Scan(&clientID)
	if errors.Is(err, sql.ErrNoRows) {
		return ledger.NewNotFoundError("transaction", txID)
	}
	if err != nil {
		return ledger.NewBackendError("record payment: lookup transaction", err)
	}

	if _, err := dbtx.ExecContext(ctx, `
		UPDATE transactions SET payment = payment + ? WHERE id = ?
	`, amount, txID); err != nil {
		return ledger.NewBackendError("record payment: update transaction", err)
	}

	if clientID.Valid {
		if _, err := dbtx.ExecContext(ctx, `
			UPDATE clients SET balance = balance + ? WHERE id = ?
		`, amount, clientID.Int64); err != nil {
			return ledger.NewBackendError("record payment: adjust balance", err)
		}
	}

	if err := dbtx.Commit(); err != nil {
		return ledger.NewBackendError("record payment: commit", err)
	}

	return nil
}

// scanTransaction scans a row into a Transaction.
func scanTransaction(rows *sql.Rows) (ledger.Transaction, error) {
	var t ledger.Transaction
	var clientID sql.NullInt64
	var detail sql.NullString

	if err := rows.Scan(&t.ID, &clientID, &t.Date, &t.Price, &t.Payment, &detail); err != nil {
		return ledger.Transaction{}, fmt.Errorf("scan transaction: %w", err)
	}

	if clientID.Valid {
		id := clientID.Int64
		t.ClientID = &id
	}
	t.Detail = detail.String

	return t, nil
}
