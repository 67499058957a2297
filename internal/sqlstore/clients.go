package sqlstore

import (
	"context"
	"database/sql"
	"errors"

	"fiado/internal/ledger"
)

// AddClient creates a client with a fresh id and balance 0.
func (s *Store) AddClient(ctx context.Context, name, detail string) (ledger.Client, error) {
	if err := ledger.ValidateNewClient(name); err != nil {
		return ledger.Client{}, err
	}
	name = ledger.NormalizeText(name)

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO clients (name, detail)
		VALUES (?, ?)
	`, name, nullString(detail))
	if err != nil {
		return ledger.Client{}, ledger.NewBackendError("add client", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return ledger.Client{}, ledger.NewBackendError("add client: read id", err)
	}

	return ledger.Client{ID: id, Name: name, Detail: detail, Balance: 0}, nil
}

// UpdateClient replaces name and detail for the record matching c.ID.
// The balance column is deliberately absent from the SET list; only the
// balance operations write it.
func (s *Store) UpdateClient(ctx context.Context, c ledger.Client) error {
	if err := ledger.ValidateNewClient(c.Name); err != nil {
		return err
	}

	res, err := s.db.ExecContext(ctx, `
		UPDATE clients
		SET name = ?, detail = ?
		WHERE id = ?
	`, ledger.NormalizeText(c.Name), nullString(c.Detail), c.ID)
	if err != nil {
		return ledger.NewBackendError("update client", err)
	}

	return requireRow(res, "client", c.ID)
}

// RemoveClient deletes the client by id. The schema's foreign keys do
// the rest: aliases cascade away and transactions keep their history
// with client_id set to NULL. A missing id is a no-op.
func (s *Store) RemoveClient(ctx context.Context, id int64) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM clients WHERE id = ?`, id); err != nil {
		return ledger.NewBackendError("remove client", err)
	}
	return nil
}

// GetClients returns all clients matching the filter, ordered by id.
// Rows that fail to scan are skipped rather than failing the read: one
// corrupt record does not hide the rest of the result set.
func (s *Store) GetClients(ctx context.Context, f ledger.ClientFilter) ([]ledger.Client, error) {
	where, params := compileClientFilter(f)

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, balance, detail
		FROM clients`+where+`
		ORDER BY id ASC
	`, params...)
	if err != nil {
		return nil, ledger.NewBackendError("query clients", err)
	}
	defer rows.Close()

	clients := []ledger.Client{}
	for rows.Next() {
		var c ledger.Client
		var detail sql.NullString
		if err := rows.Scan(&c.ID, &c.Name, &c.Balance, &detail); err != nil {
			continue // skip malformed row
		}
		c.Detail = detail.String
		clients = append(clients, c)
	}
	if err := rows.Err(); err != nil {
		return nil, ledger.NewBackendError("iterate clients", err)
	}

	return clients, nil
}

// AddAlias creates an alias owned by the given client.
func (s *Store) AddAlias(ctx context.Context, clientID int64, alias string) (ledger.Alias, error) {
	if err := s.requireClient(ctx, clientID); err != nil {
		return ledger.Alias{}, err
	}
	alias = ledger.NormalizeText(alias)

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO aliases (client_id, alias)
		VALUES (?, ?)
	`, clientID, alias)
	if err != nil {
		return ledger.Alias{}, ledger.NewBackendError("add alias", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return ledger.Alias{}, ledger.NewBackendError("add alias: read id", err)
	}

	return ledger.Alias{ID: id, ClientID: clientID, Alias: alias}, nil
}

// GetAliases returns all aliases owned by the client, ordered by id.
// Same skip-malformed-rows policy as GetClients.
func (s *Store) GetAliases(ctx context.Context, clientID int64) ([]ledger.Alias, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, client_id, alias
		FROM aliases
		WHERE client_id = ?
		ORDER BY id ASC
	`, clientID)
	if err != nil {
		return nil, ledger.NewBackendError("query aliases", err)
	}
	defer rows.Close()

	aliases := []ledger.Alias{}
	for rows.Next() {
		var a ledger.Alias
		if err := rows.Scan(&a.ID, &a.ClientID, &a.Alias); err != nil {
			continue // skip malformed row
		}
		aliases = append(aliases, a)
	}
	if err := rows.Err(); err != nil {
		return nil, ledger.NewBackendError("iterate aliases", err)
	}

	return aliases, nil
}

// RemoveAlias deletes an alias by id. A missing id is a no-op.
func (s *Store) RemoveAlias(ctx context.Context, id int64) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM aliases WHERE id = ?`, id); err != nil {
		return ledger.NewBackendError("remove alias", err)
	}
	return nil
}

// UpdateAlias rewrites the alias text for the given id. The owning
// client never changes; moving an alias is removal plus recreation.
func (s *Store) UpdateAlias(ctx context.Context, a ledger.Alias) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE aliases
		SET alias = ?
		WHERE id = ?
	`, ledger.NormalizeText(a.Alias), a.ID)
	if err != nil {
		return ledger.NewBackendError("update alias", err)
	}

	return requireRow(res, "alias", a.ID)
}

// RecomputeBalance sets the stored balance to the sum of payments minus
// the sum of prices over the client's transactions. The sums run as
// subqueries inside one UPDATE, so the engine computes the new value
// from a single consistent snapshot; there is no read-then-write window
// for a concurrent insert to tear.
func (s *Store) RecomputeBalance(ctx context.Context, clientID int64) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE clients
		SET balance =
			COALESCE((SELECT SUM(payment) FROM transactions WHERE client_id = ?), 0) -
			COALESCE((SELECT SUM(price) FROM transactions WHERE client_id = ?), 0)
		WHERE id = ?
	`, clientID, clientID, clientID)
	if err != nil {
		return ledger.NewBackendError("recompute balance", err)
	}

	return requireRow(res, "client", clientID)
}

// AdjustBalance adds delta to the stored balance without scanning
// transactions. The caller pairs the delta with an actual transaction
// change; the store does not check that.
func (s *Store) AdjustBalance(ctx context.Context, clientID int64, delta int64) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE clients
		SET balance = balance + ?
		WHERE id = ?
	`, delta, clientID)
	if err != nil {
		return ledger.NewBackendError("adjust balance", err)
	}

	return requireRow(res, "client", clientID)
}

// requireClient fails with a not-found error if the client id is absent.
func (s *Store) requireClient(ctx context.Context, id int64) error {
	var one int
	err := s.db.QueryRowContext(ctx, `SELECT 1 FROM clients WHERE id = ?`, id).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return ledger.NewNotFoundError("client", id)
	}
	if err != nil {
		return ledger.NewBackendError("lookup client", err)
	}
	return nil
}

// requireRow converts a zero-row update into a not-found error.
func requireRow(res sql.Result, entity string, id int64) error {
	n, err := res.RowsAffected()
	if err != nil {
		return ledger.NewBackendError("rows affected", err)
	}
	if n == 0 {
		return ledger.NewNotFoundError(entity, id)
	}
	return nil
}
