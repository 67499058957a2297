// Package ledger defines the entity model, filter descriptors, error
// taxonomy, and storage contracts for the fiado record store.
//
// The package is pure data and contracts: it carries no storage
// behavior of its own. Two backends implement the contracts —
// internal/sqlstore (SQLite) and internal/memstore (ordered in-memory
// sets) — and both must behave identically. The shared conformance
// suite in internal/storetest enforces that.
//
// The central correctness property is balance consistency: for any
// client, the stored balance must equal the sum of payments minus the
// sum of prices across that client's transactions. Balance maintenance
// is deliberately decoupled from transaction writes; callers trigger
// RecomputeBalance (full scan) or AdjustBalance (delta fast path), and
// both must converge to the same value for the same history.
package ledger
