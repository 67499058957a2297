// Package harness provides scenario-based testing for the ledger store.
//
// # Scenario Format
//
// Scenarios are defined in YAML files with the following structure:
//
//	name: credit_and_recompute
//	description: "Credit sale followed by a full balance recompute"
//	steps:
//	  - op: add_client
//	    name: lul
//	    detail: "1"
//	  - op: add_transaction
//	    client: lul
//	    price: 1000
//	    payment: 400
//	    detail: pague weeee
//	    date: 1700000000
//	  - op: recompute_balance
//	    client: lul
//	expect:
//	  balances:
//	    lul: -600
//
// Steps reference clients by name and transactions by their 1-based
// position among the scenario's add_transaction steps, so scenario
// authors never deal with engine-assigned ids.
//
// # Validation
//
// Scenario files are validated against an embedded CUE schema before
// execution, so a mistyped op name fails with a schema error instead
// of a confusing runtime one.
//
// # Deterministic Snapshots
//
// A scenario runs against a fresh store and ends with a snapshot of
// the final state (clients, aliases, transactions) as indented JSON.
// Snapshots are deterministic for a given scenario, which makes them
// suitable for golden file comparison; see RunWithGolden.
package harness
