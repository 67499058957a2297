package harness

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Scenario defines a declarative ledger test scenario.
type Scenario struct {
	// Name uniquely identifies this scenario. Golden files are stored
	// under testdata/golden/{Name}.golden.
	Name string `yaml:"name"`

	// Description explains what this scenario exercises.
	Description string `yaml:"description,omitempty"`

	// Steps are the store operations to execute, in order.
	Steps []Step `yaml:"steps"`

	// Expect holds optional assertions on the final state.
	Expect *Expect `yaml:"expect,omitempty"`
}

// Step is a single store operation. Op selects the operation; the
// remaining fields are consumed by the ops that need them.
type Step struct {
	// Op is one of: add_client, update_client, remove_client,
	// add_alias, remove_alias, add_transaction, remove_transaction,
	// update_transaction_price, update_transaction_balance,
	// adjust_balance, recompute_balance.
	Op string `yaml:"op"`

	// Name is the client name (target of client ops, owner of aliases).
	Name string `yaml:"name,omitempty"`

	// Detail is free text for clients and transactions.
	Detail string `yaml:"detail,omitempty"`

	// Client names the owning client for transaction and balance ops.
	// Empty on add_transaction means anonymous.
	Client string `yaml:"client,omitempty"`

	// Alias is the alias text for alias ops.
	Alias string `yaml:"alias,omitempty"`

	// Tx is the 1-based index of a previously added transaction, for
	// ops that target one.
	Tx int `yaml:"tx,omitempty"`

	Price   int64 `yaml:"price,omitempty"`
	Payment int64 `yaml:"payment,omitempty"`
	Date    int64 `yaml:"date,omitempty"`
	Delta   int64 `yaml:"delta,omitempty"`
}

// Expect lists assertions evaluated after the last step.
type Expect struct {
	// Balances maps client names to their expected stored balance.
	Balances map[string]int64 `yaml:"balances,omitempty"`
}

// LoadScenario reads, schema-validates, and decodes a scenario file.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scenario: %w", err)
	}

	if err := ValidateScenarioBytes(path, data); err != nil {
		return nil, err
	}

	var s Scenario
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parse scenario %s: %w", path, err)
	}
	if s.Name == "" {
		return nil, fmt.Errorf("scenario %s: name is required", path)
	}
	if len(s.Steps) == 0 {
		return nil, fmt.Errorf("scenario %s: at least one step is required", path)
	}

	return &s, nil
}
