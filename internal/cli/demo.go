package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"fiado/internal/ledger"
	"fiado/internal/memstore"
)

// NewDemoCommand creates the demo command: a self-contained smoke run
// against an in-memory store, leaving the configured database alone.
func NewDemoCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "demo",
		Short: "Run a self-contained smoke scenario in memory",
		Long: `Run a short smoke scenario against an in-memory store: add a
client, bill a partially paid transaction, recompute the balance, and
print the result. The configured database is not touched.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			s := memstore.New()
			defer s.Close()

			c, err := s.AddClient(ctx, "lul", "1")
			if err != nil {
				return storeErr(cmd, rootOpts, err)
			}

			found, err := s.GetClients(ctx, ledger.NewClientFilter().WithName("lul"))
			if err != nil {
				return storeErr(cmd, rootOpts, err)
			}
			if len(found) != 1 {
				return WrapExitError(ExitFailure, fmt.Sprintf("expected one client named lul, found %d", len(found)), nil)
			}

			tx, err := s.AddTransaction(ctx, &c.ID, 1000, 400, "pague weeee", 1700000000)
			if err != nil {
				return storeErr(cmd, rootOpts, err)
			}

			if err := s.RecomputeBalance(ctx, c.ID); err != nil {
				return storeErr(cmd, rootOpts, err)
			}

			after, err := fetchClient(ctx, s, c.ID)
			if err != nil {
				return storeErr(cmd, rootOpts, err)
			}

			out := formatter(cmd, rootOpts)
			text := fmt.Sprintf("client %s owes %d (price %d, paid %d)", after.Name, -after.Balance, tx.Price, tx.Payment)
			return out.Success(text, map[string]interface{}{
				"client":      after,
				"transaction": tx,
			})
		},
	}

	return cmd
}
