package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"fiado/internal/ledger"
)

// NewBalanceCommand creates the balance command group.
func NewBalanceCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "balance",
		Short: "Maintain client balances",
		Long: `Maintain client balances.

A client's stored balance is derived state: the sum of payments minus
the sum of prices over the client's transactions. "recompute" restores
it from scratch; "adjust" applies a known delta without scanning.`,
	}

	cmd.AddCommand(newBalanceRecomputeCommand(rootOpts))
	cmd.AddCommand(newBalanceAdjustCommand(rootOpts))

	return cmd
}

func newBalanceRecomputeCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "recompute <client-id>",
		Short:         "Recompute a client's balance from transactions",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			clientID, err := parseID(args[0])
			if err != nil {
				return err
			}

			s, err := openStore(rootOpts)
			if err != nil {
				return err
			}
			defer s.Close()

			ctx := context.Background()
			if err := s.RecomputeBalance(ctx, clientID); err != nil {
				return storeErr(cmd, rootOpts, err)
			}

			c, err := fetchClient(ctx, s, clientID)
			if err != nil {
				return storeErr(cmd, rootOpts, err)
			}

			out := formatter(cmd, rootOpts)
			return out.Success(fmt.Sprintf("client %d balance is %d", c.ID, c.Balance), c)
		},
	}

	return cmd
}

func newBalanceAdjustCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "adjust <client-id> <delta>",
		Short:         "Apply a delta to a client's stored balance",
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			clientID, err := parseID(args[0])
			if err != nil {
				return err
			}
			delta, err := parseAmount(args[1])
			if err != nil {
				return err
			}

			s, err := openStore(rootOpts)
			if err != nil {
				return err
			}
			defer s.Close()

			ctx := context.Background()
			if err := s.AdjustBalance(ctx, clientID, delta); err != nil {
				return storeErr(cmd, rootOpts, err)
			}

			c, err := fetchClient(ctx, s, clientID)
			if err != nil {
				return storeErr(cmd, rootOpts, err)
			}

			out := formatter(cmd, rootOpts)
			return out.Success(fmt.Sprintf("client %d balance is %d", c.ID, c.Balance), c)
		},
	}

	return cmd
}

// fetchClient looks up a single client by id for result reporting.
func fetchClient(ctx context.Context, s ledger.ClientStore, id int64) (ledger.Client, error) {
	clients, err := s.GetClients(ctx, ledger.NewClientFilter().WithID(id))
	if err != nil {
		return ledger.Client{}, err
	}
	if len(clients) == 0 {
		return ledger.Client{}, ledger.NewNotFoundError("client", id)
	}
	return clients[0], nil
}
