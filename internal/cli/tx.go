package cli

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"fiado/internal/ledger"
)

// TxOptions holds flags for the tx subcommands.
type TxOptions struct {
	*RootOptions
	Client   int64
	Payment  int64
	Detail   string
	Date     int64
	ID       int64
	DateFrom int64
	DateTo   int64
	PriceMin int64
	PriceMax int64
}

// NewTxCommand creates the tx command group.
func NewTxCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tx",
		Short: "Manage transactions",
	}

	cmd.AddCommand(newTxAddCommand(rootOpts))
	cmd.AddCommand(newTxListCommand(rootOpts))
	cmd.AddCommand(newTxRemoveCommand(rootOpts))
	cmd.AddCommand(newTxPriceCommand(rootOpts))
	cmd.AddCommand(newTxPayCommand(rootOpts))

	return cmd
}

func newTxAddCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TxOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "add <price>",
		Short: "Add a transaction",
		Long: `Add a transaction with the given price.

Without --client the transaction is anonymous and must be fully paid
up front: --payment has to equal the price. With --client, any unpaid
remainder is owed by that client (reflect it with "balance recompute"
or "balance adjust").`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			price, err := parseAmount(args[0])
			if err != nil {
				return err
			}

			s, err := openStore(rootOpts)
			if err != nil {
				return err
			}
			defer s.Close()

			var clientID *int64
			if opts.Client != 0 {
				clientID = &opts.Client
			}
			date := opts.Date
			if date == 0 {
				date = time.Now().Unix()
			}

			tx, err := s.AddTransaction(context.Background(), clientID, price, opts.Payment, opts.Detail, date)
			if err != nil {
				return storeErr(cmd, rootOpts, err)
			}

			out := formatter(cmd, rootOpts)
			return out.Success(fmt.Sprintf("added transaction %d (price %d, payment %d)", tx.ID, tx.Price, tx.Payment), tx)
		},
	}

	cmd.Flags().Int64Var(&opts.Client, "client", 0, "owning client id (omit for anonymous)")
	cmd.Flags().Int64Var(&opts.Payment, "payment", 0, "amount paid so far")
	cmd.Flags().StringVar(&opts.Detail, "detail", "", "free-text detail")
	cmd.Flags().Int64Var(&opts.Date, "date", 0, "unix timestamp (default now)")

	return cmd
}

func newTxListCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TxOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:           "ls",
		Short:         "List transactions, optionally filtered",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openStore(rootOpts)
			if err != nil {
				return err
			}
			defer s.Close()

			f := ledger.NewTransactionFilter()
			if opts.ID != 0 {
				f = f.WithID(opts.ID)
			}
			if opts.Client != 0 {
				f = f.WithClient(opts.Client)
			}
			// Unset bounds widen to the extremes so a single-ended
			// flag still means "everything from/up to here".
			if cmd.Flags().Changed("from") || cmd.Flags().Changed("to") {
				to := opts.DateTo
				if !cmd.Flags().Changed("to") {
					to = math.MaxInt64
				}
				f = f.WithDateRange(opts.DateFrom, to)
			}
			if cmd.Flags().Changed("price-min") || cmd.Flags().Changed("price-max") {
				lo, hi := opts.PriceMin, opts.PriceMax
				if !cmd.Flags().Changed("price-min") {
					lo = math.MinInt64
				}
				if !cmd.Flags().Changed("price-max") {
					hi = math.MaxInt64
				}
				f = f.WithPriceRange(lo, hi)
			}

			txs, err := s.GetTransactions(context.Background(), f)
			if err != nil {
				return storeErr(cmd, rootOpts, err)
			}

			out := formatter(cmd, rootOpts)
			if rootOpts.Format == "json" {
				return out.Success("", txs)
			}
			for _, tx := range txs {
				owner := "-"
				if tx.ClientID != nil {
					owner = fmt.Sprintf("%d", *tx.ClientID)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%d\t%s\t%d\t%d\t%d\t%s\n",
					tx.ID, owner, tx.Date, tx.Price, tx.Payment, tx.Detail)
			}
			return nil
		},
	}

	cmd.Flags().Int64Var(&opts.ID, "id", 0, "filter by id")
	cmd.Flags().Int64Var(&opts.Client, "client", 0, "filter by owning client id")
	cmd.Flags().Int64Var(&opts.DateFrom, "from", 0, "earliest date (unix, inclusive)")
	cmd.Flags().Int64Var(&opts.DateTo, "to", 0, "latest date (unix, inclusive)")
	cmd.Flags().Int64Var(&opts.PriceMin, "price-min", 0, "minimum price (inclusive)")
	cmd.Flags().Int64Var(&opts.PriceMax, "price-max", 0, "maximum price (inclusive)")

	return cmd
}

func newTxRemoveCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rm <id>",
		Short: "Remove a transaction (idempotent)",
		Long: `Remove a transaction by id.

The owning client's stored balance is left as-is; follow up with
"balance recompute" or "balance adjust" to reflect the removal.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			s, err := openStore(rootOpts)
			if err != nil {
				return err
			}
			defer s.Close()

			if err := s.RemoveTransaction(context.Background(), id); err != nil {
				return storeErr(cmd, rootOpts, err)
			}

			out := formatter(cmd, rootOpts)
			return out.Success(fmt.Sprintf("removed transaction %d", id), map[string]int64{"id": id})
		},
	}

	return cmd
}

func newTxPriceCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "price <id> <new-price>",
		Short:         "Set a transaction's price",
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			price, err := parseAmount(args[1])
			if err != nil {
				return err
			}

			s, err := openStore(rootOpts)
			if err != nil {
				return err
			}
			defer s.Close()

			if err := s.UpdateTransactionPrice(context.Background(), id, price); err != nil {
				return storeErr(cmd, rootOpts, err)
			}

			out := formatter(cmd, rootOpts)
			return out.Success(fmt.Sprintf("transaction %d price set to %d", id, price),
				map[string]int64{"id": id, "price": price})
		},
	}

	return cmd
}

func newTxPayCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pay <id> <amount>",
		Short: "Record a payment against a transaction",
		Long: `Record a payment against a transaction.

The amount is added to the transaction's payment, and the owning
client's stored balance is bumped by the same amount in the same
database transaction. Anonymous transactions only get the payment
bump.`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			amount, err := parseAmount(args[1])
			if err != nil {
				return err
			}

			s, err := openStore(rootOpts)
			if err != nil {
				return err
			}
			defer s.Close()

			if err := s.RecordPayment(context.Background(), id, amount); err != nil {
				return storeErr(cmd, rootOpts, err)
			}

			out := formatter(cmd, rootOpts)
			return out.Success(fmt.Sprintf("recorded payment of %d on transaction %d", amount, id),
				map[string]int64{"id": id, "amount": amount})
		},
	}

	return cmd
}

// parseAmount parses a monetary argument (price, payment, delta).
func parseAmount(arg string) (int64, error) {
	n, err := strconv.ParseInt(arg, 10, 64)
	if err != nil {
		return 0, WrapExitError(ExitCommandError, fmt.Sprintf("invalid amount %q", arg), err)
	}
	return n, nil
}
