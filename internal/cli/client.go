package cli

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"fiado/internal/ledger"
)

// ClientOptions holds flags for the client subcommands.
type ClientOptions struct {
	*RootOptions
	Detail string
	Name   string
	ID     int64
}

// NewClientCommand creates the client command group.
func NewClientCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "client",
		Short: "Manage clients",
	}

	cmd.AddCommand(newClientAddCommand(rootOpts))
	cmd.AddCommand(newClientListCommand(rootOpts))
	cmd.AddCommand(newClientRemoveCommand(rootOpts))
	cmd.AddCommand(newClientSetCommand(rootOpts))

	return cmd
}

func newClientAddCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ClientOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Add a client",
		Long: `Add a client with a fresh id and balance 0.

Example:
  fiado client add "lul" --detail "pays on fridays"`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openStore(opts.RootOptions)
			if err != nil {
				return err
			}
			defer s.Close()

			c, err := s.AddClient(context.Background(), args[0], opts.Detail)
			if err != nil {
				return storeErr(cmd, opts.RootOptions, err)
			}

			out := formatter(cmd, opts.RootOptions)
			return out.Success(fmt.Sprintf("added client %d (%s)", c.ID, c.Name), c)
		},
	}

	cmd.Flags().StringVar(&opts.Detail, "detail", "", "free-text detail")

	return cmd
}

func newClientListCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ClientOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:           "ls",
		Short:         "List clients, optionally filtered",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openStore(opts.RootOptions)
			if err != nil {
				return err
			}
			defer s.Close()

			f := ledger.NewClientFilter()
			if opts.Name != "" {
				f = f.WithName(opts.Name)
			}
			if opts.ID != 0 {
				f = f.WithID(opts.ID)
			}

			clients, err := s.GetClients(context.Background(), f)
			if err != nil {
				return storeErr(cmd, opts.RootOptions, err)
			}

			out := formatter(cmd, opts.RootOptions)
			if opts.Format == "json" {
				return out.Success("", clients)
			}
			for _, c := range clients {
				fmt.Fprintf(cmd.OutOrStdout(), "%d\t%s\t%d\t%s\n", c.ID, c.Name, c.Balance, c.Detail)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&opts.Name, "name", "", "filter by exact name")
	cmd.Flags().Int64Var(&opts.ID, "id", 0, "filter by id")

	return cmd
}

func newClientRemoveCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ClientOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "rm <id>",
		Short: "Remove a client (idempotent)",
		Long: `Remove a client by id.

Aliases are removed with the client; the client's transactions survive
with their client reference cleared. Removing a missing id is a no-op.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			s, err := openStore(opts.RootOptions)
			if err != nil {
				return err
			}
			defer s.Close()

			if err := s.RemoveClient(context.Background(), id); err != nil {
				return storeErr(cmd, opts.RootOptions, err)
			}

			out := formatter(cmd, opts.RootOptions)
			return out.Success(fmt.Sprintf("removed client %d", id), map[string]int64{"id": id})
		},
	}

	return cmd
}

func newClientSetCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ClientOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:           "set <id> <name>",
		Short:         "Rewrite a client's name and detail",
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			s, err := openStore(opts.RootOptions)
			if err != nil {
				return err
			}
			defer s.Close()

			c := ledger.Client{ID: id, Name: args[1], Detail: opts.Detail}
			if err := s.UpdateClient(context.Background(), c); err != nil {
				return storeErr(cmd, opts.RootOptions, err)
			}

			out := formatter(cmd, opts.RootOptions)
			return out.Success(fmt.Sprintf("updated client %d", id), c)
		},
	}

	cmd.Flags().StringVar(&opts.Detail, "detail", "", "free-text detail")

	return cmd
}

// parseID parses a positional id argument.
func parseID(arg string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil {
		return 0, WrapExitError(ExitCommandError, fmt.Sprintf("invalid id %q", arg), err)
	}
	return id, nil
}

// formatter builds the output formatter for a command invocation.
func formatter(cmd *cobra.Command, opts *RootOptions) *OutputFormatter {
	return &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()}
}

// storeErr reports a store failure in the configured format and maps it
// to an exit code: validation and not-found are operation failures,
// backend errors are command errors.
func storeErr(cmd *cobra.Command, opts *RootOptions, err error) error {
	code := ExitFailure
	taxCode := "ERROR"
	switch {
	// Checked before IsValidation, which also covers this code.
	case ledger.IsAnonPaymentMismatch(err):
		taxCode = string(ledger.ErrCodeAnonPaymentMismatch)
	case ledger.IsValidation(err):
		taxCode = string(ledger.ErrCodeValidation)
	case ledger.IsNotFound(err):
		taxCode = string(ledger.ErrCodeNotFound)
	case ledger.IsBackend(err):
		taxCode = string(ledger.ErrCodeBackend)
		code = ExitCommandError
	}

	out := formatter(cmd, opts)
	_ = out.Error(taxCode, err.Error())
	return WrapExitError(code, "operation failed", err)
}
