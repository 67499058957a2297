package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"fiado/internal/ledger"
)

// NewAliasCommand creates the alias command group.
func NewAliasCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "alias",
		Short: "Manage client aliases",
	}

	cmd.AddCommand(newAliasAddCommand(rootOpts))
	cmd.AddCommand(newAliasListCommand(rootOpts))
	cmd.AddCommand(newAliasRemoveCommand(rootOpts))
	cmd.AddCommand(newAliasSetCommand(rootOpts))

	return cmd
}

func newAliasAddCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "add <client-id> <alias>",
		Short:         "Add an alias for a client",
		Args:          cobra.ExactArgs(2),
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

			a, err := s.AddAlias(context.Background(), clientID, args[1])
			if err != nil {
				return storeErr(cmd, rootOpts, err)
			}

			out := formatter(cmd, rootOpts)
			return out.Success(fmt.Sprintf("added alias %d (%s) for client %d", a.ID, a.Alias, a.ClientID), a)
		},
	}

	return cmd
}

func newAliasListCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "ls <client-id>",
		Short:         "List a client's aliases",
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

			aliases, err := s.GetAliases(context.Background(), clientID)
			if err != nil {
				return storeErr(cmd, rootOpts, err)
			}

			out := formatter(cmd, rootOpts)
			if rootOpts.Format == "json" {
				return out.Success("", aliases)
			}
			for _, a := range aliases {
				fmt.Fprintf(cmd.OutOrStdout(), "%d\t%s\n", a.ID, a.Alias)
			}
			return nil
		},
	}

	return cmd
}

func newAliasRemoveCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "rm <id>",
		Short:         "Remove an alias (idempotent)",
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

			if err := s.RemoveAlias(context.Background(), id); err != nil {
				return storeErr(cmd, rootOpts, err)
			}

			out := formatter(cmd, rootOpts)
			return out.Success(fmt.Sprintf("removed alias %d", id), map[string]int64{"id": id})
		},
	}

	return cmd
}

func newAliasSetCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "set <id> <alias>",
		Short:         "Rewrite an alias's text",
		Args:          cobra.ExactArgs(2),
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

			a := ledger.Alias{ID: id, Alias: args[1]}
			if err := s.UpdateAlias(context.Background(), a); err != nil {
				return storeErr(cmd, rootOpts, err)
			}

			out := formatter(cmd, rootOpts)
			return out.Success(fmt.Sprintf("updated alias %d", id), a)
		},
	}

	return cmd
}
