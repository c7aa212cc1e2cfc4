package cli

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/alxandria/ledger/internal/contract"
	"github.com/alxandria/ledger/internal/host"
)

// rejected maps ledger rejections to ExitFailure and everything else to
// ExitCommandError.
func rejected(action string, err error) error {
	var cerr *contract.Error
	if errors.As(err, &cerr) || errors.Is(err, host.ErrInsufficientFunds) {
		return WrapExitError(ExitFailure, action+" rejected", err)
	}
	return WrapExitError(ExitCommandError, action+" failed", err)
}

// NewInstantiateCommand creates the instantiate command.
func NewInstantiateCommand(opts *RootOptions) *cobra.Command {
	var sender, admin string

	cmd := &cobra.Command{
		Use:   "instantiate",
		Short: "Initialize the ledger and set its administrator",
		Long: `Initialize the ledger and set its administrator.

The administrator defaults to the sender.

Example:
  ledgerctl instantiate --sender juno1... --admin juno1...`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			msg := contract.InstantiateMsg{}
			if admin != "" {
				msg.Admin = &admin
			}
			return withHost(cmd, opts, func(ctx context.Context, l Ledger) error {
				res, err := l.Instantiate(ctx, sender, nil, msg)
				if err != nil {
					return rejected("instantiate", err)
				}
				return NewOutputFormatter(opts.Format, cmd.OutOrStdout()).Result(res)
			})
		},
	}

	cmd.Flags().StringVar(&sender, "sender", "", "address submitting the request")
	cmd.Flags().StringVar(&admin, "admin", "", "administrator address (defaults to sender)")
	_ = cmd.MarkFlagRequired("sender")

	return cmd
}

// NewMigrateCommand creates the migrate command.
func NewMigrateCommand(opts *RootOptions) *cobra.Command {
	var sender string

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Record the configured contract version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withHost(cmd, opts, func(ctx context.Context, l Ledger) error {
				res, err := l.Migrate(ctx, sender, contract.MigrateMsg{})
				if err != nil {
					return rejected("migrate", err)
				}
				return NewOutputFormatter(opts.Format, cmd.OutOrStdout()).Result(res)
			})
		},
	}

	cmd.Flags().StringVar(&sender, "sender", "", "administrator address")
	_ = cmd.MarkFlagRequired("sender")

	return cmd
}

// NewWithdrawCommand creates the withdraw command.
func NewWithdrawCommand(opts *RootOptions) *cobra.Command {
	var sender string

	cmd := &cobra.Command{
		Use:   "withdraw",
		Short: "Sweep the ledger balance to the payout address",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withHost(cmd, opts, func(ctx context.Context, l Ledger) error {
				res, err := l.Execute(ctx, sender, nil, contract.ExecuteMsg{Withdraw: &contract.WithdrawMsg{}})
				if err != nil {
					return rejected("withdraw", err)
				}
				return NewOutputFormatter(opts.Format, cmd.OutOrStdout()).Result(res)
			})
		},
	}

	cmd.Flags().StringVar(&sender, "sender", "", "administrator address")
	_ = cmd.MarkFlagRequired("sender")

	return cmd
}

// NewPostsCommand creates the posts command group.
func NewPostsCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "posts",
		Short: "Inspect ledger posts",
	}
	cmd.AddCommand(newPostsListCommand(opts))
	cmd.AddCommand(newPostsGetCommand(opts))
	return cmd
}

func newPostsListCommand(opts *RootOptions) *cobra.Command {
	var (
		limit      uint32
		startAfter uint64
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List posts in ascending id order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var limitPtr *uint32
			if cmd.Flags().Changed("limit") {
				limitPtr = &limit
			}
			var afterPtr *uint64
			if cmd.Flags().Changed("start-after") {
				afterPtr = &startAfter
			}
			return withHost(cmd, opts, func(ctx context.Context, l Ledger) error {
				posts, err := l.ListPosts(ctx, limitPtr, afterPtr)
				if err != nil {
					return rejected("list posts", err)
				}
				return NewOutputFormatter(opts.Format, cmd.OutOrStdout()).Posts(posts)
			})
		},
	}

	cmd.Flags().Uint32Var(&limit, "limit", contract.DefaultLimit, fmt.Sprintf("page size (max %d)", contract.MaxLimit))
	cmd.Flags().Uint64Var(&startAfter, "start-after", 0, "list posts after this id")

	return cmd
}

func newPostsGetCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "get <post-id>",
		Short: "Show a single post",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseUint(args[0], 10, 64)
			if err != nil {
				return WrapExitError(ExitCommandError, "invalid post id", err)
			}
			return withHost(cmd, opts, func(ctx context.Context, l Ledger) error {
				post, err := l.GetPost(ctx, id)
				if err != nil {
					return rejected("get post", err)
				}
				return NewOutputFormatter(opts.Format, cmd.OutOrStdout()).Post(id, post)
			})
		},
	}
}

// NewBalanceCommand creates the balance command.
func NewBalanceCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "balance <address>",
		Short: "Show the native balances of an address",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withHost(cmd, opts, func(ctx context.Context, l Ledger) error {
				coins, err := l.Balance(ctx, args[0])
				if err != nil {
					return rejected("balance", err)
				}
				return NewOutputFormatter(opts.Format, cmd.OutOrStdout()).Balance(args[0], coins)
			})
		},
	}
}

// NewHeadCommand creates the head command.
func NewHeadCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "head",
		Short: "Show the ledger head state",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withHost(cmd, opts, func(ctx context.Context, l Ledger) error {
				head, err := l.HeadState(ctx)
				if err != nil {
					return rejected("head", err)
				}
				return NewOutputFormatter(opts.Format, cmd.OutOrStdout()).Head(head)
			})
		},
	}
}

// NewTxCommand creates the tx command.
func NewTxCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "tx <tx-id>",
		Short: "Show a committed transaction and its transfers",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withHost(cmd, opts, func(ctx context.Context, l Ledger) error {
				rec, err := l.Transaction(ctx, args[0])
				if errors.Is(err, host.ErrTxNotFound) {
					return WrapExitError(ExitFailure, "transaction not found", err)
				}
				if err != nil {
					return rejected("tx", err)
				}
				return NewOutputFormatter(opts.Format, cmd.OutOrStdout()).Tx(rec)
			})
		},
	}
}
