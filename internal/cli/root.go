package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/alxandria/ledger/internal/cache"
	"github.com/alxandria/ledger/internal/contract"
	"github.com/alxandria/ledger/internal/db"
	"github.com/alxandria/ledger/internal/host"
	"github.com/alxandria/ledger/internal/rpcclient"
	"github.com/alxandria/ledger/pkg/config"
	"github.com/alxandria/ledger/pkg/logging"
)

// Ledger is the set of ledger operations the commands use. It is served by
// a local host or by a remote server.
type Ledger interface {
	Instantiate(ctx context.Context, sender string, funds contract.Coins, msg contract.InstantiateMsg) (*host.Result, error)
	Execute(ctx context.Context, sender string, funds contract.Coins, msg contract.ExecuteMsg) (*host.Result, error)
	Migrate(ctx context.Context, sender string, msg contract.MigrateMsg) (*host.Result, error)
	GetPost(ctx context.Context, id uint64) (*contract.Post, error)
	ListPosts(ctx context.Context, limit *uint32, startAfter *uint64) ([]contract.Post, error)
	Balance(ctx context.Context, addr string) (contract.Coins, error)
	HeadState(ctx context.Context) (*host.HeadState, error)
	Transaction(ctx context.Context, txID string) (*host.TxRecord, error)
}

var (
	_ Ledger = (*host.Host)(nil)
	_ Ledger = (*rpcclient.Client)(nil)
)

// HostFactory opens a ledger and returns a function releasing its resources.
type HostFactory func(ctx context.Context) (Ledger, func(), error)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Format   string // "json" | "text"
	Endpoint string // JSON-RPC endpoint; empty opens the database directly

	// OpenHost defaults to a host built from the loaded configuration.
	OpenHost HostFactory
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for ledgerctl.
func NewRootCommand() *cobra.Command {
	return NewRootCommandWith(&RootOptions{OpenHost: openConfiguredHost})
}

// NewRootCommandWith creates the root command with the given options.
func NewRootCommandWith(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ledgerctl",
		Short: "Administer the alxandria post ledger",
		Long:  "Run admin operations and inspect posts directly against the ledger database.",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.Endpoint, "endpoint", "", "ledger server JSON-RPC endpoint (default: open the database directly)")

	cmd.AddCommand(NewInstantiateCommand(opts))
	cmd.AddCommand(NewMigrateCommand(opts))
	cmd.AddCommand(NewWithdrawCommand(opts))
	cmd.AddCommand(NewPostsCommand(opts))
	cmd.AddCommand(NewBalanceCommand(opts))
	cmd.AddCommand(NewHeadCommand(opts))
	cmd.AddCommand(NewTxCommand(opts))

	return cmd
}

func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}

// openConfiguredHost loads the configuration and connects to the database
// and cache it names.
func openConfiguredHost(ctx context.Context) (Ledger, func(), error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	if err := logging.InitLogger(&cfg.Logging); err != nil {
		return nil, nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	database, err := db.New(&cfg.Database, cfg.Logging.Level)
	if err != nil {
		return nil, nil, err
	}
	if err := database.Migrate(ctx); err != nil {
		_ = database.Close()
		return nil, nil, err
	}

	redisCache, err := cache.New(&cfg.Redis)
	if err != nil {
		_ = database.Close()
		return nil, nil, err
	}

	h, err := host.NewFromConfig(database, &cfg.Ledger, redisCache, nil)
	if err != nil {
		_ = redisCache.Close()
		_ = database.Close()
		return nil, nil, err
	}

	closeFn := func() {
		_ = redisCache.Close()
		_ = database.Close()
		_ = logging.GetLogger().Sync()
	}
	return h, closeFn, nil
}

// withHost opens a ledger for the duration of fn.
func withHost(cmd *cobra.Command, opts *RootOptions, fn func(ctx context.Context, l Ledger) error) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	if opts.Endpoint != "" {
		client, err := rpcclient.New(opts.Endpoint)
		if err != nil {
			return WrapExitError(ExitCommandError, "cannot open ledger", err)
		}
		return fn(ctx, client)
	}

	l, closeFn, err := opts.OpenHost(ctx)
	if err != nil {
		return WrapExitError(ExitCommandError, "cannot open ledger", err)
	}
	defer closeFn()
	return fn(ctx, l)
}
