// Package cli implements the datamapper command-line interface: read-only
// user lookups through the mapper layer plus profile management.
package cli

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	internaldb "datamapper/internal/db"
	"datamapper/internal/domain"
	"datamapper/internal/repository"
)

var (
	version = "dev"
	commit  = "none"
)

// Execute runs the CLI.
func Execute() int {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		output, _ := rootCmd.PersistentFlags().GetString("output")
		if output == "json" {
			_ = printJSON(os.Stdout, errorObject(err))
		} else {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		return 1
	}
	return 0
}

func errorObject(err error) map[string]any {
	errObj := map[string]any{"error": err.Error()}
	var notFound *domain.NotFoundError
	var validation *domain.ValidationError
	var storage *domain.StorageError
	var mapping *domain.MappingError
	switch {
	case errors.As(err, &notFound):
		errObj["kind"] = "not_found"
	case errors.As(err, &validation):
		errObj["kind"] = "validation"
	case errors.As(err, &storage):
		errObj["kind"] = "storage"
		errObj["code"] = storage.Code
	case errors.As(err, &mapping):
		errObj["kind"] = "mapping"
		errObj["column"] = mapping.Column
	}
	return errObj
}

// rootOptions holds the persistent settings after flag > env > profile
// resolution.
type rootOptions struct {
	driver  string
	dsn     string
	output  string
	profile string
	verbose bool
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:           "datamapper",
		Short:         "Data mapper CLI",
		Long:          "Command-line interface for looking up users through the identity-mapped data mapper.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			// Config file is optional
			cfg, err := LoadUserConfig()
			if err != nil {
				cfg = &UserConfig{
					CurrentProfile: "default",
					Profiles:       map[string]Profile{},
				}
			}

			p, err := cfg.ActiveProfile(opts.profile)
			if err != nil {
				return err
			}

			// Apply precedence: flag > env > profile > default
			if !cmd.Flags().Changed("driver") {
				if v := os.Getenv("DB_DRIVER"); v != "" {
					opts.driver = v
				} else if p.Driver != "" {
					opts.driver = p.Driver
				}
			}
			if !cmd.Flags().Changed("dsn") {
				if v := os.Getenv("DB_DSN"); v != "" {
					opts.dsn = v
				} else if p.DSN != "" {
					opts.dsn = p.DSN
				}
			}
			if !cmd.Flags().Changed("output") {
				if v := os.Getenv("DATAMAPPER_OUTPUT"); v != "" {
					opts.output = v
				} else if p.Output != "" {
					opts.output = p.Output
				}
				// Keep the flag value in sync so getOutputFormat sees the resolved format.
				_ = cmd.Root().PersistentFlags().Set("output", opts.output)
			}

			return validateOutputFormat(opts.output)
		},
	}

	rootCmd.PersistentFlags().StringVar(&opts.driver, "driver", internaldb.DriverSQLite, "Database driver (sqlite3, pgx)")
	rootCmd.PersistentFlags().StringVar(&opts.dsn, "dsn", "datamapper.sqlite", "SQLite file path or Postgres connection string")
	rootCmd.PersistentFlags().StringVarP(&opts.output, "output", "o", "table", "Output format (table, json)")
	rootCmd.PersistentFlags().StringVarP(&opts.profile, "profile", "p", "", "Config profile to use")
	rootCmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "Log executed SQL and identity map activity to stderr")

	rootCmd.AddCommand(newUsersCmd(opts))
	rootCmd.AddCommand(newMigrateCmd(opts))
	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newCompletionCmd())

	return rootCmd
}

func (o *rootOptions) logger() *slog.Logger {
	if !o.verbose {
		return slog.New(slog.DiscardHandler)
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

func (o *rootOptions) openPools() (*internaldb.Pools, error) {
	pools, err := internaldb.Open(o.driver, o.dsn, 1)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	return pools, nil
}

// openUsers opens the configured database and returns a mapper over it.
// One CLI invocation is one identity scope.
func (o *rootOptions) openUsers() (*repository.UserMapper, func(), error) {
	pools, err := o.openPools()
	if err != nil {
		return nil, nil, err
	}
	m := repository.NewUserMapper(pools.Connection(), o.logger())
	return m, func() { _ = pools.Close() }, nil
}

func newMigrateCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply the embedded schema migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			pools, err := opts.openPools()
			if err != nil {
				return err
			}
			defer pools.Close() //nolint:errcheck

			if err := internaldb.RunMigrations(pools.Write, pools.Driver); err != nil {
				return fmt.Errorf("migrate: %w", err)
			}
			if getOutputFormat(cmd) == "json" {
				return printJSON(cmd.OutOrStdout(), map[string]string{"status": "ok"})
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Migrations applied.")
			return nil
		},
	}
}

func newCompletionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletion(cmd.OutOrStdout())
			case "zsh":
				return cmd.Root().GenZshCompletion(cmd.OutOrStdout())
			case "fish":
				return cmd.Root().GenFishCompletion(cmd.OutOrStdout(), true)
			case "powershell":
				return cmd.Root().GenPowerShellCompletionWithDesc(cmd.OutOrStdout())
			default:
				return fmt.Errorf("unsupported shell: %s", args[0])
			}
		},
	}
	return cmd
}
