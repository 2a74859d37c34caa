// Package cli implements intakectl, an offline client for the intake ledger.
package cli

import (
	"context"
	"fmt"
	"slices"

	"github.com/spf13/cobra"

	"github.com/kirillkom/legal-intake/internal/bootstrap"
	"github.com/kirillkom/legal-intake/internal/config"
	"github.com/kirillkom/legal-intake/internal/observability/logging"
)

// RootOptions holds global flags for all commands. Empty paths fall back to
// the same environment variables the api reads.
type RootOptions struct {
	Ledger    string
	Storage   string
	Templates string
	Format    string
	Verbose   bool
}

var ValidFormats = []string{"text", "json"}

func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "intakectl",
		Short: "Inspect and feed the legal intake ledger",
		Long: `intakectl runs the intake pipeline against a local ledger file without
the HTTP api: analyze a submission, list recorded sessions, browse the
template catalog and the stored uploads.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !slices.Contains(ValidFormats, opts.Format) {
				return NewExitError(ExitCommandError, fmt.Sprintf("invalid format %q: must be one of %v", opts.Format, ValidFormats))
			}
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&opts.Ledger, "ledger", "", "ledger JSON file (default $LEDGER_PATH)")
	cmd.PersistentFlags().StringVar(&opts.Storage, "storage", "", "upload directory (default $STORAGE_PATH)")
	cmd.PersistentFlags().StringVar(&opts.Templates, "templates", "", "YAML template catalog (default built-in)")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "log pipeline diagnostics to stderr")

	cmd.AddCommand(NewAnalyzeCommand(opts))
	cmd.AddCommand(NewSessionsCommand(opts))
	cmd.AddCommand(NewTemplatesCommand(opts))
	cmd.AddCommand(NewFilesCommand(opts))

	return cmd
}

func (o *RootOptions) config() config.Config {
	cfg := config.Load()
	if o.Ledger != "" {
		cfg.LedgerBackend = config.LedgerBackendFile
		cfg.LedgerPath = o.Ledger
	}
	if o.Storage != "" {
		cfg.StoragePath = o.Storage
	}
	if o.Templates != "" {
		cfg.TemplatesPath = o.Templates
	}
	cfg.TemplatesWatch = false
	cfg.NATSURL = ""
	return cfg
}

func (o *RootOptions) openApp(ctx context.Context, cmd *cobra.Command) (*bootstrap.App, error) {
	level := "warn"
	if o.Verbose {
		level = "debug"
	}
	logger := logging.NewJSONLoggerTo(cmd.ErrOrStderr(), "intakectl", level)

	app, err := bootstrap.New(ctx, o.config(), logger)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to open ledger", err)
	}
	return app, nil
}

func (o *RootOptions) formatter(cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{Format: o.Format, Writer: cmd.OutOrStdout()}
}
