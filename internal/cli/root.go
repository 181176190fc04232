package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/mamadbah2/decentfoods/internal/app"
	"github.com/mamadbah2/decentfoods/internal/config"
	"github.com/mamadbah2/decentfoods/pkg/logger"
)

var version = "1.0.0"

// Opener builds the application for a command run.
type Opener func(ctx context.Context, envFile, logLevel string) (*app.App, error)

type runtime struct {
	open     Opener
	envFile  string
	logLevel string
	asJSON   bool
	app      *app.App
}

// NewRootCommand assembles the decentfoods command tree. A nil opener loads
// configuration from the environment.
func NewRootCommand(open Opener) *cobra.Command {
	if open == nil {
		open = openFromEnv
	}
	rt := &runtime{open: open}

	root := &cobra.Command{
		Use:   "decentfoods",
		Short: "Decent Foods bookkeeping: period summaries and supplier settlement",
		Long: `decentfoods reads the purchase, sale and payment records of the business
and prints period summaries, supplier statements and settles supplier payments.

Configuration is read from the environment or a .env file (see --env-file).`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			a, err := rt.open(cmd.Context(), rt.envFile, rt.logLevel)
			if err != nil {
				return err
			}
			rt.app = a
			return nil
		},
		PersistentPostRunE: func(cmd *cobra.Command, _ []string) error {
			if rt.app == nil {
				return nil
			}
			return rt.app.Close(cmd.Context())
		},
	}

	root.PersistentFlags().StringVar(&rt.envFile, "env-file", "", "Path to a .env file (default: ./.env when present)")
	root.PersistentFlags().StringVar(&rt.logLevel, "log-level", "", "Override LOG_LEVEL (debug, info, warn, error)")
	root.PersistentFlags().BoolVar(&rt.asJSON, "json", false, "Print JSON instead of text")

	root.AddCommand(
		newSummaryCommand(rt),
		newMonthlyCommand(rt),
		newPayCommand(rt),
		newStatementCommand(rt),
		newSuppliersCommand(rt),
		newExportCommand(rt),
	)
	return root
}

// Execute runs the command line tool and returns the process exit code.
func Execute() int {
	cmd := NewRootCommand(nil)
	if err := cmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

func openFromEnv(ctx context.Context, envFile, logLevel string) (*app.App, error) {
	cfg, err := config.Load(envFile)
	if err != nil {
		return nil, err
	}
	if logLevel != "" {
		cfg.Log.Level = logLevel
	}
	base, err := logger.NewConsole(cfg.Log.Level)
	if err != nil {
		return nil, err
	}
	base.Debug("configuration loaded", zap.String("store", cfg.Store.Driver))
	return app.New(ctx, cfg, base)
}

// print writes v as indented JSON when --json is set, otherwise the text.
func (rt *runtime) print(w io.Writer, text string, v any) error {
	if !rt.asJSON {
		_, err := io.WriteString(w, text)
		return err
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
