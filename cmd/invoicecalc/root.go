package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/dyehouse/backend/internal/infrastructure/logger"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var version = "dev"

type rootOptions struct {
	logLevel string
	compact  bool
	log      *zap.Logger
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:   "invoicecalc",
		Short: "Offline invoice totals and payment allocation",
		Long: `invoicecalc reads an invoice or a payment sheet as JSON, from a file or
stdin, and prints the computed result as JSON. It uses the same rules as
the server but never touches a database.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			log, err := logger.New(&logger.Config{
				Level:  opts.logLevel,
				Format: "console",
				Output: "stderr",
			})
			if err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}
			opts.log = log
			return nil
		},
	}
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "warn", "Log level (debug, info, warn, error)")
	cmd.PersistentFlags().BoolVar(&opts.compact, "compact", false, "Print JSON on one line")

	cmd.AddCommand(newPreviewCmd(opts), newAllocateCmd(opts))
	return cmd
}

// readInput decodes the file named by args[0], or stdin when it is "-" or
// missing
func readInput(cmd *cobra.Command, args []string, v any) error {
	var r io.Reader = cmd.InOrStdin()
	if len(args) > 0 && args[0] != "-" {
		f, err := os.Open(args[0])
		if err != nil {
			return err
		}
		defer f.Close()
		r = f
	}
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("invalid input: %w", err)
	}
	return nil
}

func (o *rootOptions) print(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	if !o.compact {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(v)
}
