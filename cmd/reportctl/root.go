package main

import (
	"encoding/json"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"fieldreports/internal/config"
	apperrors "fieldreports/internal/errors"
	"fieldreports/internal/infrastructure"
)

// options are the persistent flags shared by every subcommand
type options struct {
	configFile string
	verbose    bool
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:   "reportctl",
		Short: "Parse and store weekly accomplishment reports",
		Long: `reportctl extracts the eight data sections of an accomplishment report
workbook (.xlsx or .xls) and prints them as JSON, exports them as CSV, or stores them
in the configured database.`,
		SilenceUsage: true,
	}

	root.PersistentFlags().StringVar(&opts.configFile, "config", "", "YAML config file (default: config.yaml or configs/config.yaml if present)")
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "Log at debug level")

	root.AddCommand(
		newParseCmd(opts),
		newParseDirCmd(opts),
		newIngestCmd(opts),
		newShowCmd(opts),
		newListCmd(opts),
		newMigrateCmd(opts),
	)
	return root
}

func (o *options) load() (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if o.configFile != "" {
		cfg, err = config.LoadFrom(o.configFile)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, apperrors.NewConfigError("failed to load configuration", err).
			WithContext("file", o.configFile)
	}
	return cfg, nil
}

// logger writes to stderr so stdout stays machine readable; quiet below warn unless verbose
func (o *options) logger(cmd *cobra.Command, cfg *config.Config) *slog.Logger {
	lc := cfg.Logging
	lc.Format = "text"
	if o.verbose {
		lc.Level = "debug"
	} else if lc.Level == "" || lc.Level == "info" || lc.Level == "debug" {
		lc.Level = "warn"
	}
	return infrastructure.NewLoggerTo(cmd.ErrOrStderr(), lc)
}

func writeJSON(w io.Writer, v any, pretty bool) error {
	enc := json.NewEncoder(w)
	if pretty {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(v)
}
