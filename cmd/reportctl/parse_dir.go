package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	apperrors "fieldreports/internal/errors"
	"fieldreports/internal/exporter"
	"fieldreports/internal/files"
	"fieldreports/internal/services"
	"fieldreports/internal/validation"
)

func newParseDirCmd(opts *options) *cobra.Command {
	var (
		csvDir  string
		since   time.Duration
		latest  bool
		combine bool
	)

	cmd := &cobra.Command{
		Use:   "parse-dir DIR",
		Short: "Parse every workbook in a directory concurrently",
		Long: `parse-dir parses each .xlsx, .xlsm and .xls file in DIR and prints one line per
file: name, data sheet, record count, or the error. Failed files do not stop the batch.
Records are tagged with the workbook's base name as report id. With --combine, section
CSVs from every workbook accumulate into one <section>.csv in --csv-dir.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.load()
			if err != nil {
				return err
			}
			logger := opts.logger(cmd, cfg)

			if combine && csvDir == "" {
				return fmt.Errorf("--combine requires --csv-dir")
			}

			fv := validation.NewFileValidator(logger, cfg.Parser.MaxUploadBytes)
			if err := fv.ValidateInputDirectory(args[0]); err != nil {
				return err
			}

			found, err := files.NewDiscovery("").FindWorkbooks(args[0])
			if err != nil {
				return err
			}
			if since > 0 {
				found = files.ModifiedSince(found, time.Now().Add(-since))
			}
			if latest {
				if wb, ok := files.Latest(found); ok {
					found = []files.Workbook{wb}
				}
			}
			if len(found) == 0 {
				return apperrors.NewNotFoundError(fmt.Sprintf("workbooks in %s", args[0]))
			}

			uploads := make([]services.Upload, 0, len(found))
			for _, wb := range found {
				data, err := os.ReadFile(wb.Path)
				if err != nil {
					return fmt.Errorf("failed to read %s: %w", wb.Path, err)
				}
				reportID := strings.TrimSuffix(wb.Name, filepath.Ext(wb.Name))
				uploads = append(uploads, services.Upload{Name: wb.Name, Data: data, ReportID: reportID})
			}

			svc := services.NewReportService(nil, cfg.Parser, nil, logger)
			items := svc.ParseBatch(cmd.Context(), uploads)

			failed := 0
			for _, item := range items {
				if item.Err != nil {
					failed++
					fmt.Fprintf(cmd.OutOrStdout(), "%s\terror\t%v\n", item.Name, item.Err)
					continue
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%d\n",
					item.Name, item.Outcome.SheetName, item.Outcome.Result.TotalRecords())

				switch {
				case combine:
					if _, err := exporter.NewCSVWriter(csvDir).WithLogger(logger).AppendAll(item.Outcome.Result); err != nil {
						return err
					}
				case csvDir != "":
					dir := filepath.Join(csvDir, item.Outcome.ReportID)
					if _, err := exporter.NewCSVWriter(dir).WithLogger(logger).WriteAll(item.Outcome.Result); err != nil {
						return err
					}
				}
			}

			if failed > 0 {
				return fmt.Errorf("%d of %d workbooks failed", failed, len(items))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&csvDir, "csv-dir", "", "Write section CSVs into one subdirectory per workbook")
	cmd.Flags().DurationVar(&since, "since", 0, "Only workbooks modified within this window, e.g. 168h")
	cmd.Flags().BoolVar(&latest, "latest", false, "Only the most recently modified workbook")
	cmd.Flags().BoolVar(&combine, "combine", false, "Append every workbook's sections into shared CSVs in --csv-dir")
	return cmd
}
