package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"fieldreports/internal/exporter"
	"fieldreports/internal/services"
	"fieldreports/internal/storage"
	"fieldreports/internal/validation"
	"fieldreports/pkg/contracts/domain"
)

func newParseCmd(opts *options) *cobra.Command {
	var (
		reportID string
		csvDir   string
		pretty   bool
	)

	cmd := &cobra.Command{
		Use:   "parse FILE",
		Short: "Parse a report and print the sections as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.load()
			if err != nil {
				return err
			}
			logger := opts.logger(cmd, cfg)

			data, err := validation.NewFileValidator(logger, cfg.Parser.MaxUploadBytes).ValidateWorkbookFile(args[0])
			if err != nil {
				return err
			}

			svc := services.NewReportService(nil, cfg.Parser, nil, logger)
			outcome, err := svc.Parse(cmd.Context(), services.Upload{
				Name:     filepath.Base(args[0]),
				Data:     data,
				ReportID: reportID,
			})
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.ErrOrStderr(), "sheet %q: %d records in %d sections (fallback: %t)\n",
				outcome.SheetName, outcome.Result.TotalRecords(), len(outcome.Result.Sections()), outcome.FallbackUsed)

			if csvDir != "" {
				paths, err := exporter.NewCSVWriter(csvDir).WithLogger(logger).WriteAll(outcome.Result)
				if err != nil {
					return err
				}
				for _, p := range paths {
					fmt.Fprintln(cmd.ErrOrStderr(), "wrote", p)
				}
			}

			return writeJSON(cmd.OutOrStdout(), outcome.Result, pretty)
		},
	}

	cmd.Flags().StringVar(&reportID, "report-id", "", "Report id stamped on every record")
	cmd.Flags().StringVar(&csvDir, "csv-dir", "", "Also write one CSV file per section into this directory")
	cmd.Flags().BoolVar(&pretty, "pretty", false, "Pretty-print JSON output")
	return cmd
}

func newIngestCmd(opts *options) *cobra.Command {
	var (
		projectID string
		reportID  string
	)

	cmd := &cobra.Command{
		Use:   "ingest FILE",
		Short: "Parse a report and store it in the database",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.load()
			if err != nil {
				return err
			}
			logger := opts.logger(cmd, cfg)

			data, err := validation.NewFileValidator(logger, cfg.Parser.MaxUploadBytes).ValidateWorkbookFile(args[0])
			if err != nil {
				return err
			}

			store, err := storage.Open(cmd.Context(), cfg.Storage, logger)
			if err != nil {
				return err
			}
			defer store.Close()

			svc := services.NewReportService(store, cfg.Parser, nil, logger)
			summary, err := svc.Ingest(cmd.Context(), services.IngestRequest{
				Upload: services.Upload{
					Name:     filepath.Base(args[0]),
					Data:     data,
					ReportID: reportID,
				},
				ProjectID: projectID,
			})
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), summary, true)
		},
	}

	cmd.Flags().StringVar(&projectID, "project-id", "", "Project the report belongs to")
	cmd.Flags().StringVar(&reportID, "report-id", "", "Report id; generated when empty, replaces an existing report when reused")
	_ = cmd.MarkFlagRequired("project-id")
	return cmd
}

func newShowCmd(opts *options) *cobra.Command {
	var (
		section string
		bom     bool
		pretty  bool
	)

	cmd := &cobra.Command{
		Use:   "show REPORT_ID",
		Short: "Print a stored report, or one section of it as CSV",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var kind domain.SectionKind
			if section != "" {
				var ok bool
				if kind, ok = domain.ParseSectionKind(section); !ok {
					return fmt.Errorf("unknown section %q", section)
				}
			}

			cfg, err := opts.load()
			if err != nil {
				return err
			}
			logger := opts.logger(cmd, cfg)

			store, err := storage.Open(cmd.Context(), cfg.Storage, logger)
			if err != nil {
				return err
			}
			defer store.Close()

			report, err := store.GetReport(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			result, err := store.LoadResult(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			if section != "" {
				return exporter.WriteSection(cmd.OutOrStdout(), kind, result, bom)
			}
			return writeJSON(cmd.OutOrStdout(), map[string]any{
				"report": report,
				"result": result,
			}, pretty)
		},
	}

	cmd.Flags().StringVar(&section, "section", "", "Print only this section as CSV, e.g. man_hours")
	cmd.Flags().BoolVar(&bom, "bom", false, "Prefix CSV output with a UTF-8 byte order mark")
	cmd.Flags().BoolVar(&pretty, "pretty", false, "Pretty-print JSON output")
	return cmd
}

func newListCmd(opts *options) *cobra.Command {
	var (
		projectID string
		limit     int
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List stored reports, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if limit < 1 || limit > storage.MaxListLimit {
				return fmt.Errorf("limit must be between 1 and %d", storage.MaxListLimit)
			}

			cfg, err := opts.load()
			if err != nil {
				return err
			}
			logger := opts.logger(cmd, cfg)

			store, err := storage.Open(cmd.Context(), cfg.Storage, logger)
			if err != nil {
				return err
			}
			defer store.Close()

			reports, err := store.ListReports(cmd.Context(), projectID, limit)
			if err != nil {
				return err
			}
			for _, r := range reports {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\t%d\t%s\n",
					r.ID, r.ProjectID, r.SheetName, r.RecordCount, r.CreatedAt.Format("2006-01-02 15:04"))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&projectID, "project-id", "", "Only reports of this project")
	cmd.Flags().IntVar(&limit, "limit", storage.DefaultListLimit, "Maximum number of reports")
	return cmd
}

func newMigrateCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.load()
			if err != nil {
				return err
			}
			logger := opts.logger(cmd, cfg)

			cfg.Storage.AutoMigrate = false
			store, err := storage.Open(cmd.Context(), cfg.Storage, logger)
			if err != nil {
				return err
			}
			defer store.Close()

			if err := store.Migrate(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "migrations applied (%s)\n", store.Driver())
			return nil
		},
	}
}
