package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"reflect"
	"strings"
	"time"

	"fieldreports/internal/shared/columns"
	"fieldreports/pkg/contracts/domain"
)

const (
	reportsTable = "reports"

	DefaultListLimit = 50
	MaxListLimit     = 500
)

// sectionOrder is the ORDER BY clause used when reading a section back.
// Dated sections sort by date with undated rows last, then by sheet position.
var sectionOrder = map[domain.SectionKind]string{
	domain.SectionManHours:     `"date" IS NULL, "date", "position"`,
	domain.SectionMonthlyCosts: `"month" IS NULL, "month", "position"`,
}

func orderFor(kind domain.SectionKind) string {
	if order, ok := sectionOrder[kind]; ok {
		return order
	}
	return `"position"`
}

// SaveReport stores a report and its parsed sections in one transaction,
// replacing whatever was stored before under the same report id.
func (s *Store) SaveReport(ctx context.Context, report domain.Report, result *domain.ParseResult) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return persistErr(reportsTable, "begin", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if err = s.deleteReportRows(ctx, tx, report.ID); err != nil {
		return err
	}

	if report.CreatedAt.IsZero() {
		report.CreatedAt = time.Now()
	}
	report.RecordCount = result.TotalRecords()

	_, err = tx.ExecContext(ctx, s.rebind(`INSERT INTO reports
		(report_id, project_id, source_name, sheet_name, status, record_count, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`),
		report.ID, report.ProjectID, report.SourceName, report.SheetName,
		string(report.Status), report.RecordCount, formatTime(report.CreatedAt))
	if err != nil {
		return persistErr(reportsTable, "insert", err)
	}

	for _, kind := range result.Sections() {
		if err = s.insertSection(ctx, tx, report.ID, kind, result.SectionRecords(kind)); err != nil {
			return err
		}
	}

	if err = tx.Commit(); err != nil {
		return persistErr(reportsTable, "commit", err)
	}

	s.logger.InfoContext(ctx, "Report stored",
		slog.String("report_id", report.ID),
		slog.String("project_id", report.ProjectID),
		slog.Int("records", report.RecordCount))
	return nil
}

// insertSection writes every record of a section; records is a slice of a domain record type
func (s *Store) insertSection(ctx context.Context, tx *sql.Tx, reportID string, kind domain.SectionKind, records any) error {
	table := kind.String()
	rv := reflect.ValueOf(records)
	if rv.Kind() != reflect.Slice || rv.Len() == 0 {
		return nil
	}

	cols := dataColumns(rv.Type().Elem())
	names := make([]string, 0, len(cols)+2)
	names = append(names, "report_id", `"position"`)
	for _, c := range cols {
		names = append(names, quote(c.Name))
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(names)), ", ")

	stmt, err := tx.PrepareContext(ctx, s.rebind(fmt.Sprintf(
		"INSERT INTO %s (%s) VALUES (%s)", table, strings.Join(names, ", "), placeholders)))
	if err != nil {
		return persistErr(table, "prepare", err)
	}
	defer stmt.Close()

	for i := 0; i < rv.Len(); i++ {
		args := make([]any, 0, len(names))
		args = append(args, reportID, i)
		args = append(args, columns.Values(rv.Index(i).Interface(), cols)...)
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			return persistErr(table, "insert", err)
		}
	}
	return nil
}

// LoadResult reconstructs the parse result stored for a report.
// Sections without rows are left nil, as the parser would.
func (s *Store) LoadResult(ctx context.Context, reportID string) (*domain.ParseResult, error) {
	if _, err := s.GetReport(ctx, reportID); err != nil {
		return nil, err
	}

	result := &domain.ParseResult{}
	var err error

	if result.ProjectDetails, err = loadSection[domain.ProjectDetail](ctx, s, domain.SectionProjectDetails, reportID); err != nil {
		return nil, err
	}
	if result.ProjectCosts, err = loadSection[domain.ProjectCost](ctx, s, domain.SectionProjectCosts, reportID); err != nil {
		return nil, err
	}
	if result.ManHours, err = loadSection[domain.ManHour](ctx, s, domain.SectionManHours, reportID); err != nil {
		return nil, err
	}
	if result.CostItems, err = loadSection[domain.CostItem](ctx, s, domain.SectionCostItems, reportID); err != nil {
		return nil, err
	}
	if result.CostItemsSecondary, err = loadSection[domain.CostItemSecondary](ctx, s, domain.SectionCostItemsSecondary, reportID); err != nil {
		return nil, err
	}
	if result.MonthlyCosts, err = loadSection[domain.MonthlyCost](ctx, s, domain.SectionMonthlyCosts, reportID); err != nil {
		return nil, err
	}
	if result.Materials, err = loadSection[domain.Material](ctx, s, domain.SectionMaterials, reportID); err != nil {
		return nil, err
	}
	if result.PurchaseOrders, err = loadSection[domain.PurchaseOrder](ctx, s, domain.SectionPurchaseOrders, reportID); err != nil {
		return nil, err
	}

	return result, nil
}

func loadSection[T any](ctx context.Context, s *Store, kind domain.SectionKind, reportID string) ([]T, error) {
	table := kind.String()
	cols := dataColumns(reflect.TypeOf((*T)(nil)).Elem())

	names := make([]string, len(cols))
	for i, c := range cols {
		names[i] = quote(c.Name)
	}

	query := fmt.Sprintf("SELECT %s FROM %s WHERE report_id = ? ORDER BY %s",
		strings.Join(names, ", "), table, orderFor(kind))

	rows, err := s.db.QueryContext(ctx, s.rebind(query), reportID)
	if err != nil {
		return nil, persistErr(table, "select", err)
	}
	defer rows.Close()

	var records []T
	for rows.Next() {
		var rec T
		dest, err := columns.Pointers(&rec, cols)
		if err != nil {
			return nil, persistErr(table, "scan", err)
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, persistErr(table, "scan", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, persistErr(table, "select", err)
	}

	for i := range records {
		setReportID(&records[i], reportID)
	}
	return records, nil
}

// GetReport returns the stored metadata of a report
func (s *Store) GetReport(ctx context.Context, reportID string) (*domain.Report, error) {
	row := s.db.QueryRowContext(ctx, s.rebind(`SELECT
		report_id, project_id, source_name, sheet_name, status, record_count, created_at
		FROM reports WHERE report_id = ?`), reportID)

	report, err := scanReport(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("report %s: %w", reportID, ErrReportNotFound)
	}
	if err != nil {
		return nil, persistErr(reportsTable, "select", err)
	}
	return report, nil
}

// ListReports returns reports newest first, optionally restricted to one project
func (s *Store) ListReports(ctx context.Context, projectID string, limit int) ([]domain.Report, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	if limit > MaxListLimit {
		limit = MaxListLimit
	}

	query := `SELECT report_id, project_id, source_name, sheet_name, status, record_count, created_at
		FROM reports`
	args := []any{}
	if projectID != "" {
		query += ` WHERE project_id = ?`
		args = append(args, projectID)
	}
	query += ` ORDER BY created_at DESC, report_id LIMIT ?`
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, s.rebind(query), args...)
	if err != nil {
		return nil, persistErr(reportsTable, "select", err)
	}
	defer rows.Close()

	reports := []domain.Report{}
	for rows.Next() {
		report, err := scanReport(rows)
		if err != nil {
			return nil, persistErr(reportsTable, "scan", err)
		}
		reports = append(reports, *report)
	}
	if err := rows.Err(); err != nil {
		return nil, persistErr(reportsTable, "select", err)
	}
	return reports, nil
}

// DeleteReport removes a report and all of its section rows
func (s *Store) DeleteReport(ctx context.Context, reportID string) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return persistErr(reportsTable, "begin", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	var exists int
	err = tx.QueryRowContext(ctx, s.rebind(`SELECT 1 FROM reports WHERE report_id = ?`), reportID).Scan(&exists)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("report %s: %w", reportID, ErrReportNotFound)
	}
	if err != nil {
		return persistErr(reportsTable, "select", err)
	}

	if err = s.deleteReportRows(ctx, tx, reportID); err != nil {
		return err
	}

	if err = tx.Commit(); err != nil {
		return persistErr(reportsTable, "commit", err)
	}
	return nil
}

func (s *Store) deleteReportRows(ctx context.Context, tx *sql.Tx, reportID string) error {
	for _, kind := range domain.AllSections {
		table := kind.String()
		if _, err := tx.ExecContext(ctx, s.rebind("DELETE FROM "+table+" WHERE report_id = ?"), reportID); err != nil {
			return persistErr(table, "delete", err)
		}
	}
	if _, err := tx.ExecContext(ctx, s.rebind(`DELETE FROM reports WHERE report_id = ?`), reportID); err != nil {
		return persistErr(reportsTable, "delete", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanReport(row rowScanner) (*domain.Report, error) {
	var (
		report    domain.Report
		status    string
		createdAt string
	)
	if err := row.Scan(&report.ID, &report.ProjectID, &report.SourceName, &report.SheetName,
		&status, &report.RecordCount, &createdAt); err != nil {
		return nil, err
	}
	report.Status = domain.ReportStatus(status)

	t, err := time.Parse(time.RFC3339Nano, createdAt)
	if err != nil {
		return nil, fmt.Errorf("created_at %q: %w", createdAt, err)
	}
	report.CreatedAt = t
	return &report, nil
}

// dataColumns are the record columns stored per row; report_id is written separately
func dataColumns(t reflect.Type) []columns.Column {
	all := columns.Of(t)
	cols := make([]columns.Column, 0, len(all))
	for _, c := range all {
		if c.Name != "report_id" {
			cols = append(cols, c)
		}
	}
	return cols
}

func setReportID(rec any, reportID string) {
	rv := reflect.ValueOf(rec).Elem()
	if col, ok := columns.Lookup(rv.Type(), "report_id"); ok {
		_ = columns.Set(rv, col, reportID)
	}
}

// formatTime stores timestamps as fixed-width UTC text so they sort lexically
func formatTime(t time.Time) string {
	return t.UTC().Format("2006-01-02T15:04:05.000000000Z07:00")
}

func quote(name string) string {
	return `"` + name + `"`
}
