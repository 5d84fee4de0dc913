package services

import (
	"context"

	"github.com/stretchr/testify/mock"

	"fieldreports/pkg/contracts/domain"
)

// MockReportStore is a mock for the ReportStore interface
type MockReportStore struct {
	mock.Mock
}

func (m *MockReportStore) SaveReport(ctx context.Context, report domain.Report, result *domain.ParseResult) error {
	return m.Called(ctx, report, result).Error(0)
}

func (m *MockReportStore) LoadResult(ctx context.Context, reportID string) (*domain.ParseResult, error) {
	args := m.Called(ctx, reportID)
	result, _ := args.Get(0).(*domain.ParseResult)
	return result, args.Error(1)
}

func (m *MockReportStore) GetReport(ctx context.Context, reportID string) (*domain.Report, error) {
	args := m.Called(ctx, reportID)
	report, _ := args.Get(0).(*domain.Report)
	return report, args.Error(1)
}

func (m *MockReportStore) ListReports(ctx context.Context, projectID string, limit int) ([]domain.Report, error) {
	args := m.Called(ctx, projectID, limit)
	reports, _ := args.Get(0).([]domain.Report)
	return reports, args.Error(1)
}

func (m *MockReportStore) DeleteReport(ctx context.Context, reportID string) error {
	return m.Called(ctx, reportID).Error(0)
}

func (m *MockReportStore) Ping(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}
