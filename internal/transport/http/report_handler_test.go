package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"fieldreports/internal/dataprocessing"
	apierrors "fieldreports/internal/errors"
	"fieldreports/internal/services"
	"fieldreports/internal/shared/testutil"
	"fieldreports/internal/storage"
	"fieldreports/pkg/contracts/domain"
)

// MockReportService is a mock implementation of ReportServiceInterface
type MockReportService struct {
	mock.Mock
}

func (m *MockReportService) Parse(ctx context.Context, up services.Upload) (*services.ParseOutcome, error) {
	args := m.Called(up)
	outcome, _ := args.Get(0).(*services.ParseOutcome)
	return outcome, args.Error(1)
}

func (m *MockReportService) ParseBatch(ctx context.Context, uploads []services.Upload) []services.BatchItem {
	args := m.Called(uploads)
	items, _ := args.Get(0).([]services.BatchItem)
	return items
}

func (m *MockReportService) Ingest(ctx context.Context, req services.IngestRequest) (*domain.ReportSummary, error) {
	args := m.Called(req)
	summary, _ := args.Get(0).(*domain.ReportSummary)
	return summary, args.Error(1)
}

func (m *MockReportService) GetResult(ctx context.Context, reportID string) (*domain.ParseResult, error) {
	args := m.Called(reportID)
	result, _ := args.Get(0).(*domain.ParseResult)
	return result, args.Error(1)
}

func (m *MockReportService) GetReport(ctx context.Context, reportID string) (*domain.Report, error) {
	args := m.Called(reportID)
	report, _ := args.Get(0).(*domain.Report)
	return report, args.Error(1)
}

func (m *MockReportService) ListReports(ctx context.Context, projectID string, limit int) ([]domain.Report, error) {
	args := m.Called(projectID, limit)
	reports, _ := args.Get(0).([]domain.Report)
	return reports, args.Error(1)
}

func (m *MockReportService) DeleteReport(ctx context.Context, reportID string) error {
	return m.Called(reportID).Error(0)
}

func strPtr(s string) *string { return &s }

func setupRouter(t *testing.T, svc *MockReportService, maxUpload int64) chi.Router {
	logger, _ := testutil.NewTestLogger(t)
	errorHandler := apierrors.NewErrorHandler(logger, false)
	h := NewReportHandler(svc, maxUpload, logger, errorHandler)

	r := chi.NewRouter()
	r.Mount("/api/reports", h.Routes())
	return r
}

// multipartBody builds a form with the given text fields and files, keyed by field name
func multipartBody(t *testing.T, fields map[string]string, files map[string][]filepart) (*bytes.Buffer, string) {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	for field, parts := range files {
		for _, p := range parts {
			fw, err := mw.CreateFormFile(field, p.name)
			require.NoError(t, err)
			_, err = fw.Write(p.data)
			require.NoError(t, err)
		}
	}
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

type filepart struct {
	name string
	data []byte
}

func decodeBody(t *testing.T, body io.Reader) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.NewDecoder(body).Decode(&out))
	return out
}

func TestReportHandler_Parse(t *testing.T) {
	svc := new(MockReportService)
	router := setupRouter(t, svc, 1<<20)

	result := &domain.ParseResult{
		ProjectDetails: []domain.ProjectDetail{{ReportID: "rpt-1", ProjectID: strPtr("2134.00")}},
	}
	svc.On("Parse", mock.MatchedBy(func(up services.Upload) bool {
		return up.Name == "week.xlsx" && string(up.Data) == "xlsx-bytes" && up.ReportID == "rpt-1"
	})).Return(&services.ParseOutcome{SheetName: "Data Sheet", Result: result, FallbackUsed: true}, nil)

	body, ct := multipartBody(t, map[string]string{"report_id": "rpt-1"},
		map[string][]filepart{"file": {{"week.xlsx", []byte("xlsx-bytes")}}})
	req := httptest.NewRequest(http.MethodPost, "/api/reports/parse", body)
	req.Header.Set("Content-Type", ct)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "Data Sheet", rec.Header().Get("X-Report-Sheet"))
	assert.Equal(t, "true", rec.Header().Get("X-Fallback-Used"))

	out := decodeBody(t, rec.Body)
	assert.Contains(t, out, "project_details")
	assert.NotContains(t, out, "man_hours")
	svc.AssertExpectations(t)
}

func TestReportHandler_ParseErrors(t *testing.T) {
	tests := []struct {
		name       string
		setup      func(*MockReportService)
		fields     map[string]string
		files      map[string][]filepart
		wantStatus int
		wantType   string
	}{
		{
			name:       "missing file",
			fields:     map[string]string{"report_id": "rpt-1"},
			wantStatus: http.StatusBadRequest,
			wantType:   apierrors.TypeValidation,
		},
		{
			name:       "invalid report id",
			fields:     map[string]string{"report_id": "../../etc"},
			files:      map[string][]filepart{"file": {{"a.xlsx", []byte("x")}}},
			wantStatus: http.StatusBadRequest,
			wantType:   apierrors.TypeValidation,
		},
		{
			name: "sheet not found",
			setup: func(m *MockReportService) {
				m.On("Parse", mock.Anything).Return(nil, &dataprocessing.SheetNotFoundError{Sheets: []string{"Cover"}})
			},
			files:      map[string][]filepart{"file": {{"a.xlsx", []byte("x")}}},
			wantStatus: http.StatusUnprocessableEntity,
			wantType:   apierrors.TypeSheetNotFound,
		},
		{
			name: "parse timeout",
			setup: func(m *MockReportService) {
				m.On("Parse", mock.Anything).Return(nil, fmt.Errorf("%w: %w", services.ErrParseTimeout, context.DeadlineExceeded))
			},
			files:      map[string][]filepart{"file": {{"a.xlsx", []byte("x")}}},
			wantStatus: http.StatusGatewayTimeout,
			wantType:   apierrors.TypeTimeout,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockReportService)
			if tt.setup != nil {
				tt.setup(svc)
			}
			router := setupRouter(t, svc, 1<<20)

			body, ct := multipartBody(t, tt.fields, tt.files)
			req := httptest.NewRequest(http.MethodPost, "/api/reports/parse", body)
			req.Header.Set("Content-Type", ct)
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			out := decodeBody(t, rec.Body)
			assert.Equal(t, tt.wantType, out["type"])
		})
	}
}

func TestReportHandler_ParseRejectsJSON(t *testing.T) {
	router := setupRouter(t, new(MockReportService), 1<<20)

	req := httptest.NewRequest(http.MethodPost, "/api/reports/parse", bytes.NewBufferString("{}"))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnsupportedMediaType, rec.Code)
}

func TestReportHandler_ParseTooLarge(t *testing.T) {
	router := setupRouter(t, new(MockReportService), 16)

	big := bytes.Repeat([]byte("x"), 2<<20)
	body, ct := multipartBody(t, nil, map[string][]filepart{"file": {{"big.xlsx", big}}})
	req := httptest.NewRequest(http.MethodPost, "/api/reports/parse", body)
	req.Header.Set("Content-Type", ct)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}

func TestReportHandler_ParseBatch(t *testing.T) {
	svc := new(MockReportService)
	router := setupRouter(t, svc, 1<<20)

	svc.On("ParseBatch", mock.MatchedBy(func(ups []services.Upload) bool {
		return len(ups) == 2 && ups[0].Name == "a.xlsx" && ups[1].Name == "b.xlsx"
	})).Return([]services.BatchItem{
		{Name: "a.xlsx", Outcome: &services.ParseOutcome{
			SheetName: "Data Sheet",
			Result:    &domain.ParseResult{Materials: []domain.Material{{}, {}}},
		}},
		{Name: "b.xlsx", Err: &dataprocessing.SheetNotFoundError{Sheets: []string{"Cover"}}},
	})

	body, ct := multipartBody(t, nil, map[string][]filepart{"files": {
		{"a.xlsx", []byte("a")},
		{"b.xlsx", []byte("b")},
	}})
	req := httptest.NewRequest(http.MethodPost, "/api/reports/parse/batch", body)
	req.Header.Set("Content-Type", ct)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var out struct {
		Items []BatchItemResponse `json:"items"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&out))
	require.Len(t, out.Items, 2)
	assert.Equal(t, 2, out.Items[0].RecordCount)
	assert.Equal(t, map[string]int{"materials": 2}, out.Items[0].Sections)
	assert.Empty(t, out.Items[0].Error)
	assert.Contains(t, out.Items[1].Error, "data sheet not found")
}

func TestReportHandler_Ingest(t *testing.T) {
	svc := new(MockReportService)
	router := setupRouter(t, svc, 1<<20)

	svc.On("Ingest", mock.MatchedBy(func(req services.IngestRequest) bool {
		return req.ProjectID == "2134.00" && req.ReportID == "" && req.Name == "week.xlsx"
	})).Return(&domain.ReportSummary{
		ReportID:    "generated",
		ProjectID:   "2134.00",
		SheetName:   "Data Sheet",
		Sections:    map[string]int{"man_hours": 2},
		RecordCount: 2,
	}, nil)

	body, ct := multipartBody(t, map[string]string{"project_id": "2134.00"},
		map[string][]filepart{"file": {{"week.xlsx", []byte("x")}}})
	req := httptest.NewRequest(http.MethodPost, "/api/reports", body)
	req.Header.Set("Content-Type", ct)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, "/api/reports/generated", rec.Header().Get("Location"))

	out := decodeBody(t, rec.Body)
	assert.Equal(t, "generated", out["report_id"])
	assert.Equal(t, "Data Sheet", out["sheet"])
	assert.Equal(t, map[string]interface{}{"man_hours": float64(2)}, out["sections"])
	assert.Equal(t, false, out["fallback_used"])
}

func TestReportHandler_IngestRequiresProject(t *testing.T) {
	svc := new(MockReportService)
	router := setupRouter(t, svc, 1<<20)

	body, ct := multipartBody(t, nil, map[string][]filepart{"file": {{"week.xlsx", []byte("x")}}})
	req := httptest.NewRequest(http.MethodPost, "/api/reports", body)
	req.Header.Set("Content-Type", ct)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	out := decodeBody(t, rec.Body)
	assert.Equal(t, "VALIDATION_FAILED", out["error_code"])
	svc.AssertNotCalled(t, "Ingest", mock.Anything)
}

func TestReportHandler_IngestPersistenceError(t *testing.T) {
	svc := new(MockReportService)
	router := setupRouter(t, svc, 1<<20)

	svc.On("Ingest", mock.Anything).Return(nil, &storage.PersistenceError{Table: "man_hours", Op: "insert", Err: errors.New("locked")})

	body, ct := multipartBody(t, map[string]string{"project_id": "2134.00"},
		map[string][]filepart{"file": {{"week.xlsx", []byte("x")}}})
	req := httptest.NewRequest(http.MethodPost, "/api/reports", body)
	req.Header.Set("Content-Type", ct)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	out := decodeBody(t, rec.Body)
	assert.Equal(t, "man_hours", out["table"])
}

func TestReportHandler_List(t *testing.T) {
	svc := new(MockReportService)
	router := setupRouter(t, svc, 1<<20)

	svc.On("ListReports", "2134.00", 10).Return([]domain.Report{{ID: "rpt-1", ProjectID: "2134.00"}}, nil)
	svc.On("ListReports", "", storage.DefaultListLimit).Return(nil, nil)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/reports?project_id=2134.00&limit=10", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	out := decodeBody(t, rec.Body)
	assert.Equal(t, float64(1), out["count"])

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/reports", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	out = decodeBody(t, rec.Body)
	assert.Equal(t, []interface{}{}, out["reports"])

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/reports?limit=0", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestReportHandler_GetAndResult(t *testing.T) {
	svc := new(MockReportService)
	router := setupRouter(t, svc, 1<<20)

	missing := fmt.Errorf("report rpt-9: %w", storage.ErrReportNotFound)
	svc.On("GetReport", "rpt-1").Return(&domain.Report{ID: "rpt-1", ProjectID: "2134.00", SheetName: "Data Sheet"}, nil)
	svc.On("GetReport", "rpt-9").Return(nil, missing)
	svc.On("GetResult", "rpt-1").Return(&domain.ParseResult{ManHours: []domain.ManHour{{ReportID: "rpt-1"}}}, nil)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/reports/rpt-1", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Data Sheet", decodeBody(t, rec.Body)["sheet_name"])

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/reports/rpt-9", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, apierrors.TypeReportNotFound, decodeBody(t, rec.Body)["type"])

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/reports/rpt-1/result", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, decodeBody(t, rec.Body), "man_hours")

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/reports/bad%20id", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestReportHandler_ExportSection(t *testing.T) {
	svc := new(MockReportService)
	router := setupRouter(t, svc, 1<<20)

	svc.On("GetResult", "rpt-1").Return(&domain.ParseResult{
		Materials: []domain.Material{{ReportID: "rpt-1", Material: strPtr("Cement")}},
	}, nil)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/reports/rpt-1/export/materials.csv?bom=false", nil))

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "text/csv; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), `filename="rpt-1_materials.csv"`)
	assert.Equal(t, "report_id,project_id,material,type,unit,sumqty,unit_cost,total_cost\nrpt-1,,Cement,,,,,\n", rec.Body.String())

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/reports/rpt-1/export/materials.csv", nil))
	assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte{0xEF, 0xBB, 0xBF}))

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/reports/rpt-1/export/leaderboard.csv", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, apierrors.TypeUnknownSection, decodeBody(t, rec.Body)["type"])
}

func TestReportHandler_Delete(t *testing.T) {
	svc := new(MockReportService)
	router := setupRouter(t, svc, 1<<20)

	svc.On("DeleteReport", "rpt-1").Return(nil)
	svc.On("DeleteReport", "rpt-9").Return(fmt.Errorf("report rpt-9: %w", storage.ErrReportNotFound))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/api/reports/rpt-1", nil))
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/api/reports/rpt-9", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
