package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/gyeh/denialstats/internal/analyze"
	"github.com/gyeh/denialstats/internal/model"
	"github.com/gyeh/denialstats/internal/report"
)

// fakeService stands in for the pipeline so handlers are tested without
// a database.
type fakeService struct {
	summary    *model.AnalysisSummary
	rows       []model.SummaryRow
	analyzeErr error
	got        []analyze.Input
}

func (f *fakeService) Analyze(ctx context.Context, inputs []analyze.Input) (*model.AnalysisSummary, error) {
	f.got = inputs
	if f.analyzeErr != nil {
		return nil, f.analyzeErr
	}
	return f.summary, nil
}

func (f *fakeService) Session(ctx context.Context) (*model.AnalysisSummary, error) {
	if f.summary == nil {
		return nil, ErrNoSession
	}
	return f.summary, nil
}

func (f *fakeService) Summary(ctx context.Context) ([]model.SummaryRow, error) {
	if f.summary == nil {
		return nil, ErrNoSession
	}
	return f.rows, nil
}

func newTestEcho(svc Service) *echo.Echo {
	e := echo.New()
	NewHandler(svc, 10).RegisterRoutes(e)
	return e
}

func activeFake(groups int) *fakeService {
	rows := make([]model.SummaryRow, groups)
	for i := range rows {
		rows[i] = model.SummaryRow{
			NormalizedCode:   "CO" + string(rune('A'+i)),
			FinalDescription: "Reason",
			DistinctClaims:   int64(groups - i),
		}
	}
	return &fakeService{
		summary: &model.AnalysisSummary{
			SessionID: "6f1fd02a-0c3f-4a52-9d2c-1f4f2f1d9a10",
			RowsRead:  100,
			Groups:    int64(groups),
		},
		rows: rows,
	}
}

func multipartUpload(t *testing.T, fields map[string][]byte) (*bytes.Buffer, string) {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for field, data := range fields {
		fw, err := mw.CreateFormFile(field, field+".xlsx")
		if err != nil {
			t.Fatal(err)
		}
		if _, err := fw.Write(data); err != nil {
			t.Fatal(err)
		}
	}
	if err := mw.Close(); err != nil {
		t.Fatal(err)
	}
	return &body, mw.FormDataContentType()
}

func TestHealth(t *testing.T) {
	e := newTestEcho(&fakeService{})
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "ok") {
		t.Errorf("body: %s", rec.Body.String())
	}
}

func TestIndex(t *testing.T) {
	e := newTestEcho(&fakeService{})
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "<html") {
		t.Error("index should serve the embedded dashboard page")
	}
}

func TestAnalyze(t *testing.T) {
	svc := activeFake(3)
	e := newTestEcho(svc)

	body, ctype := multipartUpload(t, map[string][]byte{
		"file1": []byte("workbook-a"),
		"file2": []byte("workbook-b"),
	})
	req := httptest.NewRequest(http.MethodPost, "/api/analyze", body)
	req.Header.Set(echo.HeaderContentType, ctype)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d, body %s", rec.Code, rec.Body.String())
	}
	if len(svc.got) != 2 {
		t.Fatalf("service received %d inputs", len(svc.got))
	}
	if svc.got[0].Name != "file1.xlsx" || string(svc.got[1].Data) != "workbook-b" {
		t.Errorf("inputs not forwarded: %+v", svc.got)
	}

	var got model.AnalysisSummary
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatal(err)
	}
	if got.SessionID != svc.summary.SessionID {
		t.Errorf("session id: got %q", got.SessionID)
	}
}

func TestAnalyze_MissingUpload(t *testing.T) {
	e := newTestEcho(&fakeService{})

	body, ctype := multipartUpload(t, map[string][]byte{"file1": []byte("only one")})
	req := httptest.NewRequest(http.MethodPost, "/api/analyze", body)
	req.Header.Set(echo.HeaderContentType, ctype)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status: got %d", rec.Code)
	}
}

func TestAnalyze_PreflightFailure(t *testing.T) {
	svc := &fakeService{analyzeErr: &analyze.PhaseError{
		Phase: "preflight",
		Err:   errors.New("missing required columns: Visit #"),
	}}
	e := newTestEcho(svc)

	body, ctype := multipartUpload(t, map[string][]byte{
		"file1": []byte("a"),
		"file2": []byte("b"),
	})
	req := httptest.NewRequest(http.MethodPost, "/api/analyze", body)
	req.Header.Set(echo.HeaderContentType, ctype)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status: got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Visit #") {
		t.Errorf("error detail lost: %s", rec.Body.String())
	}
}

func TestAnalyze_PipelineFailure(t *testing.T) {
	svc := &fakeService{analyzeErr: &analyze.PhaseError{
		Phase: "stage",
		Err:   errors.New("copy failed"),
	}}
	e := newTestEcho(svc)

	body, ctype := multipartUpload(t, map[string][]byte{
		"file1": []byte("a"),
		"file2": []byte("b"),
	})
	req := httptest.NewRequest(http.MethodPost, "/api/analyze", body)
	req.Header.Set(echo.HeaderContentType, ctype)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status: got %d", rec.Code)
	}
}

func TestSummary(t *testing.T) {
	e := newTestEcho(activeFake(3))
	req := httptest.NewRequest(http.MethodGet, "/api/summary", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d", rec.Code)
	}
	var rows []model.SummaryRow
	if err := json.Unmarshal(rec.Body.Bytes(), &rows); err != nil {
		t.Fatal(err)
	}
	if len(rows) != 3 {
		t.Errorf("got %d rows", len(rows))
	}
}

func TestSummary_NoSession(t *testing.T) {
	e := newTestEcho(&fakeService{})
	for _, path := range []string{"/api/session", "/api/summary", "/api/chart", "/download/summary.csv", "/chart.png"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		if rec.Code != http.StatusNotFound {
			t.Errorf("%s: got %d, want 404 before first analysis", path, rec.Code)
		}
	}
}

func TestChart_FoldsOthers(t *testing.T) {
	e := newTestEcho(activeFake(13))
	req := httptest.NewRequest(http.MethodGet, "/api/chart", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d", rec.Code)
	}
	var rows []model.SummaryRow
	if err := json.Unmarshal(rec.Body.Bytes(), &rows); err != nil {
		t.Fatal(err)
	}
	if len(rows) != 11 {
		t.Fatalf("got %d slices, want 10 + Others", len(rows))
	}
	if rows[10].NormalizedCode != report.OthersLabel {
		t.Errorf("last slice: %+v", rows[10])
	}
}

func TestDownloadCSV(t *testing.T) {
	e := newTestEcho(activeFake(2))
	req := httptest.NewRequest(http.MethodGet, "/download/summary.csv", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d", rec.Code)
	}
	disp := rec.Header().Get(echo.HeaderContentDisposition)
	if !strings.Contains(disp, report.SummaryFileName) {
		t.Errorf("content disposition: %q", disp)
	}
	if !strings.HasPrefix(rec.Body.String(), "Normalized Code,Final Description,Distinct Claims") {
		t.Errorf("csv header missing: %s", rec.Body.String())
	}
}

func TestChartPNG(t *testing.T) {
	e := newTestEcho(activeFake(4))
	req := httptest.NewRequest(http.MethodGet, "/chart.png", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d, body %s", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get(echo.HeaderContentType); ct != "image/png" {
		t.Errorf("content type: %q", ct)
	}
	if !bytes.HasPrefix(rec.Body.Bytes(), []byte("\x89PNG")) {
		t.Error("body is not a PNG")
	}
}
