package server

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/gyeh/denialstats/internal/analyze"
	"github.com/gyeh/denialstats/internal/report"
)

// Handler serves the dashboard endpoints.
type Handler struct {
	svc  Service
	topN int
}

// NewHandler creates a Handler. topN controls how many pie slices are
// shown before the remainder folds into "Others".
func NewHandler(svc Service, topN int) *Handler {
	if topN <= 0 {
		topN = report.DefaultTopN
	}
	return &Handler{svc: svc, topN: topN}
}

// RegisterRoutes attaches all dashboard routes.
func (h *Handler) RegisterRoutes(e *echo.Echo) {
	e.GET("/", h.Index)
	e.GET("/health", h.Health)
	e.POST("/api/analyze", h.Analyze)
	e.GET("/api/session", h.Session)
	e.GET("/api/summary", h.Summary)
	e.GET("/api/chart", h.Chart)
	e.GET("/download/summary.csv", h.DownloadCSV)
	e.GET("/chart.png", h.ChartPNG)
}

func (h *Handler) Index(c echo.Context) error {
	return c.HTML(http.StatusOK, indexHTML)
}

func (h *Handler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

// Analyze accepts the two workbook uploads (form fields file1, file2)
// and runs the full pipeline, replacing the active session.
func (h *Handler) Analyze(c echo.Context) error {
	var inputs []analyze.Input
	for _, field := range []string{"file1", "file2"} {
		fh, err := c.FormFile(field)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest,
				fmt.Sprintf("missing upload %q: both workbooks are required", field))
		}
		in, err := readUpload(fh)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		inputs = append(inputs, in)
	}

	summary, err := h.svc.Analyze(c.Request().Context(), inputs)
	if err != nil {
		var phase *analyze.PhaseError
		if errors.As(err, &phase) && phase.Phase == "preflight" {
			return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, summary)
}

func (h *Handler) Session(c echo.Context) error {
	summary, err := h.svc.Session(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	}
	return c.JSON(http.StatusOK, summary)
}

func (h *Handler) Summary(c echo.Context) error {
	rows, err := h.svc.Summary(c.Request().Context())
	if err != nil {
		if errors.Is(err, ErrNoSession) {
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, rows)
}

// Chart returns the top-N groups plus the aggregated Others slice.
func (h *Handler) Chart(c echo.Context) error {
	rows, err := h.svc.Summary(c.Request().Context())
	if err != nil {
		if errors.Is(err, ErrNoSession) {
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, report.TopWithOthers(rows, h.topN))
}

func (h *Handler) DownloadCSV(c echo.Context) error {
	rows, err := h.svc.Summary(c.Request().Context())
	if err != nil {
		if errors.Is(err, ErrNoSession) {
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	var buf bytes.Buffer
	if err := report.WriteCSV(&buf, rows); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	c.Response().Header().Set(echo.HeaderContentDisposition,
		fmt.Sprintf(`attachment; filename=%q`, report.SummaryFileName))
	return c.Blob(http.StatusOK, "text/csv", buf.Bytes())
}

func (h *Handler) ChartPNG(c echo.Context) error {
	rows, err := h.svc.Summary(c.Request().Context())
	if err != nil {
		if errors.Is(err, ErrNoSession) {
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	var buf bytes.Buffer
	if err := report.RenderPie(&buf, rows, h.topN); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.Blob(http.StatusOK, "image/png", buf.Bytes())
}

func readUpload(fh *multipart.FileHeader) (analyze.Input, error) {
	f, err := fh.Open()
	if err != nil {
		return analyze.Input{}, fmt.Errorf("open upload %s: %w", fh.Filename, err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return analyze.Input{}, fmt.Errorf("read upload %s: %w", fh.Filename, err)
	}
	return analyze.Input{Name: fh.Filename, Data: data}, nil
}
