package services

import (
	"context"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"
	"time"

	"web-requests/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubCharts writes empty files in place of real images.
type stubCharts struct {
	err error
}

func (s *stubCharts) Render(rows []DepartmentRow, dir, stamp string) (*ChartFiles, error) {
	if s.err != nil {
		return nil, s.err
	}
	files := &ChartFiles{
		PiePath: filepath.Join(dir, "total_requests_pie_"+stamp+".png"),
		BarPath: filepath.Join(dir, "requests_status_bar_"+stamp+".png"),
	}
	for _, p := range []string{files.PiePath, files.BarPath} {
		if err := os.WriteFile(p, []byte("png"), 0o644); err != nil {
			return nil, err
		}
	}
	return files, nil
}

func newTestReportService(store RecordStore, charts ChartRenderer, renderer *ReportRenderer, dir string) *ReportService {
	fixed := func() time.Time { return time.Date(2025, 3, 31, 18, 0, 0, 0, time.Local) }
	renderer.now = fixed
	svc := NewReportService(store, charts, renderer, dir)
	svc.now = fixed
	return svc
}

func listDir(t *testing.T, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return nil
	}
	require.NoError(t, err)
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names
}

func TestGenerateEmptySetProducesReportWithZeroFigures(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "reports")
	svc := newTestReportService(newMemStore(), NewChartGenerator(), NewReportRenderer(""), dir)

	result, err := svc.Generate(context.Background(), Period{Year: 2025, Month: 3})
	require.NoError(t, err)
	assert.Equal(t, "success", result.Message)
	assert.FileExists(t, result.Charts.PiePath)
	assert.FileExists(t, result.Charts.BarPath)

	data, err := os.ReadFile(result.Path)
	require.NoError(t, err)
	html := string(data)

	assert.True(t, strings.HasPrefix(html, "<!DOCTYPE html>"))
	assert.Contains(t, html, "<h1>Reporte mensual - Marzo 2025</h1>")
	assert.Contains(t, html, `<div class="value">0</div>`)
	assert.Contains(t, html, `<div class="value">0%</div>`)
	assert.Contains(t, html, "Sin datos para el período")
	assert.NotContains(t, html, "{{")
	assert.Regexp(t, regexp.MustCompile(`^report_\d{8}_\d{6}_[0-9a-f]{8}\.html$`), filepath.Base(result.Path))
}

func TestGenerateFailsOnBadTimestampAndLeavesNoFiles(t *testing.T) {
	dir := t.TempDir()
	store := newMemStore(
		rec("a@uni.es", "CEP", models.StatePending, "20250301_100000"),
		rec("b@uni.es", "CEP", models.StatePosted, "31/02/2025"),
	)
	svc := newTestReportService(store, &stubCharts{}, NewReportRenderer(""), dir)

	result, err := svc.Generate(context.Background(), Period{Year: 2025})
	require.Error(t, err)
	assert.Nil(t, result)
	assert.ErrorIs(t, err, models.ErrInvalidTimestamp)
	assert.Contains(t, err.Error(), "31/02/2025")
	assert.Empty(t, listDir(t, dir))
}

func TestGenerateRemovesChartsWhenTemplateIsIncomplete(t *testing.T) {
	dir := t.TempDir()
	tplPath := filepath.Join(t.TempDir(), "broken.html")
	require.NoError(t, os.WriteFile(tplPath, []byte("<html>{{heading}} {{date}}</html>"), 0o644))

	store := newMemStore(rec("a@uni.es", "CEP", models.StatePending, "20250301_100000"))
	svc := newTestReportService(store, &stubCharts{}, NewReportRenderer(tplPath), dir)

	_, err := svc.Generate(context.Background(), Period{})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMissingPlaceholder)
	assert.Contains(t, err.Error(), "{{total_historical_requests}}")
	assert.Empty(t, listDir(t, dir))
}

func TestGenerateFailsOnUnreadableTemplate(t *testing.T) {
	dir := t.TempDir()
	svc := newTestReportService(newMemStore(), &stubCharts{}, NewReportRenderer(filepath.Join(dir, "missing.html")), dir)

	_, err := svc.Generate(context.Background(), Period{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read report template")
	assert.Empty(t, listDir(t, dir))
}

func TestGenerateTwiceYieldsIdenticalFigures(t *testing.T) {
	dir := t.TempDir()
	store := newMemStore(
		rec("a@uni.es", "Microbiología", models.StatePending, "20250301_100000"),
		rec("b@uni.es", "Microbiología", models.StatePosted, "20250302_100000"),
		rec("c@uni.es", "Bioquímica", models.StatePosted, "20250303_100000"),
	)
	svc := newTestReportService(store, &stubCharts{}, NewReportRenderer(""), dir)

	first, err := svc.Generate(context.Background(), Period{Year: 2025})
	require.NoError(t, err)
	second, err := svc.Generate(context.Background(), Period{Year: 2025})
	require.NoError(t, err)

	assert.NotEqual(t, first.Path, second.Path)
	assert.Equal(t, first.Statistics, second.Statistics)

	figures := func(path string) string {
		data, err := os.ReadFile(path)
		require.NoError(t, err)
		html := string(data)
		// Drop image names, which differ per run.
		return regexp.MustCompile(`src="[^"]*"`).ReplaceAllString(html, `src=""`)
	}
	assert.Equal(t, figures(first.Path), figures(second.Path))

	html := figures(first.Path)
	assert.Contains(t, html, "<h1>Reporte anual 2025</h1>")
	assert.Contains(t, html, "<td>Microbiología</td><td>2</td><td>1</td><td>1</td><td>50%</td><td>50%</td>")
	assert.Contains(t, html, "<td>Bioquímica</td><td>1</td><td>0</td><td>1</td><td>100%</td><td>50%</td>")
	assert.Contains(t, html, `<div class="value">66.67%</div>`)
}

func TestGenerateRealChartsForDepartments(t *testing.T) {
	dir := t.TempDir()
	store := newMemStore(
		rec("a@uni.es", "Microbiología", models.StatePending, "20250301_100000"),
		rec("b@uni.es", "Biología Animal y Humana", models.StatePosted, "20250302_100000"),
	)
	svc := newTestReportService(store, NewChartGenerator(), NewReportRenderer(""), dir)

	result, err := svc.Generate(context.Background(), Period{})
	require.NoError(t, err)

	for _, p := range []string{result.Charts.PiePath, result.Charts.BarPath} {
		data, err := os.ReadFile(p)
		require.NoError(t, err)
		require.Greater(t, len(data), 8)
		assert.Equal(t, "\x89PNG", string(data[:4]), p)
	}

	html, err := os.ReadFile(result.Path)
	require.NoError(t, err)
	assert.Contains(t, string(html), `src="`+filepath.Base(result.Charts.PiePath)+`"`)
	assert.Contains(t, string(html), `src="`+filepath.Base(result.Charts.BarPath)+`"`)
}

func TestReportHeading(t *testing.T) {
	assert.Equal(t, "Reporte mensual - Marzo 2025", ReportHeading(Period{Year: 2025, Month: 3}))
	assert.Equal(t, "Reporte anual 2024", ReportHeading(Period{Year: 2024}))
	assert.Equal(t, "Reporte anual", ReportHeading(Period{}))
	assert.Equal(t, "Reporte mensual - Diciembre", ReportHeading(Period{Month: 12}))
}

func TestRenderEscapesTableCells(t *testing.T) {
	dir := t.TempDir()
	stats, err := Aggregate([]models.Record{
		rec("<script>@uni.es", "<b>dept</b>", models.StatePending, "20250301_100000"),
	}, Period{})
	require.NoError(t, err)

	r := NewReportRenderer("")
	path, err := r.Render(stats, &ChartFiles{PiePath: "p.png", BarPath: "b.png"}, dir, "stamp")
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "<b>dept</b>")
	assert.Contains(t, string(data), "&lt;b&gt;dept&lt;/b&gt;")
	assert.Equal(t, filepath.Join(dir, "report_stamp.html"), path)
}
