package services

import (
	_ "embed"
	"errors"
	"fmt"
	"html/template"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"web-requests/utils"
)

//go:embed templates/report_template.html
var defaultReportTemplate string

var ErrMissingPlaceholder = errors.New("report template is missing placeholder")

// reportPlaceholders lists every key a report template must contain.
var reportPlaceholders = []string{
	"heading",
	"date",
	"total_historical_requests",
	"total_historical_pending",
	"total_historical_posted",
	"total_historical_posted_perc",
	"total_requests",
	"total_pending",
	"total_posted",
	"total_posted_perc",
	"department_table",
	"user_table",
	"image_total_departments",
	"image_state_departments",
}

// ReportRenderer fills the report template and writes the HTML file.
type ReportRenderer struct {
	templatePath string
	now          func() time.Time
}

// NewReportRenderer uses the embedded template when templatePath is empty.
func NewReportRenderer(templatePath string) *ReportRenderer {
	return &ReportRenderer{templatePath: strings.TrimSpace(templatePath), now: time.Now}
}

func (r *ReportRenderer) loadTemplate() (string, error) {
	if r.templatePath == "" {
		return defaultReportTemplate, nil
	}
	data, err := os.ReadFile(r.templatePath)
	if err != nil {
		return "", fmt.Errorf("failed to read report template: %w", err)
	}
	return string(data), nil
}

// ReportHeading distinguishes monthly from annual reports.
func ReportHeading(period Period) string {
	parts := []string{}
	if period.IsMonthly() {
		parts = append(parts, "Reporte mensual -", utils.SpanishMonth(period.Month))
	} else {
		parts = append(parts, "Reporte anual")
	}
	if period.Year != 0 {
		parts = append(parts, strconv.Itoa(period.Year))
	}
	return strings.Join(parts, " ")
}

// Render writes report_<stamp>.html into dir and returns its path. Chart
// images are referenced relative to the report.
func (r *ReportRenderer) Render(stats *Statistics, charts *ChartFiles, dir, stamp string) (string, error) {
	tpl, err := r.loadTemplate()
	if err != nil {
		return "", err
	}

	replacements := map[string]string{
		"heading":                      template.HTMLEscapeString(ReportHeading(stats.Period)),
		"date":                         utils.FormatReportDate(r.now()),
		"total_historical_requests":    strconv.Itoa(stats.Historical.Requests),
		"total_historical_pending":     strconv.Itoa(stats.Historical.Pending),
		"total_historical_posted":      strconv.Itoa(stats.Historical.Posted),
		"total_historical_posted_perc": utils.FormatPercent(stats.Historical.PostedPercent),
		"total_requests":               strconv.Itoa(stats.Filtered.Requests),
		"total_pending":                strconv.Itoa(stats.Filtered.Pending),
		"total_posted":                 strconv.Itoa(stats.Filtered.Posted),
		"total_posted_perc":            utils.FormatPercent(stats.Filtered.PostedPercent),
		"department_table":             departmentTableHTML(stats.Departments),
		"user_table":                   userTableHTML(stats.Users),
		"image_total_departments":      template.HTMLEscapeString(filepath.Base(charts.PiePath)),
		"image_state_departments":      template.HTMLEscapeString(filepath.Base(charts.BarPath)),
	}

	pairs := make([]string, 0, len(reportPlaceholders)*2)
	for _, key := range reportPlaceholders {
		placeholder := "{{" + key + "}}"
		if !strings.Contains(tpl, placeholder) {
			return "", fmt.Errorf("%w %s", ErrMissingPlaceholder, placeholder)
		}
		pairs = append(pairs, placeholder, replacements[key])
	}
	html := strings.NewReplacer(pairs...).Replace(tpl)

	return writeFileAtomic(dir, fmt.Sprintf("report_%s.html", stamp), []byte(html))
}

func departmentTableHTML(rows []DepartmentRow) string {
	headers := []string{"Departamento", "Total de Solicitudes", "Pendiente", "Publicada", "% Publicada", "% Publicada del total"}
	body := make([][]string, 0, len(rows))
	for _, row := range rows {
		body = append(body, []string{
			row.DisplayName,
			strconv.Itoa(row.Total),
			strconv.Itoa(row.Pending),
			strconv.Itoa(row.Posted),
			utils.FormatPercent(row.PostedPercent),
			utils.FormatPercent(row.ShareOfPosted),
		})
	}
	return htmlTable("departments", headers, body)
}

func userTableHTML(rows []UserRow) string {
	headers := []string{"Usuario", "Total Solicitudes", "Departamento", "% del Total"}
	body := make([][]string, 0, len(rows))
	for _, row := range rows {
		body = append(body, []string{
			row.Email,
			strconv.Itoa(row.Total),
			row.Department,
			utils.FormatPercent(row.PercentOfTotal),
		})
	}
	return htmlTable("users", headers, body)
}

func htmlTable(class string, headers []string, rows [][]string) string {
	var b strings.Builder
	b.WriteString(`<table class="` + class + `">` + "\n<thead><tr>")
	for _, h := range headers {
		b.WriteString("<th>" + template.HTMLEscapeString(h) + "</th>")
	}
	b.WriteString("</tr></thead>\n<tbody>\n")
	if len(rows) == 0 {
		b.WriteString(fmt.Sprintf(`<tr><td colspan="%d">Sin datos para el período</td></tr>`+"\n", len(headers)))
	}
	for _, row := range rows {
		b.WriteString("<tr>")
		for _, cell := range row {
			b.WriteString("<td>" + template.HTMLEscapeString(cell) + "</td>")
		}
		b.WriteString("</tr>\n")
	}
	b.WriteString("</tbody>\n</table>")
	return b.String()
}

func writeFileAtomic(dir, name string, data []byte) (string, error) {
	tmp, err := os.CreateTemp(dir, ".report-*.tmp")
	if err != nil {
		return "", fmt.Errorf("failed to create report file: %w", err)
	}
	tmpName := tmp.Name()
	if err := tmp.Chmod(0o644); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return "", fmt.Errorf("failed to write report: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return "", fmt.Errorf("failed to write report: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return "", fmt.Errorf("failed to write report: %w", err)
	}
	final := filepath.Join(dir, name)
	if err := os.Rename(tmpName, final); err != nil {
		os.Remove(tmpName)
		return "", fmt.Errorf("failed to write report: %w", err)
	}
	return final, nil
}
