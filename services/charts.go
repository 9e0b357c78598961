package services

import (
	"fmt"
	"math"
	"os"
	"path/filepath"

	"web-requests/models"
	"web-requests/utils"

	chart "github.com/wcharczuk/go-chart/v2"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/text"
	"gonum.org/v1/plot/vg"
)

// ChartFiles are the two images generated for one report.
type ChartFiles struct {
	PiePath string `json:"pie_path"`
	BarPath string `json:"bar_path"`
}

// Remove deletes both images, ignoring files that do not exist.
func (c *ChartFiles) Remove() {
	if c == nil {
		return
	}
	for _, p := range []string{c.PiePath, c.BarPath} {
		if p != "" {
			_ = os.Remove(p)
		}
	}
}

// ChartRenderer draws report charts from a department breakdown.
type ChartRenderer interface {
	Render(rows []DepartmentRow, dir, stamp string) (*ChartFiles, error)
}

// ChartGenerator renders PNG charts.
type ChartGenerator struct {
	PieWidth  int
	PieHeight int
	BarWidth  vg.Length
	BarHeight vg.Length
}

func NewChartGenerator() *ChartGenerator {
	return &ChartGenerator{
		PieWidth:  1000,
		PieHeight: 600,
		BarWidth:  12 * vg.Inch,
		BarHeight: 6 * vg.Inch,
	}
}

func (g *ChartGenerator) Render(rows []DepartmentRow, dir, stamp string) (*ChartFiles, error) {
	files := &ChartFiles{
		PiePath: filepath.Join(dir, fmt.Sprintf("total_requests_pie_%s.png", stamp)),
		BarPath: filepath.Join(dir, fmt.Sprintf("requests_status_bar_%s.png", stamp)),
	}

	if err := g.renderPie(rows, files.PiePath); err != nil {
		files.Remove()
		return nil, fmt.Errorf("failed to render department chart: %w", err)
	}
	if err := g.renderStatusBars(rows, files.BarPath); err != nil {
		files.Remove()
		return nil, fmt.Errorf("failed to render status chart: %w", err)
	}
	return files, nil
}

func (g *ChartGenerator) renderPie(rows []DepartmentRow, path string) error {
	total := 0
	for _, row := range rows {
		total += row.Total
	}

	values := make([]chart.Value, 0, len(rows))
	for _, row := range rows {
		if row.Total == 0 {
			continue
		}
		share := float64(row.Total) / float64(total) * 100
		values = append(values, chart.Value{
			Value: float64(row.Total),
			Label: fmt.Sprintf("%s (%.1f%%)", row.DisplayName, share),
		})
	}
	if len(values) == 0 {
		values = []chart.Value{{Value: 1, Label: "Sin solicitudes"}}
	}

	pie := chart.PieChart{
		Title:  "Total de Solicitudes por Departamento",
		Width:  g.PieWidth,
		Height: g.PieHeight,
		Values: values,
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := pie.Render(chart.PNG, f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func (g *ChartGenerator) renderStatusBars(rows []DepartmentRow, path string) error {
	p := plot.New()
	p.Title.Text = "Estado de Solicitudes por Departamento"
	p.X.Label.Text = "Departamento"
	p.Y.Label.Text = "Cantidad de Solicitudes"

	if len(rows) > 0 {
		pending := make(plotter.Values, len(rows))
		posted := make(plotter.Values, len(rows))
		names := make([]string, len(rows))
		for i, row := range rows {
			pending[i] = float64(row.Pending)
			posted[i] = float64(row.Posted)
			names[i] = row.DisplayName
		}

		w := vg.Points(20)
		pendingBars, err := plotter.NewBarChart(pending, w)
		if err != nil {
			return err
		}
		pendingBars.LineStyle.Width = vg.Length(0)
		pendingBars.Color = plotutil.Color(0)
		pendingBars.Offset = -w / 2

		postedBars, err := plotter.NewBarChart(posted, w)
		if err != nil {
			return err
		}
		postedBars.LineStyle.Width = vg.Length(0)
		postedBars.Color = plotutil.Color(1)
		postedBars.Offset = w / 2

		p.Add(pendingBars, postedBars)
		p.Legend.Add(utils.StateLabel(models.StatePending), pendingBars)
		p.Legend.Add(utils.StateLabel(models.StatePosted), postedBars)
		p.Legend.Top = true
		p.NominalX(names...)

		p.X.Tick.Label.Rotation = math.Pi / 4
		p.X.Tick.Label.XAlign = text.XRight
		p.X.Tick.Label.YAlign = text.YCenter
	}
	p.Y.Min = 0

	return p.Save(g.BarWidth, g.BarHeight, path)
}
