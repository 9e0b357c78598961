package services

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"web-requests/models"

	"github.com/google/uuid"
)

// ReportResult describes one generated report.
type ReportResult struct {
	Path       string      `json:"report_path"`
	Message    string      `json:"message"`
	Charts     ChartFiles  `json:"charts"`
	Statistics *Statistics `json:"statistics"`
}

// ReportService runs the load → aggregate → charts → HTML pipeline.
type ReportService struct {
	store    RecordStore
	charts   ChartRenderer
	renderer *ReportRenderer
	dir      string
	now      func() time.Time
	suffix   func() string
}

func NewReportService(store RecordStore, charts ChartRenderer, renderer *ReportRenderer, dir string) *ReportService {
	return &ReportService{
		store:    store,
		charts:   charts,
		renderer: renderer,
		dir:      dir,
		now:      time.Now,
		suffix:   func() string { return uuid.NewString()[:8] },
	}
}

// Statistics loads the full collection and aggregates it for period.
func (s *ReportService) Statistics(ctx context.Context, period Period) (*Statistics, error) {
	snapshot, err := s.store.Load(ctx)
	if err != nil {
		return nil, err
	}
	return Aggregate(snapshot.Records, period)
}

// Generate writes the report for period. On failure no file from this run is
// left in the output directory.
func (s *ReportService) Generate(ctx context.Context, period Period) (*ReportResult, error) {
	stats, err := s.Statistics(ctx, period)
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(s.dir, os.ModePerm); err != nil {
		return nil, fmt.Errorf("failed to create report directory: %w", err)
	}

	// The random suffix keeps reports generated in the same second apart.
	stamp := s.now().Format(models.TimestampLayout) + "_" + s.suffix()

	charts, err := s.charts.Render(stats.Departments, s.dir, stamp)
	if err != nil {
		return nil, err
	}

	path, err := s.renderer.Render(stats, charts, s.dir, stamp)
	if err != nil {
		charts.Remove()
		return nil, err
	}

	log.Printf("Report generated: %s (%s, %d requests)", path, ReportHeading(period), stats.Filtered.Requests)
	return &ReportResult{
		Path:       path,
		Message:    "success",
		Charts:     *charts,
		Statistics: stats,
	}, nil
}
