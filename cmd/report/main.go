// Command report generates the statistics report for a period from the configured record store.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"web-requests/config"
	"web-requests/services"

	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	var (
		year  int
		month int
		out   string
	)
	flag.IntVar(&year, "year", 0, "report year (optional, 0 = every year)")
	flag.IntVar(&month, "month", 0, "report month 1-12 (optional, 0 = annual report)")
	flag.StringVar(&out, "out", "", "output directory (defaults to REPORT_DIR)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}
	if out == "" {
		out = cfg.Reports.Dir
	}

	period := services.Period{Year: year, Month: month}
	if err := period.Validate(); err != nil {
		log.Fatal(err)
	}

	store, err := services.OpenRecordStore(cfg)
	if err != nil {
		log.Fatalf("failed to open record store: %v", err)
	}

	reporter := services.NewReportService(
		store,
		services.NewChartGenerator(),
		services.NewReportRenderer(cfg.Reports.TemplatePath),
		out,
	)

	result, err := reporter.Generate(context.Background(), period)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	fmt.Println(result.Path)
}
