package services

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"time"

	"web-requests/models"
	"web-requests/utils"
)

var ErrInvalidPeriod = errors.New("invalid period")

// Period filters records by year and, optionally, month. Zero means "any".
type Period struct {
	Year  int `json:"year,omitempty"`
	Month int `json:"month,omitempty"`
}

func (p Period) Validate() error {
	if p.Year < 0 || p.Year > 9999 {
		return fmt.Errorf("%w: year %d", ErrInvalidPeriod, p.Year)
	}
	if p.Month < 0 || p.Month > 12 {
		return fmt.Errorf("%w: month %d", ErrInvalidPeriod, p.Month)
	}
	return nil
}

// IsMonthly reports whether a month was requested.
func (p Period) IsMonthly() bool {
	return p.Month != 0
}

func (p Period) Contains(t time.Time) bool {
	if p.Year != 0 && t.Year() != p.Year {
		return false
	}
	if p.Month != 0 && int(t.Month()) != p.Month {
		return false
	}
	return true
}

type Totals struct {
	Requests      int     `json:"total_requests"`
	Pending       int     `json:"total_pending"`
	Posted        int     `json:"total_posted"`
	PostedPercent float64 `json:"total_posted_percent"`
}

type DepartmentRow struct {
	Department    string  `json:"department"`
	DisplayName   string  `json:"display_name"`
	Total         int     `json:"total"`
	Pending       int     `json:"pending"`
	Posted        int     `json:"posted"`
	PostedPercent float64 `json:"posted_percent"`
	ShareOfPosted float64 `json:"share_of_posted"`
}

type UserRow struct {
	Email          string  `json:"email"`
	Total          int     `json:"total"`
	Department     string  `json:"department"`
	PercentOfTotal float64 `json:"percent_of_total"`
}

// Statistics is the aggregator output for one period.
type Statistics struct {
	Period      Period          `json:"period"`
	Historical  Totals          `json:"historical"`
	Filtered    Totals          `json:"filtered"`
	Departments []DepartmentRow `json:"departments"`
	Users       []UserRow       `json:"users"`
}

// Aggregate computes historical totals over every record and the filtered
// totals and breakdowns over the records inside period. A single unparseable
// timestamp fails the whole aggregation.
func Aggregate(records []models.Record, period Period) (*Statistics, error) {
	if err := period.Validate(); err != nil {
		return nil, err
	}

	filtered := make([]models.Record, 0, len(records))
	for i := range records {
		t, err := records[i].Time()
		if err != nil {
			return nil, fmt.Errorf("record %d (%s): %w", i, records[i].ID, err)
		}
		if period.Contains(t) {
			filtered = append(filtered, records[i])
		}
	}

	stats := &Statistics{
		Period:     period,
		Historical: computeTotals(records),
		Filtered:   computeTotals(filtered),
	}
	stats.Departments = departmentBreakdown(filtered, stats.Filtered.Posted)
	stats.Users = userBreakdown(filtered, stats.Filtered.Requests)
	return stats, nil
}

func computeTotals(records []models.Record) Totals {
	totals := Totals{Requests: len(records)}
	for i := range records {
		switch records[i].State {
		case models.StatePending:
			totals.Pending++
		case models.StatePosted:
			totals.Posted++
		}
	}
	totals.PostedPercent = percent(totals.Posted, totals.Requests)
	return totals
}

func departmentBreakdown(records []models.Record, totalPosted int) []DepartmentRow {
	rows := make([]DepartmentRow, 0)
	index := make(map[string]int)

	for i := range records {
		dept := records[i].Department
		pos, ok := index[dept]
		if !ok {
			pos = len(rows)
			index[dept] = pos
			rows = append(rows, DepartmentRow{
				Department:  dept,
				DisplayName: utils.CapitalizeFirst(dept),
			})
		}
		rows[pos].Total++
		switch records[i].State {
		case models.StatePending:
			rows[pos].Pending++
		case models.StatePosted:
			rows[pos].Posted++
		}
	}

	for i := range rows {
		rows[i].PostedPercent = percent(rows[i].Posted, rows[i].Total)
		rows[i].ShareOfPosted = percent(rows[i].Posted, totalPosted)
	}

	// Ties keep first-seen order.
	sort.SliceStable(rows, func(a, b int) bool {
		return rows[a].Total > rows[b].Total
	})
	return rows
}

func userBreakdown(records []models.Record, totalRequests int) []UserRow {
	type userAcc struct {
		total       int
		departments map[string]int
	}

	byEmail := make(map[string]*userAcc)
	emails := make([]string, 0)
	for i := range records {
		email := records[i].UserEmail
		acc, ok := byEmail[email]
		if !ok {
			acc = &userAcc{departments: make(map[string]int)}
			byEmail[email] = acc
			emails = append(emails, email)
		}
		acc.total++
		acc.departments[records[i].Department]++
	}
	sort.Strings(emails)

	rows := make([]UserRow, 0, len(emails))
	for _, email := range emails {
		acc := byEmail[email]
		rows = append(rows, UserRow{
			Email:          email,
			Total:          acc.total,
			Department:     modalDepartment(acc.departments),
			PercentOfTotal: percent(acc.total, totalRequests),
		})
	}

	sort.SliceStable(rows, func(a, b int) bool {
		return rows[a].Total > rows[b].Total
	})
	return rows
}

// modalDepartment returns the most frequent department; ties go to the
// lexicographically smallest name.
func modalDepartment(counts map[string]int) string {
	if len(counts) == 0 {
		return "N/A"
	}
	names := make([]string, 0, len(counts))
	for name := range counts {
		names = append(names, name)
	}
	sort.Strings(names)

	best := names[0]
	for _, name := range names[1:] {
		if counts[name] > counts[best] {
			best = name
		}
	}
	return best
}

func percent(part, whole int) float64 {
	if whole == 0 {
		return 0
	}
	return round2(float64(part) / float64(whole) * 100)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
