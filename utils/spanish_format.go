package utils

import (
	"strconv"
	"strings"
	"time"
	"unicode"
)

var spanishMonths = []string{
	"Enero",
	"Febrero",
	"Marzo",
	"Abril",
	"Mayo",
	"Junio",
	"Julio",
	"Agosto",
	"Septiembre",
	"Octubre",
	"Noviembre",
	"Diciembre",
}

// SpanishMonth returns the month name for 1-12, or the number itself otherwise.
func SpanishMonth(month int) string {
	if month < 1 || month > len(spanishMonths) {
		return strconv.Itoa(month)
	}
	return spanishMonths[month-1]
}

// FormatReportDate renders the generation date as dd-mm-yyyy hh:mm:ss.
func FormatReportDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.In(time.Local).Format("02-01-2006 15:04:05")
}

// CapitalizeFirst upper-cases the first letter and lower-cases the rest.
func CapitalizeFirst(s string) string {
	runes := []rune(strings.ToLower(s))
	if len(runes) == 0 {
		return s
	}
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}

// FormatPercent renders an already rounded percentage, e.g. 50 -> "50%", 33.33 -> "33.33%".
func FormatPercent(value float64) string {
	return strconv.FormatFloat(value, 'f', -1, 64) + "%"
}
