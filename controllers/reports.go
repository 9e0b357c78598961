package controllers

import (
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"strconv"
	"strings"

	"web-requests/services"

	"github.com/gin-gonic/gin"
)

type reportRequest struct {
	Year  int `json:"year"`
	Month int `json:"month"`
}

func periodFromQuery(c *gin.Context) (services.Period, error) {
	var period services.Period
	if raw := strings.TrimSpace(c.Query("year")); raw != "" {
		year, err := strconv.Atoi(raw)
		if err != nil {
			return period, fmt.Errorf("%w: year %q", services.ErrInvalidPeriod, raw)
		}
		period.Year = year
	}
	if raw := strings.TrimSpace(c.Query("month")); raw != "" {
		month, err := strconv.Atoi(raw)
		if err != nil {
			return period, fmt.Errorf("%w: month %q", services.ErrInvalidPeriod, raw)
		}
		period.Month = month
	}
	return period, period.Validate()
}

// GetStatistics returns the aggregated figures for ?year=&month=.
func (ctl *Controller) GetStatistics(c *gin.Context) {
	period, err := periodFromQuery(c)
	if err != nil {
		respondError(c, err)
		return
	}
	stats, err := ctl.Reports.Statistics(c.Request.Context(), period)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": stats})
}

// GenerateReport runs the report pipeline. The body is optional.
func (ctl *Controller) GenerateReport(c *gin.Context) {
	var req reportRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid request body"})
			return
		}
	}

	period := services.Period{Year: req.Year, Month: req.Month}
	if err := period.Validate(); err != nil {
		respondError(c, err)
		return
	}

	result, err := ctl.Reports.Generate(c.Request.Context(), period)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":     true,
		"message":     result.Message,
		"report_path": result.Path,
		"charts":      result.Charts,
	})
}

// DownloadAttachment streams a stored attachment.
func (ctl *Controller) DownloadAttachment(c *gin.Context) {
	name := strings.TrimPrefix(c.Param("path"), "/")
	full, err := ctl.Attachments.Resolve(name)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid attachment path"})
		return
	}
	info, err := os.Stat(full)
	if err != nil || info.IsDir() {
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "Attachment not found"})
		return
	}
	c.File(full)
}
