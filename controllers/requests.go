package controllers

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"web-requests/models"
	"web-requests/services"

	"github.com/gin-gonic/gin"
)

const maxMultipartMemory = 32 << 20 // 32 MB

// GetDepartments lists the departments the form accepts.
func (ctl *Controller) GetDepartments(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"success":     true,
		"departments": ctl.Requests.Departments(),
	})
}

// SubmitRequest handles the multipart request form.
func (ctl *Controller) SubmitRequest(c *gin.Context) {
	if err := c.Request.ParseMultipartForm(maxMultipartMemory); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Failed to parse form"})
		return
	}
	if c.Request.MultipartForm != nil {
		defer c.Request.MultipartForm.RemoveAll()
	}

	input := services.SubmitInput{
		UserName:   c.PostForm("user_name"),
		UserEmail:  c.PostForm("user_email"),
		Department: c.PostForm("department"),
		Topic:      c.PostForm("topic"),
		Message:    c.PostForm("message"),
	}

	if form := c.Request.MultipartForm; form != nil {
		fields := []struct {
			name string
			kind string
		}{
			{"images", models.AttachmentImage},
			{"files", models.AttachmentFile},
		}
		for _, field := range fields {
			for _, header := range form.File[field.name] {
				upload, err := readUpload(header, field.kind)
				if err != nil {
					c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
					return
				}
				input.Attachments = append(input.Attachments, upload)
			}
		}
	}

	record, err := ctl.Requests.Submit(c.Request.Context(), input)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"message": "Request submitted successfully",
		"data":    record,
	})
}

func readUpload(header *multipart.FileHeader, kind string) (models.AttachmentUpload, error) {
	f, err := header.Open()
	if err != nil {
		return models.AttachmentUpload{}, fmt.Errorf("failed to read %s: %w", header.Filename, err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return models.AttachmentUpload{}, fmt.Errorf("failed to read %s: %w", header.Filename, err)
	}
	return models.AttachmentUpload{
		Kind:         kind,
		OriginalName: header.Filename,
		MimeType:     header.Header.Get("Content-Type"),
		Data:         data,
	}, nil
}

// ListRequests serves the dashboard list with its metrics and filter options.
func (ctl *Controller) ListRequests(c *gin.Context) {
	result, err := ctl.Requests.List(c.Request.Context(), services.ListQuery{
		State:      c.Query("state"),
		Department: c.Query("department"),
		Sort:       c.Query("sort"),
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":     true,
		"data":        result.Records,
		"metrics":     result.Metrics,
		"states":      result.States,
		"departments": result.Departments,
	})
}

func (ctl *Controller) GetRequest(c *gin.Context) {
	record, err := ctl.Requests.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": record})
}

// MarkPosted approves a pending request.
func (ctl *Controller) MarkPosted(c *gin.Context) {
	record, err := ctl.Requests.Approve(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Request marked as posted",
		"data":    record,
	})
}
