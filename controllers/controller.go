package controllers

import (
	"errors"
	"log"
	"net/http"

	"web-requests/models"
	"web-requests/services"

	"github.com/gin-gonic/gin"
)

// Controller holds the services the HTTP handlers delegate to.
type Controller struct {
	Requests    *services.RequestService
	Reports     *services.ReportService
	Attachments *services.LocalAttachmentStore
}

func NewController(requests *services.RequestService, reports *services.ReportService, attachments *services.LocalAttachmentStore) *Controller {
	return &Controller{Requests: requests, Reports: reports, Attachments: attachments}
}

// Health reports that the process is serving.
func (ctl *Controller) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"status":  "ok",
		"message": "Web requests API is running",
	})
}

// respondError maps service errors onto HTTP status codes.
func respondError(c *gin.Context, err error) {
	var verr *services.ValidationError
	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "Validation failed",
			"fields":  verr.Fields,
		})
	case errors.Is(err, services.ErrInvalidPeriod):
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
	case errors.Is(err, models.ErrInvalidTimestamp):
		log.Printf("Stored data rejected on %s %s: %v", c.Request.Method, c.Request.URL.Path, err)
		c.JSON(http.StatusUnprocessableEntity, gin.H{"success": false, "error": err.Error()})
	case errors.Is(err, services.ErrRecordNotFound):
		c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "Request not found"})
	case errors.Is(err, services.ErrAlreadyPosted):
		c.JSON(http.StatusConflict, gin.H{"success": false, "error": "Request is already posted"})
	case errors.Is(err, services.ErrVersionConflict):
		c.JSON(http.StatusConflict, gin.H{"success": false, "error": "Requests changed concurrently, please retry"})
	default:
		log.Printf("Error handling %s %s: %v", c.Request.Method, c.Request.URL.Path, err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": err.Error()})
	}
}
