package routes

import (
	"net/http"

	"web-requests/config"
	"web-requests/controllers"
	"web-requests/monitor"

	"github.com/gin-gonic/gin"
)

func SetupRoutes(router *gin.Engine, ctl *controllers.Controller, cfg *config.Config) {
	monitor.RegisterMonitorPage(router)
	monitor.RegisterLogsRoute(router, cfg.MonitorToken)

	// Generated reports reference their chart images relatively.
	router.Static("/reports", cfg.Reports.Dir)

	v1 := router.Group("/api/v1")
	{
		v1.GET("/health", ctl.Health)
		v1.GET("/departments", ctl.GetDepartments)

		// Requests
		requests := v1.Group("/requests")
		{
			requests.POST("", ctl.SubmitRequest)
			requests.GET("", ctl.ListRequests)
			requests.GET("/:id", ctl.GetRequest)
			requests.POST("/:id/posted", ctl.MarkPosted)
		}

		// Statistics and reports
		v1.GET("/statistics", ctl.GetStatistics)
		v1.POST("/reports", ctl.GenerateReport)

		v1.GET("/attachments/*path", ctl.DownloadAttachment)
	}

	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "Route not found"})
	})
}
