package routes

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"web-requests/config"
	"web-requests/controllers"
	"web-requests/middleware"
	"web-requests/services"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupRouter(t *testing.T) (*gin.Engine, *config.Config) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	root := t.TempDir()
	cfg, err := config.LoadFromEnv(func(key string) string {
		switch key {
		case "STORE_PATH":
			return filepath.Join(root, "data.json")
		case "UPLOAD_PATH":
			return filepath.Join(root, "uploads")
		case "REPORT_DIR":
			return filepath.Join(root, "reports")
		case "MONITOR_TOKEN":
			return "s3cret"
		}
		return ""
	})
	require.NoError(t, err)
	require.NoError(t, os.MkdirAll(cfg.Reports.Dir, os.ModePerm))

	store := services.NewFileRecordStore(cfg.Store.Path)
	attachments := services.NewLocalAttachmentStore(cfg.Uploads.Path)
	ctl := controllers.NewController(
		services.NewRequestService(store, attachments, services.RequestServiceOptions{Departments: cfg.Departments}),
		services.NewReportService(store, services.NewChartGenerator(), services.NewReportRenderer(""), cfg.Reports.Dir),
		attachments,
	)

	router := gin.New()
	router.Use(middleware.SecurityHeaders())
	router.Use(middleware.CORSMiddleware(cfg.AllowedOrigins))
	SetupRoutes(router, ctl, cfg)
	return router, cfg
}

func serve(router *gin.Engine, method, target string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(method, target, nil))
	return w
}

func TestRoutesServeAPIAndHeaders(t *testing.T) {
	router, _ := setupRouter(t)

	w := serve(router, http.MethodGet, "/api/v1/health")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))

	w = serve(router, http.MethodGet, "/api/v1/requests")
	assert.Equal(t, http.StatusOK, w.Code)

	w = serve(router, http.MethodOptions, "/api/v1/requests")
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = serve(router, http.MethodGet, "/nope")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "Route not found")
}

func TestReportsAreServedStatically(t *testing.T) {
	router, cfg := setupRouter(t)
	require.NoError(t, os.WriteFile(filepath.Join(cfg.Reports.Dir, "report_x.html"), []byte("<html>ok</html>"), 0o644))

	w := serve(router, http.MethodGet, "/reports/report_x.html")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "ok")
}

func TestMonitorAndLogsToken(t *testing.T) {
	router, _ := setupRouter(t)

	w := serve(router, http.MethodGet, "/monitor")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Monitor de solicitudes web")

	w = serve(router, http.MethodGet, "/logs?token=wrong")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestCORSAllowList(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(middleware.CORSMiddleware([]string{"https://web.uni.es"}))
	router.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("Origin", "https://web.uni.es")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, "https://web.uni.es", w.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("Origin", "https://evil.example")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}
