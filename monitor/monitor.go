package monitor

import (
	"crypto/subtle"
	"net/http"
	"os"

	"web-requests/config"

	"github.com/gin-gonic/gin"
)

const monitorPage = `<!DOCTYPE html>
<html lang="es">
<head>
  <meta charset="UTF-8" />
  <meta name="viewport" content="width=device-width, initial-scale=1.0" />
  <title>Monitor de solicitudes web</title>
  <style>
    body { background: #111827; color: #e5e7eb; font-family: 'Segoe UI', Roboto, sans-serif; margin: 0; padding: 20px; }
    .container { max-width: 1100px; margin: 0 auto; }
    h1 { font-size: 2rem; color: #93c5fd; margin-bottom: 1.5rem; }
    .card { background: #1f2937; border: 1px solid #374151; border-radius: 12px; padding: 1.25rem; margin-bottom: 1.5rem; }
    .metrics { display: flex; gap: 2rem; }
    .metric span { display: block; font-size: 1.75rem; font-weight: 700; color: #f9fafb; }
    .header { display: flex; justify-content: space-between; align-items: center; margin-bottom: 1rem; }
    #logs { background: #0b1020; padding: 1rem; border-radius: 8px; max-height: 480px; overflow-y: auto; white-space: pre-wrap; font-family: Consolas, monospace; font-size: 0.85rem; }
    button { padding: 0.6rem 1.2rem; background: #2563eb; color: #fff; border: none; border-radius: 8px; cursor: pointer; font-weight: 600; }
    button.paused { background: #dc2626; }
  </style>
</head>
<body>
  <div class="container">
    <h1>Monitor de solicitudes web</h1>
    <div class="card" id="status">Estado: comprobando...</div>
    <div class="card metrics">
      <div class="metric">Total<span id="total">-</span></div>
      <div class="metric">Pendientes<span id="pending">-</span></div>
      <div class="metric">Publicadas<span id="posted">-</span></div>
    </div>
    <div class="card">
      <div class="header">
        <strong>Registro del servidor</strong>
        <button onclick="toggleLive()" id="toggleBtn">Pausar</button>
      </div>
      <pre id="logs">Cargando...</pre>
    </div>
  </div>
  <script>
    const token = new URLSearchParams(window.location.search).get('token') || '';
    let liveLogs = true;
    const logsElement = document.getElementById('logs');
    const toggleBtn = document.getElementById('toggleBtn');

    function fetchStatus() {
      fetch('/api/v1/health')
        .then(res => res.json())
        .then(data => { document.getElementById('status').textContent = 'Estado: ' + (data.success ? 'en línea' : 'sin conexión'); })
        .catch(() => { document.getElementById('status').textContent = 'Estado: sin conexión'; });
      fetch('/api/v1/requests')
        .then(res => res.json())
        .then(data => {
          if (!data.metrics) return;
          document.getElementById('total').textContent = data.metrics.total;
          document.getElementById('pending').textContent = data.metrics.pending;
          document.getElementById('posted').textContent = data.metrics.posted;
        });
    }

    function fetchLogs() {
      if (!liveLogs) return;
      fetch('/logs?token=' + encodeURIComponent(token))
        .then(res => res.text())
        .then(data => {
          logsElement.textContent = data;
          logsElement.scrollTop = logsElement.scrollHeight;
        });
    }

    function toggleLive() {
      liveLogs = !liveLogs;
      toggleBtn.textContent = liveLogs ? 'Pausar' : 'Reanudar';
      toggleBtn.classList.toggle('paused', !liveLogs);
    }

    fetchStatus();
    fetchLogs();
    setInterval(fetchStatus, 5000);
    setInterval(fetchLogs, 5000);
  </script>
</body>
</html>`

func RegisterMonitorPage(router *gin.Engine) {
	router.GET("/monitor", func(c *gin.Context) {
		c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(monitorPage))
	})
}

// RegisterLogsRoute serves the log file to callers presenting MONITOR_TOKEN.
// The route is disabled when no token is configured.
func RegisterLogsRoute(router *gin.Engine, token string) {
	router.GET("/logs", func(c *gin.Context) {
		if token == "" || subtle.ConstantTimeCompare([]byte(c.Query("token")), []byte(token)) != 1 {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		logData, err := os.ReadFile(config.LogFilePath())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Unable to read log"})
			return
		}
		c.Data(http.StatusOK, "text/plain; charset=utf-8", logData)
	})
}
