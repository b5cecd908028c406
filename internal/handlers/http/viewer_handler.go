package http

import (
	"context"
	"errors"
	"net/http"
	"os"
	"strconv"

	"connwatch/internal/core/domain"
	"connwatch/internal/infrastructure/livetail"
	"connwatch/internal/infrastructure/logfile"
	"connwatch/internal/infrastructure/monitoring"
	"connwatch/internal/infrastructure/status"
	"connwatch/pkg/config"
	"connwatch/pkg/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// statusBadge is the rendered form of a signal state, shared by the HTML
// page and the JSON API so both show identical wording.
type statusBadge struct {
	State string `json:"state"`
	Text  string `json:"text"`
	CSS   string `json:"css_class"`
}

func badgeFor(state domain.SignalState) statusBadge {
	switch state {
	case domain.StateUp:
		return statusBadge{State: string(state), Text: "Up", CSS: "status-up"}
	case domain.StateDown:
		return statusBadge{State: string(state), Text: "Down", CSS: "status-down"}
	case domain.StateWarning:
		return statusBadge{State: string(state), Text: "Degraded", CSS: "status-warning"}
	default:
		return statusBadge{State: string(domain.StateUnknown), Text: "Unknown", CSS: "status-unknown"}
	}
}

type pageData struct {
	Title           string
	Internet        statusBadge
	DNS             statusBadge
	Timestamp       string
	Stale           bool
	Log             []string
	LogLines        int
	RefreshInterval int
}

type ViewerHandler struct {
	title     string
	logPath   string
	logLines  int
	refresh   int
	reader    *status.Reader
	hub       *livetail.Hub
	readiness *monitoring.Readiness
	logger    *zap.SugaredLogger
}

func NewViewerHandler(
	cfg *config.Config,
	reader *status.Reader,
	hub *livetail.Hub,
	logger *zap.SugaredLogger,
) *ViewerHandler {
	refresh := int(cfg.Monitor.Interval.Std().Seconds())
	if refresh <= 0 {
		refresh = 60
	}

	h := &ViewerHandler{
		title:     cfg.Web.Title,
		logPath:   cfg.Monitor.LogPath,
		logLines:  cfg.Web.LogLines,
		refresh:   refresh,
		reader:    reader,
		hub:       hub,
		readiness: monitoring.NewReadiness(),
		logger:    logger,
	}

	// Readiness reflects whether the monitor behind us is producing: a fresh
	// status file and an accessible connection log.
	h.readiness.AddCheck("status_file", func(ctx context.Context) error {
		if _, stale := reader.Read(utils.Now()); stale {
			return errors.New("status file missing or stale")
		}
		return nil
	})
	h.readiness.AddCheck("connection_log", func(ctx context.Context) error {
		if _, err := os.Stat(h.logPath); err != nil {
			return err
		}
		return nil
	})

	return h
}

func (h *ViewerHandler) SetupRoutes(router *gin.Engine) {
	router.SetHTMLTemplate(pageTemplate)

	router.GET("/", h.Index)
	router.GET("/health", h.Health)
	router.GET("/ready", h.Ready)
	router.POST("/clear-log", h.ClearLog)
	router.GET("/ws/log", func(c *gin.Context) {
		h.hub.HandleWebSocket(c.Writer, c.Request)
	})

	api := router.Group("/api/v1")
	{
		api.GET("/status", h.Status)
		api.GET("/log", h.LogTail)
	}
}

func (h *ViewerHandler) Index(c *gin.Context) {
	snap, stale := h.reader.Read(utils.Now())

	lines, err := logfile.Tail(h.logPath, h.logLines)
	if err != nil {
		h.logger.Warnw("failed to read event log", "path", h.logPath, "error", err)
		lines = nil
	}

	c.HTML(http.StatusOK, "index", pageData{
		Title:           h.title,
		Internet:        badgeFor(snap.Internet),
		DNS:             badgeFor(snap.DNS),
		Timestamp:       formatTimestamp(snap),
		Stale:           stale,
		Log:             lines,
		LogLines:        h.logLines,
		RefreshInterval: h.refresh,
	})
}

func (h *ViewerHandler) Health(c *gin.Context) {
	c.String(http.StatusOK, "ok")
}

// Ready reports pipeline health: 200 while the monitor's artifacts look
// current, 503 once they are missing or stale.
func (h *ViewerHandler) Ready(c *gin.Context) {
	result := h.readiness.CheckAll(c.Request.Context())

	code := http.StatusOK
	if result.Status != "healthy" {
		code = http.StatusServiceUnavailable
	}
	c.JSON(code, result)
}

func (h *ViewerHandler) ClearLog(c *gin.Context) {
	if err := logfile.Truncate(h.logPath); err != nil {
		h.logger.Errorw("failed to clear event log", "path", h.logPath, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	h.logger.Infow("event log cleared", "path", h.logPath)
	c.Redirect(http.StatusSeeOther, "/")
}

func (h *ViewerHandler) Status(c *gin.Context) {
	snap, stale := h.reader.Read(utils.Now())

	c.JSON(http.StatusOK, gin.H{
		"timestamp": formatTimestamp(snap),
		"stale":     stale,
		"internet":  badgeFor(snap.Internet),
		"dns":       badgeFor(snap.DNS),
	})
}

// maxTailLines caps the lines query parameter.
const maxTailLines = 1000

func (h *ViewerHandler) LogTail(c *gin.Context) {
	n := h.logLines
	if raw := c.Query("lines"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "lines must be a positive integer"})
			return
		}
		n = parsed
	}
	if n > maxTailLines {
		n = maxTailLines
	}

	lines, err := logfile.Tail(h.logPath, n)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if lines == nil {
		lines = []string{}
	}

	c.JSON(http.StatusOK, gin.H{
		"lines": lines,
		"count": len(lines),
	})
}

func formatTimestamp(snap domain.StatusSnapshot) string {
	if snap.Timestamp.IsZero() {
		return ""
	}
	return snap.Timestamp.UTC().Format(status.TimestampLayout)
}
