package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/bulgareesoft/bulgaree/internal/scheduler"
	"github.com/bulgareesoft/bulgaree/pkg/clients/updates"
)

// UpdatesHandler surfaces the background update check and drives installer
// downloads on behalf of the shell.
type UpdatesHandler struct {
	sched  *scheduler.Scheduler
	client *updates.Client
	logger *zap.Logger
}

// NewUpdatesHandler constructs the HTTP adapter for update operations.
func NewUpdatesHandler(sched *scheduler.Scheduler, client *updates.Client, logger *zap.Logger) *UpdatesHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UpdatesHandler{sched: sched, client: client, logger: logger}
}

// Status reports the running version and, when one is pending, the update the
// poller discovered.
func (h *UpdatesHandler) Status(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"current": updates.Version,
		"update":  h.sched.Latest(),
	})
}

// Download fetches the pending installer into the temp directory and returns
// its path for the shell to launch.
func (h *UpdatesHandler) Download(c *gin.Context) {
	pending := h.sched.Latest()
	if pending == nil || pending.URL == "" {
		c.JSON(http.StatusNotFound, gin.H{"error": "no update available"})
		return
	}

	lastLogged := -1
	path, err := h.client.Download(c.Request.Context(), pending.URL, func(pct int) {
		// Whole-decile progress only; per-chunk logging would flood the output.
		if pct/10 > lastLogged/10 {
			lastLogged = pct
			h.logger.Info("download progress", zap.Int("percent", pct))
		}
	})
	if err != nil {
		h.logger.Error("installer download failed", zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "unable to download the update"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"installer": path, "version": pending.Version})
}
