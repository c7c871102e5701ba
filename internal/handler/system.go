package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"futubridge/internal/source"
)

// SystemHandler serves the root and health endpoints.
type SystemHandler struct {
	appName    string
	appVersion string
	flags      source.Flags
}

func NewSystemHandler(appName, appVersion string, flags source.Flags) *SystemHandler {
	return &SystemHandler{appName: appName, appVersion: appVersion, flags: flags}
}

func (h *SystemHandler) Root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"name":    h.appName,
		"version": h.appVersion,
		"docs":    "/docs",
		"status":  "running",
	})
}

func (h *SystemHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":          "healthy",
		"opend_connected": h.flags.IsConnected(),
		"version":         h.appVersion,
	})
}
