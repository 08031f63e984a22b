// internal/handlers/home-view/handler.go
package homeview

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"trip-planner/internal/web"
)

const Route = "/"

type Config struct {
	AppName     string
	Endpoint    string
	ResultsPath string

	// LocationHeader names the plan response header holding the results view location.
	LocationHeader string
}

type Handler struct {
	config *Config
}

func NewHandler(config *Config) *Handler {
	return &Handler{config: config}
}

func (h *Handler) Handle(c *gin.Context) {
	c.HTML(http.StatusOK, web.HomeTemplate, gin.H{
		"AppName":     h.config.AppName,
		"Endpoint":    h.config.Endpoint,
		"ResultsPath": h.config.ResultsPath,
		"LocationHeader": h.config.LocationHeader,
	})
}
