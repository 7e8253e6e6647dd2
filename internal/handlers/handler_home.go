package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// homeHandler godoc
// @Summary Service banner
// @Description Returns the service name for probes and curl checks
// @Tags home
// @Produce plain
// @Success 200 {string} string "openbooks backend"
// @Router / [get]
func homeHandler(c *gin.Context) {
	c.String(http.StatusOK, "openbooks backend")
}
