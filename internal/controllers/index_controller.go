package controllers

import (
	"net/http"

	"github.com/franciscosanchezn/gin-kitchen/internal/middleware"
	"github.com/franciscosanchezn/gin-kitchen/internal/services"
	"github.com/gin-gonic/gin"
)

// IndexController serves the home page counters
type IndexController struct {
	service services.IndexService
}

func NewIndexController(service services.IndexService) *IndexController {
	return &IndexController{service: service}
}

// Index godoc
// @Summary Index
// @Description Counts of cooks, dishes, dish types and ingredients
// @Tags index
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]interface{}
// @Failure 401 {object} models.APIError
// @Router / [get]
func (ic *IndexController) Index(c *gin.Context) {
	counts, err := ic.service.Counts()
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"counts": counts,
		"cook":   middleware.CurrentCook(c),
	})
}

// Health reports that the service is up
// @Summary Health check
// @Description Report that the service is up
// @Tags index
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /health [get]
func Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
