package handler

import (
	"net/http"

	"cajachica/internal/service"
	"cajachica/pkg/response"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type AreaHandler struct {
	areas service.AreaService
	log   *zap.Logger
}

func NewAreaHandler(areas service.AreaService, log *zap.Logger) *AreaHandler {
	return &AreaHandler{areas: areas, log: log}
}

func (h *AreaHandler) RegisterRoutes(router *gin.RouterGroup, authn gin.HandlerFunc) {
	router.GET("/api/areas", authn, h.List)
}

// List returns every area
// @Summary      List areas
// @Tags         areas
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  response.Response{data=[]service.AreaSummary}
// @Router       /api/areas [get]
func (h *AreaHandler) List(c *gin.Context) {
	areas, err := h.areas.List(c.Request.Context())
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, response.SuccessWithMessage(http.StatusOK, "Áreas obtenidas exitosamente.", areas))
}
