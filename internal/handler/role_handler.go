package handler

import (
	"net/http"

	"cajachica/internal/service"
	"cajachica/pkg/response"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type RoleHandler struct {
	roleService service.RoleService
	log         *zap.Logger
}

func NewRoleHandler(roleService service.RoleService, log *zap.Logger) *RoleHandler {
	return &RoleHandler{roleService: roleService, log: log}
}

func (h *RoleHandler) RegisterRoutes(router *gin.RouterGroup, authn gin.HandlerFunc) {
	router.GET("/api/roles", authn, h.ListRoles)
}

// ListRoles returns the role catalogue
// @Summary      List roles
// @Tags         roles
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  response.Response{data=[]service.RoleResponse}
// @Router       /api/roles [get]
func (h *RoleHandler) ListRoles(c *gin.Context) {
	roles, err := h.roleService.ListRoles(c.Request.Context())
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, response.SuccessWithMessage(http.StatusOK, "Roles obtenidos exitosamente.", roles))
}
