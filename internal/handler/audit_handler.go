package handler

import (
	"net/http"

	"cajachica/internal/middleware"
	"cajachica/internal/model"
	"cajachica/internal/service"
	"cajachica/pkg/pagination"
	"cajachica/pkg/response"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type AuditHandler struct {
	audits service.AuditService
	log    *zap.Logger
}

func NewAuditHandler(audits service.AuditService, log *zap.Logger) *AuditHandler {
	return &AuditHandler{audits: audits, log: log}
}

func (h *AuditHandler) RegisterRoutes(router *gin.RouterGroup, authn gin.HandlerFunc) {
	group := router.Group("/api/audit-logs", authn, middleware.RequireRole(model.RoleSuperAdmin, model.RoleAdminHead))
	{
		group.GET("", h.List)
	}
}

// List retrieves paginated audit entries with the acting user resolved
// @Summary      List audit logs
// @Tags         audit
// @Security     BearerAuth
// @Produce      json
// @Param        entity_id  query     string  false  "Fund request or cash fund ID"
// @Param        action     query     string  false  "Action name, e.g. TRANSITION_FUND_REQUEST"
// @Param        page       query     int     false  "Page number (default 1)"
// @Param        limit      query     int     false  "Number of items per page (default 20)"
// @Success      200  {object}  response.Response{data=response.Paged}
// @Failure      403  {object}  response.Response
// @Router       /api/audit-logs [get]
func (h *AuditHandler) List(c *gin.Context) {
	actor, ok := mustActor(c)
	if !ok {
		return
	}

	page := pagination.Parse(c)
	logs, total, err := h.audits.List(c.Request.Context(), actor, service.AuditFilter{
		EntityID: c.Query("entity_id"),
		Action:   c.Query("action"),
		Page:     page.Page,
		Limit:    page.Limit,
	})
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, response.SuccessWithMessage(http.StatusOK, "Registros de auditoría obtenidos exitosamente.", response.Paged{
		Items: logs,
		Total: total,
		Page:  page.Page,
		Limit: page.Limit,
	}))
}
