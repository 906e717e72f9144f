package handler

import (
	"net/http"

	"cajachica/internal/middleware"
	"cajachica/internal/model"
	"cajachica/internal/service"
	"cajachica/pkg/pagination"
	"cajachica/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type CashFundHandler struct {
	funds service.CashFundService
	log   *zap.Logger
}

func NewCashFundHandler(funds service.CashFundService, log *zap.Logger) *CashFundHandler {
	return &CashFundHandler{funds: funds, log: log}
}

func (h *CashFundHandler) RegisterRoutes(router *gin.RouterGroup, authn gin.HandlerFunc) {
	funds := router.Group("/api/cash-funds", authn)
	{
		funds.GET("", h.List)
		funds.GET("/:id", h.Get)
		funds.DELETE("/:id", middleware.RequireRole(model.RoleSuperAdmin), h.Delete)
	}
}

// List returns the cash funds visible to the caller
// @Summary      List cash funds
// @Tags         cash-funds
// @Produce      json
// @Security     BearerAuth
// @Param        state             query     string  false  "Activo or Cerrado"
// @Param        code              query     string  false  "Code contains"
// @Param        area_id           query     string  false  "Area ID"
// @Param        responsible_name  query     string  false  "Responsible user name contains"
// @Param        page              query     int     false  "Page number"
// @Param        limit             query     int     false  "Page size"
// @Success      200  {object}  response.Response{data=response.Paged}
// @Failure      403  {object}  response.Response
// @Router       /api/cash-funds [get]
func (h *CashFundHandler) List(c *gin.Context) {
	actor, ok := mustActor(c)
	if !ok {
		return
	}

	page := pagination.Parse(c)
	filter := service.CashFundFilter{
		State:           model.FundState(c.Query("state")),
		Code:            c.Query("code"),
		ResponsibleName: c.Query("responsible_name"),
		Page:            page.Page,
		Limit:           page.Limit,
	}
	if raw := c.Query("area_id"); raw != "" {
		areaID, err := uuid.Parse(raw)
		if err != nil {
			c.JSON(http.StatusUnprocessableEntity, response.ValidationError(http.StatusUnprocessableEntity, msgValidation,
				map[string]string{"area_id": "must be a valid UUID"}))
			return
		}
		filter.AreaID = &areaID
	}

	items, total, err := h.funds.List(c.Request.Context(), actor, filter)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, response.SuccessWithMessage(http.StatusOK, "Fondos de efectivo obtenidos exitosamente.", response.Paged{
		Items: items,
		Total: total,
		Page:  page.Page,
		Limit: page.Limit,
	}))
}

// Get returns one cash fund
// @Summary      Get a cash fund
// @Tags         cash-funds
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Cash fund ID"
// @Success      200  {object}  response.Response{data=service.CashFundResponse}
// @Failure      403  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /api/cash-funds/{id} [get]
func (h *CashFundHandler) Get(c *gin.Context) {
	actor, ok := mustActor(c)
	if !ok {
		return
	}
	id, ok := parseID(c)
	if !ok {
		return
	}

	fund, err := h.funds.Get(c.Request.Context(), actor, id)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, response.SuccessWithMessage(http.StatusOK, "Fondo de efectivo obtenido exitosamente.", fund))
}

// Delete removes a closed cash fund
// @Summary      Delete a cash fund
// @Tags         cash-funds
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Cash fund ID"
// @Success      200  {object}  response.Response
// @Failure      403  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /api/cash-funds/{id} [delete]
func (h *CashFundHandler) Delete(c *gin.Context) {
	actor, ok := mustActor(c)
	if !ok {
		return
	}
	id, ok := parseID(c)
	if !ok {
		return
	}

	if err := h.funds.Delete(c.Request.Context(), actor, id); err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, response.SuccessWithMessage(http.StatusOK, "Fondo de efectivo eliminado exitosamente.", nil))
}
