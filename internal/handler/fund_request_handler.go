package handler

import (
	"net/http"
	"time"

	"cajachica/internal/middleware"
	"cajachica/internal/model"
	"cajachica/internal/service"
	"cajachica/pkg/pagination"
	"cajachica/pkg/response"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const dateLayout = "2006-01-02"

type FundRequestHandler struct {
	workflow service.WorkflowEngine
	queries  service.FundRequestService
	log      *zap.Logger
}

func NewFundRequestHandler(workflow service.WorkflowEngine, queries service.FundRequestService, log *zap.Logger) *FundRequestHandler {
	return &FundRequestHandler{workflow: workflow, queries: queries, log: log}
}

// RegisterRoutes binds the fund request endpoints behind authn
func (h *FundRequestHandler) RegisterRoutes(router *gin.RouterGroup, authn gin.HandlerFunc) {
	requests := router.Group("/api/fund-requests", authn)
	{
		requests.GET("", h.List)
		requests.POST("", h.Submit)
		requests.GET("/:id", h.Get)
		requests.PUT("/:id/state", h.Transition)
		requests.DELETE("/:id", middleware.RequireRole(model.RoleSuperAdmin), h.Delete)
	}
}

// List returns the fund requests visible to the caller
// @Summary      List fund requests
// @Description  Lists fund requests scoped by the caller's role, newest first
// @Tags         fund-requests
// @Produce      json
// @Security     BearerAuth
// @Param        state           query     string  false  "State label"
// @Param        request_type    query     string  false  "Apertura, Incremento, Decremento or Cierre"
// @Param        code            query     string  false  "Code contains"
// @Param        requester_name  query     string  false  "Requester name contains"
// @Param        date_from       query     string  false  "Created on or after (YYYY-MM-DD)"
// @Param        date_to         query     string  false  "Created on or before (YYYY-MM-DD)"
// @Param        page            query     int     false  "Page number"
// @Param        limit           query     int     false  "Page size"
// @Success      200  {object}  response.Response{data=response.Paged}
// @Failure      403  {object}  response.Response
// @Failure      422  {object}  response.Response
// @Router       /api/fund-requests [get]
func (h *FundRequestHandler) List(c *gin.Context) {
	actor, ok := mustActor(c)
	if !ok {
		return
	}

	page := pagination.Parse(c)
	filter := service.FundRequestFilter{
		State:         model.RequestState(c.Query("state")),
		RequestType:   model.RequestType(c.Query("request_type")),
		Code:          c.Query("code"),
		RequesterName: c.Query("requester_name"),
		Page:          page.Page,
		Limit:         page.Limit,
	}

	fields := map[string]string{}
	filter.DateFrom = parseDateQuery(c, "date_from", fields)
	filter.DateTo = parseDateQuery(c, "date_to", fields)
	if len(fields) > 0 {
		c.JSON(http.StatusUnprocessableEntity, response.ValidationError(http.StatusUnprocessableEntity, msgValidation, fields))
		return
	}

	items, total, err := h.queries.List(c.Request.Context(), actor, filter)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, response.SuccessWithMessage(http.StatusOK, "Solicitudes de fondo obtenidas exitosamente.", response.Paged{
		Items: items,
		Total: total,
		Page:  page.Page,
		Limit: page.Limit,
	}))
}

func parseDateQuery(c *gin.Context, key string, fields map[string]string) *time.Time {
	raw := c.Query(key)
	if raw == "" {
		return nil
	}
	t, err := time.ParseInLocation(dateLayout, raw, time.Local)
	if err != nil {
		fields[key] = "must be a date in YYYY-MM-DD format"
		return nil
	}
	return &t
}

// Submit creates a fund request and routes it to its first reviewer
// @Summary      Submit a fund request
// @Description  Creates an opening, increase, decrease or closure request
// @Tags         fund-requests
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      service.SubmitFundRequestInput  true  "Fund request"
// @Success      201      {object}  response.Response{data=service.FundRequestResponse}
// @Failure      400      {object}  response.Response
// @Failure      403      {object}  response.Response
// @Failure      409      {object}  response.Response
// @Failure      422      {object}  response.Response
// @Router       /api/fund-requests [post]
func (h *FundRequestHandler) Submit(c *gin.Context) {
	actor, ok := mustActor(c)
	if !ok {
		return
	}

	var in service.SubmitFundRequestInput
	if err := c.ShouldBindJSON(&in); err != nil {
		respondBadPayload(c, err)
		return
	}

	created, err := h.workflow.Submit(c.Request.Context(), actor, in)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusCreated, response.SuccessWithMessage(http.StatusCreated,
		"Solicitud de fondo creada exitosamente. Código: "+created.Code, created))
}

// Get returns one fund request with its expense lines and history
// @Summary      Get a fund request
// @Tags         fund-requests
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Fund request ID"
// @Success      200  {object}  response.Response{data=service.FundRequestResponse}
// @Failure      403  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /api/fund-requests/{id} [get]
func (h *FundRequestHandler) Get(c *gin.Context) {
	actor, ok := mustActor(c)
	if !ok {
		return
	}
	id, ok := parseID(c)
	if !ok {
		return
	}

	req, err := h.queries.Get(c.Request.Context(), actor, id)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, response.SuccessWithMessage(http.StatusOK, "Solicitud de fondo obtenida exitosamente.", req))
}

// Transition moves a fund request to the requested milestone
// @Summary      Transition a fund request
// @Description  Observe, approve, rebut or reject a fund request
// @Tags         fund-requests
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string                   true  "Fund request ID"
// @Param        payload  body      service.TransitionInput  true  "Target state and reason"
// @Success      200      {object}  response.Response{data=service.TransitionResult}
// @Failure      403      {object}  response.Response
// @Failure      404      {object}  response.Response
// @Failure      409      {object}  response.Response
// @Failure      422      {object}  response.Response
// @Router       /api/fund-requests/{id}/state [put]
func (h *FundRequestHandler) Transition(c *gin.Context) {
	actor, ok := mustActor(c)
	if !ok {
		return
	}
	id, ok := parseID(c)
	if !ok {
		return
	}

	var in service.TransitionInput
	if err := c.ShouldBindJSON(&in); err != nil {
		respondBadPayload(c, err)
		return
	}

	result, err := h.workflow.Transition(c.Request.Context(), actor, id, in)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, response.SuccessWithMessage(http.StatusOK, result.Message, result))
}

// Delete removes a fund request and everything hanging off it
// @Summary      Delete a fund request
// @Tags         fund-requests
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Fund request ID"
// @Success      200  {object}  response.Response
// @Failure      403  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /api/fund-requests/{id} [delete]
func (h *FundRequestHandler) Delete(c *gin.Context) {
	actor, ok := mustActor(c)
	if !ok {
		return
	}
	id, ok := parseID(c)
	if !ok {
		return
	}

	if err := h.queries.Delete(c.Request.Context(), actor, id); err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, response.SuccessWithMessage(http.StatusOK, "Solicitud de fondo eliminada exitosamente.", nil))
}
