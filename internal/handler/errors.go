package handler

import (
	"errors"
	"net/http"

	"cajachica/internal/middleware"
	"cajachica/internal/model"
	"cajachica/internal/service"
	"cajachica/pkg/apperror"
	"cajachica/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	msgValidation = "Error de validación."
	msgInternal   = "Ocurrió un error al procesar la solicitud."
)

// respondError maps a service error to its HTTP status. Internal details are
// logged and never returned to the client.
func respondError(c *gin.Context, log *zap.Logger, err error) {
	var appErr *apperror.Error
	message := ""
	if errors.As(err, &appErr) {
		message = appErr.Message
	}

	switch apperror.KindOf(err) {
	case apperror.KindValidation:
		c.JSON(http.StatusUnprocessableEntity, response.ValidationError(http.StatusUnprocessableEntity, msgValidation, apperror.FieldsOf(err)))
	case apperror.KindUnauthenticated:
		c.JSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, message))
	case apperror.KindForbidden:
		c.JSON(http.StatusForbidden, response.Error(http.StatusForbidden, message))
	case apperror.KindNotFound:
		c.JSON(http.StatusNotFound, response.Error(http.StatusNotFound, message))
	case apperror.KindInvalidTransition, apperror.KindModificationConflict:
		c.JSON(http.StatusConflict, response.Error(http.StatusConflict, message))
	default:
		log.Error("request failed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Error(err))
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, msgInternal))
	}
}

func respondBadPayload(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
}

// actorFrom reads the identity stored by the authentication middleware
func actorFrom(c *gin.Context) (service.Actor, bool) {
	rawID, ok := c.Get(middleware.ContextUserID)
	if !ok {
		return service.Actor{}, false
	}
	id, ok := rawID.(uuid.UUID)
	if !ok {
		return service.Actor{}, false
	}
	rawRole, _ := c.Get(middleware.ContextUserRole)
	role, _ := rawRole.(model.RoleName)
	return service.Actor{ID: id, Role: role}, true
}

// mustActor writes a 401 and returns false when no identity is present
func mustActor(c *gin.Context) (service.Actor, bool) {
	actor, ok := actorFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "No autenticado."))
	}
	return actor, ok
}

func parseID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, response.ValidationError(http.StatusUnprocessableEntity, msgValidation,
			map[string]string{"id": "must be a valid UUID"}))
		return uuid.Nil, false
	}
	return id, true
}
