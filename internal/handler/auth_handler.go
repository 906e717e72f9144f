package handler

import (
	"net/http"
	"time"

	"cajachica/internal/middleware"
	"cajachica/internal/service"
	"cajachica/pkg/response"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type AuthHandler struct {
	auth          service.AuthService
	tokenTTL      time.Duration
	secureCookies bool
	log           *zap.Logger
}

// NewAuthHandler wires login and session endpoints. secureCookies marks the
// access token cookie Secure and SameSite=None for cross-origin deployments.
func NewAuthHandler(auth service.AuthService, tokenTTL time.Duration, secureCookies bool, log *zap.Logger) *AuthHandler {
	return &AuthHandler{auth: auth, tokenTTL: tokenTTL, secureCookies: secureCookies, log: log}
}

func (h *AuthHandler) RegisterRoutes(router *gin.RouterGroup, authn gin.HandlerFunc) {
	auth := router.Group("/api/auth")
	{
		auth.POST("/login", h.Login)
		auth.POST("/logout", h.Logout)
		auth.GET("/me", authn, h.Me)
	}
}

// Login authenticates by email and password
// @Summary      Login
// @Description  Checks the credentials and returns a JWT, also set as the access_token cookie
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        payload  body      service.LoginInput  true  "Credentials"
// @Success      200      {object}  response.Response{data=service.LoginResponse}
// @Failure      400      {object}  response.Response
// @Failure      401      {object}  response.Response
// @Failure      422      {object}  response.Response
// @Router       /api/auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var in service.LoginInput
	if err := c.ShouldBindJSON(&in); err != nil {
		respondBadPayload(c, err)
		return
	}

	res, err := h.auth.Login(c.Request.Context(), in)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	middleware.SetTokenCookie(c, res.Token, h.tokenTTL, h.secureCookies)
	c.JSON(http.StatusOK, response.Success(http.StatusOK, res))
}

// Logout clears the access token cookie
// @Summary      Logout
// @Tags         auth
// @Produce      json
// @Success      200  {object}  response.Response
// @Router       /api/auth/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	middleware.ClearTokenCookie(c, h.secureCookies)
	c.JSON(http.StatusOK, response.SuccessWithMessage(http.StatusOK, "Sesión cerrada.", nil))
}

// Me returns the authenticated user's profile
// @Summary      Current user
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  response.Response{data=service.MeResponse}
// @Failure      401  {object}  response.Response
// @Router       /api/auth/me [get]
func (h *AuthHandler) Me(c *gin.Context) {
	actor, ok := mustActor(c)
	if !ok {
		return
	}
	me, err := h.auth.Me(c.Request.Context(), actor)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, me))
}
