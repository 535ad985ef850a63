package handler

import (
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	"novelpedia-backend/internal/domains/federation"
	"novelpedia-backend/internal/domains/federation/service"
	"novelpedia-backend/internal/shared/response"
	"novelpedia-backend/pkg/logger"
)

type OAuthHandler struct {
	service     service.ServiceInterface
	frontendURL string
}

func NewOAuthHandler(s service.ServiceInterface, frontendURL string) *OAuthHandler {
	return &OAuthHandler{service: s, frontendURL: frontendURL}
}

// Providers - GET /auth/oauth/providers
func (h *OAuthHandler) Providers(c *gin.Context) {
	response.Success(c, http.StatusOK, h.service.Providers())
}

// Start - GET /auth/oauth/:provider/start
func (h *OAuthHandler) Start(c *gin.Context) {
	var req federation.StartRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, "Invalid query parameters")
		return
	}

	result, err := h.service.Start(c.Request.Context(), c.Param("provider"), req.RedirectURI)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, result)
}

// Callback - GET /auth/oauth/:provider/callback
// Always redirects to the frontend, with tokens or ?error=<reason>.
func (h *OAuthHandler) Callback(c *gin.Context) {
	target := h.frontendURL + "/auth/callback"

	if providerErr := c.Query("error"); providerErr != "" {
		c.Redirect(http.StatusFound, target+"?"+url.Values{"error": {providerErr}}.Encode())
		return
	}

	result, err := h.service.Callback(c.Request.Context(), c.Param("provider"), c.Query("code"), c.Query("state"))
	if err != nil {
		reason := federation.Reason(err)
		if reason == "" {
			logger.Error("oauth callback failed", err)
			reason = "server_error"
		}
		c.Redirect(http.StatusFound, target+"?"+url.Values{"error": {reason}}.Encode())
		return
	}

	q := url.Values{
		"access":  {result.AccessToken},
		"refresh": {result.RefreshToken},
	}
	c.Redirect(http.StatusFound, target+"?"+q.Encode())
}

// TokenLogin - POST /auth/oauth/:provider/token
func (h *OAuthHandler) TokenLogin(c *gin.Context) {
	var req federation.TokenLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "access_token is required")
		return
	}

	result, err := h.service.LoginWithAccessToken(c.Request.Context(), c.Param("provider"), req.AccessToken)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, result)
}
