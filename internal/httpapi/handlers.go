package httpapi

import (
	"errors"
	"net/http"

	"github.com/Krusty2272/AiFitnessCoach/internal/authflow"
	"github.com/Krusty2272/AiFitnessCoach/internal/initdata"
	"github.com/Krusty2272/AiFitnessCoach/pkg/logger"

	"github.com/gin-gonic/gin"
)

const authorizationHeader = "Authorization"

// Handlers groups HTTP handlers for dependency injection.
// Keep these thin: parse input, call the auth flow, map errors to
// status codes. Error bodies never echo payload or token contents.

type Handlers struct {
	Auth *authflow.Service
}

type telegramAuthRequest struct {
	InitData string `json:"init_data"`
}

// TelegramAuth authenticates a mini-app launch payload and returns a
// bearer token plus the user record.
func (h Handlers) TelegramAuth(c *gin.Context) {
	var req telegramAuthRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	if req.InitData == "" {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "init_data required"})
		return
	}

	res, err := h.Auth.Login(c.Request.Context(), req.InitData)
	switch {
	case err == nil:
		c.JSON(http.StatusOK, res)
	case errors.Is(err, initdata.ErrNoUser), errors.Is(err, initdata.ErrMalformed):
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "no user data in request"})
	case errors.Is(err, authflow.ErrStoreUnavailable):
		logger.FromGin(c).Error("login store failure", "err", err)
		c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": "authentication temporarily unavailable"})
	case initdata.IsVerificationError(err):
		logger.FromGin(c).Info("launch payload rejected", "reason", err.Error())
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid telegram data"})
	default:
		logger.FromGin(c).Error("login failed", "err", err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "authentication failed"})
	}
}

// Me returns the authenticated user, or 401 for anonymous callers.
func (h Handlers) Me(c *gin.Context) {
	u, err := h.Auth.Identify(c.Request.Context(), c.GetHeader(authorizationHeader))
	if err != nil {
		logger.FromGin(c).Error("identify store failure", "err", err)
		c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": "temporarily unavailable"})
		return
	}
	if u == nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}
	c.JSON(http.StatusOK, u)
}

// Refresh issues a new access token to an authenticated caller.
func (h Handlers) Refresh(c *gin.Context) {
	token, err := h.Auth.Refresh(c.Request.Context(), c.GetHeader(authorizationHeader))
	switch {
	case err == nil:
		c.JSON(http.StatusOK, gin.H{"access_token": token, "token_type": "bearer"})
	case errors.Is(err, authflow.ErrNotAuthenticated):
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
	case errors.Is(err, authflow.ErrStoreUnavailable):
		logger.FromGin(c).Error("refresh store failure", "err", err)
		c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": "temporarily unavailable"})
	default:
		logger.FromGin(c).Error("refresh failed", "err", err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "refresh failed"})
	}
}

// Logout acknowledges a logout. Tokens are stateless, so the client
// discards its copy; nothing is revoked server-side.
func (h Handlers) Logout(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "logged out"})
}

// ValidateToken reports whether the presented token resolves to a user.
func (h Handlers) ValidateToken(c *gin.Context) {
	u, err := h.Auth.Identify(c.Request.Context(), c.GetHeader(authorizationHeader))
	if err != nil {
		logger.FromGin(c).Error("identify store failure", "err", err)
		c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": "temporarily unavailable"})
		return
	}
	if u == nil {
		c.JSON(http.StatusOK, gin.H{"valid": false})
		return
	}
	c.JSON(http.StatusOK, gin.H{"valid": true, "user_id": u.TelegramID})
}
