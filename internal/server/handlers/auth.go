package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/bulgareesoft/bulgaree/internal/config"
	"github.com/bulgareesoft/bulgaree/internal/repository/supabase"
	"github.com/bulgareesoft/bulgaree/internal/service/session"
)

// AuthHandler exposes sign-in and sign-up to the desktop shell.
type AuthHandler struct {
	sess   *session.Session
	cfg    *config.Config
	logger *zap.Logger
}

// NewAuthHandler constructs the HTTP adapter for the session gate.
func NewAuthHandler(sess *session.Session, cfg *config.Config, logger *zap.Logger) *AuthHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthHandler{sess: sess, cfg: cfg, logger: logger}
}

type credentialsRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Login authenticates the principal gating remote sync. On success the email
// is remembered for the next start; the password never leaves memory.
func (h *AuthHandler) Login(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "email and password are required"})
		return
	}

	principal, err := h.sess.Authenticate(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		var authErr *supabase.AuthError
		if errors.As(err, &authErr) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": authErr.Message})
			return
		}
		h.logger.Warn("login failed, server unreachable", zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "unable to reach the server"})
		return
	}

	if err := h.cfg.SaveEmail(req.Email); err != nil {
		h.logger.Warn("failed to remember email", zap.Error(err))
	}

	c.JSON(http.StatusOK, gin.H{"principal": principal})
}

// Register creates a new account. When email confirmation is pending no
// principal is returned and the caller signs in afterwards.
func (h *AuthHandler) Register(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "email and password are required"})
		return
	}

	principal, err := h.sess.Register(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		var authErr *supabase.AuthError
		if errors.As(err, &authErr) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": authErr.Message})
			return
		}
		h.logger.Warn("registration failed, server unreachable", zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "unable to reach the server"})
		return
	}

	if principal == nil {
		c.JSON(http.StatusAccepted, gin.H{"message": "registration submitted, confirm your email"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"principal": principal})
}

// Status reports the current principal and the remembered sign-in identifier.
func (h *AuthHandler) Status(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"authenticated":    h.sess.Authenticated(),
		"principal":        h.sess.Principal(),
		"remembered_email": h.cfg.RememberedEmail,
	})
}
