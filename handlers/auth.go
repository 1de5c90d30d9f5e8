// File: handlers/auth.go
package handlers

import (
	"net/http"

	"carhub/client"
	"carhub/middleware"
	"carhub/models"
	"carhub/session"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// AuthHandler serves the signin/signup/logout views.
type AuthHandler struct {
	API      *client.Client
	Sessions *session.Manager
	Logger   *zap.Logger
	// SessionTTLSeconds bounds the session cookie's lifetime.
	SessionTTLSeconds int
}

func NewAuthHandler(api *client.Client, sessions *session.Manager, logger *zap.Logger, ttlSeconds int) *AuthHandler {
	return &AuthHandler{API: api, Sessions: sessions, Logger: logger, SessionTTLSeconds: ttlSeconds}
}

// SigninRequest carries the sign-in form.
type SigninRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Signin exchanges credentials for an upstream token and opens a session.
func (h *AuthHandler) Signin(c *gin.Context) {
	var req SigninRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
		return
	}

	token, err := h.API.SignIn(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		relayError(c, h.Sessions, h.Logger, err)
		return
	}

	sess, err := h.Sessions.Login(c.Request.Context(), token.AccessToken)
	if err != nil {
		h.Logger.Error("Failed to persist session", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to open a session"})
		return
	}

	setSessionCookie(c, sess.SessionID, h.SessionTTLSeconds)
	c.JSON(http.StatusOK, gin.H{
		"message":   "Login successful",
		"sessionId": sess.SessionID,
		"user":      sess.User,
		"redirect":  "/dashboard",
	})
}

// SignupRequest carries the registration form. Role defaults to "user".
type SignupRequest struct {
	Username string `json:"username" binding:"required"`
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
	Role     string `json:"role"`
}

// Signup registers a new account upstream.
func (h *AuthHandler) Signup(c *gin.Context) {
	var req SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
		return
	}

	err := h.API.Register(c.Request.Context(), client.RegisterRequest{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
		Role:     req.Role,
	})
	if err != nil {
		relayError(c, h.Sessions, h.Logger, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message":  "Registration successful",
		"redirect": "/signin",
	})
}

// Logout clears both the stored session and the cookie. A subsequent
// request is Anonymous.
func (h *AuthHandler) Logout(c *gin.Context) {
	if id := middleware.SessionID(c); id != "" {
		if err := h.Sessions.Logout(c.Request.Context(), id); err != nil {
			h.Logger.Error("Failed to destroy session", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to log out"})
			return
		}
	}
	clearSessionCookie(c)
	c.JSON(http.StatusOK, gin.H{"message": "Logged out", "redirect": "/"})
}

// Me reports the current session's user for the header/navigation shell.
func (h *AuthHandler) Me(c *gin.Context) {
	v, exists := c.Get(middleware.CtxSession)
	if !exists {
		c.JSON(http.StatusOK, gin.H{"authenticated": false})
		return
	}
	sess := v.(*models.AuthSession)
	c.JSON(http.StatusOK, gin.H{"authenticated": true, "user": sess.User})
}
