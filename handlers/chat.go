// File: handlers/chat.go
package handlers

import (
	"errors"
	"net/http"

	"carhub/services/chat"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ChatHandler serves the floating chatbot widget.
type ChatHandler struct {
	Service *chat.Service
	Logger  *zap.Logger
}

func NewChatHandler(service *chat.Service, logger *zap.Logger) *ChatHandler {
	return &ChatHandler{Service: service, Logger: logger}
}

// Start opens a conversation and returns the greeting.
func (h *ChatHandler) Start(c *gin.Context) {
	convo := h.Service.Start()
	c.JSON(http.StatusCreated, convo)
}

// Get renders the transcript for re-opening the widget.
func (h *ChatHandler) Get(c *gin.Context) {
	convo, err := h.Service.Conversation(c.Param("sessionID"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Conversation not found"})
		return
	}
	c.JSON(http.StatusOK, convo)
}

// SendRequest carries one user message.
type SendRequest struct {
	Text string `json:"text" binding:"required"`
}

// Send relays a message to the NLU endpoint. On failure the transcript
// already carries the fallback reply; the error field feeds the widget's
// dismissible banner.
func (h *ChatHandler) Send(c *gin.Context) {
	var req SendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
		return
	}

	convo, err := h.Service.Send(c.Request.Context(), c.Param("sessionID"), req.Text)
	switch {
	case errors.Is(err, chat.ErrConversationNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Conversation not found"})
	case errors.Is(err, chat.ErrMessageInFlight):
		c.JSON(http.StatusConflict, gin.H{"error": "Still waiting for the previous reply"})
	case err != nil:
		h.Logger.Warn("Chat send failed", zap.Error(err))
		c.JSON(http.StatusOK, gin.H{
			"conversation": convo,
			"error":        "The assistant is unavailable right now.",
		})
	default:
		c.JSON(http.StatusOK, gin.H{"conversation": convo})
	}
}
