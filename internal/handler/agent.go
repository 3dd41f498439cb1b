package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"energy-advisor/internal/model"
	"energy-advisor/internal/service"
)

// AgentHandler exposes the conversation pipeline over HTTP.
type AgentHandler struct {
	orchestrator *service.Orchestrator
}

// NewAgentHandler creates the agent handler.
func NewAgentHandler(orchestrator *service.Orchestrator) *AgentHandler {
	return &AgentHandler{orchestrator: orchestrator}
}

// MessageRequest is the body of POST /api/v1/agent/message.
type MessageRequest struct {
	SessionID string `json:"session_id" binding:"required"`
	Message   string `json:"message"`
}

// Start handles POST /api/v1/agent/start.
func (h *AgentHandler) Start(c *gin.Context) {
	id, welcome, err := h.orchestrator.StartSession(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to start session: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"session_id": id,
		"message":    welcome.Message,
	})
}

// Message handles POST /api/v1/agent/message.
func (h *AgentHandler) Message(c *gin.Context) {
	var req MessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	resp, err := h.orchestrator.ProcessMessage(c.Request.Context(), req.SessionID, req.Message)
	if err != nil {
		if errors.Is(err, model.ErrSessionNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Session not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to process message: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, resp)
}

// Status handles GET /api/v1/agent/status/:id.
func (h *AgentHandler) Status(c *gin.Context) {
	status, err := h.orchestrator.GetStatus(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, model.ErrSessionNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Session not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get status: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, status)
}
