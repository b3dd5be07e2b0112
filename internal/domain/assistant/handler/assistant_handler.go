// Package handler exposes the assistant over HTTP.
package handler

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/saldo-app/saldo-api/internal/domain/assistant"
)

// userIDHeader carries the authenticated user id, set by the gateway.
// Authentication itself is outside this service.
const userIDHeader = "X-User-ID"

// AssistantHandler serves the assistant endpoints.
type AssistantHandler struct {
	svc    *assistant.Service
	logger *slog.Logger
}

// NewAssistantHandler constructs a new handler.
func NewAssistantHandler(svc *assistant.Service, logger *slog.Logger) *AssistantHandler {
	return &AssistantHandler{svc: svc, logger: logger}
}

// RegisterRoutes registers assistant routes on the v1 group.
//
//	POST /v1/assistant            - answer a natural-language question
//	GET  /v1/assistant/debug/intent?q= - extraction only
//	GET  /v1/assistant/debug/range?q=  - extraction + range resolution only
func (h *AssistantHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/assistant", h.answer)
	rg.GET("/assistant/debug/intent", h.debugIntent)
	rg.GET("/assistant/debug/range", h.debugRange)
}

type askRequest struct {
	Message string `json:"message" binding:"required"`
}

func (h *AssistantHandler) answer(c *gin.Context) {
	userID, ok := h.userID(c)
	if !ok {
		return
	}

	var req askRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "message is required"})
		return
	}

	reply, err := h.svc.Answer(c.Request.Context(), userID, req.Message)
	if err != nil {
		h.logger.Error("assistant answer failed",
			slog.String("user_id", userID.String()),
			slog.Any("error", err),
		)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not compute an answer"})
		return
	}

	c.JSON(http.StatusOK, reply)
}

func (h *AssistantHandler) debugIntent(c *gin.Context) {
	q := strings.TrimSpace(c.Query("q"))
	if q == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "q is required"})
		return
	}

	intent := h.svc.DebugIntent(c.Request.Context(), q)
	c.JSON(http.StatusOK, gin.H{
		"intent":   intent.Kind,
		"category": intent.Category,
		"period":   intent.Period,
		"start":    intent.Start,
		"end":      intent.End,
	})
}

func (h *AssistantHandler) debugRange(c *gin.Context) {
	q := strings.TrimSpace(c.Query("q"))
	if q == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "q is required"})
		return
	}

	rng := h.svc.DebugRange(c.Request.Context(), q)
	c.JSON(http.StatusOK, gin.H{
		"start": rng.Start.Format("2006-01-02"),
		"end":   rng.End.Format("2006-01-02"),
		"label": rng.Label,
	})
}

func (h *AssistantHandler) userID(c *gin.Context) (uuid.UUID, bool) {
	raw := c.GetHeader(userIDHeader)
	if raw == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing " + userIDHeader + " header"})
		return uuid.Nil, false
	}

	id, err := uuid.Parse(raw)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid " + userIDHeader + " header"})
		return uuid.Nil, false
	}
	return id, true
}
