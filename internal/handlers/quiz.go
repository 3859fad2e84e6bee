package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/knowledgegraph-backend/internal/logger"
	"github.com/yungbote/knowledgegraph-backend/internal/services"
)

type QuizHandler struct {
	log  *logger.Logger
	quiz services.QuizService
}

func NewQuizHandler(baseLog *logger.Logger, quiz services.QuizService) *QuizHandler {
	return &QuizHandler{
		log:  baseLog.With("handler", "QuizHandler"),
		quiz: quiz,
	}
}

// Question generates the next question for a node. Passing session_id resumes
// an existing streak; omitting it starts a fresh session.
func (h *QuizHandler) Question(c *gin.Context) {
	topologyID, ok := parseID(c, "id")
	if !ok {
		return
	}
	nodeID := c.Param("nodeID")

	var sessionID *uuid.UUID
	if raw := c.Query("session_id"); raw != "" {
		parsed, err := uuid.Parse(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid session_id"})
			return
		}
		sessionID = &parsed
	}

	question, session, err := h.quiz.NextQuestion(c.Request.Context(), topologyID, nodeID, sessionID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"question_id":         question.ID,
		"question":            question.Question,
		"session_id":          session.ID,
		"consecutive_correct": session.ConsecutiveCorrect,
	})
}

func (h *QuizHandler) Answer(c *gin.Context) {
	topologyID, ok := parseID(c, "id")
	if !ok {
		return
	}
	questionID, err := uuid.Parse(c.Param("questionID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid questionID"})
		return
	}

	var req struct {
		Answer    string `json:"answer"`
		SessionID string `json:"session_id"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	sessionID, err := uuid.Parse(req.SessionID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid session_id"})
		return
	}

	result, err := h.quiz.SubmitAnswer(c.Request.Context(), topologyID, questionID, sessionID, req.Answer)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}
