package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/knowledgegraph-backend/internal/logger"
	"github.com/yungbote/knowledgegraph-backend/internal/services"
	"github.com/yungbote/knowledgegraph-backend/internal/status"
	"github.com/yungbote/knowledgegraph-backend/internal/types"
)

type TopologyHandler struct {
	log        *logger.Logger
	generation services.GenerationService
	query      services.GraphQueryService
	statuses   status.Store
	// buildTimeout bounds the detached build goroutine.
	buildTimeout time.Duration
}

func NewTopologyHandler(baseLog *logger.Logger, generation services.GenerationService, query services.GraphQueryService, statuses status.Store, buildTimeout time.Duration) *TopologyHandler {
	if buildTimeout <= 0 {
		buildTimeout = 10 * time.Minute
	}
	return &TopologyHandler{
		log:          baseLog.With("handler", "TopologyHandler"),
		generation:   generation,
		query:        query,
		statuses:     statuses,
		buildTimeout: buildTimeout,
	}
}

// Generate accepts document text and kicks off an asynchronous build. The
// caller polls the status endpoint with the returned topology id.
func (h *TopologyHandler) Generate(c *gin.Context) {
	var req struct {
		Content  string `json:"content"`
		MaxNodes int    `json:"max_nodes"`
		UserID   string `json:"user_id"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if req.Content == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "content is required"})
		return
	}
	if req.MaxNodes <= 0 {
		req.MaxNodes = 25
	}

	topologyID := uuid.New()

	// Seed the status entry before returning so an immediate poll never 404s.
	_ = h.statuses.Set(c.Request.Context(), topologyID, status.BuildStatus{
		Status:     status.StateProcessing,
		Progress:   0,
		Message:    "Starting document processing...",
		TextLength: len(req.Content),
		MaxNodes:   req.MaxNodes,
	})

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), h.buildTimeout)
		defer cancel()
		if _, err := h.generation.Generate(ctx, topologyID, req.Content, req.MaxNodes, req.UserID); err != nil {
			h.log.Error("Background generation failed", "topology_id", topologyID, "error", err)
		}
	}()

	c.JSON(http.StatusAccepted, gin.H{"topology_id": topologyID, "status": status.StateProcessing})
}

// Get returns the persisted graph, or the in-flight build status when the
// graph is not ready yet.
func (h *TopologyHandler) Get(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	st, found, _ := h.statuses.Get(c.Request.Context(), id)
	if found && st.Status == status.StateProcessing {
		c.JSON(http.StatusOK, gin.H{"status": st.Status, "progress": st.Progress, "message": st.Message})
		return
	}
	view, err := h.query.GetGraph(c.Request.Context(), id)
	if err != nil {
		if found && st.Status == status.StateError {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"status": st.Status, "error": st.Message})
			return
		}
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (h *TopologyHandler) Status(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	st, found, err := h.statuses.Get(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	if !found {
		// Live entries age out of the status store; fall back to the
		// persisted run record.
		run, err := h.query.LatestRun(c.Request.Context(), id)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"status":   runStateFor(run.Status),
			"progress": run.Progress,
			"stage":    run.Stage,
			"message":  run.Error,
		})
		return
	}
	c.JSON(http.StatusOK, st)
}

func (h *TopologyHandler) List(c *gin.Context) {
	rows, err := h.query.ListTopologies(c.Request.Context(), c.Query("user_id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"topologies": rows})
}

// Regenerate rebuilds the graph from the stored document, preserving mastery
// state for concepts that survive. It runs synchronously.
func (h *TopologyHandler) Regenerate(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req struct {
		MaxNodes int `json:"max_nodes"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if req.MaxNodes <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "max_nodes must be positive"})
		return
	}
	graph, err := h.generation.Regenerate(c.Request.Context(), id, req.MaxNodes)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, graph)
}

func (h *TopologyHandler) SetMaxNodes(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req struct {
		MaxNodes int `json:"max_nodes"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if req.MaxNodes <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "max_nodes must be positive"})
		return
	}
	if err := h.query.SetMaxNodes(c.Request.Context(), id, req.MaxNodes); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"max_nodes": req.MaxNodes})
}

// Ignore returns a filtered view of the graph with the listed nodes hidden.
// Nothing is persisted.
func (h *TopologyHandler) Ignore(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req struct {
		IgnoredNodes []string `json:"ignored_nodes"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	view, err := h.query.FilterIgnored(c.Request.Context(), id, req.IgnoredNodes)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (h *TopologyHandler) SetMastered(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req struct {
		Mastered bool `json:"mastered"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	node, err := h.query.SetNodeMastered(c.Request.Context(), id, c.Param("nodeID"), req.Mastered)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, node)
}

// runStateFor maps persisted run states onto the polling vocabulary.
func runStateFor(runStatus string) string {
	switch runStatus {
	case types.RunStatusSucceeded:
		return status.StateCompleted
	case types.RunStatusFailed:
		return status.StateError
	default:
		return status.StateProcessing
	}
}

func parseID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + name})
		return uuid.Nil, false
	}
	return id, true
}
