package delivery

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	channelrepo "healthpulse-backend/internal/channel/repository"
	"healthpulse-backend/internal/health/domain"
	"healthpulse-backend/internal/health/repository"
	"healthpulse-backend/internal/health/usecase"
)

// HealthHandler handles health score, action item and dashboard requests
type HealthHandler struct {
	healthRepo   repository.HealthScoreRepository
	actionRepo   repository.ActionItemRepository
	channelRepo  channelrepo.ChannelRepository
	orchestrator *usecase.Orchestrator
}

// NewHealthHandler creates a new HealthHandler
func NewHealthHandler(
	healthRepo repository.HealthScoreRepository,
	actionRepo repository.ActionItemRepository,
	channelRepo channelrepo.ChannelRepository,
	orchestrator *usecase.Orchestrator,
) *HealthHandler {
	return &HealthHandler{
		healthRepo:   healthRepo,
		actionRepo:   actionRepo,
		channelRepo:  channelRepo,
		orchestrator: orchestrator,
	}
}

// ListScores returns health scores with pagination
// GET /api/health-scores?limit=50&offset=0
func (h *HealthHandler) ListScores(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	scores, total, err := h.healthRepo.FindAll(limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"health_scores": scores, "total": total})
}

// GetLatestScore returns the most recent score for a customer
// GET /api/customers/:id/health-score
func (h *HealthHandler) GetLatestScore(c *gin.Context) {
	score, err := h.healthRepo.FindLatest(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if score == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "No health score calculated yet"})
		return
	}

	c.JSON(http.StatusOK, score)
}

// GetScoreHistory returns a customer's score history, newest first
// GET /api/customers/:id/health-scores?limit=30
func (h *HealthHandler) GetScoreHistory(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "30"))

	scores, err := h.healthRepo.FindHistory(c.Param("id"), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"health_scores": scores})
}

// Calculate runs the analysis pipeline for one customer on demand
// POST /api/customers/:id/calculate
func (h *HealthHandler) Calculate(c *gin.Context) {
	result, err := h.orchestrator.AnalyzeCustomer(c.Request.Context(), c.Param("id"))
	if err != nil {
		status := http.StatusInternalServerError
		switch {
		case errors.Is(err, usecase.ErrCustomerNotFound):
			status = http.StatusNotFound
		case errors.Is(err, usecase.ErrNoChannels),
			errors.Is(err, usecase.ErrNoMonitoredChannels),
			errors.Is(err, usecase.ErrNoMessages):
			status = http.StatusUnprocessableEntity
		}
		c.JSON(status, gin.H{"error": err.Error(), "result": result})
		return
	}

	c.JSON(http.StatusOK, result)
}

// CalculateAll runs the batch pipeline for all active customers
// POST /api/health-scores/calculate-all
func (h *HealthHandler) CalculateAll(c *gin.Context) {
	results, err := h.orchestrator.RunAll(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error(), "results": results})
		return
	}

	succeeded, failed := 0, 0
	for _, r := range results {
		if r.State == usecase.StatePersisted {
			succeeded++
		} else {
			failed++
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"results":   results,
		"succeeded": succeeded,
		"failed":    failed,
	})
}

// ListActionItems returns action items with optional filters
// GET /api/action-items?customer_id=&status=&priority=&limit=50&offset=0
func (h *HealthHandler) ListActionItems(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	var status *domain.ActionStatus
	if s := c.Query("status"); s != "" {
		st := domain.ActionStatus(s)
		status = &st
	}
	var priority *domain.Priority
	if p := c.Query("priority"); p != "" {
		pr := domain.Priority(p)
		priority = &pr
	}

	items, total, err := h.actionRepo.Find(c.Query("customer_id"), status, priority, limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"action_items": items, "total": total})
}

// UpdateActionStatusRequest updates an action item's lifecycle status
type UpdateActionStatusRequest struct {
	Status domain.ActionStatus `json:"status" binding:"required"`
}

// UpdateActionStatus changes the status of an action item
// PUT /api/action-items/:id/status
func (h *HealthHandler) UpdateActionStatus(c *gin.Context) {
	var req UpdateActionStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	switch req.Status {
	case domain.ActionStatusOpen, domain.ActionStatusInProgress, domain.ActionStatusDone, domain.ActionStatusDismissed:
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid status"})
		return
	}

	item, err := h.actionRepo.UpdateStatus(c.Param("id"), req.Status)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if item == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Action item not found"})
		return
	}

	c.JSON(http.StatusOK, item)
}

// GetDashboard returns the aggregated dashboard summary
// GET /api/dashboard/summary
func (h *HealthHandler) GetDashboard(c *gin.Context) {
	summary, err := h.healthRepo.DashboardSummary()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	monitored, err := h.channelRepo.CountMonitored()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	summary.ChannelsMonitored = monitored

	c.JSON(http.StatusOK, summary)
}
