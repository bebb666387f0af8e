package delivery

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"healthpulse-backend/internal/channel/domain"
	"healthpulse-backend/internal/channel/repository"
	"healthpulse-backend/internal/channel/usecase"
	customerrepo "healthpulse-backend/internal/customer/repository"
)

// ChannelHandler handles channel management HTTP requests
type ChannelHandler struct {
	channelRepo  repository.ChannelRepository
	messageRepo  repository.MessageRepository
	customerRepo customerrepo.CustomerRepository
	ingest       *usecase.IngestService
	windowDays   int
}

// NewChannelHandler creates a new ChannelHandler
func NewChannelHandler(
	channelRepo repository.ChannelRepository,
	messageRepo repository.MessageRepository,
	customerRepo customerrepo.CustomerRepository,
	ingest *usecase.IngestService,
	windowDays int,
) *ChannelHandler {
	return &ChannelHandler{
		channelRepo:  channelRepo,
		messageRepo:  messageRepo,
		customerRepo: customerRepo,
		ingest:       ingest,
		windowDays:   windowDays,
	}
}

// ListChannels returns channels with pagination and message counts
// GET /api/channels?limit=50&offset=0
func (h *ChannelHandler) ListChannels(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	channels, total, err := h.channelRepo.FindAll(limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	type channelWithCount struct {
		Channel      interface{} `json:"channel"`
		MessageCount int64       `json:"message_count"`
	}

	out := make([]channelWithCount, 0, len(channels))
	for _, ch := range channels {
		count, err := h.messageRepo.CountByChannel(ch.ID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		out = append(out, channelWithCount{Channel: ch, MessageCount: count})
	}

	c.JSON(http.StatusOK, gin.H{"channels": out, "total": total})
}

// SyncChannels imports the channel list from Slack
// POST /api/channels/sync
func (h *ChannelHandler) SyncChannels(c *gin.Context) {
	created, err := h.ingest.SyncChannels(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"channels_created": created})
}

// SetMonitoringRequest toggles monitoring for a channel
type SetMonitoringRequest struct {
	IsMonitored *bool `json:"is_monitored" binding:"required"`
}

// SetMonitoring enables or disables monitoring for a channel
// PUT /api/channels/:id/monitoring
func (h *ChannelHandler) SetMonitoring(c *gin.Context) {
	var req SetMonitoringRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	channel, err := h.channelRepo.FindByID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if channel == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Channel not found"})
		return
	}

	channel.IsMonitored = *req.IsMonitored
	if err := h.channelRepo.Update(channel); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, channel)
}

// UpdateChannelRequest patches channel metadata
type UpdateChannelRequest struct {
	Name        *string             `json:"name"`
	ChannelType *domain.ChannelType `json:"channel_type"`
}

// UpdateChannel updates a channel's name or type
// PUT /api/channels/:id
func (h *ChannelHandler) UpdateChannel(c *gin.Context) {
	var req UpdateChannelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	channel, err := h.channelRepo.FindByID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if channel == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Channel not found"})
		return
	}

	if req.Name != nil {
		channel.Name = *req.Name
	}
	if req.ChannelType != nil {
		switch *req.ChannelType {
		case domain.ChannelTypeCustomerSupport, domain.ChannelTypeShared, domain.ChannelTypeDedicated:
			channel.ChannelType = *req.ChannelType
		default:
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid channel type"})
			return
		}
	}

	if err := h.channelRepo.Update(channel); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, channel)
}

// LinkCustomerRequest links a channel to a customer
type LinkCustomerRequest struct {
	CustomerID string `json:"customer_id" binding:"required"`
}

// LinkCustomer links a channel to a customer
// PUT /api/channels/:id/link
func (h *ChannelHandler) LinkCustomer(c *gin.Context) {
	var req LinkCustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	channel, err := h.channelRepo.FindByID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if channel == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Channel not found"})
		return
	}

	customer, err := h.customerRepo.FindByID(req.CustomerID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if customer == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Customer not found"})
		return
	}

	channel.CustomerID = &customer.ID
	if err := h.channelRepo.Update(channel); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, channel)
}

// UnlinkCustomer removes a channel's customer link
// PUT /api/channels/:id/unlink
func (h *ChannelHandler) UnlinkCustomer(c *gin.Context) {
	channel, err := h.channelRepo.FindByID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if channel == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Channel not found"})
		return
	}

	channel.CustomerID = nil
	if err := h.channelRepo.Update(channel); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, channel)
}

// FetchHistory ingests the channel's recent history on demand
// POST /api/channels/:id/fetch-history
func (h *ChannelHandler) FetchHistory(c *gin.Context) {
	channel, err := h.channelRepo.FindByID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if channel == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Channel not found"})
		return
	}

	customerSlackID := ""
	if channel.CustomerID != nil {
		customer, err := h.customerRepo.FindByID(*channel.CustomerID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		if customer != nil {
			customerSlackID = customer.SlackUserID
		}
	}

	until := time.Now()
	since := until.AddDate(0, 0, -h.windowDays)
	stored, err := h.ingest.FetchChannelHistory(c.Request.Context(), channel, customerSlackID, since, until)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"channel_id":   channel.ID,
		"new_messages": stored,
	})
}
