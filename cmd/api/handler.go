package api

import (
	channelDelivery "healthpulse-backend/internal/channel/delivery"
	channelRepo "healthpulse-backend/internal/channel/repository"
	channelUsecase "healthpulse-backend/internal/channel/usecase"
	customerDelivery "healthpulse-backend/internal/customer/delivery"
	customerRepo "healthpulse-backend/internal/customer/repository"
	healthDelivery "healthpulse-backend/internal/health/delivery"
	healthRepo "healthpulse-backend/internal/health/repository"
	healthUsecase "healthpulse-backend/internal/health/usecase"
	"healthpulse-backend/internal/settings/domain"
	settingsRepo "healthpulse-backend/internal/settings/repository"
	"healthpulse-backend/pkg/config"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	customerHandler *customerDelivery.CustomerHandler
	channelHandler  *channelDelivery.ChannelHandler
	healthHandler   *healthDelivery.HealthHandler
	settingsHandler *SettingsHandler
}

func NewHandler(
	customers customerRepo.CustomerRepository,
	channels channelRepo.ChannelRepository,
	messages channelRepo.MessageRepository,
	scores healthRepo.HealthScoreRepository,
	actions healthRepo.ActionItemRepository,
	settings settingsRepo.SettingRepository,
	ingest *channelUsecase.IngestService,
	orchestrator *healthUsecase.Orchestrator,
	cfg *config.Config,
) *Handler {
	return &Handler{
		customerHandler: customerDelivery.NewCustomerHandler(customers),
		channelHandler:  channelDelivery.NewChannelHandler(channels, messages, customers, ingest, cfg.AnalysisPeriodDays),
		healthHandler:   healthDelivery.NewHealthHandler(scores, actions, channels, orchestrator),
		settingsHandler: NewSettingsHandler(settings, map[string]string{
			domain.KeySlackBotToken: cfg.SlackBotToken,
			domain.KeyGeminiAPIKey:  cfg.GeminiAPIKey,
		}),
	}
}

func (h *Handler) Start(addr string) error {
	gin.SetMode(gin.ReleaseMode)
	r := gin.Default()

	// CORS middleware
	r.Use(func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")
		if origin != "" {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
		} else {
			c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		}

		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE, PATCH")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	SetupRoutes(r, h.customerHandler, h.channelHandler, h.healthHandler, h.settingsHandler)

	return r.Run(addr)
}
