package main

import (
	"context"
	"log"
	"time"

	api "healthpulse-backend/cmd/api"
	channeldomain "healthpulse-backend/internal/channel/domain"
	channelRepo "healthpulse-backend/internal/channel/repository"
	channelUsecase "healthpulse-backend/internal/channel/usecase"
	customerdomain "healthpulse-backend/internal/customer/domain"
	customerRepo "healthpulse-backend/internal/customer/repository"
	healthdomain "healthpulse-backend/internal/health/domain"
	healthRepo "healthpulse-backend/internal/health/repository"
	"healthpulse-backend/internal/health/scheduler"
	healthUsecase "healthpulse-backend/internal/health/usecase"
	settingsdomain "healthpulse-backend/internal/settings/domain"
	settingsRepo "healthpulse-backend/internal/settings/repository"
	"healthpulse-backend/pkg/ai"
	"healthpulse-backend/pkg/config"
	"healthpulse-backend/pkg/database"
	"healthpulse-backend/pkg/slackclient"
)

// batchRunnerAdapter adapts the orchestrator's batch run to the scheduler's
// BatchRunner interface, discarding the per-customer results.
type batchRunnerAdapter struct {
	orchestrator *healthUsecase.Orchestrator
}

func (a *batchRunnerAdapter) RunAll(ctx context.Context) error {
	_, err := a.orchestrator.RunAll(ctx)
	return err
}

// resolveSecret prefers the environment value, falling back to the stored
// runtime setting.
func resolveSecret(envValue, key string, settings settingsRepo.SettingRepository) string {
	if envValue != "" {
		return envValue
	}
	stored, err := settings.Get(key)
	if err != nil {
		log.Printf("[Config] failed to read stored setting %s: %v", key, err)
		return ""
	}
	return stored
}

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize database
	db, err := database.NewPostgresConnection(cfg)
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}

	// Auto-migrate database schemas
	if err := db.AutoMigrate(
		&customerdomain.Customer{},
		&channeldomain.Channel{},
		&channeldomain.Message{},
		&healthdomain.HealthScore{},
		&healthdomain.ActionItem{},
		&settingsdomain.AppSetting{},
	); err != nil {
		log.Fatal("Failed to migrate database:", err)
	}

	// Initialize repositories (dependency injection)
	customers := customerRepo.NewGormCustomerRepository(db)
	channels := channelRepo.NewGormChannelRepository(db)
	messages := channelRepo.NewGormMessageRepository(db)
	scores := healthRepo.NewGormHealthScoreRepository(db)
	actions := healthRepo.NewGormActionItemRepository(db)
	settings := settingsRepo.NewGormSettingRepository(db)

	// Initialize Slack client
	slackToken := resolveSecret(cfg.SlackBotToken, settingsdomain.KeySlackBotToken, settings)
	if slackToken == "" {
		log.Println("[Slack] no bot token configured, channel sync and ingestion will fail until one is set")
	}
	slackClient := slackclient.NewClient(slackToken)

	// Initialize AI inference with retry wrapper
	geminiKey := resolveSecret(cfg.GeminiAPIKey, settingsdomain.KeyGeminiAPIKey, settings)
	inference, err := ai.NewInferenceService(ai.Config{
		Provider:      ai.ProviderType(cfg.AIProvider),
		GeminiAPIKey:  geminiKey,
		GeminiModel:   cfg.GeminiModel,
		OllamaBaseURL: cfg.OllamaBaseURL,
		OllamaModel:   cfg.OllamaModel,
		Timeout:       cfg.AITimeout,
	})
	if err != nil {
		log.Fatal("Failed to initialize AI service:", err)
	}
	log.Printf("AI service initialized with provider: %s", cfg.AIProvider)
	retrying := ai.NewRetryService(inference, cfg.AIMaxRetries, time.Second)

	// Initialize ingestion and scoring agents
	ingest := channelUsecase.NewIngestService(channels, messages, slackClient)
	sentimentAgent := healthUsecase.NewSentimentAgent(retrying, cfg.MessageBatchSize)
	scoreAgent := healthUsecase.NewHealthScoreAgent()
	churnAgent := healthUsecase.NewChurnAgent(cfg.RiskThreshold, 5)
	actionAgent := healthUsecase.NewActionItemAgent(retrying)

	orchestrator := healthUsecase.NewOrchestrator(
		customers, channels, messages, scores, ingest,
		sentimentAgent, scoreAgent, churnAgent, actionAgent,
		cfg.AnalysisPeriodDays, cfg.ScoreHistoryLimit,
	)

	// Start the daily calculation scheduler
	sched := scheduler.NewDailyScheduler(&batchRunnerAdapter{orchestrator: orchestrator}, cfg.HealthCalcHour)
	sched.Start()

	// Initialize HTTP handler
	handler := api.NewHandler(customers, channels, messages, scores, actions, settings, ingest, orchestrator, cfg)

	// Start server
	log.Printf("Server starting on port %s", cfg.Port)
	if err := handler.Start(":" + cfg.Port); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}
