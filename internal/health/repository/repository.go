package repository

import "healthpulse-backend/internal/health/domain"

// DashboardSummary aggregates the latest health picture across customers
type DashboardSummary struct {
	AverageHealthScore float64 `json:"average_health_score"`
	AtRiskCount        int64   `json:"at_risk_count"`
	OpenActionsCount   int64   `json:"open_actions_count"`
	ChannelsMonitored  int64   `json:"channels_monitored"`
}

// HealthScoreRepository defines data access for health scores and the
// action items produced with them.
type HealthScoreRepository interface {
	// SaveResult commits a health score and its action items atomically:
	// either all rows become visible or none do.
	SaveResult(score *domain.HealthScore, items []*domain.ActionItem) error

	FindByID(id string) (*domain.HealthScore, error)
	FindLatest(customerID string) (*domain.HealthScore, error)
	FindHistory(customerID string, limit int) ([]*domain.HealthScore, error)
	FindAll(limit, offset int) ([]*domain.HealthScore, int64, error)
	DashboardSummary() (*DashboardSummary, error)
}

// ActionItemRepository defines data access for action items
type ActionItemRepository interface {
	FindByID(id string) (*domain.ActionItem, error)
	Find(customerID string, status *domain.ActionStatus, priority *domain.Priority, limit, offset int) ([]*domain.ActionItem, int64, error)
	UpdateStatus(id string, status domain.ActionStatus) (*domain.ActionItem, error)
}
