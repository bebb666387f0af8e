package domain

import "time"

// Setting keys the backend understands
const (
	KeySlackBotToken = "slack_bot_token"
	KeyGeminiAPIKey  = "gemini_api_key"
)

// AppSetting is one runtime-configurable key/value pair (API tokens and the
// like). Environment variables take priority over stored settings.
type AppSetting struct {
	ID        string    `json:"id" gorm:"primaryKey"`
	Key       string    `json:"key" gorm:"uniqueIndex;not null"`
	Value     string    `json:"-" gorm:"type:text;not null"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
