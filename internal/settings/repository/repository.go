package repository

// SettingRepository defines data access for runtime settings
type SettingRepository interface {
	Get(key string) (string, error)
	Set(key, value string) error
	Keys() ([]string, error)
}
