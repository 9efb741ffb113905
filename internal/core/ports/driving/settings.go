package driving

import "github.com/custodia-labs/related-posts/internal/core/domain"

// SettingsService resolves and persists application settings.
type SettingsService interface {
	// Get returns settings from the config file with environment overrides
	// applied over defaults.
	Get() (domain.Settings, error)

	// Save persists settings to the config file.
	Save(settings domain.Settings) error

	// Set stores a single dot-notation key after validating the result.
	Set(key, value string) error
}
