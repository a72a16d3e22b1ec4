package service

import "time"

// LogFilter supports journal filtering by time range and type.
type LogFilter struct {
	From time.Time // inclusive; zero means no lower bound
	To   time.Time // inclusive; zero means no upper bound
	Type string    // "", "ACTIVE_CHANGE", "MODE_CHANGE", "STATE_CHANGE", "IDENTIFY", "STARTUP"
}

// AuthConfig carries token settings for controller accounts.
type AuthConfig struct {
	SigningKey string
	TokenTTL   time.Duration
}
