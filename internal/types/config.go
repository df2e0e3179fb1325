package types

type RunMode string

const (
	// ModeLocal is for development: console logs and any CORS origin
	ModeLocal RunMode = "local"
	// ModeAPI is the deployed server: JSON logs and configured CORS origins only
	ModeAPI RunMode = "api"
)

type LogLevel string

const (
	LogLevelDebug LogLevel = "debug"
	LogLevelInfo  LogLevel = "info"
	LogLevelWarn  LogLevel = "warn"
	LogLevelError LogLevel = "error"
)
