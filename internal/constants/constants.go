package constants

import "time"

const AppName = "gridlink"

const Version = "0.1.0"

// Network defaults
const (
	DefaultPort       = "3001"
	ReadHeaderTimeout = 10 * time.Second
	IdleTimeout       = 120 * time.Second
	ShutdownTimeout   = 10 * time.Second
	CleanupInterval   = 30 * time.Second
)

// Session settings
const (
	DefaultSessionTTL = 900 * time.Second
	MinPinLength      = 4
	MaxPinLength      = 12
)

// Export settings
const (
	DefaultExportWorkers = 4
	DefaultMeasurement   = "energy"
	DefaultBucket        = "energy-data"
	WatchPollInterval    = time.Second
)

// Request limits
const (
	MaxBodySize     = 5 * 1024 * 1024 // 5mb JSON body limit of the API
	MaxAuthAttempts = 5
	BlockDuration   = 15 * time.Minute
)

// Storage settings
const (
	DefaultPresignExpiry = time.Hour
	MaxPresignExpiry     = 24 * time.Hour
)

// Redis keys
const (
	SessionKeyPrefix = "gridlink:session:"
)

// Messages
const (
	MsgInvalidJSON      = "Invalid JSON"
	MsgInvalidPayload   = "Invalid payload"
	MsgMethodNotAllowed = "Method not allowed"
	MsgMissingBearer    = "Missing bearer token"
	MsgSessionExpired   = "Session expired or invalid"
	MsgInvalidPin       = "Invalid PIN"
	MsgTokenRequired    = "token is required"
	MsgJobNotFound      = "Job not found"
	MsgJobNotReady      = "Job not ready"
	MsgJobNoData        = "No data available for this job"
	MsgS3NotConfigured  = "S3 not configured"
	MsgTooManyAttempts  = "Too many failed attempts"
)
