package settings

import "time"

const (
	defaultConfirmationTimeout      = 10 * time.Minute
	defaultConfirmationPollInterval = 5 * time.Second
	defaultRequestTimeout           = 30 * time.Second
	defaultHeightCacheTTL           = 10 * time.Second
	defaultRecordCacheTTL           = 30 * time.Second

	defaultRequestsPerSecond = 10
)
