package config

const (
	DefaultEndpointTimeoutMS = 180000
	DefaultMaxUploadMB       = 10

	DefaultProviderMaxRetries = 3

	DefaultSourceTokenLimit = 12000

	DefaultPlaybackFallbackMS = 5000
)
