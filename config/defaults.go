package config

import "time"

const (
	DefaultChatWorkBaseURL   = "https://api.chatwork.com/v2"
	DefaultNotifyTimeout     = 10 * time.Second
	DefaultCheckInterval     = 30 * time.Second
	DefaultIdleInterval      = 60 * time.Second
	DefaultErrorCooldown     = 60 * time.Second
	DefaultTargetDelay       = 2 * time.Second
	DefaultSleepStart        = 1
	DefaultSleepEnd          = 8
	DefaultActivityThreshold = 3
	DefaultMaxRetries        = 3
	DefaultRetryDelay        = 3 * time.Second
	DefaultPageTimeout       = 45 * time.Second
	DefaultSettleDelay       = 3 * time.Second
	DefaultMinListings       = 3
	DefaultMaxListings       = 20
	DefaultTimezone          = "Asia/Tokyo"
	DefaultUserAgent         = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36"
)
