package module

import (
	"time"

	"equilex/internal/platform/config"
)

// Options holds configuration settings for the resolve module
type Options struct {
	RulesPath     string
	LookupTimeout time.Duration
	TopN          int
	CacheSize     int
}

// FromConfig reads configuration settings from the config.Conf
func FromConfig(cfg config.Conf) Options {
	rf := cfg.Prefix("RESOLVE_")
	return Options{
		RulesPath:     rf.MayString("RULES_PATH", ""),
		LookupTimeout: rf.MayDuration("LOOKUP_TIMEOUT", 3*time.Second),
		TopN:          rf.MayInt("TOP_N", 5),
		CacheSize:     rf.MayInt("CACHE_SIZE", 4096),
	}
}
