package cfg

import (
	"cmp"
	"fmt"

	"github.com/jessevdk/go-flags"
)

// Version is set at build time via -ldflags
var Version = "dev"

func GetVersion() string {
	return cmp.Or(Version, "unknown")
}

type rawCfg struct {
	// Storage configuration
	DBPath string `long:"db-path" env:"DB_PATH" default:"./feedkeep.db" description:"Path to the SQLite database file"`

	// Collection configuration
	SubscriptionsFile  string `long:"subscriptions" env:"SUBSCRIPTIONS_FILE" description:"YAML file with feed subscriptions to register at startup (optional)"`
	WorkerCount        int    `long:"worker-count" env:"WORKER_COUNT" default:"2" description:"Number of concurrent feed collection workers"`
	CollectionInterval int    `long:"collection-interval" env:"COLLECTION_INTERVAL" default:"5" description:"Bulk collection interval in minutes"`
	RequestTimeout     int    `long:"request-timeout" env:"REQUEST_TIMEOUT" default:"10" description:"HTTP request timeout in seconds"`
	RetentionDays      int    `long:"retention-days" env:"RETENTION_DAYS" default:"30" description:"Entries older than this many days are removed by cleanup"`
	CleanupInterval    int    `long:"cleanup-interval" env:"CLEANUP_INTERVAL" default:"24" description:"Retention cleanup interval in hours"`

	// Application metadata
	UserAgent string `long:"user-agent" env:"USER_AGENT" default:"feedkeep/1.0" description:"User agent string for feed requests"`
	Debug     bool   `long:"debug" env:"DEBUG" description:"Enable debug logging"`
}

var globalCfg *Cfg

func Load() (*Cfg, error) {
	var raw rawCfg

	parser := flags.NewParser(&raw, flags.Default)

	if _, err := parser.Parse(); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok {
			if flagsErr.Type == flags.ErrHelp {
				return nil, nil
			}
		}
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}

	cfg := &Cfg{
		DBPath:             raw.DBPath,
		SubscriptionsFile:  raw.SubscriptionsFile,
		WorkerCount:        raw.WorkerCount,
		CollectionInterval: raw.CollectionInterval,
		RequestTimeout:     raw.RequestTimeout,
		RetentionDays:      raw.RetentionDays,
		CleanupInterval:    raw.CleanupInterval,
		UserAgent:          raw.UserAgent,
		Debug:              raw.Debug,
		Version:            GetVersion(),
	}

	globalCfg = cfg

	return cfg, nil
}

func Get() *Cfg {
	if globalCfg == nil {
		panic("configuration not loaded - call cfg.Load() first")
	}
	return globalCfg
}

// Set replaces the global configuration. Intended for tests.
func Set(cfg *Cfg) {
	globalCfg = cfg
}
