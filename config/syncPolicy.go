package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// MigrationAssumeDirty flips the metadata-migration default for records that
// predate sync metadata: instead of tagging them synced=true (assume the
// remote already has them), tag them synced=false so the next pass re-pushes.
//
// Set via env:
// - MIGRATION_ASSUME_DIRTY=true
func MigrationAssumeDirty() bool {
	v := strings.ToLower(strings.TrimSpace(os.Getenv("MIGRATION_ASSUME_DIRTY")))
	return v == "1" || v == "true" || v == "yes" || v == "y"
}

// SyncRetryConfig tunes per-record retry behaviour.
//
// Env overrides (optional):
// - SYNC_MAX_ATTEMPTS (default 10)
// - SYNC_BASE_BACKOFF_SECONDS (default 5)
// - SYNC_MAX_BACKOFF_SECONDS (default 600)
type SyncRetryConfig struct {
	MaxAttempts int
	BaseBackoff time.Duration
	MaxBackoff  time.Duration
}

func GetSyncRetryConfig() SyncRetryConfig {
	cfg := SyncRetryConfig{
		MaxAttempts: 10,
		BaseBackoff: 5 * time.Second,
		MaxBackoff:  10 * time.Minute,
	}

	if v := os.Getenv("SYNC_MAX_ATTEMPTS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.MaxAttempts = n
		}
	}
	if v := os.Getenv("SYNC_BASE_BACKOFF_SECONDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.BaseBackoff = time.Duration(n) * time.Second
		}
	}
	if v := os.Getenv("SYNC_MAX_BACKOFF_SECONDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.MaxBackoff = time.Duration(n) * time.Second
		}
	}

	return cfg
}

// StartupSyncDelay is the warm-up delay before the automatic post-login sync
// pass fires.
//
// Set via env:
// - STARTUP_SYNC_DELAY_SECONDS (default 3)
func StartupSyncDelay() time.Duration {
	if v := os.Getenv("STARTUP_SYNC_DELAY_SECONDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			return time.Duration(n) * time.Second
		}
	}
	return 3 * time.Second
}

// SyncStatusPollInterval is how often the cached sync status is refreshed so
// pending counts reflect intervening user edits.
//
// Set via env:
// - SYNC_STATUS_POLL_SECONDS (default 5)
func SyncStatusPollInterval() time.Duration {
	if v := os.Getenv("SYNC_STATUS_POLL_SECONDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return time.Duration(n) * time.Second
		}
	}
	return 5 * time.Second
}
