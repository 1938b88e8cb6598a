package syncengine

import (
	"context"
	"errors"
	"time"

	"github.com/ScepterCode/Storemaster-sub000/config"
)

// RunStartupSync waits out the warm-up delay, then pushes whatever is
// pending. Nothing pending means nothing happens; a pass already running
// elsewhere is not an error.
func (e *Engine) RunStartupSync(ctx context.Context, user Identity) {
	select {
	case <-ctx.Done():
		return
	case <-time.After(config.StartupSyncDelay()):
	}

	pending, err := e.HasPendingSync(ctx)
	if err != nil {
		config.LogError(e.logger, "syncengine", "RunStartupSync", "check pending", nil, err)
		return
	}
	if !pending {
		return
	}

	if _, err := e.SyncAll(ctx, user); err != nil && !errors.Is(err, ErrSyncInProgress) {
		config.LogError(e.logger, "syncengine", "RunStartupSync", "sync pass", nil, err)
	}
}

// StartStatusPoller refreshes the cached sync status on an interval until
// the context is cancelled. Callers run it in its own goroutine.
func (e *Engine) StartStatusPoller(ctx context.Context) {
	ticker := time.NewTicker(config.SyncStatusPollInterval())
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := e.GetSyncStatus(ctx); err != nil {
				config.LogError(e.logger, "syncengine", "StartStatusPoller", "refresh status", nil, err)
			}
		}
	}
}
