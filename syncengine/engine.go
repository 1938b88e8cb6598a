package syncengine

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/ScepterCode/Storemaster-sub000/config"
	"github.com/ScepterCode/Storemaster-sub000/localstore"
	"github.com/ScepterCode/Storemaster-sub000/models"
	"github.com/ScepterCode/Storemaster-sub000/remote"
	"github.com/bsm/redislock"
	"github.com/sirupsen/logrus"
)

// MetadataPolicy decides the synced flag written onto records that predate
// sync metadata. AssumeSynced keeps the shipped behavior: untagged data is
// taken to be already on the remote store.
type MetadataPolicy int

const (
	AssumeSynced MetadataPolicy = iota
	AssumeDirty
)

// Identity is the authenticated user a migration or sync pass runs for.
// OrgID is optional; when set, sync passes only touch records that belong
// to that organization (or carry no organization at all).
type Identity struct {
	ID    string
	Name  string
	Email string
	OrgID string
}

type Config struct {
	Store   localstore.Store
	Adapter remote.Adapter
	Logger  *logrus.Logger
	// Locker guards the multi-tenant migration against a second concurrent
	// run for the same user (two devices). Optional.
	Locker *redislock.Client
	Retry  config.SyncRetryConfig
	Policy MetadataPolicy
	// Now is injectable for tests; defaults to time.Now.
	Now func() time.Time
	// Publisher hands an async sync request to the broker. Defaults to
	// PublishSyncRequest.
	Publisher func(ctx context.Context, payload SyncPubSubPayload) error
}

// Engine owns all sync/migration state: the in-flight flag, the cached
// status, the store and adapter handles. Construct one per authenticated
// session and pass it by handle; there is no package-level state.
type Engine struct {
	store   localstore.Store
	adapter remote.Adapter
	logger  *logrus.Logger
	locker  *redislock.Client
	retry   config.SyncRetryConfig
	policy  MetadataPolicy
	now     func() time.Time
	publish func(ctx context.Context, payload SyncPubSubPayload) error

	mu         sync.Mutex
	syncing    bool
	lastSyncAt *time.Time
	cached     *models.SyncStatus
}

func New(cfg Config) (*Engine, error) {
	if cfg.Store == nil {
		return nil, errors.New("syncengine: store is required")
	}
	if cfg.Adapter == nil {
		return nil, errors.New("syncengine: adapter is required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = config.GetLogger()
	}
	retry := cfg.Retry
	if retry.MaxAttempts == 0 {
		retry = config.GetSyncRetryConfig()
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	publish := cfg.Publisher
	if publish == nil {
		publish = PublishSyncRequest
	}
	return &Engine{
		store:   cfg.Store,
		adapter: cfg.Adapter,
		logger:  logger,
		locker:  cfg.Locker,
		retry:   retry,
		policy:  cfg.Policy,
		now:     now,
		publish: publish,
	}, nil
}

// Syncing reports whether a pass is currently in flight.
func (e *Engine) Syncing() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.syncing
}

// beginSync sets the in-flight flag; a concurrent caller is rejected, not
// queued.
func (e *Engine) beginSync() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.syncing {
		return ErrSyncInProgress
	}
	e.syncing = true
	return nil
}

func (e *Engine) endSync(finishedAt time.Time) {
	e.mu.Lock()
	e.syncing = false
	e.lastSyncAt = &finishedAt
	e.mu.Unlock()
}
