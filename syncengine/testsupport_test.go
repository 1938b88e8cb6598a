package syncengine

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/ScepterCode/Storemaster-sub000/config"
	"github.com/ScepterCode/Storemaster-sub000/localstore"
	"github.com/ScepterCode/Storemaster-sub000/models"
	"github.com/ScepterCode/Storemaster-sub000/remote"
	"github.com/sirupsen/logrus"
)

// fakeAdapter is an in-memory remote backend for engine tests.
type fakeAdapter struct {
	mu sync.Mutex

	records       map[models.EntityKind]map[string]json.RawMessage
	memberships   map[string]*models.OrganizationMember
	organizations map[string]*models.Organization

	failUpdate map[string]error
	failCreate map[string]error

	createdOrgs        int
	createdMemberships int
	updateCalls        int
	createCalls        int
}

func newFakeAdapter() *fakeAdapter {
	return &fakeAdapter{
		records:       make(map[models.EntityKind]map[string]json.RawMessage),
		memberships:   make(map[string]*models.OrganizationMember),
		organizations: make(map[string]*models.Organization),
		failUpdate:    make(map[string]error),
		failCreate:    make(map[string]error),
	}
}

func (f *fakeAdapter) collection(kind models.EntityKind) map[string]json.RawMessage {
	if f.records[kind] == nil {
		f.records[kind] = make(map[string]json.RawMessage)
	}
	return f.records[kind]
}

func (f *fakeAdapter) seed(t *testing.T, kind models.EntityKind, record map[string]any) {
	t.Helper()
	raw, err := json.Marshal(record)
	if err != nil {
		t.Fatalf("seed %s: %v", kind, err)
	}
	id, _ := record["id"].(string)
	f.mu.Lock()
	f.collection(kind)[id] = raw
	f.mu.Unlock()
}

func (f *fakeAdapter) FetchAll(ctx context.Context, kind models.EntityKind, userID string, orgID string) ([]json.RawMessage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]json.RawMessage, 0, len(f.collection(kind)))
	for _, raw := range f.collection(kind) {
		out = append(out, raw)
	}
	return out, nil
}

func (f *fakeAdapter) Create(ctx context.Context, kind models.EntityKind, record json.RawMessage, userID string) (json.RawMessage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.createCalls++

	var m map[string]any
	if err := json.Unmarshal(record, &m); err != nil {
		return nil, err
	}
	id, _ := m["id"].(string)
	if err := f.failCreate[id]; err != nil {
		return nil, err
	}
	f.collection(kind)[id] = record
	return record, nil
}

func (f *fakeAdapter) Update(ctx context.Context, kind models.EntityKind, record json.RawMessage) (json.RawMessage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updateCalls++

	var m map[string]any
	if err := json.Unmarshal(record, &m); err != nil {
		return nil, err
	}
	id, _ := m["id"].(string)
	if err := f.failUpdate[id]; err != nil {
		return nil, err
	}
	if _, ok := f.collection(kind)[id]; !ok {
		return nil, remote.ErrNotFound
	}
	f.collection(kind)[id] = record
	return record, nil
}

func (f *fakeAdapter) Delete(ctx context.Context, kind models.EntityKind, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.collection(kind), id)
	return nil
}

func (f *fakeAdapter) BulkUpdate(ctx context.Context, filter remote.BulkFilter, patch remote.BulkPatch) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var affected int64
	for id, raw := range f.collection(filter.Kind) {
		var m map[string]any
		if err := json.Unmarshal(raw, &m); err != nil {
			continue
		}
		if owner, _ := m["userId"].(string); owner != filter.UserId {
			continue
		}
		if filter.OrganizationNull {
			if org, ok := m["organizationId"].(string); ok && org != "" {
				continue
			}
		}
		if patch.OrganizationId != nil {
			m["organizationId"] = *patch.OrganizationId
		}
		updated, err := json.Marshal(m)
		if err != nil {
			continue
		}
		f.collection(filter.Kind)[id] = updated
		affected++
	}
	return affected, nil
}

func (f *fakeAdapter) FindMembership(ctx context.Context, userID string) (*models.OrganizationMember, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.memberships[userID], nil
}

func (f *fakeAdapter) FindOrganization(ctx context.Context, id string) (*models.Organization, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.organizations[id], nil
}

func (f *fakeAdapter) CreateOrganization(ctx context.Context, org *models.Organization) (*models.Organization, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.createdOrgs++
	f.organizations[org.ID] = org
	return org, nil
}

func (f *fakeAdapter) CreateMembership(ctx context.Context, member *models.OrganizationMember) (*models.OrganizationMember, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.createdMemberships++
	f.memberships[member.UserId] = member
	return member, nil
}

var _ remote.Adapter = (*fakeAdapter)(nil)

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(nopWriter{})
	return logger
}

type nopWriter struct{}

func (nopWriter) Write(p []byte) (int, error) { return len(p), nil }

var testNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func newTestEngine(t *testing.T, store localstore.Store, adapter remote.Adapter) *Engine {
	t.Helper()
	engine, err := New(Config{
		Store:   store,
		Adapter: adapter,
		Logger:  quietLogger(),
		Retry: config.SyncRetryConfig{
			MaxAttempts: 3,
			BaseBackoff: 5 * time.Second,
			MaxBackoff:  time.Minute,
		},
		Now: func() time.Time { return testNow },
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return engine
}

func seedCollection(t *testing.T, store localstore.Store, kind models.EntityKind, records ...map[string]any) {
	t.Helper()
	raws := make([]json.RawMessage, 0, len(records))
	for _, record := range records {
		raw, err := json.Marshal(record)
		if err != nil {
			t.Fatalf("seed %s: %v", kind, err)
		}
		raws = append(raws, raw)
	}
	if err := store.SetAll(context.Background(), kind, raws); err != nil {
		t.Fatalf("seed %s: %v", kind, err)
	}
}

func loadCollection(t *testing.T, store localstore.Store, kind models.EntityKind) []map[string]any {
	t.Helper()
	raws, err := store.GetAll(context.Background(), kind)
	if err != nil {
		t.Fatalf("load %s: %v", kind, err)
	}
	out := make([]map[string]any, 0, len(raws))
	for _, raw := range raws {
		var m map[string]any
		if err := json.Unmarshal(raw, &m); err != nil {
			t.Fatalf("decode %s: %v", kind, err)
		}
		out = append(out, m)
	}
	return out
}
