package service

import (
	"context"
	"encoding/json"
	"strconv"
	"sync"

	"github.com/MKhiriev/go-plan-keeper/internal/store"
	"github.com/MKhiriev/go-plan-keeper/models"
)

// memCache: LocalCache в памяти. Значения проходят через JSON,
// как и в настоящем SQLite-кэше.
type memCache struct {
	mu   sync.Mutex
	data map[string][]byte
}

func newMemCache() *memCache {
	return &memCache{data: make(map[string][]byte)}
}

func (m *memCache) Get(_ context.Context, key string, dest any) error {
	m.mu.Lock()
	raw, ok := m.data[key]
	m.mu.Unlock()
	if !ok {
		return store.ErrCacheMiss
	}
	return json.Unmarshal(raw, dest)
}

func (m *memCache) Put(_ context.Context, key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = raw
	return nil
}

func (m *memCache) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

func (m *memCache) has(key string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.data[key]
	return ok
}

// staticSessions: SessionSource с подменяемой сессией.
type staticSessions struct {
	mu      sync.Mutex
	session *models.Session
}

func activeSessions(userID int64) *staticSessions {
	return &staticSessions{session: &models.Session{
		UserID:      userID,
		Login:       "planner",
		Status:      models.AccountActive,
		AccessToken: "token",
	}}
}

func (s *staticSessions) Current() *models.Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.session
}

func (s *staticSessions) set(session *models.Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.session = session
}

// recordingChannel запоминает опубликованные сообщения.
type recordingChannel struct {
	mu   sync.Mutex
	msgs []models.BroadcastMessage
}

func (c *recordingChannel) Publish(_ context.Context, msg models.BroadcastMessage) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.msgs = append(c.msgs, msg)
	return nil
}

func (c *recordingChannel) Subscribe(func(models.BroadcastMessage)) func() {
	return func() {}
}

func (c *recordingChannel) messages() []models.BroadcastMessage {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]models.BroadcastMessage(nil), c.msgs...)
}

// fakeReconciler отвечает через подменяемые функции и считает вызовы.
// По умолчанию Persist присваивает "srv-<client side id>".
type fakeReconciler struct {
	mu       sync.Mutex
	persists []models.Record
	deletes  []string
	refresh  int

	persistFn func(call int, r models.Record) (models.PersistResult, *models.SyncError)
	refreshFn func() ([]models.Record, *models.SyncError)
	deleteFn  func(id string) *models.SyncError
}

func (f *fakeReconciler) Persist(_ context.Context, r models.Record) (models.PersistResult, *models.SyncError) {
	f.mu.Lock()
	f.persists = append(f.persists, r.Clone())
	call := len(f.persists)
	fn := f.persistFn
	f.mu.Unlock()

	if fn != nil {
		return fn(call, r)
	}
	out := r.Clone()
	if out.ID == "" {
		out.ID = "srv-" + r.ClientSideID
	}
	return models.PersistResult{Record: out}, nil
}

func (f *fakeReconciler) Refresh(context.Context) ([]models.Record, *models.SyncError) {
	f.mu.Lock()
	f.refresh++
	fn := f.refreshFn
	f.mu.Unlock()

	if fn != nil {
		return fn()
	}
	return nil, nil
}

func (f *fakeReconciler) Delete(_ context.Context, id string) *models.SyncError {
	f.mu.Lock()
	f.deletes = append(f.deletes, id)
	fn := f.deleteFn
	f.mu.Unlock()

	if fn != nil {
		return fn(id)
	}
	return nil
}

func (f *fakeReconciler) persisted() []models.Record {
	f.mu.Lock()
	defer f.mu.Unlock()
	return models.CloneRecords(f.persists)
}

func (f *fakeReconciler) deleted() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.deletes...)
}

// sequenceIDs выдаёт c-1, c-2, ...
type sequenceIDs struct {
	mu sync.Mutex
	n  int
}

func (s *sequenceIDs) Generate() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.n++
	return "c-" + strconv.Itoa(s.n)
}
