package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/MKhiriev/go-plan-keeper/internal/adapter"
	"github.com/MKhiriev/go-plan-keeper/internal/logger"
	"github.com/MKhiriev/go-plan-keeper/internal/store"
	"github.com/MKhiriev/go-plan-keeper/internal/utils"
	"github.com/MKhiriev/go-plan-keeper/models"
)

// SessionSource exposes the session currently in use.
type SessionSource interface {
	Current() *models.Session
}

type clientReconciler struct {
	remote   adapter.RemoteStore
	sessions SessionSource
	cache    store.LocalCache
	clock    utils.Clock
	timeout  time.Duration
	logger   *logger.Logger

	mu           sync.Mutex
	marker       time.Time
	markerLoaded bool
}

// NewClientReconciler creates a reconciler whose writes lose the race after
// timeout.
func NewClientReconciler(remote adapter.RemoteStore, sessions SessionSource, cache store.LocalCache, clock utils.Clock, timeout time.Duration, log *logger.Logger) ClientReconciler {
	return &clientReconciler{
		remote:   remote,
		sessions: sessions,
		cache:    cache,
		clock:    clock,
		timeout:  timeout,
		logger:   log,
	}
}

type saveResult struct {
	record models.Record
	err    error
}

// Persist implements [ClientReconciler]. The remote call is never cancelled:
// when the timer wins, the write keeps running and its result is dropped.
func (r *clientReconciler) Persist(ctx context.Context, record models.Record) (models.PersistResult, *models.SyncError) {
	session := r.sessions.Current()
	if session == nil {
		return models.PersistResult{}, ClassifyError("save", adapter.ErrNoSession)
	}

	tStart := r.clock.Now()

	done := make(chan saveResult, 1)
	go func() {
		saved, err := r.remote.Save(context.WithoutCancel(ctx), record, session.UserID)
		done <- saveResult{record: saved, err: err}
	}()

	expired := make(chan struct{})
	timer := r.clock.AfterFunc(r.timeout, func() { close(expired) })
	defer timer.Stop()

	select {
	case res := <-done:
		if res.err != nil {
			r.logger.Err(res.err).
				Str("func", "clientReconciler.Persist").
				Str("client_side_id", record.ClientSideID).
				Msg("remote write failed")
			return models.PersistResult{}, ClassifyError("save", res.err)
		}

		stale := r.refreshedSince(tStart)
		if stale {
			r.logger.Debug().
				Str("func", "clientReconciler.Persist").
				Str("record_id", res.record.ID).
				Msg("a refresh started after this write; its list result is stale")
		}
		return models.PersistResult{Record: res.record, Stale: stale}, nil

	case <-expired:
		r.logger.Warn().
			Str("func", "clientReconciler.Persist").
			Str("client_side_id", record.ClientSideID).
			Dur("timeout", r.timeout).
			Msg("remote write timed out")
		return models.PersistResult{}, ClassifyError("save", errPersistTimeout)

	case <-ctx.Done():
		return models.PersistResult{}, ClassifyError("save", ctx.Err())
	}
}

// Refresh implements [ClientReconciler].
func (r *clientReconciler) Refresh(ctx context.Context) ([]models.Record, *models.SyncError) {
	session := r.sessions.Current()
	if session == nil {
		return nil, ClassifyError("list", adapter.ErrNoSession)
	}

	marker := r.nextMarker(ctx)
	if err := r.cache.Put(ctx, cacheKeyRefreshMarker, marker); err != nil {
		r.logger.Err(err).Str("func", "clientReconciler.Refresh").Msg("failed to persist refresh marker")
	}

	records, err := r.remote.GetAll(ctx, session.UserID)
	if err != nil {
		r.logger.Err(err).Str("func", "clientReconciler.Refresh").Msg("failed to fetch records")
		return nil, ClassifyError("list", err)
	}

	return records, nil
}

// Delete implements [ClientReconciler].
func (r *clientReconciler) Delete(ctx context.Context, id string) *models.SyncError {
	if err := r.remote.Delete(ctx, id); err != nil {
		r.logger.Err(err).Str("func", "clientReconciler.Delete").Str("record_id", id).Msg("failed to delete record")
		return ClassifyError("delete", err)
	}
	return nil
}

// nextMarker returns a refresh marker strictly greater than every previous
// one, including the one left in the cache by an earlier run.
func (r *clientReconciler) nextMarker(ctx context.Context) time.Time {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.markerLoaded {
		var cached time.Time
		if err := r.cache.Get(ctx, cacheKeyRefreshMarker, &cached); err != nil && !errors.Is(err, store.ErrCacheMiss) {
			r.logger.Err(err).Str("func", "clientReconciler.nextMarker").Msg("failed to read refresh marker")
		}
		if cached.After(r.marker) {
			r.marker = cached
		}
		r.markerLoaded = true
	}

	next := r.clock.Now()
	if !next.After(r.marker) {
		next = r.marker.Add(time.Nanosecond)
	}
	r.marker = next
	return next
}

func (r *clientReconciler) refreshedSince(t time.Time) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.marker.After(t)
}
