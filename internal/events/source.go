// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package events turns host lifecycle signals into a stream of
// [models.LifecycleEvent] values consumed by the sync dispatcher.
//
// Sources are explicit and injectable: the terminal UI, OS signals and the
// connectivity prober each produce events, and [Mux] merges them into one
// stream. Tests drive the dispatcher with a [ChannelSource].
package events

import (
	"context"
	"sync"
	"time"

	"github.com/MKhiriev/go-plan-keeper/models"
)

// Source produces lifecycle events. The channel is closed when the source
// stops.
type Source interface {
	Events() <-chan models.LifecycleEvent
}

// ChannelSource is a Source fed by Emit.
type ChannelSource struct {
	name string
	ch   chan models.LifecycleEvent

	mu     sync.Mutex
	closed bool
}

// NewChannelSource creates a source with a buffer of size buffer.
func NewChannelSource(name string, buffer int) *ChannelSource {
	return &ChannelSource{name: name, ch: make(chan models.LifecycleEvent, buffer)}
}

func (s *ChannelSource) Events() <-chan models.LifecycleEvent {
	return s.ch
}

// Emit sends an event of the given kind. It never blocks: when the buffer
// is full the event is dropped and false is returned.
func (s *ChannelSource) Emit(kind models.LifecycleKind) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return false
	}

	select {
	case s.ch <- models.LifecycleEvent{Kind: kind, Source: s.name, At: time.Now()}:
		return true
	default:
		return false
	}
}

// Close closes the event channel. Further Emit calls are ignored.
func (s *ChannelSource) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.closed {
		s.closed = true
		close(s.ch)
	}
}

// Mux merges several sources into one. Its channel is closed when every
// source is exhausted or ctx is done.
type Mux struct {
	out chan models.LifecycleEvent
}

// NewMux starts forwarding events from sources.
func NewMux(ctx context.Context, sources ...Source) *Mux {
	m := &Mux{out: make(chan models.LifecycleEvent)}

	var wg sync.WaitGroup
	for _, src := range sources {
		wg.Add(1)
		go func(in <-chan models.LifecycleEvent) {
			defer wg.Done()
			for {
				select {
				case <-ctx.Done():
					return
				case ev, ok := <-in:
					if !ok {
						return
					}
					select {
					case m.out <- ev:
					case <-ctx.Done():
						return
					}
				}
			}
		}(src.Events())
	}

	go func() {
		wg.Wait()
		close(m.out)
	}()

	return m
}

func (m *Mux) Events() <-chan models.LifecycleEvent {
	return m.out
}
