package service

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/crhubottom/school-flow-project/internal/domain"
	"github.com/crhubottom/school-flow-project/internal/storage"
)

const (
	mirrorQueueSize    = 64
	mirrorWriteTimeout = 10 * time.Second
)

// ProfileMirror keeps the users collection in sync with the identity
// provider. Every authenticated request enqueues the request principal; a
// background worker upserts the mirrored profile with merge semantics.
// Mirror failures are logged and never surfaced to the request path.
type ProfileMirror struct {
	store storage.Store

	queue chan *domain.Principal
	once  sync.Once
	wg    sync.WaitGroup
}

// NewProfileMirror creates a mirror writing through the given store.
func NewProfileMirror(store storage.Store) *ProfileMirror {
	return &ProfileMirror{
		store: store,
		queue: make(chan *domain.Principal, mirrorQueueSize),
	}
}

// Start launches the background worker. Safe to call once.
func (m *ProfileMirror) Start() {
	m.wg.Add(1)
	go m.run()
}

// Stop drains the queue and waits for the worker to finish.
func (m *ProfileMirror) Stop() {
	m.once.Do(func() {
		close(m.queue)
	})
	m.wg.Wait()
}

// Enqueue schedules a profile upsert for the principal. It never blocks the
// caller: if the queue is full the write is dropped and logged.
func (m *ProfileMirror) Enqueue(principal *domain.Principal) {
	if principal == nil || principal.UID == "" {
		return
	}
	select {
	case m.queue <- principal:
	default:
		log.Warn().Str("uid", principal.UID).Msg("profile mirror queue full, dropping update")
	}
}

func (m *ProfileMirror) run() {
	defer m.wg.Done()
	for principal := range m.queue {
		ctx, cancel := context.WithTimeout(context.Background(), mirrorWriteTimeout)
		err := m.store.UpsertUserProfile(ctx, principal.Profile())
		cancel()
		if err != nil {
			log.Warn().Err(err).Str("uid", principal.UID).Msg("profile mirror write failed")
			continue
		}
		log.Debug().Str("uid", principal.UID).Msg("profile mirrored")
	}
}
