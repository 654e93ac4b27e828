package chatRepository

import (
	"TemanCerita/internal/api/chat"
	"TemanCerita/internal/entity"
	contextPkg "TemanCerita/pkg/context"
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

type MemorySessionStore struct {
	log      *logrus.Logger
	ttl      time.Duration
	now      func() time.Time
	mutex    sync.RWMutex
	sessions map[string]entity.ChatSession
}

// NewMemorySessionStore keeps sessions in process memory. A zero ttl keeps
// them until the process exits.
func NewMemorySessionStore(log *logrus.Logger, ttl time.Duration) *MemorySessionStore {
	return &MemorySessionStore{
		log:      log,
		ttl:      ttl,
		now:      time.Now,
		sessions: make(map[string]entity.ChatSession),
	}
}

func (r *MemorySessionStore) Get(ctx context.Context, id string) (entity.ChatSession, error) {
	r.mutex.RLock()
	session, ok := r.sessions[id]
	r.mutex.RUnlock()

	if !ok || r.expired(session) {
		r.log.WithFields(logrus.Fields{
			"request_id": contextPkg.GetRequestID(ctx),
			"session_id": id,
			"found":      ok,
		}).Debug("Memory session miss")
		return entity.ChatSession{}, chat.ErrSessionNotFound
	}

	return session, nil
}

func (r *MemorySessionStore) Save(ctx context.Context, session entity.ChatSession) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	r.sessions[session.ID] = session
	return nil
}

func (r *MemorySessionStore) Delete(ctx context.Context, id string) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	delete(r.sessions, id)
	return nil
}

// CleanupExpired drops sessions idle for longer than the ttl and returns how
// many were removed.
func (r *MemorySessionStore) CleanupExpired(ctx context.Context) int {
	if r.ttl <= 0 {
		return 0
	}

	r.mutex.Lock()
	defer r.mutex.Unlock()

	removed := 0
	for id, session := range r.sessions {
		if r.expired(session) {
			delete(r.sessions, id)
			removed++
		}
	}

	if removed > 0 {
		r.log.WithFields(logrus.Fields{
			"request_id":    contextPkg.GetRequestID(ctx),
			"rows_affected": removed,
		}).Info("Cleaned up idle sessions")
	}

	return removed
}

func (r *MemorySessionStore) expired(session entity.ChatSession) bool {
	return r.ttl > 0 && r.now().Sub(session.LastActivity) > r.ttl
}
