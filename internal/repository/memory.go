package repository

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"energy-advisor/internal/model"
)

const janitorInterval = time.Minute

// MemoryStore keeps sessions in an in-process map. A background janitor
// evicts sessions whose UpdatedAt is older than the configured TTL.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]*model.Session
	ttl      time.Duration
	stop     chan struct{}
	stopOnce sync.Once
	log      *zap.SugaredLogger
}

// NewMemoryStore creates an in-memory session store. A ttl of zero disables
// eviction.
func NewMemoryStore(ttl time.Duration, log *zap.SugaredLogger) *MemoryStore {
	s := &MemoryStore{
		sessions: make(map[string]*model.Session),
		ttl:      ttl,
		stop:     make(chan struct{}),
		log:      log,
	}
	if ttl > 0 {
		go s.janitor()
	}
	return s
}

func (s *MemoryStore) Create(ctx context.Context) (string, error) {
	session := model.NewSession(uuid.NewString())

	s.mu.Lock()
	s.sessions[session.ID] = session
	s.mu.Unlock()

	return session.ID, nil
}

func (s *MemoryStore) Get(ctx context.Context, id string) (*model.Session, error) {
	s.mu.RLock()
	session, ok := s.sessions[id]
	s.mu.RUnlock()

	if !ok {
		return nil, model.ErrSessionNotFound
	}
	return session.Clone(), nil
}

func (s *MemoryStore) Update(ctx context.Context, session *model.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sessions[session.ID]; !ok {
		return model.ErrSessionNotFound
	}
	session.UpdatedAt = time.Now()
	s.sessions[session.ID] = session.Clone()
	return nil
}

func (s *MemoryStore) Close() error {
	s.stopOnce.Do(func() { close(s.stop) })
	return nil
}

func (s *MemoryStore) janitor() {
	ticker := time.NewTicker(janitorInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stop:
			return
		case now := <-ticker.C:
			if n := s.evictExpired(now); n > 0 && s.log != nil {
				s.log.Infow("evicted expired sessions", "count", n)
			}
		}
	}
}

func (s *MemoryStore) evictExpired(now time.Time) int {
	cutoff := now.Add(-s.ttl)

	s.mu.Lock()
	defer s.mu.Unlock()

	evicted := 0
	for id, session := range s.sessions {
		if session.UpdatedAt.Before(cutoff) {
			delete(s.sessions, id)
			evicted++
		}
	}
	return evicted
}
