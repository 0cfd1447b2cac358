package budget

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

// ErrNotFound is returned by a Repository when a session has no saved budget.
var ErrNotFound = errors.New("budget not found")

// Repository persists the items of a session budget.
type Repository interface {
	Save(ctx context.Context, sessionID string, items []Item) error
	Load(ctx context.Context, sessionID string) ([]Item, error)
	Delete(ctx context.Context, sessionID string) error
	Close() error
}

// MemoryRepository keeps budgets in process memory.
type MemoryRepository struct {
	mu      sync.RWMutex
	budgets map[string][]Item
}

// NewMemoryRepository creates an empty in-memory repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{budgets: make(map[string][]Item)}
}

// Save stores a copy of items.
func (r *MemoryRepository) Save(_ context.Context, sessionID string, items []Item) error {
	stored := make([]Item, len(items))
	copy(stored, items)

	r.mu.Lock()
	defer r.mu.Unlock()
	r.budgets[sessionID] = stored
	return nil
}

// Load returns a copy of the stored items.
func (r *MemoryRepository) Load(_ context.Context, sessionID string) ([]Item, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	stored, ok := r.budgets[sessionID]
	if !ok {
		return nil, ErrNotFound
	}
	items := make([]Item, len(stored))
	copy(items, stored)
	return items, nil
}

// Delete forgets a session; deleting an unknown session is not an error.
func (r *MemoryRepository) Delete(_ context.Context, sessionID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.budgets, sessionID)
	return nil
}

// Close is a no-op.
func (r *MemoryRepository) Close() error {
	return nil
}

type session struct {
	mu    sync.Mutex
	store *Store

	// guarded by Sessions.mu
	refs     int
	lastUsed time.Time
}

// Sessions owns one Store per session id, loading it from the repository on
// first use and saving it after every change. The repository is the source of
// truth: a cached store is dropped as soon as it is empty and unused, and
// StartEviction drops stores left idle.
type Sessions struct {
	mu        sync.Mutex
	sessions  map[string]*session
	repo      Repository
	logger    *zap.Logger
	opts      []Option
	now       func() time.Time
	stopEvict chan struct{}
	stopOnce  sync.Once
}

// NewSessions creates a session registry backed by repo. A nil repo keeps
// budgets in memory only.
func NewSessions(repo Repository, logger *zap.Logger, opts ...Option) *Sessions {
	if logger == nil {
		logger = zap.NewNop()
	}
	if repo == nil {
		repo = NewMemoryRepository()
	}
	return &Sessions{
		sessions:  make(map[string]*session),
		repo:      repo,
		logger:    logger,
		opts:      opts,
		now:       time.Now,
		stopEvict: make(chan struct{}),
	}
}

// View runs fn with the store of sessionID without persisting afterwards.
func (s *Sessions) View(ctx context.Context, sessionID string, fn func(*Store) error) error {
	return s.with(ctx, sessionID, false, fn)
}

// Update runs fn with the store of sessionID and saves the result. The store
// is rolled back when fn or the save fails.
func (s *Sessions) Update(ctx context.Context, sessionID string, fn func(*Store) error) error {
	return s.with(ctx, sessionID, true, fn)
}

// Forget empties a session and deletes it from the repository.
func (s *Sessions) Forget(ctx context.Context, sessionID string) error {
	sess, err := s.acquire(ctx, sessionID)
	if err != nil {
		return err
	}
	defer s.release(sessionID, sess)

	sess.mu.Lock()
	defer sess.mu.Unlock()

	if err := s.repo.Delete(ctx, sessionID); err != nil {
		return fmt.Errorf("failed to delete budget for session %s: %w", sessionID, err)
	}
	sess.store.Clear()
	return nil
}

// cached returns how many session stores are held in memory.
func (s *Sessions) cached() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// EvictIdle drops the cached stores not used for longer than maxIdle and
// returns how many were dropped. Their budgets stay in the repository.
func (s *Sessions) EvictIdle(maxIdle time.Duration) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	evicted := 0
	for id, sess := range s.sessions {
		if sess.refs == 0 && now.Sub(sess.lastUsed) > maxIdle {
			delete(s.sessions, id)
			evicted++
		}
	}
	if evicted > 0 {
		s.logger.Debug(fmt.Sprintf("evicted %d idle sessions", evicted),
			zap.String("op", "budget.EvictIdle"),
		)
	}
	return evicted
}

// StartEviction runs EvictIdle every interval until Close.
func (s *Sessions) StartEviction(interval, maxIdle time.Duration) {
	if interval <= 0 || maxIdle <= 0 {
		return
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				s.EvictIdle(maxIdle)
			case <-s.stopEvict:
				return
			}
		}
	}()
}

// Close stops eviction and releases the repository.
func (s *Sessions) Close() error {
	s.stopOnce.Do(func() { close(s.stopEvict) })
	return s.repo.Close()
}

func (s *Sessions) with(ctx context.Context, sessionID string, persist bool, fn func(*Store) error) error {
	sess, err := s.acquire(ctx, sessionID)
	if err != nil {
		return err
	}
	defer s.release(sessionID, sess)

	sess.mu.Lock()
	defer sess.mu.Unlock()

	before := sess.store.List()
	if err := fn(sess.store); err != nil {
		_ = sess.store.Restore(before)
		return err
	}
	if !persist {
		return nil
	}
	if err := s.repo.Save(ctx, sessionID, sess.store.List()); err != nil {
		_ = sess.store.Restore(before)
		return fmt.Errorf("failed to save budget for session %s: %w", sessionID, err)
	}
	return nil
}

func (s *Sessions) acquire(ctx context.Context, sessionID string) (*session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if sess, ok := s.sessions[sessionID]; ok {
		sess.refs++
		return sess, nil
	}

	store := NewStore(s.opts...)
	items, err := s.repo.Load(ctx, sessionID)
	switch {
	case errors.Is(err, ErrNotFound):
		s.logger.Debug(fmt.Sprintf("starting empty budget for session %s", sessionID),
			zap.String("op", "budget.Sessions"),
		)
	case err != nil:
		return nil, fmt.Errorf("failed to load budget for session %s: %w", sessionID, err)
	default:
		if err := store.Restore(items); err != nil {
			return nil, fmt.Errorf("failed to restore budget for session %s: %w", sessionID, err)
		}
		s.logger.Debug(fmt.Sprintf("restored %d items for session %s", len(items), sessionID),
			zap.String("op", "budget.Sessions"),
		)
	}

	sess := &session{store: store, refs: 1}
	s.sessions[sessionID] = sess
	return sess, nil
}

// release must run after sess.mu is unlocked. An unused empty store is
// dropped right away since reloading it costs one repository miss.
func (s *Sessions) release(sessionID string, sess *session) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess.refs--
	sess.lastUsed = s.now()
	if sess.refs == 0 && sess.store.TotalItems() == 0 {
		delete(s.sessions, sessionID)
	}
}
