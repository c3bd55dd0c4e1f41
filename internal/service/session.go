package service

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"osa-dashboard/pkg/osaapi"
)

// Session is one logged-in browser. The upstream token never leaves the host.
type Session struct {
	ID            uuid.UUID
	Username      string
	UpstreamToken string
	Dashboard     *Dashboard
	CreatedAt     time.Time

	mu         sync.Mutex
	lastSeenAt time.Time
}

// Context returns ctx carrying the upstream bearer token of s.
func (s *Session) Context(ctx context.Context) context.Context {
	return osaapi.WithToken(ctx, s.UpstreamToken)
}

func (s *Session) LastSeenAt() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSeenAt
}

func (s *Session) touch(now time.Time) {
	s.mu.Lock()
	s.lastSeenAt = now
	s.mu.Unlock()
}

// SessionStore keeps sessions in memory and expires them after idle time
// without activity.
type SessionStore struct {
	mu       sync.Mutex
	sessions map[uuid.UUID]*Session
	idle     time.Duration
	now      func() time.Time
	onRemove func(*Session)
	log      *zap.Logger
}

func NewSessionStore(idle time.Duration, log *zap.Logger) *SessionStore {
	if log == nil {
		log = zap.NewNop()
	}
	return &SessionStore{
		sessions: make(map[uuid.UUID]*Session),
		idle:     idle,
		now:      time.Now,
		log:      log,
	}
}

// OnRemove registers fn to run after a session is removed or expires.
func (st *SessionStore) OnRemove(fn func(*Session)) {
	st.mu.Lock()
	st.onRemove = fn
	st.mu.Unlock()
}

// Create registers a new session. The dashboard is built by newDashboard
// with the session id so its charts can publish to the right topic.
func (st *SessionStore) Create(username, upstreamToken string, newDashboard func(uuid.UUID) *Dashboard) *Session {
	now := st.now()
	sess := &Session{
		ID:            uuid.New(),
		Username:      username,
		UpstreamToken: upstreamToken,
		CreatedAt:     now,
		lastSeenAt:    now,
	}
	sess.Dashboard = newDashboard(sess.ID)

	st.mu.Lock()
	st.sessions[sess.ID] = sess
	st.mu.Unlock()
	return sess
}

// Get returns the live session with id. An expired session is removed and
// reported as ErrSessionTimeout.
func (st *SessionStore) Get(id uuid.UUID) (*Session, error) {
	st.mu.Lock()
	sess, ok := st.sessions[id]
	st.mu.Unlock()
	if !ok {
		return nil, ErrSessionNotFound
	}
	if st.expired(sess) {
		st.Remove(id)
		return nil, ErrSessionTimeout
	}
	return sess, nil
}

// Touch marks the session as active now.
func (st *SessionStore) Touch(id uuid.UUID) error {
	sess, err := st.Get(id)
	if err != nil {
		return err
	}
	sess.touch(st.now())
	return nil
}

// Remove tears down the session dashboard. It reports whether the session existed.
func (st *SessionStore) Remove(id uuid.UUID) bool {
	st.mu.Lock()
	sess, ok := st.sessions[id]
	delete(st.sessions, id)
	onRemove := st.onRemove
	st.mu.Unlock()
	if !ok {
		return false
	}

	if sess.Dashboard != nil {
		sess.Dashboard.Teardown()
	}
	if onRemove != nil {
		onRemove(sess)
	}
	return true
}

// Sweep removes every expired session and returns how many were removed.
func (st *SessionStore) Sweep() int {
	st.mu.Lock()
	var expired []uuid.UUID
	for id, sess := range st.sessions {
		if st.expired(sess) {
			expired = append(expired, id)
		}
	}
	st.mu.Unlock()

	n := 0
	for _, id := range expired {
		if st.Remove(id) {
			n++
		}
	}
	return n
}

// RunSweeper calls Sweep every interval until ctx is done.
func (st *SessionStore) RunSweeper(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := st.Sweep(); n > 0 {
				st.log.Info("expired idle sessions", zap.Int("count", n))
			}
		}
	}
}

func (st *SessionStore) Len() int {
	st.mu.Lock()
	defer st.mu.Unlock()
	return len(st.sessions)
}

func (st *SessionStore) expired(sess *Session) bool {
	return st.idle > 0 && st.now().Sub(sess.LastSeenAt()) > st.idle
}
