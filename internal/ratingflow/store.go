package ratingflow

import (
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/tastebud/tastebud-api/pkg/errors"
	"github.com/tastebud/tastebud-api/pkg/logger"
	"github.com/tastebud/tastebud-api/pkg/metrics"
	"go.uber.org/zap"
)

// SessionStore holds in-flight rating-flow sessions with a sliding TTL.
// Sessions live only in memory: an expired session simply means the user
// starts the flow again, nothing has been persisted.
type SessionStore struct {
	cache *gocache.Cache
	ttl   time.Duration
}

// NewSessionStore creates the store. OnEvicted fires for both expiry and
// explicit deletion, so the outcome label is derived from the session state:
// a completed session was finished, anything else was abandoned.
func NewSessionStore(ttl time.Duration) *SessionStore {
	c := gocache.New(ttl, 5*time.Minute)
	c.OnEvicted(func(key string, v interface{}) {
		session, ok := v.(*Session)
		if !ok {
			return
		}

		outcome := "abandoned"
		if session.Snapshot().Step == StepComplete {
			outcome = "completed"
		}
		metrics.RatingFlowSessions.WithLabelValues(outcome).Inc()
		logger.Debug("Rating flow session evicted",
			zap.String("session_id", key),
			zap.String("outcome", outcome))
	})

	return &SessionStore{cache: c, ttl: ttl}
}

// Put stores a session and refreshes its TTL.
func (s *SessionStore) Put(session *Session) {
	s.cache.Set(session.ID(), session, s.ttl)
}

// Get returns the session and refreshes its TTL so an active flow does not
// expire mid-way.
func (s *SessionStore) Get(sessionID string) (*Session, error) {
	v, found := s.cache.Get(sessionID)
	if !found {
		return nil, errors.NotFoundError("rating flow session")
	}

	session := v.(*Session)
	s.cache.Set(sessionID, session, s.ttl)
	return session, nil
}

// Delete removes a session.
func (s *SessionStore) Delete(sessionID string) {
	s.cache.Delete(sessionID)
}

// Count returns the number of live sessions.
func (s *SessionStore) Count() int {
	return s.cache.ItemCount()
}
