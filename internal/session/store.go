package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/iliyamo/cinetick/internal/model"
)

// UserKey is the fixed storage key of the session user inside a session
// namespace.
const UserKey = "user"

// Store persists the user record of a session.  A missing record is not an
// error: Load reports ok=false and the session is anonymous.
type Store interface {
	Load(ctx context.Context, sid string) (u model.User, ok bool, err error)
	Save(ctx context.Context, sid string, u model.User) error
	Delete(ctx context.Context, sid string) error
}

// RedisStore keeps records at "<prefix>:<sid>:user" with a sliding TTL.
type RedisStore struct {
	rdb    redis.Cmdable
	prefix string
	ttl    time.Duration
}

// NewRedisStore returns a store over rdb.  A zero ttl keeps records until
// logout.
func NewRedisStore(rdb redis.Cmdable, prefix string, ttl time.Duration) *RedisStore {
	if prefix == "" {
		prefix = "session"
	}
	return &RedisStore{rdb: rdb, prefix: prefix, ttl: ttl}
}

func (s *RedisStore) key(sid string) string { return s.prefix + ":" + sid + ":" + UserKey }

func (s *RedisStore) Load(ctx context.Context, sid string) (model.User, bool, error) {
	raw, err := s.rdb.Get(ctx, s.key(sid)).Result()
	if errors.Is(err, redis.Nil) {
		return model.User{}, false, nil
	}
	if err != nil {
		return model.User{}, false, fmt.Errorf("load session: %w", err)
	}
	var u model.User
	if err := json.Unmarshal([]byte(raw), &u); err != nil || u.ID == 0 {
		// unreadable records are dropped and the caller continues anonymous
		logrus.WithField("sid", sid).Warn("discarding malformed session record")
		_ = s.rdb.Del(ctx, s.key(sid)).Err()
		return model.User{}, false, nil
	}
	if s.ttl > 0 {
		_ = s.rdb.Expire(ctx, s.key(sid), s.ttl).Err()
	}
	return u, true, nil
}

func (s *RedisStore) Save(ctx context.Context, sid string, u model.User) error {
	b, err := json.Marshal(u)
	if err != nil {
		return err
	}
	if err := s.rdb.Set(ctx, s.key(sid), string(b), s.ttl).Err(); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, sid string) error {
	if err := s.rdb.Del(ctx, s.key(sid)).Err(); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

// MemoryStore is the in-process fallback used when redis is unavailable.
type MemoryStore struct {
	mu      sync.Mutex
	ttl     time.Duration
	now     func() time.Time
	records map[string]memRecord
}

type memRecord struct {
	user    model.User
	expires time.Time
}

// NewMemoryStore returns an empty store.  A zero ttl never expires records.
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{ttl: ttl, now: time.Now, records: map[string]memRecord{}}
}

// Load returns the record of sid and, like RedisStore, slides its expiry.
func (s *MemoryStore) Load(_ context.Context, sid string) (model.User, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.records[sid]
	if !ok {
		return model.User{}, false, nil
	}
	now := s.now()
	if !rec.expires.IsZero() && now.After(rec.expires) {
		delete(s.records, sid)
		return model.User{}, false, nil
	}
	if s.ttl > 0 {
		rec.expires = now.Add(s.ttl)
		s.records[sid] = rec
	}
	return rec.user, true, nil
}

func (s *MemoryStore) Save(_ context.Context, sid string, u model.User) error {
	rec := memRecord{user: u}
	if s.ttl > 0 {
		rec.expires = s.now().Add(s.ttl)
	}
	s.mu.Lock()
	s.records[sid] = rec
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, sid string) error {
	s.mu.Lock()
	delete(s.records, sid)
	s.mu.Unlock()
	return nil
}
