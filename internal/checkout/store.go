package checkout

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	apperrors "stagesight/pkg/app_errors"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const DefaultSessionTTL = 30 * time.Minute

type SessionStore interface {
	// 取得：不存在或已過期回傳 ErrSessionNotFound
	Get(ctx context.Context, id string) (*Session, error)
	// 儲存：每次儲存都會延長到期時間
	Save(ctx context.Context, s *Session) error
	Delete(ctx context.Context, id string) error
	// 鎖定：同一個 session 同時只允許一個修改，已被鎖定回傳 ErrSessionBusy
	Lock(ctx context.Context, id string) (unlock func(), err error)
}

type MemorySessionStoreImpl struct {
	mu       sync.Mutex
	sessions map[string][]byte
	expires  map[string]time.Time
	locks    map[string]struct{}
	ttl      time.Duration
	now      func() time.Time
}

func NewMemorySessionStore(ttl time.Duration) SessionStore {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &MemorySessionStoreImpl{
		sessions: make(map[string][]byte),
		expires:  make(map[string]time.Time),
		locks:    make(map[string]struct{}),
		ttl:      ttl,
		now:      time.Now,
	}
}

func (m *MemorySessionStoreImpl) Get(ctx context.Context, id string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	data, ok := m.sessions[id]
	if !ok {
		return nil, apperrors.ErrSessionNotFound
	}
	if m.now().After(m.expires[id]) {
		delete(m.sessions, id)
		delete(m.expires, id)
		return nil, apperrors.ErrSessionNotFound
	}

	// 以序列化副本保存，呼叫端修改不會影響已儲存的內容
	var s Session
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	return &s, nil
}

func (m *MemorySessionStoreImpl) Save(ctx context.Context, s *Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	s.ExpiresAt = m.now().Add(m.ttl)
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	m.sessions[s.ID] = data
	m.expires[s.ID] = s.ExpiresAt
	return nil
}

func (m *MemorySessionStoreImpl) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.sessions, id)
	delete(m.expires, id)
	return nil
}

func (m *MemorySessionStoreImpl) Lock(ctx context.Context, id string) (func(), error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, held := m.locks[id]; held {
		return nil, apperrors.ErrSessionBusy
	}
	m.locks[id] = struct{}{}

	var once sync.Once
	return func() {
		once.Do(func() {
			m.mu.Lock()
			delete(m.locks, id)
			m.mu.Unlock()
		})
	}, nil
}

const sessionLockTTL = 30 * time.Second

type RedisSessionStoreImpl struct {
	client *redis.Client
	ttl    time.Duration
	now    func() time.Time
}

func NewRedisSessionStore(client *redis.Client, ttl time.Duration) SessionStore {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &RedisSessionStoreImpl{
		client: client,
		ttl:    ttl,
		now:    time.Now,
	}
}

func SessionKey(id string) string {
	return fmt.Sprintf("checkout:session:%s", id)
}

func sessionLockKey(id string) string {
	return SessionKey(id) + ":lock"
}

func (r *RedisSessionStoreImpl) Get(ctx context.Context, id string) (*Session, error) {
	data, err := r.client.Get(ctx, SessionKey(id)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, apperrors.ErrSessionNotFound
	}
	if err != nil {
		return nil, err
	}

	var s Session
	if err := json.Unmarshal([]byte(data), &s); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	return &s, nil
}

func (r *RedisSessionStoreImpl) Save(ctx context.Context, s *Session) error {
	s.ExpiresAt = r.now().Add(r.ttl)
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	return r.client.Set(ctx, SessionKey(s.ID), string(data), r.ttl).Err()
}

func (r *RedisSessionStoreImpl) Delete(ctx context.Context, id string) error {
	return r.client.Del(ctx, SessionKey(id)).Err()
}

// releaseLockScript 只刪除自己持有的鎖；逾時後被別人取得的鎖不動
const releaseLockScript = `
if redis.call('GET', KEYS[1]) == ARGV[1] then
	return redis.call('DEL', KEYS[1])
end
return 0
`

func (r *RedisSessionStoreImpl) Lock(ctx context.Context, id string) (func(), error) {
	token := uuid.New().String()
	ok, err := r.client.SetNX(ctx, sessionLockKey(id), token, sessionLockTTL).Result()
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, apperrors.ErrSessionBusy
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			// 請求可能已取消，解鎖使用獨立的 context
			_ = r.client.Eval(context.Background(), releaseLockScript, []string{sessionLockKey(id)}, token).Err()
		})
	}, nil
}
