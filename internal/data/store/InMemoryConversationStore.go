package store

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/akolanti/PDFChat/internal/config"
	"github.com/akolanti/PDFChat/internal/domain/chatModel"
)

type memSession struct {
	turns     []chatModel.Turn
	expiresAt time.Time
}

// InMemoryConversationStore is used when redis is disabled or unreachable.
// Like the redis lists, a session expires ttl after its last append.
type InMemoryConversationStore struct {
	chatLock  *sync.RWMutex
	chatMap   map[string]*memSession
	ttl       time.Duration
	now       func() time.Time
	lastSweep time.Time
}

func InitInMemoryConversationStore() *InMemoryConversationStore {
	return NewInMemoryConversationStore(config.RedisConversationTTL, time.Now)
}

func NewInMemoryConversationStore(ttl time.Duration, now func() time.Time) *InMemoryConversationStore {
	return &InMemoryConversationStore{
		chatLock:  new(sync.RWMutex),
		chatMap:   make(map[string]*memSession),
		ttl:       ttl,
		now:       now,
		lastSweep: now(),
	}
}

func (store *InMemoryConversationStore) Append(ctx context.Context, sessionId string, turn chatModel.Turn) error {
	store.chatLock.Lock()
	defer store.chatLock.Unlock()

	now := store.now()
	store.sweep(now)

	session, ok := store.chatMap[sessionId]
	if !ok || !now.Before(session.expiresAt) {
		session = &memSession{}
		store.chatMap[sessionId] = session
	}
	session.turns = append(session.turns, turn)
	session.expiresAt = now.Add(store.ttl)
	inMemLogger.FromContext(ctx).Debug("Saved turn to conversation store", "sessionId", sessionId)
	return nil
}

func (store *InMemoryConversationStore) History(ctx context.Context, sessionId string) ([]chatModel.Turn, error) {
	store.chatLock.RLock()
	defer store.chatLock.RUnlock()
	session, ok := store.chatMap[sessionId]
	if !ok || !store.now().Before(session.expiresAt) {
		return nil, nil
	}
	return slices.Clone(session.turns), nil
}

func (store *InMemoryConversationStore) Reset(ctx context.Context, sessionId string) error {
	store.chatLock.Lock()
	defer store.chatLock.Unlock()
	delete(store.chatMap, sessionId)
	return nil
}

// Len counts the sessions still held, expired or not.
func (store *InMemoryConversationStore) Len() int {
	store.chatLock.RLock()
	defer store.chatLock.RUnlock()
	return len(store.chatMap)
}

// sweep drops expired sessions, at most once per ttl. Callers hold the write lock.
func (store *InMemoryConversationStore) sweep(now time.Time) {
	if now.Sub(store.lastSweep) < store.ttl {
		return
	}
	store.lastSweep = now
	for id, session := range store.chatMap {
		if !now.Before(session.expiresAt) {
			delete(store.chatMap, id)
		}
	}
}
