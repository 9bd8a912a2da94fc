package store

import (
	"context"
	"encoding/json"

	"github.com/akolanti/PDFChat/internal/appErrors"
	"github.com/akolanti/PDFChat/internal/config"
	"github.com/akolanti/PDFChat/internal/data/redisStore"
	"github.com/akolanti/PDFChat/internal/domain/chatModel"
	"github.com/akolanti/PDFChat/pkg/logger_i"
)

const chatKeyPrefix = "chat:"

// RedisConversationStore keeps each session as a list of JSON turns that
// expires after a period of inactivity.
type RedisConversationStore struct {
	store  *redisStore.Store
	logger *logger_i.Logger
}

func GetRedisConversationStore(ctx context.Context, cfg config.RedisConfig) (*RedisConversationStore, error) {
	s, err := redisStore.GetRedisStore(ctx, cfg, config.RedisConversationStore)
	if err != nil {
		return nil, err
	}
	return NewRedisConversationStore(s), nil
}

func NewRedisConversationStore(store *redisStore.Store) *RedisConversationStore {
	return &RedisConversationStore{
		store:  store,
		logger: logger_i.NewLogger("ConversationStore"),
	}
}

func (s *RedisConversationStore) Append(ctx context.Context, sessionId string, turn chatModel.Turn) error {
	log := s.logger.FromContext(ctx).With("sessionId", sessionId)
	data, err := json.Marshal(turn)
	if err != nil {
		return appErrors.Internal("conversation.Append", err)
	}
	if err = s.store.ListPush(ctx, chatKeyPrefix+sessionId, data, config.RedisConversationTTL); err != nil {
		log.Error("error saving turn", "error", err)
		return appErrors.Upstream("conversation.Append", err)
	}
	log.Debug("Saved turn")
	return nil
}

func (s *RedisConversationStore) History(ctx context.Context, sessionId string) ([]chatModel.Turn, error) {
	log := s.logger.FromContext(ctx).With("sessionId", sessionId)
	raw, err := s.store.ListGetAll(ctx, chatKeyPrefix+sessionId)
	if err != nil && !s.store.IsNil(err) {
		log.Error("Error getting history", "error", err)
		return nil, appErrors.Upstream("conversation.History", err)
	}

	turns := make([]chatModel.Turn, 0, len(raw))
	for _, item := range raw {
		var turn chatModel.Turn
		if err := json.Unmarshal([]byte(item), &turn); err != nil {
			log.Warn("Skipping unreadable turn", "error", err)
			continue
		}
		turns = append(turns, turn)
	}
	return turns, nil
}

func (s *RedisConversationStore) Reset(ctx context.Context, sessionId string) error {
	if err := s.store.Del(ctx, chatKeyPrefix+sessionId); err != nil {
		s.logger.FromContext(ctx).Error("Error resetting conversation", "sessionId", sessionId, "error", err)
		return appErrors.Upstream("conversation.Reset", err)
	}
	return nil
}
