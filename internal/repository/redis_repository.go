package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"flow-ai/chatcore/internal/model"
)

const conversationsIndexKey = "conversations"

type redisRepository struct {
	rdb *redis.Client
}

// NewRedisRepository returns a Repository that keeps conversations in Redis hashes,
// message order in a list and the recency index in a sorted set.
func NewRedisRepository(rdb *redis.Client) Repository {
	return &redisRepository{rdb: rdb}
}

// Key Generation Helpers
func (r *redisRepository) conversationKey(id string) string { return fmt.Sprintf("conversation:%s", id) }
func (r *redisRepository) messagesKey(id string) string     { return fmt.Sprintf("conversation:%s:messages", id) }
func (r *redisRepository) messageKey(id string) string      { return fmt.Sprintf("message:%s", id) }

// --- Conversation Operations ---
func (r *redisRepository) CreateConversation(ctx context.Context, conv *model.Conversation) error {
	pipe := r.rdb.TxPipeline()
	pipe.HSet(ctx, r.conversationKey(conv.ID), conversationToMap(conv))
	pipe.ZAdd(ctx, conversationsIndexKey, recencyScore(conv.ID, conv.UpdatedAt))
	_, err := pipe.Exec(ctx)
	return err
}

func (r *redisRepository) GetConversation(ctx context.Context, conversationID string) (*model.Conversation, error) {
	fields, err := r.rdb.HGetAll(ctx, r.conversationKey(conversationID)).Result()
	if err != nil {
		return nil, err
	}
	if len(fields) == 0 {
		return nil, ErrNotFound
	}
	return conversationFromMap(fields)
}

func (r *redisRepository) ListConversations(ctx context.Context) ([]*model.Conversation, error) {
	ids, err := r.rdb.ZRange(ctx, conversationsIndexKey, 0, -1).Result()
	if err != nil {
		return nil, err
	}
	convs := make([]*model.Conversation, 0, len(ids))
	for _, id := range ids {
		conv, err := r.GetConversation(ctx, id)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				continue
			}
			return nil, err
		}
		convs = append(convs, conv)
	}
	return convs, nil
}

func (r *redisRepository) UpdateConversationTitle(ctx context.Context, conversationID, newTitle string) error {
	key := r.conversationKey(conversationID)
	exists, err := r.rdb.Exists(ctx, key).Result()
	if err != nil {
		return err
	}
	if exists == 0 {
		return ErrNotFound
	}

	now := time.Now().UTC()
	pipe := r.rdb.TxPipeline()
	pipe.HSet(ctx, key, "title", newTitle, "updated_at", now.Format(time.RFC3339Nano))
	pipe.ZAdd(ctx, conversationsIndexKey, recencyScore(conversationID, now))
	_, err = pipe.Exec(ctx)
	return err
}

func (r *redisRepository) DeleteConversation(ctx context.Context, conversationID string) error {
	exists, err := r.rdb.Exists(ctx, r.conversationKey(conversationID)).Result()
	if err != nil {
		return err
	}
	if exists == 0 {
		return ErrNotFound
	}

	msgIDs, err := r.rdb.LRange(ctx, r.messagesKey(conversationID), 0, -1).Result()
	if err != nil {
		return fmt.Errorf("could not get message IDs for deletion: %w", err)
	}

	pipe := r.rdb.TxPipeline()
	r.deleteMessages(ctx, pipe, conversationID, msgIDs)
	pipe.Del(ctx, r.conversationKey(conversationID))
	pipe.ZRem(ctx, conversationsIndexKey, conversationID)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to execute conversation deletion pipeline: %w", err)
	}
	return nil
}

// --- Message Operations ---
func (r *redisRepository) AddMessage(ctx context.Context, conversationID string, message *model.Message) error {
	fields, err := messageToMap(message)
	if err != nil {
		return fmt.Errorf("could not convert message to map: %w", err)
	}
	now := time.Now().UTC()

	pipe := r.rdb.TxPipeline()
	pipe.HSet(ctx, r.messageKey(message.ID), fields)
	pipe.RPush(ctx, r.messagesKey(conversationID), message.ID)
	pipe.HSet(ctx, r.conversationKey(conversationID), "updated_at", now.Format(time.RFC3339Nano))
	pipe.ZAdd(ctx, conversationsIndexKey, recencyScore(conversationID, now))
	_, err = pipe.Exec(ctx)
	return err
}

func (r *redisRepository) GetMessages(ctx context.Context, conversationID string) ([]model.Message, error) {
	msgIDs, err := r.rdb.LRange(ctx, r.messagesKey(conversationID), 0, -1).Result()
	if err != nil {
		return nil, err
	}

	messages := make([]model.Message, 0, len(msgIDs))
	for _, id := range msgIDs {
		fields, err := r.rdb.HGetAll(ctx, r.messageKey(id)).Result()
		if err != nil {
			return nil, err
		}
		if len(fields) == 0 {
			continue
		}
		msg, err := messageFromMap(fields)
		if err != nil {
			return nil, fmt.Errorf("could not decode message %s: %w", id, err)
		}
		messages = append(messages, *msg)
	}
	return messages, nil
}

func (r *redisRepository) ClearMessages(ctx context.Context, conversationID string) error {
	msgIDs, err := r.rdb.LRange(ctx, r.messagesKey(conversationID), 0, -1).Result()
	if err != nil {
		return err
	}
	pipe := r.rdb.TxPipeline()
	r.deleteMessages(ctx, pipe, conversationID, msgIDs)
	_, err = pipe.Exec(ctx)
	return err
}

func (r *redisRepository) deleteMessages(ctx context.Context, pipe redis.Pipeliner, conversationID string, msgIDs []string) {
	if len(msgIDs) > 0 {
		keys := make([]string, len(msgIDs))
		for i, id := range msgIDs {
			keys[i] = r.messageKey(id)
		}
		pipe.Del(ctx, keys...)
	}
	pipe.Del(ctx, r.messagesKey(conversationID))
}

// --- Helper Functions ---

// recencyScore orders the index most recent first under ZRANGE.
func recencyScore(id string, t time.Time) redis.Z {
	return redis.Z{Score: float64(-t.UnixNano()), Member: id}
}

func conversationToMap(conv *model.Conversation) map[string]any {
	return map[string]any{
		"id":         conv.ID,
		"title":      conv.Title,
		"created_at": conv.CreatedAt.UTC().Format(time.RFC3339Nano),
		"updated_at": conv.UpdatedAt.UTC().Format(time.RFC3339Nano),
	}
}

func conversationFromMap(fields map[string]string) (*model.Conversation, error) {
	conv := &model.Conversation{ID: fields["id"], Title: fields["title"]}
	var err error
	if conv.CreatedAt, err = time.Parse(time.RFC3339Nano, fields["created_at"]); err != nil {
		return nil, fmt.Errorf("invalid created_at: %w", err)
	}
	if conv.UpdatedAt, err = time.Parse(time.RFC3339Nano, fields["updated_at"]); err != nil {
		return nil, fmt.Errorf("invalid updated_at: %w", err)
	}
	return conv, nil
}

func messageToMap(msg *model.Message) (map[string]any, error) {
	content, err := json.Marshal(msg.Content)
	if err != nil {
		return nil, err
	}
	return map[string]any{
		"id":         msg.ID,
		"role":       string(msg.Role),
		"content":    string(content),
		"created_at": msg.CreatedAt.UTC().Format(time.RFC3339Nano),
	}, nil
}

func messageFromMap(fields map[string]string) (*model.Message, error) {
	msg := &model.Message{ID: fields["id"], Role: model.Role(fields["role"])}
	if err := json.Unmarshal([]byte(fields["content"]), &msg.Content); err != nil {
		return nil, err
	}
	createdAt, err := time.Parse(time.RFC3339Nano, fields["created_at"])
	if err != nil {
		return nil, fmt.Errorf("invalid created_at: %w", err)
	}
	msg.CreatedAt = createdAt
	return msg, nil
}
