package repository

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"sanctuary/internal/models"
	"sanctuary/internal/storage"
)

// ChatRepository keeps the companion message log and the chat sessions.
// Messages live in one log keyed by session id; a session's own message list
// is filled in when it ends.
type ChatRepository struct {
	store  storage.KeyValueStore
	logger *zap.Logger
	opts   options
}

func NewChatRepository(store storage.KeyValueStore, logger *zap.Logger, opts ...Option) *ChatRepository {
	return &ChatRepository{store: store, logger: orNop(logger), opts: buildOptions(opts)}
}

func (r *ChatRepository) SaveMessage(ctx context.Context, sessionID, text string, isUser bool) (models.Message, error) {
	const op = "repository.ChatRepository.SaveMessage"

	now := r.opts.now()
	msg := models.Message{
		ID:        newID(now),
		Text:      text,
		IsUser:    isUser,
		Timestamp: now,
		SessionID: sessionID,
	}

	messages := r.GetMessages(ctx)
	messages = append(messages, msg)
	if err := writeRecords(ctx, r.store, storage.KeyMessages, encodeAll(messages, encodeMessage)); err != nil {
		return models.Message{}, fmt.Errorf("%s: %w", op, err)
	}
	return msg, nil
}

// GetMessages returns the whole log in insertion order.
func (r *ChatRepository) GetMessages(ctx context.Context) []models.Message {
	records := readRecords[messageRecord](ctx, r.store, r.logger, storage.KeyMessages)
	return decodeAll(records, decodeMessage, r.logger, storage.KeyMessages)
}

func (r *ChatRepository) GetSessionMessages(ctx context.Context, sessionID string) []models.Message {
	var out []models.Message
	for _, m := range r.GetMessages(ctx) {
		if m.SessionID == sessionID {
			out = append(out, m)
		}
	}
	return out
}

func (r *ChatRepository) ClearMessages(ctx context.Context) error {
	if err := r.store.Remove(ctx, storage.KeyMessages); err != nil {
		return fmt.Errorf("repository.ChatRepository.ClearMessages: %w: %w", ErrStorageWrite, err)
	}
	return nil
}

// CreateSession starts a new open session.
func (r *ChatRepository) CreateSession(ctx context.Context) (models.UserSession, error) {
	const op = "repository.ChatRepository.CreateSession"

	now := r.opts.now()
	session := models.UserSession{ID: newID(now), StartTime: now, Messages: []models.Message{}}

	sessions := r.GetSessions(ctx)
	sessions = append(sessions, session)
	if err := r.writeSessions(ctx, sessions); err != nil {
		return models.UserSession{}, fmt.Errorf("%s: %w", op, err)
	}
	return session, nil
}

func (r *ChatRepository) GetSessions(ctx context.Context) []models.UserSession {
	records := readRecords[sessionRecord](ctx, r.store, r.logger, storage.KeyUserSessions)
	return decodeAll(records, decodeSession, r.logger, storage.KeyUserSessions)
}

func (r *ChatRepository) GetSession(ctx context.Context, id string) (models.UserSession, bool) {
	for _, s := range r.GetSessions(ctx) {
		if s.ID == id {
			return s, true
		}
	}
	return models.UserSession{}, false
}

// EndSession stamps the end time and snapshots the session's messages.
// Unknown or already ended sessions are left alone.
func (r *ChatRepository) EndSession(ctx context.Context, id string) error {
	const op = "repository.ChatRepository.EndSession"

	sessions := r.GetSessions(ctx)
	for i := range sessions {
		if sessions[i].ID != id || sessions[i].EndTime != nil {
			continue
		}
		end := r.opts.now()
		sessions[i].EndTime = &end
		sessions[i].Messages = r.GetSessionMessages(ctx, id)
		if err := r.writeSessions(ctx, sessions); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
		return nil
	}
	return nil
}

func (r *ChatRepository) writeSessions(ctx context.Context, sessions []models.UserSession) error {
	return writeRecords(ctx, r.store, storage.KeyUserSessions, encodeAll(sessions, encodeSession))
}
