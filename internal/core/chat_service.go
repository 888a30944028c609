package core

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"

	"chatassist/internal/llm"
	"chatassist/internal/store"
)

const (
	defaultSessionTitle = "New Chat"

	// MaxMessageLength is the longest accepted user message, in characters.
	MaxMessageLength = 1000
	// MaxTitleLength is the longest accepted session title, in characters.
	MaxTitleLength = 100
)

// Options tune behavior that is deliberately configurable rather than
// hard-coded policy.
type Options struct {
	// HistoryLimit caps how many stored exchanges are replayed into the
	// prompt. 0 sends the entire session history on every call.
	HistoryLimit int

	// SwallowLLMErrors converts completion failures into stored assistant
	// text so PostMessage never fails on a remote error. When false, the
	// error propagates and nothing is persisted.
	SwallowLLMErrors bool
}

type ChatService struct {
	db   *store.SQLiteStore
	llm  llm.Client
	log  *zap.Logger
	opts Options
}

func NewChatService(db *store.SQLiteStore, client llm.Client, log *zap.Logger, opts Options) *ChatService {
	return &ChatService{
		db:   db,
		llm:  client,
		log:  log,
		opts: opts,
	}
}

// User passthroughs used by the auth endpoints and middleware.

func (s *ChatService) GetUserByExternalID(externalUserID string) (*store.User, error) {
	return s.db.GetUserByExternalID(externalUserID)
}

func (s *ChatService) CreateUser(externalUserID, passwordHash string) (*store.User, error) {
	return s.db.CreateUser(externalUserID, passwordHash)
}

// Session operations

func (s *ChatService) CreateSession(userID int64) (*store.ChatSession, error) {
	session, err := s.db.CreateSession(userID, defaultSessionTitle)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}
	s.log.Info("session created", zap.String("session_id", session.ID), zap.Int64("user_id", userID))
	return session, nil
}

func (s *ChatService) ListSessions(userID int64) ([]store.ChatSession, error) {
	return s.db.GetSessionsByUserID(userID)
}

// SelectSession resolves the session the user is working in: a given ID must
// resolve to an owned session, otherwise the most recent session is used,
// and a user with no sessions gets one created lazily.
func (s *ChatService) SelectSession(userID int64, sessionID string) (*store.ChatSession, []store.Message, error) {
	session, err := s.resolveSession(userID, sessionID)
	if err != nil {
		return nil, nil, err
	}

	messages, err := s.db.GetMessagesBySessionID(session.ID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load session messages: %w", err)
	}
	return session, messages, nil
}

func (s *ChatService) RenameSession(userID int64, sessionID, newTitle string) error {
	newTitle = strings.TrimSpace(newTitle)
	if newTitle == "" || utf8.RuneCountInString(newTitle) > MaxTitleLength {
		return fmt.Errorf("%w: title must be 1-%d characters", ErrInvalidArgument, MaxTitleLength)
	}

	if err := s.db.UpdateSessionTitle(sessionID, userID, newTitle); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to rename session: %w", err)
	}
	return nil
}

func (s *ChatService) DeleteSession(userID int64, sessionID string) error {
	if err := s.db.DeleteSession(sessionID, userID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to delete session: %w", err)
	}
	s.log.Info("session deleted", zap.String("session_id", sessionID), zap.Int64("user_id", userID))
	return nil
}

func (s *ChatService) ListMessages(userID int64, sessionID string) ([]store.Message, error) {
	session, err := s.db.GetSessionByID(sessionID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to verify session: %w", err)
	}
	if session == nil {
		return nil, ErrNotFound
	}
	return s.db.GetMessagesBySessionID(sessionID)
}

// PostMessageResult is what the caller gets back from a posted message.
type PostMessageResult struct {
	ResponseText string
	SessionID    string
}

// PostMessage validates the text, resolves (or lazily creates) the session,
// assembles the prompt from stored history, performs exactly one completion
// call, and persists the exchange as a single message row.
func (s *ChatService) PostMessage(ctx context.Context, userID int64, sessionID, text string) (*PostMessageResult, error) {
	text = strings.TrimSpace(text)
	if text == "" || utf8.RuneCountInString(text) > MaxMessageLength {
		return nil, fmt.Errorf("%w: message must be 1-%d characters", ErrInvalidArgument, MaxMessageLength)
	}

	session, err := s.resolveSession(userID, sessionID)
	if err != nil {
		return nil, err
	}

	history, err := s.loadHistory(session.ID)
	if err != nil {
		return nil, err
	}

	turns := BuildPrompt(history, text)

	reply, err := s.llm.Complete(ctx, turns)
	if err != nil {
		if !s.opts.SwallowLLMErrors {
			return nil, fmt.Errorf("%w: %s", ErrRemote, err)
		}
		// Upstream contract: the conversation record always gets a
		// response, even if it is only the error description.
		s.log.Warn("completion call failed, storing error text",
			zap.String("session_id", session.ID), zap.Error(err))
		reply = fmt.Sprintf("I encountered an error: %v", err)
	}

	msg := store.Message{
		SessionID:     session.ID,
		UserText:      text,
		AssistantText: reply,
	}
	if err := s.db.CreateMessage(&msg); err != nil {
		return nil, fmt.Errorf("failed to store message: %w", err)
	}

	return &PostMessageResult{ResponseText: reply, SessionID: session.ID}, nil
}

// CorrectResponse is the one post-hoc mutation messages allow: replacing a
// stored assistant reply.
func (s *ChatService) CorrectResponse(userID int64, messageID, newText string) error {
	newText = strings.TrimSpace(newText)
	if newText == "" {
		return fmt.Errorf("%w: response text must not be empty", ErrInvalidArgument)
	}

	if err := s.db.UpdateMessageResponse(messageID, userID, newText); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to update message response: %w", err)
	}
	return nil
}

func (s *ChatService) resolveSession(userID int64, sessionID string) (*store.ChatSession, error) {
	if sessionID != "" {
		session, err := s.db.GetSessionByID(sessionID, userID)
		if err != nil {
			return nil, fmt.Errorf("failed to get session: %w", err)
		}
		if session == nil {
			return nil, ErrNotFound
		}
		return session, nil
	}

	session, err := s.db.GetLatestSession(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get latest session: %w", err)
	}
	if session != nil {
		return session, nil
	}
	return s.CreateSession(userID)
}

func (s *ChatService) loadHistory(sessionID string) ([]store.Message, error) {
	if s.opts.HistoryLimit > 0 {
		history, err := s.db.GetLastNMessagesBySessionID(sessionID, s.opts.HistoryLimit)
		if err != nil {
			return nil, fmt.Errorf("failed to load history: %w", err)
		}
		return history, nil
	}
	history, err := s.db.GetMessagesBySessionID(sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to load history: %w", err)
	}
	return history, nil
}
