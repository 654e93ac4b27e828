package chatService

import (
	"TemanCerita/internal/api/chat"
	"TemanCerita/internal/entity"
	contextPkg "TemanCerita/pkg/context"
	"context"
	"errors"
	"strings"

	"github.com/sirupsen/logrus"
)

// SharedSessionID is the key used when every caller shares one conversation.
const SharedSessionID = "global"

func (s *chatService) ProcessMessage(ctx context.Context, sessionID string, message string) (chat.TurnResult, error) {
	requestID := contextPkg.GetRequestID(ctx)

	if strings.TrimSpace(message) == "" {
		return chat.TurnResult{}, chat.ErrEmptyMessage
	}
	if sessionID == "" {
		sessionID = SharedSessionID
	}

	unlock, err := s.lock(ctx, sessionID)
	if err != nil {
		return chat.TurnResult{}, err
	}
	defer unlock()

	session, err := s.loadSession(ctx, sessionID)
	if err != nil {
		return chat.TurnResult{}, err
	}

	working := session
	result, err := s.dialogue.Step(ctx, &working, message)
	if err != nil {
		if errors.Is(err, chat.ErrClassifierUnavailable) {
			result.Context = session.Context
			return result, nil
		}
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"session_id": sessionID,
			"error":      err.Error(),
		}).Error("Dialogue step failed")
		return chat.TurnResult{}, err
	}

	working.LastActivity = s.now()
	if err := s.sessions.Save(ctx, working); err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"session_id": sessionID,
			"error":      err.Error(),
		}).Error("Failed to save session")
		return chat.TurnResult{}, err
	}

	s.log.WithFields(logrus.Fields{
		"request_id": requestID,
		"session_id": sessionID,
		"outcome":    result.Outcome,
		"tag":        result.Tag,
		"from":       session.Context.String(),
		"to":         working.Context.String(),
		"fail_count": working.FailCount,
	}).Info("Chat turn processed")

	return result, nil
}

func (s *chatService) ResetSession(ctx context.Context, sessionID string) (chat.TurnResult, error) {
	if sessionID == "" {
		sessionID = SharedSessionID
	}

	unlock, err := s.lock(ctx, sessionID)
	if err != nil {
		return chat.TurnResult{}, err
	}
	defer unlock()

	session, err := s.loadSession(ctx, sessionID)
	if err != nil {
		return chat.TurnResult{}, err
	}

	result := s.dialogue.Reset(&session)
	session.LastActivity = s.now()

	if err := s.sessions.Save(ctx, session); err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": contextPkg.GetRequestID(ctx),
			"session_id": sessionID,
			"error":      err.Error(),
		}).Error("Failed to save reset session")
		return chat.TurnResult{}, err
	}

	return result, nil
}

// lock serializes turns on sessionID inside this process first, then across
// processes when the store supports it.
func (s *chatService) lock(ctx context.Context, sessionID string) (func(), error) {
	unlock := s.locker.Lock(sessionID)
	if s.shared == nil {
		return unlock, nil
	}

	release, err := s.shared.Lock(ctx, sessionID)
	if err != nil {
		unlock()
		s.log.WithFields(logrus.Fields{
			"request_id": contextPkg.GetRequestID(ctx),
			"session_id": sessionID,
			"error":      err.Error(),
		}).Warn("Could not lock session")
		return nil, err
	}

	return func() {
		release()
		unlock()
	}, nil
}

func (s *chatService) loadSession(ctx context.Context, sessionID string) (entity.ChatSession, error) {
	session, err := s.sessions.Get(ctx, sessionID)
	if err == nil {
		return session, nil
	}
	if errors.Is(err, chat.ErrSessionNotFound) {
		s.log.WithFields(logrus.Fields{
			"request_id": contextPkg.GetRequestID(ctx),
			"session_id": sessionID,
		}).Debug("Starting new chat session")
		return entity.NewChatSession(sessionID, s.now()), nil
	}

	s.log.WithFields(logrus.Fields{
		"request_id": contextPkg.GetRequestID(ctx),
		"session_id": sessionID,
		"error":      err.Error(),
	}).Error("Failed to load session")
	return entity.ChatSession{}, err
}
