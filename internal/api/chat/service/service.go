package chatService

import (
	"TemanCerita/internal/api/chat"
	chatRepository "TemanCerita/internal/api/chat/repository"
	"context"
	"time"

	"github.com/sirupsen/logrus"
)

type IChatService interface {
	ProcessMessage(ctx context.Context, sessionID string, message string) (chat.TurnResult, error)
	ResetSession(ctx context.Context, sessionID string) (chat.TurnResult, error)
}

type chatService struct {
	log      *logrus.Logger
	sessions chatRepository.SessionStore
	dialogue *Dialogue
	locker   *keyedLocker
	// shared is set when the store coordinates turns across processes.
	shared chatRepository.SessionLocker
	now    func() time.Time
}

func NewChatService(
	log *logrus.Logger,
	sessions chatRepository.SessionStore,
	dialogue *Dialogue,
) IChatService {
	svc := &chatService{
		log:      log,
		sessions: sessions,
		dialogue: dialogue,
		locker:   newKeyedLocker(),
		now:      time.Now,
	}
	if shared, ok := sessions.(chatRepository.SessionLocker); ok {
		svc.shared = shared
	}
	return svc
}
