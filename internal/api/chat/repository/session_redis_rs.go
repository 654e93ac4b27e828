package chatRepository

import (
	"TemanCerita/internal/api/chat"
	"TemanCerita/internal/entity"
	contextPkg "TemanCerita/pkg/context"
	"TemanCerita/pkg/redis"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	jsoniter "github.com/json-iterator/go"
	"github.com/sirupsen/logrus"
)

const (
	sessionKeyPrefix = "teman-cerita:session:"
	lockKeyPrefix    = "teman-cerita:lock:"

	// defaultLockTTL outlives one turn, including a slow classifier call.
	defaultLockTTL   = 30 * time.Second
	lockRetryDelay   = 20 * time.Millisecond
	lockReleaseLimit = 2 * time.Second
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

type redisSessionStore struct {
	log     *logrus.Logger
	redis   redis.IRedis
	ttl     time.Duration
	lockTTL time.Duration
}

// NewRedisSessionStore keeps sessions as JSON values that expire after ttl of
// inactivity. The store also implements SessionLocker, so replicas sharing
// one Redis serialize turns on the same session.
func NewRedisSessionStore(log *logrus.Logger, client redis.IRedis, ttl time.Duration) SessionStore {
	return &redisSessionStore{
		log:     log,
		redis:   client,
		ttl:     ttl,
		lockTTL: defaultLockTTL,
	}
}

func (r *redisSessionStore) Get(ctx context.Context, id string) (entity.ChatSession, error) {
	requestID := contextPkg.GetRequestID(ctx)

	raw, err := r.redis.Get(ctx, sessionKeyPrefix+id)
	if err != nil {
		if errors.Is(err, redis.ErrKeyNotFound) {
			return entity.ChatSession{}, chat.ErrSessionNotFound
		}
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"session_id": id,
			"error":      err.Error(),
		}).Error("Failed to read session from redis")
		return entity.ChatSession{}, fmt.Errorf("%w: %v", chat.ErrSessionStore, err)
	}

	var session entity.ChatSession
	if err := json.Unmarshal([]byte(raw), &session); err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"session_id": id,
			"error":      err.Error(),
		}).Warn("Discarding undecodable session")
		return entity.ChatSession{}, chat.ErrSessionNotFound
	}

	return session, nil
}

func (r *redisSessionStore) Save(ctx context.Context, session entity.ChatSession) error {
	payload, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("%w: %v", chat.ErrSessionStore, err)
	}

	if err := r.redis.Set(ctx, sessionKeyPrefix+session.ID, string(payload), r.ttl); err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": contextPkg.GetRequestID(ctx),
			"session_id": session.ID,
			"error":      err.Error(),
		}).Error("Failed to write session to redis")
		return fmt.Errorf("%w: %v", chat.ErrSessionStore, err)
	}

	return nil
}

func (r *redisSessionStore) Delete(ctx context.Context, id string) error {
	if err := r.redis.Delete(ctx, sessionKeyPrefix+id); err != nil {
		return fmt.Errorf("%w: %v", chat.ErrSessionStore, err)
	}
	return nil
}

// Lock takes a per-session lease keyed by a random token. The lease expires
// after lockTTL so a crashed holder cannot wedge the session, and release
// only deletes the key while it still holds our token.
func (r *redisSessionStore) Lock(ctx context.Context, id string) (func(), error) {
	key := lockKeyPrefix + id
	token := uuid.NewString()

	for {
		acquired, err := r.redis.SetNX(ctx, key, token, r.lockTTL)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, fmt.Errorf("%w: %v", chat.ErrSessionBusy, ctxErr)
			}
			r.log.WithFields(logrus.Fields{
				"request_id": contextPkg.GetRequestID(ctx),
				"session_id": id,
				"error":      err.Error(),
			}).Error("Failed to lock session in redis")
			return nil, fmt.Errorf("%w: %v", chat.ErrSessionStore, err)
		}
		if acquired {
			break
		}

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("%w: %v", chat.ErrSessionBusy, ctx.Err())
		case <-time.After(lockRetryDelay):
		}
	}

	return func() {
		releaseCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), lockReleaseLimit)
		defer cancel()

		released, err := r.redis.DeleteIfEqual(releaseCtx, key, token)
		if err != nil || !released {
			fields := logrus.Fields{
				"request_id": contextPkg.GetRequestID(ctx),
				"session_id": id,
			}
			if err != nil {
				fields["error"] = err.Error()
			}
			r.log.WithFields(fields).Warn("Session lock expired or could not be released")
		}
	}, nil
}
