package chatHandler

import (
	chatService "TemanCerita/internal/api/chat/service"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

const (
	sessionCookie      = "teman_session"
	maxSessionIDLength = 128
	sessionCookieAge   = 24 * time.Hour
)

// Prefixes the server assigns itself. A client claiming one could read a
// conversation it does not own.
var reservedSessionPrefixes = []string{"ip:", "wa:"}

// sessionKey picks the conversation a request belongs to: the shared one,
// then the X-Session-ID header, the body's session_id and the session cookie.
// Without a usable key a fresh "web:<ulid>" is minted.
func (h *ChatHandler) sessionKey(ctx *fiber.Ctx, fromBody string) string {
	if h.sharedSession {
		return chatService.SharedSessionID
	}

	candidates := []struct {
		source string
		id     string
	}{
		{"header", ctx.Get(SessionHeader)},
		{"body", fromBody},
		{"cookie", ctx.Cookies(sessionCookie)},
	}
	for _, candidate := range candidates {
		id := strings.TrimSpace(candidate.id)
		if id == "" {
			continue
		}
		if validClientSessionID(id) {
			return id
		}
		h.log.WithFields(logrus.Fields{
			"request_id": h.middleware.GetRequestID(ctx),
			"source":     candidate.source,
		}).Warn("Ignoring unusable client session id")
	}

	return h.utils.NewSessionID("web")
}

// rememberSession hands the key back so the next turn continues the same
// conversation.
func (h *ChatHandler) rememberSession(ctx *fiber.Ctx, sessionID string) {
	ctx.Set(SessionHeader, sessionID)
	if h.sharedSession {
		return
	}
	ctx.Cookie(&fiber.Cookie{
		Name:     sessionCookie,
		Value:    sessionID,
		Path:     "/",
		Expires:  time.Now().Add(sessionCookieAge),
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}

// validClientSessionID accepts short opaque tokens that cannot collide with
// keys the server assigns on its own.
func validClientSessionID(id string) bool {
	if id == "" || len(id) > maxSessionIDLength || id == chatService.SharedSessionID {
		return false
	}

	lower := strings.ToLower(id)
	for _, prefix := range reservedSessionPrefixes {
		if strings.HasPrefix(lower, prefix) {
			return false
		}
	}

	for _, r := range id {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		case r == '-', r == '_', r == '.', r == ':':
		default:
			return false
		}
	}
	return true
}
