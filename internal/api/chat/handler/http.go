package chatHandler

import (
	chatService "TemanCerita/internal/api/chat/service"
	"TemanCerita/internal/middleware"
	"TemanCerita/pkg/utils"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/sirupsen/logrus"
)

const SessionHeader = "X-Session-ID"

type ChatHandler struct {
	log           *logrus.Logger
	validator     *validator.Validate
	middleware    middleware.Middleware
	chatService   chatService.IChatService
	utils         utils.IUtils
	sharedSession bool
	timeout       time.Duration
}

// New builds the chat endpoints. With sharedSession every caller talks to
// the same conversation; otherwise sessions are keyed per client.
func New(
	log *logrus.Logger,
	validate *validator.Validate,
	middleware middleware.Middleware,
	cs chatService.IChatService,
	utils utils.IUtils,
	sharedSession bool,
) *ChatHandler {
	return &ChatHandler{
		log:           log,
		validator:     validate,
		middleware:    middleware,
		chatService:   cs,
		utils:         utils,
		sharedSession: sharedSession,
		timeout:       requestTimeout,
	}
}

func (h *ChatHandler) Start(srv fiber.Router) {
	wsMiddleware := func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	}

	chat := srv.Group("/chat")
	chat.Post("", h.middleware.NewRateLimiter, h.Chat)
	chat.Post("/reset", h.middleware.NewRateLimiter, h.ResetChat)
	chat.Use("/ws", wsMiddleware)
	chat.Get("/ws", websocket.New(h.handleChatWebSocket))
}

// StartRoot mounts the unversioned POST /chat kept for existing clients.
func (h *ChatHandler) StartRoot(app fiber.Router) {
	app.Post("/chat", h.middleware.NewRateLimiter, h.Chat)
}
