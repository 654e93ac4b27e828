package config

import (
	"TemanCerita/database/postgres"
	"TemanCerita/database/sqlite"
	chatHandler "TemanCerita/internal/api/chat/handler"
	chatRepository "TemanCerita/internal/api/chat/repository"
	chatService "TemanCerita/internal/api/chat/service"
	"TemanCerita/internal/entity"
	"TemanCerita/internal/middleware"
	"TemanCerita/pkg/audio"
	"TemanCerita/pkg/gemini"
	"TemanCerita/pkg/nlp"
	openaiPkg "TemanCerita/pkg/openai"
	"TemanCerita/pkg/redis"
	"TemanCerita/pkg/s3"
	"TemanCerita/pkg/utils"
	websocketPkg "TemanCerita/pkg/websocket"
	"TemanCerita/pkg/whatsapp"
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
)

const janitorInterval = 5 * time.Minute

type ServerOption func(*Server) error

type Server struct {
	engine         *fiber.App
	db             *sqlx.DB
	log            *logrus.Logger
	cfg            ChatConfig
	middleware     middleware.Middleware
	validator      *validator.Validate
	utils          utils.IUtils
	handlers       []handler
	rootHandlers   []rootHandler
	redisServer    redis.IRedis
	s3Client       s3.ItfS3
	catalog        *entity.ResponseCatalog
	classifier     nlp.IClassifier
	intentSocket   websocketPkg.IWebsocket
	geminiClient   gemini.IGemini
	sessions       chatRepository.SessionStore
	memorySessions *chatRepository.MemorySessionStore
	whatsappClient whatsapp.IWhatsappSender
	transcriber    audio.ITranscriber
	stopJanitor    chan struct{}
	shutdownOnce   sync.Once
}

type handler interface {
	Start(srv fiber.Router)
}

// rootHandler mounts routes outside the /api/v1 prefix.
type rootHandler interface {
	StartRoot(app fiber.Router)
}

func NewServer(options ...ServerOption) (*Server, error) {
	server := &Server{stopJanitor: make(chan struct{})}

	for _, option := range options {
		if err := option(server); err != nil {
			return nil, fmt.Errorf("failed to apply option: %w", err)
		}
	}

	if server.engine == nil {
		return nil, fmt.Errorf("fiber app is required")
	}
	if server.log == nil {
		return nil, fmt.Errorf("logger is required")
	}
	if server.catalog == nil {
		return nil, fmt.Errorf("response catalog is required")
	}
	if server.sessions == nil {
		return nil, fmt.Errorf("session store is required")
	}

	return server, nil
}

func WithFiber(fiberApp *fiber.App) ServerOption {
	return func(s *Server) error {
		s.engine = fiberApp
		return nil
	}
}

func WithLogger(logger *logrus.Logger) ServerOption {
	return func(s *Server) error {
		s.log = logger
		return nil
	}
}

func WithValidator(validator *validator.Validate) ServerOption {
	return func(s *Server) error {
		s.validator = validator
		return nil
	}
}

func WithChatConfig(cfg ChatConfig) ServerOption {
	return func(s *Server) error {
		s.cfg = cfg
		return nil
	}
}

// WithDatabase opens the catalog database when a "sql" catalog source is
// configured. DB_DRIVER=sqlite uses SQLITE_PATH, anything else Postgres.
func WithDatabase() ServerOption {
	return func(s *Server) error {
		if !s.cfg.UsesSQLCatalog() {
			return nil
		}

		var (
			db  *sqlx.DB
			err error
		)
		if os.Getenv("DB_DRIVER") == "sqlite" {
			db, err = sqlite.New(getEnv("SQLITE_PATH", sqlite.DefaultPath))
		} else {
			db, err = postgres.New()
		}
		if err != nil {
			if s.log != nil {
				s.log.Errorf("Failed to connect to database: %v", err)
			}
			return fmt.Errorf("failed to create database connection: %w", err)
		}
		s.db = db
		return nil
	}
}

func WithRedisServer() ServerOption {
	return func(s *Server) error {
		if s.cfg.SessionStore != SessionStoreRedis {
			return nil
		}

		client, err := redis.New()
		if err != nil {
			if s.log != nil {
				s.log.Errorf("Failed to connect to Redis: %v", err)
			}
			return fmt.Errorf("failed to create redis client: %w", err)
		}
		s.redisServer = client
		return nil
	}
}

func WithS3Client() ServerOption {
	return func(s *Server) error {
		if !s.cfg.UsesS3Catalog() {
			return nil
		}

		client, err := s3.New()
		if err != nil {
			if s.log != nil {
				s.log.Errorf("Failed to initialize S3 client: %v", err)
			}
			return fmt.Errorf("failed to create S3 client: %w", err)
		}
		s.s3Client = client
		return nil
	}
}

func WithMiddleware() ServerOption {
	return func(s *Server) error {
		if s.log == nil {
			return fmt.Errorf("logger must be initialized before middleware")
		}
		s.middleware = middleware.New(s.log, s.cfg.RateLimit, s.cfg.RateBurst)
		return nil
	}
}

func WithUtils() ServerOption {
	return func(s *Server) error {
		s.utils = utils.New()
		return nil
	}
}

func WithSessionStore() ServerOption {
	return func(s *Server) error {
		if s.log == nil {
			return fmt.Errorf("logger must be initialized before the session store")
		}

		if s.cfg.SessionStore == SessionStoreRedis {
			if s.redisServer == nil {
				return fmt.Errorf("redis session store needs WithRedisServer")
			}
			s.sessions = chatRepository.NewRedisSessionStore(s.log, s.redisServer, s.cfg.SessionTTL)
			return nil
		}

		s.memorySessions = chatRepository.NewMemorySessionStore(s.log, s.cfg.SessionTTL)
		s.sessions = s.memorySessions
		return nil
	}
}

// WithCatalog loads the response catalog. Startup fails on any unreadable
// source or an empty catalog.
func WithCatalog() ServerOption {
	return func(s *Server) error {
		if s.log == nil {
			return fmt.Errorf("logger must be initialized before the catalog")
		}

		var sqlReader chatRepository.CatalogReader
		if s.db != nil {
			sqlReader = chatRepository.NewSQLCatalogReader(s.db, s.log)
		}

		loader := chatRepository.NewCatalogLoader(s.log, s.s3Client, sqlReader)

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		catalog, err := loader.Load(ctx, s.cfg.CatalogSources, s.cfg.GeneralIntents, s.cfg.UniversalIntents)
		if err != nil {
			return fmt.Errorf("failed to load response catalog: %w", err)
		}
		s.catalog = catalog
		return nil
	}
}

// WithClassifier builds the intent classifier named by CLASSIFIER_BACKEND.
// LLM backends are told the catalog's tags, so the catalog goes first.
func WithClassifier() ServerOption {
	return func(s *Server) error {
		if s.catalog == nil {
			return fmt.Errorf("catalog must be loaded before the classifier")
		}

		switch s.cfg.ClassifierBackend {
		case ClassifierGemini:
			client, err := gemini.NewGeminiClient(s.catalog.Tags())
			if err != nil {
				if s.log != nil {
					s.log.Errorf("Failed to create Gemini client: %v", err)
				}
				return fmt.Errorf("failed to create Gemini client: %w", err)
			}
			s.geminiClient = client
			s.classifier = client

		case ClassifierOpenAI:
			client, err := openaiPkg.NewChatGPT(s.catalog.Tags())
			if err != nil {
				return fmt.Errorf("failed to create OpenAI client: %w", err)
			}
			s.classifier = client

		case ClassifierKeyword:
			if len(s.catalog.Keywords) == 0 {
				return fmt.Errorf("keyword classifier needs a keywords table in the catalog")
			}
			s.classifier = nlp.NewKeywordClassifier(s.catalog.Keywords)

		default:
			socket := websocketPkg.NewAIWebSocketClient()
			s.intentSocket = socket
			s.classifier = socket
		}

		s.log.WithField("backend", s.cfg.ClassifierBackend).Info("Intent classifier ready")
		return nil
	}
}

func WithWhatsappClient() ServerOption {
	return func(s *Server) error {
		if !s.cfg.WhatsappEnabled {
			return nil
		}

		client, err := whatsapp.New()
		if err != nil {
			if s.log != nil {
				s.log.Errorf("Failed to initialize WhatsApp client: %v", err)
			}
			return fmt.Errorf("failed to create WhatsApp client: %w", err)
		}
		s.whatsappClient = client
		return nil
	}
}

// WithTranscriber enables Whisper transcription of WhatsApp voice notes.
func WithTranscriber() ServerOption {
	return func(s *Server) error {
		if !s.cfg.WhatsappEnabled || !s.cfg.TranscribeVoice {
			return nil
		}

		transcriber, err := audio.NewTranscriptionService()
		if err != nil {
			return fmt.Errorf("failed to create transcription service: %w", err)
		}
		s.transcriber = transcriber
		return nil
	}
}

func (s *Server) RegisterHandler() {
	s.engine.Use(s.middleware.NewRequestIDMiddleware())
	s.engine.Use(s.middleware.NewLoggingMiddleware)

	// Chat Domain
	dialogue := chatService.NewDialogue(s.log, s.catalog, s.classifier, s.cfg.Dialogue())
	chatServices := chatService.NewChatService(s.log, s.sessions, dialogue)
	chatHandlers := chatHandler.New(s.log, s.validator, s.middleware, chatServices, s.utils, s.cfg.SharedSession())

	if s.whatsappClient != nil {
		chatHandler.NewWhatsappChannel(s.log, chatServices, s.whatsappClient, s.transcriber, s.utils).Start()
	}

	s.setupHealthCheck()
	s.handlers = append(s.handlers, chatHandlers)
	s.rootHandlers = append(s.rootHandlers, chatHandlers)
}

func (s *Server) Run() error {
	s.mountRoutes()

	go s.janitor(s.stopJanitor)

	port := s.cfg.Port
	if port == "" {
		port = "3000"
	}

	return s.engine.Listen(fmt.Sprintf(":%s", port))
}

func (s *Server) mountRoutes() {
	router := s.engine.Group("/api/v1")
	for _, h := range s.handlers {
		h.Start(router)
	}
	for _, h := range s.rootHandlers {
		h.StartRoot(s.engine)
	}
}

// janitor drops expired in-memory sessions and idle rate limiter entries.
func (s *Server) janitor(stop <-chan struct{}) {
	ticker := time.NewTicker(janitorInterval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			removed := 0
			if s.memorySessions != nil {
				removed = s.memorySessions.CleanupExpired(context.Background())
			}
			swept := s.middleware.SweepRateLimiter(janitorInterval)
			s.log.WithFields(logrus.Fields{
				"expired_sessions": removed,
				"idle_visitors":    swept,
			}).Debug("Janitor pass finished")
		}
	}
}

func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	s.shutdownOnce.Do(func() {
		close(s.stopJanitor)
		err = s.shutdown(ctx)
	})
	return err
}

func (s *Server) shutdown(ctx context.Context) error {
	err := s.engine.ShutdownWithContext(ctx)

	if s.whatsappClient != nil {
		s.whatsappClient.Disconnect()
	}
	if s.intentSocket != nil {
		s.intentSocket.CloseConnections()
	}
	if s.geminiClient != nil {
		s.geminiClient.Close()
	}
	if s.redisServer != nil {
		s.redisServer.Close()
	}
	if s.db != nil {
		s.db.Close()
	}

	return err
}

func (s *Server) setupHealthCheck() {
	s.engine.Get("/", func(ctx *fiber.Ctx) error {
		return ctx.JSON(fiber.Map{
			"message":    "Server is Healthy!",
			"intents":    len(s.catalog.Intents),
			"classifier": s.cfg.ClassifierBackend,
		})
	})
}
