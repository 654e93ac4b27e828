package config

import (
	chatService "TemanCerita/internal/api/chat/service"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	SessionModeClient = "client"
	SessionModeShared = "shared"

	SessionStoreMemory = "memory"
	SessionStoreRedis  = "redis"

	ClassifierWebsocket = "websocket"
	ClassifierGemini    = "gemini"
	ClassifierOpenAI    = "openai"
	ClassifierKeyword   = "keyword"
)

// ChatConfig is everything the chat service reads from the environment.
type ChatConfig struct {
	Port                string
	SessionMode         string
	SessionStore        string
	SessionTTL          time.Duration
	CatalogSources      []string
	ClassifierBackend   string
	ClassifierTimeout   time.Duration
	ConfidenceThreshold float64
	MaxFails            int
	GeneralIntents      []string
	UniversalIntents    []string
	RateLimit           float64
	RateBurst           int
	WhatsappEnabled     bool
	TranscribeVoice     bool
}

func LoadChatConfig() (ChatConfig, error) {
	defaults := chatService.DefaultDialogueConfig()

	cfg := ChatConfig{
		Port:              getEnv("APP_PORT", "3000"),
		SessionMode:       strings.ToLower(getEnv("SESSION_MODE", SessionModeClient)),
		SessionStore:      strings.ToLower(getEnv("SESSION_STORE", SessionStoreMemory)),
		CatalogSources:    splitList(getEnv("CATALOG_SOURCES", "configs/catalog.yaml")),
		ClassifierBackend: strings.ToLower(getEnv("CLASSIFIER_BACKEND", ClassifierWebsocket)),
		GeneralIntents:    splitList(os.Getenv("CHAT_GENERAL_INTENTS")),
		UniversalIntents:  splitList(os.Getenv("CHAT_UNIVERSAL_INTENTS")),
	}

	if len(cfg.GeneralIntents) == 0 {
		cfg.GeneralIntents = chatService.DefaultGeneralIntents
	}
	if len(cfg.UniversalIntents) == 0 {
		cfg.UniversalIntents = chatService.DefaultUniversalIntents
	}

	var err error
	if cfg.SessionTTL, err = getDuration("SESSION_TTL", 24*time.Hour); err != nil {
		return ChatConfig{}, err
	}
	if cfg.ClassifierTimeout, err = getDuration("CLASSIFIER_TIMEOUT", defaults.ClassifierTimeout); err != nil {
		return ChatConfig{}, err
	}
	if cfg.ClassifierTimeout <= 0 {
		return ChatConfig{}, fmt.Errorf("CLASSIFIER_TIMEOUT must be positive, got %v", cfg.ClassifierTimeout)
	}
	if cfg.ConfidenceThreshold, err = getFloat("CHAT_CONFIDENCE_THRESHOLD", defaults.ConfidenceThreshold); err != nil {
		return ChatConfig{}, err
	}
	// Confidences are clamped to [0, 1].
	if cfg.ConfidenceThreshold <= 0 || cfg.ConfidenceThreshold > 1 {
		return ChatConfig{}, fmt.Errorf("CHAT_CONFIDENCE_THRESHOLD must be in (0, 1], got %v", cfg.ConfidenceThreshold)
	}
	if cfg.MaxFails, err = getInt("CHAT_MAX_FAILS", defaults.MaxFails); err != nil {
		return ChatConfig{}, err
	}
	if cfg.MaxFails < 1 {
		return ChatConfig{}, fmt.Errorf("CHAT_MAX_FAILS must be at least 1, got %d", cfg.MaxFails)
	}
	if cfg.RateLimit, err = getFloat("RATE_LIMIT_PER_SECOND", 5); err != nil {
		return ChatConfig{}, err
	}
	if cfg.RateBurst, err = getInt("RATE_LIMIT_BURST", 10); err != nil {
		return ChatConfig{}, err
	}
	if cfg.WhatsappEnabled, err = getBool("WHATSAPP_ENABLED", false); err != nil {
		return ChatConfig{}, err
	}
	if cfg.TranscribeVoice, err = getBool("WHATSAPP_TRANSCRIBE_VOICE", false); err != nil {
		return ChatConfig{}, err
	}

	switch cfg.SessionMode {
	case SessionModeClient, SessionModeShared:
	default:
		return ChatConfig{}, fmt.Errorf("SESSION_MODE must be %q or %q, got %q", SessionModeClient, SessionModeShared, cfg.SessionMode)
	}

	switch cfg.SessionStore {
	case SessionStoreMemory, SessionStoreRedis:
	default:
		return ChatConfig{}, fmt.Errorf("SESSION_STORE must be %q or %q, got %q", SessionStoreMemory, SessionStoreRedis, cfg.SessionStore)
	}

	switch cfg.ClassifierBackend {
	case ClassifierWebsocket, ClassifierGemini, ClassifierOpenAI, ClassifierKeyword:
	default:
		return ChatConfig{}, fmt.Errorf("unknown CLASSIFIER_BACKEND %q", cfg.ClassifierBackend)
	}

	if len(cfg.CatalogSources) == 0 {
		return ChatConfig{}, fmt.Errorf("CATALOG_SOURCES is empty")
	}

	return cfg, nil
}

func (c ChatConfig) SharedSession() bool {
	return c.SessionMode == SessionModeShared
}

func (c ChatConfig) Dialogue() chatService.DialogueConfig {
	return chatService.DialogueConfig{
		ConfidenceThreshold: c.ConfidenceThreshold,
		MaxFails:            c.MaxFails,
		ClassifierTimeout:   c.ClassifierTimeout,
	}
}

// UsesSQLCatalog reports whether one of the catalog sources is the database.
func (c ChatConfig) UsesSQLCatalog() bool {
	for _, source := range c.CatalogSources {
		if source == "sql" {
			return true
		}
	}
	return false
}

func (c ChatConfig) UsesS3Catalog() bool {
	for _, source := range c.CatalogSources {
		if strings.HasPrefix(source, "s3://") {
			return true
		}
	}
	return false
}

func getEnv(key, defaultVal string) string {
	if val := strings.TrimSpace(os.Getenv(key)); val != "" {
		return val
	}
	return defaultVal
}

func splitList(raw string) []string {
	var out []string
	for _, item := range strings.Split(raw, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

func getDuration(key string, defaultVal time.Duration) (time.Duration, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultVal, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d < 0 {
		return 0, fmt.Errorf("invalid %s %q: want a duration like 5s", key, raw)
	}
	return d, nil
}

func getFloat(key string, defaultVal float64) (float64, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultVal, nil
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || f < 0 {
		return 0, fmt.Errorf("invalid %s %q", key, raw)
	}
	return f, nil
}

func getInt(key string, defaultVal int) (int, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultVal, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("invalid %s %q", key, raw)
	}
	return n, nil
}

func getBool(key string, defaultVal bool) (bool, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultVal, nil
	}
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "true", "1", "yes", "on":
		return true, nil
	case "false", "0", "no", "off":
		return false, nil
	}
	return false, fmt.Errorf("invalid %s %q", key, raw)
}
