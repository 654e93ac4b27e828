package chatRepository

import (
	"TemanCerita/internal/entity"
	"context"

	"github.com/jmoiron/sqlx"
)

type SQLExecutor interface {
	sqlx.ExtContext
	SelectContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
	Rebind(query string) string
}

// SessionStore persists chat sessions by key. Get returns
// chat.ErrSessionNotFound for unknown or expired keys.
type SessionStore interface {
	Get(ctx context.Context, id string) (entity.ChatSession, error)
	Save(ctx context.Context, session entity.ChatSession) error
	Delete(ctx context.Context, id string) error
}

// SessionLocker is implemented by stores shared between processes. Lock
// blocks until the session is free or ctx is done and returns the release
// func.
type SessionLocker interface {
	Lock(ctx context.Context, id string) (func(), error)
}

// CatalogReader loads response templates from one source.
type CatalogReader interface {
	ReadCatalog(ctx context.Context) (*CatalogDocument, error)
}

// CatalogDocument is the raw, not yet normalized shape of a catalog source.
// Pools may be a list of templates or a list of lists of templates.
type CatalogDocument struct {
	Responses map[string]interface{} `json:"responses" yaml:"responses"`
	Tips      map[string]interface{} `json:"tips" yaml:"tips"`
	Declines  map[string]interface{} `json:"declines" yaml:"declines"`
	Keywords  map[string][]string    `json:"keywords" yaml:"keywords"`
	Topics    map[string]string      `json:"topics" yaml:"topics"`
}
