package chatRepository

import (
	"TemanCerita/internal/api/chat"
	"TemanCerita/internal/entity"
	contextPkg "TemanCerita/pkg/context"
	"TemanCerita/pkg/s3"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"
)

// SQLSource is the catalog source name that selects the database reader.
const SQLSource = "sql"

type fileCatalogReader struct {
	path string
}

func NewFileCatalogReader(path string) CatalogReader {
	return &fileCatalogReader{path: path}
}

func (r *fileCatalogReader) ReadCatalog(ctx context.Context) (*CatalogDocument, error) {
	body, err := os.ReadFile(r.path)
	if err != nil {
		return nil, fmt.Errorf("read catalog file %s: %w", r.path, err)
	}
	return DecodeCatalog(r.path, body)
}

type s3CatalogReader struct {
	client s3.ItfS3
	bucket string
	key    string
}

func NewS3CatalogReader(client s3.ItfS3, rawURL string) (CatalogReader, error) {
	bucket, key, err := s3.ParseURL(rawURL)
	if err != nil {
		return nil, err
	}
	return &s3CatalogReader{client: client, bucket: bucket, key: key}, nil
}

func (r *s3CatalogReader) ReadCatalog(ctx context.Context) (*CatalogDocument, error) {
	body, err := r.client.GetObject(ctx, r.bucket, r.key)
	if err != nil {
		return nil, err
	}
	return DecodeCatalog(r.key, body)
}

// DecodeCatalog parses YAML for .yaml/.yml names and JSON otherwise.
func DecodeCatalog(name string, body []byte) (*CatalogDocument, error) {
	var doc CatalogDocument

	switch strings.ToLower(filepath.Ext(name)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(body, &doc); err != nil {
			return nil, fmt.Errorf("%w: %s: %v", chat.ErrCatalogInvalid, name, err)
		}
	default:
		if err := json.Unmarshal(body, &doc); err != nil {
			return nil, fmt.Errorf("%w: %s: %v", chat.ErrCatalogInvalid, name, err)
		}
	}

	return &doc, nil
}

// CatalogLoader builds the response catalog from every configured source.
type CatalogLoader struct {
	log       *logrus.Logger
	s3Client  s3.ItfS3
	sqlReader CatalogReader
}

func NewCatalogLoader(log *logrus.Logger, s3Client s3.ItfS3, sqlReader CatalogReader) *CatalogLoader {
	return &CatalogLoader{
		log:       log,
		s3Client:  s3Client,
		sqlReader: sqlReader,
	}
}

func (l *CatalogLoader) readerFor(source string) (CatalogReader, error) {
	switch {
	case source == SQLSource:
		if l.sqlReader == nil {
			return nil, fmt.Errorf("catalog source %q needs a database connection", source)
		}
		return l.sqlReader, nil
	case strings.HasPrefix(source, "s3://"):
		if l.s3Client == nil {
			return nil, fmt.Errorf("catalog source %q needs an s3 client", source)
		}
		return NewS3CatalogReader(l.s3Client, source)
	default:
		return NewFileCatalogReader(source), nil
	}
}

// Load reads all sources concurrently and merges them in the given order, a
// later source overriding a tag defined by an earlier one. Nested pools are
// reduced to their first inner list. The result is indexed with the general
// and universal intent sets.
func (l *CatalogLoader) Load(ctx context.Context, sources []string, general, universal []string) (*entity.ResponseCatalog, error) {
	requestID := contextPkg.GetRequestID(ctx)

	if len(sources) == 0 {
		return nil, fmt.Errorf("%w: no catalog sources configured", chat.ErrCatalogEmpty)
	}

	docs := make([]*CatalogDocument, len(sources))
	g, gctx := errgroup.WithContext(ctx)

	for i, source := range sources {
		reader, err := l.readerFor(source)
		if err != nil {
			return nil, err
		}

		g.Go(func() error {
			doc, err := reader.ReadCatalog(gctx)
			if err != nil {
				return fmt.Errorf("catalog source %s: %w", source, err)
			}
			docs[i] = doc
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		l.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to load response catalog")
		return nil, err
	}

	catalog := entity.NewResponseCatalog()
	topics := make(map[string]string)

	for i, doc := range docs {
		if doc == nil {
			continue
		}
		if err := mergeTable(catalog.Responses, doc.Responses); err != nil {
			return nil, fmt.Errorf("%s responses: %w", sources[i], err)
		}
		if err := mergeTable(catalog.Tips, doc.Tips); err != nil {
			return nil, fmt.Errorf("%s tips: %w", sources[i], err)
		}
		if err := mergeTable(catalog.Declines, doc.Declines); err != nil {
			return nil, fmt.Errorf("%s declines: %w", sources[i], err)
		}
		for tag, words := range doc.Keywords {
			catalog.Keywords[tag] = words
		}
		for tag, topic := range doc.Topics {
			topics[tag] = topic
		}
	}

	if catalog.Size() == 0 {
		return nil, chat.ErrCatalogEmpty
	}

	catalog.IndexIntents(general, universal, topics)

	l.log.WithFields(logrus.Fields{
		"request_id": requestID,
		"sources":    sources,
		"responses":  len(catalog.Responses),
		"tips":       len(catalog.Tips),
		"declines":   len(catalog.Declines),
		"intents":    len(catalog.Intents),
	}).Info("Response catalog loaded")

	return catalog, nil
}

func mergeTable(dst map[string][]string, src map[string]interface{}) error {
	for tag, raw := range src {
		pool, err := NormalizePool(raw)
		if err != nil {
			return fmt.Errorf("%w: tag %s: %v", chat.ErrCatalogInvalid, tag, err)
		}
		dst[tag] = pool
	}
	return nil
}

// NormalizePool turns a raw pool into a flat template list. A lone string is
// a one-template pool; a list whose first element is itself a list is a
// nested pool and only that first inner list is kept.
func NormalizePool(raw interface{}) ([]string, error) {
	switch v := raw.(type) {
	case string:
		return []string{v}, nil
	case []string:
		if len(v) == 0 {
			return nil, fmt.Errorf("empty pool")
		}
		return v, nil
	case []interface{}:
		if len(v) == 0 {
			return nil, fmt.Errorf("empty pool")
		}
		if _, nested := v[0].([]interface{}); nested {
			return NormalizePool(v[0])
		}
		pool := make([]string, 0, len(v))
		for i, item := range v {
			s, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("template %d is %T, want string", i, item)
			}
			pool = append(pool, s)
		}
		return pool, nil
	default:
		return nil, fmt.Errorf("pool is %T, want list of templates", raw)
	}
}
