package chatRepository

import (
	"TemanCerita/internal/api/chat"
	"TemanCerita/internal/entity"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/sirupsen/logrus"
)

func discardLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

type fakeObjects map[string][]byte

func (f fakeObjects) GetObject(_ context.Context, bucket, key string) ([]byte, error) {
	body, ok := f[bucket+"/"+key]
	if !ok {
		return nil, errors.New("NoSuchKey")
	}
	return body, nil
}

type staticReader struct {
	doc *CatalogDocument
	err error
}

func (s staticReader) ReadCatalog(context.Context) (*CatalogDocument, error) {
	return s.doc, s.err
}

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(p, []byte(body), 0o600); err != nil {
		t.Fatalf("write %s: %v", p, err)
	}
	return p
}

const yamlCatalog = `
responses:
  stress_general:
    - "Aku turut prihatin, {user_name}."
    - "Stres memang berat ya."
  stress_due_to_academic:
    - - "Tugas kuliah bisa bikin capek."
      - "Ujian memang menekan."
    - - "unused"
  greeting: "Halo!"
tips:
  stress_due_to_academic:
    - "Coba bagi tugas jadi bagian kecil."
declines:
  stress_due_to_academic:
    - "Gapapa, aku tetap di sini."
keywords:
  stress_general: ["stres", "tertekan"]
topics:
  greeting: small_talk
`

func TestNormalizePool(t *testing.T) {
	tests := []struct {
		name    string
		raw     interface{}
		want    []string
		wantErr bool
	}{
		{name: "single string", raw: "halo", want: []string{"halo"}},
		{name: "flat list", raw: []interface{}{"a", "b"}, want: []string{"a", "b"}},
		{name: "nested list keeps first", raw: []interface{}{[]interface{}{"a", "b"}, []interface{}{"c"}}, want: []string{"a", "b"}},
		{name: "string slice", raw: []string{"x"}, want: []string{"x"}},
		{name: "empty list", raw: []interface{}{}, wantErr: true},
		{name: "empty nested", raw: []interface{}{[]interface{}{}}, wantErr: true},
		{name: "non string item", raw: []interface{}{"a", 3}, wantErr: true},
		{name: "map", raw: map[string]interface{}{"a": "b"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NormalizePool(tt.raw)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got %v", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCatalogLoaderYAMLFile(t *testing.T) {
	path := writeFile(t, "catalog.yaml", yamlCatalog)
	loader := NewCatalogLoader(discardLogger(), nil, nil)

	catalog, err := loader.Load(context.Background(), []string{path}, []string{"stress_general"}, []string{"get_support_professional"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	pool, ok := catalog.Lookup("stress_due_to_academic")
	if !ok || !reflect.DeepEqual(pool, []string{"Tugas kuliah bisa bikin capek.", "Ujian memang menekan."}) {
		t.Errorf("nested pool not normalized: %v", pool)
	}
	if pool, _ := catalog.Lookup("greeting"); !reflect.DeepEqual(pool, []string{"Halo!"}) {
		t.Errorf("string pool not normalized: %v", pool)
	}
	if _, ok := catalog.Tip("stress_due_to_academic"); !ok {
		t.Error("expected tip pool")
	}
	if _, ok := catalog.Decline("stress_due_to_academic"); !ok {
		t.Error("expected decline pool")
	}

	if meta := catalog.Meta("stress_general"); meta.Kind != entity.IntentKindGeneral || meta.Topic != "stress" {
		t.Errorf("unexpected general meta %+v", meta)
	}
	if meta := catalog.Meta("stress_due_to_academic"); meta.Kind != entity.IntentKindReason || meta.Topic != "stress" {
		t.Errorf("unexpected reason meta %+v", meta)
	}
	if meta := catalog.Meta("greeting"); meta.Topic != "small_talk" {
		t.Errorf("explicit topic ignored: %+v", meta)
	}
	if meta := catalog.Meta("get_support_professional"); meta.Kind != entity.IntentKindUniversal {
		t.Errorf("unexpected universal meta %+v", meta)
	}
	if len(catalog.Keywords["stress_general"]) != 2 {
		t.Errorf("keywords not loaded: %v", catalog.Keywords)
	}
}

func TestCatalogLoaderMergesInOrder(t *testing.T) {
	base := writeFile(t, "base.json", `{"responses":{"greeting":["Halo"],"bye":["Dah"]}}`)
	override := writeFile(t, "override.yml", "responses:\n  greeting: [\"Hai lagi\"]\n")

	objects := fakeObjects{"bucket/extra.json": []byte(`{"tips":{"bye":["Tidur cukup ya"]}}`)}
	sqlDoc := &CatalogDocument{Declines: map[string]interface{}{"bye": []interface{}{"Oke"}}}

	loader := NewCatalogLoader(discardLogger(), objects, staticReader{doc: sqlDoc})
	catalog, err := loader.Load(context.Background(), []string{base, override, "s3://bucket/extra.json", SQLSource}, nil, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if pool, _ := catalog.Lookup("greeting"); !reflect.DeepEqual(pool, []string{"Hai lagi"}) {
		t.Errorf("later source should win, got %v", pool)
	}
	if pool, _ := catalog.Lookup("bye"); !reflect.DeepEqual(pool, []string{"Dah"}) {
		t.Errorf("earlier tag lost, got %v", pool)
	}
	if _, ok := catalog.Tip("bye"); !ok {
		t.Error("s3 source not merged")
	}
	if _, ok := catalog.Decline("bye"); !ok {
		t.Error("sql source not merged")
	}
}

func TestCatalogLoaderErrors(t *testing.T) {
	ctx := context.Background()
	log := discardLogger()

	t.Run("no sources", func(t *testing.T) {
		_, err := NewCatalogLoader(log, nil, nil).Load(ctx, nil, nil, nil)
		if !errors.Is(err, chat.ErrCatalogEmpty) {
			t.Errorf("expected ErrCatalogEmpty, got %v", err)
		}
	})

	t.Run("empty catalog", func(t *testing.T) {
		path := writeFile(t, "empty.json", `{}`)
		_, err := NewCatalogLoader(log, nil, nil).Load(ctx, []string{path}, nil, nil)
		if !errors.Is(err, chat.ErrCatalogEmpty) {
			t.Errorf("expected ErrCatalogEmpty, got %v", err)
		}
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := NewCatalogLoader(log, nil, nil).Load(ctx, []string{filepath.Join(t.TempDir(), "nope.yaml")}, nil, nil)
		if err == nil {
			t.Error("expected error for missing file")
		}
	})

	t.Run("malformed json", func(t *testing.T) {
		path := writeFile(t, "bad.json", `{"responses":`)
		_, err := NewCatalogLoader(log, nil, nil).Load(ctx, []string{path}, nil, nil)
		if !errors.Is(err, chat.ErrCatalogInvalid) {
			t.Errorf("expected ErrCatalogInvalid, got %v", err)
		}
	})

	t.Run("empty pool", func(t *testing.T) {
		path := writeFile(t, "pool.json", `{"responses":{"greeting":[]}}`)
		_, err := NewCatalogLoader(log, nil, nil).Load(ctx, []string{path}, nil, nil)
		if !errors.Is(err, chat.ErrCatalogInvalid) {
			t.Errorf("expected ErrCatalogInvalid, got %v", err)
		}
	})

	t.Run("sql without database", func(t *testing.T) {
		_, err := NewCatalogLoader(log, nil, nil).Load(ctx, []string{SQLSource}, nil, nil)
		if err == nil {
			t.Error("expected error without sql reader")
		}
	})

	t.Run("s3 without client", func(t *testing.T) {
		_, err := NewCatalogLoader(log, nil, nil).Load(ctx, []string{"s3://bucket/key.json"}, nil, nil)
		if err == nil {
			t.Error("expected error without s3 client")
		}
	})

	t.Run("reader failure", func(t *testing.T) {
		loader := NewCatalogLoader(log, nil, staticReader{err: errors.New("connection refused")})
		if _, err := loader.Load(ctx, []string{SQLSource}, nil, nil); err == nil {
			t.Error("expected reader error")
		}
	})
}
