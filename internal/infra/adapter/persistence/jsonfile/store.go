// Package jsonfile persists article collections as pretty-printed JSON arrays,
// with an optional plain-text digest alongside.
package jsonfile

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"astro-news/internal/domain/entity"
	"astro-news/internal/observability/metrics"
	"astro-news/internal/repository"
)

// ErrInvalidFormat is returned by Load when the file is not a JSON array of articles.
var ErrInvalidFormat = errors.New("invalid article file format")

var _ repository.ArticleRepository = (*Store)(nil)
var _ repository.DigestWriter = (*Store)(nil)

// Store reads and writes one JSON file. Writes go to a temporary file in the
// same directory which is then renamed over the target, so readers never see
// a partial file.
type Store struct {
	path string
	mu   sync.Mutex
}

// NewStore creates a Store for path. The file need not exist.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// Path returns the JSON file path.
func (s *Store) Path() string {
	return s.path
}

// Save replaces the file with articles. content_length is derived from
// content where content is present.
func (s *Store) Save(ctx context.Context, articles []entity.Article) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	records := entity.CloneArticles(articles)
	if records == nil {
		records = []entity.Article{}
	}
	for i := range records {
		if records[i].Content != "" {
			records[i].DeriveContentLength()
		}
		if records[i].Authors == nil {
			records[i].Authors = []string{}
		}
	}

	var buf bytes.Buffer
	if err := Encode(&buf, records); err != nil {
		return fmt.Errorf("encode articles: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	err := writeFileAtomic(s.path, buf.Bytes())
	metrics.RecordPersistenceWrite("json", filepath.Base(s.path), len(records), err)
	if err != nil {
		return fmt.Errorf("save %s: %w", s.path, err)
	}

	slog.Info("articles saved",
		slog.String("path", s.path),
		slog.Int("count", len(records)))
	return nil
}

// Load reads the file. A missing or empty file yields an empty slice.
func (s *Store) Load(ctx context.Context) ([]entity.Article, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	data, err := os.ReadFile(s.path)
	s.mu.Unlock()
	if errors.Is(err, os.ErrNotExist) {
		return []entity.Article{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", s.path, err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return []entity.Article{}, nil
	}

	articles, err := Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", s.path, err)
	}
	return articles, nil
}

// SaveDigest writes the text digest to DigestPath(s.Path()) and returns that path.
func (s *Store) SaveDigest(ctx context.Context, articles []entity.Article) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	path := DigestPath(s.path)
	var buf bytes.Buffer
	if err := WriteDigest(&buf, articles); err != nil {
		return "", err
	}

	err := writeFileAtomic(path, buf.Bytes())
	metrics.RecordPersistenceWrite("digest", filepath.Base(path), len(articles), err)
	if err != nil {
		return "", fmt.Errorf("save digest %s: %w", path, err)
	}
	return path, nil
}

// Encode writes articles as a JSON array indented by two spaces, leaving
// non-ASCII text and HTML characters unescaped.
func Encode(w io.Writer, articles []entity.Article) error {
	if articles == nil {
		articles = []entity.Article{}
	}
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	return enc.Encode(articles)
}

// Decode reads a JSON array of articles. Unknown keys are ignored and
// missing optional keys decode to zero values.
func Decode(r io.Reader) ([]entity.Article, error) {
	var articles []entity.Article
	if err := json.NewDecoder(r).Decode(&articles); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidFormat, err)
	}
	if articles == nil {
		articles = []entity.Article{}
	}
	return articles, nil
}

func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer func() {
		// no-op after a successful rename
		_ = os.Remove(tmpName)
	}()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}
