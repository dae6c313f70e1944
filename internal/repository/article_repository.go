// Package repository declares the persistence ports used by the CLI, worker
// and web handlers.
package repository

import (
	"context"

	"astro-news/internal/domain/entity"
)

// ArticleRepository stores one ordered collection of articles. Save replaces
// the whole collection.
type ArticleRepository interface {
	Save(ctx context.Context, articles []entity.Article) error
	// Load returns the stored collection, or an empty slice when nothing
	// has been saved yet.
	Load(ctx context.Context) ([]entity.Article, error)
}

// DigestWriter writes a human-readable rendering of a collection next to
// its JSON file.
type DigestWriter interface {
	SaveDigest(ctx context.Context, articles []entity.Article) (string, error)
}
