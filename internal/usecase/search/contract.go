package search

import (
	"context"

	"github.com/gifexplorer/gifsearch/internal/domain"
	"github.com/gifexplorer/gifsearch/internal/domain/search/query"
)

// Index runs keyword-mode queries against the external search engine.
type Index interface {
	Search(ctx context.Context, q *query.Query) ([]domain.ContentID, error)
}

// Indexer keeps the search engine's copy of content metadata in sync.
type Indexer interface {
	PutMetadata(ctx context.Context, rec domain.ContentRecord) error
	DeleteMetadata(ctx context.Context, id domain.ContentID) error
}

// ContentStore resolves ids to records and serves the regex path, which
// never touches the index.
type ContentStore interface {
	Put(ctx context.Context, rec domain.ContentRecord) error
	Delete(ctx context.Context, id domain.ContentID) error
	FindByIDs(ctx context.Context, ids []domain.ContentID) ([]domain.ContentRecord, error)
	SearchRegex(ctx context.Context, q *query.Query) ([]domain.ContentID, error)
}

// Profile records per-user search signals and serves history listings.
type Profile interface {
	AddTags(ctx context.Context, userID int64, tags []string) error
	AddSearchHistory(ctx context.Context, userID int64, keyword string) error
	SearchHistory(ctx context.Context, userID int64) ([]domain.HistoryEntry, error)
	DeleteSearchHistory(ctx context.Context, userID int64, keywords ...string) error
}

// Cache is the result cache keyed on the normalized query shape.
type Cache interface {
	Get(key string, currentTags []string) ([]domain.ContentID, bool)
	Put(key string, ids []domain.ContentID, tags []string)
}
