package search

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/gifexplorer/gifsearch/internal/domain"
	"github.com/gifexplorer/gifsearch/internal/domain/search/mode"
	"github.com/gifexplorer/gifsearch/internal/domain/search/query"
	"github.com/gifexplorer/gifsearch/internal/pagination"
)

const (
	defaultPageSize        = 20
	defaultHistoryPageSize = 10
)

// Result is one hydrated page of search results.
type Result struct {
	PageCount int
	Records   []domain.ContentRecord
}

// Service orchestrates a search: cache lookup, index dispatch on miss,
// hydration against the metadata store, pagination.
type Service struct {
	index           Index
	indexer         Indexer
	content         ContentStore
	profile         Profile
	cache           Cache
	pageSize        int
	historyPageSize int
	logger          *zap.Logger
}

// New creates a search service.
func New(index Index, indexer Indexer, content ContentStore, profile Profile, cache Cache) *Service {
	return &Service{
		index:           index,
		indexer:         indexer,
		content:         content,
		profile:         profile,
		cache:           cache,
		pageSize:        defaultPageSize,
		historyPageSize: defaultHistoryPageSize,
		logger:          zap.NewNop(),
	}
}

// WithPageSize overrides the content page size.
func (s *Service) WithPageSize(n int) *Service {
	if n > 0 {
		s.pageSize = n
	}
	return s
}

// WithHistoryPageSize overrides the history listing page size.
func (s *Service) WithHistoryPageSize(n int) *Service {
	if n > 0 {
		s.historyPageSize = n
	}
	return s
}

// WithLogger attaches a logger for best-effort side effects.
func (s *Service) WithLogger(l *zap.Logger) *Service {
	if l != nil {
		s.logger = l
	}
	return s
}

// Search resolves a normalized query into a hydrated result page.
//
// The regex mode bypasses both the cache and the index and evaluates against
// the metadata store directly. Keyword modes go through the result cache; a
// miss dispatches to the index, records the principal's search signals and
// repopulates the cache. Ids are hydrated afterwards, dropping the ones that
// no longer resolve, and the page count derives from the surviving records.
func (s *Service) Search(ctx context.Context, q *query.Query, principal *domain.Principal) (Result, error) {
	var ids []domain.ContentID
	var err error

	if q.Mode() == mode.Regex {
		ids, err = s.content.SearchRegex(ctx, q)
		if err != nil {
			return Result{}, fmt.Errorf("regex search: %w", err)
		}
	} else {
		key := q.CacheKey()
		cached, ok := s.cache.Get(key, q.Tags())
		if ok {
			ids = cached
		} else {
			s.recordSignals(ctx, q, principal)
			ids, err = s.index.Search(ctx, q)
			if err != nil {
				return Result{}, fmt.Errorf("index search: %w", err)
			}
			s.cache.Put(key, ids, q.Tags())
		}
	}

	records, err := s.content.FindByIDs(ctx, ids)
	if err != nil {
		return Result{}, fmt.Errorf("hydrate: %w", err)
	}

	slice, pageCount := pagination.Paginate(records, q.Page()-1, s.pageSize)
	return Result{PageCount: pageCount, Records: slice}, nil
}

// Publish stores a metadata record and mirrors it into the search index.
// Indexing lag is accepted: the record may not be searchable immediately.
func (s *Service) Publish(ctx context.Context, rec domain.ContentRecord) error {
	if rec.ID <= 0 {
		return fmt.Errorf("%w: content id must be positive", domain.ErrMalformedQuery)
	}
	if err := s.content.Put(ctx, rec); err != nil {
		return fmt.Errorf("store metadata: %w", err)
	}
	if err := s.indexer.PutMetadata(ctx, rec); err != nil {
		return fmt.Errorf("index metadata: %w", err)
	}
	return nil
}

// Remove deletes a record from the index first so it stops being searchable,
// then from the metadata store.
func (s *Service) Remove(ctx context.Context, id domain.ContentID) error {
	if err := s.indexer.DeleteMetadata(ctx, id); err != nil {
		return fmt.Errorf("unindex metadata: %w", err)
	}
	if err := s.content.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete metadata: %w", err)
	}
	return nil
}

// History returns one page of the principal's search history, most recent
// first, with the total page count.
func (s *Service) History(ctx context.Context, principal *domain.Principal, page int) ([]domain.HistoryEntry, int, error) {
	if principal == nil {
		return nil, 0, domain.ErrUnauthorized
	}
	if page <= 0 {
		return nil, 0, fmt.Errorf("%w: page %d", domain.ErrInvalidPage, page)
	}
	entries, err := s.profile.SearchHistory(ctx, principal.ID)
	if err != nil {
		return nil, 0, fmt.Errorf("search history: %w", err)
	}
	slice, pageCount := pagination.Paginate(entries, page-1, s.historyPageSize)
	return slice, pageCount, nil
}

// ClearHistory removes the given keywords from the principal's history, or
// everything when no keywords are given.
func (s *Service) ClearHistory(ctx context.Context, principal *domain.Principal, keywords ...string) error {
	if principal == nil {
		return domain.ErrUnauthorized
	}
	if err := s.profile.DeleteSearchHistory(ctx, principal.ID, keywords...); err != nil {
		return fmt.Errorf("delete search history: %w", err)
	}
	return nil
}

// recordSignals appends the keyword to the principal's history and tag
// profile. Best effort: a profile write failure must not fail the search.
func (s *Service) recordSignals(ctx context.Context, q *query.Query, principal *domain.Principal) {
	if principal == nil || q.Keyword() == "" {
		return
	}
	if err := s.profile.AddSearchHistory(ctx, principal.ID, q.Keyword()); err != nil {
		s.logger.Warn("failed to record search history",
			zap.Int64("user_id", principal.ID), zap.Error(err))
	}
	if err := s.profile.AddTags(ctx, principal.ID, []string{q.Keyword()}); err != nil {
		s.logger.Warn("failed to update tag profile",
			zap.Int64("user_id", principal.ID), zap.Error(err))
	}
}
