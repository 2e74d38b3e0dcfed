package content

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strconv"

	"github.com/gifexplorer/gifsearch/internal/db"
	"github.com/gifexplorer/gifsearch/internal/domain"
	"github.com/gifexplorer/gifsearch/internal/domain/search/query"
)

const keyPrefix = "gif:"

// store is the consumer interface for content metadata (ISP).
type store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Del(ctx context.Context, key string) error
	Scan(ctx context.Context, pattern string) ([]string, error)
}

// Repo stores gif metadata as JSON blobs keyed by content id.
type Repo struct {
	store store
}

// New creates a content repository.
func New(s store) *Repo {
	return &Repo{store: s}
}

// Put creates or replaces a metadata record.
func (r *Repo) Put(ctx context.Context, rec domain.ContentRecord) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal record: %w", err)
	}
	key := contentKey(rec.ID)
	if err := r.store.Set(ctx, key, data); err != nil {
		return fmt.Errorf("set %s: %w", key, err)
	}
	return nil
}

// FindByID returns a record by id.
func (r *Repo) FindByID(ctx context.Context, id domain.ContentID) (domain.ContentRecord, error) {
	key := contentKey(id)
	raw, err := r.store.Get(ctx, key)
	if err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return domain.ContentRecord{}, domain.ErrNotFound
		}
		return domain.ContentRecord{}, fmt.Errorf("get %s: %w", key, err)
	}
	var rec domain.ContentRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		return domain.ContentRecord{}, fmt.Errorf("unmarshal %s: %w", key, err)
	}
	return rec, nil
}

// FindByIDs resolves ids in order, silently dropping ids with no record.
// An id in the index but not in the store means the gif was deleted after
// indexing; the gap must not surface to the caller.
func (r *Repo) FindByIDs(ctx context.Context, ids []domain.ContentID) ([]domain.ContentRecord, error) {
	records := make([]domain.ContentRecord, 0, len(ids))
	for _, id := range ids {
		rec, err := r.FindByID(ctx, id)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				continue
			}
			return nil, err
		}
		records = append(records, rec)
	}
	return records, nil
}

// Delete removes a metadata record.
func (r *Repo) Delete(ctx context.Context, id domain.ContentID) error {
	key := contentKey(id)
	if _, err := r.store.Get(ctx, key); err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("get %s: %w", key, err)
	}
	if err := r.store.Del(ctx, key); err != nil {
		return fmt.Errorf("del %s: %w", key, err)
	}
	return nil
}

// SearchRegex evaluates a regex query directly against the metadata store,
// bypassing the search index. The pattern runs over the query target field
// and the category, range and tag constraints apply as predicates. Results
// come back in ascending id order so pagination is stable.
func (r *Repo) SearchRegex(ctx context.Context, q *query.Query) ([]domain.ContentID, error) {
	re, err := regexp.Compile(q.Keyword())
	if err != nil {
		return nil, fmt.Errorf("%w: invalid pattern %q: %v", domain.ErrMalformedQuery, q.Keyword(), err)
	}

	keys, err := r.store.Scan(ctx, keyPrefix+"*")
	if err != nil {
		return nil, fmt.Errorf("scan: %w", err)
	}

	var ids []domain.ContentID
	for _, key := range keys {
		raw, err := r.store.Get(ctx, key)
		if err != nil {
			if errors.Is(err, db.ErrKeyNotFound) {
				continue
			}
			return nil, fmt.Errorf("get %s: %w", key, err)
		}
		var rec domain.ContentRecord
		if err := json.Unmarshal(raw, &rec); err != nil {
			continue
		}
		if matches(&rec, q, re) {
			ids = append(ids, rec.ID)
		}
	}

	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

func matches(rec *domain.ContentRecord, q *query.Query, re *regexp.Regexp) bool {
	field := rec.Title
	if q.Target() == query.TargetUploader {
		field = rec.Uploader
	}
	if !re.MatchString(field) {
		return false
	}
	if q.Category() != "" && rec.Category != q.Category() {
		return false
	}
	for _, f := range q.Filters() {
		var v float64
		switch f.Dim() {
		case "width":
			v = float64(rec.Width)
		case "height":
			v = float64(rec.Height)
		case "duration":
			v = rec.Duration
		}
		if !f.Contains(v) {
			return false
		}
	}
	for _, tag := range q.Tags() {
		if !hasTag(rec.Tags, tag) {
			return false
		}
	}
	return true
}

func hasTag(tags []string, tag string) bool {
	for _, t := range tags {
		if t == tag {
			return true
		}
	}
	return false
}

func contentKey(id domain.ContentID) string {
	return keyPrefix + strconv.FormatInt(int64(id), 10)
}
