package profile

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/gifexplorer/gifsearch/internal/db"
	"github.com/gifexplorer/gifsearch/internal/domain"
)

const (
	tagsKeyPrefix    = "user:tags:"
	historyKeyPrefix = "user:history:"

	// defaultMaxHistory bounds the per-user search history.
	defaultMaxHistory = 200
)

// store is the consumer interface for profile data (ISP).
type store interface {
	HSet(ctx context.Context, key string, fields map[string]string) error
	HIncrBy(ctx context.Context, key, field string, val int64) error
	HGetAll(ctx context.Context, key string) (map[string]string, error)
	HDel(ctx context.Context, key string, fields ...string) error
	Del(ctx context.Context, key string) error
}

// Repo tracks per-user tag affinity counters and search history.
// Tags live in one hash per user (tag field, counter value); history in
// another (keyword field, unix-nano timestamp value), so re-searching a
// keyword refreshes its timestamp instead of duplicating it.
type Repo struct {
	store      store
	maxHistory int
	now        func() time.Time
}

// New creates a profile repository.
func New(s store) *Repo {
	return &Repo{store: s, maxHistory: defaultMaxHistory, now: time.Now}
}

// WithMaxHistory overrides the history bound.
func (r *Repo) WithMaxHistory(n int) *Repo {
	if n > 0 {
		r.maxHistory = n
	}
	return r
}

// WithClock overrides the time source, for tests.
func (r *Repo) WithClock(now func() time.Time) *Repo {
	r.now = now
	return r
}

// AddTags bumps the affinity counter of each tag by one.
func (r *Repo) AddTags(ctx context.Context, userID int64, tags []string) error {
	key := tagsKey(userID)
	for _, tag := range tags {
		if tag == "" {
			continue
		}
		if err := r.store.HIncrBy(ctx, key, tag, 1); err != nil {
			return fmt.Errorf("hincrby %s %s: %w", key, tag, err)
		}
	}
	return nil
}

// TagCounts returns the raw tag affinity counters for a user. Fields with
// unparsable counters are skipped.
func (r *Repo) TagCounts(ctx context.Context, userID int64) (map[string]int64, error) {
	key := tagsKey(userID)
	fields, err := r.store.HGetAll(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("hgetall %s: %w", key, err)
	}
	counts := make(map[string]int64, len(fields))
	for tag, raw := range fields {
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			continue
		}
		counts[tag] = n
	}
	return counts, nil
}

// AddSearchHistory records a keyword for the user, refreshing its timestamp
// if already present, then evicts the oldest entries past the bound.
func (r *Repo) AddSearchHistory(ctx context.Context, userID int64, keyword string) error {
	if keyword == "" {
		return nil
	}
	key := historyKey(userID)
	stamp := strconv.FormatInt(r.now().UnixNano(), 10)
	if err := r.store.HSet(ctx, key, map[string]string{keyword: stamp}); err != nil {
		return fmt.Errorf("hset %s: %w", key, err)
	}
	return r.evict(ctx, key)
}

// SearchHistory returns the user's history, most recent first.
func (r *Repo) SearchHistory(ctx context.Context, userID int64) ([]domain.HistoryEntry, error) {
	key := historyKey(userID)
	fields, err := r.store.HGetAll(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("hgetall %s: %w", key, err)
	}
	entries := make([]domain.HistoryEntry, 0, len(fields))
	for keyword, raw := range fields {
		nanos, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			continue
		}
		entries = append(entries, domain.HistoryEntry{Keyword: keyword, When: time.Unix(0, nanos)})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].When.Equal(entries[j].When) {
			return entries[i].Keyword < entries[j].Keyword
		}
		return entries[i].When.After(entries[j].When)
	})
	return entries, nil
}

// DeleteSearchHistory removes specific keywords, or the whole history when
// no keywords are given.
func (r *Repo) DeleteSearchHistory(ctx context.Context, userID int64, keywords ...string) error {
	key := historyKey(userID)
	if len(keywords) == 0 {
		if err := r.store.Del(ctx, key); err != nil && !errors.Is(err, db.ErrKeyNotFound) {
			return fmt.Errorf("del %s: %w", key, err)
		}
		return nil
	}
	if err := r.store.HDel(ctx, key, keywords...); err != nil {
		return fmt.Errorf("hdel %s: %w", key, err)
	}
	return nil
}

// evict trims the history hash down to maxHistory entries, oldest first.
func (r *Repo) evict(ctx context.Context, key string) error {
	fields, err := r.store.HGetAll(ctx, key)
	if err != nil {
		return fmt.Errorf("hgetall %s: %w", key, err)
	}
	if len(fields) <= r.maxHistory {
		return nil
	}

	type stamped struct {
		keyword string
		nanos   int64
	}
	all := make([]stamped, 0, len(fields))
	for keyword, raw := range fields {
		nanos, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			nanos = 0
		}
		all = append(all, stamped{keyword: keyword, nanos: nanos})
	}
	sort.Slice(all, func(i, j int) bool { return all[i].nanos < all[j].nanos })

	excess := len(all) - r.maxHistory
	victims := make([]string, 0, excess)
	for _, s := range all[:excess] {
		victims = append(victims, s.keyword)
	}
	if err := r.store.HDel(ctx, key, victims...); err != nil {
		return fmt.Errorf("hdel %s: %w", key, err)
	}
	return nil
}

func tagsKey(userID int64) string {
	return tagsKeyPrefix + strconv.FormatInt(userID, 10)
}

func historyKey(userID int64) string {
	return historyKeyPrefix + strconv.FormatInt(userID, 10)
}
