package query

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/gifexplorer/gifsearch/internal/domain"
	"github.com/gifexplorer/gifsearch/internal/domain/search/filter"
	"github.com/gifexplorer/gifsearch/internal/domain/search/mode"
)

// Search target constants.
const (
	TargetAny      = ""
	TargetTitle    = "title"
	TargetUploader = "uploader"
)

// Query is a validated, normalized search request.
type Query struct {
	target   string
	keyword  string
	category string
	filters  []filter.Range
	tags     []string
	mode     mode.Mode
	page     int
}

// New validates and normalizes search parameters.
// Defaults: mode=perfect, page=1. Tags are deduplicated and sorted so the
// snapshot stored alongside a cache entry compares stably.
//
// For keyword modes, target and keyword must be jointly empty or jointly
// non-empty. Regex mode instead coerces an unusable target to "title", a
// permissive fallback the rest of the modes do not get.
func New(
	target, keyword, category string,
	filters []filter.Range,
	tags []string,
	m mode.Mode,
	page int,
) (Query, error) {
	if m == "" {
		m = mode.Perfect
	}
	if !m.IsValid() {
		return Query{}, fmt.Errorf("%w: unknown search mode %q", domain.ErrMalformedQuery, m)
	}
	if page <= 0 {
		return Query{}, fmt.Errorf("%w: page %d", domain.ErrInvalidPage, page)
	}

	if m == mode.Regex {
		if target != TargetTitle && target != TargetUploader {
			target = TargetTitle
		}
	} else {
		if target != TargetAny && target != TargetTitle && target != TargetUploader {
			return Query{}, fmt.Errorf("%w: unknown target %q", domain.ErrMalformedQuery, target)
		}
		if (target == "") != (keyword == "") {
			return Query{}, fmt.Errorf(
				"%w: target and keyword must both be set or both be empty", domain.ErrMalformedQuery)
		}
	}

	return Query{
		target:   target,
		keyword:  keyword,
		category: category,
		filters:  filters,
		tags:     normalizeTags(tags),
		mode:     m,
		page:     page,
	}, nil
}

// Target returns the field the keyword matches against.
func (q *Query) Target() string { return q.target }

// Keyword returns the search text.
func (q *Query) Keyword() string { return q.keyword }

// Category returns the exact category constraint, empty for none.
func (q *Query) Category() string { return q.category }

// Filters returns the numeric range constraints.
func (q *Query) Filters() []filter.Range { return q.filters }

// Tags returns the sorted, deduplicated tag constraint set.
func (q *Query) Tags() []string { return q.tags }

// Mode returns the search strategy.
func (q *Query) Mode() mode.Mode { return q.mode }

// Page returns the 1-based page number.
func (q *Query) Page() int { return q.page }

// rangeSentinel marks an absent dimension in the cache key.
const rangeSentinel = "0_0"

// CacheKey derives the result-cache key from the mode-relevant fields.
// The tag set is intentionally not part of the key; the cache compares the
// stored tag snapshot at lookup time instead, so two queries that differ only
// in tags share a key but never a hit.
func (q *Query) CacheKey() string {
	width, height, duration := rangeSentinel, rangeSentinel, rangeSentinel
	for _, f := range q.filters {
		bounds := formatBound(f.Low()) + "_" + formatBound(f.High())
		switch f.Dim() {
		case filter.Width:
			width = bounds
		case filter.Height:
			height = bounds
		case filter.Duration:
			duration = bounds
		}
	}
	return strings.Join([]string{
		string(q.mode), q.target, q.keyword, q.category,
		width, height, duration, strconv.Itoa(q.page),
	}, "_")
}

func formatBound(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func normalizeTags(tags []string) []string {
	if len(tags) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(tags))
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}
