package recommend

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/gifexplorer/gifsearch/internal/domain"
)

const (
	// topTags caps how many profile tags feed the ranking query.
	topTags = 10

	// maxRecommendations bounds the hydrated result.
	maxRecommendations = 10
)

// Service produces personalized content rankings from tag affinity profiles.
type Service struct {
	personalizer Personalizer
	profiles     ProfileStore
	content      ContentResolver
}

// New creates a recommendation service.
func New(p Personalizer, profiles ProfileStore, content ContentResolver) *Service {
	return &Service{personalizer: p, profiles: profiles, content: content}
}

// Recommend returns up to ten records ranked by the principal's tag profile.
// Unresolvable ids are skipped without consuming a slot, so more than ten ids
// may be drawn from the ranked list to fill the page.
func (s *Service) Recommend(ctx context.Context, principal *domain.Principal) ([]domain.ContentRecord, error) {
	if principal == nil {
		return nil, domain.ErrUnauthorized
	}

	counts, err := s.profiles.TagCounts(ctx, principal.ID)
	if err != nil {
		return nil, fmt.Errorf("tag counts: %w", err)
	}

	ids, err := s.personalizer.Personalize(ctx, TopWeights(counts, topTags))
	if err != nil {
		return nil, fmt.Errorf("personalize: %w", err)
	}

	records := make([]domain.ContentRecord, 0, maxRecommendations)
	for _, id := range ids {
		if len(records) == maxRecommendations {
			break
		}
		rec, err := s.content.FindByID(ctx, id)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				continue
			}
			return nil, fmt.Errorf("resolve %d: %w", id, err)
		}
		records = append(records, rec)
	}
	return records, nil
}

// RecordRead folds a viewed record's tags into the principal's profile.
// This is the interaction signal Recommend later ranks by.
func (s *Service) RecordRead(ctx context.Context, principal *domain.Principal, id domain.ContentID) error {
	if principal == nil {
		return domain.ErrUnauthorized
	}
	rec, err := s.content.FindByID(ctx, id)
	if err != nil {
		return fmt.Errorf("resolve %d: %w", id, err)
	}
	if len(rec.Tags) == 0 {
		return nil
	}
	if err := s.profiles.AddTags(ctx, principal.ID, rec.Tags); err != nil {
		return fmt.Errorf("add tags: %w", err)
	}
	return nil
}

// TopWeights selects the n highest tag counts and normalizes them into (0,1]
// by dividing by the maximum of the selection. Ties break by tag name so the
// selection is deterministic.
func TopWeights(counts map[string]int64, n int) map[string]float64 {
	if len(counts) == 0 {
		return map[string]float64{}
	}

	type tagCount struct {
		tag   string
		count int64
	}
	all := make([]tagCount, 0, len(counts))
	for tag, count := range counts {
		all = append(all, tagCount{tag: tag, count: count})
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].count == all[j].count {
			return all[i].tag < all[j].tag
		}
		return all[i].count > all[j].count
	})

	if len(all) > n {
		all = all[:n]
	}
	max := all[0].count
	if max <= 0 {
		return map[string]float64{}
	}

	weights := make(map[string]float64, len(all))
	for _, tc := range all {
		weights[tc.tag] = float64(tc.count) / float64(max)
	}
	return weights
}
