package suggest

import (
	"context"
	"fmt"

	"github.com/gifexplorer/gifsearch/internal/domain"
	"github.com/gifexplorer/gifsearch/internal/domain/search/query"
)

// Service serves typing aids: prefix completion, spelling correction and
// trending search terms.
type Service struct {
	index Index
}

// New creates a suggestion service.
func New(index Index) *Service {
	return &Service{index: index}
}

// Suggest returns title completions for a prefix. An empty prefix yields no
// suggestions without an index round trip.
func (s *Service) Suggest(ctx context.Context, text string) ([]string, error) {
	if text == "" {
		return nil, nil
	}
	suggestions, err := s.index.SuggestPrefix(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("suggest: %w", err)
	}
	return dedupe(suggestions), nil
}

// Correct returns spelling corrections for the text against the target field,
// best candidate first. The target defaults to title and must otherwise name
// a searchable field.
func (s *Service) Correct(ctx context.Context, text, target string) ([]string, error) {
	if text == "" {
		return nil, fmt.Errorf("%w: empty text", domain.ErrMalformedQuery)
	}
	switch target {
	case "":
		target = query.TargetTitle
	case query.TargetTitle, query.TargetUploader:
	default:
		return nil, fmt.Errorf("%w: unknown target %q", domain.ErrMalformedQuery, target)
	}
	corrections, err := s.index.Correct(ctx, text, target)
	if err != nil {
		return nil, fmt.Errorf("correct: %w", err)
	}
	return corrections, nil
}

// HotWords returns the most frequent recorded search keywords.
func (s *Service) HotWords(ctx context.Context) ([]string, error) {
	words, err := s.index.HotWords(ctx)
	if err != nil {
		return nil, fmt.Errorf("hot words: %w", err)
	}
	return words, nil
}

func dedupe(in []string) []string {
	if len(in) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}
