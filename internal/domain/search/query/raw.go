package query

import (
	"fmt"

	"github.com/gifexplorer/gifsearch/internal/domain"
	"github.com/gifexplorer/gifsearch/internal/domain/search/filter"
)

// RawBounds is the wire shape of one inclusive numeric range.
type RawBounds struct {
	GTE *float64 `json:"gte"`
	LTE *float64 `json:"lte"`
}

// RawFilter is the wire shape of one filter list element:
//
//	{"range": {"width": {"gte": 0, "lte": 100}}}
type RawFilter struct {
	Range map[string]RawBounds `json:"range"`
}

// ParseFilters validates the raw filter list and converts it to range filters.
// Every element must carry a "range" mapping exactly one recognized dimension
// to complete inclusive bounds; anything else is a malformed query.
func ParseFilters(items []RawFilter) ([]filter.Range, error) {
	if len(items) == 0 {
		return nil, nil
	}
	out := make([]filter.Range, 0, len(items))
	for _, item := range items {
		if len(item.Range) != 1 {
			return nil, fmt.Errorf("%w: filter element must contain a single range", domain.ErrMalformedQuery)
		}
		for dim, bounds := range item.Range {
			if bounds.GTE == nil || bounds.LTE == nil {
				return nil, fmt.Errorf("%w: range %q needs both gte and lte", domain.ErrMalformedQuery, dim)
			}
			r, err := filter.NewRange(filter.Dimension(dim), *bounds.GTE, *bounds.LTE)
			if err != nil {
				return nil, err
			}
			out = append(out, r)
		}
	}
	return out, nil
}
