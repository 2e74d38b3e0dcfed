package elastic

import (
	"strconv"

	"github.com/gifexplorer/gifsearch/internal/domain/search/query"
)

// Query body builders. Each keyword mode produces a bool/must query over the
// target field plus the shared range, category and tag constraints. Kept as
// plain maps so the builders stay independently testable.

func perfectBody(q *query.Query) map[string]any {
	var clauses []any
	if q.Target() != "" {
		clauses = append(clauses, map[string]any{
			"term": map[string]any{q.Target() + ".keyword": q.Keyword()},
		})
	}
	return boolMustBody(append(clauses, commonClauses(q)...))
}

func partialBody(q *query.Query) map[string]any {
	var clauses []any
	if q.Target() != "" {
		clauses = append(clauses, map[string]any{
			"match": map[string]any{q.Target(): map[string]any{
				"query":    q.Keyword(),
				"operator": "and",
			}},
		})
	}
	return boolMustBody(append(clauses, commonClauses(q)...))
}

func fuzzyBody(q *query.Query) map[string]any {
	var clauses []any
	if q.Target() != "" {
		clauses = append(clauses, map[string]any{
			"match": map[string]any{q.Target(): map[string]any{
				"query":     q.Keyword(),
				"operator":  "and",
				"fuzziness": "AUTO",
			}},
		})
	}
	return boolMustBody(append(clauses, commonClauses(q)...))
}

// relatedBody delegates relevance expansion to the index-side analyzer; the
// keyword tokens are not required verbatim.
func relatedBody(q *query.Query) map[string]any {
	var clauses []any
	if q.Target() != "" {
		clauses = append(clauses, map[string]any{
			"match": map[string]any{q.Target(): map[string]any{
				"query":    q.Keyword(),
				"analyzer": relatedAnalyzer,
			}},
		})
	}
	return boolMustBody(append(clauses, commonClauses(q)...))
}

func personalizeBody(tagWeights map[string]float64) map[string]any {
	should := make([]any, 0, len(tagWeights))
	for tag, weight := range tagWeights {
		should = append(should, map[string]any{
			"term": map[string]any{"tags": map[string]any{
				"value": tag,
				"boost": weight,
			}},
		})
	}
	return map[string]any{
		"size":  maxResults,
		"query": map[string]any{"bool": map[string]any{"should": should}},
	}
}

func suggestBody(text string) map[string]any {
	return map[string]any{
		"suggest": map[string]any{"title_suggest": map[string]any{
			"prefix": text,
			"completion": map[string]any{
				"field":           "suggest",
				"skip_duplicates": true,
			},
		}},
	}
}

func correctBody(text, target string) map[string]any {
	return map[string]any{
		"suggest": map[string]any{"correct": map[string]any{
			"text":   text,
			"phrase": map[string]any{"field": target},
		}},
	}
}

func hotWordsBody() map[string]any {
	return map[string]any{
		"size": 0,
		"aggs": map[string]any{"messages": map[string]any{
			"terms": map[string]any{
				"size":  hotWordsLimit,
				"field": "message",
			},
		}},
	}
}

func boolMustBody(must []any) map[string]any {
	if must == nil {
		must = []any{}
	}
	return map[string]any{
		"size":  maxResults,
		"query": map[string]any{"bool": map[string]any{"must": must}},
	}
}

// commonClauses builds the range, category and tag constraints every keyword
// mode shares.
func commonClauses(q *query.Query) []any {
	var clauses []any
	for _, f := range q.Filters() {
		clauses = append(clauses, map[string]any{
			"range": map[string]any{string(f.Dim()): map[string]any{
				"gte": f.Low(),
				"lte": f.High(),
			}},
		})
	}
	if q.Category() != "" {
		clauses = append(clauses, map[string]any{
			"term": map[string]any{"category.keyword": q.Category()},
		})
	}
	// The requested tags must be a subset of the document's tags: every
	// requested term has to match.
	if tags := q.Tags(); len(tags) > 0 {
		clauses = append(clauses, map[string]any{
			"terms_set": map[string]any{"tags": map[string]any{
				"terms": tags,
				"minimum_should_match_script": map[string]any{
					"source": strconv.Itoa(len(tags)),
				},
			}},
		})
	}
	return clauses
}
