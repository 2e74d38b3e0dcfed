package elastic

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/gifexplorer/gifsearch/internal/domain/search/filter"
	"github.com/gifexplorer/gifsearch/internal/domain/search/mode"
	"github.com/gifexplorer/gifsearch/internal/domain/search/query"
)

func mustQuery(t *testing.T, target, keyword string, m mode.Mode) *query.Query {
	t.Helper()
	q, err := query.New(target, keyword, "", nil, nil, m, 1)
	if err != nil {
		t.Fatalf("query.New: %v", err)
	}
	return &q
}

// asJSON normalizes a body for comparison; json.Marshal emits map keys in
// sorted order so equal structures produce equal strings.
func asJSON(t *testing.T, v any) string {
	t.Helper()
	data, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return string(data)
}

func TestPerfectBody(t *testing.T) {
	q := mustQuery(t, query.TargetTitle, "funny cat", mode.Perfect)

	got := asJSON(t, perfectBody(q))
	want := asJSON(t, map[string]any{
		"size": maxResults,
		"query": map[string]any{"bool": map[string]any{"must": []any{
			map[string]any{"term": map[string]any{"title.keyword": "funny cat"}},
		}}},
	})
	if got != want {
		t.Errorf("perfectBody = %s, want %s", got, want)
	}
}

func TestPerfectBodyUploaderTarget(t *testing.T) {
	q := mustQuery(t, query.TargetUploader, "alice", mode.Perfect)

	got := asJSON(t, perfectBody(q))
	if want := `"uploader.keyword":"alice"`; !strings.Contains(got, want) {
		t.Errorf("perfectBody = %s, want clause %s", got, want)
	}
}

func TestPartialBody(t *testing.T) {
	q := mustQuery(t, query.TargetTitle, "funny cat", mode.Partial)

	got := asJSON(t, partialBody(q))
	want := asJSON(t, map[string]any{
		"size": maxResults,
		"query": map[string]any{"bool": map[string]any{"must": []any{
			map[string]any{"match": map[string]any{"title": map[string]any{
				"query":    "funny cat",
				"operator": "and",
			}}},
		}}},
	})
	if got != want {
		t.Errorf("partialBody = %s, want %s", got, want)
	}
}

func TestFuzzyBody(t *testing.T) {
	q := mustQuery(t, query.TargetTitle, "funy", mode.Fuzzy)

	got := asJSON(t, fuzzyBody(q))
	for _, want := range []string{`"fuzziness":"AUTO"`, `"operator":"and"`} {
		if !strings.Contains(got, want) {
			t.Errorf("fuzzyBody = %s, want %s", got, want)
		}
	}
}

func TestRelatedBody(t *testing.T) {
	q := mustQuery(t, query.TargetTitle, "cats", mode.Related)

	got := asJSON(t, relatedBody(q))
	if want := `"analyzer":"my_analyzer"`; !strings.Contains(got, want) {
		t.Errorf("relatedBody = %s, want %s", got, want)
	}
	if bad := `"operator"`; strings.Contains(got, bad) {
		t.Errorf("relatedBody = %s, must not require all tokens", got)
	}
}

func TestBodyWithoutTarget(t *testing.T) {
	q := mustQuery(t, query.TargetAny, "", mode.Partial)

	got := asJSON(t, partialBody(q))
	want := asJSON(t, map[string]any{
		"size": maxResults,
		"query": map[string]any{"bool": map[string]any{"must": []any{}}},
	})
	if got != want {
		t.Errorf("partialBody = %s, want empty must %s", got, want)
	}
}

func TestCommonClauses(t *testing.T) {
	width, err := filter.NewRange(filter.Width, 100, 500)
	if err != nil {
		t.Fatalf("NewRange: %v", err)
	}
	q, err := query.New(query.TargetTitle, "cat", "animals",
		[]filter.Range{width}, []string{"pets", "funny"}, mode.Perfect, 1)
	if err != nil {
		t.Fatalf("query.New: %v", err)
	}

	got := asJSON(t, commonClauses(&q))
	want := asJSON(t, []any{
		map[string]any{"range": map[string]any{"width": map[string]any{
			"gte": 100.0,
			"lte": 500.0,
		}}},
		map[string]any{"term": map[string]any{"category.keyword": "animals"}},
		map[string]any{"terms_set": map[string]any{"tags": map[string]any{
			"terms": []string{"funny", "pets"},
			"minimum_should_match_script": map[string]any{
				"source": "2",
			},
		}}},
	})
	if got != want {
		t.Errorf("commonClauses = %s, want %s", got, want)
	}
}

func TestPersonalizeBody(t *testing.T) {
	got := asJSON(t, personalizeBody(map[string]float64{"cats": 1.0}))
	want := asJSON(t, map[string]any{
		"size": maxResults,
		"query": map[string]any{"bool": map[string]any{"should": []any{
			map[string]any{"term": map[string]any{"tags": map[string]any{
				"value": "cats",
				"boost": 1.0,
			}}},
		}}},
	})
	if got != want {
		t.Errorf("personalizeBody = %s, want %s", got, want)
	}
}

func TestSuggestBody(t *testing.T) {
	got := asJSON(t, suggestBody("fun"))
	want := asJSON(t, map[string]any{
		"suggest": map[string]any{"title_suggest": map[string]any{
			"prefix": "fun",
			"completion": map[string]any{
				"field":           "suggest",
				"skip_duplicates": true,
			},
		}},
	})
	if got != want {
		t.Errorf("suggestBody = %s, want %s", got, want)
	}
}

func TestCorrectBody(t *testing.T) {
	got := asJSON(t, correctBody("funy cta", "title"))
	want := asJSON(t, map[string]any{
		"suggest": map[string]any{"correct": map[string]any{
			"text":   "funy cta",
			"phrase": map[string]any{"field": "title"},
		}},
	})
	if got != want {
		t.Errorf("correctBody = %s, want %s", got, want)
	}
}

func TestHotWordsBody(t *testing.T) {
	got := asJSON(t, hotWordsBody())
	want := asJSON(t, map[string]any{
		"size": 0,
		"aggs": map[string]any{"messages": map[string]any{
			"terms": map[string]any{
				"size":  hotWordsLimit,
				"field": "message",
			},
		}},
	})
	if got != want {
		t.Errorf("hotWordsBody = %s, want %s", got, want)
	}
}
