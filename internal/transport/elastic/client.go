package elastic

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"time"

	elasticsearch "github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
	"go.uber.org/zap"

	"github.com/gifexplorer/gifsearch/internal/metrics"

	"github.com/gifexplorer/gifsearch/internal/domain"
	"github.com/gifexplorer/gifsearch/internal/domain/search/mode"
	"github.com/gifexplorer/gifsearch/internal/domain/search/query"
)

const (
	// maxResults caps a single index query; pagination happens after
	// hydration, so the index returns the full candidate set.
	maxResults = 10000

	// searchPreference pins routing so repeated queries hit the same shards
	// and scoring stays stable across requests.
	searchPreference = "primary"

	relatedAnalyzer = "my_analyzer"
	hotWordsLimit   = 10
)

// Config holds connection parameters for the search index.
type Config struct {
	Addrs        []string
	Username     string
	Password     string
	ContentIndex string
	LogIndex     string
}

// Client is the Elasticsearch-backed search index. All failures surface as
// domain.ErrIndexUnavailable so callers never depend on transport details.
type Client struct {
	es           *elasticsearch.Client
	contentIndex string
	logIndex     string
	logger       *zap.Logger
}

// NewClient creates an index client.
func NewClient(cfg Config, logger *zap.Logger) (*Client, error) {
	if len(cfg.Addrs) == 0 {
		return nil, fmt.Errorf("addrs is required")
	}
	if cfg.ContentIndex == "" || cfg.LogIndex == "" {
		return nil, fmt.Errorf("content_index and log_index are required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	es, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: cfg.Addrs,
		Username:  cfg.Username,
		Password:  cfg.Password,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create client: %w", err)
	}

	return &Client{
		es:           es,
		contentIndex: cfg.ContentIndex,
		logIndex:     cfg.LogIndex,
		logger:       logger,
	}, nil
}

// Ping checks index connectivity.
func (c *Client) Ping(ctx context.Context) error {
	res, err := c.es.Ping(c.es.Ping.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("%w: ping: %v", domain.ErrIndexUnavailable, err)
	}
	defer drain(res)
	if res.IsError() {
		return fmt.Errorf("%w: ping: %s", domain.ErrIndexUnavailable, res.Status())
	}
	return nil
}

// Search runs the keyword query for the query's mode and returns matching
// content ids in index score order. Regex queries never reach the index.
func (c *Client) Search(ctx context.Context, q *query.Query) ([]domain.ContentID, error) {
	var body map[string]any
	switch q.Mode() {
	case mode.Perfect:
		body = perfectBody(q)
	case mode.Partial:
		body = partialBody(q)
	case mode.Fuzzy:
		body = fuzzyBody(q)
	case mode.Related:
		body = relatedBody(q)
	default:
		return nil, fmt.Errorf("%w: mode %q is not indexable", domain.ErrMalformedQuery, q.Mode())
	}

	ids, err := c.searchIDs(ctx, "search", body)
	if err != nil {
		return nil, err
	}

	c.recordKeyword(ctx, q.Keyword())
	return ids, nil
}

// Personalize returns content ids scored by the given tag weights.
func (c *Client) Personalize(ctx context.Context, tagWeights map[string]float64) ([]domain.ContentID, error) {
	return c.searchIDs(ctx, "personalize", personalizeBody(tagWeights))
}

// SuggestPrefix returns completion suggestions for a title prefix.
func (c *Client) SuggestPrefix(ctx context.Context, text string) ([]string, error) {
	res, err := c.search(ctx, "suggest", c.contentIndex, suggestBody(text))
	if err != nil {
		return nil, err
	}
	defer drain(res)

	var out struct {
		Suggest map[string][]struct {
			Options []struct {
				Source struct {
					Suggest string `json:"suggest"`
				} `json:"_source"`
			} `json:"options"`
		} `json:"suggest"`
	}
	if err := decode(res, &out); err != nil {
		return nil, err
	}

	var suggestions []string
	for _, entry := range out.Suggest["title_suggest"] {
		for _, opt := range entry.Options {
			suggestions = append(suggestions, opt.Source.Suggest)
		}
	}
	return suggestions, nil
}

// Correct returns spelling corrections for the text against the target field,
// best candidate first, or nothing when the index has no better phrase.
func (c *Client) Correct(ctx context.Context, text, target string) ([]string, error) {
	res, err := c.search(ctx, "correct", c.contentIndex, correctBody(text, target))
	if err != nil {
		return nil, err
	}
	defer drain(res)

	var out struct {
		Suggest map[string][]struct {
			Options []struct {
				Text string `json:"text"`
			} `json:"options"`
		} `json:"suggest"`
	}
	if err := decode(res, &out); err != nil {
		return nil, err
	}

	var corrections []string
	for _, entry := range out.Suggest["correct"] {
		for _, opt := range entry.Options {
			corrections = append(corrections, opt.Text)
		}
	}
	return corrections, nil
}

// HotWords returns the most frequent recorded search keywords.
func (c *Client) HotWords(ctx context.Context) ([]string, error) {
	res, err := c.search(ctx, "hotwords", c.logIndex, hotWordsBody())
	if err != nil {
		return nil, err
	}
	defer drain(res)

	var out struct {
		Aggregations struct {
			Messages struct {
				Buckets []struct {
					Key string `json:"key"`
				} `json:"buckets"`
			} `json:"messages"`
		} `json:"aggregations"`
	}
	if err := decode(res, &out); err != nil {
		return nil, err
	}

	words := make([]string, 0, len(out.Aggregations.Messages.Buckets))
	for _, b := range out.Aggregations.Messages.Buckets {
		words = append(words, b.Key)
	}
	return words, nil
}

// PutMetadata indexes a content record so keyword and completion queries can
// find it. The title doubles as the completion suggestion source.
func (c *Client) PutMetadata(ctx context.Context, rec domain.ContentRecord) error {
	doc := map[string]any{
		"title":    rec.Title,
		"uploader": rec.Uploader,
		"category": rec.Category,
		"tags":     rec.Tags,
		"width":    rec.Width,
		"height":   rec.Height,
		"duration": rec.Duration,
		"suggest":  rec.Title,
	}
	payload, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshal metadata: %w", err)
	}

	res, err := c.es.Index(c.contentIndex, bytes.NewReader(payload),
		c.es.Index.WithContext(ctx),
		c.es.Index.WithDocumentID(strconv.FormatInt(int64(rec.ID), 10)),
	)
	if err != nil {
		return fmt.Errorf("%w: index metadata: %v", domain.ErrIndexUnavailable, err)
	}
	defer drain(res)
	if res.IsError() {
		return fmt.Errorf("%w: index metadata: %s", domain.ErrIndexUnavailable, res.Status())
	}
	return nil
}

// DeleteMetadata removes a content record from the index.
func (c *Client) DeleteMetadata(ctx context.Context, id domain.ContentID) error {
	res, err := c.es.Delete(c.contentIndex, strconv.FormatInt(int64(id), 10),
		c.es.Delete.WithContext(ctx),
	)
	if err != nil {
		return fmt.Errorf("%w: delete metadata: %v", domain.ErrIndexUnavailable, err)
	}
	defer drain(res)
	if res.IsError() && res.StatusCode != 404 {
		return fmt.Errorf("%w: delete metadata: %s", domain.ErrIndexUnavailable, res.Status())
	}
	return nil
}

func (c *Client) searchIDs(ctx context.Context, op string, body map[string]any) ([]domain.ContentID, error) {
	res, err := c.search(ctx, op, c.contentIndex, body)
	if err != nil {
		return nil, err
	}
	defer drain(res)

	var out struct {
		Hits struct {
			Hits []struct {
				ID string `json:"_id"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := decode(res, &out); err != nil {
		return nil, err
	}

	ids := make([]domain.ContentID, 0, len(out.Hits.Hits))
	for _, h := range out.Hits.Hits {
		id, err := strconv.ParseInt(h.ID, 10, 64)
		if err != nil {
			c.logger.Warn("skipping non-numeric document id", zap.String("id", h.ID))
			continue
		}
		ids = append(ids, domain.ContentID(id))
	}
	return ids, nil
}

func (c *Client) search(ctx context.Context, op, index string, body map[string]any) (*esapi.Response, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal query: %w", err)
	}

	start := time.Now()
	res, err := c.es.Search(
		c.es.Search.WithContext(ctx),
		c.es.Search.WithIndex(index),
		c.es.Search.WithBody(bytes.NewReader(payload)),
		c.es.Search.WithPreference(searchPreference),
	)
	metrics.SearchIndexDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
	if err != nil {
		return nil, fmt.Errorf("%w: search: %v", domain.ErrIndexUnavailable, err)
	}
	if res.IsError() {
		defer drain(res)
		return nil, fmt.Errorf("%w: search: %s", domain.ErrIndexUnavailable, res.Status())
	}
	return res, nil
}

// recordKeyword logs a searched keyword for hot-word aggregation. Failures
// are logged and swallowed so they never fail the search itself.
func (c *Client) recordKeyword(ctx context.Context, keyword string) {
	if keyword == "" {
		return
	}
	payload, err := json.Marshal(map[string]any{"message": keyword})
	if err != nil {
		return
	}
	res, err := c.es.Index(c.logIndex, bytes.NewReader(payload), c.es.Index.WithContext(ctx))
	if err != nil {
		c.logger.Warn("failed to record search keyword", zap.Error(err))
		return
	}
	drain(res)
	if res.IsError() {
		c.logger.Warn("failed to record search keyword", zap.String("status", res.Status()))
	}
}

func decode(res *esapi.Response, v any) error {
	if err := json.NewDecoder(res.Body).Decode(v); err != nil {
		return fmt.Errorf("%w: decode response: %v", domain.ErrIndexUnavailable, err)
	}
	return nil
}

func drain(res *esapi.Response) {
	if res != nil && res.Body != nil {
		io.Copy(io.Discard, res.Body)
		res.Body.Close()
	}
}
