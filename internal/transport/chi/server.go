package chi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/gifexplorer/gifsearch/internal/domain"
	"github.com/gifexplorer/gifsearch/internal/domain/search/mode"
	"github.com/gifexplorer/gifsearch/internal/domain/search/query"
	"github.com/gifexplorer/gifsearch/internal/metrics"
	recommenduc "github.com/gifexplorer/gifsearch/internal/usecase/recommend"
	searchuc "github.com/gifexplorer/gifsearch/internal/usecase/search"
	suggestuc "github.com/gifexplorer/gifsearch/internal/usecase/suggest"
)

// Response envelope codes, fixed by the public API contract.
type apiCode struct {
	Code int
	Info string
}

var (
	codeSucceed       = apiCode{0, "Succeed"}
	codeInternal      = apiCode{1, "internal error"}
	codeInvalidFormat = apiCode{5, "invalid data format"}
	codeInvalidPage   = apiCode{6, "invalid page"}
	codeNotFound      = apiCode{1000, "not found"}
	codeUnauthorized  = apiCode{1001, "unauthorized"}
	codeSearchEngine  = apiCode{1002, "search engine unavailable"}
)

type envelope struct {
	Code int    `json:"code"`
	Info string `json:"info"`
	Data any    `json:"data"`
}

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error) bool

// Pinger checks a dependency's connectivity for the health endpoint.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Server exposes the search API over HTTP.
type Server struct {
	search        *searchuc.Service
	recommend     *recommenduc.Service
	suggest       *suggestuc.Service
	db            Pinger
	index         Pinger
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(
	search *searchuc.Service,
	recommend *recommenduc.Service,
	suggest *suggestuc.Service,
	db Pinger,
	index Pinger,
	logger *zap.Logger,
) *Server {
	s := &Server{
		search:    search,
		recommend: recommend,
		suggest:   suggest,
		db:        db,
		index:     index,
		logger:    logger,
	}
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrInvalidPage, http.StatusBadRequest, codeInvalidPage),
		sentinelHandler(domain.ErrMalformedQuery, http.StatusBadRequest, codeInvalidFormat),
		sentinelHandler(domain.ErrUnauthorized, http.StatusUnauthorized, codeUnauthorized),
		sentinelHandler(domain.ErrNotFound, http.StatusNotFound, codeNotFound),
		sentinelHandler(domain.ErrUserNotFound, http.StatusNotFound, codeNotFound),
		sentinelHandler(domain.ErrIndexUnavailable, http.StatusBadGateway, codeSearchEngine),
	}
	return s
}

// Routes registers all API routes on the given router.
func (s *Server) Routes(r chi.Router) {
	r.Post("/search", s.handleSearch)
	r.Get("/search/suggestion", s.handleSuggest)
	r.Get("/search/correction", s.handleCorrect)
	r.Get("/search/hotwords", s.handleHotWords)
	r.Get("/search/history", s.handleHistory)
	r.Delete("/search/history", s.handleDeleteHistory)
	r.Get("/recommendation", s.handleRecommend)
	r.Post("/content", s.handlePublish)
	r.Delete("/content/{id}", s.handleRemove)
	r.Post("/content/{id}/read", s.handleReadEvent)
	r.Get("/health", s.handleHealth)
	r.Get("/metrics", s.handleMetrics)
}

// searchRequest is the wire shape of POST /search. The mode travels in the
// "type" field; the page stays raw so any non-integer value, fractional or
// string, maps to the invalid-page code rather than a body decoding failure.
type searchRequest struct {
	Target   string            `json:"target"`
	Keyword  string            `json:"keyword"`
	Category string            `json:"category"`
	Filter   []query.RawFilter `json:"filter"`
	Tags     []string          `json:"tags"`
	Type     string            `json:"type"`
	Page     json.RawMessage   `json:"page"`
}

type pageResponse struct {
	PageCount int `json:"page_count"`
	PageData  any `json:"page_data"`
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeInvalidFormat, "invalid request body")
		return
	}

	q, err := queryFromRequest(&req)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	res, err := s.search.Search(r.Context(), q, PrincipalFromContext(r.Context()))
	if err != nil {
		metrics.SearchRequestsTotal.WithLabelValues(string(q.Mode()), "error").Inc()
		s.handleDomainError(w, r, err)
		return
	}
	metrics.SearchRequestsTotal.WithLabelValues(string(q.Mode()), "ok").Inc()

	writeData(w, http.StatusOK, pageResponse{
		PageCount: res.PageCount,
		PageData:  res.Records,
	})
}

func queryFromRequest(req *searchRequest) (*query.Query, error) {
	page := 1
	if len(req.Page) > 0 && string(req.Page) != "null" {
		var n json.Number
		if err := json.Unmarshal(req.Page, &n); err != nil {
			return nil, domain.ErrInvalidPage
		}
		v, err := n.Int64()
		if err != nil {
			return nil, domain.ErrInvalidPage
		}
		page = int(v)
	}

	filters, err := query.ParseFilters(req.Filter)
	if err != nil {
		return nil, err
	}

	q, err := query.New(req.Target, req.Keyword, req.Category, filters, req.Tags, mode.Mode(req.Type), page)
	if err != nil {
		return nil, err
	}
	return &q, nil
}

func (s *Server) handleSuggest(w http.ResponseWriter, r *http.Request) {
	suggestions, err := s.suggest.Suggest(r.Context(), r.URL.Query().Get("keyword"))
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	if suggestions == nil {
		suggestions = []string{}
	}
	writeData(w, http.StatusOK, suggestions)
}

func (s *Server) handleCorrect(w http.ResponseWriter, r *http.Request) {
	corrections, err := s.suggest.Correct(r.Context(),
		r.URL.Query().Get("keyword"), r.URL.Query().Get("target"))
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	if corrections == nil {
		corrections = []string{}
	}
	writeData(w, http.StatusOK, corrections)
}

func (s *Server) handleHotWords(w http.ResponseWriter, r *http.Request) {
	words, err := s.suggest.HotWords(r.Context())
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	if words == nil {
		words = []string{}
	}
	writeData(w, http.StatusOK, words)
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	page := 1
	if raw := r.URL.Query().Get("page"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			s.handleDomainError(w, r, domain.ErrInvalidPage)
			return
		}
		page = n
	}

	entries, pageCount, err := s.search.History(r.Context(), PrincipalFromContext(r.Context()), page)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	if entries == nil {
		entries = []domain.HistoryEntry{}
	}
	writeData(w, http.StatusOK, pageResponse{PageCount: pageCount, PageData: entries})
}

func (s *Server) handleDeleteHistory(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Keywords []string `json:"keywords"`
	}
	// An empty or absent body clears the whole history.
	_ = json.NewDecoder(r.Body).Decode(&req)

	err := s.search.ClearHistory(r.Context(), PrincipalFromContext(r.Context()), req.Keywords...)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, nil)
}

func (s *Server) handleRecommend(w http.ResponseWriter, r *http.Request) {
	records, err := s.recommend.Recommend(r.Context(), PrincipalFromContext(r.Context()))
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	if records == nil {
		records = []domain.ContentRecord{}
	}
	writeData(w, http.StatusOK, records)
}

func (s *Server) handlePublish(w http.ResponseWriter, r *http.Request) {
	if PrincipalFromContext(r.Context()) == nil {
		s.handleDomainError(w, r, domain.ErrUnauthorized)
		return
	}

	var rec domain.ContentRecord
	if err := json.NewDecoder(r.Body).Decode(&rec); err != nil {
		writeError(w, http.StatusBadRequest, codeInvalidFormat, "invalid request body")
		return
	}

	if err := s.search.Publish(r.Context(), rec); err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeData(w, http.StatusCreated, map[string]int64{"id": int64(rec.ID)})
}

func (s *Server) handleRemove(w http.ResponseWriter, r *http.Request) {
	if PrincipalFromContext(r.Context()) == nil {
		s.handleDomainError(w, r, domain.ErrUnauthorized)
		return
	}

	id, err := contentIDParam(r)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	if err := s.search.Remove(r.Context(), id); err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, nil)
}

func (s *Server) handleReadEvent(w http.ResponseWriter, r *http.Request) {
	id, err := contentIDParam(r)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	if err := s.recommend.RecordRead(r.Context(), PrincipalFromContext(r.Context()), id); err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, nil)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	checks := map[string]string{"database": "ok", "index": "ok"}
	status := http.StatusOK

	if err := s.db.Ping(r.Context()); err != nil {
		checks["database"] = "unavailable"
		status = http.StatusServiceUnavailable
	}
	if err := s.index.Ping(r.Context()); err != nil {
		checks["index"] = "unavailable"
		status = http.StatusServiceUnavailable
	}

	writeData(w, status, checks)
}

func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

func contentIDParam(r *http.Request) (domain.ContentID, error) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, domain.ErrMalformedQuery
	}
	return domain.ContentID(id), nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeData(w http.ResponseWriter, status int, data any) {
	writeJSON(w, status, envelope{Code: codeSucceed.Code, Info: codeSucceed.Info, Data: data})
}

func writeError(w http.ResponseWriter, status int, c apiCode, msg string) {
	if msg == "" {
		msg = c.Info
	}
	writeJSON(w, status, envelope{Code: c.Code, Info: msg})
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, c apiCode) errorHandler {
	return func(w http.ResponseWriter, err error) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, c, sentinel.Error())
		return true
	}
}

func (s *Server) handleDomainError(w http.ResponseWriter, r *http.Request, err error) {
	s.logger.Warn("domain error", zap.String("path", r.URL.Path), zap.Error(err))
	for _, h := range s.errorHandlers {
		if h(w, err) {
			return
		}
	}
	s.logger.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, codeInternal, "")
}
