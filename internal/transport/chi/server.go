package chi

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/oapi-codegen/runtime"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/complydex/internal/domain"
	"github.com/kailas-cloud/complydex/internal/domain/record"
	"github.com/kailas-cloud/complydex/internal/domain/search/ordering"
	"github.com/kailas-cloud/complydex/internal/domain/search/request"
	healthuc "github.com/kailas-cloud/complydex/internal/usecase/health"
)

// APIPrefix is the mount point of every versioned route.
const APIPrefix = "/api/v1"

const maxBodyBytes = 4 << 20

// Server serves the complydex HTTP API.
type Server struct {
	search  Searcher
	suggest Suggester
	recent  RecentReader
	saved   SavedSearches
	records Records
	batch   Batches
	health  HealthChecker
	metrics http.Handler
	logger  *zap.Logger
}

// Deps groups the use cases behind the API.
type Deps struct {
	Search  Searcher
	Suggest Suggester
	Recent  RecentReader
	Saved   SavedSearches
	Records Records
	Batch   Batches
	Health  HealthChecker
}

// NewServer creates an HTTP API server.
func NewServer(d Deps, logger *zap.Logger) *Server {
	return &Server{
		search:  d.Search,
		suggest: d.Suggest,
		recent:  d.Recent,
		saved:   d.Saved,
		records: d.Records,
		batch:   d.Batch,
		health:  d.Health,
		metrics: promhttp.Handler(),
		logger:  logger,
	}
}

// WithMetricsHandler replaces the /metrics handler (default: promhttp.Handler()).
func (s *Server) WithMetricsHandler(h http.Handler) *Server {
	if h != nil {
		s.metrics = h
	}
	return s
}

// Routes mounts every endpoint on r.
func (s *Server) Routes(r chi.Router) {
	r.Get("/health", s.HealthCheck)
	r.Get("/metrics", s.Metrics)

	r.Route(APIPrefix, func(r chi.Router) {
		r.Use(UserIDMiddleware)

		r.Post("/search", s.Search)
		r.Get("/search/suggestions", s.Suggestions)
		r.Get("/search/recent", s.Recent)

		r.Post("/saved-searches", s.SaveSearch)
		r.Get("/saved-searches", s.ListSavedSearches)
		r.Delete("/saved-searches/{id}", s.DeleteSavedSearch)

		r.Post("/records/{kind}/batch", s.BatchUpsert)
		r.Delete("/records/{kind}/batch", s.BatchDelete)
		r.Put("/records/{kind}/{id}", s.UpsertRecord)
		r.Get("/records/{kind}/{id}", s.GetRecord)
		r.Delete("/records/{kind}/{id}", s.DeleteRecord)
	})

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, ErrorResponse{Code: CodeNotFound, Message: "route not found"})
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, ErrorResponse{Code: CodeBadRequest, Message: "method not allowed"})
	})
}

// Search handles POST /search.
func (s *Server) Search(w http.ResponseWriter, r *http.Request) {
	var body SearchRequest
	if !s.decodeBody(w, r, &body, true) {
		return
	}

	req, err := request.New(
		body.Query, UserIDFromContext(r.Context()), body.Filters,
		ordering.Field(body.SortBy), ordering.Order(body.SortOrder),
		body.Limit, body.Offset,
	)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	page, err := s.search.Search(r.Context(), &req)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, pageToResponse(&page))
}

// Suggestions handles GET /search/suggestions?q=.
func (s *Server) Suggestions(w http.ResponseWriter, r *http.Request) {
	var q string
	if err := runtime.BindQueryParameter("form", true, false, "q", r.URL.Query(), &q); err != nil {
		s.handleDomainError(w, domain.NewValidation("q", "%v", err))
		return
	}

	list, err := s.suggest.Suggest(r.Context(), q)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	if list == nil {
		list = []string{}
	}

	writeJSON(w, http.StatusOK, SuggestionsResponse{Suggestions: list})
}

// Recent handles GET /search/recent?limit=.
func (s *Server) Recent(w http.ResponseWriter, r *http.Request) {
	var limit *int
	if err := runtime.BindQueryParameter("form", true, false, "limit", r.URL.Query(), &limit); err != nil {
		s.handleDomainError(w, domain.NewValidation("limit", "must be an integer"))
		return
	}
	n := 0
	if limit != nil {
		n = *limit
	}

	list, err := s.recent.Recent(r.Context(), UserIDFromContext(r.Context()), n)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, recentToResponse(list))
}

// SaveSearch handles POST /saved-searches.
func (s *Server) SaveSearch(w http.ResponseWriter, r *http.Request) {
	var body SaveSearchRequest
	if !s.decodeBody(w, r, &body, false) {
		return
	}

	ss, err := s.saved.Save(r.Context(), UserIDFromContext(r.Context()), body.Name, body.Query, body.Filters)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	w.Header().Set("Location", fmt.Sprintf("%s/saved-searches/%s", APIPrefix, ss.ID))
	writeJSON(w, http.StatusCreated, savedToBody(&ss))
}

// ListSavedSearches handles GET /saved-searches.
func (s *Server) ListSavedSearches(w http.ResponseWriter, r *http.Request) {
	list, err := s.saved.List(r.Context(), UserIDFromContext(r.Context()))
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	items := make([]SavedSearchBody, len(list))
	for i := range list {
		items[i] = savedToBody(&list[i])
	}
	writeJSON(w, http.StatusOK, SavedSearchListResponse{Items: items})
}

// DeleteSavedSearch handles DELETE /saved-searches/{id}.
func (s *Server) DeleteSavedSearch(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := s.saved.Delete(r.Context(), id, UserIDFromContext(r.Context())); err != nil {
		s.handleDomainError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// UpsertRecord handles PUT /records/{kind}/{id}.
func (s *Server) UpsertRecord(w http.ResponseWriter, r *http.Request) {
	kind, ok := s.kindParam(w, r)
	if !ok {
		return
	}
	id := chi.URLParam(r, "id")

	var body RecordBody
	if !s.decodeBody(w, r, &body, false) {
		return
	}
	if body.ID != "" && body.ID != id {
		s.handleDomainError(w, domain.NewValidation("id", "body id %q does not match path id %q", body.ID, id))
		return
	}
	body.ID = id

	rec, err := recordFromBody(&body)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	created, err := s.records.Upsert(r.Context(), kind, &rec)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
		w.Header().Set("Location", fmt.Sprintf("%s/records/%s/%s", APIPrefix, kind, id))
	}
	writeJSON(w, status, recordToBody(&rec))
}

// GetRecord handles GET /records/{kind}/{id}.
func (s *Server) GetRecord(w http.ResponseWriter, r *http.Request) {
	kind, ok := s.kindParam(w, r)
	if !ok {
		return
	}

	rec, err := s.records.Get(r.Context(), kind, chi.URLParam(r, "id"))
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, recordToBody(&rec))
}

// DeleteRecord handles DELETE /records/{kind}/{id}.
func (s *Server) DeleteRecord(w http.ResponseWriter, r *http.Request) {
	kind, ok := s.kindParam(w, r)
	if !ok {
		return
	}

	if err := s.records.Delete(r.Context(), kind, chi.URLParam(r, "id")); err != nil {
		s.handleDomainError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// BatchUpsert handles POST /records/{kind}/batch.
func (s *Server) BatchUpsert(w http.ResponseWriter, r *http.Request) {
	kind, ok := s.kindParam(w, r)
	if !ok {
		return
	}

	var body BatchUpsertRequest
	if !s.decodeBody(w, r, &body, false) {
		return
	}
	if len(body.Records) == 0 {
		s.handleDomainError(w, domain.NewValidation("records", "at least one record is required"))
		return
	}

	recs := make([]record.Record, 0, len(body.Records))
	for i := range body.Records {
		rec, err := recordFromBody(&body.Records[i])
		if err != nil {
			s.handleDomainError(w, fmt.Errorf("records[%d]: %w", i, err))
			return
		}
		recs = append(recs, rec)
	}

	writeJSON(w, http.StatusOK, batchToResponse(s.batch.Upsert(r.Context(), kind, recs)))
}

// BatchDelete handles DELETE /records/{kind}/batch.
func (s *Server) BatchDelete(w http.ResponseWriter, r *http.Request) {
	kind, ok := s.kindParam(w, r)
	if !ok {
		return
	}

	var body BatchDeleteRequest
	if !s.decodeBody(w, r, &body, false) {
		return
	}
	if len(body.IDs) == 0 {
		s.handleDomainError(w, domain.NewValidation("ids", "at least one id is required"))
		return
	}

	writeJSON(w, http.StatusOK, batchToResponse(s.batch.Delete(r.Context(), kind, body.IDs)))
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}

	httpStatus := http.StatusOK
	if report.Status != healthuc.Healthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, HealthResponse{Status: string(report.Status), Checks: checks})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	s.metrics.ServeHTTP(w, r)
}

// kindParam accepts both singular and plural collection names ("contract", "contracts").
func (s *Server) kindParam(w http.ResponseWriter, r *http.Request) (record.Kind, bool) {
	raw := chi.URLParam(r, "kind")
	kind, err := record.ParseKind(strings.TrimSuffix(raw, "s"))
	if err != nil {
		s.handleDomainError(w, domain.NewValidation("kind", "unknown record type %q", raw))
		return "", false
	}
	return kind, true
}

// decodeBody reads a JSON body into v. An empty body is accepted only when allowEmpty is set.
func (s *Server) decodeBody(w http.ResponseWriter, r *http.Request, v any, allowEmpty bool) bool {
	err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(v)
	if err == nil || (allowEmpty && errors.Is(err, io.EOF)) {
		return true
	}
	writeError(w, http.StatusBadRequest, ErrorResponse{
		Code:    CodeBadRequest,
		Message: "Invalid request body: " + err.Error(),
	})
	return false
}

func (s *Server) handleDomainError(w http.ResponseWriter, err error) {
	status, body := classify(err)
	switch {
	case status >= http.StatusInternalServerError && body.Code == CodeInternalError:
		s.logger.Error("internal error", zap.Error(err))
	case status >= http.StatusInternalServerError:
		s.logger.Warn("upstream error", zap.Error(err))
	default:
		s.logger.Debug("domain error", zap.Error(err))
	}
	writeError(w, status, body)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, body ErrorResponse) {
	writeJSON(w, status, body)
}
