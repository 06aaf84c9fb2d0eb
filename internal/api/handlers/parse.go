package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/dvloznov/expense-ledger/internal/api/middleware"
	"github.com/dvloznov/expense-ledger/internal/jobs"
	"github.com/dvloznov/expense-ledger/internal/parser"
)

// ParseHandler handles the text-to-draft parsing endpoints.
type ParseHandler struct {
	service   *parser.Service
	publisher jobs.Publisher
	log       zerolog.Logger
}

// NewParseHandler creates a new parse handler.
func NewParseHandler(service *parser.Service, publisher jobs.Publisher, log zerolog.Logger) *ParseHandler {
	return &ParseHandler{service: service, publisher: publisher, log: log}
}

type parseRequest struct {
	Text string `json:"text"`
}

// readText accepts the text either as a JSON body or as a ?text= query
// parameter, so a share-to-URL client can hit the endpoint directly.
func readText(r *http.Request) string {
	if text := r.URL.Query().Get("text"); text != "" {
		return text
	}
	var req parseRequest
	if r.Body != nil {
		json.NewDecoder(r.Body).Decode(&req)
	}
	return req.Text
}

// Parse handles POST /api/parse
func (h *ParseHandler) Parse(w http.ResponseWriter, r *http.Request) {
	text := readText(r)

	draft, err := h.service.Parse(r.Context(), text)
	if err != nil {
		h.writeParseError(w, err)
		return
	}

	middleware.WriteJSON(w, http.StatusOK, draft)
}

// ParseAsync handles POST /api/parse/async
//
// The job is accepted immediately and runs in the background; the client
// polls GET /api/jobs/{id} for the result, or never does and the result
// just sits there.
func (h *ParseHandler) ParseAsync(w http.ResponseWriter, r *http.Request) {
	text := readText(r)
	if text == "" {
		middleware.WriteError(w, http.StatusBadRequest, "请输入要解析的文本")
		return
	}

	job := &jobs.ParseTextJob{Text: text}
	if err := h.publisher.PublishParseText(r.Context(), job); err != nil {
		h.log.Error().Err(err).Msg("Failed to enqueue parse job")
		middleware.WriteError(w, http.StatusServiceUnavailable, "Parse queue is not accepting jobs")
		return
	}

	middleware.WriteJSON(w, http.StatusAccepted, map[string]string{
		"job_id": job.JobID,
		"status": string(job.Status),
	})
}

// writeParseError maps parser failures onto the user-facing messages the
// client shows verbatim.
func (h *ParseHandler) writeParseError(w http.ResponseWriter, err error) {
	var transportErr *parser.TransportError
	var contentErr *parser.ContentError

	switch {
	case errors.Is(err, parser.ErrEmptyInput):
		middleware.WriteError(w, http.StatusBadRequest, "请输入要解析的文本")
	case errors.Is(err, parser.ErrMissingCredential):
		middleware.WriteError(w, http.StatusBadRequest, "未配置 API 密钥，请先在配置文件中设置")
	case errors.As(err, &transportErr):
		h.log.Error().Err(err).Str("provider", transportErr.Provider).Int("status", transportErr.StatusCode).Msg("Model request failed")
		if transportErr.Auth() {
			middleware.WriteError(w, http.StatusBadGateway, "API 密钥无效或已过期，请检查配置")
		} else {
			middleware.WriteError(w, http.StatusBadGateway, "解析服务暂时不可用，请稍后重试")
		}
	case errors.As(err, &contentErr):
		h.log.Error().Err(err).Msg("Model returned unusable output")
		middleware.WriteError(w, http.StatusBadGateway, "无法理解模型返回的内容，请重试或手动记账")
	default:
		h.log.Error().Err(err).Msg("Parse failed")
		middleware.WriteError(w, http.StatusInternalServerError, "解析失败，请重试")
	}
}

// JobsHandler handles job status endpoints.
type JobsHandler struct {
	store jobs.Store
	log   zerolog.Logger
}

// NewJobsHandler creates a new jobs handler.
func NewJobsHandler(store jobs.Store, log zerolog.Logger) *JobsHandler {
	return &JobsHandler{store: store, log: log}
}

// List handles GET /api/jobs
func (h *JobsHandler) List(w http.ResponseWriter, r *http.Request) {
	filter := jobs.Filter{
		Status: jobs.Status(r.URL.Query().Get("status")),
		Limit:  50,
	}

	list, err := h.store.ListJobs(r.Context(), filter)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to list jobs")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to list jobs")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, list)
}

// Get handles GET /api/jobs/{id}
func (h *JobsHandler) Get(w http.ResponseWriter, r *http.Request, id string) {
	job, err := h.store.GetJob(r.Context(), id)
	if err != nil {
		middleware.WriteError(w, http.StatusNotFound, "Job not found")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, job)
}
