package student

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/akkm9120/sctp02-crud-mongo/internal/httputil"
	"github.com/akkm9120/sctp02-crud-mongo/internal/metrics"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
)

// Messages for missing or mistyped fields, keyed by StudentRequest field.
var fieldMessages = map[string]string{
	"Name":     "A Name must be provided",
	"Age":      "Age must be provided",
	"Subjects": "Subjects must be provided and must be an array",
}

type Handler struct {
	service  Service
	validate *validator.Validate
	logger   *slog.Logger
	metrics  *metrics.Metrics
}

func NewHandler(service Service, logger *slog.Logger, metrics *metrics.Metrics) *Handler {
	return &Handler{
		service:  service,
		validate: validator.New(),
		logger:   logger,
		metrics:  metrics,
	}
}

func (h *Handler) RegisterRoutes(router chi.Router) {
	router.Get("/students", h.ListStudents)
	router.Post("/students", h.CreateStudent)
	router.Put("/students/{id}", h.ReplaceStudent)
	router.Delete("/students/{id}", h.DeleteStudent)
}

func (h *Handler) ListStudents(w http.ResponseWriter, r *http.Request) {
	filter := Filter{
		Name:    r.URL.Query().Get("name"),
		Subject: r.URL.Query().Get("subjects"),
	}

	h.logger.InfoContext(r.Context(), "listing students", "name", filter.Name, "subject", filter.Subject)

	students, err := h.service.ListStudents(r.Context(), filter)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	httputil.RespondWithJSON(w, http.StatusOK, map[string]interface{}{
		"students": students,
	})
}

func (h *Handler) CreateStudent(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decodeRequest(w, r)
	if !ok {
		return
	}

	h.logger.InfoContext(r.Context(), "creating student", "name", req.Name)
	result, err := h.service.CreateStudent(r.Context(), req)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	h.metrics.RecordStudentCreated(r.Context())

	httputil.RespondWithJSON(w, http.StatusOK, map[string]interface{}{
		"result": result,
	})
}

func (h *Handler) ReplaceStudent(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	req, ok := h.decodeRequest(w, r)
	if !ok {
		return
	}

	h.logger.InfoContext(r.Context(), "replacing student", "id", id)
	student, err := h.service.ReplaceStudent(r.Context(), id, req)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	h.metrics.RecordStudentReplaced(r.Context())

	httputil.RespondWithJSON(w, http.StatusOK, map[string]interface{}{
		"result": student,
	})
}

func (h *Handler) DeleteStudent(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	h.logger.InfoContext(r.Context(), "deleting student", "id", id)
	if err := h.service.DeleteStudent(r.Context(), id); err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	h.metrics.RecordStudentDeleted(r.Context())

	httputil.RespondWithJSON(w, http.StatusOK, map[string]string{
		"message": "Deleted",
	})
}

// decodeRequest reads the body field by field so that a wrong-typed field
// reads as missing and is reported by name instead of failing the whole
// body.
func (h *Handler) decodeRequest(w http.ResponseWriter, r *http.Request) (StudentRequest, bool) {
	var req StudentRequest

	var raw map[string]json.RawMessage
	if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
		h.logger.WarnContext(r.Context(), "failed to decode request", "error", err)
		httputil.RespondWithError(w, http.StatusBadRequest, httputil.KindValidation, "invalid request body")
		return req, false
	}

	decodeField(raw, "name", &req.Name)
	decodeField(raw, "age", &req.Age)
	decodeField(raw, "subjects", &req.Subjects)
	decodeField(raw, "dateEnrolled", &req.DateEnrolled)

	if err := h.validate.Struct(&req); err != nil {
		message := "invalid request"
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) && len(validationErrs) > 0 {
			if m, ok := fieldMessages[validationErrs[0].StructField()]; ok {
				message = m
			}
		}
		h.logger.WarnContext(r.Context(), "validation failed", "error", message)
		httputil.RespondWithError(w, http.StatusBadRequest, httputil.KindValidation, message)
		return req, false
	}

	return req, true
}

func decodeField[T any](raw map[string]json.RawMessage, key string, dst *T) {
	value, ok := raw[key]
	if !ok {
		return
	}
	var v T
	if err := json.Unmarshal(value, &v); err != nil {
		return
	}
	*dst = v
}

func (h *Handler) handleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	h.logger.ErrorContext(r.Context(), "store operation failed", "error", err)
	httputil.RespondWithError(w, http.StatusInternalServerError, httputil.KindStore, err.Error())
}
