package subject

import (
	"log/slog"
	"net/http"

	"github.com/akkm9120/sctp02-crud-mongo/internal/httputil"
	"github.com/akkm9120/sctp02-crud-mongo/internal/metrics"

	"github.com/go-chi/chi/v5"
)

type Handler struct {
	service Service
	logger  *slog.Logger
	metrics *metrics.Metrics
}

func NewHandler(service Service, logger *slog.Logger, metrics *metrics.Metrics) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
		metrics: metrics,
	}
}

func (h *Handler) RegisterRoutes(router chi.Router) {
	router.Get("/subjects", h.ListSubjects)
	router.Post("/subjects/{subjectName}", h.CreateSubject)
	router.Delete("/subjects/{subjectName}", h.DeleteSubject)
}

func (h *Handler) ListSubjects(w http.ResponseWriter, r *http.Request) {
	subjects, err := h.service.ListSubjects(r.Context())
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	httputil.RespondWithJSON(w, http.StatusOK, map[string]interface{}{
		"subjects": subjects,
	})
}

func (h *Handler) CreateSubject(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "subjectName")

	h.logger.InfoContext(r.Context(), "creating subject", "subject_name", name)
	result, err := h.service.CreateSubject(r.Context(), name)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	h.metrics.RecordSubjectCreated(r.Context())

	httputil.RespondWithJSON(w, http.StatusOK, map[string]interface{}{
		"result": result,
	})
}

func (h *Handler) DeleteSubject(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "subjectName")

	h.logger.InfoContext(r.Context(), "deleting subject", "subject_name", name)
	if err := h.service.DeleteSubject(r.Context(), name); err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	h.metrics.RecordSubjectDeleted(r.Context())

	httputil.RespondWithJSON(w, http.StatusOK, map[string]string{
		"message": "Deleted",
	})
}

func (h *Handler) handleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	h.logger.ErrorContext(r.Context(), "store operation failed", "error", err)
	httputil.RespondWithError(w, http.StatusInternalServerError, httputil.KindStore, err.Error())
}
