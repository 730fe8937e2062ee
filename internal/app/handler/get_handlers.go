package handler

import (
	_ "embed"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/atinyakov/shortlink/internal/app/service"
	"github.com/atinyakov/shortlink/internal/models"
	"github.com/atinyakov/shortlink/internal/storage"
)

//go:embed web/index.html
var indexHTML []byte

type GetHandler struct {
	service service.LinkServiceIface
	logger  *zap.Logger
}

func NewGet(s service.LinkServiceIface, l *zap.Logger) *GetHandler {
	return &GetHandler{
		service: s,
		logger:  l,
	}
}

// ByCode handles GET /{code}: a known code redirects with 302.
func (h *GetHandler) ByCode(res http.ResponseWriter, req *http.Request) {
	code := chi.URLParam(req, "code")

	link, err := h.service.Resolve(req.Context(), code)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			writeError(res, http.StatusNotFound, msgNotFound)
			return
		}

		h.logger.Error("unable to resolve code", zap.String("code", code), zap.Error(err))
		writeError(res, http.StatusInternalServerError, msgInternal)
		return
	}

	res.Header().Set("Location", link.URL)
	res.WriteHeader(http.StatusFound)
}

// Health reports liveness without touching the store.
func (h *GetHandler) Health(res http.ResponseWriter, _ *http.Request) {
	writeJSON(res, http.StatusOK, models.HealthResponse{OK: true})
}

// PingDB reports whether the store answers.
func (h *GetHandler) PingDB(res http.ResponseWriter, req *http.Request) {
	if err := h.service.PingContext(req.Context()); err != nil {
		h.logger.Warn("store ping failed", zap.Error(err))
		writeError(res, http.StatusServiceUnavailable, msgStoreDown)
		return
	}

	writeJSON(res, http.StatusOK, models.HealthResponse{OK: true})
}

// Home serves the single page form that calls POST /shorten.
func (h *GetHandler) Home(res http.ResponseWriter, _ *http.Request) {
	res.Header().Set("Content-Type", "text/html; charset=utf-8")
	res.WriteHeader(http.StatusOK)
	_, _ = res.Write(indexHTML)
}
