package handler

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/atinyakov/shortlink/internal/app/service"
	"github.com/atinyakov/shortlink/internal/middleware"
	"github.com/atinyakov/shortlink/internal/models"
)

const (
	msgInvalidURL = "Please provide a valid http(s) URL"
	msgExhausted  = "Could not generate code, try again"
	msgInternal   = "Internal server error"
	msgNotFound   = "Not found"
	msgStoreDown  = "Database not configured or unavailable"
)

type PostHandler struct {
	service service.LinkServiceIface
	logger  *zap.Logger
}

func NewPost(s service.LinkServiceIface, l *zap.Logger) *PostHandler {
	return &PostHandler{
		service: s,
		logger:  l,
	}
}

// Shorten handles POST /shorten. Bodies that cannot be read as
// {"url": string} are treated like a missing URL.
func (h *PostHandler) Shorten(res http.ResponseWriter, req *http.Request) {
	var request models.ShortenRequest

	if err := decodeJSONBody(res, req, &request); err != nil {
		var mr *malformedRequest
		if errors.As(err, &mr) && mr.status == http.StatusRequestEntityTooLarge {
			writeError(res, mr.status, mr.msg)
			return
		}

		h.logger.Debug("malformed shorten request", zap.Error(err))
		writeError(res, http.StatusBadRequest, msgInvalidURL)
		return
	}

	result, err := h.service.Shorten(req.Context(), request.URL, middleware.OriginFrom(req))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidURL):
			writeError(res, http.StatusBadRequest, msgInvalidURL)
		case errors.Is(err, service.ErrGenerationExhausted):
			h.logger.Warn("no free code found", zap.String("url", request.URL))
			writeError(res, http.StatusInternalServerError, msgExhausted)
		default:
			h.logger.Error("unable to shorten url", zap.Error(err))
			writeError(res, http.StatusInternalServerError, msgInternal)
		}
		return
	}

	writeJSON(res, http.StatusCreated, result)
}
