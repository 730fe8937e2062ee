package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/atinyakov/shortlink/internal/app/handler"
	"github.com/atinyakov/shortlink/internal/app/service"
	"github.com/atinyakov/shortlink/internal/middleware"
)

// Init builds the HTTP router of the shortener.
func Init(logger *zap.Logger, trustProxy bool, svc service.LinkServiceIface) *chi.Mux {
	get := handler.NewGet(svc, logger)
	post := handler.NewPost(svc, logger)

	r := chi.NewRouter()
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.WithRequestLogging(logger))
	r.Use(middleware.WithGzip)
	r.Use(middleware.WithOrigin(trustProxy))

	r.Get("/", get.Home)
	r.Get("/health", get.Health)
	r.Get("/ping", get.PingDB)
	r.Post("/shorten", post.Shorten)
	r.Get("/{code}", get.ByCode)

	r.MethodNotAllowed(handler.MethodNotAllowed)
	r.NotFound(handler.NotFound)

	return r
}

// PprofRouter exposes net/http/pprof on a separate listener.
func PprofRouter() http.Handler {
	r := chi.NewRouter()
	r.Mount("/debug", chimiddleware.Profiler())
	return r
}
