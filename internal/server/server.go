// Package server собирает HTTP API поверх менеджера страниц.
package server

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/iudanet/inkpage/internal/server/handlers"
	"github.com/iudanet/inkpage/internal/server/middleware"
)

// Пути API
const (
	HealthPath  = "/api/v1/health"
	MetricsPath = "/metrics"
	pagesPrefix = "/api/v1/pages/"
)

// Options зависимости HTTP слоя
type Options struct {
	Logger  *slog.Logger
	Pages   handlers.PageService
	Pinger  handlers.Pinger // может быть nil
	Limiter *middleware.RateLimiter // может быть nil, тогда мутации не ограничиваются
	Version string
}

// NewRouter создает маршрутизатор со всеми обработчиками и middleware.
//
// Ключ страницы может содержать "/", поэтому маршруты с суффиксом
// (shapes, fade, updates, stream) регистрируются раньше маршрута снимка.
func NewRouter(opts Options) http.Handler {
	logger := opts.Logger

	pages := handlers.NewPageHandler(logger, opts.Pages)
	stream := handlers.NewStreamHandler(logger, pages)
	health := handlers.NewHealthHandler(logger, opts.Version, opts.Pinger)

	r := mux.NewRouter()
	r.Use(middleware.LoggingWithSkip(logger, []string{HealthPath, MetricsPath}))
	r.Use(middleware.RecoveryMiddleware(logger))

	r.Methods(http.MethodGet).Path(HealthPath).HandlerFunc(health.Health)
	r.Methods(http.MethodGet).Path(MetricsPath).Handler(promhttp.Handler())

	page := "{" + handlers.PageVar + ":.+}"

	mutations := r.PathPrefix(pagesPrefix).Subrouter()
	if opts.Limiter != nil {
		mutations.Use(middleware.RateLimitMiddleware(opts.Limiter, logger))
	}
	mutations.Methods(http.MethodPost).Path(pagesPrefix + page + "/shapes").HandlerFunc(pages.AddShape)
	mutations.Methods(http.MethodDelete).Path(pagesPrefix + page + "/shapes").HandlerFunc(pages.DeleteShape)
	mutations.Methods(http.MethodPost).Path(pagesPrefix + page + "/fade").HandlerFunc(pages.Fade)

	r.Methods(http.MethodGet).Path(pagesPrefix + page + "/updates").HandlerFunc(pages.Updates)
	r.Methods(http.MethodGet).Path(pagesPrefix + page + "/stream").HandlerFunc(stream.Stream)
	r.Methods(http.MethodGet).Path(pagesPrefix + page).HandlerFunc(pages.Snapshot)

	return middleware.RequestID(r)
}
