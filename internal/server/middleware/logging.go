package middleware

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/felixge/httpsnoop"
	"github.com/gorilla/mux"

	"github.com/iudanet/inkpage/internal/metrics"
)

// unmatchedRoute метка для запросов, не совпавших ни с одним маршрутом
const unmatchedRoute = "unmatched"

// LoggingMiddleware создает middleware для логирования HTTP запросов
// Логирует метод, путь, статус, время выполнения, размер ответа.
// httpsnoop сохраняет интерфейсы исходного ResponseWriter (Hijacker, Flusher),
// поэтому middleware не ломает websocket upgrade.
func LoggingMiddleware(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			m := httpsnoop.CaptureMetrics(next, w, r)

			route := routeTemplate(r)
			metrics.HTTPRequests.WithLabelValues(route, r.Method, strconv.Itoa(m.Code)).Inc()
			metrics.HTTPDuration.WithLabelValues(route).Observe(m.Duration.Seconds())

			// Определяем уровень логирования на основе статуса
			logLevel := slog.LevelInfo
			if m.Code >= 500 {
				logLevel = slog.LevelError
			} else if m.Code >= 400 {
				logLevel = slog.LevelWarn
			}

			logger.Log(r.Context(), logLevel, "HTTP request",
				"request_id", RequestIDFromContext(r.Context()),
				"method", r.Method,
				"path", r.URL.Path,
				"route", route,
				"remote_addr", r.RemoteAddr,
				"user_agent", r.UserAgent(),
				"status", m.Code,
				"duration_ms", m.Duration.Milliseconds(),
				"bytes_written", m.Written,
			)
		})
	}
}

// LoggingWithSkip создает middleware с возможностью пропуска определенных путей
// Полезно для health checks и /metrics, которые опрашиваются постоянно
func LoggingWithSkip(logger *slog.Logger, skipPaths []string) func(http.Handler) http.Handler {
	skipMap := make(map[string]bool)
	for _, path := range skipPaths {
		skipMap[path] = true
	}

	return func(next http.Handler) http.Handler {
		logged := LoggingMiddleware(logger)(next)

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if skipMap[r.URL.Path] {
				next.ServeHTTP(w, r)
				return
			}

			logged.ServeHTTP(w, r)
		})
	}
}

// routeTemplate возвращает шаблон маршрута mux, чтобы ключи страниц
// не раздували кардинальность метрик
func routeTemplate(r *http.Request) string {
	route := mux.CurrentRoute(r)
	if route == nil {
		return unmatchedRoute
	}

	tpl, err := route.GetPathTemplate()
	if err != nil {
		return unmatchedRoute
	}
	return tpl
}
