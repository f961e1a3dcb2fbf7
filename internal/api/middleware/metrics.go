// metrics.go — Prometheus HTTP метрики для Auth Module.
// Регистрирует метрики: am_http_requests_total, am_http_request_duration_seconds.
package middleware

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTP метрики
var (
	// httpRequestsTotal — общее количество HTTP-запросов.
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "am_http_requests_total",
			Help: "Общее количество HTTP-запросов к Auth Module",
		},
		[]string{"method", "path", "status"},
	)

	// httpRequestDuration — гистограмма длительности HTTP-запросов.
	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "am_http_request_duration_seconds",
			Help:    "Длительность HTTP-запросов к Auth Module в секундах",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)
)

// MetricsMiddleware возвращает HTTP middleware для сбора Prometheus метрик.
// Записывает количество запросов и длительность для каждого endpoint.
func MetricsMiddleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			// Нормализуем путь для лейблов метрик
			// (заменяем имена и страны на плейсхолдеры для предотвращения кардинальности)
			normalizedPath := normalizePath(r.URL.Path)

			wrapped := newMetricsResponseWriter(w)
			next.ServeHTTP(wrapped, r)

			duration := time.Since(start).Seconds()
			status := strconv.Itoa(wrapped.statusCode)

			httpRequestsTotal.WithLabelValues(r.Method, normalizedPath, status).Inc()
			httpRequestDuration.WithLabelValues(r.Method, normalizedPath).Observe(duration)
		})
	}
}

// metricsResponseWriter — обёртка для перехвата статус-кода.
type metricsResponseWriter struct {
	http.ResponseWriter
	statusCode int
}

func newMetricsResponseWriter(w http.ResponseWriter) *metricsResponseWriter {
	return &metricsResponseWriter{ResponseWriter: w, statusCode: http.StatusOK}
}

func (rw *metricsResponseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// Unwrap позволяет http.ResponseController получить доступ к оригинальному ResponseWriter.
func (rw *metricsResponseWriter) Unwrap() http.ResponseWriter {
	return rw.ResponseWriter
}

// normalizePath заменяет переменные сегменты пути (имена пользователей,
// страны, роли) на плейсхолдеры для предотвращения взрывного роста
// кардинальности метрик.
// /users/get_user/bob → /users/get_user/{username}
func normalizePath(path string) string {
	// Статические пути — возвращаем как есть
	switch path {
	case "/login",
		"/health/live", "/health/ready", "/metrics",
		"/users/get_access", "/users/get_users", "/users/delete_users",
		"/users/get_user/", "/users/update_user/":
		return path
	}

	// Статические ресурсы
	if strings.HasPrefix(path, "/static/") {
		return "/static/{file}"
	}

	// Динамические пути
	prefixes := []struct {
		prefix string
		result string
	}{
		{"/users/get_user/", "/users/get_user/{username}"},
		{"/users/check_username/", "/users/check_username/{username}"},
		{"/users/update_user/", "/users/update_user/{username}"},
		{"/roles/get_roles/", "/roles/get_roles/{country}"},
		{"/roles/get_all_access/", "/roles/get_all_access/{country}/{role}"},
		{"/roles/get_graph/", "/roles/get_graph/{country}"},
	}

	for _, p := range prefixes {
		if strings.HasPrefix(path, p.prefix) {
			return p.result
		}
	}

	return path
}
