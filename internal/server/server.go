// Пакет server — HTTP-сервер Auth Module с graceful shutdown.
// Без TLS — HTTP внутри кластера, TLS termination на API Gateway.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/sentinel-health/auth-module/internal/api/handlers"
	"github.com/sentinel-health/auth-module/internal/api/middleware"
	"github.com/sentinel-health/auth-module/internal/config"
	"github.com/sentinel-health/auth-module/internal/ui/i18n"
	"github.com/sentinel-health/auth-module/internal/ui/static"
)

// Server — HTTP-сервер Auth Module.
type Server struct {
	httpServer *http.Server
	logger     *slog.Logger
	cfg        *config.Config
}

// New создаёт новый HTTP-сервер с настроенными routes и middleware.
// jwtAuth — JWT middleware (может быть nil для тестирования без auth).
func New(cfg *config.Config, logger *slog.Logger, handler *handlers.APIHandler, jwtAuth *middleware.JWTAuth) *Server {
	router := chi.NewRouter()

	// Глобальные middleware (применяются ко ВСЕМ маршрутам)
	router.Use(middleware.MetricsMiddleware())
	router.Use(middleware.RequestLogger(logger))
	router.Use(i18n.Middleware())

	// JWT middleware; публичные пути задаются списком исключений.
	// Health и metrics опрашиваются Kubernetes и Prometheus напрямую.
	if jwtAuth != nil {
		router.Use(jwtAuth.Middleware())
	}

	// Аутентификация
	router.Post("/login", handler.Login)

	// Health и метрики
	router.Get("/health/live", handler.HealthLive)
	router.Get("/health/ready", handler.HealthReady)
	router.Get("/metrics", handler.GetMetrics)

	// Роли
	router.Get("/roles/get_roles/{country}", handler.GetRoles)
	router.Get("/roles/get_all_access/{country}/{role}", handler.GetAllAccess)
	router.Get("/roles/get_graph/{country}", handler.GetGraph)

	// Учётные записи
	router.Get("/users/get_access", handler.GetAccess)
	router.Get("/users/get_users", handler.GetUsers)
	router.Get("/users/get_user/", handler.GetUser)
	router.Get("/users/get_user/{username}", handler.GetUser)
	router.Get("/users/check_username/{username}", handler.CheckUsername)
	router.Post("/users/update_user/", handler.UpdateUser)
	router.Post("/users/update_user/{username}", handler.UpdateUser)
	router.Post("/users/delete_users", handler.DeleteUsers)

	// Статические ресурсы админ-панели (встроены в бинарник)
	router.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(static.FileSystem())))

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	return &Server{
		httpServer: srv,
		logger:     logger,
		cfg:        cfg,
	}
}

// PublicPaths возвращает список путей, не требующих токена.
// Передаётся в middleware.NewJWTAuth.
func PublicPaths() []string {
	return []string{"/login", "/health/", "/metrics", "/static/"}
}

// Run запускает сервер и ожидает сигнала завершения (SIGINT, SIGTERM).
// При получении сигнала выполняется graceful shutdown.
func (s *Server) Run() error {
	// Канал для ошибок сервера
	errCh := make(chan error, 1)

	go func() {
		s.logger.Info("HTTP-сервер запущен",
			slog.String("addr", s.httpServer.Addr),
		)

		err := s.httpServer.ListenAndServe()
		if err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()

	// Ожидание сигнала завершения
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		s.logger.Info("Получен сигнал завершения", slog.String("signal", sig.String()))
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("ошибка HTTP-сервера: %w", err)
		}
	}

	// Graceful shutdown
	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()

	s.logger.Info("Выполняется graceful shutdown...")
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("ошибка при graceful shutdown: %w", err)
	}

	s.logger.Info("HTTP-сервер остановлен")
	return nil
}
