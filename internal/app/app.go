package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"todoSaas/internal/config"
	"todoSaas/internal/handlers"
	"todoSaas/internal/logger"
	"todoSaas/internal/middleware"
	"todoSaas/internal/migrations"
	todoinmemory "todoSaas/internal/repository/todo/inmemory"
	todopostgres "todoSaas/internal/repository/todo/postgres"
	userinmemory "todoSaas/internal/repository/user/inmemory"
	userpostgres "todoSaas/internal/repository/user/postgres"
	"todoSaas/internal/service"
	"todoSaas/internal/worker"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
)

type App struct {
	config    *config.Config
	server    *http.Server
	router    *chi.Mux
	auth      *service.AuthService
	sweeper   *worker.SessionSweeper
	shutdowns []func()
}

func New(cfg *config.Config) *App {
	return &App{
		config:    cfg,
		shutdowns: make([]func(), 0),
	}
}

func (a *App) Init(ctx context.Context) error {
	if err := logger.Init(a.config.Logging.Development); err != nil {
		return fmt.Errorf("инициализация логгера: %w", err)
	}

	a.shutdowns = append(a.shutdowns, func() {
		logger.Info("Завершение работы логгирования...")
		logger.Sync()
	})

	var todoRepo service.TodoRepository
	var userRepo service.UserRepository

	switch a.config.Repository.Type {
	case "postgres":
		if err := migrations.Up(a.config.Database.URL); err != nil {
			return fmt.Errorf("миграции: %w", err)
		}

		storage, err := todopostgres.New(ctx,
			a.config.Database.URL,
			a.config.Database.MaxConnections,
			a.config.Database.MinConnections,
			a.config.Database.IdleTimeout,
		)
		if err != nil {
			return fmt.Errorf("подключение к postgres: %w", err)
		}

		a.shutdowns = append(a.shutdowns, storage.Close)

		todoRepo = storage
		userRepo = userpostgres.New(storage.Pool())
	default:
		todoRepo = todoinmemory.NewTodoStorage()
		userRepo = userinmemory.NewUserStorage()
	}

	todoService := service.NewTodoService(todoRepo)
	a.auth = service.NewAuthService(userRepo, a.config.Auth.SessionTTL)

	todoHandler := handlers.NewTodoHandler(todoService)
	authHandler := handlers.NewAuthHandler(a.auth)

	a.sweeper = worker.NewSessionSweeper(a.auth, a.config.Auth.SweepInterval)

	a.router = chi.NewRouter()
	a.router.Use(middleware.RequestID)
	a.router.Use(middleware.Logging)
	a.router.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Authorization", "Content-Type", "X-Request-ID"},
	}))
	a.router.Use(middleware.RateLimit(100))

	a.router.Route("/auth", func(r chi.Router) {
		r.Post("/signup", authHandler.Signup)
		r.Post("/signin", authHandler.Signin)
		r.Post("/signout", authHandler.Signout)
	})

	a.router.Route("/todos", func(r chi.Router) {
		r.Use(middleware.Authenticate(a.auth))

		r.Get("/", todoHandler.ListTodos)    // GET /todos
		r.Post("/", todoHandler.PostTodo)    // POST /todos

		r.Route("/{id}", func(r chi.Router) {
			r.Patch("/", todoHandler.PatchTodo)   // PATCH /todos/{id}
			r.Delete("/", todoHandler.DeleteTodo) // DELETE /todos/{id}
		})
	})

	a.router.Get("/health", todoHandler.HealthCheck)

	a.server = &http.Server{
		Addr:              a.config.GetServerAddr(),
		Handler:           a.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	return nil
}

// Run блокируется до отмены контекста, затем гасит сервер и фоновые задачи
func (a *App) Run(ctx context.Context) error {
	workerCtx, cancelWorker := context.WithCancel(ctx)
	go a.sweeper.Start(workerCtx)

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Сервер запущен: " + a.server.Addr)
		if err := a.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		cancelWorker()
		return fmt.Errorf("http сервер: %w", err)
	case <-ctx.Done():
	}

	cancelWorker()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := a.server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Ошибка остановки сервера", err)
	}

	for i := len(a.shutdowns) - 1; i >= 0; i-- {
		a.shutdowns[i]()
	}

	return nil
}
