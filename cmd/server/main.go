// 排班引擎服务
// 主程序入口
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/paiban/roster/internal/config"
	"github.com/paiban/roster/internal/constraints"
	"github.com/paiban/roster/internal/database"
	"github.com/paiban/roster/internal/handler"
	"github.com/paiban/roster/internal/metrics"
	"github.com/paiban/roster/internal/middleware"
	"github.com/paiban/roster/internal/repository"
	"github.com/paiban/roster/pkg/logger"
	"github.com/paiban/roster/pkg/scheduler/solver"
)

// 构建信息（通过 ldflags 注入）
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "加载配置失败: %v\n", err)
		os.Exit(1)
	}

	logger.Init(logger.Config{
		Level:  cfg.App.LogLevel,
		Format: "console",
	})

	fmt.Printf("排班引擎 v%s\n", Version)
	fmt.Printf("Build: %s (%s)\n", BuildTime, GitCommit)
	fmt.Println()

	var (
		scheduleRepo  *repository.ScheduleRepository
		employeeRepo  *repository.EmployeeRepository
		avoidanceRepo *repository.AvoidanceGroupRepository
		rosterHandler *handler.RosterHandler
	)
	if db, err := database.New(&cfg.Database); err != nil {
		logger.Warn().Err(err).Msg("数据库不可用，排班结果将不会被持久化")
	} else {
		defer db.Close()
		scheduleRepo = repository.NewScheduleRepository(db)
		employeeRepo = repository.NewEmployeeRepository(db)
		avoidanceRepo = repository.NewAvoidanceGroupRepository(db)
		rosterHandler = handler.NewRosterHandler(employeeRepo, avoidanceRepo)
	}

	scheduleHandler := handler.NewScheduleHandler(cfg, scheduleRepo)
	constraintLibrary := constraints.FromManager(solver.BuildManager())

	mux := http.NewServeMux()

	// ========================================
	// 系统端点
	// ========================================

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok","service":"roster-scheduler"}`))
	})

	mux.HandleFunc("/version", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, `{"version":"%s","build_time":"%s","git_commit":"%s"}`, Version, BuildTime, GitCommit)
	})

	// ========================================
	// API v1 端点
	// ========================================

	mux.HandleFunc("/api/v1/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{
			"message": "排班引擎 API v1",
			"endpoints": {
				"schedule": {
					"solve": "POST /api/v1/schedule/solve",
					"validate": "POST /api/v1/schedule/validate",
					"advise": "POST /api/v1/schedule/advise"
				},
				"constraints": {
					"library": "GET /api/v1/constraints/library"
				},
				"roster": {
					"employees": "GET/POST /api/v1/roster/employees",
					"employee": "GET/PUT/DELETE /api/v1/roster/employees/{id}",
					"avoidance_groups": "GET/POST /api/v1/roster/avoidance-groups",
					"avoidance_group": "GET/PUT/DELETE /api/v1/roster/avoidance-groups/{id}"
				}
			}
		}`))
	})

	mux.HandleFunc("/api/v1/schedule/solve", scheduleHandler.Solve)
	mux.HandleFunc("/api/v1/schedule/validate", scheduleHandler.Validate)
	mux.HandleFunc("/api/v1/schedule/advise", scheduleHandler.Advise)

	mux.HandleFunc("/api/v1/constraints/library", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(constraints.LibraryResponse{Library: constraintLibrary})
	})

	if rosterHandler != nil {
		mux.HandleFunc("/api/v1/roster/employees", rosterHandler.Employees)
		mux.HandleFunc("/api/v1/roster/employees/", rosterHandler.EmployeeByID)
		mux.HandleFunc("/api/v1/roster/avoidance-groups", rosterHandler.AvoidanceGroups)
		mux.HandleFunc("/api/v1/roster/avoidance-groups/", rosterHandler.AvoidanceGroupByID)
	}

	// ========================================
	// 监控端点
	// ========================================

	mux.Handle("/metrics", metrics.Handler())

	// ========================================
	// 中间件
	// ========================================

	rateLimiter := middleware.NewRateLimiter(cfg.API.RateLimit)

	var handlerChain http.Handler = mux
	handlerChain = middleware.RecoveryMiddleware(handlerChain)
	handlerChain = middleware.LoggingMiddleware(handlerChain)
	handlerChain = middleware.SecurityHeadersMiddleware(handlerChain)
	handlerChain = rateLimiter.Middleware(handlerChain)
	handlerChain = middleware.CORSMiddleware(cfg.API.CORS)(handlerChain)
	handlerChain = middleware.RequestIDMiddleware(handlerChain)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.App.Port),
		Handler:      handlerChain,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		logger.Info().
			Int("port", cfg.App.Port).
			Str("version", Version).
			Str("url", fmt.Sprintf("http://localhost:%d", cfg.App.Port)).
			Str("api_docs", fmt.Sprintf("http://localhost:%d/api/v1/", cfg.App.Port)).
			Msg("服务器启动")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error().Err(err).Msg("服务器启动失败")
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("正在关闭服务器...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error().Err(err).Msg("服务器关闭失败")
		os.Exit(1)
	}

	logger.Info().Msg("服务器已关闭")
}
