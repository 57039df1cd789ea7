package server

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"DailyFM/cache"
	"DailyFM/config"
	"DailyFM/core/catalog"
	"DailyFM/core/recommend"
	"DailyFM/db"
	"DailyFM/logger"
	"DailyFM/model"
	"DailyFM/repository"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

// Start initializes and starts the HTTP server.
func Start() {
	cfg := config.Load()

	logger.InitLogger(logger.Config{
		Level:      logger.LogLevel(cfg.LogLevel),
		OutputPath: cfg.LogPath,
		MaxSize:    cfg.LogMaxSize,
		MaxBackups: cfg.LogMaxBackups,
		MaxAge:     cfg.LogMaxAge,
		Compress:   true,
	})
	defer logger.Sync()

	loc, err := time.LoadLocation(cfg.TimeZone)
	if err != nil {
		logger.Fatal("Invalid TIME_ZONE", logger.String("timeZone", cfg.TimeZone), logger.ErrorField(err))
	}

	provider := catalog.NewClient(cfg.ProviderBaseURL, time.Duration(cfg.ProviderTimeout)*time.Second)

	// Redis快照可选，连不上时退化为纯内存运行
	var snapshots recommend.SnapshotStore
	if cfg.RedisEnabled {
		redisClient, err := cache.NewRedisClient(cfg)
		if err != nil {
			logger.Warn("Redis unavailable, running with in-memory state only", logger.ErrorField(err))
		} else {
			defer redisClient.Close()
			snapshots = cache.NewDailyCache(redisClient)
			logger.Info("Connected to Redis for daily snapshots")
		}
	}

	// MySQL归档可选
	var archive recommend.ArchiveStore
	if cfg.ArchiveEnabled {
		gormDB, err := db.ConnectGorm(cfg)
		if err != nil {
			logger.Warn("Archive database unavailable, archiving disabled", logger.ErrorField(err))
		} else {
			defer db.CloseGorm(gormDB)
			if err := db.AutoMigrateModels(gormDB, &model.ArchivedPlaylistSong{}); err != nil {
				logger.Fatal("Failed to migrate archive tables", logger.ErrorField(err))
			}
			archive = repository.NewGormArchiveRepository(gormDB)
			logger.Info("Connected to MySQL for playlist archiving")
		}
	}

	var yearRange *model.YearRange
	if cfg.StartYear > 0 || cfg.EndYear > 0 {
		yearRange = &model.YearRange{StartYear: cfg.StartYear, EndYear: cfg.EndYear}
	}

	svc := recommend.NewService(provider, recommend.ServiceConfig{
		TargetSize:       cfg.TargetPlaylistSize,
		WindowDays:       cfg.HistoryWindowDays,
		DefaultYearRange: yearRange,
		Location:         loc,
		Snapshots:        snapshots,
		Archive:          archive,
	})

	restoreCtx, cancelRestore := context.WithTimeout(context.Background(), 10*time.Second)
	if err := svc.Restore(restoreCtx); err != nil {
		logger.Warn("Failed to restore recommendation state", logger.ErrorField(err))
	}
	cancelRestore()

	// 零点预热调度
	scheduler := recommend.NewScheduler(svc)
	scheduler.Start()
	defer scheduler.Stop()

	handler := NewRecommendHandler(svc)

	// 使用 gorilla/mux 创建路由器
	router := mux.NewRouter()
	router.Use(corsMiddleware)
	router.Use(requestLogMiddleware)

	// 推荐相关的API端点
	router.HandleFunc("/api/daily", handler.GetDailyHandler).Methods(http.MethodGet)
	router.HandleFunc("/api/fetch", handler.FetchHandler).Methods(http.MethodPost)
	router.HandleFunc("/api/history", handler.GetHistoryHandler).Methods(http.MethodGet)
	router.HandleFunc("/api/history", handler.ClearHistoryHandler).Methods(http.MethodDelete)
	router.HandleFunc("/api/random", handler.RandomHandler).Methods(http.MethodGet)
	router.HandleFunc("/api/mirror", handler.MirrorStatsHandler).Methods(http.MethodGet)
	router.HandleFunc("/api/archive", handler.ArchiveHandler).Methods(http.MethodGet)
	router.HandleFunc("/api/songs/{id}", handler.GetSongHandler).Methods(http.MethodGet)

	server := &http.Server{
		Addr:         cfg.ServerAddr,
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// 创建一个通道来接收操作系统信号
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	// 在goroutine中启动服务器
	go func() {
		logger.Info("Server starting", logger.String("addr", cfg.ServerAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", logger.ErrorField(err))
		}
	}()

	// 等待中断信号
	<-stop
	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	// 优雅关闭服务器
	if err := server.Shutdown(ctx); err != nil {
		logger.Fatal("Server forced to shutdown", logger.ErrorField(err))
	}

	logger.Info("Server stopped")
}

// corsMiddleware 添加CORS响应头
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		w.Header().Set("Access-Control-Max-Age", "86400") // 24 hours

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// requestLogMiddleware 为每个请求生成请求ID并记录访问日志
func requestLogMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := uuid.New().String()
		w.Header().Set("X-Request-ID", requestID)

		start := time.Now()
		next.ServeHTTP(w, r)

		logger.Debug("Request completed",
			logger.String("requestId", requestID),
			logger.String("method", r.Method),
			logger.String("path", r.URL.Path),
			logger.Duration("elapsed", time.Since(start)))
	})
}
