// Package main API Server 入口
package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"notes-admin/internal/apiserver/auth"
	"notes-admin/internal/apiserver/server"
	"notes-admin/internal/config"
	"notes-admin/internal/shared/storage"
	"notes-admin/internal/shared/storage/mongostore"
	"notes-admin/pkg/logging"
)

func main() {
	// 加载配置（自动加载 .env）
	cfg := config.Load()

	logger := logging.New(logging.Config{
		Level:     cfg.LogLevel,
		Format:    cfg.LogFormat,
		Output:    "stdout",
		Component: "api-server",
	})
	logger.Info("Starting API Server...", "config", cfg.String())

	// 初始化 MongoDB
	// 连接失败时不退出：进程继续运行，存储路由返回错误，
	// 与原服务的启动行为保持一致
	var store storage.PersistentStore
	if cfg.DatabaseURI == "" {
		logger.Warn("DATABASE_URI not set, running without a working store")
	} else {
		s, err := mongostore.NewStore(cfg.DatabaseURI, cfg.DatabaseName)
		if err != nil {
			logger.WithError(err).Warn("Failed to connect to MongoDB, running without a working store")
		} else {
			store = s
			defer s.Close()
			logger.Info("Connected to MongoDB")
		}
	}

	authCfg := auth.Config{
		JWTSecret:      cfg.JWTSecret,
		AccessTokenTTL: cfg.AccessTokenTTL,
	}
	if !authCfg.Enabled() {
		logger.Warn("JWT_SECRET not set, authentication disabled")
	}

	h := server.NewHandler(store, authCfg, logger)

	srv := &http.Server{
		Addr:         ":" + cfg.APIPort,
		Handler:      h.Router(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// 优雅关闭
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		logger.Info("Shutting down server...")
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			logger.WithError(err).Error("Server shutdown error")
		}
	}()

	logger.Info("API Server listening", "addr", srv.Addr)
	if err := srv.ListenAndServe(); err != http.ErrServerClosed {
		log.Fatalf("Server error: %v", err)
	}

	logger.Info("Server stopped")
}
