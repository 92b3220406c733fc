// Package server 组装 HTTP API
//
// 路由一览：
//   - GET /health - 服务健康检查
//   - GET /metrics - Prometheus 指标
//   - POST /auth/login - 登录获取访问令牌
//   - GET/POST/PATCH/DELETE /users - 用户管理
package server

import (
	"encoding/json"
	"net/http"
	"time"

	"notes-admin/internal/apiserver/auth"
	"notes-admin/internal/apiserver/user"
	"notes-admin/internal/shared/storage"
	"notes-admin/pkg/logging"
)

// Handler API 处理器
//
// store 允许为 nil：数据库连接失败时进程继续存活（沿用原服务行为），
// 此时所有依赖存储的路由返回 500。
type Handler struct {
	store   storage.PersistentStore
	authCfg auth.Config
	metrics *Metrics
	logger  *logging.Logger
}

// NewHandler 创建 Handler 实例
func NewHandler(store storage.PersistentStore, authCfg auth.Config, logger *logging.Logger) *Handler {
	return &Handler{
		store:   store,
		authCfg: authCfg,
		metrics: NewMetrics("api"),
		logger:  logger,
	}
}

// Router 构建完整路由（含指标和认证中间件）
func (h *Handler) Router() http.Handler {
	mux := http.NewServeMux()

	// 健康检查
	mux.HandleFunc("GET /health", h.Health)

	// Prometheus 指标端点
	mux.Handle("GET /metrics", h.metrics.Handler())

	if h.store != nil {
		authHandler := auth.NewHandler(h.store, h.authCfg)
		authHandler.RegisterRoutes(mux)

		userHandler := user.NewHandler(h.store)
		userHandler.RegisterRoutes(mux)
	} else {
		mux.HandleFunc("/users", h.storeUnavailable)
		mux.HandleFunc("/auth/login", h.storeUnavailable)
	}

	var handler http.Handler = mux
	handler = auth.Middleware(h.authCfg)(handler)
	handler = h.metrics.MetricsMiddleware(handler)
	handler = h.requestLog(handler)
	return handler
}

// Health 健康检查接口
//
// 用于负载均衡器和监控系统检查服务状态。
// 返回 {"status": "ok"} 表示服务正常运行。
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

// storeUnavailable 数据库未连接时的兜底响应
func (h *Handler) storeUnavailable(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusInternalServerError)
	json.NewEncoder(w).Encode(map[string]string{"message": "database not connected"})
}

// requestLog 请求日志中间件
func (h *Handler) requestLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if h.logger == nil {
			next.ServeHTTP(w, r)
			return
		}
		start := time.Now()
		wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(wrapped, r)
		h.logger.HTTPRequestLog(r.Method, r.URL.Path, wrapped.statusCode, time.Since(start), r.RemoteAddr)
	})
}
