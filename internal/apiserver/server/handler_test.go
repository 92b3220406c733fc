package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"notes-admin/internal/apiserver/auth"
)

func TestHealth(t *testing.T) {
	h := NewHandler(nil, auth.DefaultConfig(), nil)

	w := httptest.NewRecorder()
	h.Router().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	var resp map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp["status"] != "ok" {
		t.Errorf("status = %q, want ok", resp["status"])
	}
}

func TestRouter_NilStore(t *testing.T) {
	// 数据库未连接时进程继续服务，存储路由返回 500
	h := NewHandler(nil, auth.DefaultConfig(), nil)
	router := h.Router()

	for _, method := range []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete} {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(method, "/users", nil))
		if w.Code != http.StatusInternalServerError {
			t.Errorf("%s /users status = %d, want 500", method, w.Code)
		}
	}
}

func TestRouter_AuthGuardsUsers(t *testing.T) {
	authCfg := auth.Config{JWTSecret: "test-secret", AccessTokenTTL: 0}
	h := NewHandler(nil, authCfg, nil)
	router := h.Router()

	// 未携带令牌的 /users 请求被拒绝
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/users", nil))
	if w.Code != http.StatusUnauthorized {
		t.Errorf("GET /users without token status = %d, want 401", w.Code)
	}

	// 健康检查不受认证影响
	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	if w.Code != http.StatusOK {
		t.Errorf("GET /health status = %d, want 200", w.Code)
	}
}
