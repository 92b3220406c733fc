// Package user 用户管理 HTTP 处理器
//
// 单一路由 /users 上的四个方法对应四个操作：
//   - GET    /users 列出全部用户（不含密码）
//   - POST   /users 创建用户
//   - PATCH  /users 更新用户（整体更新，密码可选）
//   - DELETE /users 删除用户（有笔记引用时拒绝）
//
// 用户名唯一性由写前检查保证，检查与写入之间不加锁，
// 并发同名创建存在竞争窗口，语义沿用原服务。
package user

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"notes-admin/internal/apiserver/auth"
	"notes-admin/internal/shared/model"
	"notes-admin/internal/shared/storage"
)

// Store 用户管理所需的存储接口
type Store interface {
	storage.UserStore
	UserHasNotes(ctx context.Context, userID string) (bool, error)
}

// Handler 用户管理 HTTP 处理器
type Handler struct {
	store Store
}

// NewHandler 创建用户管理处理器
func NewHandler(store Store) *Handler {
	return &Handler{store: store}
}

// RegisterRoutes 注册用户管理路由
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /users", h.List)
	mux.HandleFunc("POST /users", h.Create)
	mux.HandleFunc("PATCH /users", h.Update)
	mux.HandleFunc("DELETE /users", h.Delete)
}

// ============================================================================
// 请求类型
// ============================================================================

type createUserRequest struct {
	Username string   `json:"username"`
	Password string   `json:"password"`
	Roles    []string `json:"roles"`
}

type updateUserRequest struct {
	ID       string   `json:"id"`
	Username string   `json:"username"`
	Roles    []string `json:"roles"`
	Active   *bool    `json:"active"`
	Password string   `json:"password"`
}

type deleteUserRequest struct {
	ID string `json:"id"`
}

// ============================================================================
// Handlers
// ============================================================================

// List 列出全部用户
//
// 结果集为空时返回 400，不返回空数组，沿用原服务的策略。
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	users, err := h.store.ListUsers(r.Context())
	if err != nil {
		log.Printf("[user.list] ListUsers error: %v", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if len(users) == 0 {
		writeError(w, http.StatusBadRequest, "No Users Found")
		return
	}

	// PasswordHash 的 json tag 为 "-"，序列化时自动省略
	writeJSON(w, http.StatusOK, users)
}

// Create 创建用户
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req createUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "All Fields are Required")
		return
	}

	if req.Username == "" || req.Password == "" || len(req.Roles) == 0 {
		writeError(w, http.StatusBadRequest, "All Fields are Required")
		return
	}

	// 写前唯一性检查（大小写敏感精确匹配）
	duplicate, err := h.store.GetUserByUsername(r.Context(), req.Username)
	if err != nil {
		log.Printf("[user.create] GetUserByUsername error: %v", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if duplicate != nil {
		writeError(w, http.StatusConflict, "Duplicate username")
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		log.Printf("[user.create] HashPassword error: %v", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	now := time.Now()
	user := &model.User{
		ID:           generateID(),
		Username:     req.Username,
		PasswordHash: hash,
		Roles:        req.Roles,
		Active:       true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := h.store.CreateUser(r.Context(), user); err != nil {
		log.Printf("[user.create] CreateUser error: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to create user")
		return
	}

	writeJSON(w, http.StatusCreated, map[string]string{
		"message": "New User " + user.Username + " created",
	})
}

// Update 更新用户
//
// id、username、roles、active 每次都必须携带（不支持部分更新），
// password 可选：缺省时保留原有哈希。
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	var req updateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "All Fields are Required")
		return
	}

	if req.ID == "" || req.Username == "" || len(req.Roles) == 0 || req.Active == nil {
		writeError(w, http.StatusBadRequest, "All Fields are Required")
		return
	}

	user, err := h.store.GetUserByID(r.Context(), req.ID)
	if err != nil {
		log.Printf("[user.update] GetUserByID error: %v", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if user == nil {
		writeError(w, http.StatusBadRequest, "User Not Found")
		return
	}

	// 唯一性检查：允许用户保留自己的用户名，
	// 只有重名记录属于其他 ID 时才算冲突
	duplicate, err := h.store.GetUserByUsername(r.Context(), req.Username)
	if err != nil {
		log.Printf("[user.update] GetUserByUsername error: %v", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if duplicate != nil && duplicate.ID != req.ID {
		writeError(w, http.StatusConflict, "Duplicate Username")
		return
	}

	user.Username = req.Username
	user.Roles = req.Roles
	user.Active = *req.Active
	user.UpdatedAt = time.Now()

	if req.Password != "" {
		hash, err := auth.HashPassword(req.Password)
		if err != nil {
			log.Printf("[user.update] HashPassword error: %v", err)
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		user.PasswordHash = hash
	}

	if err := h.store.SaveUser(r.Context(), user); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			writeError(w, http.StatusBadRequest, "User Not Found")
			return
		}
		log.Printf("[user.update] SaveUser error: %v", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"message": user.Username + " Updated",
	})
}

// Delete 删除用户
//
// 仍有笔记引用该用户时拒绝删除（存在性检查，非计数）。
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	var req deleteUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "User ID Required")
		return
	}

	if req.ID == "" {
		writeError(w, http.StatusBadRequest, "User ID Required")
		return
	}

	hasNotes, err := h.store.UserHasNotes(r.Context(), req.ID)
	if err != nil {
		log.Printf("[user.delete] UserHasNotes error: %v", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if hasNotes {
		writeError(w, http.StatusBadRequest, "User has assigned notes")
		return
	}

	user, err := h.store.GetUserByID(r.Context(), req.ID)
	if err != nil {
		log.Printf("[user.delete] GetUserByID error: %v", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if user == nil {
		writeError(w, http.StatusBadRequest, "User Not Found")
		return
	}

	if err := h.store.DeleteUser(r.Context(), req.ID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			writeError(w, http.StatusBadRequest, "User Not Found")
			return
		}
		log.Printf("[user.delete] DeleteUser error: %v", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"message": "Username " + user.Username + " With ID " + user.ID + " deleted",
	})
}

// ============================================================================
// 工具函数
// ============================================================================

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"message": message})
}

// generateID 生成用户 ID
//
// 使用加密安全的随机数生成 6 字节（12 个十六进制字符）的 ID，
// 格式为：user-xxxxxxxxxxxx
func generateID() string {
	b := make([]byte, 6)
	rand.Read(b)
	return "user-" + hex.EncodeToString(b)
}
