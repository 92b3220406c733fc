package user

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"notes-admin/internal/apiserver/auth"
	"notes-admin/internal/shared/model"
	"notes-admin/internal/shared/storage"
)

// mockStore 模拟存储层
type mockStore struct {
	users map[string]*model.User
	notes map[string][]*model.Note
	err   error // 注入存储故障
}

func newMockStore() *mockStore {
	return &mockStore{
		users: make(map[string]*model.User),
		notes: make(map[string][]*model.Note),
	}
}

func (m *mockStore) ListUsers(ctx context.Context) ([]*model.User, error) {
	if m.err != nil {
		return nil, m.err
	}
	users := make([]*model.User, 0, len(m.users))
	for _, u := range m.users {
		users = append(users, u)
	}
	return users, nil
}

func (m *mockStore) GetUserByID(ctx context.Context, id string) (*model.User, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.users[id], nil
}

func (m *mockStore) GetUserByUsername(ctx context.Context, username string) (*model.User, error) {
	if m.err != nil {
		return nil, m.err
	}
	for _, u := range m.users {
		if u.Username == username {
			return u, nil
		}
	}
	return nil, nil
}

func (m *mockStore) CreateUser(ctx context.Context, user *model.User) error {
	if m.err != nil {
		return m.err
	}
	m.users[user.ID] = user
	return nil
}

func (m *mockStore) SaveUser(ctx context.Context, user *model.User) error {
	if m.err != nil {
		return m.err
	}
	if _, ok := m.users[user.ID]; !ok {
		return storage.ErrNotFound
	}
	m.users[user.ID] = user
	return nil
}

func (m *mockStore) DeleteUser(ctx context.Context, id string) error {
	if m.err != nil {
		return m.err
	}
	if _, ok := m.users[id]; !ok {
		return storage.ErrNotFound
	}
	delete(m.users, id)
	return nil
}

func (m *mockStore) UserHasNotes(ctx context.Context, userID string) (bool, error) {
	if m.err != nil {
		return false, m.err
	}
	return len(m.notes[userID]) > 0, nil
}

// seedUser 预置一个用户并返回其 ID
func seedUser(t *testing.T, m *mockStore, username, password string, roles []string) string {
	t.Helper()
	hash, err := auth.HashPassword(password)
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	u := &model.User{
		ID:           "user-" + username,
		Username:     username,
		PasswordHash: hash,
		Roles:        roles,
		Active:       true,
	}
	m.users[u.ID] = u
	return u.ID
}

// doRequest 发送请求并返回记录的响应
func doRequest(h *Handler, method string, body interface{}) *httptest.ResponseRecorder {
	mux := http.NewServeMux()
	h.RegisterRoutes(mux)

	var buf bytes.Buffer
	if body != nil {
		json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, "/users", &buf)
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)
	return w
}

func message(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var resp map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v (body %q)", err, w.Body.String())
	}
	return resp["message"]
}

// ============================================================================
// List
// ============================================================================

func TestList_Empty(t *testing.T) {
	h := NewHandler(newMockStore())

	w := doRequest(h, http.MethodGet, nil)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
	if got := message(t, w); got != "No Users Found" {
		t.Errorf("message = %q, want %q", got, "No Users Found")
	}
}

func TestList_HidesPassword(t *testing.T) {
	m := newMockStore()
	seedUser(t, m, "alice", "s3cret", []string{"Employee"})
	h := NewHandler(m)

	w := doRequest(h, http.MethodGet, nil)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}

	var users []map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &users); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(users) != 1 {
		t.Fatalf("len(users) = %d, want 1", len(users))
	}
	if users[0]["username"] != "alice" {
		t.Errorf("username = %v, want alice", users[0]["username"])
	}
	for _, key := range []string{"password", "password_hash", "PasswordHash"} {
		if _, ok := users[0][key]; ok {
			t.Errorf("response exposes %q", key)
		}
	}
}

func TestList_StorageError(t *testing.T) {
	m := newMockStore()
	m.err = storage.ErrUnavailable
	h := NewHandler(m)

	w := doRequest(h, http.MethodGet, nil)

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", w.Code)
	}
}

// ============================================================================
// Create
// ============================================================================

func TestCreate_OK(t *testing.T) {
	m := newMockStore()
	h := NewHandler(m)

	w := doRequest(h, http.MethodPost, map[string]interface{}{
		"username": "alice",
		"password": "s3cret",
		"roles":    []string{"Employee"},
	})

	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201 (body %s)", w.Code, w.Body.String())
	}
	if got := message(t, w); got != "New User alice created" {
		t.Errorf("message = %q, want %q", got, "New User alice created")
	}

	created, _ := m.GetUserByUsername(context.Background(), "alice")
	if created == nil {
		t.Fatal("user not persisted")
	}
	if !created.Active {
		t.Error("Active should default to true")
	}
	if created.PasswordHash == "s3cret" || created.PasswordHash == "" {
		t.Error("password must be stored as a hash")
	}
	if !auth.CheckPassword("s3cret", created.PasswordHash) {
		t.Error("stored hash does not verify against the plaintext")
	}
}

func TestCreate_MissingFields(t *testing.T) {
	tests := []struct {
		name string
		body map[string]interface{}
	}{
		{"no username", map[string]interface{}{"password": "p", "roles": []string{"Admin"}}},
		{"no password", map[string]interface{}{"username": "u", "roles": []string{"Admin"}}},
		{"empty roles", map[string]interface{}{"username": "u", "password": "p", "roles": []string{}}},
		{"no roles", map[string]interface{}{"username": "u", "password": "p"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewHandler(newMockStore())
			w := doRequest(h, http.MethodPost, tt.body)

			if w.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400", w.Code)
			}
			if got := message(t, w); got != "All Fields are Required" {
				t.Errorf("message = %q, want %q", got, "All Fields are Required")
			}
		})
	}
}

func TestCreate_Duplicate(t *testing.T) {
	m := newMockStore()
	seedUser(t, m, "alice", "s3cret", []string{"Employee"})
	h := NewHandler(m)

	w := doRequest(h, http.MethodPost, map[string]interface{}{
		"username": "alice",
		"password": "other",
		"roles":    []string{"Admin"},
	})

	if w.Code != http.StatusConflict {
		t.Fatalf("status = %d, want 409", w.Code)
	}
	if got := message(t, w); got != "Duplicate username" {
		t.Errorf("message = %q, want %q", got, "Duplicate username")
	}
}

// ============================================================================
// Update
// ============================================================================

func TestUpdate_OK(t *testing.T) {
	m := newMockStore()
	id := seedUser(t, m, "alice", "s3cret", []string{"Employee"})
	h := NewHandler(m)

	w := doRequest(h, http.MethodPatch, map[string]interface{}{
		"id":       id,
		"username": "alice",
		"roles":    []string{"Employee", "Manager"},
		"active":   false,
	})

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (body %s)", w.Code, w.Body.String())
	}
	if got := message(t, w); got != "alice Updated" {
		t.Errorf("message = %q, want %q", got, "alice Updated")
	}

	u := m.users[id]
	if len(u.Roles) != 2 {
		t.Errorf("roles = %v, want 2 labels", u.Roles)
	}
	if u.Active {
		t.Error("active should be false after update")
	}
}

func TestUpdate_NoPasswordKeepsHash(t *testing.T) {
	m := newMockStore()
	id := seedUser(t, m, "alice", "s3cret", []string{"Employee"})
	before := m.users[id].PasswordHash
	h := NewHandler(m)

	w := doRequest(h, http.MethodPatch, map[string]interface{}{
		"id":       id,
		"username": "alice",
		"roles":    []string{"Employee"},
		"active":   true,
	})

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if m.users[id].PasswordHash != before {
		t.Error("hash must be unchanged when no password is supplied")
	}
}

func TestUpdate_WithPasswordRehashes(t *testing.T) {
	m := newMockStore()
	id := seedUser(t, m, "alice", "s3cret", []string{"Employee"})
	before := m.users[id].PasswordHash
	h := NewHandler(m)

	w := doRequest(h, http.MethodPatch, map[string]interface{}{
		"id":       id,
		"username": "alice",
		"roles":    []string{"Employee"},
		"active":   true,
		"password": "newpass",
	})

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	after := m.users[id].PasswordHash
	if after == before {
		t.Error("hash must change when a new password is supplied")
	}
	if !auth.CheckPassword("newpass", after) {
		t.Error("new hash does not verify against the new plaintext")
	}
}

func TestUpdate_MissingFields(t *testing.T) {
	m := newMockStore()
	id := seedUser(t, m, "alice", "s3cret", []string{"Employee"})
	h := NewHandler(m)

	tests := []struct {
		name string
		body map[string]interface{}
	}{
		{"no id", map[string]interface{}{"username": "alice", "roles": []string{"Admin"}, "active": true}},
		{"no username", map[string]interface{}{"id": id, "roles": []string{"Admin"}, "active": true}},
		{"empty roles", map[string]interface{}{"id": id, "username": "alice", "roles": []string{}, "active": true}},
		{"no active", map[string]interface{}{"id": id, "username": "alice", "roles": []string{"Admin"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doRequest(h, http.MethodPatch, tt.body)
			if w.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400", w.Code)
			}
			if got := message(t, w); got != "All Fields are Required" {
				t.Errorf("message = %q, want %q", got, "All Fields are Required")
			}
		})
	}
}

func TestUpdate_NotFound(t *testing.T) {
	h := NewHandler(newMockStore())

	w := doRequest(h, http.MethodPatch, map[string]interface{}{
		"id":       "user-nonexistent",
		"username": "ghost",
		"roles":    []string{"Admin"},
		"active":   true,
	})

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
	if got := message(t, w); got != "User Not Found" {
		t.Errorf("message = %q, want %q", got, "User Not Found")
	}
}

func TestUpdate_DuplicateUsername(t *testing.T) {
	m := newMockStore()
	seedUser(t, m, "alice", "s3cret", []string{"Employee"})
	id := seedUser(t, m, "bob", "hunter2", []string{"Employee"})
	h := NewHandler(m)

	// bob 试图改名为 alice
	w := doRequest(h, http.MethodPatch, map[string]interface{}{
		"id":       id,
		"username": "alice",
		"roles":    []string{"Employee"},
		"active":   true,
	})

	if w.Code != http.StatusConflict {
		t.Fatalf("status = %d, want 409", w.Code)
	}
	if got := message(t, w); got != "Duplicate Username" {
		t.Errorf("message = %q, want %q", got, "Duplicate Username")
	}
}

func TestUpdate_KeepOwnUsername(t *testing.T) {
	m := newMockStore()
	id := seedUser(t, m, "alice", "s3cret", []string{"Employee"})
	h := NewHandler(m)

	// 用户名不变的更新不算冲突
	w := doRequest(h, http.MethodPatch, map[string]interface{}{
		"id":       id,
		"username": "alice",
		"roles":    []string{"Admin"},
		"active":   true,
	})

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (body %s)", w.Code, w.Body.String())
	}
}

// ============================================================================
// Delete
// ============================================================================

func TestDelete_MissingID(t *testing.T) {
	h := NewHandler(newMockStore())

	w := doRequest(h, http.MethodDelete, map[string]interface{}{})

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
	if got := message(t, w); got != "User ID Required" {
		t.Errorf("message = %q, want %q", got, "User ID Required")
	}
}

func TestDelete_WithNotes(t *testing.T) {
	m := newMockStore()
	id := seedUser(t, m, "alice", "s3cret", []string{"Employee"})
	m.notes[id] = []*model.Note{{ID: "note-1", UserID: id, Title: "todo"}}
	h := NewHandler(m)

	w := doRequest(h, http.MethodDelete, map[string]interface{}{"id": id})

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
	if got := message(t, w); got != "User has assigned notes" {
		t.Errorf("message = %q, want %q", got, "User has assigned notes")
	}
	if _, ok := m.users[id]; !ok {
		t.Error("user must not be deleted while notes reference it")
	}
}

func TestDelete_NotFound(t *testing.T) {
	h := NewHandler(newMockStore())

	w := doRequest(h, http.MethodDelete, map[string]interface{}{"id": "user-nonexistent"})

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
	if got := message(t, w); got != "User Not Found" {
		t.Errorf("message = %q, want %q", got, "User Not Found")
	}
}

func TestDelete_OK(t *testing.T) {
	m := newMockStore()
	id := seedUser(t, m, "alice", "s3cret", []string{"Employee"})
	h := NewHandler(m)

	w := doRequest(h, http.MethodDelete, map[string]interface{}{"id": id})

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (body %s)", w.Code, w.Body.String())
	}
	want := "Username alice With ID " + id + " deleted"
	if got := message(t, w); got != want {
		t.Errorf("message = %q, want %q", got, want)
	}
	if _, ok := m.users[id]; ok {
		t.Error("user still present after delete")
	}
}
