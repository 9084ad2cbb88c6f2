package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/orrn/printq/internal/core"
	"github.com/orrn/printq/internal/db"
)

type memorySecrets map[string]string

func (m memorySecrets) GetOrCreateSetting(_ context.Context, key, value string, _ bool) (string, error) {
	if existing, ok := m[key]; ok {
		return existing, nil
	}
	m[key] = value
	return value, nil
}

type fakeAccounts struct {
	users    map[string]*db.User
	password string
}

func (f *fakeAccounts) Register(_ context.Context, _ core.Caller, reg core.Registration) (*db.User, error) {
	for _, u := range f.users {
		if u.Email == reg.Email {
			return nil, core.ErrConflict
		}
	}
	u := &db.User{ID: int64(len(f.users) + 1), UUID: "new-" + reg.Email, Name: reg.Name, Email: reg.Email, Rank: core.RankUser, Status: core.UserStatusPending}
	f.users[u.UUID] = u
	return u, nil
}

func (f *fakeAccounts) Authenticate(_ context.Context, email, password string) (*db.User, error) {
	for _, u := range f.users {
		if u.Email == email && password == f.password && u.Status == core.UserStatusApproved {
			return u, nil
		}
	}
	return nil, core.ErrUnauthorized
}

func (f *fakeAccounts) ByUUID(_ context.Context, id string) (*db.User, error) {
	if u, ok := f.users[id]; ok {
		return u, nil
	}
	return nil, core.ErrNotFound
}

func newTestAuth(t *testing.T) (*AuthMiddleware, *fakeAccounts) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	accounts := &fakeAccounts{
		password: "password123",
		users: map[string]*db.User{
			"u-admin": {ID: 1, UUID: "u-admin", Name: "Root", Email: "root@example.com", Rank: core.RankAdmin, Status: core.UserStatusApproved},
			"u-ann":   {ID: 2, UUID: "u-ann", Name: "Ann", Email: "ann@example.com", Rank: core.RankUser, Status: core.UserStatusApproved},
		},
	}
	a, err := NewAuthMiddleware(context.Background(), memorySecrets{}, accounts, AuthConfig{TokenTTL: time.Hour}, nil)
	if err != nil {
		t.Fatalf("new auth middleware: %v", err)
	}
	return a, accounts
}

func newAuthRouter(a *AuthMiddleware) *gin.Engine {
	r := gin.New()
	r.POST("/login", a.LoginHandler)
	r.POST("/register", a.RegisterHandler)
	r.GET("/status", a.StatusHandler)
	r.POST("/logout", a.LogoutHandler)

	whoami := func(c *gin.Context) {
		caller := CallerFromContext(c)
		c.JSON(http.StatusOK, gin.H{"kind": caller.Kind, "user_id": caller.UserID})
	}
	r.GET("/private", a.RequireAuth(), whoami)
	r.GET("/admin", a.RequireAuth(), a.RequireAdmin(), whoami)
	r.GET("/public", a.OptionalAuth(), whoami)
	return r
}

func login(t *testing.T, r *gin.Engine, email string) *http.Cookie {
	t.Helper()
	body, _ := json.Marshal(LoginRequest{Email: email, Password: "password123"})
	req := httptest.NewRequest(http.MethodPost, "/login", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("login %s: expected 200, got %d: %s", email, w.Code, w.Body.String())
	}
	for _, c := range w.Result().Cookies() {
		if c.Name == "printq_auth" {
			if !c.HttpOnly {
				t.Fatalf("auth cookie must be http only")
			}
			return c
		}
	}
	t.Fatalf("no auth cookie set")
	return nil
}

func TestSecretIsPersisted(t *testing.T) {
	secrets := memorySecrets{}
	a1, err := NewAuthMiddleware(context.Background(), secrets, &fakeAccounts{}, AuthConfig{}, nil)
	if err != nil {
		t.Fatalf("first: %v", err)
	}
	a2, err := NewAuthMiddleware(context.Background(), secrets, &fakeAccounts{}, AuthConfig{}, nil)
	if err != nil {
		t.Fatalf("second: %v", err)
	}
	if !bytes.Equal(a1.secret, a2.secret) || len(a1.secret) != 32 {
		t.Fatalf("expected the same 32 byte secret to be reused")
	}
}

func TestLogin(t *testing.T) {
	a, _ := newTestAuth(t)
	r := newAuthRouter(a)

	t.Run("bad credentials", func(t *testing.T) {
		body := bytes.NewBufferString(`{"email":"ann@example.com","password":"nope"}`)
		req := httptest.NewRequest(http.MethodPost, "/login", body)
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		if w.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", w.Code)
		}
	})

	t.Run("invalid json", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/login", bytes.NewBufferString("{"))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		if w.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", w.Code)
		}
	})

	t.Run("cookie session", func(t *testing.T) {
		cookie := login(t, r, "ann@example.com")

		req := httptest.NewRequest(http.MethodGet, "/private", nil)
		req.AddCookie(cookie)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		if w.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", w.Code)
		}
		var resp struct {
			Kind   string `json:"kind"`
			UserID int64  `json:"user_id"`
		}
		if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if resp.Kind != string(core.CallerUser) || resp.UserID != 2 {
			t.Fatalf("unexpected caller %+v", resp)
		}
	})

	t.Run("bearer session", func(t *testing.T) {
		cookie := login(t, r, "root@example.com")

		req := httptest.NewRequest(http.MethodGet, "/admin", nil)
		req.Header.Set("Authorization", "Bearer "+cookie.Value)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		if w.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", w.Code)
		}
	})
}

func TestRequireAuth(t *testing.T) {
	a, accounts := newTestAuth(t)
	r := newAuthRouter(a)

	t.Run("no token", func(t *testing.T) {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/private", nil))
		if w.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", w.Code)
		}
	})

	t.Run("garbage token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/private", nil)
		req.Header.Set("Authorization", "Bearer not-a-jwt")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		if w.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", w.Code)
		}
	})

	t.Run("user on admin route", func(t *testing.T) {
		cookie := login(t, r, "ann@example.com")
		req := httptest.NewRequest(http.MethodGet, "/admin", nil)
		req.AddCookie(cookie)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		if w.Code != http.StatusForbidden {
			t.Fatalf("expected 403, got %d", w.Code)
		}
	})

	t.Run("deleted account", func(t *testing.T) {
		cookie := login(t, r, "ann@example.com")
		ann := accounts.users["u-ann"]
		delete(accounts.users, "u-ann")
		defer func() { accounts.users["u-ann"] = ann }()

		req := httptest.NewRequest(http.MethodGet, "/private", nil)
		req.AddCookie(cookie)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		if w.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", w.Code)
		}
	})

	t.Run("optional auth", func(t *testing.T) {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/public", nil))
		if w.Code != http.StatusOK || !bytes.Contains(w.Body.Bytes(), []byte(`"anonymous"`)) {
			t.Fatalf("expected anonymous caller, got %d %s", w.Code, w.Body.String())
		}
	})
}

func TestRegisterAndStatus(t *testing.T) {
	a, _ := newTestAuth(t)
	r := newAuthRouter(a)

	body := bytes.NewBufferString(`{"name":"Bea","email":"bea@example.com","password":"password123"}`)
	req := httptest.NewRequest(http.MethodPost, "/register", body)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", w.Code)
	}

	body = bytes.NewBufferString(`{"name":"Bea","email":"bea@example.com","password":"password123"}`)
	req = httptest.NewRequest(http.MethodPost, "/register", body)
	req.Header.Set("Content-Type", "application/json")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusConflict {
		t.Fatalf("expected 409 for duplicate, got %d", w.Code)
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/status", nil))
	var status StatusResponse
	if err := json.Unmarshal(w.Body.Bytes(), &status); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if status.Authenticated {
		t.Fatalf("expected unauthenticated status")
	}

	cookie := login(t, r, "ann@example.com")
	req = httptest.NewRequest(http.MethodGet, "/status", nil)
	req.AddCookie(cookie)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if err := json.Unmarshal(w.Body.Bytes(), &status); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !status.Authenticated || status.User == nil || status.User.Email != "ann@example.com" {
		t.Fatalf("unexpected status %+v", status)
	}
}

func TestLogoutClearsCookie(t *testing.T) {
	a, _ := newTestAuth(t)
	r := newAuthRouter(a)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/logout", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	cookies := w.Result().Cookies()
	if len(cookies) != 1 || cookies[0].MaxAge >= 0 {
		t.Fatalf("expected expired cookie, got %+v", cookies)
	}
}
