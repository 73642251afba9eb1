package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/hitoshi/janken/internal/model"
)

// --- モック定義 ---

type mockSessionFinder struct {
	findByTokenFn func(ctx context.Context, token string) (*model.Session, error)
}

func (m *mockSessionFinder) FindByToken(ctx context.Context, token string) (*model.Session, error) {
	if m.findByTokenFn != nil {
		return m.findByTokenFn(ctx, token)
	}
	return nil, nil
}

type mockUserFinder struct {
	findByIDFn func(ctx context.Context, id int64) (*model.User, error)
}

func (m *mockUserFinder) FindByID(ctx context.Context, id int64) (*model.User, error) {
	if m.findByIDFn != nil {
		return m.findByIDFn(ctx, id)
	}
	return nil, nil
}

func validStores() (*mockSessionFinder, *mockUserFinder) {
	sessions := &mockSessionFinder{
		findByTokenFn: func(ctx context.Context, token string) (*model.Session, error) {
			if token == "valid-token" {
				return &model.Session{
					ID:        "session-1",
					Token:     "valid-token",
					UserID:    7,
					CreatedAt: time.Now(),
				}, nil
			}
			return nil, nil
		},
	}
	users := &mockUserFinder{
		findByIDFn: func(ctx context.Context, id int64) (*model.User, error) {
			if id == 7 {
				return &model.User{
					ID:           7,
					Username:     "alice",
					PasswordHash: "hash",
					DisplayName:  "Alice",
				}, nil
			}
			return nil, nil
		},
	}
	return sessions, users
}

// --- テスト ---

func TestSessionMiddleware_CookieToken_AttachesSession(t *testing.T) {
	sessions, users := validStores()
	mw := NewSessionMiddleware(sessions, users)

	var captured *ResolvedSession
	handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured, _ = SessionFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/auth", nil)
	req.AddCookie(&http.Cookie{Name: "SESSION_TOKEN", Value: "valid-token"})
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	if captured == nil {
		t.Fatal("expected session in context")
	}
	if captured.Token != "valid-token" {
		t.Errorf("Token = %q, want %q", captured.Token, "valid-token")
	}
	if captured.Session.ID != "session-1" {
		t.Errorf("Session.ID = %q, want %q", captured.Session.ID, "session-1")
	}
	if captured.User.ID != 7 || captured.User.Username != "alice" {
		t.Errorf("User = %+v, want id 7 username alice", captured.User)
	}
}

func TestSessionMiddleware_BearerToken_AttachesSession(t *testing.T) {
	sessions, users := validStores()
	mw := NewSessionMiddleware(sessions, users)

	var captured *ResolvedSession
	handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured, _ = SessionFromContext(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/auth", nil)
	req.Header.Set("Authorization", "Bearer valid-token")
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	if captured == nil {
		t.Fatal("expected session in context")
	}
	if captured.Session.ID != "session-1" {
		t.Errorf("Session.ID = %q, want %q", captured.Session.ID, "session-1")
	}
}

// CookieとBearerヘッダーが両方ある場合、Cookieが優先されることを検証
func TestSessionMiddleware_CookieAndBearer_CookieWins(t *testing.T) {
	var lookedUp string
	sessions := &mockSessionFinder{
		findByTokenFn: func(ctx context.Context, token string) (*model.Session, error) {
			lookedUp = token
			return nil, nil
		},
	}
	mw := NewSessionMiddleware(sessions, &mockUserFinder{})

	handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	req := httptest.NewRequest(http.MethodGet, "/auth", nil)
	req.AddCookie(&http.Cookie{Name: "SESSION_TOKEN", Value: "cookie-token"})
	req.Header.Set("Authorization", "Bearer header-token")
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	if lookedUp != "cookie-token" {
		t.Errorf("looked up token = %q, want cookie token to win", lookedUp)
	}
}

func TestSessionMiddleware_NoToken_ProceedsWithoutSession(t *testing.T) {
	mw := NewSessionMiddleware(&mockSessionFinder{}, &mockUserFinder{})

	var hasSession bool
	handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, hasSession = SessionFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/auth", nil)
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	// このミドルウェアはリクエストを拒否しない
	if w.Result().StatusCode != http.StatusOK {
		t.Errorf("status = %d, want %d", w.Result().StatusCode, http.StatusOK)
	}
	if hasSession {
		t.Error("expected no session in context")
	}
}

func TestSessionMiddleware_UnknownToken_ProceedsWithoutSession(t *testing.T) {
	sessions, users := validStores()
	mw := NewSessionMiddleware(sessions, users)

	var hasSession bool
	handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, hasSession = SessionFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/auth", nil)
	req.AddCookie(&http.Cookie{Name: "SESSION_TOKEN", Value: "stale-token"})
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	if w.Result().StatusCode != http.StatusOK {
		t.Errorf("status = %d, want %d", w.Result().StatusCode, http.StatusOK)
	}
	if hasSession {
		t.Error("expected no session for unknown token")
	}
}

func TestSessionMiddleware_LookupError_ProceedsWithoutSession(t *testing.T) {
	sessions := &mockSessionFinder{
		findByTokenFn: func(ctx context.Context, token string) (*model.Session, error) {
			return nil, errors.New("connection refused")
		},
	}
	mw := NewSessionMiddleware(sessions, &mockUserFinder{})

	var hasSession bool
	handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, hasSession = SessionFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/auth", nil)
	req.AddCookie(&http.Cookie{Name: "SESSION_TOKEN", Value: "valid-token"})
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	if w.Result().StatusCode != http.StatusOK {
		t.Errorf("status = %d, want %d", w.Result().StatusCode, http.StatusOK)
	}
	if hasSession {
		t.Error("expected no session when lookup fails")
	}
}

func TestSessionMiddleware_SessionWithoutUser_ProceedsWithoutSession(t *testing.T) {
	sessions, _ := validStores()
	users := &mockUserFinder{
		findByIDFn: func(ctx context.Context, id int64) (*model.User, error) {
			return nil, nil
		},
	}
	mw := NewSessionMiddleware(sessions, users)

	var hasSession bool
	handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, hasSession = SessionFromContext(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/auth", nil)
	req.AddCookie(&http.Cookie{Name: "SESSION_TOKEN", Value: "valid-token"})
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	if hasSession {
		t.Error("expected no session when user row is missing")
	}
}

func TestSessionFromContext_EmptyContext_ReturnsFalse(t *testing.T) {
	_, ok := SessionFromContext(context.Background())
	if ok {
		t.Error("expected ok = false for empty context")
	}
}
