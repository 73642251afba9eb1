package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/hitoshi/janken/internal/middleware"
	"github.com/hitoshi/janken/internal/model"
)

// sessionCookieName はセッショントークンを運ぶCookie名。
const sessionCookieName = "SESSION_TOKEN"

// AuthServiceInterface は認証ハンドラーが必要とするサービスインターフェース。
type AuthServiceInterface interface {
	Register(ctx context.Context, username, password string) (*model.User, error)
	Login(ctx context.Context, username, password string) (*model.Session, *model.User, error)
	Logout(ctx context.Context, sessionID string) error
	UpdateDisplayName(ctx context.Context, userID int64, displayName string) error
}

// AuthMetricsRecorder は認証イベントの記録インターフェース。
// metrics.Collectorの部分集合として定義する。
type AuthMetricsRecorder interface {
	RecordLogin(success bool)
	RecordRegistration()
	RecordLogout()
}

// noopAuthMetrics はメトリクス未設定時のフォールバック。
type noopAuthMetrics struct{}

func (noopAuthMetrics) RecordLogin(bool) {}

func (noopAuthMetrics) RecordRegistration() {}

func (noopAuthMetrics) RecordLogout() {}

// AuthHandlerConfig は認証ハンドラーの設定。
type AuthHandlerConfig struct {
	CookieDomain string
	CookieSecure bool
	CookieMaxAge int // セッションCookieの有効期間（秒）。クライアントへのヒントに過ぎない。
}

// AuthHandler は認証関連のHTTPハンドラー。
type AuthHandler struct {
	service AuthServiceInterface
	config  AuthHandlerConfig
	metrics AuthMetricsRecorder
}

// NewAuthHandler はAuthHandlerを生成する。metricsはnilでもよい。
func NewAuthHandler(service AuthServiceInterface, config AuthHandlerConfig, metrics AuthMetricsRecorder) *AuthHandler {
	if metrics == nil {
		metrics = noopAuthMetrics{}
	}
	return &AuthHandler{
		service: service,
		config:  config,
		metrics: metrics,
	}
}

// credentialsRequest はlogin/registerの共通リクエストボディ。
type credentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Whoami は現在のセッションとユーザー情報を返す。
// セッションが解決されていない場合も200で{success:false}を返す。副作用はない。
// GET /auth
func (h *AuthHandler) Whoami(w http.ResponseWriter, r *http.Request) {
	session, ok := middleware.SessionFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusOK, apiResponse{
			Success: false,
			Message: "Not Authenticated",
		})
		return
	}

	writeJSON(w, http.StatusOK, apiResponse{
		Success: true,
		Message: "Authenticated",
		Data: map[string]any{
			"session": session.Session,
			"user":    session.User,
		},
	})
}

// Login はクレデンシャルを検証し、セッショントークンを発行する。
// トークンはhttpOnly Cookieとレスポンスボディの両方で返す。
// Cookieはブラウザ用、ボディのトークンはBearerヘッダーで送る非ブラウザ用。
// POST /auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Username == "" || req.Password == "" {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewMissingCredentialsError())
		return
	}

	session, user, err := h.service.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		h.metrics.RecordLogin(false)
		handleServiceError(w, err)
		return
	}

	h.metrics.RecordLogin(true)

	// セッションCookieを設定（HTTP Only、7日間の期限ヒント）
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    session.Token,
		Path:     "/",
		Domain:   h.config.CookieDomain,
		Expires:  time.Now().Add(time.Duration(h.config.CookieMaxAge) * time.Second),
		MaxAge:   h.config.CookieMaxAge,
		HttpOnly: true,
		Secure:   h.config.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})

	writeJSON(w, http.StatusOK, apiResponse{
		Success: true,
		Message: "Authenticated Successfully.",
		Data: map[string]any{
			"token": session.Token,
		},
		User: user.Public(),
	})
}

// Register は新規ユーザーを登録する。自動ログインは行わない。
// POST /auth/register
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Username == "" || req.Password == "" {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewMissingCredentialsError())
		return
	}

	user, err := h.service.Register(r.Context(), req.Username, req.Password)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	h.metrics.RecordRegistration()

	writeJSON(w, http.StatusOK, apiResponse{
		Success: true,
		Message: "User registered successfully.",
		Data: map[string]any{
			"user": user.Public(),
		},
	})
}

// Logout は解決済みセッションを破棄し、Cookieをクリアする。
// セッションが解決されていない場合は400を返す。
// 削除が0行でも（既に破棄済みでも）成功として扱う。
// POST /auth/logout
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	session, ok := middleware.SessionFromContext(r.Context())
	if !ok {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewInvalidSessionError())
		return
	}

	if err := h.service.Logout(r.Context(), session.Session.ID); err != nil {
		handleServiceError(w, err)
		return
	}

	h.metrics.RecordLogout()

	// セッションCookieをクリア（空値・過去のExpires）
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    "",
		Path:     "/",
		Domain:   h.config.CookieDomain,
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.config.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})

	writeJSON(w, http.StatusOK, apiResponse{
		Success: true,
		Message: "Logged out successfully.",
	})
}

// updateDisplayNameRequest はupdate-display-nameのリクエストボディ。
type updateDisplayNameRequest struct {
	UserID      int64  `json:"userId"`
	DisplayName string `json:"displayName"`
}

// UpdateDisplayName は表示名を更新する。
//
// 更新対象のuserIdはリクエストボディから取得し、解決済みセッションとの
// 所有関係は検証しない。任意のユーザーIDを知る呼び出し元がそのアカウントの
// 表示名を変更できる、という既存APIコントラクトをそのまま維持している。
// 認可を強化する場合はセッションのユーザーIDと突き合わせること
// （インテグレーター判断。TestUpdateDisplayName_OtherUsersID_IsAccepted参照）。
// POST /auth/update-display-name
func (h *AuthHandler) UpdateDisplayName(w http.ResponseWriter, r *http.Request) {
	var req updateDisplayNameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.UserID == 0 || req.DisplayName == "" {
		writeAPIErrorResponse(w, http.StatusBadRequest, &model.APIError{
			Code:     model.ErrCodeMissingCredentials,
			Message:  "Invalid request. Missing user ID or display name.",
			Category: "validation",
		})
		return
	}

	if err := h.service.UpdateDisplayName(r.Context(), req.UserID, req.DisplayName); err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, apiResponse{
		Success: true,
		Message: "Display name updated successfully.",
		Data: map[string]any{
			"user": map[string]any{
				"id":          req.UserID,
				"displayName": req.DisplayName,
			},
		},
	})
}
