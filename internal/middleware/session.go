// Package middleware はHTTPミドルウェアを提供する。
package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/hitoshi/janken/internal/model"
)

// sessionCookieName はセッショントークンを運ぶCookie名。
const sessionCookieName = "SESSION_TOKEN"

// bearerPrefix はAuthorizationヘッダーのスキーム接頭辞。
const bearerPrefix = "Bearer "

// contextKey はコンテキストに値を格納するための型安全なキー。
type contextKey string

// sessionContextKey はリクエストコンテキストに解決済みセッションを格納するためのキー。
var sessionContextKey = contextKey("session")

// ResolvedSession はリクエストコンテキストに格納される解決済みセッション。
// SessionとUserはトークン・パスワードハッシュを持たない公開表現で保持するため、
// 後段のハンドラーがそのままシリアライズしても漏洩しない。
type ResolvedSession struct {
	Token   string
	Session model.PublicSession
	User    model.PublicUser
}

// SessionFinder はセッションの検索に必要なインターフェース。
// repository.SessionRepositoryの部分集合として定義する。
type SessionFinder interface {
	FindByToken(ctx context.Context, token string) (*model.Session, error)
}

// UserFinder はセッション所有者の取得に必要なインターフェース。
// repository.UserRepositoryの部分集合として定義する。
type UserFinder interface {
	FindByID(ctx context.Context, id int64) (*model.User, error)
}

// NewSessionMiddleware はリクエストからセッショントークンを抽出し、
// セッションと所有ユーザーを解決してリクエストコンテキストに注入する
// ミドルウェアを返す。
//
// トークンの取得元はSESSION_TOKEN CookieとAuthorization: Bearerヘッダーの
// 2系統があり、両方が揃っている場合はCookieが常に優先される。
// ブラウザは常にCookieを持ち、モバイルアプリはCookieを持たず
// ヘッダーのみを送るため、この順序で両クライアントが一意に解決できる。
//
// このミドルウェア自身はリクエストを拒否しない。トークンが無い、
// トークンに対応するセッションが無い、検索に失敗した、のいずれの場合も
// コンテキストのセッションを空のままにしてリクエストを通過させる。
// 認証を必須とするかどうかは後段のハンドラーが判断する。
func NewSessionMiddleware(sessions SessionFinder, users UserFinder) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := extractToken(r)
			if token == "" {
				next.ServeHTTP(w, r)
				return
			}

			session, err := sessions.FindByToken(r.Context(), token)
			if err != nil {
				slog.Error("failed to find session",
					slog.String("error", err.Error()),
				)
				next.ServeHTTP(w, r)
				return
			}
			if session == nil {
				next.ServeHTTP(w, r)
				return
			}

			user, err := users.FindByID(r.Context(), session.UserID)
			if err != nil {
				slog.Error("failed to find session user",
					slog.String("session_id", session.ID),
					slog.String("error", err.Error()),
				)
				next.ServeHTTP(w, r)
				return
			}
			if user == nil {
				// セッションはあるが所有ユーザーがいない。未認証として扱う。
				slog.Warn("session without user",
					slog.String("session_id", session.ID),
					slog.Int64("user_id", session.UserID),
				)
				next.ServeHTTP(w, r)
				return
			}

			resolved := &ResolvedSession{
				Token:   token,
				Session: session.Public(),
				User:    user.Public(),
			}
			ctx := context.WithValue(r.Context(), sessionContextKey, resolved)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// extractToken はリクエストからセッショントークンを取り出す。
// Cookieが存在し空でなければそれを使い、無ければBearerヘッダーを参照する。
func extractToken(r *http.Request) string {
	if cookie, err := r.Cookie(sessionCookieName); err == nil && cookie.Value != "" {
		return cookie.Value
	}

	authz := r.Header.Get("Authorization")
	if strings.HasPrefix(authz, bearerPrefix) {
		return strings.TrimSpace(strings.TrimPrefix(authz, bearerPrefix))
	}

	return ""
}

// SessionFromContext はリクエストコンテキストから解決済みセッションを取得する。
// セッションが解決されていない場合は(nil, false)を返す。
// 解決済みセッションの不在が「未認証」の唯一のシグナルとなる。
func SessionFromContext(ctx context.Context) (*ResolvedSession, bool) {
	session, ok := ctx.Value(sessionContextKey).(*ResolvedSession)
	if !ok || session == nil {
		return nil, false
	}
	return session, true
}

// ContextWithSession はコンテキストに解決済みセッションを注入する。
// テストやミドルウェア以外のコンテキスト生成で使用する。
func ContextWithSession(ctx context.Context, session *ResolvedSession) context.Context {
	return context.WithValue(ctx, sessionContextKey, session)
}
