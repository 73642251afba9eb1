package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/hitoshi/janken/internal/metrics"
	"github.com/hitoshi/janken/internal/middleware"
)

// RouterDeps はNewRouterに必要な依存関係をまとめた構造体。
type RouterDeps struct {
	// ミドルウェア依存
	SessionFinder     middleware.SessionFinder
	UserFinder        middleware.UserFinder
	CORSAllowedOrigin string
	Logger            *slog.Logger

	// 認証
	AuthService AuthServiceInterface
	AuthConfig  AuthHandlerConfig

	// 運用
	HealthChecker   HealthChecker
	MetricsRecorder *metrics.Collector
	MetricsGatherer prometheus.Gatherer
}

// NewRouter は全APIエンドポイントのルーティングとミドルウェアチェーンを構成したchi.Routerを返す。
//
// ミドルウェアスタックの実行順序:
//
//	CORSMiddleware → RecoveryMiddleware → SessionMiddleware → MetricsMiddleware → LoggingMiddleware
//
// セッションミドルウェアは全/authルートに適用するが、リクエストを拒否しない。
// 認証必須かどうかは各ハンドラーが判断する（whoamiは未認証でも200、
// logoutは未認証なら400、login/registerはセッションを参照しない）。
func NewRouter(deps *RouterDeps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.NewCORSMiddleware(deps.CORSAllowedOrigin))
	r.Use(middleware.NewRecoveryMiddleware())
	r.Use(middleware.NewSessionMiddleware(deps.SessionFinder, deps.UserFinder))
	if deps.MetricsRecorder != nil {
		r.Use(middleware.NewMetricsMiddleware(deps.MetricsRecorder))
	}
	if deps.Logger != nil {
		r.Use(middleware.NewLoggingMiddleware(deps.Logger))
	}

	// typed nilがインターフェースのnil判定をすり抜けないよう明示的に変換する
	var authMetrics AuthMetricsRecorder
	if deps.MetricsRecorder != nil {
		authMetrics = deps.MetricsRecorder
	}
	authHandler := NewAuthHandler(deps.AuthService, deps.AuthConfig, authMetrics)

	r.Route("/auth", func(r chi.Router) {
		r.Get("/", authHandler.Whoami)
		r.Post("/login", authHandler.Login)
		r.Post("/register", authHandler.Register)
		r.Post("/logout", authHandler.Logout)
		r.Post("/update-display-name", authHandler.UpdateDisplayName)
	})

	if deps.HealthChecker != nil {
		r.Get("/health", NewHealthHandler(deps.HealthChecker))
	}

	if deps.MetricsGatherer != nil {
		r.Method(http.MethodGet, "/metrics", metrics.Handler(deps.MetricsGatherer))
	}

	return r
}
