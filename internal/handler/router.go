package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/hitoshi/eventauth/internal/metrics"
	"github.com/hitoshi/eventauth/internal/middleware"
)

// HealthChecker はヘルスチェックに必要なインターフェース。
// sql.DBがそのまま満たす。
type HealthChecker interface {
	PingContext(ctx context.Context) error
}

// RouterDeps はNewRouterに必要な依存関係をまとめた構造体。
type RouterDeps struct {
	// ミドルウェア依存
	TokenVerifier     middleware.TokenVerifier
	CORSAllowedOrigin string
	RateLimiter       *middleware.RateLimiter
	Metrics           *metrics.Collector
	Gatherer          prometheus.Gatherer

	// ヘルスチェック
	HealthChecker HealthChecker

	// サービス
	AuthService  AuthServiceInterface
	EventService EventServiceInterface
}

// NewRouter は全APIエンドポイントのルーティングとミドルウェアチェーンを構成したchi.Routerを返す。
//
// ミドルウェアスタックの実行順序:
//
//	Recovery → Logging → Metrics → SecurityHeaders → CORS
//
// 認証エンドポイント（/login, /create-user）はIP単位のレート制限のみ、
// 保護エンドポイント（/events）はベアラー検証 → uid単位レート制限を通る。
func NewRouter(deps *RouterDeps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.NewRecoveryMiddleware())
	r.Use(middleware.NewLoggingMiddleware(slog.Default()))
	if deps.Metrics != nil {
		r.Use(middleware.NewMetricsMiddleware(deps.Metrics))
	}
	r.Use(middleware.NewSecurityHeadersMiddleware())
	r.Use(middleware.NewCORSMiddleware(deps.CORSAllowedOrigin))

	authHandler := NewAuthHandler(deps.AuthService)
	eventHandler := NewEventHandler(deps.EventService)

	// --- 認証不要のルート ---

	r.Group(func(r chi.Router) {
		if deps.RateLimiter != nil {
			r.Use(deps.RateLimiter.AuthEndpointMiddleware())
		}
		r.Post("/login", authHandler.Login)
		r.Post("/create-user", authHandler.CreateUser)
	})

	r.Get("/healthz", newHealthHandler(deps.HealthChecker))

	if deps.Gatherer != nil {
		r.Handle("/metrics", metrics.Handler(deps.Gatherer))
	}

	// --- ベアラー検証が必要なルート ---
	// ミドルウェアスタック: BearerAuth → RateLimit(General)
	// Metricsがnilのときは型付きnilを渡さないよう明示的にnilにする
	var verifyRecorder middleware.VerificationRecorder
	if deps.Metrics != nil {
		verifyRecorder = deps.Metrics
	}

	r.Group(func(r chi.Router) {
		r.Use(middleware.NewBearerAuthMiddleware(deps.TokenVerifier, verifyRecorder))
		if deps.RateLimiter != nil {
			r.Use(deps.RateLimiter.GeneralMiddleware())
		}

		// 末尾スラッシュ付きが元々の公開パスだが、両方を受け付ける
		r.Get("/events", eventHandler.ListEvents)
		r.Get("/events/", eventHandler.ListEvents)
	})

	return r
}

// newHealthHandler はDB疎通を確認するヘルスチェックハンドラーを返す。
func newHealthHandler(checker HealthChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if checker == nil {
			w.WriteHeader(http.StatusOK)
			return
		}
		if err := checker.PingContext(r.Context()); err != nil {
			http.Error(w, "database unreachable", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	}
}
