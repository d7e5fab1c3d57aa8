// Package middleware はHTTPミドルウェアを提供する。
package middleware

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/hitoshi/eventauth/internal/model"
)

// contextKey はコンテキストに値を格納するための型安全なキー。
type contextKey string

// userIDContextKey はリクエストコンテキストにユーザーIDを格納するためのキー。
var userIDContextKey = contextKey("user_id")

// claimsContextKey はリクエストコンテキストに検証済みクレームを格納するためのキー。
var claimsContextKey = contextKey("claims")

// TokenVerifier はIDトークン検証に必要なインターフェース。
// identity.TokenVerifierの部分集合として定義する。
type TokenVerifier interface {
	VerifyIDToken(ctx context.Context, idToken string) (*model.Claims, error)
}

// VerificationRecorder は検証失敗メトリクスの記録インターフェース。
// metrics.Collectorの部分集合として定義する。nil許容。
type VerificationRecorder interface {
	RecordVerificationFailure()
}

// NewBearerAuthMiddleware はAuthorizationヘッダーからベアラートークンを取り出し、
// IDプロバイダーで検証するミドルウェアを返す。
// 検証済みuidとクレームをリクエストコンテキストに注入する。
//
// ヘッダー欠落・スキーム不正・検証失敗・検証時の通信障害は
// すべて同一の403 Forbiddenに畳み込み、内部事情をクライアントへ漏らさない。
// 403の場合、後続のハンドラー（ストアアクセスを含む）には一切到達しない。
func NewBearerAuthMiddleware(verifier TokenVerifier, recorder VerificationRecorder) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// 1. Authorizationヘッダーからベアラートークンを取得
			token, ok := extractBearerToken(r)
			if !ok {
				writeForbidden(w, recorder)
				return
			}

			// 2. プロバイダーの検証機能でIDトークンを検証
			claims, err := verifier.VerifyIDToken(r.Context(), token)
			if err != nil {
				slog.Warn("id token verification failed",
					slog.String("error", err.Error()),
				)
				writeForbidden(w, recorder)
				return
			}

			// 3. 検証済みuidとクレームをコンテキストに注入
			// 外側のロギングミドルウェアにもuidを報告する
			reportLoggedUID(r.Context(), claims.UID)
			ctx := context.WithValue(r.Context(), userIDContextKey, claims.UID)
			ctx = context.WithValue(ctx, claimsContextKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// extractBearerToken はAuthorizationヘッダーからベアラートークンを取り出す。
// ヘッダーが無い、Bearerスキームでない、トークンが空のいずれも失敗として扱う。
func extractBearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", false
	}

	const prefix = "Bearer "
	if len(header) <= len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return "", false
	}

	token := strings.TrimSpace(header[len(prefix):])
	if token == "" {
		return "", false
	}
	return token, true
}

// writeForbidden は検証失敗の統一403レスポンスを書き込む。
func writeForbidden(w http.ResponseWriter, recorder VerificationRecorder) {
	if recorder != nil {
		recorder.RecordVerificationFailure()
	}
	WriteErrorResponse(w, http.StatusForbidden, model.NewForbiddenError())
}

// UserIDFromContext はリクエストコンテキストからユーザーIDを取得する。
// ベアラー検証ミドルウェアを通過したリクエストでのみ有効。
func UserIDFromContext(ctx context.Context) (string, error) {
	userID, ok := ctx.Value(userIDContextKey).(string)
	if !ok || userID == "" {
		return "", fmt.Errorf("user ID not found in context")
	}
	return userID, nil
}

// ClaimsFromContext はリクエストコンテキストから検証済みクレームを取得する。
func ClaimsFromContext(ctx context.Context) (*model.Claims, error) {
	claims, ok := ctx.Value(claimsContextKey).(*model.Claims)
	if !ok || claims == nil {
		return nil, fmt.Errorf("claims not found in context")
	}
	return claims, nil
}

// ContextWithUserID はコンテキストにユーザーIDを注入する。
// テストやミドルウェア以外のコンテキスト生成で使用する。
func ContextWithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDContextKey, userID)
}
