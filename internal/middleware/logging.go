package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
)

// loggedUIDContextKey はリクエストログ用のuid受け渡しキー。
var loggedUIDContextKey = contextKey("logged_uid")

// loggedUID はベアラー検証済みuidをロギングミドルウェアへ引き渡す入れ物。
// ベアラー検証はロギングより内側で行われ、検証後のコンテキストは
// 下流のハンドラーにしか伝わらないため、ポインタ経由で上流へ報告する。
type loggedUID struct {
	uid string
}

// reportLoggedUID は検証済みuidをリクエストログへ報告する。
// ロギングミドルウェアが外側に存在しない場合は何もしない。
func reportLoggedUID(ctx context.Context, uid string) {
	if holder, ok := ctx.Value(loggedUIDContextKey).(*loggedUID); ok {
		holder.uid = uid
	}
}

// statusRecorder はhttp.ResponseWriterをラップし、ステータスコードを記録する。
type statusRecorder struct {
	http.ResponseWriter
	statusCode int
	written    bool
}

// WriteHeader はステータスコードを記録してから委譲する。
func (sr *statusRecorder) WriteHeader(code int) {
	if !sr.written {
		sr.statusCode = code
		sr.written = true
	}
	sr.ResponseWriter.WriteHeader(code)
}

// Write はデータを書き込む。WriteHeaderが未呼び出しの場合は200を記録する。
func (sr *statusRecorder) Write(b []byte) (int, error) {
	if !sr.written {
		sr.statusCode = http.StatusOK
		sr.written = true
	}
	return sr.ResponseWriter.Write(b)
}

// NewLoggingMiddleware はリクエストのJSON構造化ログを出力するミドルウェアを返す。
// リクエストごとにrequest_idを採番し、method、path、status、duration_ms、
// uid（認証済みの場合）とともに記録する。
func NewLoggingMiddleware(logger *slog.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			requestID := uuid.NewString()

			rec := &statusRecorder{
				ResponseWriter: w,
				statusCode:     http.StatusOK,
			}

			holder := &loggedUID{}
			r = r.WithContext(context.WithValue(r.Context(), loggedUIDContextKey, holder))

			next.ServeHTTP(rec, r)

			duration := time.Since(start)
			durationMs := float64(duration.Nanoseconds()) / float64(time.Millisecond)

			attrs := []slog.Attr{
				slog.String("request_id", requestID),
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.Int("status", rec.statusCode),
				slog.Float64("duration_ms", durationMs),
			}

			// ベアラー検証ミドルウェアから報告されたuidがあれば追加する。
			// ロギングより外側で検証済みのリクエストはコンテキストから読む。
			userID := holder.uid
			if userID == "" {
				if fromCtx, err := UserIDFromContext(r.Context()); err == nil {
					userID = fromCtx
				}
			}
			if userID != "" {
				attrs = append(attrs, slog.String("uid", userID))
			}

			// slogのログレベルをステータスコードに応じて変更
			level := slog.LevelInfo
			if rec.statusCode >= 500 {
				level = slog.LevelError
			} else if rec.statusCode >= 400 {
				level = slog.LevelWarn
			}

			args := make([]any, len(attrs))
			for i, attr := range attrs {
				args[i] = attr
			}

			logger.Log(r.Context(), level, "http_request", args...)
		})
	}
}
