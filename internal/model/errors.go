// Package model はドメインモデルを定義する。
package model

import "fmt"

// APIError は統一エラーフォーマットを表す。
// UIに表示する原因カテゴリと対処方法を含む。
type APIError struct {
	Code     string // エラーコード
	Message  string // エラーメッセージ
	Category string // カテゴリ: auth, validation, store, system
	Action   string // ユーザー向け対処方法
}

// Error はerrorインターフェースを実装する。
func (e *APIError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// 定義済みエラーコード
const (
	ErrCodeInvalidRequest      = "INVALID_REQUEST"
	ErrCodeForbidden           = "FORBIDDEN"
	ErrCodeTokenExchangeFailed = "TOKEN_EXCHANGE_FAILED"
	ErrCodeStoreUnavailable    = "STORE_UNAVAILABLE"
	ErrCodeProviderRejected    = "PROVIDER_REJECTED"
)

// NewInvalidRequestError はリクエストボディ不正エラーを生成する。
func NewInvalidRequestError() *APIError {
	return &APIError{
		Code:     ErrCodeInvalidRequest,
		Message:  "リクエストの形式が正しくありません。",
		Category: "validation",
		Action:   "email と password を含むJSONボディを送信してください。",
	}
}

// NewForbiddenError はベアラー検証失敗を表すエラーを生成する。
// 失敗理由（ヘッダー欠落・期限切れ・署名不正・検証通信エラー）は
// 意図的に区別せず、同一のレスポンスに畳み込む。
func NewForbiddenError() *APIError {
	return &APIError{
		Code:     ErrCodeForbidden,
		Message:  "このリソースへのアクセスは許可されていません。",
		Category: "auth",
		Action:   "ログインし直して有効なIDトークンを送信してください。",
	}
}

// NewTokenExchangeFailedError はカスタムトークン交換失敗エラーを生成する。
// プロバイダーの生レスポンスはログのみに残し、クライアントへは返さない。
func NewTokenExchangeFailedError() *APIError {
	return &APIError{
		Code:     ErrCodeTokenExchangeFailed,
		Message:  "IDトークンの発行に失敗しました。",
		Category: "system",
		Action:   "しばらく待ってから再度お試しください。",
	}
}

// NewStoreUnavailableError はイベントストア障害エラーを生成する。
// 認証失敗（403）とは明確に区別して500系で返す。
func NewStoreUnavailableError() *APIError {
	return &APIError{
		Code:     ErrCodeStoreUnavailable,
		Message:  "イベント情報の取得に失敗しました。",
		Category: "store",
		Action:   "しばらく待ってから再度お試しください。",
	}
}

// NewProviderRejectedError はユーザー作成時のプロバイダー拒否エラーを生成する。
// プロバイダーのメッセージ（EMAIL_EXISTS等）をそのままクライアントへ渡す。
func NewProviderRejectedError(providerMessage string) *APIError {
	return &APIError{
		Code:     ErrCodeProviderRejected,
		Message:  providerMessage,
		Category: "validation",
		Action:   "入力内容を確認して再度お試しください。",
	}
}
