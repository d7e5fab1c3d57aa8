// Package model はドメインモデルを定義する。
package model

// Credential はログイン・ユーザー作成リクエストの資格情報を表す。
// リクエストスコープでのみ使用し、永続化しない。
type Credential struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResult は認証系エンドポイントの応答を表す。
// 成功時はUIDとIDToken、失敗時はMessageのどちらか一方のみが入る。
type AuthResult struct {
	Success bool   `json:"success"`
	UID     string `json:"uid,omitempty"`
	IDToken string `json:"id_token,omitempty"`
	Message string `json:"message,omitempty"`
}

// Claims はIDトークン検証で得られるプロバイダー定義のクレームを表す。
type Claims struct {
	UID           string `json:"uid"`
	Email         string `json:"email"`
	EmailVerified bool   `json:"email_verified"`
	Name          string `json:"name,omitempty"`
	Picture       string `json:"picture,omitempty"`
}
