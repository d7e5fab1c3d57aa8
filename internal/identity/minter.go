package identity

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// customTokenAudience はカスタムトークンのaudクレームに設定する固定値。
// プロバイダーのAdmin SDK仕様で定められている。
const customTokenAudience = "https://identitytoolkit.googleapis.com/google.identity.identitytoolkit.v1.IdentityToolkit"

// customTokenLifetime はカスタムトークンの有効期間。
// 交換専用の短命トークンのため1時間で固定する。
const customTokenLifetime = time.Hour

// CustomTokenMinter はサービスアカウント署名のカスタムトークンを発行する。
// カスタムトークンは交換専用で、APIのベアラー資格情報としては使えない。
type CustomTokenMinter struct {
	sa  *ServiceAccount
	now func() time.Time
}

// NewCustomTokenMinter はCustomTokenMinterを生成する。
func NewCustomTokenMinter(sa *ServiceAccount) *CustomTokenMinter {
	return &CustomTokenMinter{
		sa:  sa,
		now: time.Now,
	}
}

// Mint は指定uidに紐づくカスタムトークン（RS256署名JWT）を発行する。
// 呼び出しごとに新しいトークンを発行し、キャッシュや再利用は行わない。
func (m *CustomTokenMinter) Mint(uid string) (string, error) {
	if uid == "" {
		return "", fmt.Errorf("uid is required to mint a custom token")
	}

	issuedAt := m.now()
	token := jwt.NewWithClaims(jwt.SigningMethodRS256, jwt.MapClaims{
		"iss": m.sa.ClientEmail,
		"sub": m.sa.ClientEmail,
		"aud": customTokenAudience,
		"uid": uid,
		"iat": issuedAt.Unix(),
		"exp": issuedAt.Add(customTokenLifetime).Unix(),
	})

	signed, err := token.SignedString(m.sa.Key())
	if err != nil {
		return "", fmt.Errorf("failed to sign custom token: %w", err)
	}

	return signed, nil
}

// compile-time interface check
var _ TokenMinter = (*CustomTokenMinter)(nil)
