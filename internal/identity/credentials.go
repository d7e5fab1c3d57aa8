package identity

import (
	"crypto/rsa"
	"encoding/json"
	"fmt"
	"os"

	"github.com/golang-jwt/jwt/v5"
)

// ServiceAccount はIDプロバイダーのサービスアカウント資格情報を表す。
// プロセス起動時に1回ロードし、以降は読み取り専用で扱う。
type ServiceAccount struct {
	ProjectID   string `json:"project_id"`
	ClientEmail string `json:"client_email"`
	PrivateKey  string `json:"private_key"`

	privateKey *rsa.PrivateKey
}

// LoadServiceAccount は指定パスのサービスアカウントJSONを読み込み、
// 秘密鍵をパースして返す。
func LoadServiceAccount(path string) (*ServiceAccount, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read service account file: %w", err)
	}
	return ParseServiceAccount(data)
}

// ParseServiceAccount はサービスアカウントJSONをパースする。
// client_emailまたはprivate_keyが欠けている場合はエラーを返す。
func ParseServiceAccount(data []byte) (*ServiceAccount, error) {
	sa := &ServiceAccount{}
	if err := json.Unmarshal(data, sa); err != nil {
		return nil, fmt.Errorf("failed to parse service account JSON: %w", err)
	}

	if sa.ClientEmail == "" {
		return nil, fmt.Errorf("service account JSON is missing client_email")
	}
	if sa.PrivateKey == "" {
		return nil, fmt.Errorf("service account JSON is missing private_key")
	}

	key, err := jwt.ParseRSAPrivateKeyFromPEM([]byte(sa.PrivateKey))
	if err != nil {
		return nil, fmt.Errorf("failed to parse service account private key: %w", err)
	}
	sa.privateKey = key

	return sa, nil
}

// Key はパース済みのRSA秘密鍵を返す。
func (sa *ServiceAccount) Key() *rsa.PrivateKey {
	return sa.privateKey
}
