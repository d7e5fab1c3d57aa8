package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/hitoshi/eventauth/internal/model"
)

// LatencyRecorder はプロバイダー呼び出しレイテンシの記録インターフェース。
// metrics.Collectorの部分集合として定義する。nil許容。
type LatencyRecorder interface {
	RecordProviderLatency(operation string, duration time.Duration)
}

const defaultBaseURL = "https://identitytoolkit.googleapis.com"

// ErrExchangeFailed はカスタムトークン交換でIDトークンが得られなかったことを表す。
// ネットワーク障害・プロバイダー拒否・不正レスポンスをすべてこのエラーに正規化する。
var ErrExchangeFailed = errors.New("custom token exchange failed")

// ProviderError はプロバイダーがリクエストを拒否したことを表す。
// Messageにはプロバイダーのエラーメッセージ（EMAIL_EXISTS等）がそのまま入る。
type ProviderError struct {
	StatusCode int
	Message    string
}

// Error はerrorインターフェースを実装する。
func (e *ProviderError) Error() string {
	return fmt.Sprintf("provider rejected request (status %d): %s", e.StatusCode, e.Message)
}

// UserRecord はプロバイダーが保持するユーザーレコードを表す。
type UserRecord struct {
	UID   string
	Email string
}

// ClientConfig はIdentity Toolkit RESTクライアントの設定。
type ClientConfig struct {
	// APIKey はすべてのRESTエンドポイントに付与するAPIキー。
	APIKey string

	// BaseURL はテスト用にオーバーライド可能なエンドポイントベースURL。
	BaseURL string

	// HTTPClient は外向きリクエストに使うクライアント。
	// 未指定の場合はhttp.DefaultClientを使用する。
	// 本番ではsecurity.EgressGuardが生成する堅牢化クライアントを渡す。
	HTTPClient *http.Client

	// Latency はプロバイダー呼び出しレイテンシの記録先。nilでもよい。
	Latency LatencyRecorder
}

// Client はIdentity Toolkit REST APIのクライアント。
// ユーザー検索・作成・カスタムトークン交換・IDトークン検証を提供する。
type Client struct {
	config ClientConfig
}

// NewClient はClientを生成する。
func NewClient(config ClientConfig) *Client {
	if config.BaseURL == "" {
		config.BaseURL = defaultBaseURL
	}
	if config.HTTPClient == nil {
		config.HTTPClient = http.DefaultClient
	}
	return &Client{config: config}
}

// lookupResponse はaccounts:lookupエンドポイントのレスポンス。
type lookupResponse struct {
	Users []struct {
		LocalID       string `json:"localId"`
		Email         string `json:"email"`
		EmailVerified bool   `json:"emailVerified"`
		DisplayName   string `json:"displayName"`
		PhotoURL      string `json:"photoUrl"`
	} `json:"users"`
}

// signUpResponse はaccounts:signUpエンドポイントのレスポンス。
type signUpResponse struct {
	LocalID string `json:"localId"`
	Email   string `json:"email"`
}

// signInResponse はaccounts:signInWithCustomTokenエンドポイントのレスポンス。
type signInResponse struct {
	IDToken      string `json:"idToken"`
	RefreshToken string `json:"refreshToken"`
	ExpiresIn    string `json:"expiresIn"`
}

// providerErrorBody はプロバイダーのエラーレスポンスボディ。
type providerErrorBody struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// LookupByEmail はメールアドレスでユーザーレコードを検索する。
// 見つからない場合は(nil, nil)を返す。未登録は正常系であり、エラーにはしない。
func (c *Client) LookupByEmail(ctx context.Context, email string) (*UserRecord, error) {
	body, status, err := c.post(ctx, "accounts:lookup", map[string]any{
		"email": []string{email},
	})
	if err != nil {
		return nil, fmt.Errorf("account lookup request failed: %w", err)
	}
	if status != http.StatusOK {
		return nil, fmt.Errorf("account lookup failed with status %d", status)
	}

	var resp lookupResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse lookup response: %w", err)
	}
	if len(resp.Users) == 0 {
		return nil, nil
	}

	return &UserRecord{
		UID:   resp.Users[0].LocalID,
		Email: resp.Users[0].Email,
	}, nil
}

// SignUp はプロバイダーにユーザーレコードを作成する。
// プロバイダー拒否（メール重複・脆弱なパスワード等）は*ProviderErrorとして返す。
func (c *Client) SignUp(ctx context.Context, email, password string) (*UserRecord, error) {
	body, status, err := c.post(ctx, "accounts:signUp", map[string]any{
		"email":             email,
		"password":          password,
		"returnSecureToken": true,
	})
	if err != nil {
		return nil, fmt.Errorf("sign up request failed: %w", err)
	}
	if status != http.StatusOK {
		return nil, &ProviderError{
			StatusCode: status,
			Message:    parseProviderMessage(body),
		}
	}

	var resp signUpResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse sign up response: %w", err)
	}
	if resp.LocalID == "" {
		return nil, fmt.Errorf("empty localId in sign up response")
	}

	return &UserRecord{UID: resp.LocalID, Email: resp.Email}, nil
}

// SignInWithCustomToken はカスタムトークンをIDトークンに交換する。
// レスポンスにidTokenが含まれない場合はErrExchangeFailedを返す。
// プロバイダーの生レスポンスはログにのみ残し、呼び出し元へは渡さない。
func (c *Client) SignInWithCustomToken(ctx context.Context, customToken string) (string, error) {
	body, status, err := c.post(ctx, "accounts:signInWithCustomToken", map[string]any{
		"token":             customToken,
		"returnSecureToken": true,
	})
	if err != nil {
		slog.Error("custom token exchange request failed",
			slog.String("error", err.Error()),
		)
		return "", fmt.Errorf("%w: %v", ErrExchangeFailed, err)
	}

	var resp signInResponse
	if unmarshalErr := json.Unmarshal(body, &resp); unmarshalErr != nil || resp.IDToken == "" {
		slog.Error("custom token exchange returned no id token",
			slog.Int("status", status),
			slog.String("raw_response", string(body)),
		)
		return "", ErrExchangeFailed
	}

	return resp.IDToken, nil
}

// VerifyIDToken はIDトークンをプロバイダーの検証機能で検証し、クレームを返す。
// 検証が成立しない理由（期限切れ・署名不正・通信障害）は区別せずエラーを返す。
func (c *Client) VerifyIDToken(ctx context.Context, idToken string) (*model.Claims, error) {
	if idToken == "" {
		return nil, fmt.Errorf("id token is empty")
	}

	body, status, err := c.post(ctx, "accounts:lookup", map[string]any{
		"idToken": idToken,
	})
	if err != nil {
		return nil, fmt.Errorf("token verification request failed: %w", err)
	}
	if status != http.StatusOK {
		return nil, fmt.Errorf("token verification failed with status %d: %s", status, parseProviderMessage(body))
	}

	var resp lookupResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse verification response: %w", err)
	}
	if len(resp.Users) == 0 {
		return nil, fmt.Errorf("token verification returned no matching user")
	}

	u := resp.Users[0]
	return &model.Claims{
		UID:           u.LocalID,
		Email:         u.Email,
		EmailVerified: u.EmailVerified,
		Name:          u.DisplayName,
		Picture:       u.PhotoURL,
	}, nil
}

// post は指定アクションのRESTエンドポイントへJSONをPOSTし、
// レスポンスボディとステータスコードを返す。
// 各呼び出しはat-most-onceで、自動リトライは行わない。
func (c *Client) post(ctx context.Context, action string, payload map[string]any) ([]byte, int, error) {
	if c.config.Latency != nil {
		start := time.Now()
		defer func() {
			c.config.Latency.RecordProviderLatency(action, time.Since(start))
		}()
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to encode request payload: %w", err)
	}

	url := fmt.Sprintf("%s/v1/%s?key=%s", c.config.BaseURL, action, c.config.APIKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return nil, 0, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.config.HTTPClient.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to read response body: %w", err)
	}

	return body, resp.StatusCode, nil
}

// parseProviderMessage はエラーレスポンスからプロバイダーのメッセージを取り出す。
// パースできない場合は生ボディをそのまま返す。
func parseProviderMessage(body []byte) string {
	var eb providerErrorBody
	if err := json.Unmarshal(body, &eb); err == nil && eb.Error.Message != "" {
		return eb.Error.Message
	}
	return string(body)
}

// compile-time interface checks
var (
	_ UserLookup     = (*Client)(nil)
	_ UserCreator    = (*Client)(nil)
	_ TokenExchanger = (*Client)(nil)
	_ TokenVerifier  = (*Client)(nil)
)
