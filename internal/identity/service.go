// Package identity は外部IDプロバイダーとの資格情報交換を提供する。
//
// ログインは3種類の資格情報を連鎖させる:
// パスワード資格情報 → プロバイダー署名のカスタムトークン → 検証可能なIDトークン。
// カスタムトークンは交換専用であり、ベアラー資格情報として受理されるのは
// IDトークンのみ。
package identity

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/hitoshi/eventauth/internal/model"
)

// loginNotFoundMessage は未登録メールでのログイン応答に入れる固定メッセージ。
const loginNotFoundMessage = "No user found or wrong credentials"

// UserLookup はメールアドレスによるユーザー検索の能力を表す。
// 見つからない場合は(nil, nil)を返す契約で、例外的制御フローは使わない。
type UserLookup interface {
	LookupByEmail(ctx context.Context, email string) (*UserRecord, error)
}

// UserCreator はプロバイダーへのユーザー作成の能力を表す。
type UserCreator interface {
	SignUp(ctx context.Context, email, password string) (*UserRecord, error)
}

// TokenExchanger はカスタムトークンをIDトークンへ交換する能力を表す。
type TokenExchanger interface {
	SignInWithCustomToken(ctx context.Context, customToken string) (string, error)
}

// TokenVerifier はIDトークンを検証しクレームを返す能力を表す。
type TokenVerifier interface {
	VerifyIDToken(ctx context.Context, idToken string) (*model.Claims, error)
}

// TokenMinter はuidに紐づくカスタムトークンを発行する能力を表す。
type TokenMinter interface {
	Mint(uid string) (string, error)
}

// MetricsRecorder はサービス層が記録するメトリクスのインターフェース。
// metrics.Collectorの部分集合として定義する。
type MetricsRecorder interface {
	RecordLoginSuccess()
	RecordLoginNotFound()
	RecordExchangeFailure()
	RecordUserCreated()
}

// Service は資格情報交換のオーケストレーションを提供する。
type Service struct {
	lookup    UserLookup
	creator   UserCreator
	minter    TokenMinter
	exchanger TokenExchanger
	metrics   MetricsRecorder // nil許容
}

// NewService はServiceを生成する。metricsはnilでもよい。
func NewService(lookup UserLookup, creator UserCreator, minter TokenMinter, exchanger TokenExchanger, metrics MetricsRecorder) *Service {
	return &Service{
		lookup:    lookup,
		creator:   creator,
		minter:    minter,
		exchanger: exchanger,
		metrics:   metrics,
	}
}

// Login は資格情報からIDトークンを発行する。
//
// 1. メールアドレスでユーザーを解決する。未登録は正常系として
//    success:falseの結果を返し、交換リクエストは発行しない。
// 2. 解決したuidに対するカスタムトークンを発行する。
// 3. カスタムトークンをプロバイダーのsign-inエンドポイントでIDトークンへ
//    交換する。交換失敗はErrExchangeFailedを含むエラーとして返す。
//
// トークンは呼び出しごとに新規発行され、キャッシュしない。
//
// TODO: passwordは現状メール解決にしか使われず照合されない。
// プロバイダーのaccounts:signInWithPasswordによるパスワード検証付き
// サインインへの置き換えを検討する。
func (s *Service) Login(ctx context.Context, cred model.Credential) (*model.AuthResult, error) {
	user, err := s.lookup.LookupByEmail(ctx, cred.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}
	if user == nil {
		slog.Info("login attempt for unknown email")
		if s.metrics != nil {
			s.metrics.RecordLoginNotFound()
		}
		return &model.AuthResult{
			Success: false,
			Message: loginNotFoundMessage,
		}, nil
	}

	customToken, err := s.minter.Mint(user.UID)
	if err != nil {
		return nil, fmt.Errorf("failed to mint custom token: %w", err)
	}

	idToken, err := s.exchanger.SignInWithCustomToken(ctx, customToken)
	if err != nil {
		if s.metrics != nil && errors.Is(err, ErrExchangeFailed) {
			s.metrics.RecordExchangeFailure()
		}
		return nil, fmt.Errorf("failed to exchange custom token: %w", err)
	}

	slog.Info("user logged in", slog.String("uid", user.UID))
	if s.metrics != nil {
		s.metrics.RecordLoginSuccess()
	}

	return &model.AuthResult{
		Success: true,
		UID:     user.UID,
		IDToken: idToken,
	}, nil
}

// CreateUser はプロバイダーにユーザーレコードを作成する。
// ローカルでのバリデーションは行わず、プロバイダーの拒否は
// *ProviderErrorのままで呼び出し元へ返す。
func (s *Service) CreateUser(ctx context.Context, cred model.Credential) (*model.AuthResult, error) {
	user, err := s.creator.SignUp(ctx, cred.Email, cred.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	slog.Info("user created", slog.String("uid", user.UID))
	if s.metrics != nil {
		s.metrics.RecordUserCreated()
	}

	return &model.AuthResult{
		Success: true,
		UID:     user.UID,
	}, nil
}
