// Package handler はHTTPハンドラーを提供する。
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/hitoshi/eventauth/internal/identity"
	"github.com/hitoshi/eventauth/internal/middleware"
	"github.com/hitoshi/eventauth/internal/model"
)

// AuthServiceInterface は認証ハンドラーが必要とするサービスインターフェース。
type AuthServiceInterface interface {
	Login(ctx context.Context, cred model.Credential) (*model.AuthResult, error)
	CreateUser(ctx context.Context, cred model.Credential) (*model.AuthResult, error)
}

// AuthHandler は認証関連のHTTPハンドラー。
type AuthHandler struct {
	service AuthServiceInterface
}

// NewAuthHandler はAuthHandlerを生成する。
func NewAuthHandler(service AuthServiceInterface) *AuthHandler {
	return &AuthHandler{service: service}
}

// Login は資格情報交換によるログインを処理する。
// POST /login
//
// 未登録メールは200のsuccess:false応答（正常系）。
// カスタムトークン交換の失敗のみ500を返す。
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	cred, ok := decodeCredential(w, r)
	if !ok {
		return
	}

	result, err := h.service.Login(r.Context(), cred)
	if err != nil {
		slog.Error("login failed", slog.String("error", err.Error()))
		if errors.Is(err, identity.ErrExchangeFailed) {
			middleware.WriteErrorResponse(w, http.StatusInternalServerError, model.NewTokenExchangeFailedError())
			return
		}
		middleware.WriteInternalServerError(w)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// CreateUser はプロバイダーへのユーザー作成を処理する。
// POST /create-user
//
// プロバイダーの拒否（メール重複等）は400で、プロバイダーの
// メッセージをそのまま返す。
func (h *AuthHandler) CreateUser(w http.ResponseWriter, r *http.Request) {
	cred, ok := decodeCredential(w, r)
	if !ok {
		return
	}

	result, err := h.service.CreateUser(r.Context(), cred)
	if err != nil {
		var provErr *identity.ProviderError
		if errors.As(err, &provErr) {
			slog.Warn("user creation rejected by provider",
				slog.String("provider_message", provErr.Message),
			)
			middleware.WriteErrorResponse(w, http.StatusBadRequest, model.NewProviderRejectedError(provErr.Message))
			return
		}
		slog.Error("user creation failed", slog.String("error", err.Error()))
		middleware.WriteInternalServerError(w)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// decodeCredential はリクエストボディからCredentialを読み取る。
// 失敗時は400を書き込んでfalseを返す。
func decodeCredential(w http.ResponseWriter, r *http.Request) (model.Credential, bool) {
	var cred model.Credential
	if err := json.NewDecoder(r.Body).Decode(&cred); err != nil {
		middleware.WriteErrorResponse(w, http.StatusBadRequest, model.NewInvalidRequestError())
		return model.Credential{}, false
	}
	if cred.Email == "" || cred.Password == "" {
		middleware.WriteErrorResponse(w, http.StatusBadRequest, model.NewInvalidRequestError())
		return model.Credential{}, false
	}
	return cred, true
}

// writeJSON はJSONレスポンスを書き込む。
func writeJSON(w http.ResponseWriter, statusCode int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(body)
}
