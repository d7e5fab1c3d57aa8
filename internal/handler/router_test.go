package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/hitoshi/eventauth/internal/model"
)

// --- モック定義 ---

type stubVerifier struct {
	verifyFn func(ctx context.Context, idToken string) (*model.Claims, error)
}

func (s *stubVerifier) VerifyIDToken(ctx context.Context, idToken string) (*model.Claims, error) {
	if s.verifyFn != nil {
		return s.verifyFn(ctx, idToken)
	}
	return nil, errors.New("invalid token")
}

type stubHealthChecker struct {
	pingErr error
}

func (s *stubHealthChecker) PingContext(ctx context.Context) error {
	return s.pingErr
}

// --- テスト ---

func newTestRouter(verifier *stubVerifier, eventService *mockEventService, authService *mockAuthService) http.Handler {
	return NewRouter(&RouterDeps{
		TokenVerifier:     verifier,
		CORSAllowedOrigin: "http://localhost:3000",
		HealthChecker:     &stubHealthChecker{},
		AuthService:       authService,
		EventService:      eventService,
	})
}

// 認証ヘッダーなしの/eventsは403で拒否され、ストア（イベント
// サービス）には一切到達しないことを検証する。
func TestRouter_EventsWithoutAuth_Returns403WithoutStoreAccess(t *testing.T) {
	eventService := &mockEventService{}
	router := newTestRouter(&stubVerifier{}, eventService, &mockAuthService{})

	req := httptest.NewRequest(http.MethodGet, "/events", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusForbidden)
	}
	if eventService.calls != 0 {
		t.Errorf("event service was called %d times, want 0", eventService.calls)
	}
}

// 無効なトークンも同一の403になることを検証する。
func TestRouter_EventsWithInvalidToken_Returns403(t *testing.T) {
	verifier := &stubVerifier{
		verifyFn: func(ctx context.Context, idToken string) (*model.Claims, error) {
			return nil, errors.New("INVALID_ID_TOKEN")
		},
	}
	eventService := &mockEventService{}
	router := newTestRouter(verifier, eventService, &mockAuthService{})

	req := httptest.NewRequest(http.MethodGet, "/events", nil)
	req.Header.Set("Authorization", "Bearer garbage")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusForbidden)
	}
	if eventService.calls != 0 {
		t.Errorf("event service was called %d times, want 0", eventService.calls)
	}
}

// 有効なトークンで/eventsと/events/の両パスが200を返すことを検証する。
func TestRouter_EventsWithValidToken_Returns200OnBothPaths(t *testing.T) {
	verifier := &stubVerifier{
		verifyFn: func(ctx context.Context, idToken string) (*model.Claims, error) {
			return &model.Claims{UID: "uid-123"}, nil
		},
	}
	eventService := &mockEventService{
		listFn: func(ctx context.Context) ([]model.Event, error) {
			return []model.Event{{ID: 1, Title: "Meetup", Capacity: 10}}, nil
		},
	}
	router := newTestRouter(verifier, eventService, &mockAuthService{})

	for _, path := range []string{"/events", "/events/"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		req.Header.Set("Authorization", "Bearer valid-token")
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Errorf("GET %s: status = %d, want %d", path, rec.Code, http.StatusOK)
		}
	}
}

// 認証済みリクエストのストア障害は500であり、403に偽装されない
// ことを検証する。
func TestRouter_AuthedStoreFailure_Returns500Not403(t *testing.T) {
	verifier := &stubVerifier{
		verifyFn: func(ctx context.Context, idToken string) (*model.Claims, error) {
			return &model.Claims{UID: "uid-123"}, nil
		},
	}
	eventService := &mockEventService{
		listFn: func(ctx context.Context) ([]model.Event, error) {
			return nil, errors.New("db down")
		},
	}
	router := newTestRouter(verifier, eventService, &mockAuthService{})

	req := httptest.NewRequest(http.MethodGet, "/events", nil)
	req.Header.Set("Authorization", "Bearer valid-token")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusInternalServerError)
	}
}

// /loginと/create-userは認証ヘッダーなしで到達できることを検証する。
func TestRouter_AuthEndpointsAreUnprotected(t *testing.T) {
	authService := &mockAuthService{
		loginFn: func(ctx context.Context, cred model.Credential) (*model.AuthResult, error) {
			return &model.AuthResult{Success: true, UID: "uid-123", IDToken: "tok"}, nil
		},
		createUserFn: func(ctx context.Context, cred model.Credential) (*model.AuthResult, error) {
			return &model.AuthResult{Success: true, UID: "new-uid"}, nil
		},
	}
	router := newTestRouter(&stubVerifier{}, &mockEventService{}, authService)

	for _, path := range []string{"/login", "/create-user"} {
		req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(`{"email":"user@example.com","password":"secret"}`))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Errorf("POST %s: status = %d, want %d", path, rec.Code, http.StatusOK)
		}
	}
}

// ヘルスチェックはDB疎通の結果を反映することを検証する。
func TestRouter_Healthz(t *testing.T) {
	t.Run("正常", func(t *testing.T) {
		router := NewRouter(&RouterDeps{
			TokenVerifier: &stubVerifier{},
			HealthChecker: &stubHealthChecker{},
			AuthService:   &mockAuthService{},
			EventService:  &mockEventService{},
		})

		req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Errorf("status = %d, want %d", rec.Code, http.StatusOK)
		}
	})

	t.Run("DB不通", func(t *testing.T) {
		router := NewRouter(&RouterDeps{
			TokenVerifier: &stubVerifier{},
			HealthChecker: &stubHealthChecker{pingErr: errors.New("connection refused")},
			AuthService:   &mockAuthService{},
			EventService:  &mockEventService{},
		})

		req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		if rec.Code != http.StatusServiceUnavailable {
			t.Errorf("status = %d, want %d", rec.Code, http.StatusServiceUnavailable)
		}
	})
}

// 認証済みリクエストのルーター経由のアクセスログに検証済みuidが
// 含まれることを検証する。ベアラー検証はロギングより内側にあるため、
// uidの報告経路が途切れると属性ごと欠落する。
func TestRouter_AuthedRequestLogsUID(t *testing.T) {
	var buf bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewJSONHandler(&buf, nil)))
	t.Cleanup(func() { slog.SetDefault(prev) })

	verifier := &stubVerifier{
		verifyFn: func(ctx context.Context, idToken string) (*model.Claims, error) {
			return &model.Claims{UID: "uid-123"}, nil
		},
	}
	router := newTestRouter(verifier, &mockEventService{}, &mockAuthService{})

	req := httptest.NewRequest(http.MethodGet, "/events", nil)
	req.Header.Set("Authorization", "Bearer valid-token")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}

	// 最後の行がhttp_requestのアクセスログ
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	var entry map[string]any
	if err := json.Unmarshal([]byte(lines[len(lines)-1]), &entry); err != nil {
		t.Fatalf("failed to decode log entry: %v", err)
	}
	if entry["msg"] != "http_request" {
		t.Fatalf("msg = %v, want http_request", entry["msg"])
	}
	if entry["uid"] != "uid-123" {
		t.Errorf("uid = %v, want uid-123", entry["uid"])
	}
}

// 全レスポンスにセキュリティヘッダーが付与されることを検証する。
func TestRouter_SetsSecurityHeaders(t *testing.T) {
	router := newTestRouter(&stubVerifier{}, &mockEventService{}, &mockAuthService{})

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if got := rec.Header().Get("X-Content-Type-Options"); got != "nosniff" {
		t.Errorf("X-Content-Type-Options = %q, want nosniff", got)
	}
	if got := rec.Header().Get("X-Frame-Options"); got != "DENY" {
		t.Errorf("X-Frame-Options = %q, want DENY", got)
	}
}

// OPTIONSプリフライトがCORSミドルウェアで処理されることを検証する。
func TestRouter_Preflight(t *testing.T) {
	router := newTestRouter(&stubVerifier{}, &mockEventService{}, &mockAuthService{})

	req := httptest.NewRequest(http.MethodOptions, "/login", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusNoContent)
	}
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:3000" {
		t.Errorf("Allow-Origin = %q, want http://localhost:3000", got)
	}
}
