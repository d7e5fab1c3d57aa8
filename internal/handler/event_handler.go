package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/hitoshi/eventauth/internal/middleware"
	"github.com/hitoshi/eventauth/internal/model"
)

// EventServiceInterface はイベントハンドラーが必要とするサービスインターフェース。
type EventServiceInterface interface {
	List(ctx context.Context) ([]model.Event, error)
}

// EventHandler はイベント一覧のHTTPハンドラー。
type EventHandler struct {
	service EventServiceInterface
}

// NewEventHandler はEventHandlerを生成する。
func NewEventHandler(service EventServiceInterface) *EventHandler {
	return &EventHandler{service: service}
}

// ListEvents は全イベントを返す。
// GET /events/
//
// ベアラー検証はミドルウェアで完了している。
// ストア障害は500で返し、403とは混同しない。
func (h *EventHandler) ListEvents(w http.ResponseWriter, r *http.Request) {
	events, err := h.service.List(r.Context())
	if err != nil {
		slog.Error("failed to list events", slog.String("error", err.Error()))
		middleware.WriteErrorResponse(w, http.StatusInternalServerError, model.NewStoreUnavailableError())
		return
	}

	writeJSON(w, http.StatusOK, events)
}
