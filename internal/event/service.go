// Package event はイベント一覧の読み取りサービスを提供する。
package event

import (
	"context"
	"fmt"

	"github.com/hitoshi/eventauth/internal/model"
	"github.com/hitoshi/eventauth/internal/repository"
	"github.com/hitoshi/eventauth/internal/security"
)

// Service はイベント一覧のビジネスロジックを提供する。
// イベントレコードはこのシステムの外で書き込まれるため、
// 説明文はAPI応答として返す前にサニタイズする。
type Service struct {
	repo      repository.EventRepository
	sanitizer security.ContentSanitizerService
}

// NewService はServiceを生成する。
func NewService(repo repository.EventRepository, sanitizer security.ContentSanitizerService) *Service {
	return &Service{
		repo:      repo,
		sanitizer: sanitizer,
	}
}

// List は全イベントを取得して返す。
// ストア障害は認証エラーと混同しないよう、そのままエラーとして伝播する。
func (s *Service) List(ctx context.Context) ([]model.Event, error) {
	events, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch events: %w", err)
	}

	for i := range events {
		if events[i].Description != nil {
			cleaned := s.sanitizer.Sanitize(*events[i].Description)
			events[i].Description = &cleaned
		}
	}

	return events, nil
}
