// Package repository はデータ永続化のインターフェースを定義する。
package repository

import (
	"context"

	"github.com/hitoshi/eventauth/internal/model"
)

// EventRepository はイベントデータの読み取りインターフェース。
// このシステムはイベントを読み取るのみで、作成・更新・削除は行わない。
type EventRepository interface {
	// FindAll は全イベントをID昇順で取得する。
	FindAll(ctx context.Context) ([]model.Event, error)
}
