package repository

import (
	"testing"
	"time"

	"github.com/hitoshi/eventauth/internal/model"
)

// PostgresEventRepoはEventRepositoryインターフェースを満たすことを検証
func TestPostgresEventRepo_ImplementsInterface(t *testing.T) {
	var _ EventRepository = (*PostgresEventRepo)(nil)
}

// NewPostgresEventRepoが正しく初期化されることを検証
func TestNewPostgresEventRepo_Initializes(t *testing.T) {
	repo := NewPostgresEventRepo(nil)
	if repo == nil {
		t.Fatal("expected non-nil repo")
	}
}

// Eventモデルのフィールドが正しく構築されることを検証
func TestPostgresEventRepo_EventModel_Fields(t *testing.T) {
	desc := "年に一度の夏祭り"
	imageURL := "https://example.com/festival.png"
	price := 1500.0
	date := time.Date(2025, 8, 15, 18, 0, 0, 0, time.UTC)
	createdBy := int64(42)

	event := model.Event{
		ID:          1,
		Title:       "Summer Festival",
		Description: &desc,
		ImageURL:    &imageURL,
		Capacity:    300,
		Price:       &price,
		Date:        &date,
		CreatedBy:   &createdBy,
	}

	if event.ID != 1 {
		t.Errorf("event.ID = %d, want 1", event.ID)
	}
	if event.Title != "Summer Festival" {
		t.Errorf("event.Title = %q, want %q", event.Title, "Summer Festival")
	}
	if event.Description == nil || *event.Description != desc {
		t.Errorf("event.Description = %v, want %q", event.Description, desc)
	}
	if event.Capacity != 300 {
		t.Errorf("event.Capacity = %d, want 300", event.Capacity)
	}
	if event.Price == nil || *event.Price != 1500.0 {
		t.Errorf("event.Price = %v, want 1500.0", event.Price)
	}
	if event.Date == nil || !event.Date.Equal(date) {
		t.Errorf("event.Date = %v, want %v", event.Date, date)
	}
}

// Eventのnull許容カラムに対応するフィールドがnil許容であることを検証
func TestPostgresEventRepo_EventModel_NilFields(t *testing.T) {
	event := model.Event{
		ID:       2,
		Title:    "Minimal Event",
		Capacity: 10,
	}

	if event.Description != nil {
		t.Error("description should be nil by default")
	}
	if event.ImageURL != nil {
		t.Error("image_url should be nil by default")
	}
	if event.Price != nil {
		t.Error("price should be nil by default")
	}
	if event.Date != nil {
		t.Error("date should be nil by default")
	}
	if event.CreatedBy != nil {
		t.Error("created_by should be nil by default")
	}
}
