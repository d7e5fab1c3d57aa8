package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/hitoshi/eventauth/internal/model"
)

// PostgresEventRepo はPostgreSQLを使用したイベントリポジトリ。
type PostgresEventRepo struct {
	db *sql.DB
}

// NewPostgresEventRepo はPostgresEventRepoを生成する。
func NewPostgresEventRepo(db *sql.DB) *PostgresEventRepo {
	return &PostgresEventRepo{db: db}
}

// FindAll は全イベントをID昇順で取得する。
// NULL許容カラムはsql.Null*で受けてポインタへ変換する。
func (r *PostgresEventRepo) FindAll(ctx context.Context) ([]model.Event, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, title, description, image_url, capacity, price, date, created_by
		 FROM events
		 ORDER BY id`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query events: %w", err)
	}
	defer rows.Close()

	events := []model.Event{}
	for rows.Next() {
		var (
			e           model.Event
			description sql.NullString
			imageURL    sql.NullString
			price       sql.NullFloat64
			date        sql.NullTime
			createdBy   sql.NullInt64
		)
		if err := rows.Scan(&e.ID, &e.Title, &description, &imageURL, &e.Capacity, &price, &date, &createdBy); err != nil {
			return nil, fmt.Errorf("failed to scan event row: %w", err)
		}

		if description.Valid {
			e.Description = &description.String
		}
		if imageURL.Valid {
			e.ImageURL = &imageURL.String
		}
		if price.Valid {
			e.Price = &price.Float64
		}
		if date.Valid {
			t := date.Time
			e.Date = &t
		}
		if createdBy.Valid {
			e.CreatedBy = &createdBy.Int64
		}

		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate event rows: %w", err)
	}

	return events, nil
}

// compile-time interface check
var _ EventRepository = (*PostgresEventRepo)(nil)
