// Package model はドメインモデルを定義する。
package model

import "time"

// Event はイベントレコードを表す。
// eventsテーブルの1行に対応し、このシステムからは読み取り専用。
// NULL許容カラムはポインタ型でマッピングする。
type Event struct {
	ID          int64      `json:"id"`
	Title       string     `json:"title"`
	Description *string    `json:"description"`
	ImageURL    *string    `json:"image_url"`
	Capacity    int        `json:"capacity"`
	Price       *float64   `json:"price"`
	Date        *time.Time `json:"date"`
	CreatedBy   *int64     `json:"created_by"`
}
