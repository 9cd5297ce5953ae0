package model

import (
	"time"
)

type Diary struct {
	ID       int64  `db:"id" json:"id"`
	PlanID   *int64 `db:"plan_id" json:"planId"` // Nullable: plan may have been detached
	Username string `db:"username" json:"username"`
	Title    string `db:"title" json:"title"`
	Content  string `db:"content" json:"content"`
	// Destination is copied from the plan when the diary is created and never re-synced
	Destination string    `db:"destination" json:"destination"`
	CreatedAt   time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt   time.Time `db:"updated_at" json:"updatedAt"`
}

type Comment struct {
	ID        int64     `db:"id" json:"id"`
	DiaryID   int64     `db:"diary_id" json:"diaryId"`
	Username  string    `db:"username" json:"username"` // Author
	Comment   string    `db:"comment" json:"comment"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}
