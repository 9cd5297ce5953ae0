package repository

import (
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/tripdiary/tripadmin/internal/apperror"
	"github.com/tripdiary/tripadmin/internal/model"
)

var (
	ErrDiaryNotFound = apperror.NotFound("diary not found")
)

type DiaryRepository interface {
	Create(diary *model.Diary) error
	ByID(id int64) (*model.Diary, error)
	Diaries() ([]*model.Diary, error)
	DiariesByAuthor(username string) ([]*model.Diary, error)
	// DiariesByPlanOwner resolves ownership through travel_plan, not the diary row
	DiariesByPlanOwner(username string) ([]*model.Diary, error)
	Update(id int64, diary *model.Diary) error
	Delete(id int64) error
}

type diaryRepository struct {
	db *sqlx.DB
}

func NewDiaryRepository(db *sqlx.DB) DiaryRepository {
	return &diaryRepository{db: db}
}

func (r *diaryRepository) Create(diary *model.Diary) error {
	query := `INSERT INTO travel_diary (plan_id, username, title, content, destination, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id`

	err := r.db.QueryRow(query,
		diary.PlanID,
		diary.Username,
		diary.Title,
		diary.Content,
		diary.Destination,
		diary.CreatedAt,
		diary.UpdatedAt,
	).Scan(&diary.ID)

	return storeErr("failed to create diary", err)
}

func (r *diaryRepository) ByID(id int64) (*model.Diary, error) {
	diary := &model.Diary{}
	query := `SELECT * FROM travel_diary WHERE id = $1`

	err := r.db.Get(diary, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrDiaryNotFound
	}
	if err != nil {
		return nil, storeErr("failed to load diary", err)
	}

	return diary, nil
}

func (r *diaryRepository) Diaries() ([]*model.Diary, error) {
	diaries := []*model.Diary{}
	query := `SELECT * FROM travel_diary ORDER BY created_at DESC, id DESC`

	err := r.db.Select(&diaries, query)
	if err != nil {
		return nil, storeErr("failed to load diaries", err)
	}

	return diaries, nil
}

func (r *diaryRepository) DiariesByAuthor(username string) ([]*model.Diary, error) {
	diaries := []*model.Diary{}
	query := `SELECT * FROM travel_diary WHERE username = $1 ORDER BY created_at DESC, id DESC`

	err := r.db.Select(&diaries, query, username)
	if err != nil {
		return nil, storeErr("failed to load diaries", err)
	}

	return diaries, nil
}

func (r *diaryRepository) DiariesByPlanOwner(username string) ([]*model.Diary, error) {
	diaries := []*model.Diary{}
	query := `SELECT td.*
	          FROM travel_diary td
	          JOIN travel_plan p ON td.plan_id = p.plan_id
	          WHERE p.username = $1
	          ORDER BY td.created_at DESC, td.id DESC`

	err := r.db.Select(&diaries, query, username)
	if err != nil {
		return nil, storeErr("failed to load diaries", err)
	}

	return diaries, nil
}

// Update overwrites the editable content of diary id; plan, author and destination are kept
func (r *diaryRepository) Update(id int64, diary *model.Diary) error {
	query := `UPDATE travel_diary SET title = $1, content = $2, updated_at = $3 WHERE id = $4`

	result, err := r.db.Exec(query, diary.Title, diary.Content, time.Now(), id)
	if err != nil {
		return storeErr("failed to update diary", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return storeErr("failed to update diary", err)
	}

	if rows == 0 {
		return ErrDiaryNotFound
	}

	return nil
}

func (r *diaryRepository) Delete(id int64) error {
	query := `DELETE FROM travel_diary WHERE id = $1`

	result, err := r.db.Exec(query, id)
	if err != nil {
		return storeErr("failed to delete diary", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return storeErr("failed to delete diary", err)
	}

	if rows == 0 {
		return ErrDiaryNotFound
	}

	return nil
}
