package repository

import (
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/tripdiary/tripadmin/internal/apperror"
	"github.com/tripdiary/tripadmin/internal/model"
	"github.com/tripdiary/tripadmin/internal/rowmap"
)

var (
	ErrCommentNotFound = apperror.NotFound("comment not found")
)

type CommentRepository interface {
	Create(comment *model.Comment) error
	ByID(id int64) (*model.Comment, error)
	Comments() ([]*model.Comment, error)
	// CommentsByDiary returns one page, oldest first
	CommentsByDiary(diaryID int64, limit, offset int) ([]*model.Comment, error)
	CommentsByUsernameAndDiary(username string, diaryID int64) ([]*model.Comment, error)
	// CommentsByUsername returns a projection without the author column, keyed in camelCase
	CommentsByUsername(username string) ([]map[string]any, error)
	Update(id int64, comment *model.Comment) error
	Delete(id int64) error
}

type commentRepository struct {
	db *sqlx.DB
}

func NewCommentRepository(db *sqlx.DB) CommentRepository {
	return &commentRepository{db: db}
}

func (r *commentRepository) Create(comment *model.Comment) error {
	query := `INSERT INTO comment (diary_id, username, comment, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5) RETURNING id`

	err := r.db.QueryRow(query,
		comment.DiaryID,
		comment.Username,
		comment.Comment,
		comment.CreatedAt,
		comment.UpdatedAt,
	).Scan(&comment.ID)

	return storeErr("failed to create comment", err)
}

func (r *commentRepository) ByID(id int64) (*model.Comment, error) {
	comment := &model.Comment{}
	query := `SELECT * FROM comment WHERE id = $1`

	err := r.db.Get(comment, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrCommentNotFound
	}
	if err != nil {
		return nil, storeErr("failed to load comment", err)
	}

	return comment, nil
}

func (r *commentRepository) Comments() ([]*model.Comment, error) {
	comments := []*model.Comment{}
	query := `SELECT * FROM comment ORDER BY created_at DESC, id DESC`

	err := r.db.Select(&comments, query)
	if err != nil {
		return nil, storeErr("failed to load comments", err)
	}

	return comments, nil
}

func (r *commentRepository) CommentsByDiary(diaryID int64, limit, offset int) ([]*model.Comment, error) {
	comments := []*model.Comment{}
	query := `SELECT * FROM comment WHERE diary_id = $1 ORDER BY created_at ASC, id ASC LIMIT $2 OFFSET $3`

	err := r.db.Select(&comments, query, diaryID, limit, offset)
	if err != nil {
		return nil, storeErr("failed to load comments", err)
	}

	return comments, nil
}

func (r *commentRepository) CommentsByUsernameAndDiary(username string, diaryID int64) ([]*model.Comment, error) {
	comments := []*model.Comment{}
	query := `SELECT * FROM comment WHERE diary_id = $1 AND username = $2 ORDER BY created_at ASC, id ASC`

	err := r.db.Select(&comments, query, diaryID, username)
	if err != nil {
		return nil, storeErr("failed to load comments", err)
	}

	return comments, nil
}

func (r *commentRepository) CommentsByUsername(username string) ([]map[string]any, error) {
	query := `SELECT comment.id, comment.diary_id, comment.comment, comment.created_at, comment.updated_at
	          FROM comment
	          WHERE comment.username = $1
	          ORDER BY comment.created_at DESC, comment.id DESC`

	rows, err := r.db.Queryx(query, username)
	if err != nil {
		return nil, storeErr("failed to load comments", err)
	}

	records, err := rowmap.Scan(rows)
	if err != nil {
		return nil, storeErr("failed to load comments", err)
	}

	return records, nil
}

func (r *commentRepository) Update(id int64, comment *model.Comment) error {
	query := `UPDATE comment SET comment = $1, updated_at = $2 WHERE id = $3`

	result, err := r.db.Exec(query, comment.Comment, time.Now(), id)
	if err != nil {
		return storeErr("failed to update comment", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return storeErr("failed to update comment", err)
	}

	if rows == 0 {
		return ErrCommentNotFound
	}

	return nil
}

func (r *commentRepository) Delete(id int64) error {
	query := `DELETE FROM comment WHERE id = $1`

	result, err := r.db.Exec(query, id)
	if err != nil {
		return storeErr("failed to delete comment", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return storeErr("failed to delete comment", err)
	}

	if rows == 0 {
		return ErrCommentNotFound
	}

	return nil
}
