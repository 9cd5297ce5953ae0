package repository

import (
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
	"github.com/tripdiary/tripadmin/internal/apperror"
	"github.com/tripdiary/tripadmin/internal/model"
)

var (
	ErrUserNotFound      = apperror.NotFound("user not found")
	ErrDuplicateUsername = apperror.Conflict("username already exists")
)

type UserRepository interface {
	Create(user *model.User) error
	Users() ([]*model.User, error)
	ByID(id int64) (*model.User, error)
	ByUsername(username string) (*model.User, error)
	// Update writes the admin-editable fields and returns the row as stored
	Update(user *model.User) (*model.User, error)
	Deactivate(id int64) error
}

type userRepository struct {
	db *sqlx.DB
}

func NewUserRepository(db *sqlx.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(user *model.User) error {
	query := `INSERT INTO "user" (username, name, email, role, activated, password_hash, created_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id`

	err := r.db.QueryRow(query,
		user.Username,
		user.Name,
		user.Email,
		user.Role,
		user.Activated,
		user.PasswordHash,
		user.CreatedAt,
	).Scan(&user.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateUsername
		}
		return storeErr("failed to create user", err)
	}

	return nil
}

func (r *userRepository) Users() ([]*model.User, error) {
	users := []*model.User{}
	query := `SELECT * FROM "user" ORDER BY id ASC`

	err := r.db.Select(&users, query)
	if err != nil {
		return nil, storeErr("failed to load users", err)
	}

	return users, nil
}

func (r *userRepository) ByID(id int64) (*model.User, error) {
	user := &model.User{}
	query := `SELECT * FROM "user" WHERE id = $1`

	err := r.db.Get(user, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, storeErr("failed to load user", err)
	}

	return user, nil
}

func (r *userRepository) ByUsername(username string) (*model.User, error) {
	user := &model.User{}
	query := `SELECT * FROM "user" WHERE username = $1`

	err := r.db.Get(user, query, username)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, storeErr("failed to load user", err)
	}

	return user, nil
}

func (r *userRepository) Update(user *model.User) (*model.User, error) {
	updated := &model.User{}

	err := inTx(r.db, func(tx *sqlx.Tx) error {
		query := `UPDATE "user" SET username = $1, name = $2, email = $3, role = $4 WHERE id = $5`

		result, err := tx.Exec(query, user.Username, user.Name, user.Email, user.Role, user.ID)
		if err != nil {
			if isUniqueViolation(err) {
				return ErrDuplicateUsername
			}
			return err
		}

		rows, err := result.RowsAffected()
		if err != nil {
			return err
		}
		if rows == 0 {
			return ErrUserNotFound
		}

		return tx.Get(updated, `SELECT * FROM "user" WHERE id = $1`, user.ID)
	})
	if err != nil {
		return nil, storeErr("failed to update user", err)
	}

	return updated, nil
}

// Deactivate is the user delete: the row stays, only the activated flag is cleared
func (r *userRepository) Deactivate(id int64) error {
	query := `UPDATE "user" SET activated = $1 WHERE id = $2`

	result, err := r.db.Exec(query, false, id)
	if err != nil {
		return storeErr("failed to deactivate user", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return storeErr("failed to deactivate user", err)
	}

	if rows == 0 {
		return ErrUserNotFound
	}

	return nil
}
