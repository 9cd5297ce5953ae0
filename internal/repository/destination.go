package repository

import (
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
	"github.com/tripdiary/tripadmin/internal/apperror"
	"github.com/tripdiary/tripadmin/internal/model"
	"github.com/tripdiary/tripadmin/internal/rowmap"
)

var (
	ErrDestinationNotFound = apperror.NotFound("tourist destination not found")
)

type DestinationRepository interface {
	Create(destination *model.Destination) error
	Destinations() ([]*model.Destination, error)
	ByID(id int64) (*model.Destination, error)
	// Images returns the decoded image column of one row
	Images(id int64) (model.ImageList, error)
	Update(destination *model.Destination) error
	// Delete removes the row and returns it as it was, keyed in camelCase
	Delete(id int64) (map[string]any, error)
}

type destinationRepository struct {
	db *sqlx.DB
}

func NewDestinationRepository(db *sqlx.DB) DestinationRepository {
	return &destinationRepository{db: db}
}

func (r *destinationRepository) Create(destination *model.Destination) error {
	query := `INSERT INTO travel_destination (name_en, name_ko, introduction, latitude, longitude, image, created_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id`

	err := r.db.QueryRow(query,
		destination.NameEn,
		destination.NameKo,
		destination.Introduction,
		destination.Latitude,
		destination.Longitude,
		destination.Images,
		destination.CreatedAt,
	).Scan(&destination.ID)

	return storeErr("failed to create tourist destination", err)
}

func (r *destinationRepository) Destinations() ([]*model.Destination, error) {
	destinations := []*model.Destination{}
	query := `SELECT * FROM travel_destination ORDER BY id ASC`

	err := r.db.Select(&destinations, query)
	if err != nil {
		return nil, storeErr("failed to load tourist destinations", err)
	}

	return destinations, nil
}

func (r *destinationRepository) ByID(id int64) (*model.Destination, error) {
	destination := &model.Destination{}
	query := `SELECT * FROM travel_destination WHERE id = $1`

	err := r.db.Get(destination, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrDestinationNotFound
	}
	if err != nil {
		return nil, storeErr("failed to load tourist destination", err)
	}

	return destination, nil
}

func (r *destinationRepository) Images(id int64) (model.ImageList, error) {
	var images model.ImageList
	query := `SELECT image FROM travel_destination WHERE id = $1`

	err := r.db.QueryRow(query, id).Scan(&images)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrDestinationNotFound
	}
	if err != nil {
		return nil, storeErr("failed to load tourist destination images", err)
	}

	return images, nil
}

func (r *destinationRepository) Update(destination *model.Destination) error {
	query := `UPDATE travel_destination
	          SET name_en = $1, name_ko = $2, introduction = $3, latitude = $4, longitude = $5, image = $6
	          WHERE id = $7`

	result, err := r.db.Exec(query,
		destination.NameEn,
		destination.NameKo,
		destination.Introduction,
		destination.Latitude,
		destination.Longitude,
		destination.Images,
		destination.ID,
	)
	if err != nil {
		return storeErr("failed to update tourist destination", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return storeErr("failed to update tourist destination", err)
	}

	if rows == 0 {
		return ErrDestinationNotFound
	}

	return nil
}

func (r *destinationRepository) Delete(id int64) (map[string]any, error) {
	var deleted map[string]any

	err := inTx(r.db, func(tx *sqlx.Tx) error {
		rows, err := tx.Queryx(`SELECT * FROM travel_destination WHERE id = $1`, id)
		if err != nil {
			return err
		}

		// Scan closes rows, freeing the connection for the delete
		records, err := rowmap.Scan(rows)
		if err != nil {
			return err
		}
		if len(records) == 0 {
			return ErrDestinationNotFound
		}
		deleted = records[0]

		_, err = tx.Exec(`DELETE FROM travel_destination WHERE id = $1`, id)
		return err
	})
	if err != nil {
		return nil, storeErr("failed to delete tourist destination", err)
	}

	return deleted, nil
}
