package repository

import (
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
	"github.com/tripdiary/tripadmin/internal/apperror"
	"github.com/tripdiary/tripadmin/internal/model"
)

var (
	ErrPlanNotFound = apperror.NotFound("travel plan not found")
)

type PlanRepository interface {
	Create(plan *model.TravelPlan) error
	ByID(planID int64) (*model.TravelPlan, error)
	// ByIDAndOwner only finds plans owned by username
	ByIDAndOwner(planID int64, username string) (*model.TravelPlan, error)
	PlansByUsername(username string) ([]*model.TravelPlan, error)
	Update(plan *model.TravelPlan) error
	CreateLocation(location *model.TravelLocation) error
	Locations(planID int64) ([]*model.TravelLocation, error)
}

type planRepository struct {
	db *sqlx.DB
}

func NewPlanRepository(db *sqlx.DB) PlanRepository {
	return &planRepository{db: db}
}

func (r *planRepository) Create(plan *model.TravelPlan) error {
	query := `INSERT INTO travel_plan (username, start_date, end_date, destination, created_at)
	          VALUES ($1, $2, $3, $4, $5) RETURNING plan_id`

	err := r.db.QueryRow(query,
		plan.Username,
		plan.StartDate,
		plan.EndDate,
		plan.Destination,
		plan.CreatedAt,
	).Scan(&plan.PlanID)

	return storeErr("failed to create travel plan", err)
}

func (r *planRepository) ByID(planID int64) (*model.TravelPlan, error) {
	plan := &model.TravelPlan{}
	query := `SELECT * FROM travel_plan WHERE plan_id = $1`

	err := r.db.Get(plan, query, planID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrPlanNotFound
	}
	if err != nil {
		return nil, storeErr("failed to load travel plan", err)
	}

	return plan, nil
}

func (r *planRepository) ByIDAndOwner(planID int64, username string) (*model.TravelPlan, error) {
	plan := &model.TravelPlan{}
	query := `SELECT * FROM travel_plan WHERE plan_id = $1 AND username = $2`

	err := r.db.Get(plan, query, planID, username)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrPlanNotFound
	}
	if err != nil {
		return nil, storeErr("failed to load travel plan", err)
	}

	return plan, nil
}

func (r *planRepository) PlansByUsername(username string) ([]*model.TravelPlan, error) {
	plans := []*model.TravelPlan{}
	query := `SELECT * FROM travel_plan WHERE username = $1 ORDER BY start_date ASC, plan_id ASC`

	err := r.db.Select(&plans, query, username)
	if err != nil {
		return nil, storeErr("failed to load travel plans", err)
	}

	return plans, nil
}

func (r *planRepository) Update(plan *model.TravelPlan) error {
	query := `UPDATE travel_plan
	          SET start_date = $1, end_date = $2, destination = $3
	          WHERE plan_id = $4 AND username = $5`

	result, err := r.db.Exec(query,
		plan.StartDate,
		plan.EndDate,
		plan.Destination,
		plan.PlanID,
		plan.Username,
	)
	if err != nil {
		return storeErr("failed to update travel plan", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return storeErr("failed to update travel plan", err)
	}

	if rows == 0 {
		return ErrPlanNotFound
	}

	return nil
}

func (r *planRepository) CreateLocation(location *model.TravelLocation) error {
	query := `INSERT INTO travel_location (plan_id, date, location)
	          VALUES ($1, $2, $3) RETURNING location_id`

	err := r.db.QueryRow(query, location.PlanID, location.Date, location.Location).Scan(&location.LocationID)

	return storeErr("failed to create travel location", err)
}

func (r *planRepository) Locations(planID int64) ([]*model.TravelLocation, error) {
	locations := []*model.TravelLocation{}
	query := `SELECT * FROM travel_location WHERE plan_id = $1 ORDER BY date ASC, location_id ASC`

	err := r.db.Select(&locations, query, planID)
	if err != nil {
		return nil, storeErr("failed to load travel locations", err)
	}

	return locations, nil
}
