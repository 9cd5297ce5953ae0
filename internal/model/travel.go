package model

import (
	"time"
)

type TravelPlan struct {
	PlanID      int64     `db:"plan_id" json:"planId"`
	Username    string    `db:"username" json:"username"` // Owner
	StartDate   time.Time `db:"start_date" json:"startDate"`
	EndDate     time.Time `db:"end_date" json:"endDate"`
	Destination string    `db:"destination" json:"destination"`
	CreatedAt   time.Time `db:"created_at" json:"createdAt"`
}

type TravelLocation struct {
	LocationID int64     `db:"location_id" json:"locationId"`
	PlanID     int64     `db:"plan_id" json:"planId"`
	Date       time.Time `db:"date" json:"date"`
	Location   string    `db:"location" json:"location"`
}
