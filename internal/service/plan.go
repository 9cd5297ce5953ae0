package service

import (
	"errors"
	"strings"
	"time"

	"github.com/tripdiary/tripadmin/internal/apperror"
	"github.com/tripdiary/tripadmin/internal/model"
	"github.com/tripdiary/tripadmin/internal/repository"
)

var (
	ErrPlanFieldsRequired = apperror.InvalidInput("start date, end date and destination are required")
	ErrPlanDates          = apperror.InvalidInput("end date must not be before start date")
	ErrLocationRequired   = apperror.InvalidInput("date and location are required")
	ErrNotPlanOwner       = apperror.Forbidden("you do not own this travel plan")
)

type PlanService struct {
	planRepository repository.PlanRepository
}

func NewPlanService(planRepository repository.PlanRepository) *PlanService {
	return &PlanService{
		planRepository: planRepository,
	}
}

func (s *PlanService) CreatePlan(plan *model.TravelPlan) (*model.TravelPlan, error) {
	plan.Destination = strings.TrimSpace(plan.Destination)

	err := validatePlan(plan)
	if err != nil {
		return nil, err
	}

	plan.CreatedAt = time.Now()
	err = s.planRepository.Create(plan)
	if err != nil {
		return nil, err
	}

	return plan, nil
}

// UpdatePlan edits a plan owned by username. Diaries written against the plan
// keep the destination they were created with.
func (s *PlanService) UpdatePlan(planID int64, username string, input *model.TravelPlan) (*model.TravelPlan, error) {
	existing, err := s.ownedPlan(planID, username)
	if err != nil {
		return nil, err
	}

	existing.StartDate = input.StartDate
	existing.EndDate = input.EndDate
	existing.Destination = strings.TrimSpace(input.Destination)

	err = validatePlan(existing)
	if err != nil {
		return nil, err
	}

	err = s.planRepository.Update(existing)
	if err != nil {
		return nil, err
	}

	return existing, nil
}

func (s *PlanService) CreateLocation(username string, location *model.TravelLocation) (*model.TravelLocation, error) {
	location.Location = strings.TrimSpace(location.Location)
	if location.Date.IsZero() || location.Location == "" {
		return nil, ErrLocationRequired
	}

	_, err := s.ownedPlan(location.PlanID, username)
	if err != nil {
		return nil, err
	}

	err = s.planRepository.CreateLocation(location)
	if err != nil {
		return nil, err
	}

	return location, nil
}

func (s *PlanService) PlansByUsername(username string) ([]*model.TravelPlan, error) {
	return s.planRepository.PlansByUsername(username)
}

func (s *PlanService) LocationsByPlan(planID int64) ([]*model.TravelLocation, error) {
	_, err := s.planRepository.ByID(planID)
	if err != nil {
		return nil, err
	}
	return s.planRepository.Locations(planID)
}

// ownedPlan loads a plan and checks that username owns it
func (s *PlanService) ownedPlan(planID int64, username string) (*model.TravelPlan, error) {
	plan, err := s.planRepository.ByID(planID)
	if err != nil {
		return nil, err
	}
	if plan.Username != username {
		return nil, ErrNotPlanOwner
	}
	return plan, nil
}

func validatePlan(plan *model.TravelPlan) error {
	if plan.Username == "" || plan.Destination == "" || plan.StartDate.IsZero() || plan.EndDate.IsZero() {
		return ErrPlanFieldsRequired
	}
	if plan.EndDate.Before(plan.StartDate) {
		return ErrPlanDates
	}
	return nil
}

// isPlanNotFound reports a missing plan, including one hidden by an owner scope
func isPlanNotFound(err error) bool {
	return errors.Is(err, repository.ErrPlanNotFound)
}
