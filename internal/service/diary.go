package service

import (
	"log/slog"
	"strings"
	"time"

	"github.com/tripdiary/tripadmin/internal/apperror"
	"github.com/tripdiary/tripadmin/internal/model"
	"github.com/tripdiary/tripadmin/internal/repository"
)

var (
	ErrTitleRequired    = apperror.InvalidInput("title is required")
	ErrPlanNotOwned     = apperror.Unauthorized("travel plan not found or not owned by you")
	ErrDiaryWithoutPlan = apperror.InvalidState("diary is not linked to a travel plan")
	ErrNotDiaryOwner    = apperror.Forbidden("you do not own this diary")
)

type DiaryService struct {
	diaryRepository repository.DiaryRepository
	planRepository  repository.PlanRepository
}

func NewDiaryService(diaryRepository repository.DiaryRepository, planRepository repository.PlanRepository) *DiaryService {
	return &DiaryService{
		diaryRepository: diaryRepository,
		planRepository:  planRepository,
	}
}

// Create writes a diary against a plan owned by username. The plan's destination
// is copied onto the diary and never re-synced.
func (s *DiaryService) Create(diary *model.Diary, username string, planID int64) (*model.Diary, error) {
	diary.Title = strings.TrimSpace(diary.Title)
	if diary.Title == "" {
		return nil, ErrTitleRequired
	}

	plan, err := s.planRepository.ByIDAndOwner(planID, username)
	if err != nil {
		if isPlanNotFound(err) {
			return nil, ErrPlanNotOwned
		}
		return nil, err
	}

	now := time.Now()
	diary.PlanID = &plan.PlanID
	diary.Username = username
	diary.Destination = plan.Destination
	diary.CreatedAt = now
	diary.UpdatedAt = now

	err = s.diaryRepository.Create(diary)
	if err != nil {
		return nil, err
	}

	return diary, nil
}

func (s *DiaryService) Diary(id int64) (*model.Diary, error) {
	return s.diaryRepository.ByID(id)
}

// Update overwrites title and content and returns the diary as it was before
func (s *DiaryService) Update(newDiary *model.Diary, id int64, caller string) (*model.Diary, error) {
	existing, err := s.authorize(id, caller)
	if err != nil {
		return nil, err
	}

	newDiary.Title = strings.TrimSpace(newDiary.Title)
	if newDiary.Title == "" {
		return nil, ErrTitleRequired
	}

	err = s.diaryRepository.Update(id, newDiary)
	if err != nil {
		return nil, err
	}

	return existing, nil
}

// Delete removes the diary and returns the deleted copy
func (s *DiaryService) Delete(id int64, caller string) (*model.Diary, error) {
	existing, err := s.authorize(id, caller)
	if err != nil {
		return nil, err
	}

	err = s.diaryRepository.Delete(id)
	if err != nil {
		return nil, err
	}

	slog.Info("diary deleted", "diary_id", id, "username", caller)
	return existing, nil
}

func (s *DiaryService) Diaries() ([]*model.Diary, error) {
	return s.diaryRepository.Diaries()
}

// MyDiaries lists the diaries written by username
func (s *DiaryService) MyDiaries(username string) ([]*model.Diary, error) {
	return s.diaryRepository.DiariesByAuthor(username)
}

// DiariesByUsername lists the diaries attached to plans owned by username
func (s *DiaryService) DiariesByUsername(username string) ([]*model.Diary, error) {
	return s.diaryRepository.DiariesByPlanOwner(username)
}

// AdminDelete removes any diary without an ownership check
func (s *DiaryService) AdminDelete(id int64) (*model.Diary, error) {
	existing, err := s.diaryRepository.ByID(id)
	if err != nil {
		return nil, err
	}

	err = s.diaryRepository.Delete(id)
	if err != nil {
		return nil, err
	}

	slog.Info("diary deleted by admin", "diary_id", id)
	return existing, nil
}

// authorize resolves the owner chain: diary, then its plan scoped to caller
func (s *DiaryService) authorize(id int64, caller string) (*model.Diary, error) {
	existing, err := s.diaryRepository.ByID(id)
	if err != nil {
		return nil, err
	}

	if existing.PlanID == nil {
		return nil, ErrDiaryWithoutPlan
	}

	plan, err := s.planRepository.ByIDAndOwner(*existing.PlanID, caller)
	if err != nil {
		if isPlanNotFound(err) {
			return nil, ErrNotDiaryOwner
		}
		return nil, err
	}
	if plan.Username != caller {
		return nil, ErrNotDiaryOwner
	}

	return existing, nil
}
