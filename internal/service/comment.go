package service

import (
	"log/slog"
	"math"
	"strings"
	"time"

	"github.com/tripdiary/tripadmin/internal/apperror"
	"github.com/tripdiary/tripadmin/internal/model"
	"github.com/tripdiary/tripadmin/internal/repository"
)

const (
	DefaultCommentLimit = 10
	MaxCommentLimit     = 100
)

var (
	ErrCommentRequired = apperror.InvalidInput("comment is required")
	ErrNotCommentOwner = apperror.Forbidden("you are not the author of this comment")
	ErrInvalidPage     = apperror.InvalidInput("page must be 1 or greater")
	ErrInvalidLimit    = apperror.InvalidInput("limit must be between 1 and 100")
)

type CommentService struct {
	commentRepository repository.CommentRepository
	diaryRepository   repository.DiaryRepository
}

func NewCommentService(commentRepository repository.CommentRepository, diaryRepository repository.DiaryRepository) *CommentService {
	return &CommentService{
		commentRepository: commentRepository,
		diaryRepository:   diaryRepository,
	}
}

// Create adds a comment to an existing diary. Anyone authenticated may comment.
func (s *CommentService) Create(comment *model.Comment) (*model.Comment, error) {
	comment.Comment = strings.TrimSpace(comment.Comment)
	if comment.Comment == "" {
		return nil, ErrCommentRequired
	}
	if comment.Username == "" {
		return nil, ErrUsernameRequired
	}

	_, err := s.diaryRepository.ByID(comment.DiaryID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	comment.CreatedAt = now
	comment.UpdatedAt = now

	err = s.commentRepository.Create(comment)
	if err != nil {
		return nil, err
	}

	return comment, nil
}

// Update replaces the text of a comment written by caller and returns it as stored
func (s *CommentService) Update(newComment *model.Comment, id int64, caller string) (*model.Comment, error) {
	_, err := s.authorize(id, caller)
	if err != nil {
		return nil, err
	}

	newComment.Comment = strings.TrimSpace(newComment.Comment)
	if newComment.Comment == "" {
		return nil, ErrCommentRequired
	}

	err = s.commentRepository.Update(id, newComment)
	if err != nil {
		return nil, err
	}

	return s.commentRepository.ByID(id)
}

// Delete removes a comment written by caller and returns the deleted copy
func (s *CommentService) Delete(id int64, caller string) (*model.Comment, error) {
	existing, err := s.authorize(id, caller)
	if err != nil {
		return nil, err
	}

	err = s.commentRepository.Delete(id)
	if err != nil {
		return nil, err
	}

	return existing, nil
}

// CommentsByDiary returns one page of a diary's comments, oldest first.
// A limit of 0 selects the default page size.
func (s *CommentService) CommentsByDiary(diaryID int64, page, limit int) ([]*model.Comment, error) {
	if page < 1 {
		return nil, ErrInvalidPage
	}
	if limit == 0 {
		limit = DefaultCommentLimit
	}
	if limit < 1 || limit > MaxCommentLimit {
		return nil, ErrInvalidLimit
	}
	// The offset (page-1)*limit must fit in an int
	if page > math.MaxInt/limit {
		return nil, ErrInvalidPage
	}

	_, err := s.diaryRepository.ByID(diaryID)
	if err != nil {
		return nil, err
	}

	return s.commentRepository.CommentsByDiary(diaryID, limit, (page-1)*limit)
}

func (s *CommentService) Comments() ([]*model.Comment, error) {
	return s.commentRepository.Comments()
}

func (s *CommentService) CommentsByUsernameAndDiary(username string, diaryID int64) ([]*model.Comment, error) {
	return s.commentRepository.CommentsByUsernameAndDiary(username, diaryID)
}

// CommentsByUsername lists a user's comments without the author column
func (s *CommentService) CommentsByUsername(username string) ([]map[string]any, error) {
	return s.commentRepository.CommentsByUsername(username)
}

// AdminDelete removes any comment without an authorship check
func (s *CommentService) AdminDelete(id int64) (*model.Comment, error) {
	existing, err := s.commentRepository.ByID(id)
	if err != nil {
		return nil, err
	}

	err = s.commentRepository.Delete(id)
	if err != nil {
		return nil, err
	}

	slog.Info("comment deleted by admin", "comment_id", id)
	return existing, nil
}

func (s *CommentService) authorize(id int64, caller string) (*model.Comment, error) {
	existing, err := s.commentRepository.ByID(id)
	if err != nil {
		return nil, err
	}
	if existing.Username != caller {
		return nil, ErrNotCommentOwner
	}
	return existing, nil
}
