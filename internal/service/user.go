package service

import (
	"log/slog"
	"strings"
	"time"

	"github.com/tripdiary/tripadmin/internal/apperror"
	"github.com/tripdiary/tripadmin/internal/model"
	"github.com/tripdiary/tripadmin/internal/repository"
	"github.com/tripdiary/tripadmin/internal/validation"
)

var (
	ErrUsernameRequired = apperror.InvalidInput("username is required")
	ErrUserInactive     = apperror.Unauthorized("user is deactivated")
)

// UserUpdate holds the fields an admin may change
type UserUpdate struct {
	Username string
	Name     string
	Email    string
	Role     string
}

type UserService struct {
	userRepository repository.UserRepository
	authService    *AuthService
}

func NewUserService(userRepository repository.UserRepository, authService *AuthService) *UserService {
	return &UserService{
		userRepository: userRepository,
		authService:    authService,
	}
}

func (s *UserService) Users() ([]*model.User, error) {
	return s.userRepository.Users()
}

func (s *UserService) User(id int64) (*model.User, error) {
	return s.userRepository.ByID(id)
}

// ActiveUser loads the user behind a session. Deactivated accounts are
// rejected so tokens issued before deactivation stop working.
func (s *UserService) ActiveUser(username string) (*model.User, error) {
	user, err := s.userRepository.ByUsername(username)
	if err != nil {
		return nil, err
	}
	if !user.Activated {
		return nil, ErrUserInactive
	}
	return user, nil
}

// Update applies an admin edit and returns the user as stored
func (s *UserService) Update(id int64, input UserUpdate) (*model.User, error) {
	user := &model.User{
		ID:       id,
		Username: strings.TrimSpace(input.Username),
		Name:     strings.TrimSpace(input.Name),
		Email:    strings.TrimSpace(strings.ToLower(input.Email)),
		Role:     input.Role,
	}

	err := validateUser(user)
	if err != nil {
		return nil, err
	}

	updated, err := s.userRepository.Update(user)
	if err != nil {
		return nil, err
	}

	slog.Info("user updated", "user_id", id, "role", updated.Role)
	return updated, nil
}

// Deactivate is the user delete. The row is kept with activated = false,
// so the account can no longer log in.
func (s *UserService) Deactivate(id int64) (*model.User, error) {
	err := s.userRepository.Deactivate(id)
	if err != nil {
		return nil, err
	}

	slog.Info("user deactivated", "user_id", id)
	return s.userRepository.ByID(id)
}

// Create provisions an activated account with a password
func (s *UserService) Create(input UserUpdate, password string) (*model.User, error) {
	user := &model.User{
		Username:  strings.TrimSpace(input.Username),
		Name:      strings.TrimSpace(input.Name),
		Email:     strings.TrimSpace(strings.ToLower(input.Email)),
		Role:      input.Role,
		Activated: true,
		CreatedAt: time.Now(),
	}
	if user.Role == "" {
		user.Role = model.RoleUser
	}

	err := validateUser(user)
	if err != nil {
		return nil, err
	}

	err = s.authService.ValidatePassword(password, user.Username)
	if err != nil {
		return nil, apperror.InvalidInput(err.Error())
	}

	hash, err := s.authService.HashPassword(password)
	if err != nil {
		return nil, apperror.Unexpected("failed to hash password", err)
	}
	user.PasswordHash = &hash

	err = s.userRepository.Create(user)
	if err != nil {
		return nil, err
	}

	slog.Info("user created", "user_id", user.ID, "username", user.Username, "role", user.Role)
	return user, nil
}

func validateUser(user *model.User) error {
	if user.Username == "" {
		return ErrUsernameRequired
	}

	if user.Email != "" {
		err := validation.ValidateEmail(user.Email)
		if err != nil {
			return apperror.InvalidInput(err.Error())
		}
	}

	err := validation.ValidateRole(user.Role)
	if err != nil {
		return apperror.InvalidInput(err.Error())
	}

	return nil
}
