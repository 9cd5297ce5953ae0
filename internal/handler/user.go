package handler

import (
	"net/http"

	"github.com/tripdiary/tripadmin/internal/service"
)

type userHandler struct {
	userService *service.UserService
}

func NewUserHandler(userService *service.UserService) *userHandler {
	return &userHandler{
		userService: userService,
	}
}

type updateUserRequest struct {
	Username string `json:"username" validate:"required,max=100"`
	Name     string `json:"name" validate:"max=100"`
	Email    string `json:"email" validate:"omitempty,email,max=254"`
	Role     string `json:"role" validate:"required,oneof=USER ADMIN"`
}

func (h *userHandler) Users(w http.ResponseWriter, r *http.Request) {
	users, err := h.userService.Users()
	if err != nil {
		Error(w, r, err)
		return
	}
	JSON(w, http.StatusOK, users, "")
}

func (h *userHandler) User(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		Error(w, r, err)
		return
	}

	user, err := h.userService.User(id)
	if err != nil {
		Error(w, r, err)
		return
	}
	JSON(w, http.StatusOK, user, "")
}

func (h *userHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		Error(w, r, err)
		return
	}

	var req updateUserRequest
	err = decodeJSON(w, r, &req)
	if err != nil {
		Error(w, r, err)
		return
	}

	user, err := h.userService.Update(id, service.UserUpdate{
		Username: req.Username,
		Name:     req.Name,
		Email:    req.Email,
		Role:     req.Role,
	})
	if err != nil {
		Error(w, r, err)
		return
	}
	JSON(w, http.StatusOK, user, "user updated")
}

// Delete deactivates the user; the row is kept
func (h *userHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		Error(w, r, err)
		return
	}

	user, err := h.userService.Deactivate(id)
	if err != nil {
		Error(w, r, err)
		return
	}
	JSON(w, http.StatusOK, user, "user deactivated")
}
