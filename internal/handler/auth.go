package handler

import (
	"log/slog"
	"net/http"

	"github.com/tripdiary/tripadmin/internal/model"
	"github.com/tripdiary/tripadmin/internal/service"
)

type authHandler struct {
	authService *service.AuthService
}

func NewAuthHandler(authService *service.AuthService) *authHandler {
	return &authHandler{
		authService: authService,
	}
}

type loginRequest struct {
	Username string `json:"username" validate:"required,max=100"`
	Password string `json:"password" validate:"required,max=72"`
}

type loginResponse struct {
	Token string      `json:"token"`
	User  *model.User `json:"user"`
}

func (h *authHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	err := decodeJSON(w, r, &req)
	if err != nil {
		Error(w, r, err)
		return
	}

	user, err := h.authService.Login(req.Username, req.Password)
	if err != nil {
		Error(w, r, err)
		return
	}

	token, err := h.authService.GenerateJWT(user)
	if err != nil {
		slog.Error("failed to generate JWT", "error", err, "user_id", user.ID)
		Error(w, r, err)
		return
	}

	slog.Info("user logged in", "user_id", user.ID, "username", user.Username)
	JSON(w, http.StatusOK, loginResponse{Token: token, User: user}, "logged in")
}
