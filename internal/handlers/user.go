package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/mememuseum/backend/internal/repositories"
)

// UserHandler handles user profile HTTP requests
type UserHandler struct {
	userRepository repositories.UserRepository
}

// NewUserHandler creates a new UserHandler
func NewUserHandler(userRepo repositories.UserRepository) *UserHandler {
	return &UserHandler{userRepository: userRepo}
}

// RegisterUserRoutes registers user-related routes
func (h *UserHandler) RegisterUserRoutes(g *echo.Group) {
	g.GET("/users/me", h.GetMe)
}

// GetMe returns the authenticated user's profile
func (h *UserHandler) GetMe(c echo.Context) error {
	userID := getUserIDFromContext(c)
	if userID == 0 {
		return respondFail(c, http.StatusUnauthorized, "Authentication required")
	}

	user, err := h.userRepository.GetUserByID(userID)
	if err != nil {
		return respondFail(c, http.StatusNotFound, "User not found")
	}

	return respondSuccess(c, http.StatusOK, "User retrieved successfully", user)
}
