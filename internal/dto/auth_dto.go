package dto

import (
	"time"

	"github.com/ahmetcoskunkizilkaya/campusconnect/internal/models"
	"github.com/google/uuid"
)

type SignupRequest struct {
	FullName string `json:"fullname" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type GoogleSyncRequest struct {
	AccessToken string `json:"access_token" validate:"required"`
}

type AuthResponse struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expiresAt"`
	User      UserResponse `json:"user"`
}

type UserResponse struct {
	ID       uuid.UUID `json:"id"`
	FullName string    `json:"fullName"`
	Email    string    `json:"email"`
	Provider string    `json:"provider"`
}

func NewUserResponse(u *models.User) UserResponse {
	return UserResponse{ID: u.ID, FullName: u.FullName, Email: u.Email, Provider: u.Provider}
}

type ErrorResponse struct {
	Error string `json:"error"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	DB        string `json:"db"`
}
