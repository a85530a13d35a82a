package dto

import (
	"errors"
	"net/mail"
	"strings"

	"github.com/ihadi/timetrack-be/internal/models"
)

type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// UpdateProfileRequest carries optional replacements; empty fields are left
// untouched.
type UpdateProfileRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

// TechnicianResponse is the public view of a technician.
type TechnicianResponse struct {
	ID    int64  `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

type AuthResponse struct {
	Token string             `json:"token"`
	User  TechnicianResponse `json:"user"`
}

// NewTechnicianResponse strips private fields from a technician.
func NewTechnicianResponse(tech models.Technician) TechnicianResponse {
	return TechnicianResponse{ID: tech.ID, Email: tech.Email, Name: tech.Name}
}

// Validate checks required fields and bounds before any mutation happens.
func (r RegisterRequest) Validate() error {
	if strings.TrimSpace(r.Email) == "" || strings.TrimSpace(r.Password) == "" || strings.TrimSpace(r.Name) == "" {
		return errors.New("email, password, and name are required")
	}
	if _, err := mail.ParseAddress(r.Email); err != nil {
		return errors.New("email format is invalid")
	}
	if len(r.Password) < 6 {
		return errors.New("password must be at least 6 characters")
	}
	if n := len(strings.TrimSpace(r.Name)); n < 2 || n > 100 {
		return errors.New("name must be between 2 and 100 characters")
	}
	return nil
}

// Validate checks only the fields present.
func (r UpdateProfileRequest) Validate() error {
	if r.Email != "" {
		if _, err := mail.ParseAddress(r.Email); err != nil {
			return errors.New("email format is invalid")
		}
	}
	if r.Password != "" && len(r.Password) < 6 {
		return errors.New("password must be at least 6 characters")
	}
	if r.Name != "" {
		if n := len(strings.TrimSpace(r.Name)); n < 2 || n > 100 {
			return errors.New("name must be between 2 and 100 characters")
		}
	}
	return nil
}
