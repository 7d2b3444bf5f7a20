package model

import (
	"time"

	"github.com/google/uuid"
)

// Role constants
const (
	RoleParent = "parent"
	RoleExpert = "expert"
	RoleAdmin  = "admin"
)

// ValidRole reports whether role is one of the known roles.
func ValidRole(role string) bool {
	switch role {
	case RoleParent, RoleExpert, RoleAdmin:
		return true
	}
	return false
}

// User represents an authenticated account row.
type User struct {
	Base
	Email         string `json:"email" db:"email"`
	PasswordHash  string `json:"-" db:"password_hash"`
	EmailVerified bool   `json:"email_verified" db:"email_verified"`
}

// Profile maps a user to its role. Absence of a profile row means the
// caller has no role and guarded endpoints treat it as forbidden.
type Profile struct {
	UserID    uuid.UUID `json:"user_id" db:"user_id"`
	Role      string    `json:"role" db:"role"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// ParentProfile holds the parent-specific profile fields.
type ParentProfile struct {
	UserID    uuid.UUID `json:"user_id" db:"user_id"`
	FullName  string    `json:"full_name" db:"full_name"`
	Phone     *string   `json:"phone" db:"phone"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// AdminProfile holds the admin-specific profile fields.
type AdminProfile struct {
	AdminID   uuid.UUID `json:"admin_id" db:"admin_id"`
	FullName  string    `json:"full_name" db:"full_name"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// SignupRequest covers parent, expert and admin signup. Admin creation
// additionally requires an admin bearer token.
type SignupRequest struct {
	Email          string  `json:"email" binding:"required,email"`
	Password       string  `json:"password" binding:"required,min=8"`
	FullName       string  `json:"full_name" binding:"required"`
	Phone          *string `json:"phone"`
	Role           string  `json:"role" binding:"omitempty,oneof=parent expert admin"`
	Specialization *string `json:"specialization"`
	Organization   *string `json:"organization"`
	ContactEmail   *string `json:"contact_email"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type VerifyEmailRequest struct {
	Email string `json:"email" binding:"required,email"`
	Code  string `json:"code" binding:"required"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

type TokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// SessionResponse is returned by signup and login.
type SessionResponse struct {
	User    *User          `json:"user"`
	Tokens  *TokenResponse `json:"session"`
	Role    string         `json:"role"`
	Profile interface{}    `json:"profile,omitempty"`
}

type UpdateProfileRequest struct {
	FullName       *string `json:"full_name"`
	Phone          *string `json:"phone"`
	Specialization *string `json:"specialization"`
	Organization   *string `json:"organization"`
	ContactEmail   *string `json:"contact_email"`
}
