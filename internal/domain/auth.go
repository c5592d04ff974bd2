package domain

import "time"

// User is an account identity. The password never leaves the auth
// subsystem; only its bcrypt hash is stored.
type User struct {
	ID           string    `json:"userId" bson:"-"`
	Username     string    `json:"username" bson:"username"`
	PasswordHash string    `json:"-" bson:"password"`
	Email        string    `json:"email,omitempty" bson:"email,omitempty"`
	CreateTime   time.Time `json:"createTime" bson:"createTime"`
	UpdateTime   time.Time `json:"updateTime" bson:"updateTime"`
}

// RegisterRequest is the body of POST /api/auth/register.
type RegisterRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Email    string `json:"email,omitempty"`
}

// RegisterResponse confirms account creation.
type RegisterResponse struct {
	Message string `json:"message"`
	UserID  string `json:"userId"`
}

// LoginRequest is the body of POST /api/auth/login.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginResponse carries the bearer token clients attach to every protected
// call.
type LoginResponse struct {
	Token  string `json:"token"`
	UserID string `json:"userId"`
}

// ChangePasswordRequest is the body of POST /api/auth/change-password.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

// SuccessResponse is a generic {message} body.
type SuccessResponse struct {
	Message string `json:"message"`
}
