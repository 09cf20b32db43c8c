package user

import "errors"

var (
	ErrNotFound = errors.New("user not found")
	// ErrEmailTaken is returned when registering an email that already has an account.
	ErrEmailTaken      = errors.New("email already registered")
	ErrUnknownEmail    = errors.New("no account for email")
	ErrInvalidPassword = errors.New("invalid password")
	ErrEmptyName       = errors.New("user name is empty")
)

type User struct {
	ID           int64  `json:"id"`
	Email        string `json:"email"`
	PasswordHash string `json:"-"` // never expose hash in JSON
	Name         string `json:"name"`
}

// Anonymous is the identity of a request without a valid session. It has no ID.
var Anonymous = User{}

func (u User) IsAuthenticated() bool {
	return u.ID > 0
}

type RegisterRequest struct {
	Email    string `form:"register-email" binding:"required,email,max=100"`
	Password string `form:"register-password" binding:"required,max=200"`
	Name     string `form:"register-name" binding:"required,max=100"`
}

type LoginRequest struct {
	Email    string `form:"login-email" binding:"required"`
	Password string `form:"login-password" binding:"required"`
}
