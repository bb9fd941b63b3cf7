package auth

import (
	"github.com/uptrace/bun"
)

// User is an account in the users collection. The password column holds
// the bcrypt hash, never the plaintext.
type User struct {
	bun.BaseModel `bun:"table:users,alias:u"`

	ID           string `bun:"id,pk,type:uuid,nullzero,default:gen_random_uuid()" json:"id"`
	Email        string `bun:"email,notnull" json:"email"`
	PasswordHash string `bun:"password,notnull" json:"-"`
}

// SignupRequest is the request body for POST /user
type SignupRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// LoginRequest is the request body for POST /login. Missing fields are
// treated as a failed login rather than a validation error.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}
