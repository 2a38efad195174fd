package models

import "time"

type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	PasswordHash []byte    `json:"-"`
	Salt         []byte    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
}

type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (c Credentials) Validate() error {
	if c.Username == "" {
		return NewValidationError("username", "Username is required")
	}
	if len(c.Username) > 64 {
		return NewValidationError("username", "Username is too long")
	}
	if len(c.Password) < 6 {
		return NewValidationError("password", "Password must be at least 6 characters")
	}
	return nil
}
