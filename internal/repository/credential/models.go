package credential

import "errors"

var (
	ErrNotFound      = errors.New("user not found")
	ErrAlreadyExists = errors.New("user already exists")
)

type User struct {
	Username     string
	PasswordHash string
	IsAdmin      bool
}

type CreateUserParams struct {
	Username     string
	PasswordHash string
	IsAdmin      bool
}
