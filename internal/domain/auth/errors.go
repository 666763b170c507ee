package auth

import "errors"

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInvalidToken       = errors.New("invalid or expired token")
	ErrMissingClaims      = errors.New("token is missing required claims")
	ErrNoEmployeeProfile  = errors.New("this account has no employee profile")
)
