package user

import "errors"

var (
	// ErrUserNotFound is returned when the user does not exist
	ErrUserNotFound = errors.New("user not found")

	// ErrEmailAlreadyExists is returned on duplicate email registration
	ErrEmailAlreadyExists = errors.New("email already exists")

	// ErrInvalidRole is returned for an unknown role filter or assignment
	ErrInvalidRole = errors.New("invalid role")
)
