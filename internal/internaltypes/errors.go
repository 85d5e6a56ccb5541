package internaltypes

import "errors"

var (
	ErrUnauthorized    = errors.New("unauthorized")
	ErrNotFound        = errors.New("not found")
	ErrUserExists      = errors.New("username already taken")
	ErrHistoryDisabled = errors.New("run history disabled: DATABASE_URL is not set")
)
