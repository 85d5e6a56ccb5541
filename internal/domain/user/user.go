package user

import "time"

// User is a dashboard operator, not an account on the sports site.
type User struct {
	ID           string
	Username     string
	PasswordHash []byte
	CreatedAt    time.Time
}
