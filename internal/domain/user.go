package domain

import "time"

// User is the persisted user record. PasswordHash never holds a plaintext
// password and CreationTime is assigned by the store when the row is created.
type User struct {
	ID           int64
	Name         string
	PasswordHash string
	CreationTime time.Time
}
