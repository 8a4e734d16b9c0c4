package models

import "time"

// User is a registered account. The password is kept only as an argon2id
// hash of the password and Salt.
type User struct {
	ID           string
	Email        string
	PasswordHash []byte
	Salt         []byte
	CreatedAt    time.Time
}
