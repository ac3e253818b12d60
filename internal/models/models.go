package models

import "time"

// User is a service account. Password holds the argon2id hash, never the
// plaintext, and is excluded from JSON.
type User struct {
	ID        int64     `json:"id"`
	Username  string    `json:"username"`
	Password  string    `json:"-"`
	CreatedAt time.Time `json:"created_at"`
}
