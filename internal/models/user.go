package models

import (
	"time"
)

// User represents a registered account. It owns sneakers and authors
// propositions; both cascade away when the account is deleted.
type User struct {
	ID           string    `bson:"_id,omitempty" json:"id,omitempty"`
	Email        string    `bson:"email" json:"email"`
	Username     string    `bson:"username" json:"username"`
	PasswordHash string    `bson:"password" json:"-"` // Store hash, not plaintext
	CreatedAt    time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt    time.Time `bson:"updated_at" json:"updated_at"`
}

// UserInfo is the slimmed-down representation embedded in sneaker and
// proposition responses.
type UserInfo struct {
	ID       string `bson:"_id" json:"id"`
	Username string `bson:"username" json:"username"`
}

// Info returns the embeddable view of the user.
func (u *User) Info() *UserInfo {
	if u == nil {
		return nil
	}
	return &UserInfo{ID: u.ID, Username: u.Username}
}
