package models

import (
	"time"
)

// User represents the signed-in person of a browser session.
type User struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	Token     string    `json:"token,omitempty"`
}

// Session is the result of a successful credential exchange.
type Session struct {
	Token string
	User  User
}
