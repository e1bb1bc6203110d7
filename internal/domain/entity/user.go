// Package entity contains the core business objects of the project,
// each representing a unique, identifiable concept within the domain.
package entity

import (
	"time"

	"github.com/google/uuid"
)

// User is an account that can sign in and own posts.
type User struct {
	ID           uuid.UUID // Opaque unique identifier, assigned at signup.
	Email        string    // Unique login identifier, compared exactly as stored.
	FirstName    string
	LastName     string
	PasswordHash string    // Self-describing digest produced by the PasswordHasher. Never the raw password.
	Birthday     time.Time
	CreatedAt    time.Time
}

// FullName joins the first and last name for display.
func (u *User) FullName() string {
	switch {
	case u.FirstName == "":
		return u.LastName
	case u.LastName == "":
		return u.FirstName
	default:
		return u.FirstName + " " + u.LastName
	}
}
