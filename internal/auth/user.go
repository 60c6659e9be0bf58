// Copyright (c) 2026 Lumeo. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package auth implements the user identity and session-issuance layer.

It defines the core domain entity (User) and the logic for signup, login,
and logout, including provisioning of new identities into the external
real-time messaging directory.

# Architecture

This layer is the "Truth" of the system. The entity defined here has no
external dependencies and encapsulates all business rules related to user
identity. A User leaves this package only as a sanitized projection: the
password hash is tagged out of every JSON rendering.
*/
package auth

import (
	"time"
)

// # Domain Entities

// User represents a registered member of the Lumeo platform.
type User struct {
	ID             string    `json:"id"`
	Email          string    `json:"email"`
	FullName       string    `json:"fullName"`
	PasswordHash   string    `json:"-"` // Explicitly omitted from JSON for security.
	ProfilePicture string    `json:"profilePicture"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// # Field Identifiers

// Global field names for validation and identity mapping in the authentication domain.
const (
	FieldFullName = "fullName"
	FieldEmail    = "email"
	FieldPassword = "password"
	FieldUser     = "user"
	FieldMessage  = "message"
)
