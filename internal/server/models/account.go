// Package models holds the persistent records of the auth flow.
package models

import "time"

// Role is the authorization level stored on an account.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// Account is a storefront customer or administrator. Email is stored
// lowercased and is unique across all accounts.
type Account struct {
	ID           string
	FullName     string
	Email        string
	PasswordHash string
	Role         Role
	Verified     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// AccountView is the public projection of an Account. It never carries the
// password hash.
type AccountView struct {
	ID       string `json:"_id"`
	FullName string `json:"fullName"`
	Email    string `json:"email"`
	Role     Role   `json:"role"`
}

func (a *Account) View() AccountView {
	return AccountView{
		ID:       a.ID,
		FullName: a.FullName,
		Email:    a.Email,
		Role:     a.Role,
	}
}
