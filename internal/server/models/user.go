// Package models defines the records persisted by clinicdesk.
package models

import "time"

// User is a doctor account. FullName is the login key but is not unique;
// Email is.
type User struct {
	ID           string
	FullName     string
	Email        string
	Phone        string
	PasswordHash string
	CreatedAt    time.Time
}
