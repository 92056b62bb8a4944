// Package users implements the credential store: doctor accounts keyed by a
// unique email and looked up at login by full name.
package users

import (
	"context"

	"github.com/dmitrijs2005/clinicdesk/internal/server/models"
)

type Repository interface {
	// Create inserts user. It fails with common.ErrAlreadyExists when the
	// email is taken; uniqueness is enforced by the storage index.
	Create(ctx context.Context, user *models.User) (*models.User, error)
	// GetUserByEmail returns common.ErrorNotFound when nobody has email.
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	// FindUsersByName returns every user named fullName, oldest first.
	// An empty slice means no match.
	FindUsersByName(ctx context.Context, fullName string) ([]*models.User, error)
}
