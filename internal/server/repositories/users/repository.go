// Package users implements the credential store: one record per normalized
// email, holding the password digest and role.
package users

import (
	"context"

	"github.com/dmitrijs2005/gophgate/internal/server/models"
)

// Repository is the credential store consumed by the auth service.
//
// FindByEmail and GetByID return common.ErrorNotFound for a missing record.
// Create assigns ID and CreatedAt and returns common.ErrorAlreadyExists when
// the email is taken. Update overwrites email, digest and role of the record
// with user.ID under the same uniqueness rule. Update and Delete return
// common.ErrorNotFound for a missing record. Emails are compared exactly;
// callers normalize them. A negative offset lists from the start.
type Repository interface {
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	GetByID(ctx context.Context, id string) (*models.User, error)
	Create(ctx context.Context, user *models.User) (*models.User, error)
	List(ctx context.Context, offset, limit int) ([]models.User, error)
	Update(ctx context.Context, user *models.User) (*models.User, error)
	Delete(ctx context.Context, id string) error
}
