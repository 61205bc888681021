package rideshare

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/wayfare/backend/internal/audit"
	"github.com/wayfare/backend/internal/models"
	"github.com/wayfare/backend/internal/store"
)

// PasswordCost is the bcrypt cost used for stored passwords.
var PasswordCost = bcrypt.DefaultCost

type Users = Collection[models.User, models.UserPatch]

func NewUsers(repo store.Repository[models.User], rec audit.Recorder) *Users {
	c := NewCollection[models.User, models.UserPatch](repo, store.UserSchema, rec)
	c.check = func(ctx context.Context, u *models.User) error {
		return uniqueEmail(ctx, repo, u)
	}
	c.prepare = func(u *models.User, patch models.UserPatch) error {
		if patch.Password == nil {
			return nil
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(*patch.Password), PasswordCost)
		if err != nil {
			return fmt.Errorf("hash password: %w", err)
		}
		u.Password = string(hash)
		return nil
	}
	return c
}

// uniqueEmail rejects u when another user already owns its email. The
// database constraint still guards concurrent writers.
func uniqueEmail(ctx context.Context, repo store.Repository[models.User], u *models.User) error {
	other, err := repo.FindBy(ctx, "email", u.Email)
	switch {
	case errors.Is(err, models.ErrNotFound):
		return nil
	case err != nil:
		return err
	case other.ID != u.ID:
		return &models.FieldError{Kind: models.ErrDuplicateEmail, Field: "email", Value: u.Email}
	}
	return nil
}
