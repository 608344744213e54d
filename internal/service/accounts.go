package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Apfirebolt/logjournal-backend/internal/errs"
	"github.com/Apfirebolt/logjournal-backend/internal/models"
	"github.com/Apfirebolt/logjournal-backend/internal/store"
	"github.com/Apfirebolt/logjournal-backend/internal/util"

	"github.com/go-playground/validator/v10"
)

const (
	maxFailedLogins = 5
	lockDuration    = 10 * time.Minute
	deletionBuffer  = 7 * 24 * time.Hour
)

var (
	ErrBadCredentials = fmt.Errorf("%w: invalid credentials", errs.ErrUnauthorized)
	ErrAccountLocked  = fmt.Errorf("%w: account is locked, try again later", errs.ErrUnauthorized)
	ErrAccountDeleted = fmt.Errorf("%w: account has been deleted", errs.ErrUnauthorized)
)

var validate = validator.New()

type RegisterInput struct {
	Username    string `json:"username" binding:"required"`
	Email       string `json:"email" binding:"required"`
	Password    string `json:"password" binding:"required"`
	DisplayName string `json:"display_name" binding:"max=64"`
	IsStaff     bool   `json:"-"`
}

func checkEmail(email string) error {
	if err := validate.Var(email, "required,email,max=254"); err != nil {
		return errs.Invalid("email", "Enter a valid email address.")
	}
	return nil
}

// Register creates an account. Username collisions are reported before
// email collisions.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	if err := util.ValidateUsername(in.Username); err != nil {
		return nil, errs.Invalid("username", "%s", err.Error())
	}
	if err := checkEmail(in.Email); err != nil {
		return nil, err
	}
	if err := util.ValidatePassword(in.Password); err != nil {
		return nil, errs.Invalid("password", "%s", err.Error())
	}

	if taken, err := s.store.UsernameTaken(ctx, in.Username); err != nil {
		return nil, err
	} else if taken {
		return nil, errs.Conflict("username", store.MsgUsernameTaken)
	}
	if taken, err := s.store.EmailTaken(ctx, in.Email); err != nil {
		return nil, err
	} else if taken {
		return nil, errs.Conflict("email", store.MsgEmailTaken)
	}

	hash, err := util.HashPassword(in.Password, s.bcryptCost)
	if err != nil {
		return nil, err
	}
	u := &models.User{
		Username:     in.Username,
		Email:        in.Email,
		PasswordHash: hash,
		DisplayName:  in.DisplayName,
		IsStaff:      in.IsStaff,
	}
	if err := s.store.CreateUser(ctx, u); err != nil {
		return nil, err
	}
	s.emit(ctx, ActionCreate, KindUser, u.ID.String(), u)
	return u, nil
}

// Credentials identify a user by email or by username. Email wins when both
// are given; the other column is never consulted.
type Credentials struct {
	Email    string
	Username string
	Password string
}

// Authenticate checks credentials. Five consecutive failures lock the
// account for ten minutes; signing in during the deletion buffer restores
// the account.
func (s *Service) Authenticate(ctx context.Context, cred Credentials, ip string) (*models.User, error) {
	var (
		u   *models.User
		err error
	)
	switch {
	case strings.TrimSpace(cred.Email) != "":
		u, err = s.store.FindUserByEmail(ctx, cred.Email)
	case strings.TrimSpace(cred.Username) != "":
		u, err = s.store.FindUserByUsername(ctx, cred.Username)
	default:
		return nil, errs.Invalid("email", "This field is required.")
	}
	if errors.Is(err, errs.ErrNotFound) {
		return nil, ErrBadCredentials
	}
	if err != nil {
		return nil, err
	}

	now := time.Now()
	if u.LockedUntil != nil && now.Before(*u.LockedUntil) {
		return nil, ErrAccountLocked
	}

	if !util.CheckPassword(cred.Password, u.PasswordHash) {
		u.FailedLoginAttempts++
		if u.FailedLoginAttempts >= maxFailedLogins {
			lockUntil := now.Add(lockDuration)
			u.LockedUntil = &lockUntil
			u.FailedLoginAttempts = 0
		}
		if err := s.store.SaveUser(ctx, u); err != nil {
			return nil, err
		}
		return nil, ErrBadCredentials
	}

	if u.DeletedAt != nil {
		if u.DeletePermanentlyAt == nil || !now.Before(*u.DeletePermanentlyAt) {
			return nil, ErrAccountDeleted
		}
		u.DeletedAt = nil
		u.DeletePermanentlyAt = nil
	}

	u.FailedLoginAttempts = 0
	u.LockedUntil = nil
	u.LastLoginIP = ip
	u.LastLoginAt = &now
	if err := s.store.SaveUser(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

type ProfileInput struct {
	Username    *string `json:"username"`
	Email       *string `json:"email"`
	DisplayName *string `json:"display_name" binding:"omitempty,max=64"`
}

// UpdateProfile changes the principal's own account attributes.
func (s *Service) UpdateProfile(ctx context.Context, p *models.User, in ProfileInput) (*models.User, error) {
	if err := authenticated(p); err != nil {
		return nil, err
	}
	u, err := s.store.GetUser(ctx, p.ID)
	if err != nil {
		return nil, err
	}
	if in.Username != nil {
		name := strings.TrimSpace(*in.Username)
		if err := util.ValidateUsername(name); err != nil {
			return nil, errs.Invalid("username", "%s", err.Error())
		}
		if name != u.Username {
			taken, err := s.store.UsernameTaken(ctx, name)
			if err != nil {
				return nil, err
			}
			if taken {
				return nil, errs.Conflict("username", store.MsgUsernameTaken)
			}
		}
		u.Username = name
	}
	if in.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*in.Email))
		if err := checkEmail(email); err != nil {
			return nil, err
		}
		if email != u.Email {
			taken, err := s.store.EmailTaken(ctx, email)
			if err != nil {
				return nil, err
			}
			if taken {
				return nil, errs.Conflict("email", store.MsgEmailTaken)
			}
		}
		u.Email = email
	}
	if in.DisplayName != nil {
		if err := util.ValidateLength(*in.DisplayName, 64); err != nil {
			return nil, errs.Invalid("display_name", "%s", err.Error())
		}
		u.DisplayName = *in.DisplayName
	}
	if err := s.store.SaveUser(ctx, u); err != nil {
		return nil, err
	}
	s.emit(ctx, ActionUpdate, KindUser, u.ID.String(), p)
	return u, nil
}

// ChangePassword replaces the password and revokes every refresh token.
func (s *Service) ChangePassword(ctx context.Context, p *models.User, oldPassword, newPassword string) error {
	if err := authenticated(p); err != nil {
		return err
	}
	err := s.store.Transaction(ctx, func(tx *store.Store) error {
		u, err := tx.GetUser(ctx, p.ID)
		if err != nil {
			return err
		}
		if !util.CheckPassword(oldPassword, u.PasswordHash) {
			return errs.Invalid("old_password", "Wrong password.")
		}
		if err := util.ValidatePassword(newPassword); err != nil {
			return errs.Invalid("new_password", "%s", err.Error())
		}
		hash, err := util.HashPassword(newPassword, s.bcryptCost)
		if err != nil {
			return err
		}
		u.PasswordHash = hash
		if err := tx.SaveUser(ctx, u); err != nil {
			return err
		}
		return tx.RevokeUserSessions(ctx, u.ID)
	})
	if err != nil {
		return err
	}
	s.emit(ctx, ActionUpdate, KindUser, p.ID.String(), p)
	return nil
}

// DeleteAccount marks the principal's account deleted. It is purged once
// the seven-day buffer has passed unless the owner signs in again.
func (s *Service) DeleteAccount(ctx context.Context, p *models.User) (time.Time, error) {
	if err := authenticated(p); err != nil {
		return time.Time{}, err
	}
	now := time.Now()
	purgeAt := now.Add(deletionBuffer)
	err := s.store.Transaction(ctx, func(tx *store.Store) error {
		u, err := tx.GetUser(ctx, p.ID)
		if err != nil {
			return err
		}
		u.DeletedAt = &now
		u.DeletePermanentlyAt = &purgeAt
		if err := tx.SaveUser(ctx, u); err != nil {
			return err
		}
		return tx.RevokeUserSessions(ctx, u.ID)
	})
	if err != nil {
		return time.Time{}, err
	}
	s.emit(ctx, ActionDelete, KindUser, p.ID.String(), p)
	return purgeAt, nil
}

// ListUsers is restricted to staff.
func (s *Service) ListUsers(ctx context.Context, p *models.User, f store.UserFilter) ([]models.User, int64, error) {
	if err := authenticated(p); err != nil {
		return nil, 0, err
	}
	if !p.IsStaff {
		return nil, 0, errs.ErrForbidden
	}
	return s.store.ListUsers(ctx, f)
}

// PurgeDeletedAccounts hard-deletes accounts whose deletion buffer ended
// before now, with everything they own.
func (s *Service) PurgeDeletedAccounts(ctx context.Context, now time.Time) (int, error) {
	ids, err := s.store.AccountsDueForPurge(ctx, now)
	if err != nil {
		return 0, err
	}
	n := 0
	for _, id := range ids {
		if err := s.store.PurgeUser(ctx, id); err != nil {
			return n, fmt.Errorf("purge account %s: %w", id, err)
		}
		n++
		s.emit(ctx, ActionDelete, KindUser, id.String(), &models.User{ID: id})
	}
	return n, nil
}
