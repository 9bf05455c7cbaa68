package user

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2/log"
	"github.com/wichananm65/storefront/internal/auth"
	"github.com/wichananm65/storefront/internal/domain/apperr"
	"github.com/wichananm65/storefront/internal/domain/entity"
	"github.com/wichananm65/storefront/internal/domain/repository"
	"github.com/wichananm65/storefront/internal/validation"
	"golang.org/x/crypto/bcrypt"
)

// TokenIssuer signs session tokens. *auth.Verifier satisfies it.
type TokenIssuer interface {
	Issue(sub auth.Subject) (string, time.Time, error)
}

type Service struct {
	store    repository.Store
	tokens   TokenIssuer
	hashCost int
}

func NewService(store repository.Store, tokens TokenIssuer) *Service {
	return &Service{store: store, tokens: tokens, hashCost: bcrypt.DefaultCost}
}

var errInvalidCredentials = apperr.New(apperr.Unauthorized, "invalid email or password")

func (s *Service) Register(ctx context.Context, in RegisterInput) (entity.User, error) {
	if err := validation.Struct(in); err != nil {
		return entity.User{}, err
	}

	hashed, err := s.hash(in.Password)
	if err != nil {
		return entity.User{}, err
	}
	u := entity.User{
		Name:     strings.TrimSpace(in.Name),
		Email:    normalizeEmail(in.Email),
		Mobile:   strings.TrimSpace(in.Mobile),
		Password: hashed,
		Address:  in.Address,
	}
	if err := s.store.Repos().Users.Create(ctx, &u); err != nil {
		return entity.User{}, err
	}
	log.Infow("account registered", "user", u.ID)
	return u, nil
}

// Login checks the credentials and issues a token carrying the account's roles.
func (s *Service) Login(ctx context.Context, in LoginInput) (Session, error) {
	if err := validation.Struct(in); err != nil {
		return Session{}, err
	}

	u, err := s.store.Repos().Users.GetByEmail(ctx, normalizeEmail(in.Email))
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return Session{}, errInvalidCredentials
		}
		return Session{}, err
	}
	if bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(in.Password)) != nil {
		return Session{}, errInvalidCredentials
	}

	token, expires, err := s.tokens.Issue(auth.Subject{ID: u.ID, Roles: auth.RolesFor(u.IsAdmin)})
	if err != nil {
		return Session{}, err
	}
	return Session{Token: token, ExpiresAt: expires, User: u}, nil
}

func (s *Service) Profile(ctx context.Context, sub auth.Subject) (entity.User, error) {
	return s.store.Repos().Users.GetByID(ctx, sub.ID)
}

func (s *Service) UpdateProfile(ctx context.Context, sub auth.Subject, in ProfileInput) (entity.User, error) {
	if err := validation.Struct(in); err != nil {
		return entity.User{}, err
	}

	var out entity.User
	err := s.store.WithinTx(ctx, func(tx repository.Repositories) error {
		u, err := tx.Users.GetByID(ctx, sub.ID)
		if err != nil {
			return err
		}
		u.Name = strings.TrimSpace(in.Name)
		u.Email = normalizeEmail(in.Email)
		u.Mobile = strings.TrimSpace(in.Mobile)
		u.Address = in.Address
		if err := tx.Users.Update(ctx, &u); err != nil {
			return err
		}
		out = u
		return nil
	})
	return out, err
}

func (s *Service) List(ctx context.Context, sub auth.Subject) ([]entity.User, error) {
	if err := requireAdmin(sub); err != nil {
		return nil, err
	}
	return s.store.Repos().Users.List(ctx)
}

func (s *Service) Create(ctx context.Context, sub auth.Subject, in AccountInput) (entity.User, error) {
	if err := requireAdmin(sub); err != nil {
		return entity.User{}, err
	}
	if err := validation.Struct(in); err != nil {
		return entity.User{}, err
	}
	if in.Password == "" {
		return entity.User{}, apperr.New(apperr.ValidationFailed, "invalid payload").
			WithDetail("password", "is required")
	}

	hashed, err := s.hash(in.Password)
	if err != nil {
		return entity.User{}, err
	}
	u := entity.User{
		Name:     strings.TrimSpace(in.Name),
		Email:    normalizeEmail(in.Email),
		Mobile:   strings.TrimSpace(in.Mobile),
		Password: hashed,
		Address:  in.Address,
		IsAdmin:  in.IsAdmin,
	}
	if err := s.store.Repos().Users.Create(ctx, &u); err != nil {
		return entity.User{}, err
	}
	log.Infow("account created", "user", u.ID, "admin", u.IsAdmin, "by", sub.ID)
	return u, nil
}

func (s *Service) Update(ctx context.Context, sub auth.Subject, id int64, in AccountInput) (entity.User, error) {
	if err := requireAdmin(sub); err != nil {
		return entity.User{}, err
	}
	if err := validation.Struct(in); err != nil {
		return entity.User{}, err
	}

	var out entity.User
	err := s.store.WithinTx(ctx, func(tx repository.Repositories) error {
		u, err := tx.Users.GetByID(ctx, id)
		if err != nil {
			return err
		}
		u.Name = strings.TrimSpace(in.Name)
		u.Email = normalizeEmail(in.Email)
		u.Mobile = strings.TrimSpace(in.Mobile)
		u.Address = in.Address
		u.IsAdmin = in.IsAdmin
		if in.Password != "" {
			if u.Password, err = s.hash(in.Password); err != nil {
				return err
			}
		}
		if err := tx.Users.Update(ctx, &u); err != nil {
			return err
		}
		out = u
		return nil
	})
	return out, err
}

// Delete removes an account and its cart. Orders are kept.
func (s *Service) Delete(ctx context.Context, sub auth.Subject, id int64) error {
	if err := requireAdmin(sub); err != nil {
		return err
	}
	if id == sub.ID {
		return apperr.New(apperr.Forbidden, "admins cannot delete their own account")
	}
	if err := s.store.Repos().Users.Delete(ctx, id); err != nil {
		return err
	}
	log.Infow("account deleted", "user", id, "by", sub.ID)
	return nil
}

// EnsureAdmin creates an admin account, or promotes the account already using
// in.Email. It reports whether a new account was created.
func (s *Service) EnsureAdmin(ctx context.Context, in AccountInput) (entity.User, bool, error) {
	in.IsAdmin = true
	if err := validation.Struct(in); err != nil {
		return entity.User{}, false, err
	}

	var (
		out     entity.User
		created bool
	)
	err := s.store.WithinTx(ctx, func(tx repository.Repositories) error {
		u, err := tx.Users.GetByEmail(ctx, normalizeEmail(in.Email))
		switch {
		case errors.Is(err, apperr.ErrNotFound):
			if in.Password == "" {
				return apperr.New(apperr.ValidationFailed, "a password is required for a new account")
			}
			u = entity.User{
				Name:    strings.TrimSpace(in.Name),
				Email:   normalizeEmail(in.Email),
				Mobile:  strings.TrimSpace(in.Mobile),
				Address: in.Address,
				IsAdmin: true,
			}
			if u.Password, err = s.hash(in.Password); err != nil {
				return err
			}
			if err := tx.Users.Create(ctx, &u); err != nil {
				return err
			}
			created = true
		case err != nil:
			return err
		default:
			u.IsAdmin = true
			if in.Password != "" {
				if u.Password, err = s.hash(in.Password); err != nil {
					return err
				}
			}
			if err := tx.Users.Update(ctx, &u); err != nil {
				return err
			}
		}
		out = u
		return nil
	})
	return out, created, err
}

func (s *Service) hash(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), s.hashCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hashed), nil
}

func requireAdmin(sub auth.Subject) error {
	if !sub.IsAdmin() {
		return apperr.New(apperr.Forbidden, "admin role required")
	}
	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
