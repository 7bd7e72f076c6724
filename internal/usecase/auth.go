package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	domain "github.com/ViduraMC/Bakery-App/internal/entity"
	"github.com/ViduraMC/Bakery-App/internal/logging"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const reservedUsername = "admin"

// Auth registers and checks user credentials. It issues no tokens.
type Auth struct {
	users UserRepo
	cost  int
	now   func() time.Time
}

func NewAuth(users UserRepo) *Auth {
	return &Auth{users: users, cost: bcrypt.DefaultCost, now: time.Now}
}

func (a *Auth) Register(ctx context.Context, username, password string) (*domain.User, error) {
	username = strings.TrimSpace(username)
	if strings.EqualFold(username, reservedUsername) {
		return nil, domain.ErrReservedUsername
	}
	return a.create(ctx, username, password, domain.RoleUser)
}

// Login returns the user on a matching password. Unknown users and wrong
// passwords are indistinguishable to the caller.
func (a *Auth) Login(ctx context.Context, username, password string) (*domain.User, error) {
	u, err := a.users.GetByUsername(ctx, strings.TrimSpace(username))
	if errors.Is(err, domain.ErrUserNotFound) {
		return nil, domain.ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return nil, domain.ErrInvalidCredentials
	}
	return u, nil
}

// EnsureAdmin creates the admin account when it does not exist yet.
func (a *Auth) EnsureAdmin(ctx context.Context, username, password string) error {
	if username == "" || password == "" {
		return nil
	}
	_, err := a.users.GetByUsername(ctx, username)
	if err == nil {
		return nil
	}
	if !errors.Is(err, domain.ErrUserNotFound) {
		return err
	}
	if _, err := a.create(ctx, username, password, domain.RoleAdmin); err != nil {
		return err
	}
	logging.FromCtx(ctx).Info("admin account created", "username", username)
	return nil
}

func (a *Auth) create(ctx context.Context, username, password string, role domain.Role) (*domain.User, error) {
	if username == "" || password == "" {
		return nil, domain.Invalid("username and password are required")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), a.cost)
	if errors.Is(err, bcrypt.ErrPasswordTooLong) {
		return nil, domain.Invalid("password must be at most 72 bytes")
	}
	if err != nil {
		return nil, err
	}
	u := &domain.User{
		ID:           uuid.NewString(),
		Username:     username,
		PasswordHash: string(hash),
		Role:         role,
		CreatedAt:    a.now().UTC(),
	}
	if err := a.users.Create(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}
