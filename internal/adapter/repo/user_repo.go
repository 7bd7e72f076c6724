package repo

import (
	"context"
	"database/sql"
	"errors"

	domain "github.com/ViduraMC/Bakery-App/internal/entity"
	"github.com/ViduraMC/Bakery-App/internal/usecase"
)

type SQLUserRepo struct{ db *sql.DB }

func NewSQLUserRepo(db *sql.DB) *SQLUserRepo { return &SQLUserRepo{db: db} }

func (r *SQLUserRepo) Create(ctx context.Context, u *domain.User) error {
	_, err := r.db.ExecContext(ctx, `
INSERT INTO users (id,username,password_hash,role,created_at)
VALUES (?,?,?,?,?)`, u.ID, u.Username, u.PasswordHash, string(u.Role), u.CreatedAt)
	if isUniqueViolation(err) {
		return domain.ErrUsernameTaken
	}
	return err
}

func (r *SQLUserRepo) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	var (
		u    domain.User
		role string
	)
	err := r.db.QueryRowContext(ctx, `
SELECT id,username,password_hash,role,created_at FROM users WHERE username=?`, username).
		Scan(&u.ID, &u.Username, &u.PasswordHash, &role, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	u.Role = domain.Role(role)
	return &u, nil
}

var _ usecase.UserRepo = (*SQLUserRepo)(nil)
