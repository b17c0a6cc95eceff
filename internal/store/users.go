package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/aurelab/aurelab-manager/internal/dependency"
	"github.com/aurelab/aurelab-manager/internal/entity"
	gerr "github.com/aurelab/aurelab-manager/internal/errors"
)

type adminStore struct {
	*MYSQLStore
}

// Admin returns an object implementing admin interface
func (ms *MYSQLStore) Admin() dependency.Admin {
	return &adminStore{
		MYSQLStore: ms,
	}
}

// AddUser adds a new back office user with a password hash and role.
func (ms *MYSQLStore) AddUser(ctx context.Context, un, email, pwHash string, role entity.UserRole) error {
	query := `
	INSERT INTO admin_user (username, email, password_hash, role)
	VALUES (:username, :email, :passwordHash, :role)
	ON DUPLICATE KEY UPDATE password_hash = :passwordHash, email = :email, role = :role`
	err := ExecNamed(ctx, ms.DB(), query, map[string]any{
		"username":     un,
		"email":        email,
		"passwordHash": pwHash,
		"role":         string(role),
	})
	if err != nil {
		return fmt.Errorf("can't add user: %w", err)
	}
	return nil
}

func (ms *MYSQLStore) DeleteUser(ctx context.Context, username string) error {
	res, err := ms.DB().ExecContext(ctx, `DELETE FROM admin_user WHERE username = ?`, username)
	if err != nil {
		return fmt.Errorf("can't delete user: %w", err)
	}
	ra, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("can't get affected rows: %w", err)
	}
	if ra == 0 {
		return gerr.ErrUserNotFound
	}
	return nil
}

func (ms *MYSQLStore) ChangePassword(ctx context.Context, un, newHash string) error {
	err := ExecNamed(ctx, ms.DB(), `
		UPDATE admin_user SET password_hash = :passwordHash WHERE username = :username`,
		map[string]any{
			"username":     un,
			"passwordHash": newHash,
		})
	if err != nil {
		return fmt.Errorf("can't change password: %w", err)
	}
	return nil
}

func (ms *MYSQLStore) ChangeRole(ctx context.Context, un string, role entity.UserRole) error {
	err := ExecNamed(ctx, ms.DB(), `
		UPDATE admin_user SET role = :role WHERE username = :username`,
		map[string]any{
			"username": un,
			"role":     string(role),
		})
	if err != nil {
		return fmt.Errorf("can't change role: %w", err)
	}
	return nil
}

func (ms *MYSQLStore) PasswordHashByUsername(ctx context.Context, un string) (string, error) {
	var hash string
	err := ms.DB().GetContext(ctx, &hash,
		`SELECT password_hash FROM admin_user WHERE username = ?`, un)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", gerr.ErrUserNotFound
		}
		return "", fmt.Errorf("can't get password hash: %w", err)
	}
	return hash, nil
}

func (ms *MYSQLStore) GetUserByUsername(ctx context.Context, username string) (*entity.AdminUser, error) {
	u, err := QueryNamedOne[entity.AdminUser](ctx, ms.DB(), `
		SELECT id, username, email, password_hash, role, created_at
		FROM admin_user WHERE username = :username`,
		map[string]any{"username": username})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, gerr.ErrUserNotFound
		}
		return nil, fmt.Errorf("can't get user by username: %w", err)
	}
	return &u, nil
}

func (ms *MYSQLStore) ListUsers(ctx context.Context) ([]entity.AdminUser, error) {
	users, err := QueryListNamed[entity.AdminUser](ctx, ms.DB(), `
		SELECT id, username, email, password_hash, role, created_at
		FROM admin_user ORDER BY username`, map[string]any{})
	if err != nil {
		return nil, fmt.Errorf("can't list users: %w", err)
	}
	return users, nil
}
