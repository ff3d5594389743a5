package wiki

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/charles1614/deepwiki-sub003/internal/auth"
	"github.com/charles1614/deepwiki-sub003/pkg/deepwiki"
)

// uniqueViolation is the SQLSTATE for unique constraint violations, used to
// map duplicate inserts onto ErrAlreadyExists.
const uniqueViolation = "23505"

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

// Users manages accounts.
type Users struct {
	store deepwiki.Store
}

func NewUsers(store deepwiki.Store) *Users {
	return &Users{store: store}
}

// Create registers a new user with a bcrypt-hashed password.
func (u *Users) Create(ctx context.Context, email, name, password string, role deepwiki.Role) (*deepwiki.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || !strings.Contains(email, "@") {
		return nil, fmt.Errorf("invalid email %q", email)
	}
	if !role.IsValid() {
		return nil, fmt.Errorf("invalid role %q", role)
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, err
	}

	user := &deepwiki.User{
		ID:           uuid.New(),
		Email:        email,
		Name:         name,
		PasswordHash: hash,
		Role:         role,
		CreatedAt:    time.Now().UTC(),
	}

	_, err = u.store.Exec(ctx,
		`INSERT INTO users (id, email, name, password_hash, role, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		user.ID, user.Email, user.Name, user.PasswordHash, string(user.Role), user.CreatedAt)
	if isUniqueViolation(err) {
		return nil, fmt.Errorf("user %s: %w", email, deepwiki.ErrAlreadyExists)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return user, nil
}

// Authenticate verifies credentials and returns the user on success.
// Unknown email and wrong password both map to ErrUnauthorized so callers
// cannot distinguish them.
func (u *Users) Authenticate(ctx context.Context, email, password string) (*deepwiki.User, error) {
	user, err := u.GetByEmail(ctx, email)
	if errors.Is(err, deepwiki.ErrNotFound) {
		return nil, deepwiki.ErrUnauthorized
	}
	if err != nil {
		return nil, err
	}
	if !auth.CheckPassword(user.PasswordHash, password) {
		return nil, deepwiki.ErrUnauthorized
	}
	return user, nil
}

const userColumns = `id, email, name, password_hash, role, created_at`

func scanUserDest(user *deepwiki.User, role *string) []any {
	return []any{&user.ID, &user.Email, &user.Name, &user.PasswordHash, role, &user.CreatedAt}
}

func (u *Users) GetByEmail(ctx context.Context, email string) (*deepwiki.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	var user deepwiki.User
	var role string
	err := u.store.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = $1`,
		scanUserDest(&user, &role), email)
	if err != nil {
		return nil, err
	}
	user.Role = deepwiki.Role(role)
	return &user, nil
}

func (u *Users) GetByID(ctx context.Context, id uuid.UUID) (*deepwiki.User, error) {
	var user deepwiki.User
	var role string
	err := u.store.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1`,
		scanUserDest(&user, &role), id)
	if err != nil {
		return nil, err
	}
	user.Role = deepwiki.Role(role)
	return &user, nil
}

func (u *Users) List(ctx context.Context) ([]deepwiki.User, error) {
	rows, err := u.store.Query(ctx,
		`SELECT `+userColumns+` FROM users ORDER BY created_at, email`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []deepwiki.User
	for rows.Next() {
		var user deepwiki.User
		var role string
		if err := rows.Scan(&user.ID, &user.Email, &user.Name, &user.PasswordHash, &role, &user.CreatedAt); err != nil {
			return nil, err
		}
		user.Role = deepwiki.Role(role)
		users = append(users, user)
	}
	return users, rows.Err()
}

// SetRole changes a user's role.
func (u *Users) SetRole(ctx context.Context, id uuid.UUID, role deepwiki.Role) error {
	if !role.IsValid() {
		return fmt.Errorf("invalid role %q", role)
	}
	tag, err := u.store.Exec(ctx, `UPDATE users SET role = $2 WHERE id = $1`, id, string(role))
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return deepwiki.ErrNotFound
	}
	return nil
}

func (u *Users) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := u.store.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return deepwiki.ErrNotFound
	}
	return nil
}
