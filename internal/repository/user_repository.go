package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/iliyamo/storefront/internal/model"
)

type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

const userColumns = "id,username,email,password_hash,provider,provider_id,first_name,last_name,avatar_url,role,is_active,created_at,updated_at"

// Create inserts the user and fills in its ID. Nullable columns are written
// as NULL when the corresponding field is empty so that the unique
// (provider, provider_id) index never collides on empty pairs.
func (r *UserRepo) Create(ctx context.Context, u *model.User) error {
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	if u.Role == "" {
		u.Role = model.RoleCustomer
	}
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO users (username, email, password_hash, provider, provider_id, first_name, last_name, avatar_url, role) VALUES (?,?,?,?,?,?,?,?,?)",
		u.Username, u.Email,
		nullable(u.PasswordHash), nullable(u.Provider), nullable(u.ProviderID),
		nullable(u.FirstName), nullable(u.LastName), nullable(u.AvatarURL),
		u.Role)
	if err != nil {
		return duplicateError(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	u.ID = uint64(id)
	u.IsActive = true
	return nil
}

// GetByEmail fetches a user by normalized email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	return r.getOne(ctx, "SELECT "+userColumns+" FROM users WHERE email=? LIMIT 1", email)
}

// GetByID fetches a user by id.
func (r *UserRepo) GetByID(ctx context.Context, id uint64) (model.User, error) {
	return r.getOne(ctx, "SELECT "+userColumns+" FROM users WHERE id=? LIMIT 1", id)
}

// GetByUsername fetches a user by username.
func (r *UserRepo) GetByUsername(ctx context.Context, username string) (model.User, error) {
	return r.getOne(ctx, "SELECT "+userColumns+" FROM users WHERE username=? LIMIT 1", username)
}

// GetByProvider fetches a user by its linked OAuth identity.
func (r *UserRepo) GetByProvider(ctx context.Context, provider, providerID string) (model.User, error) {
	return r.getOne(ctx,
		"SELECT "+userColumns+" FROM users WHERE provider=? AND provider_id=? LIMIT 1",
		provider, providerID)
}

// AttachProvider links an OAuth identity to an existing account that does not
// have one yet. Other fields are left untouched. A duplicate-key failure
// means another request linked the same identity concurrently.
func (r *UserRepo) AttachProvider(ctx context.Context, id uint64, provider, providerID string) error {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE users SET provider=?, provider_id=? WHERE id=? AND provider IS NULL",
		provider, providerID, id)
	if err != nil {
		return duplicateError(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrIdentityConflict
	}
	return nil
}

// List returns all users ordered by creation time, newest first.
func (r *UserRepo) List(ctx context.Context) ([]model.User, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+userColumns+" FROM users ORDER BY created_at DESC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := []model.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// Update writes the mutable profile fields of the user. Email and password
// are deliberately not updatable through this path.
func (r *UserRepo) Update(ctx context.Context, u *model.User) error {
	// RowsAffected is 0 both for a missing row and for a no-op update, so
	// existence is checked by the caller, not here.
	_, err := r.DB.ExecContext(ctx,
		"UPDATE users SET username=?, first_name=?, last_name=?, avatar_url=?, role=?, is_active=? WHERE id=?",
		u.Username, nullable(u.FirstName), nullable(u.LastName), nullable(u.AvatarURL),
		u.Role, u.IsActive, u.ID)
	return duplicateError(err)
}

// Delete removes a user row.
func (r *UserRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.DB.ExecContext(ctx, "DELETE FROM users WHERE id=?", id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *UserRepo) getOne(ctx context.Context, query string, args ...any) (model.User, error) {
	u, err := scanUser(r.DB.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return model.User{}, ErrNotFound
	}
	return u, err
}

type scanner interface{ Scan(dest ...any) error }

func scanUser(row scanner) (model.User, error) {
	var (
		u                              model.User
		hash, provider, providerID     sql.NullString
		firstName, lastName, avatarURL sql.NullString
	)
	err := row.Scan(&u.ID, &u.Username, &u.Email, &hash, &provider, &providerID,
		&firstName, &lastName, &avatarURL, &u.Role, &u.IsActive, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return model.User{}, err
	}
	u.PasswordHash = hash.String
	u.Provider = provider.String
	u.ProviderID = providerID.String
	u.FirstName = firstName.String
	u.LastName = lastName.String
	u.AvatarURL = avatarURL.String
	return u, nil
}

// nullable maps empty strings onto SQL NULL.
func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
