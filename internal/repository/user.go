package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/go-sql-driver/mysql"

	"github.com/diarynotes/diary-go/internal/model"
)

var (
	ErrUserNotFound   = errors.New("user not found")
	ErrDuplicateEmail = errors.New("email or signup code already exists")
)

const userColumns = `id, email, signup_code, pin_hash, role_id, role_name,
	first_name, last_name, full_name, profile_image_id, created_at`

// UserRepository handles account persistence in MySQL.
type UserRepository struct {
	db *sql.DB
}

// NewUserRepository creates a new UserRepository.
func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db}
}

// Create inserts an account. The caller assigns the user id.
func (r *UserRepository) Create(ctx context.Context, acct *model.Account) error {
	query := `INSERT INTO users (id, email, signup_code, pin_hash, role_id, role_name,
		first_name, last_name, full_name, profile_image_id) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	u := acct.User
	_, err := r.db.ExecContext(ctx, query,
		u.ID, nullString(u.Email), nullString(acct.SignupCode), acct.PINHash,
		u.RoleID, u.RoleName, u.FirstName, u.LastName, u.FullName, u.ProfileImageID,
	)
	if err != nil {
		if isDuplicateEntryError(err) {
			return ErrDuplicateEmail
		}
		return err
	}
	return nil
}

// GetByEmail retrieves an account by email address.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*model.Account, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE email = ?`, email)
}

// GetBySignupCode retrieves an account by its invitation code. Codes are case sensitive.
func (r *UserRepository) GetBySignupCode(ctx context.Context, code string) (*model.Account, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE BINARY signup_code = ?`, code)
}

// GetByID retrieves an account by user id.
func (r *UserRepository) GetByID(ctx context.Context, id string) (*model.Account, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id)
}

func (r *UserRepository) getOne(ctx context.Context, query string, arg any) (*model.Account, error) {
	var (
		acct       model.Account
		email      sql.NullString
		signupCode sql.NullString
	)
	u := &acct.User
	err := r.db.QueryRowContext(ctx, query, arg).Scan(
		&u.ID, &email, &signupCode, &acct.PINHash, &u.RoleID, &u.RoleName,
		&u.FirstName, &u.LastName, &u.FullName, &u.ProfileImageID, &acct.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	u.Email = email.String
	acct.SignupCode = signupCode.String
	return &acct, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

// isDuplicateEntryError checks if a MySQL error is a duplicate entry error (code 1062).
func isDuplicateEntryError(err error) bool {
	var mysqlErr *mysql.MySQLError
	if errors.As(err, &mysqlErr) {
		return mysqlErr.Number == 1062
	}
	return err != nil && strings.Contains(err.Error(), "Duplicate entry")
}
