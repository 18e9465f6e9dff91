package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"bms_telemetry/internal/models"
	"bms_telemetry/internal/repository/db"

	"github.com/jackc/pgx/v5/pgconn"
)

// ErrDuplicateEmail is returned by Create when the email is already registered.
var ErrDuplicateEmail = errors.New("email already exists")

const pgUniqueViolation = "23505"

type UserRepository struct {
	db      *sql.DB
	dialect db.Dialect
}

func NewUserRepository(conn *sql.DB, d db.Dialect) *UserRepository {
	return &UserRepository{db: conn, dialect: d}
}

// Ensure implementation of Authorization interface at compile time.
var _ Authorization = (*UserRepository)(nil)

const (
	insertUserSQL        = `INSERT INTO users (name, email, password, role) VALUES (?, ?, ?, ?) RETURNING id`
	selectUserByEmailSQL = `SELECT id, name, email, role, password FROM users WHERE email = ?`
	selectUserByIDSQL    = `SELECT id, name, email, role, password FROM users WHERE id = ?`
)

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgUniqueViolation
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// Create inserts a new user and returns its ID. An empty role defaults to "user".
func (r *UserRepository) Create(ctx context.Context, u models.User) (int, error) {
	role := u.Role
	if role == "" {
		role = models.RoleUser
	}
	var id int
	err := r.db.QueryRowContext(ctx, r.dialect.Rebind(insertUserSQL), u.Name, u.Email, u.PasswordHash, role).Scan(&id)
	if err != nil {
		if isUniqueViolation(err) {
			return 0, ErrDuplicateEmail
		}
		return 0, fmt.Errorf("insert user %q: %w", u.Email, err)
	}
	return id, nil
}

// GetByEmail fetches a user by email. Returns (nil, nil) if not found.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.get(ctx, selectUserByEmailSQL, email)
}

// GetByID fetches a user by id. Returns (nil, nil) if not found.
func (r *UserRepository) GetByID(ctx context.Context, id int) (*models.User, error) {
	return r.get(ctx, selectUserByIDSQL, id)
}

func (r *UserRepository) get(ctx context.Context, q string, arg any) (*models.User, error) {
	var u models.User
	err := r.db.QueryRowContext(ctx, r.dialect.Rebind(q), arg).Scan(&u.ID, &u.Name, &u.Email, &u.Role, &u.PasswordHash)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("select user %v: %w", arg, err)
	}
	return &u, nil
}
