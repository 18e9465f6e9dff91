// auth_repo_test.go
package repository

import (
	"errors"
	"regexp"
	"testing"

	"bms_telemetry/internal/models"
	"bms_telemetry/internal/repository/db"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
)

func TestUserRepository_Create(t *testing.T) {
	tests := []struct {
		name           string
		user           models.User
		mockExpect     func(sqlmock.Sqlmock)
		wantID         int
		wantErr        error
		errContainsStr string
	}{
		{
			name: "success defaults role",
			user: models.User{Name: "Alice", Email: "alice@bms.com", PasswordHash: "h123"},
			mockExpect: func(m sqlmock.Sqlmock) {
				m.ExpectQuery(regexp.QuoteMeta(insertUserSQL)).
					WithArgs("Alice", "alice@bms.com", "h123", "user").
					WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(42))
			},
			wantID: 42,
		},
		{
			name: "sqlite duplicate email",
			user: models.User{Name: "Bob", Email: "bob@bms.com", PasswordHash: "h", Role: "admin"},
			mockExpect: func(m sqlmock.Sqlmock) {
				m.ExpectQuery(regexp.QuoteMeta(insertUserSQL)).
					WithArgs("Bob", "bob@bms.com", "h", "admin").
					WillReturnError(errors.New("constraint failed: UNIQUE constraint failed: users.email (2067)"))
			},
			wantErr: ErrDuplicateEmail,
		},
		{
			name: "postgres duplicate email",
			user: models.User{Name: "Bob", Email: "bob@bms.com", PasswordHash: "h"},
			mockExpect: func(m sqlmock.Sqlmock) {
				m.ExpectQuery(regexp.QuoteMeta(insertUserSQL)).
					WillReturnError(&pgconn.PgError{Code: "23505"})
			},
			wantErr: ErrDuplicateEmail,
		},
		{
			name: "other db error",
			user: models.User{Name: "Carol", Email: "carol@bms.com", PasswordHash: "h"},
			mockExpect: func(m sqlmock.Sqlmock) {
				m.ExpectQuery(regexp.QuoteMeta(insertUserSQL)).
					WillReturnError(errors.New("db exec failed"))
			},
			errContainsStr: "insert user",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			conn, mock := newMock(t)
			repo := NewUserRepository(conn, db.SQLite)
			tc.mockExpect(mock)

			id, err := repo.Create(ctx(t), tc.user)
			switch {
			case tc.wantErr != nil:
				if !errors.Is(err, tc.wantErr) {
					t.Fatalf("expected %v, got %v", tc.wantErr, err)
				}
			case tc.errContainsStr != "":
				if err == nil || !regexp.MustCompile(tc.errContainsStr).MatchString(err.Error()) {
					t.Fatalf("expected error containing %q, got %v", tc.errContainsStr, err)
				}
			default:
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				if id != tc.wantID {
					t.Fatalf("id: got %d, want %d", id, tc.wantID)
				}
			}
		})
	}
}

func TestUserRepository_GetByEmail(t *testing.T) {
	cols := []string{"id", "name", "email", "role", "password"}

	t.Run("found", func(t *testing.T) {
		conn, mock := newMock(t)
		repo := NewUserRepository(conn, db.SQLite)
		mock.ExpectQuery(regexp.QuoteMeta(selectUserByEmailSQL)).
			WithArgs("admin@bms.com").
			WillReturnRows(sqlmock.NewRows(cols).AddRow(1, "Admin User", "admin@bms.com", "admin", "hash"))

		u, err := repo.GetByEmail(ctx(t), "admin@bms.com")
		if err != nil || u == nil {
			t.Fatalf("GetByEmail: %v, %v", u, err)
		}
		if u.ID != 1 || u.Role != models.RoleAdmin || u.PasswordHash != "hash" {
			t.Fatalf("unexpected user: %+v", u)
		}
	})

	t.Run("not found returns nil, nil", func(t *testing.T) {
		conn, mock := newMock(t)
		repo := NewUserRepository(conn, db.SQLite)
		mock.ExpectQuery(regexp.QuoteMeta(selectUserByEmailSQL)).
			WithArgs("ghost@bms.com").
			WillReturnRows(sqlmock.NewRows(cols))

		u, err := repo.GetByEmail(ctx(t), "ghost@bms.com")
		if err != nil || u != nil {
			t.Fatalf("expected nil, nil; got %v, %v", u, err)
		}
	})
}

func TestUserRepository_GetByID(t *testing.T) {
	conn, mock := newMock(t)
	repo := NewUserRepository(conn, db.Postgres)
	mock.ExpectQuery(regexp.QuoteMeta("WHERE id = $1")).
		WithArgs(9).
		WillReturnError(errors.New("boom"))

	if _, err := repo.GetByID(ctx(t), 9); err == nil {
		t.Fatal("expected error")
	}
}
