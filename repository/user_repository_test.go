package repository

import (
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"CupBack/model"
)

var userCols = []string{"id", "username", "password_hash", "nickname", "name",
	"department", "year", "email", "auth_id", "created_at"}

func newUserMock(t *testing.T) (UserRepository, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	return NewMySQLUserRepository(db), mock, func() {
		if err := mock.ExpectationsWereMet(); err != nil {
			t.Errorf("unmet expectations: %v", err)
		}
		db.Close()
	}
}

func TestCreateUser(t *testing.T) {
	repo, mock, done := newUserMock(t)
	defer done()

	now := time.Now()
	mock.ExpectPrepare(regexp.QuoteMeta("INSERT INTO users")).
		ExpectExec().
		WithArgs("u1", "alice", "hash", "ali", sqlmock.AnyArg(), sqlmock.AnyArg(),
			sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), now).
		WillReturnResult(sqlmock.NewResult(1, 1))

	err := repo.CreateUser(&model.User{
		ID: "u1", Username: "alice", PasswordHash: "hash", Nickname: "ali",
		Department: "CS", Email: "a@campus.test", CreatedAt: now,
	})
	if err != nil {
		t.Fatalf("CreateUser error: %v", err)
	}
}

func TestCreateUser_Duplicate(t *testing.T) {
	repo, mock, done := newUserMock(t)
	defer done()

	mock.ExpectPrepare(regexp.QuoteMeta("INSERT INTO users")).
		ExpectExec().
		WillReturnError(errors.New("Error 1062: Duplicate entry 'alice' for key 'username'"))

	err := repo.CreateUser(&model.User{ID: "u1", Username: "alice", Nickname: "ali"})
	if !errors.Is(err, ErrDuplicateUser) {
		t.Fatalf("want ErrDuplicateUser, got %v", err)
	}
}

func TestGetUserByID(t *testing.T) {
	repo, mock, done := newUserMock(t)
	defer done()

	now := time.Now()
	rows := sqlmock.NewRows(userCols).
		AddRow("u1", "alice", "hash", "ali", "Alice", "CS", "2024", "a@campus.test", "auth-9", now)
	mock.ExpectQuery(regexp.QuoteMeta("FROM users WHERE id = ?")).
		WithArgs("u1").
		WillReturnRows(rows)

	user, err := repo.GetUserByID("u1")
	if err != nil {
		t.Fatalf("GetUserByID error: %v", err)
	}
	if user == nil || user.Nickname != "ali" || user.AuthID != "auth-9" || user.Department != "CS" {
		t.Errorf("user = %+v", user)
	}
}

func TestGetUserByID_NotFound(t *testing.T) {
	repo, mock, done := newUserMock(t)
	defer done()

	mock.ExpectQuery(regexp.QuoteMeta("FROM users WHERE id = ?")).
		WithArgs("nobody").
		WillReturnRows(sqlmock.NewRows(userCols))

	user, err := repo.GetUserByID("nobody")
	if err != nil {
		t.Fatalf("GetUserByID error: %v", err)
	}
	if user != nil {
		t.Errorf("want nil user for missing row, got %+v", user)
	}
}

func TestGetUserByID_NullOptionalColumns(t *testing.T) {
	repo, mock, done := newUserMock(t)
	defer done()

	rows := sqlmock.NewRows(userCols).
		AddRow("u1", "alice", "hash", "ali", nil, nil, nil, nil, nil, time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("FROM users WHERE id = ?")).
		WithArgs("u1").
		WillReturnRows(rows)

	user, err := repo.GetUserByID("u1")
	if err != nil {
		t.Fatalf("GetUserByID error: %v", err)
	}
	if user.Department != "" || user.Email != "" || user.AuthID != "" {
		t.Errorf("NULL columns should map to empty strings: %+v", user)
	}
}

func TestGetUsersByEmail(t *testing.T) {
	repo, mock, done := newUserMock(t)
	defer done()

	now := time.Now()
	rows := sqlmock.NewRows(userCols).
		AddRow("u1", "alice", "h", "ali", nil, nil, nil, "shared@campus.test", nil, now).
		AddRow("u2", "bob", "h", "bobby", nil, nil, nil, "shared@campus.test", nil, now)
	mock.ExpectQuery(regexp.QuoteMeta("FROM users WHERE email = ?")).
		WithArgs("shared@campus.test").
		WillReturnRows(rows)

	users, err := repo.GetUsersByEmail("shared@campus.test")
	if err != nil {
		t.Fatalf("GetUsersByEmail error: %v", err)
	}
	if len(users) != 2 {
		t.Errorf("len = %d, want 2", len(users))
	}
}

func TestListUsers_OrderedByRegistration(t *testing.T) {
	repo, mock, done := newUserMock(t)
	defer done()

	now := time.Now()
	rows := sqlmock.NewRows(userCols).
		AddRow("u1", "alice", "h", "ali", nil, nil, nil, nil, nil, now).
		AddRow("u2", "bob", "h", "bobby", nil, nil, nil, nil, nil, now.Add(time.Minute))
	mock.ExpectQuery(regexp.QuoteMeta("FROM users ORDER BY created_at ASC")).
		WillReturnRows(rows)

	users, err := repo.ListUsers()
	if err != nil {
		t.Fatalf("ListUsers error: %v", err)
	}
	if len(users) != 2 || users[0].ID != "u1" {
		t.Errorf("users = %+v", users)
	}
}

func TestCountUsers(t *testing.T) {
	repo, mock, done := newUserMock(t)
	defer done()

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM users")).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(7))

	n, err := repo.CountUsers()
	if err != nil {
		t.Fatalf("CountUsers error: %v", err)
	}
	if n != 7 {
		t.Errorf("count = %d, want 7", n)
	}
}
