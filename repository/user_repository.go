package repository

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"CupBack/model"
)

// ErrDuplicateUser is returned when a username or nickname is already taken.
var ErrDuplicateUser = errors.New("username or nickname already exists")

// UserRepository defines the interface for user data operations.
type UserRepository interface {
	CreateUser(user *model.User) error
	GetUserByID(id string) (*model.User, error)
	GetUserByUsername(username string) (*model.User, error)
	GetUserByNickname(nickname string) (*model.User, error)
	GetUsersByEmail(email string) ([]model.User, error)
	ListUsers() ([]model.User, error)
	CountUsers() (int, error)
}

// mysqlUserRepository implements UserRepository for MySQL.
type mysqlUserRepository struct {
	db *sql.DB
}

// NewMySQLUserRepository creates a new mysqlUserRepository.
func NewMySQLUserRepository(db *sql.DB) UserRepository {
	return &mysqlUserRepository{db: db}
}

const userColumns = "id, username, password_hash, nickname, name, department, year, email, auth_id, created_at"

func scanUserRow(row *sql.Row) (*model.User, error) {
	user := &model.User{}
	var name, department, year, email, authID sql.NullString
	err := row.Scan(&user.ID, &user.Username, &user.PasswordHash, &user.Nickname,
		&name, &department, &year, &email, &authID, &user.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil // User not found
		}
		return nil, err
	}
	user.Name = name.String
	user.Department = department.String
	user.Year = year.String
	user.Email = email.String
	user.AuthID = authID.String
	return user, nil
}

// CreateUser adds a new user to the database.
func (r *mysqlUserRepository) CreateUser(user *model.User) error {
	query := "INSERT INTO users (" + userColumns + ") VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)"
	stmt, err := r.db.Prepare(query)
	if err != nil {
		return fmt.Errorf("failed to prepare create user statement: %w", err)
	}
	defer stmt.Close()

	_, err = stmt.Exec(user.ID, user.Username, user.PasswordHash, user.Nickname,
		nullable(user.Name), nullable(user.Department), nullable(user.Year),
		nullable(user.Email), nullable(user.AuthID), user.CreatedAt)
	if err != nil {
		if strings.Contains(err.Error(), "Duplicate entry") {
			return ErrDuplicateUser
		}
		return fmt.Errorf("failed to execute create user statement: %w", err)
	}
	return nil
}

// GetUserByID retrieves a user by their canonical id.
func (r *mysqlUserRepository) GetUserByID(id string) (*model.User, error) {
	query := "SELECT " + userColumns + " FROM users WHERE id = ?"
	user, err := scanUserRow(r.db.QueryRow(query, id))
	if err != nil {
		return nil, fmt.Errorf("failed to scan user row for ID %s: %w", id, err)
	}
	return user, nil
}

// GetUserByUsername retrieves a user by their username.
func (r *mysqlUserRepository) GetUserByUsername(username string) (*model.User, error) {
	query := "SELECT " + userColumns + " FROM users WHERE username = ?"
	user, err := scanUserRow(r.db.QueryRow(query, username))
	if err != nil {
		return nil, fmt.Errorf("failed to scan user row for username %s: %w", username, err)
	}
	return user, nil
}

// GetUserByNickname retrieves a user by their nickname.
func (r *mysqlUserRepository) GetUserByNickname(nickname string) (*model.User, error) {
	query := "SELECT " + userColumns + " FROM users WHERE nickname = ?"
	user, err := scanUserRow(r.db.QueryRow(query, nickname))
	if err != nil {
		return nil, fmt.Errorf("failed to scan user row for nickname %s: %w", nickname, err)
	}
	return user, nil
}

// GetUsersByEmail retrieves every user matching an email address. Callers
// that need a unique owner must check len == 1 themselves; email is not
// unique at the storage level.
func (r *mysqlUserRepository) GetUsersByEmail(email string) ([]model.User, error) {
	query := "SELECT " + userColumns + " FROM users WHERE email = ?"
	rows, err := r.db.Query(query, email)
	if err != nil {
		return nil, fmt.Errorf("failed to query users by email %s: %w", email, err)
	}
	defer rows.Close()
	return collectUsers(rows)
}

// ListUsers retrieves all users.
func (r *mysqlUserRepository) ListUsers() ([]model.User, error) {
	query := "SELECT " + userColumns + " FROM users ORDER BY created_at ASC"
	rows, err := r.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query users: %w", err)
	}
	defer rows.Close()
	return collectUsers(rows)
}

// CountUsers returns the number of registered users.
func (r *mysqlUserRepository) CountUsers() (int, error) {
	var count int
	if err := r.db.QueryRow("SELECT COUNT(*) FROM users").Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count users: %w", err)
	}
	return count, nil
}

func collectUsers(rows *sql.Rows) ([]model.User, error) {
	var users []model.User
	for rows.Next() {
		var user model.User
		var name, department, year, email, authID sql.NullString
		err := rows.Scan(&user.ID, &user.Username, &user.PasswordHash, &user.Nickname,
			&name, &department, &year, &email, &authID, &user.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user row: %w", err)
		}
		user.Name = name.String
		user.Department = department.String
		user.Year = year.String
		user.Email = email.String
		user.AuthID = authID.String
		users = append(users, user)
	}
	return users, rows.Err()
}

func nullable(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}
