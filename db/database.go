package db

import (
	"database/sql"
	"fmt"
	"log"
	"strings"

	"CupBack/config"

	_ "github.com/go-sql-driver/mysql" // MySQL driver
)

var DB *sql.DB

// ConnectDB establishes a connection to the database.
func ConnectDB(cfg *config.Config) error {
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?parseTime=true",
		cfg.DBUser, cfg.DBPassword, cfg.DBHost, cfg.DBPort, cfg.DBName)

	var err error
	DB, err = sql.Open("mysql", dsn)
	if err != nil {
		return fmt.Errorf("failed to open database connection: %w", err)
	}

	if err = DB.Ping(); err != nil {
		DB.Close()
		return fmt.Errorf("failed to ping database: %w", err)
	}

	log.Println("Successfully connected to the database.")
	return nil
}

// InitDB creates the tables GORM does not manage and applies the auth_id
// backfill for rows written before profile ids and auth ids were unified.
func InitDB() error {
	if err := createPostsTable(); err != nil {
		return err
	}
	if err := alterUsersTableAddAuthID(); err != nil {
		// Column may already exist from a previous run.
		if !strings.Contains(err.Error(), "Duplicate column name") && !strings.Contains(err.Error(), "already exists") {
			return err
		}
		log.Println("Column 'auth_id' likely already exists in 'users' table:", err)
	}

	log.Println("Database initialization and migration completed.")
	return nil
}

func createPostsTable() error {
	// likes is a JSON array of canonical user ids. The whole array is
	// rewritten on toggle; see repository.PostRepository.
	query := `
	CREATE TABLE IF NOT EXISTS posts (
		id VARCHAR(36) PRIMARY KEY,
		title VARCHAR(255) NOT NULL,
		content TEXT NOT NULL,
		image VARCHAR(767),
		writer VARCHAR(100) NOT NULL,
		writer_id VARCHAR(64) NOT NULL,
		likes JSON NOT NULL,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		INDEX idx_posts_created_at (created_at)
	);
	`
	_, err := DB.Exec(query)
	if err != nil {
		return fmt.Errorf("failed to create posts table: %w", err)
	}
	log.Println("Posts table initialized successfully (or already exists).")
	return nil
}

func alterUsersTableAddAuthID() error {
	var columnCount int
	err := DB.QueryRow("SELECT COUNT(*) FROM INFORMATION_SCHEMA.COLUMNS WHERE TABLE_SCHEMA = DATABASE() AND TABLE_NAME = 'users' AND COLUMN_NAME = 'auth_id'").Scan(&columnCount)
	if err != nil {
		return fmt.Errorf("failed to check if auth_id column exists: %w", err)
	}

	if columnCount == 0 {
		_, err = DB.Exec(`ALTER TABLE users ADD COLUMN auth_id VARCHAR(64), ADD INDEX idx_users_auth_id (auth_id);`)
		if err != nil {
			return fmt.Errorf("failed to add auth_id column to users table: %w", err)
		}
		log.Println("Column 'auth_id' added to 'users' table.")
	} else {
		log.Println("Column 'auth_id' already exists in 'users' table.")
	}

	return nil
}
