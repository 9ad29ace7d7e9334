package repository

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"CupBack/model"
)

// PostRepository defines the interface for board post operations.
type PostRepository interface {
	CreatePost(post *model.Post) error
	GetPostByID(id string) (*model.Post, error)
	ListPosts() ([]model.Post, error)
	UpdateLikes(id string, likes []string) error
}

// mysqlPostRepository implements PostRepository for MySQL.
type mysqlPostRepository struct {
	db *sql.DB
}

// NewMySQLPostRepository creates a new mysqlPostRepository.
func NewMySQLPostRepository(db *sql.DB) PostRepository {
	return &mysqlPostRepository{db: db}
}

// CreatePost adds a new post to the board.
func (r *mysqlPostRepository) CreatePost(post *model.Post) error {
	likes, err := json.Marshal(post.Likes)
	if err != nil {
		return fmt.Errorf("failed to marshal likes: %w", err)
	}

	query := "INSERT INTO posts (id, title, content, image, writer, writer_id, likes, created_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?)"
	stmt, err := r.db.Prepare(query)
	if err != nil {
		return fmt.Errorf("failed to prepare create post statement: %w", err)
	}
	defer stmt.Close()

	_, err = stmt.Exec(post.ID, post.Title, post.Content, nullable(post.Image),
		post.Writer, post.WriterID, likes, post.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to execute create post statement: %w", err)
	}
	return nil
}

// GetPostByID retrieves a post by id.
func (r *mysqlPostRepository) GetPostByID(id string) (*model.Post, error) {
	query := "SELECT id, title, content, image, writer, writer_id, likes, created_at FROM posts WHERE id = ?"
	row := r.db.QueryRow(query, id)

	post := &model.Post{}
	var image sql.NullString
	var likes []byte
	err := row.Scan(&post.ID, &post.Title, &post.Content, &image, &post.Writer,
		&post.WriterID, &likes, &post.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil // Post not found
		}
		return nil, fmt.Errorf("failed to scan post row for ID %s: %w", id, err)
	}
	post.Image = image.String
	if err := json.Unmarshal(likes, &post.Likes); err != nil {
		return nil, fmt.Errorf("failed to unmarshal likes for post %s: %w", id, err)
	}
	return post, nil
}

// ListPosts retrieves all posts, newest first.
func (r *mysqlPostRepository) ListPosts() ([]model.Post, error) {
	query := "SELECT id, title, content, image, writer, writer_id, likes, created_at FROM posts ORDER BY created_at DESC"
	rows, err := r.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query posts: %w", err)
	}
	defer rows.Close()

	var posts []model.Post
	for rows.Next() {
		var post model.Post
		var image sql.NullString
		var likes []byte
		err := rows.Scan(&post.ID, &post.Title, &post.Content, &image, &post.Writer,
			&post.WriterID, &likes, &post.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan post row: %w", err)
		}
		post.Image = image.String
		if err := json.Unmarshal(likes, &post.Likes); err != nil {
			return nil, fmt.Errorf("failed to unmarshal likes for post %s: %w", post.ID, err)
		}
		posts = append(posts, post)
	}
	return posts, rows.Err()
}

// UpdateLikes rewrites the like-set of a post. This read-modify-write is not
// atomic against a concurrent toggle on the same post; accepted limitation.
func (r *mysqlPostRepository) UpdateLikes(id string, likes []string) error {
	if likes == nil {
		likes = []string{}
	}
	raw, err := json.Marshal(likes)
	if err != nil {
		return fmt.Errorf("failed to marshal likes: %w", err)
	}

	_, err = r.db.Exec("UPDATE posts SET likes = ? WHERE id = ?", raw, id)
	if err != nil {
		return fmt.Errorf("failed to update likes for post %s: %w", id, err)
	}
	return nil
}
