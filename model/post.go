package model

import (
	"time"

	"github.com/google/uuid"
)

// Post is a board entry. Only the like-set mutates after creation, via
// toggle. Likes holds canonical user ids; a given id appears at most once.
type Post struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	Image     string    `json:"image,omitempty"`
	Writer    string    `json:"writer"`
	WriterID  string    `json:"writerId"`
	Likes     []string  `json:"likes"`
	CreatedAt time.Time `json:"createdAt"`
}

// NewPost builds a post with an empty like-set.
func NewPost(title, content, image, writer, writerID string, now time.Time) *Post {
	return &Post{
		ID:        uuid.New().String(),
		Title:     title,
		Content:   content,
		Image:     image,
		Writer:    writer,
		WriterID:  writerID,
		Likes:     []string{},
		CreatedAt: now,
	}
}

// HasLike reports whether userID is in the like-set.
func (p *Post) HasLike(userID string) bool {
	for _, id := range p.Likes {
		if id == userID {
			return true
		}
	}
	return false
}

// ToggleLike adds userID to the like-set if absent, removes it if present,
// and reports whether the post is liked afterwards.
func (p *Post) ToggleLike(userID string) bool {
	for i, id := range p.Likes {
		if id == userID {
			p.Likes = append(p.Likes[:i], p.Likes[i+1:]...)
			return false
		}
	}
	p.Likes = append(p.Likes, userID)
	return true
}
