package repository

import (
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"CupBack/model"
)

var postCols = []string{"id", "title", "content", "image", "writer", "writer_id", "likes", "created_at"}

func newPostMock(t *testing.T) (PostRepository, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	return NewMySQLPostRepository(db), mock, func() {
		if err := mock.ExpectationsWereMet(); err != nil {
			t.Errorf("unmet expectations: %v", err)
		}
		db.Close()
	}
}

func TestCreatePost(t *testing.T) {
	repo, mock, done := newPostMock(t)
	defer done()

	now := time.Now()
	mock.ExpectPrepare(regexp.QuoteMeta("INSERT INTO posts")).
		ExpectExec().
		WithArgs("p1", "hello", "first post", sqlmock.AnyArg(), "ali", "u1", []byte("[]"), now).
		WillReturnResult(sqlmock.NewResult(1, 1))

	err := repo.CreatePost(&model.Post{
		ID: "p1", Title: "hello", Content: "first post",
		Writer: "ali", WriterID: "u1", Likes: []string{}, CreatedAt: now,
	})
	if err != nil {
		t.Fatalf("CreatePost error: %v", err)
	}
}

func TestGetPostByID(t *testing.T) {
	repo, mock, done := newPostMock(t)
	defer done()

	now := time.Now()
	rows := sqlmock.NewRows(postCols).
		AddRow("p1", "hello", "first post", nil, "ali", "u1", []byte(`["u2","u3"]`), now)
	mock.ExpectQuery(regexp.QuoteMeta("FROM posts WHERE id = ?")).
		WithArgs("p1").
		WillReturnRows(rows)

	post, err := repo.GetPostByID("p1")
	if err != nil {
		t.Fatalf("GetPostByID error: %v", err)
	}
	if post == nil || len(post.Likes) != 2 || !post.HasLike("u2") {
		t.Errorf("post = %+v", post)
	}
	if post.Image != "" {
		t.Errorf("NULL image should map to empty string, got %q", post.Image)
	}
}

func TestGetPostByID_NotFound(t *testing.T) {
	repo, mock, done := newPostMock(t)
	defer done()

	mock.ExpectQuery(regexp.QuoteMeta("FROM posts WHERE id = ?")).
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows(postCols))

	post, err := repo.GetPostByID("missing")
	if err != nil {
		t.Fatalf("GetPostByID error: %v", err)
	}
	if post != nil {
		t.Errorf("want nil post for missing row, got %+v", post)
	}
}

func TestListPosts(t *testing.T) {
	repo, mock, done := newPostMock(t)
	defer done()

	now := time.Now()
	rows := sqlmock.NewRows(postCols).
		AddRow("p2", "second", "newer", nil, "bobby", "u2", []byte("[]"), now.Add(time.Hour)).
		AddRow("p1", "first", "older", "http://img/x.png", "ali", "u1", []byte(`["u2"]`), now)
	mock.ExpectQuery(regexp.QuoteMeta("FROM posts ORDER BY created_at DESC")).
		WillReturnRows(rows)

	posts, err := repo.ListPosts()
	if err != nil {
		t.Fatalf("ListPosts error: %v", err)
	}
	if len(posts) != 2 || posts[0].ID != "p2" {
		t.Errorf("posts = %+v", posts)
	}
	if posts[1].Image != "http://img/x.png" {
		t.Errorf("image = %q", posts[1].Image)
	}
}

func TestUpdateLikes(t *testing.T) {
	repo, mock, done := newPostMock(t)
	defer done()

	mock.ExpectExec(regexp.QuoteMeta("UPDATE posts SET likes = ? WHERE id = ?")).
		WithArgs([]byte(`["u1"]`), "p1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.UpdateLikes("p1", []string{"u1"}); err != nil {
		t.Fatalf("UpdateLikes error: %v", err)
	}
}

func TestUpdateLikes_NilBecomesEmptyArray(t *testing.T) {
	repo, mock, done := newPostMock(t)
	defer done()

	mock.ExpectExec(regexp.QuoteMeta("UPDATE posts SET likes = ? WHERE id = ?")).
		WithArgs([]byte("[]"), "p1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.UpdateLikes("p1", nil); err != nil {
		t.Fatalf("UpdateLikes error: %v", err)
	}
}
