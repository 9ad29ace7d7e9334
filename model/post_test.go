package model

import (
	"testing"
	"time"
)

func TestNewPost(t *testing.T) {
	now := time.Now()
	p := NewPost("hello", "first post", "", "ali", "u1", now)

	if p.ID == "" {
		t.Error("post id not assigned")
	}
	if p.Likes == nil || len(p.Likes) != 0 {
		t.Errorf("likes = %v, want empty non-nil slice", p.Likes)
	}
	if p.Writer != "ali" || p.WriterID != "u1" {
		t.Errorf("writer fields = %q/%q", p.Writer, p.WriterID)
	}
}

func TestToggleLike(t *testing.T) {
	p := NewPost("t", "c", "", "w", "u1", time.Now())

	if liked := p.ToggleLike("u2"); !liked {
		t.Error("first toggle should like")
	}
	if !p.HasLike("u2") {
		t.Error("like not recorded")
	}

	if liked := p.ToggleLike("u2"); liked {
		t.Error("second toggle should unlike")
	}
	if p.HasLike("u2") {
		t.Error("like not removed")
	}
	if len(p.Likes) != 0 {
		t.Errorf("likes = %v, want empty", p.Likes)
	}
}

func TestToggleLike_IndependentUsers(t *testing.T) {
	p := NewPost("t", "c", "", "w", "u1", time.Now())
	p.ToggleLike("u2")
	p.ToggleLike("u3")
	p.ToggleLike("u2")

	if p.HasLike("u2") {
		t.Error("u2 should be unliked")
	}
	if !p.HasLike("u3") {
		t.Error("u3 like lost by u2's toggle")
	}
}

func TestCalendarDate(t *testing.T) {
	ts := time.Date(2025, 3, 9, 23, 59, 59, 0, time.Local)
	if got := CalendarDate(ts); got != "2025-03-09" {
		t.Errorf("CalendarDate = %q, want 2025-03-09", got)
	}
}

func TestUserDisplayName(t *testing.T) {
	u := User{Nickname: "ali", Name: "Alice"}
	if got := u.DisplayName(); got != "ali" {
		t.Errorf("DisplayName = %q, want nickname", got)
	}
	u.Nickname = ""
	if got := u.DisplayName(); got != "Alice" {
		t.Errorf("DisplayName = %q, want name fallback", got)
	}
}
