package model

import "time"

// User represents a registered account. ID is the canonical id every scan and
// post is keyed under. AuthID records the authentication-layer id for rows
// created before profile ids and auth ids were unified; it is empty when the
// two are the same. See core/identity for how the two are reconciled.
type User struct {
	ID           string    `json:"id" gorm:"primaryKey;size:64"`
	Username     string    `json:"username" gorm:"uniqueIndex;size:100"`
	PasswordHash string    `json:"-" gorm:"size:255"`
	Nickname     string    `json:"nickname" gorm:"uniqueIndex;size:100"`
	Name         string    `json:"name,omitempty" gorm:"size:100"`
	Department   string    `json:"department,omitempty" gorm:"size:100"`
	Year         string    `json:"year,omitempty" gorm:"size:10"`
	Email        string    `json:"email,omitempty" gorm:"size:255"`
	AuthID       string    `json:"-" gorm:"index;size:64"`
	CreatedAt    time.Time `json:"createdAt"`
}

// DisplayName is what shows next to a user's content on the board and in
// navigation.
func (u *User) DisplayName() string {
	if u.Nickname != "" {
		return u.Nickname
	}
	return u.Name
}

// RegisterRequest is the registration request body. Unknown fields are
// rejected at the decoding boundary; only the named fields are stored.
type RegisterRequest struct {
	Username   string `json:"username"`
	Password   string `json:"password"`
	Nickname   string `json:"nickname"`
	Name       string `json:"name"`
	Department string `json:"department"`
	Year       string `json:"year"`
	Email      string `json:"email"`
}
