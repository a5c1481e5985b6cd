package model

import "time"

// User represents a GitHub account referenced by repositories, pull
// requests, reviews, and comments. Identity key is the remote-assigned ID;
// logins can change, IDs cannot.
type User struct {
	ID        int64
	Login     string
	Name      string
	Email     string
	AvatarURL string
	Bio       string
	CreatedAt time.Time // Zero when the remote did not report it.
	UpdatedAt time.Time
}
