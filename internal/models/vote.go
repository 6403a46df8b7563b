package models

import "time"

// Vote records a single user's +1/-1 on a meme. At most one row exists per
// (user, meme) pair; absence of a row is the no-vote state.
type Vote struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	UserID    uint      `json:"user_id" gorm:"not null;uniqueIndex:idx_votes_user_meme"`
	MemeID    uint      `json:"meme_id" gorm:"not null;uniqueIndex:idx_votes_user_meme"`
	Value     int       `json:"value" gorm:"not null"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"-"`
}

// CreateVoteRequest defines the request body for voting on a meme
type CreateVoteRequest struct {
	Value int `json:"value" validate:"required,oneof=-1 1"`
}
