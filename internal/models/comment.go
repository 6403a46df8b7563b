package models

import "time"

// Comment represents a comment on a meme
type Comment struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Content   string    `json:"content" gorm:"size:1000;not null"`
	UserID    uint      `json:"user_id" gorm:"not null;index"`
	MemeID    uint      `json:"meme_id" gorm:"not null;index"`
	User      User      `json:"user" gorm:"foreignKey:UserID"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"-"`
}

// CreateCommentRequest defines the request body for creating a new comment
type CreateCommentRequest struct {
	Content string `json:"content" validate:"required,min=1,max=1000"`
}
