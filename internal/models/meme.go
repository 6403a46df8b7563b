package models

import "time"

// Meme represents an uploaded meme image with its tags. The image payload is
// stored base64-encoded on the row itself.
type Meme struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Title     string    `json:"title" gorm:"size:100;not null"`
	Image     string    `json:"image" gorm:"type:text;not null"`
	UserID    uint      `json:"user_id" gorm:"not null;index"`
	User      User      `json:"-" gorm:"foreignKey:UserID"`
	Tags      []Tag     `json:"tags" gorm:"many2many:meme_tags;"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"-"`
}

// MemeProjection is the client-facing shape of a meme, merging persisted
// fields with the computed vote aggregates.
type MemeProjection struct {
	ID         uint      `json:"id"`
	Title      string    `json:"title"`
	ImageURL   string    `json:"imageUrl"`
	UploadDate time.Time `json:"uploadDate"`
	Rating     int       `json:"rating"`
	Tags       []string  `json:"tags"`
	Uploader   string    `json:"uploader"`
	UserVote   int       `json:"userVote"`
}
