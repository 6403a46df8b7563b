package models

// Tag is a free-text label attachable to many memes. Tags are created lazily
// when a meme upload references them.
type Tag struct {
	ID   uint   `json:"id" gorm:"primaryKey"`
	Name string `json:"name" gorm:"size:100;uniqueIndex;not null"`
}
