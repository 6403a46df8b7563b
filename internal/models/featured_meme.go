package models

// FeaturedMeme pins one meme per calendar date. The unique date column is
// what makes concurrent first-of-the-day selections converge on one winner.
type FeaturedMeme struct {
	ID     uint   `json:"id" gorm:"primaryKey"`
	MemeID uint   `json:"meme_id" gorm:"not null"`
	Date   string `json:"date" gorm:"size:10;uniqueIndex;not null"`
}
