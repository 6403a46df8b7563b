package repositories

import (
	"errors"
	"fmt"

	"github.com/mememuseum/backend/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrVoteNotFound is returned when deleting a vote that does not exist
var ErrVoteNotFound = errors.New("vote not found")

// VoteRepository defines the interface for vote data operations. The read
// side returns total mappings: every requested meme ID that has no votes is
// simply absent from the map and defaults to 0 at the call site.
type VoteRepository interface {
	RatingsByMemeIDs(memeIDs []uint) (map[uint]int, error)
	UserVotesByMemeIDs(memeIDs []uint, userID uint) (map[uint]int, error)
	SetVote(userID, memeID uint, value int) error
	DeleteVote(userID, memeID uint) error
}

// PostgresVoteRepository implements VoteRepository for PostgreSQL
type PostgresVoteRepository struct {
	db *gorm.DB
}

// NewPostgresVoteRepository creates a new PostgresVoteRepository
func NewPostgresVoteRepository(db *gorm.DB) *PostgresVoteRepository {
	return &PostgresVoteRepository{db: db}
}

// RatingsByMemeIDs returns memeID -> sum of vote values for the given memes
// in a single grouped query. An empty ID set short-circuits without touching
// the database.
func (r *PostgresVoteRepository) RatingsByMemeIDs(memeIDs []uint) (map[uint]int, error) {
	ratings := make(map[uint]int, len(memeIDs))
	if len(memeIDs) == 0 {
		return ratings, nil
	}

	var rows []struct {
		MemeID      uint
		TotalRating int
	}
	err := r.db.Model(&models.Vote{}).
		Select("meme_id, SUM(value) AS total_rating").
		Where("meme_id IN ?", memeIDs).
		Group("meme_id").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("aggregating meme ratings: %w", err)
	}

	for _, row := range rows {
		ratings[row.MemeID] = row.TotalRating
	}
	return ratings, nil
}

// UserVotesByMemeIDs returns memeID -> the given user's vote value for the
// given memes in a single query. A zero user ID means an anonymous caller
// and yields an empty map.
func (r *PostgresVoteRepository) UserVotesByMemeIDs(memeIDs []uint, userID uint) (map[uint]int, error) {
	userVotes := make(map[uint]int, len(memeIDs))
	if userID == 0 || len(memeIDs) == 0 {
		return userVotes, nil
	}

	var votes []models.Vote
	err := r.db.
		Where("user_id = ? AND meme_id IN ?", userID, memeIDs).
		Find(&votes).Error
	if err != nil {
		return nil, fmt.Errorf("loading user votes: %w", err)
	}

	for _, vote := range votes {
		userVotes[vote.MemeID] = vote.Value
	}
	return userVotes, nil
}

// SetVote upserts the (user, meme) vote. Revoting replaces the prior value
// instead of duplicating the row. A zero value is an explicit retraction and
// removes the row, so "no row" stays the single no-vote representation.
func (r *PostgresVoteRepository) SetVote(userID, memeID uint, value int) error {
	if value == 0 {
		err := r.DeleteVote(userID, memeID)
		if errors.Is(err, ErrVoteNotFound) {
			return nil
		}
		return err
	}

	vote := models.Vote{UserID: userID, MemeID: memeID, Value: value}
	err := r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "meme_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&vote).Error
	if err != nil {
		return fmt.Errorf("upserting vote: %w", err)
	}
	return nil
}

// DeleteVote removes the (user, meme) vote row
func (r *PostgresVoteRepository) DeleteVote(userID, memeID uint) error {
	res := r.db.Where("user_id = ? AND meme_id = ?", userID, memeID).Delete(&models.Vote{})
	if res.Error != nil {
		return fmt.Errorf("deleting vote: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrVoteNotFound
	}
	return nil
}
