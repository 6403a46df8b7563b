package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/mememuseum/backend/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// FeaturedMemeRepository defines the interface for the daily featured-meme
// record. Dates are calendar days formatted YYYY-MM-DD.
type FeaturedMemeRepository interface {
	GetByDate(ctx context.Context, date string) (*models.FeaturedMeme, error)
	Create(ctx context.Context, featured *models.FeaturedMeme) (bool, error)
}

// PostgresFeaturedMemeRepository implements FeaturedMemeRepository for PostgreSQL
type PostgresFeaturedMemeRepository struct {
	db *gorm.DB
}

// NewPostgresFeaturedMemeRepository creates a new PostgresFeaturedMemeRepository
func NewPostgresFeaturedMemeRepository(db *gorm.DB) *PostgresFeaturedMemeRepository {
	return &PostgresFeaturedMemeRepository{db: db}
}

// GetByDate returns the featured record for the given date, or nil when no
// meme has been featured yet that day.
func (r *PostgresFeaturedMemeRepository) GetByDate(ctx context.Context, date string) (*models.FeaturedMeme, error) {
	var featured models.FeaturedMeme
	err := r.db.WithContext(ctx).Where("date = ?", date).First(&featured).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("loading featured meme: %w", err)
	}
	return &featured, nil
}

// Create inserts the day's featured record as an insert-or-ignore on the
// unique date column. It reports whether this call won the insert: false
// means a concurrent request already featured a meme for that date and the
// caller should re-fetch the winner instead of erroring.
func (r *PostgresFeaturedMemeRepository) Create(ctx context.Context, featured *models.FeaturedMeme) (bool, error) {
	res := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "date"}},
		DoNothing: true,
	}).Create(featured)
	if res.Error != nil {
		return false, fmt.Errorf("creating featured meme: %w", res.Error)
	}
	return res.RowsAffected > 0, nil
}
