package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/mememuseum/backend/internal/models"
	"gorm.io/gorm"
)

// MemeFilter carries the normalized feed query parameters. Nil date bounds
// mean no bound; both bounds are inclusive.
type MemeFilter struct {
	Tags      []string
	StartDate *time.Time
	EndDate   *time.Time
	Offset    int
	Limit     int
}

// MemeRepository defines the interface for meme data operations
type MemeRepository interface {
	CreateMeme(ctx context.Context, meme *models.Meme) error
	GetMemeByID(ctx context.Context, id uint) (*models.Meme, error)
	ListMemes(ctx context.Context, filter MemeFilter) ([]models.Meme, int64, error)
	PickRandomMeme(ctx context.Context) (*models.Meme, error)
	ReplaceTags(ctx context.Context, meme *models.Meme, tags []models.Tag) error
}

// PostgresMemeRepository implements MemeRepository for PostgreSQL
type PostgresMemeRepository struct {
	db *gorm.DB
}

// NewPostgresMemeRepository creates a new PostgresMemeRepository
func NewPostgresMemeRepository(db *gorm.DB) *PostgresMemeRepository {
	return &PostgresMemeRepository{db: db}
}

// CreateMeme creates a new meme
func (r *PostgresMemeRepository) CreateMeme(ctx context.Context, meme *models.Meme) error {
	return r.db.WithContext(ctx).Create(meme).Error
}

// GetMemeByID retrieves a meme with its tags and uploader
func (r *PostgresMemeRepository) GetMemeByID(ctx context.Context, id uint) (*models.Meme, error) {
	var meme models.Meme
	if err := r.db.WithContext(ctx).Preload("Tags").Preload("User").First(&meme, id).Error; err != nil {
		return nil, err
	}
	return &meme, nil
}

// filtered applies the tag and date predicates of a filter to a meme query.
// The tag filter is an inclusion filter: a meme matches when it carries any
// of the requested tag names.
func (r *PostgresMemeRepository) filtered(ctx context.Context, filter MemeFilter) *gorm.DB {
	query := r.db.WithContext(ctx).Model(&models.Meme{})

	if len(filter.Tags) > 0 {
		query = query.
			Joins("JOIN meme_tags ON meme_tags.meme_id = memes.id").
			Joins("JOIN tags ON tags.id = meme_tags.tag_id").
			Where("tags.name IN ?", filter.Tags)
	}
	if filter.StartDate != nil {
		query = query.Where("memes.created_at >= ?", *filter.StartDate)
	}
	if filter.EndDate != nil {
		query = query.Where("memes.created_at <= ?", *filter.EndDate)
	}
	return query
}

// ListMemes returns one page of matching memes ordered by upload recency,
// plus the total match count. The count is taken over distinct meme IDs so
// the tag join cannot inflate it.
func (r *PostgresMemeRepository) ListMemes(ctx context.Context, filter MemeFilter) ([]models.Meme, int64, error) {
	var total int64
	if err := r.filtered(ctx, filter).Distinct("memes.id").Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("counting memes: %w", err)
	}

	var memes []models.Meme
	err := r.filtered(ctx, filter).
		Distinct("memes.*").
		Order("memes.created_at DESC").
		Offset(filter.Offset).
		Limit(filter.Limit).
		Preload("Tags").
		Preload("User").
		Find(&memes).Error
	if err != nil {
		return nil, 0, fmt.Errorf("listing memes: %w", err)
	}
	return memes, total, nil
}

// PickRandomMeme returns one meme chosen uniformly at random, or nil when
// the meme table is empty.
func (r *PostgresMemeRepository) PickRandomMeme(ctx context.Context) (*models.Meme, error) {
	var meme models.Meme
	err := r.db.WithContext(ctx).
		Preload("Tags").
		Preload("User").
		Order("RANDOM()").
		Take(&meme).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("picking random meme: %w", err)
	}
	return &meme, nil
}

// ReplaceTags sets the meme's tag associations to exactly the given tags
func (r *PostgresMemeRepository) ReplaceTags(ctx context.Context, meme *models.Meme, tags []models.Tag) error {
	return r.db.WithContext(ctx).Model(meme).Association("Tags").Replace(&tags)
}
