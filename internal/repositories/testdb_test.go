package repositories

import (
	"context"
	"testing"
	"time"

	"github.com/mememuseum/backend/internal/models"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newTestDB opens a private in-memory database migrated with the full
// schema. The pool is capped at one connection so every query in a test,
// including concurrent ones, sees the same database.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Meme{},
		&models.Tag{},
		&models.Vote{},
		&models.Comment{},
		&models.FeaturedMeme{},
	))
	return db
}

func seedUser(t *testing.T, db *gorm.DB, username string) *models.User {
	t.Helper()
	user := &models.User{Username: username, Email: username + "@example.com", Password: "irrelevant"}
	require.NoError(t, db.Create(user).Error)
	return user
}

func seedMeme(t *testing.T, db *gorm.DB, userID uint, title string, createdAt time.Time, tagNames ...string) *models.Meme {
	t.Helper()
	meme := &models.Meme{Title: title, Image: "aW1n", UserID: userID, CreatedAt: createdAt}
	require.NoError(t, db.Create(meme).Error)

	if len(tagNames) > 0 {
		tags, err := NewPostgresTagRepository(db).FindOrCreateByNames(tagNames)
		require.NoError(t, err)
		require.NoError(t, NewPostgresMemeRepository(db).ReplaceTags(context.Background(), meme, tags))
	}
	return meme
}
