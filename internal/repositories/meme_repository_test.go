package repositories

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListMemesTagFilter(t *testing.T) {
	db := newTestDB(t)
	repo := NewPostgresMemeRepository(db)
	ctx := context.Background()

	alice := seedUser(t, db, "alice")
	now := time.Now()
	cats := seedMeme(t, db, alice.ID, "cats", now, "cats")
	dogs := seedMeme(t, db, alice.ID, "dogs", now.Add(-time.Hour), "dogs")
	both := seedMeme(t, db, alice.ID, "both", now.Add(-2*time.Hour), "cats", "dogs")
	seedMeme(t, db, alice.ID, "untagged", now.Add(-3*time.Hour))

	titlesOf := func(filter MemeFilter) []string {
		memes, total, err := repo.ListMemes(ctx, filter)
		require.NoError(t, err)
		assert.Equal(t, int64(len(memes)), total)
		titles := make([]string, 0, len(memes))
		for _, m := range memes {
			titles = append(titles, m.Title)
		}
		return titles
	}

	assert.Equal(t, []string{cats.Title, both.Title}, titlesOf(MemeFilter{Tags: []string{"cats"}, Limit: 10}))
	assert.Equal(t, []string{dogs.Title, both.Title}, titlesOf(MemeFilter{Tags: []string{"dogs"}, Limit: 10}))

	// Multiple tags match any-of, not all-of.
	assert.Equal(t, []string{cats.Title, dogs.Title, both.Title},
		titlesOf(MemeFilter{Tags: []string{"cats", "dogs"}, Limit: 10}))

	assert.Empty(t, titlesOf(MemeFilter{Tags: []string{"unknown"}, Limit: 10}))
}

func TestListMemesCountIsDistinct(t *testing.T) {
	db := newTestDB(t)
	repo := NewPostgresMemeRepository(db)
	ctx := context.Background()

	alice := seedUser(t, db, "alice")
	seedMeme(t, db, alice.ID, "multi", time.Now(), "cats", "dogs", "birds")

	// The tag join yields three rows for one meme; neither the page nor the
	// total may see them as separate memes.
	memes, total, err := repo.ListMemes(ctx, MemeFilter{Tags: []string{"cats", "dogs", "birds"}, Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, memes, 1)
	assert.Len(t, memes[0].Tags, 3)
}

func TestListMemesDateBoundsInclusive(t *testing.T) {
	db := newTestDB(t)
	repo := NewPostgresMemeRepository(db)
	ctx := context.Background()

	alice := seedUser(t, db, "alice")
	t1 := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	t2 := time.Date(2026, 3, 11, 12, 0, 0, 0, time.UTC)
	t3 := time.Date(2026, 3, 12, 12, 0, 0, 0, time.UTC)
	seedMeme(t, db, alice.ID, "early", t1)
	mid := seedMeme(t, db, alice.ID, "mid", t2)
	seedMeme(t, db, alice.ID, "late", t3)

	memes, total, err := repo.ListMemes(ctx, MemeFilter{StartDate: &t2, EndDate: &t2, Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, memes, 1)
	assert.Equal(t, mid.ID, memes[0].ID)

	// Open-ended on one side.
	_, total, err = repo.ListMemes(ctx, MemeFilter{StartDate: &t2, Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
}

func TestListMemesPagination(t *testing.T) {
	db := newTestDB(t)
	repo := NewPostgresMemeRepository(db)
	ctx := context.Background()

	alice := seedUser(t, db, "alice")
	base := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 15; i++ {
		seedMeme(t, db, alice.ID, fmt.Sprintf("meme-%02d", i), base.Add(time.Duration(i)*time.Minute))
	}

	page1, total, err := repo.ListMemes(ctx, MemeFilter{Offset: 0, Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, int64(15), total)
	require.Len(t, page1, 10)
	assert.Equal(t, "meme-14", page1[0].Title, "newest first")

	page2, total, err := repo.ListMemes(ctx, MemeFilter{Offset: 10, Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, int64(15), total)
	require.Len(t, page2, 5)
	assert.Equal(t, "meme-04", page2[0].Title)
	assert.Equal(t, "meme-00", page2[4].Title)

	page3, total, err := repo.ListMemes(ctx, MemeFilter{Offset: 20, Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, int64(15), total)
	assert.Empty(t, page3)
}

func TestGetMemeByIDPreloadsAssociations(t *testing.T) {
	db := newTestDB(t)
	repo := NewPostgresMemeRepository(db)
	ctx := context.Background()

	alice := seedUser(t, db, "alice")
	seeded := seedMeme(t, db, alice.ID, "meme", time.Now(), "cats")

	meme, err := repo.GetMemeByID(ctx, seeded.ID)
	require.NoError(t, err)
	assert.Equal(t, "meme", meme.Title)
	assert.Equal(t, "alice", meme.User.Username)
	require.Len(t, meme.Tags, 1)
	assert.Equal(t, "cats", meme.Tags[0].Name)
}

func TestPickRandomMeme(t *testing.T) {
	db := newTestDB(t)
	repo := NewPostgresMemeRepository(db)
	ctx := context.Background()

	meme, err := repo.PickRandomMeme(ctx)
	require.NoError(t, err)
	assert.Nil(t, meme, "empty table yields nil, not an error")

	alice := seedUser(t, db, "alice")
	only := seedMeme(t, db, alice.ID, "only", time.Now())

	meme, err = repo.PickRandomMeme(ctx)
	require.NoError(t, err)
	require.NotNil(t, meme)
	assert.Equal(t, only.ID, meme.ID)
}

func TestReplaceTags(t *testing.T) {
	db := newTestDB(t)
	memeRepo := NewPostgresMemeRepository(db)
	tagRepo := NewPostgresTagRepository(db)
	ctx := context.Background()

	alice := seedUser(t, db, "alice")
	meme := seedMeme(t, db, alice.ID, "meme", time.Now(), "cats", "dogs")

	tags, err := tagRepo.FindOrCreateByNames([]string{"birds"})
	require.NoError(t, err)
	require.NoError(t, memeRepo.ReplaceTags(ctx, meme, tags))

	reloaded, err := memeRepo.GetMemeByID(ctx, meme.ID)
	require.NoError(t, err)
	require.Len(t, reloaded.Tags, 1)
	assert.Equal(t, "birds", reloaded.Tags[0].Name)
}
