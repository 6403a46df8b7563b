package handlers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/mememuseum/backend/internal/middleware"
	"github.com/mememuseum/backend/internal/models"
	"github.com/mememuseum/backend/internal/repositories"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const testJWTSecret = "test-secret"

// newTestServer wires the full route table over a private in-memory database.
// The pool is capped at one connection so concurrent requests in a test all
// see the same database.
func newTestServer(t *testing.T) (*echo.Echo, *gorm.DB) {
	t.Helper()
	t.Setenv("JWT_SECRET", testJWTSecret)

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

	memeRepo := repositories.NewPostgresMemeRepository(db)
	voteRepo := repositories.NewPostgresVoteRepository(db)
	tagRepo := repositories.NewPostgresTagRepository(db)
	featuredRepo := repositories.NewPostgresFeaturedMemeRepository(db)
	commentRepo := repositories.NewPostgresCommentRepository(db)
	userRepo := repositories.NewPostgresUserRepository(db)

	e := echo.New()
	authGroup := e.Group("/api/v1/auth")
	public := e.Group("/api/v1", middleware.OptionalJWTAuthMiddleware())
	protected := e.Group("/api/v1", middleware.JWTAuthMiddleware())

	NewAuthHandler(userRepo).RegisterAuthRoutes(authGroup)
	NewMemeHandler(memeRepo, voteRepo, tagRepo, featuredRepo).RegisterMemeRoutes(public, protected)
	NewVoteHandler(voteRepo, memeRepo).RegisterVoteRoutes(protected)
	NewCommentHandler(commentRepo, memeRepo).RegisterCommentRoutes(public, protected)
	NewUserHandler(userRepo).RegisterUserRoutes(protected)

	return e, db
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
		tags, err := repositories.NewPostgresTagRepository(db).FindOrCreateByNames(tagNames)
		require.NoError(t, err)
		require.NoError(t, repositories.NewPostgresMemeRepository(db).ReplaceTags(context.Background(), meme, tags))
	}
	return meme
}

func seedVote(t *testing.T, db *gorm.DB, userID, memeID uint, value int) {
	t.Helper()
	require.NoError(t, repositories.NewPostgresVoteRepository(db).SetVote(userID, memeID, value))
}

// tokenFor signs a bearer token the same way the auth handler does.
func tokenFor(t *testing.T, user *models.User) string {
	t.Helper()
	claims := &models.JwtCustomClaims{
		UserID:   user.ID,
		Username: user.Username,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testJWTSecret))
	require.NoError(t, err)
	return signed
}

// envelope mirrors ApiResponse with the data kept raw for typed decoding
type envelope struct {
	Status  int             `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// doRequest runs one request through the full middleware chain and decodes
// the response envelope. An empty token means an anonymous request.
func doRequest(t *testing.T, e *echo.Echo, method, target, token string, body io.Reader, contentType string) (int, envelope) {
	t.Helper()

	req := httptest.NewRequest(method, target, body)
	if contentType != "" {
		req.Header.Set(echo.HeaderContentType, contentType)
	}
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	return rec.Code, env
}

// feedPage is the decoded data payload of the feed endpoint
type feedPage struct {
	Memes      []models.MemeProjection `json:"memes"`
	TotalItems int64                   `json:"totalItems"`
	TotalPages int                     `json:"totalPages"`
}

func getFeed(t *testing.T, e *echo.Echo, query, token string) feedPage {
	t.Helper()
	code, env := doRequest(t, e, http.MethodGet, "/api/v1/memes"+query, token, nil, "")
	require.Equal(t, http.StatusOK, code)

	var page feedPage
	require.NoError(t, json.Unmarshal(env.Data, &page))
	return page
}
