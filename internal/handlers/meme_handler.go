package handlers

import (
	"encoding/base64"
	"errors"
	"io"
	"log"
	"math"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/mememuseum/backend/internal/models"
	"github.com/mememuseum/backend/internal/repositories"
	"gorm.io/gorm"
)

const (
	defaultPageSize = 10
	maxPageSize     = 100
	maxTitleLength  = 100
	maxImageBytes   = 5 * 1024 * 1024
)

var allowedImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
	"image/webp": true,
}

// MemeHandler handles meme-related HTTP requests: the feed, single memes,
// uploads and the meme of the day.
type MemeHandler struct {
	memeRepository     repositories.MemeRepository
	voteRepository     repositories.VoteRepository
	tagRepository      repositories.TagRepository
	featuredRepository repositories.FeaturedMemeRepository
}

// NewMemeHandler creates a new MemeHandler
func NewMemeHandler(
	memeRepo repositories.MemeRepository,
	voteRepo repositories.VoteRepository,
	tagRepo repositories.TagRepository,
	featuredRepo repositories.FeaturedMemeRepository,
) *MemeHandler {
	return &MemeHandler{
		memeRepository:     memeRepo,
		voteRepository:     voteRepo,
		tagRepository:      tagRepo,
		featuredRepository: featuredRepo,
	}
}

// RegisterMemeRoutes registers meme-related routes. Reads go on the public
// group (optional authentication), writes on the protected one.
func (h *MemeHandler) RegisterMemeRoutes(public, protected *echo.Group) {
	public.GET("/memes", h.GetMemes)
	public.GET("/memes/:id", h.GetMeme)
	public.GET("/meme-of-the-day", h.GetMemeOfTheDay)
	protected.POST("/memes", h.CreateMeme)
}

// getUserIDFromContext returns the authenticated user's ID, or 0 for
// anonymous requests.
func getUserIDFromContext(c echo.Context) uint {
	claims, ok := c.Get("user").(*models.JwtCustomClaims)
	if !ok {
		return 0
	}
	return claims.UserID
}

// feedParams are the normalized feed query parameters
type feedParams struct {
	page   int
	limit  int
	sortBy string
	filter repositories.MemeFilter
}

// extractFeedParams normalizes the raw query parameters. Malformed values
// fall back to defaults instead of failing: the feed is a best-effort read
// path.
func extractFeedParams(c echo.Context) feedParams {
	page, _ := strconv.Atoi(c.QueryParam("page"))
	if page < 1 {
		page = 1
	}

	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	if limit < 1 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}

	var tags []string
	if raw := c.QueryParam("tags"); raw != "" {
		for _, tag := range strings.Split(raw, ",") {
			if tag = strings.TrimSpace(tag); tag != "" {
				tags = append(tags, tag)
			}
		}
	}

	sortBy := c.QueryParam("sortBy")
	if sortBy == "" {
		sortBy = sortDateDesc
	}

	return feedParams{
		page:   page,
		limit:  limit,
		sortBy: sortBy,
		filter: repositories.MemeFilter{
			Tags:      tags,
			StartDate: parseDateParam(c.QueryParam("startDate"), false),
			EndDate:   parseDateParam(c.QueryParam("endDate"), true),
			Offset:    (page - 1) * limit,
			Limit:     limit,
		},
	}
}

// parseDateParam accepts RFC 3339 timestamps or plain YYYY-MM-DD dates.
// Unparseable values mean no filter. A date-only end bound is pushed to the
// last instant of its day so both bounds stay inclusive.
func parseDateParam(raw string, endOfDay bool) *time.Time {
	if raw == "" {
		return nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return &t
	}
	t, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return nil
	}
	if endOfDay {
		t = t.Add(24*time.Hour - time.Nanosecond)
	}
	return &t
}

const (
	sortDateDesc   = "dateDesc"
	sortDateAsc    = "dateAsc"
	sortRatingDesc = "ratingDesc"
	sortRatingAsc  = "ratingAsc"
)

// sortStrategies is the closed set of page-local orderings. Rating sorts
// reorder only the fetched page: the pagination window is always selected by
// recency first, matching the reference behavior of the original system.
// All sorts are stable so equal keys keep their relative order.
var sortStrategies = map[string]func([]models.MemeProjection){
	sortDateDesc: func(memes []models.MemeProjection) {
		sort.SliceStable(memes, func(i, j int) bool {
			return memes[i].UploadDate.After(memes[j].UploadDate)
		})
	},
	sortDateAsc: func(memes []models.MemeProjection) {
		sort.SliceStable(memes, func(i, j int) bool {
			return memes[i].UploadDate.Before(memes[j].UploadDate)
		})
	},
	sortRatingDesc: func(memes []models.MemeProjection) {
		sort.SliceStable(memes, func(i, j int) bool {
			return memes[i].Rating > memes[j].Rating
		})
	},
	sortRatingAsc: func(memes []models.MemeProjection) {
		sort.SliceStable(memes, func(i, j int) bool {
			return memes[i].Rating < memes[j].Rating
		})
	},
}

func sortProjections(memes []models.MemeProjection, sortBy string) {
	strategy, ok := sortStrategies[sortBy]
	if !ok {
		strategy = sortStrategies[sortDateDesc]
	}
	strategy(memes)
}

// projectMeme builds the client-facing shape of a meme with its aggregates
func projectMeme(meme *models.Meme, rating, userVote int) models.MemeProjection {
	tags := make([]string, len(meme.Tags))
	for i, tag := range meme.Tags {
		tags[i] = tag.Name
	}

	uploader := meme.User.Username
	if uploader == "" {
		uploader = "anonymous"
	}

	return models.MemeProjection{
		ID:         meme.ID,
		Title:      meme.Title,
		ImageURL:   meme.Image,
		UploadDate: meme.CreatedAt,
		Rating:     rating,
		Tags:       tags,
		Uploader:   uploader,
		UserVote:   userVote,
	}
}

func emptyFeedPage() echo.Map {
	return echo.Map{
		"memes":      []models.MemeProjection{},
		"totalItems": int64(0),
		"totalPages": 0,
	}
}

// GetMemes returns the paginated, filterable, sortable meme feed. Any
// storage failure degrades to an empty well-formed page: the client always
// receives a valid response and emptiness is the failure signal.
func (h *MemeHandler) GetMemes(c echo.Context) error {
	params := extractFeedParams(c)
	userID := getUserIDFromContext(c)

	memes, totalItems, err := h.memeRepository.ListMemes(c.Request().Context(), params.filter)
	if err != nil {
		log.Printf("feed query failed: %v", err)
		return respondSuccess(c, http.StatusOK, "Memes retrieved successfully", emptyFeedPage())
	}

	memeIDs := make([]uint, len(memes))
	for i := range memes {
		memeIDs[i] = memes[i].ID
	}

	ratings, err := h.voteRepository.RatingsByMemeIDs(memeIDs)
	if err != nil {
		log.Printf("vote aggregation failed: %v", err)
		return respondSuccess(c, http.StatusOK, "Memes retrieved successfully", emptyFeedPage())
	}

	userVotes, err := h.voteRepository.UserVotesByMemeIDs(memeIDs, userID)
	if err != nil {
		log.Printf("user vote lookup failed: %v", err)
		return respondSuccess(c, http.StatusOK, "Memes retrieved successfully", emptyFeedPage())
	}

	projections := make([]models.MemeProjection, len(memes))
	for i := range memes {
		projections[i] = projectMeme(&memes[i], ratings[memes[i].ID], userVotes[memes[i].ID])
	}

	sortProjections(projections, params.sortBy)

	totalPages := 0
	if totalItems > 0 {
		totalPages = int(math.Ceil(float64(totalItems) / float64(params.limit)))
	}

	return respondSuccess(c, http.StatusOK, "Memes retrieved successfully", echo.Map{
		"memes":      projections,
		"totalItems": totalItems,
		"totalPages": totalPages,
	})
}

// GetMeme returns a single meme projection by ID
func (h *MemeHandler) GetMeme(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return respondFail(c, http.StatusBadRequest, "Invalid meme ID")
	}

	meme, err := h.memeRepository.GetMemeByID(c.Request().Context(), uint(id))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return respondFail(c, http.StatusNotFound, "Meme not found")
		}
		log.Printf("meme lookup failed: %v", err)
		return respondFail(c, http.StatusInternalServerError, "Could not retrieve meme")
	}

	projection, err := h.projectWithVotes(c, meme)
	if err != nil {
		log.Printf("vote aggregation failed: %v", err)
		return respondFail(c, http.StatusInternalServerError, "Could not retrieve meme")
	}

	return respondSuccess(c, http.StatusOK, "Meme retrieved successfully", projection)
}

// projectWithVotes attaches the rating and the caller's own vote to a meme
func (h *MemeHandler) projectWithVotes(c echo.Context, meme *models.Meme) (models.MemeProjection, error) {
	memeIDs := []uint{meme.ID}

	ratings, err := h.voteRepository.RatingsByMemeIDs(memeIDs)
	if err != nil {
		return models.MemeProjection{}, err
	}
	userVotes, err := h.voteRepository.UserVotesByMemeIDs(memeIDs, getUserIDFromContext(c))
	if err != nil {
		return models.MemeProjection{}, err
	}

	return projectMeme(meme, ratings[meme.ID], userVotes[meme.ID]), nil
}

// CreateMeme handles a multipart meme upload: title, image file and optional
// comma-separated tags. The image is stored base64-encoded on the meme row.
func (h *MemeHandler) CreateMeme(c echo.Context) error {
	userID := getUserIDFromContext(c)
	if userID == 0 {
		return respondFail(c, http.StatusUnauthorized, "Authentication required")
	}

	title := strings.TrimSpace(c.FormValue("title"))
	if title == "" {
		return respondFail(c, http.StatusBadRequest, "Title is required")
	}
	if len(title) > maxTitleLength {
		return respondFail(c, http.StatusBadRequest, "Title exceeds maximum length (100 chars)")
	}

	file, err := c.FormFile("image")
	if err != nil {
		return respondFail(c, http.StatusBadRequest, "Image is required")
	}
	if file.Size > maxImageBytes {
		return respondFail(c, http.StatusBadRequest, "Image too large (max 5MB)")
	}

	src, err := file.Open()
	if err != nil {
		log.Printf("opening uploaded image failed: %v", err)
		return respondFail(c, http.StatusInternalServerError, "Could not read image")
	}
	defer src.Close()

	data, err := io.ReadAll(io.LimitReader(src, maxImageBytes+1))
	if err != nil {
		log.Printf("reading uploaded image failed: %v", err)
		return respondFail(c, http.StatusInternalServerError, "Could not read image")
	}
	if len(data) > maxImageBytes {
		return respondFail(c, http.StatusBadRequest, "Image too large (max 5MB)")
	}

	if !allowedImageTypes[http.DetectContentType(data)] {
		return respondFail(c, http.StatusBadRequest, "Only JPEG, PNG, GIF, and WebP images are accepted")
	}

	meme := &models.Meme{
		Title:  title,
		Image:  base64.StdEncoding.EncodeToString(data),
		UserID: userID,
	}
	if err := h.memeRepository.CreateMeme(c.Request().Context(), meme); err != nil {
		log.Printf("creating meme failed: %v", err)
		return respondFail(c, http.StatusInternalServerError, "Could not create meme")
	}

	if raw := c.FormValue("tags"); raw != "" {
		tags, err := h.tagRepository.FindOrCreateByNames(strings.Split(raw, ","))
		if err != nil {
			log.Printf("resolving tags failed: %v", err)
			return respondFail(c, http.StatusInternalServerError, "Could not create meme")
		}
		if err := h.memeRepository.ReplaceTags(c.Request().Context(), meme, tags); err != nil {
			log.Printf("associating tags failed: %v", err)
			return respondFail(c, http.StatusInternalServerError, "Could not create meme")
		}
	}

	created, err := h.memeRepository.GetMemeByID(c.Request().Context(), meme.ID)
	if err != nil {
		log.Printf("reloading created meme failed: %v", err)
		return respondFail(c, http.StatusInternalServerError, "Could not create meme")
	}

	return respondSuccess(c, http.StatusCreated, "Meme created successfully", projectMeme(created, 0, 0))
}

// GetMemeOfTheDay returns the meme pinned for today, picking one uniformly
// at random on the first request of the day. The unique date column closes
// the check-then-insert race: a loser of the insert re-fetches and returns
// the winner's pick.
func (h *MemeHandler) GetMemeOfTheDay(c echo.Context) error {
	ctx := c.Request().Context()
	today := time.Now().Format("2006-01-02")

	featured, err := h.featuredRepository.GetByDate(ctx, today)
	if err != nil {
		log.Printf("featured meme lookup failed: %v", err)
		return respondFail(c, http.StatusInternalServerError, "Could not retrieve meme of the day")
	}

	if featured == nil {
		meme, err := h.memeRepository.PickRandomMeme(ctx)
		if err != nil {
			log.Printf("random meme pick failed: %v", err)
			return respondFail(c, http.StatusInternalServerError, "Could not retrieve meme of the day")
		}
		if meme == nil {
			// Nothing to feature; leave the day unclaimed.
			return respondSuccess(c, http.StatusOK, "No memes available", nil)
		}

		inserted, err := h.featuredRepository.Create(ctx, &models.FeaturedMeme{MemeID: meme.ID, Date: today})
		if err != nil {
			log.Printf("featuring meme failed: %v", err)
			return respondFail(c, http.StatusInternalServerError, "Could not retrieve meme of the day")
		}
		if inserted {
			projection, err := h.projectWithVotes(c, meme)
			if err != nil {
				log.Printf("vote aggregation failed: %v", err)
				return respondFail(c, http.StatusInternalServerError, "Could not retrieve meme of the day")
			}
			return respondSuccess(c, http.StatusOK, "Meme of the day retrieved successfully", projection)
		}

		// A concurrent request claimed today first; serve its pick.
		featured, err = h.featuredRepository.GetByDate(ctx, today)
		if err != nil || featured == nil {
			log.Printf("featured meme re-fetch failed: %v", err)
			return respondFail(c, http.StatusInternalServerError, "Could not retrieve meme of the day")
		}
	}

	meme, err := h.memeRepository.GetMemeByID(ctx, featured.MemeID)
	if err != nil {
		log.Printf("featured meme load failed: %v", err)
		return respondFail(c, http.StatusInternalServerError, "Could not retrieve meme of the day")
	}

	projection, err := h.projectWithVotes(c, meme)
	if err != nil {
		log.Printf("vote aggregation failed: %v", err)
		return respondFail(c, http.StatusInternalServerError, "Could not retrieve meme of the day")
	}
	return respondSuccess(c, http.StatusOK, "Meme of the day retrieved successfully", projection)
}
