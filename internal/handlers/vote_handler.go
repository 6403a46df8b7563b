package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/mememuseum/backend/internal/models"
	"github.com/mememuseum/backend/internal/repositories"
	"gorm.io/gorm"
)

// VoteHandler handles vote write requests. The write boundary only accepts
// the values -1 and +1; retraction goes through DELETE.
type VoteHandler struct {
	voteRepository repositories.VoteRepository
	memeRepository repositories.MemeRepository
}

// NewVoteHandler creates a new VoteHandler
func NewVoteHandler(voteRepo repositories.VoteRepository, memeRepo repositories.MemeRepository) *VoteHandler {
	return &VoteHandler{
		voteRepository: voteRepo,
		memeRepository: memeRepo,
	}
}

// RegisterVoteRoutes registers vote-related routes
func (h *VoteHandler) RegisterVoteRoutes(g *echo.Group) {
	g.POST("/memes/:id/vote", h.CreateVote)
	g.DELETE("/memes/:id/vote", h.DeleteVote)
}

// CreateVote upserts the caller's vote on a meme
func (h *VoteHandler) CreateVote(c echo.Context) error {
	userID := getUserIDFromContext(c)
	if userID == 0 {
		return respondFail(c, http.StatusUnauthorized, "Authentication required")
	}

	memeID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return respondFail(c, http.StatusBadRequest, "Invalid meme ID")
	}

	var req models.CreateVoteRequest
	if err := c.Bind(&req); err != nil {
		return respondFail(c, http.StatusBadRequest, "Invalid request payload")
	}

	validate := validator.New()
	if err := validate.Struct(req); err != nil {
		return respondFail(c, http.StatusBadRequest, "Vote value must be -1 or 1")
	}

	if _, err := h.memeRepository.GetMemeByID(c.Request().Context(), uint(memeID)); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return respondFail(c, http.StatusNotFound, "Meme not found")
		}
		return respondFail(c, http.StatusInternalServerError, "Could not assign vote")
	}

	if err := h.voteRepository.SetVote(userID, uint(memeID), req.Value); err != nil {
		return respondFail(c, http.StatusInternalServerError, "Could not assign vote")
	}

	return respondSuccess(c, http.StatusOK, "Vote assigned successfully", echo.Map{
		"meme_id": uint(memeID),
		"value":   req.Value,
	})
}

// DeleteVote removes the caller's vote on a meme. No vote row is the no-vote
// state, so deleting an absent vote is a 404.
func (h *VoteHandler) DeleteVote(c echo.Context) error {
	userID := getUserIDFromContext(c)
	if userID == 0 {
		return respondFail(c, http.StatusUnauthorized, "Authentication required")
	}

	memeID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return respondFail(c, http.StatusBadRequest, "Invalid meme ID")
	}

	if err := h.voteRepository.DeleteVote(userID, uint(memeID)); err != nil {
		if errors.Is(err, repositories.ErrVoteNotFound) {
			return respondFail(c, http.StatusNotFound, "Vote not found")
		}
		return respondFail(c, http.StatusInternalServerError, "Could not delete vote")
	}

	return respondSuccess(c, http.StatusOK, "Vote deleted successfully", nil)
}
