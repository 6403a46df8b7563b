package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/mememuseum/backend/internal/models"
	"github.com/mememuseum/backend/internal/repositories"
	"gorm.io/gorm"
)

// CommentHandler handles HTTP requests related to comments
type CommentHandler struct {
	commentRepository repositories.CommentRepository
	memeRepository    repositories.MemeRepository
}

// NewCommentHandler creates a new CommentHandler
func NewCommentHandler(commentRepo repositories.CommentRepository, memeRepo repositories.MemeRepository) *CommentHandler {
	return &CommentHandler{
		commentRepository: commentRepo,
		memeRepository:    memeRepo,
	}
}

// RegisterCommentRoutes registers comment-related routes
func (h *CommentHandler) RegisterCommentRoutes(public, protected *echo.Group) {
	public.GET("/memes/:id/comments", h.GetComments)
	protected.POST("/memes/:id/comments", h.CreateComment)
	protected.DELETE("/comments/:id", h.DeleteComment)
}

// GetComments retrieves all comments for a meme, newest first
func (h *CommentHandler) GetComments(c echo.Context) error {
	memeID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return respondFail(c, http.StatusBadRequest, "Invalid meme ID")
	}

	if _, err := h.memeRepository.GetMemeByID(c.Request().Context(), uint(memeID)); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return respondFail(c, http.StatusNotFound, "Meme not found")
		}
		return respondFail(c, http.StatusInternalServerError, "Could not retrieve comments")
	}

	comments, err := h.commentRepository.GetCommentsByMemeID(uint(memeID))
	if err != nil {
		return respondFail(c, http.StatusInternalServerError, "Could not retrieve comments")
	}

	return respondSuccess(c, http.StatusOK, "Comments retrieved successfully", comments)
}

// CreateComment creates a new comment on a meme
func (h *CommentHandler) CreateComment(c echo.Context) error {
	userID := getUserIDFromContext(c)
	if userID == 0 {
		return respondFail(c, http.StatusUnauthorized, "Authentication required")
	}

	memeID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return respondFail(c, http.StatusBadRequest, "Invalid meme ID")
	}

	var req models.CreateCommentRequest
	if err := c.Bind(&req); err != nil {
		return respondFail(c, http.StatusBadRequest, "Invalid request payload")
	}

	validate := validator.New()
	if err := validate.Struct(req); err != nil {
		return respondFail(c, http.StatusBadRequest, "Comment must be between 1 and 1000 characters")
	}

	if _, err := h.memeRepository.GetMemeByID(c.Request().Context(), uint(memeID)); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return respondFail(c, http.StatusNotFound, "Meme not found")
		}
		return respondFail(c, http.StatusInternalServerError, "Could not create comment")
	}

	comment := &models.Comment{
		Content: strings.TrimSpace(req.Content),
		UserID:  userID,
		MemeID:  uint(memeID),
	}
	if err := h.commentRepository.CreateComment(comment); err != nil {
		return respondFail(c, http.StatusInternalServerError, "Could not create comment")
	}

	return respondSuccess(c, http.StatusCreated, "Comment created successfully", comment)
}

// DeleteComment deletes a comment; only its author may do so
func (h *CommentHandler) DeleteComment(c echo.Context) error {
	userID := getUserIDFromContext(c)
	if userID == 0 {
		return respondFail(c, http.StatusUnauthorized, "Authentication required")
	}

	commentID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return respondFail(c, http.StatusBadRequest, "Invalid comment ID")
	}

	comment, err := h.commentRepository.GetCommentByID(uint(commentID))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return respondFail(c, http.StatusNotFound, "Comment not found")
		}
		return respondFail(c, http.StatusInternalServerError, "Could not delete comment")
	}

	if comment.UserID != userID {
		return respondFail(c, http.StatusForbidden, "You are not authorized to delete this comment")
	}

	if err := h.commentRepository.DeleteComment(uint(commentID)); err != nil {
		return respondFail(c, http.StatusInternalServerError, "Could not delete comment")
	}

	return respondSuccess(c, http.StatusOK, "Comment deleted successfully", nil)
}
