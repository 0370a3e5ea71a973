package handlers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/tech-arch1tect/postline/middleware/jwt"
	"github.com/tech-arch1tect/postline/services/comments"
	"github.com/tech-arch1tect/postline/services/ownership"
	"github.com/tech-arch1tect/postline/services/posts"
)

const (
	msgCommentNotFound        = "Comment not found"
	msgCommentUpdateForbidden = "Forbidden - You can only update your own comments"
	msgCommentDeleteForbidden = "Forbidden - You can only delete your own comments"
	msgCommentDeleted         = "Comment deleted successfully"
)

type CommentHandler struct {
	comments *comments.Service
}

func NewCommentHandler(commentService *comments.Service) *CommentHandler {
	return &CommentHandler{comments: commentService}
}

func (h *CommentHandler) ListByPost(c echo.Context) error {
	list, err := h.comments.ListByPost(c.Request().Context(), c.Param("postId"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, list)
}

func (h *CommentHandler) Get(c echo.Context) error {
	comment, err := h.comments.Get(c.Request().Context(), c.Param("commentId"))
	if err != nil {
		return commentError(err, "")
	}
	return c.JSON(http.StatusOK, comment)
}

func (h *CommentHandler) Create(c echo.Context) error {
	var input comments.Input
	if err := c.Bind(&input); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, msgInvalidBody)
	}

	identity, _ := jwt.GetIdentity(c)
	comment, err := h.comments.Create(c.Request().Context(), identity, c.Param("postId"), input)
	if err != nil {
		return commentError(err, "")
	}
	return c.JSON(http.StatusCreated, comment)
}

func (h *CommentHandler) Update(c echo.Context) error {
	var input comments.Input
	if err := c.Bind(&input); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, msgInvalidBody)
	}

	identity, _ := jwt.GetIdentity(c)
	comment, err := h.comments.Update(c.Request().Context(), identity, c.Param("commentId"), input)
	if err != nil {
		return commentError(err, msgCommentUpdateForbidden)
	}
	return c.JSON(http.StatusOK, comment)
}

func (h *CommentHandler) Delete(c echo.Context) error {
	identity, _ := jwt.GetIdentity(c)
	if err := h.comments.Delete(c.Request().Context(), identity, c.Param("commentId")); err != nil {
		return commentError(err, msgCommentDeleteForbidden)
	}
	return c.JSON(http.StatusOK, MessageResponse{Message: msgCommentDeleted})
}

func commentError(err error, forbidden string) error {
	switch {
	case errors.Is(err, comments.ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, msgCommentNotFound)
	case errors.Is(err, posts.ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, msgPostNotFound)
	case errors.Is(err, ownership.ErrForbidden):
		return echo.NewHTTPError(http.StatusForbidden, forbidden)
	case errors.Is(err, comments.ErrValidation):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return err
}
