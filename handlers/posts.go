package handlers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/tech-arch1tect/postline/middleware/jwt"
	"github.com/tech-arch1tect/postline/services/ownership"
	"github.com/tech-arch1tect/postline/services/posts"
)

const (
	msgPostNotFound        = "Post not found"
	msgPostUpdateForbidden = "Forbidden - You can only update your own posts"
	msgPostDeleteForbidden = "Forbidden - You can only delete your own posts"
)

type PostHandler struct {
	posts *posts.Service
}

func NewPostHandler(postService *posts.Service) *PostHandler {
	return &PostHandler{posts: postService}
}

func (h *PostHandler) List(c echo.Context) error {
	list, err := h.posts.List(c.Request().Context(), c.QueryParam("senderID"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, list)
}

func (h *PostHandler) Get(c echo.Context) error {
	post, err := h.posts.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return postError(err, "")
	}
	return c.JSON(http.StatusOK, post)
}

func (h *PostHandler) Create(c echo.Context) error {
	var input posts.Input
	if err := c.Bind(&input); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, msgInvalidBody)
	}

	identity, _ := jwt.GetIdentity(c)
	post, err := h.posts.Create(c.Request().Context(), identity, input)
	if err != nil {
		return postError(err, "")
	}
	return c.JSON(http.StatusCreated, post)
}

func (h *PostHandler) Update(c echo.Context) error {
	var input posts.Input
	if err := c.Bind(&input); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, msgInvalidBody)
	}

	identity, _ := jwt.GetIdentity(c)
	post, err := h.posts.Update(c.Request().Context(), identity, c.Param("id"), input)
	if err != nil {
		return postError(err, msgPostUpdateForbidden)
	}
	return c.JSON(http.StatusOK, post)
}

func (h *PostHandler) Delete(c echo.Context) error {
	identity, _ := jwt.GetIdentity(c)
	post, err := h.posts.Delete(c.Request().Context(), identity, c.Param("id"))
	if err != nil {
		return postError(err, msgPostDeleteForbidden)
	}
	return c.JSON(http.StatusOK, post)
}

func postError(err error, forbidden string) error {
	switch {
	case errors.Is(err, posts.ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, msgPostNotFound)
	case errors.Is(err, ownership.ErrForbidden):
		return echo.NewHTTPError(http.StatusForbidden, forbidden)
	case errors.Is(err, posts.ErrValidation):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return err
}
