// Package blog exposes the content pages: recipes, smart-cooking guides
// and brand news. Reading is public; publishing requires a logged-in
// user and moderation (update, delete) is admin only.
package blog

import (
	"context"
	"io"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/mmfoods/storefront/internal/apperror"
	"github.com/mmfoods/storefront/internal/backend"
	"github.com/mmfoods/storefront/internal/middleware"
	"github.com/mmfoods/storefront/internal/plugins/auth"
	"github.com/mmfoods/storefront/internal/sanitize"
)

// BlogAPI is the slice of the upstream API this plugin uses.
type BlogAPI interface {
	ListBlogs(ctx context.Context, category string) ([]backend.Blog, error)
	GetBlog(ctx context.Context, id string) (*backend.Blog, error)
	CreateBlog(ctx context.Context, creds backend.Credentials, input backend.BlogInput) error
	UpdateBlog(ctx context.Context, creds backend.Credentials, id string, input backend.BlogInput) error
	DeleteBlog(ctx context.Context, creds backend.Credentials, id string) error
}

// Handler handles HTTP requests for blog content.
type Handler struct {
	api BlogAPI
}

// NewHandler creates a new blog handler.
func NewHandler(api BlogAPI) *Handler {
	return &Handler{api: api}
}

// List returns published posts (GET /api/blogs?category=smart-cooking).
func (h *Handler) List(c echo.Context) error {
	blogs, err := h.api.ListBlogs(c.Request().Context(), c.QueryParam("category"))
	if err != nil {
		return err
	}
	if blogs == nil {
		blogs = []backend.Blog{}
	}
	return middleware.JSON(c, http.StatusOK, blogs)
}

// Get returns one post by id (GET /api/blogs/:id).
func (h *Handler) Get(c echo.Context) error {
	blog, err := h.api.GetBlog(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return middleware.JSON(c, http.StatusOK, blog)
}

// Create publishes a new post (POST /api/blogs, multipart).
func (h *Handler) Create(c echo.Context) error {
	input, err := bindBlogInput(c)
	if err != nil {
		return err
	}
	if input.Title == "" || input.Content == "" {
		return apperror.NewValidation("title and content are required")
	}
	if err := h.api.CreateBlog(c.Request().Context(), auth.GetCredentials(c), input); err != nil {
		return err
	}
	return middleware.JSONMessage(c, http.StatusCreated, "blog created")
}

// Update replaces an existing post (PUT /api/blogs/:id, multipart).
func (h *Handler) Update(c echo.Context) error {
	input, err := bindBlogInput(c)
	if err != nil {
		return err
	}
	if err := h.api.UpdateBlog(c.Request().Context(), auth.GetCredentials(c), c.Param("id"), input); err != nil {
		return err
	}
	return middleware.JSONMessage(c, http.StatusOK, "blog updated")
}

// Delete removes a post (DELETE /api/blogs/:id).
func (h *Handler) Delete(c echo.Context) error {
	if err := h.api.DeleteBlog(c.Request().Context(), auth.GetCredentials(c), c.Param("id")); err != nil {
		return err
	}
	return middleware.JSONMessage(c, http.StatusOK, "blog deleted")
}

// bindBlogInput reads the multipart form fields plus the optional cover
// image.
func bindBlogInput(c echo.Context) (backend.BlogInput, error) {
	input := backend.BlogInput{
		Title:    sanitize.Plain(c.FormValue("title")),
		Content:  sanitize.HTML(c.FormValue("content")),
		Category: sanitize.Plain(c.FormValue("category")),
	}

	file, err := c.FormFile("image")
	if err != nil {
		return input, nil
	}
	src, err := file.Open()
	if err != nil {
		return input, apperror.NewBadRequest("could not read image upload")
	}
	defer src.Close()
	data, err := io.ReadAll(io.LimitReader(src, 8<<20))
	if err != nil {
		return input, apperror.NewBadRequest("could not read image upload")
	}
	input.ImageName = file.Filename
	input.ImageData = data
	return input, nil
}
