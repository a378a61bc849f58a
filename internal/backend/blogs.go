package backend

import (
	"context"
	"net/http"
	"net/url"
)

// ListBlogs returns published blog posts, optionally filtered by category
// (e.g., "smart-cooking").
func (c *Client) ListBlogs(ctx context.Context, category string) ([]Blog, error) {
	path := "/blogs/"
	if category != "" {
		path += "?category=" + url.QueryEscape(category)
	}
	var blogs []Blog
	if err := c.getJSON(ctx, path, nil, &blogs); err != nil {
		return nil, err
	}
	return blogs, nil
}

// GetBlog fetches a single blog post by id.
func (c *Client) GetBlog(ctx context.Context, id string) (*Blog, error) {
	var blog Blog
	if err := c.getJSON(ctx, "/blogs/"+id, nil, &blog); err != nil {
		return nil, err
	}
	return &blog, nil
}

// CreateBlog publishes a new post with an optional cover image (multipart).
func (c *Client) CreateBlog(ctx context.Context, creds Credentials, input BlogInput) error {
	return c.sendBlogMultipart(ctx, http.MethodPost, "/blogs/", creds, input)
}

// UpdateBlog replaces an existing post's content (multipart PUT).
func (c *Client) UpdateBlog(ctx context.Context, creds Credentials, id string, input BlogInput) error {
	return c.sendBlogMultipart(ctx, http.MethodPut, "/blogs/"+id, creds, input)
}

// DeleteBlog removes a post.
func (c *Client) DeleteBlog(ctx context.Context, creds Credentials, id string) error {
	return c.sendJSON(ctx, http.MethodDelete, "/blogs/"+id, creds, nil, nil)
}

// sendBlogMultipart shares the multipart plumbing between create and update.
func (c *Client) sendBlogMultipart(ctx context.Context, method, path string, creds Credentials, input BlogInput) error {
	fields := map[string]string{
		"title":    input.Title,
		"content":  input.Content,
		"category": input.Category,
	}
	body, contentType, err := encodeMultipart(fields, "image", input.ImageName, input.ImageData)
	if err != nil {
		return err
	}
	req, err := c.newRequest(ctx, method, path, body, contentType, creds)
	if err != nil {
		return err
	}
	resp, err := c.send(req)
	if err != nil {
		return err
	}
	return c.decode(resp, nil)
}
