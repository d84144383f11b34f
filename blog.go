package main

import (
	"bytes"
	"errors"
	"html/template"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yuin/goldmark"

	"github.com/cnsenarathna/portfolio/logging"
	"github.com/cnsenarathna/portfolio/store"
)

// renderMarkdown converts post content to HTML. Raw HTML in the source is
// not passed through.
func renderMarkdown(src string) (template.HTML, error) {
	var buf bytes.Buffer
	if err := goldmark.Convert([]byte(src), &buf); err != nil {
		return "", err
	}
	return template.HTML(buf.String()), nil
}

func (a *App) setupBlogRoutes(r *gin.Engine) {
	// The terminal's blog command navigates to blog.html.
	r.GET("/blog.html", a.handleBlog)
	r.GET("/blog", a.handleBlog)

	r.GET("/post.html", func(c *gin.Context) {
		a.renderPost(c, c.Query("id"))
	})
	r.GET("/post/:id", func(c *gin.Context) {
		a.renderPost(c, c.Param("id"))
	})
}

func (a *App) handleBlog(c *gin.Context) {
	posts, err := a.store.ListPosts(c.Request.Context())
	if err != nil {
		logging.FromContext(c.Request.Context()).Error("error fetching posts", "error", err)
		c.HTML(http.StatusInternalServerError, "blog.html", gin.H{
			"title": "Blog",
			"error": "Error loading posts.",
		})
		return
	}
	c.HTML(http.StatusOK, "blog.html", gin.H{
		"title": "Blog",
		"posts": posts,
	})
}

func (a *App) renderPost(c *gin.Context, id string) {
	fail := func(status int, msg string) {
		c.HTML(status, "post.html", gin.H{
			"title": "Post",
			"error": msg,
		})
	}

	if id == "" {
		fail(http.StatusBadRequest, "No post ID provided.")
		return
	}

	post, err := a.store.GetPost(c.Request.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		fail(http.StatusNotFound, "Post not found.")
		return
	}
	if err != nil {
		logging.FromContext(c.Request.Context()).Error("error fetching post", "id", id, "error", err)
		fail(http.StatusInternalServerError, "Error loading post.")
		return
	}

	body, err := renderMarkdown(post.Content)
	if err != nil {
		logging.FromContext(c.Request.Context()).Error("error rendering post", "id", id, "error", err)
		fail(http.StatusInternalServerError, "Error loading post.")
		return
	}

	c.HTML(http.StatusOK, "post.html", gin.H{
		"title": post.Title,
		"post":  post,
		"body":  body,
	})
}
