package main

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	"github.com/cnsenarathna/portfolio/logging"
	"github.com/cnsenarathna/portfolio/store"
)

const cvUnavailable = "CV Not Available"

func (a *App) setupFileRoutes(r *gin.Engine) {
	// Resolve the CV to a short-lived download link
	r.GET("/cv", func(c *gin.Context) {
		link, err := a.downloadURL(c, a.cfg.CVFileName)
		if errors.Is(err, store.ErrNotFound) {
			c.String(http.StatusNotFound, cvUnavailable)
			return
		}
		if err != nil {
			logging.FromContext(c.Request.Context()).Error("could not get CV download URL", "error", err)
			c.String(http.StatusInternalServerError, cvUnavailable)
			return
		}
		c.Redirect(http.StatusFound, link)
	})

	r.GET("/files/:name", func(c *gin.Context) {
		name := c.Param("name")
		if err := a.auth.VerifyDownload(c.Query("token"), name); err != nil {
			c.String(http.StatusForbidden, "This download link is invalid or has expired.")
			return
		}

		blob, err := a.store.GetBlob(c.Request.Context(), name)
		if errors.Is(err, store.ErrNotFound) {
			c.String(http.StatusNotFound, "File not found.")
			return
		}
		if err != nil {
			logging.FromContext(c.Request.Context()).Error("error reading file", "name", name, "error", err)
			c.String(http.StatusInternalServerError, "Error loading file.")
			return
		}

		c.Header("Content-Disposition", `attachment; filename="`+name+`"`)
		c.Header("Cache-Control", "private, no-store")
		c.Data(http.StatusOK, blob.ContentType, blob.Data)
	})
}

// downloadURL returns a time-limited link to a stored file, or
// store.ErrNotFound when nothing is stored under name.
func (a *App) downloadURL(c *gin.Context, name string) (string, error) {
	ok, err := a.store.BlobExists(c.Request.Context(), name)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", store.ErrNotFound
	}
	token, err := a.auth.SignDownload(name, a.cfg.CVLinkTTL)
	if err != nil {
		return "", err
	}
	return "/files/" + url.PathEscape(name) + "?token=" + url.QueryEscape(token), nil
}
