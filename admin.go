// admin.go - operator login, CV upload, post publishing and visitor stats
package main

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/gin-gonic/gin"

	"github.com/cnsenarathna/portfolio/auth"
	"github.com/cnsenarathna/portfolio/logging"
	"github.com/cnsenarathna/portfolio/store"
)

const (
	sessionCookie = "admin_session"
	sessionKey    = "admin_session"
)

// notification is the banner shown at the top of the dashboard.
type notification struct {
	Message string
	Type    string // success or error
}

func success(msg string) *notification { return &notification{Message: msg, Type: "success"} }
func failure(msg string) *notification { return &notification{Message: msg, Type: "error"} }

func generateSalt() string {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		panic("failed to generate salt: " + err.Error())
	}
	return hex.EncodeToString(b)
}

// Hash IP address for privacy (consistent per IP for the life of the process)
func (a *App) hashIP(ip string) string {
	sum := sha256.Sum256([]byte(ip + a.salt))
	return hex.EncodeToString(sum[:])[:16]
}

// shouldTrack skips static files, admin pages, sockets, health probes and
// Do Not Track.
func shouldTrack(path, dnt string) bool {
	if dnt == "1" {
		return false
	}
	for _, prefix := range []string{"/static/", "/admin/", "/files/", "/terminal/", "/favicon", "/privacy", "/health"} {
		if strings.HasPrefix(path, prefix) {
			return false
		}
	}
	return true
}

// Privacy-conscious visitor tracking middleware
func (a *App) visitorTrackingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.Request.URL.Path
		if c.Request.Method != http.MethodGet || !shouldTrack(path, c.GetHeader("DNT")) {
			c.Next()
			return
		}

		hashed := a.hashIP(c.ClientIP())
		userAgent := c.GetHeader("User-Agent")
		go func() {
			if err := a.store.RecordVisit(context.Background(), hashed, userAgent, path); err != nil {
				a.logger.Warn("error recording visitor", "error", err)
			}
		}()
		c.Next()
	}
}

// requireOperator resolves the current session and redirects to the login
// page when there is none.
func (a *App) requireOperator() gin.HandlerFunc {
	return func(c *gin.Context) {
		session, ok := a.currentSession(c)
		if !ok {
			c.Redirect(http.StatusFound, "/admin/login")
			c.Abort()
			return
		}
		c.Set(sessionKey, session)
		c.Next()
	}
}

func (a *App) currentSession(c *gin.Context) (auth.Session, bool) {
	token, err := c.Cookie(sessionCookie)
	if err != nil {
		return auth.Session{}, false
	}
	session, err := a.auth.Current(token)
	if err != nil {
		return auth.Session{}, false
	}
	return session, true
}

func (a *App) setSessionCookie(c *gin.Context, token string, maxAge int) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(sessionCookie, token, maxAge, "/admin", "", gin.Mode() == gin.ReleaseMode, true)
}

func (a *App) renderDashboard(c *gin.Context, status int, notice *notification) {
	stats, err := a.store.Stats(c.Request.Context())
	if err != nil {
		logging.FromContext(c.Request.Context()).Error("error loading admin stats", "error", err)
		c.HTML(http.StatusInternalServerError, "admin-error.html", gin.H{
			"error": "Failed to load statistics",
		})
		return
	}
	session, _ := c.Get(sessionKey)
	c.HTML(status, "admin-dashboard.html", gin.H{
		"session":      session,
		"stats":        stats,
		"notification": notice,
		"cvFileName":   a.cfg.CVFileName,
	})
}

type postForm struct {
	Title   string `form:"title" binding:"required"`
	Summary string `form:"summary" binding:"required"`
	Content string `form:"content" binding:"required"`
}

func (f postForm) input() (store.PostInput, bool) {
	in := store.PostInput{
		Title:   strings.TrimSpace(f.Title),
		Summary: strings.TrimSpace(f.Summary),
		Content: strings.TrimSpace(f.Content),
	}
	return in, in.Title != "" && in.Summary != "" && in.Content != ""
}

// Setup all admin routes
func (a *App) setupAdminRoutes(r *gin.Engine) {
	r.GET("/privacy", func(c *gin.Context) {
		c.HTML(http.StatusOK, "privacy.html", gin.H{
			"title": "Privacy Policy",
		})
	})

	r.GET("/admin", func(c *gin.Context) {
		c.Redirect(http.StatusFound, "/admin/dashboard")
	})

	r.GET("/admin/login", func(c *gin.Context) {
		if _, ok := a.currentSession(c); ok {
			c.Redirect(http.StatusFound, "/admin/dashboard")
			return
		}
		c.HTML(http.StatusOK, "admin-login.html", gin.H{
			"title": "Admin Login",
		})
	})

	r.POST("/admin/login", func(c *gin.Context) {
		email := c.PostForm("email")
		password := c.PostForm("password")
		log := logging.FromContext(c.Request.Context())

		session, token, err := a.auth.SignIn(email, password)
		if err != nil {
			if !errors.Is(err, auth.ErrInvalidCredentials) {
				log.Error("admin login error", "error", err)
			}
			log.Warn("failed admin login attempt", "client", a.hashIP(c.ClientIP()))
			c.HTML(http.StatusUnauthorized, "admin-login.html", gin.H{
				"title": "Admin Login",
				"email": email,
				"error": "Failed to login. Please check your credentials.",
			})
			return
		}

		a.setSessionCookie(c, token, int(session.ExpiresAt.Sub(session.IssuedAt).Seconds()))
		log.Info("admin login successful", "client", a.hashIP(c.ClientIP()))
		c.Redirect(http.StatusFound, "/admin/dashboard")
	})

	r.GET("/admin/logout", func(c *gin.Context) {
		a.setSessionCookie(c, "", -1)
		logging.FromContext(c.Request.Context()).Info("admin logout", "client", a.hashIP(c.ClientIP()))
		c.Redirect(http.StatusFound, "/admin/login")
	})

	adminGroup := r.Group("/admin")
	adminGroup.Use(a.requireOperator())

	adminGroup.GET("/dashboard", func(c *gin.Context) {
		a.renderDashboard(c, http.StatusOK, nil)
	})

	// Replace the CV under its well-known name
	adminGroup.POST("/cv", func(c *gin.Context) {
		log := logging.FromContext(c.Request.Context())
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, a.cfg.MaxUploadSize)

		header, err := c.FormFile("cv")
		if err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				a.renderDashboard(c, http.StatusRequestEntityTooLarge, failure("CV file is too large."))
				return
			}
			a.renderDashboard(c, http.StatusBadRequest, failure("Please select a CV file first."))
			return
		}
		if header.Size == 0 {
			a.renderDashboard(c, http.StatusBadRequest, failure("Please select a CV file first."))
			return
		}

		f, err := header.Open()
		if err != nil {
			log.Error("cv upload error", "error", err)
			a.renderDashboard(c, http.StatusInternalServerError, failure("Error uploading CV."))
			return
		}
		defer f.Close()
		data, err := io.ReadAll(f)
		if err != nil {
			log.Error("cv upload error", "error", err)
			a.renderDashboard(c, http.StatusInternalServerError, failure("Error uploading CV."))
			return
		}

		contentType := mimetype.Detect(data).String()
		if err := a.store.PutBlob(c.Request.Context(), a.cfg.CVFileName, contentType, data); err != nil {
			log.Error("cv upload error", "error", err)
			a.renderDashboard(c, http.StatusInternalServerError, failure("Error uploading CV."))
			return
		}

		log.Info("cv uploaded", "name", a.cfg.CVFileName, "bytes", len(data), "content_type", contentType)
		a.renderDashboard(c, http.StatusOK, success("CV uploaded successfully!"))
	})

	adminGroup.POST("/posts", func(c *gin.Context) {
		var form postForm
		bindErr := c.ShouldBind(&form)
		in, ok := form.input()
		if bindErr != nil || !ok {
			a.renderDashboard(c, http.StatusBadRequest, failure("All fields are required."))
			return
		}

		post, err := a.store.CreatePost(c.Request.Context(), in)
		if err != nil {
			logging.FromContext(c.Request.Context()).Error("blog post error", "error", err)
			a.renderDashboard(c, http.StatusInternalServerError, failure("Error creating post."))
			return
		}

		logging.FromContext(c.Request.Context()).Info("blog post created", "id", post.ID)
		a.renderDashboard(c, http.StatusOK, success("Blog post created successfully!"))
	})

	adminGroup.GET("/api/stats", func(c *gin.Context) {
		stats, err := a.store.Stats(c.Request.Context())
		if err != nil {
			logging.FromContext(c.Request.Context()).Error("error loading admin stats", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load statistics"})
			return
		}
		c.JSON(http.StatusOK, stats)
	})

	adminGroup.GET("/visitors", func(c *gin.Context) {
		visits, err := a.store.RecentVisits(c.Request.Context(), 200)
		if err != nil {
			logging.FromContext(c.Request.Context()).Error("error loading visitors", "error", err)
			c.HTML(http.StatusInternalServerError, "admin-error.html", gin.H{
				"error": "Failed to load visitors",
			})
			return
		}
		c.HTML(http.StatusOK, "admin-visitors.html", gin.H{
			"title":    "Visitors",
			"visitors": visits,
		})
	})

	adminGroup.GET("/export/stats", func(c *gin.Context) {
		stats, err := a.store.Stats(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load statistics"})
			return
		}
		c.Header("Content-Disposition", "attachment; filename=admin-stats.json")
		c.JSON(http.StatusOK, stats)
	})

	adminGroup.POST("/privacy/cleanup", func(c *gin.Context) {
		go a.cleanupOldVisits()
		c.JSON(http.StatusOK, gin.H{"message": "Privacy cleanup initiated"})
	})
}
