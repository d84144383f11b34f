package main

import (
	"context"
	"fmt"
	"html/template"
	"net/http"
	"net/smtp"
	"os"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/cnsenarathna/portfolio/auth"
	"github.com/cnsenarathna/portfolio/config"
	"github.com/cnsenarathna/portfolio/logging"
	"github.com/cnsenarathna/portfolio/store"
	"github.com/cnsenarathna/portfolio/terminal"
)

// App bundles what the handlers need.
type App struct {
	cfg      *config.Config
	store    *store.Store
	auth     *auth.Manager
	logger   *logging.Logger
	salt     string
	terminal terminal.Options
	sendMail func(name, email, message string) error
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	sentryCleanup, err := logging.InitSentry(logging.SentryConfig{
		DSN:         cfg.SentryDSN,
		Environment: cfg.Environment,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize Sentry: %v\n", err)
		os.Exit(1)
	}
	defer sentryCleanup()

	logger := logging.Init()
	for _, w := range cfg.Warnings {
		logger.Warn(w)
	}

	gin.SetMode(cfg.GinMode)

	st, err := store.Open(cfg.DatabasePath)
	if err != nil {
		logger.Error("failed to open database", "path", cfg.DatabasePath, "error", err)
		os.Exit(1)
	}
	defer st.Close()

	app, err := newApp(cfg, st, logger)
	if err != nil {
		logger.Error("failed to initialize admin", "error", err)
		os.Exit(1)
	}

	// Privacy retention runs once per start.
	go app.cleanupOldVisits()

	logger.Info("server starting", "site_url", cfg.SiteURL, "port", cfg.Port, "mode", cfg.GinMode, "database", cfg.DatabasePath)
	if err := app.router().Run(":" + cfg.Port); err != nil {
		logger.Error("server failed", "error", err)
		os.Exit(1)
	}
}

func newApp(cfg *config.Config, st *store.Store, logger *logging.Logger) (*App, error) {
	hash := []byte(cfg.AdminPasswordHash)
	if len(hash) == 0 {
		var err error
		if hash, err = auth.HashPassword(cfg.AdminPassword); err != nil {
			return nil, fmt.Errorf("hash admin password: %w", err)
		}
	}
	op := auth.Operator{Email: cfg.AdminEmail, PasswordHash: hash}

	app := &App{
		cfg:      cfg,
		store:    st,
		auth:     auth.NewManager(op, []byte(cfg.SessionSecret), cfg.SessionTTL),
		logger:   logger,
		salt:     generateSalt(),
		terminal: terminal.DefaultOptions(),
	}
	app.sendMail = app.sendContactEmail
	logger.Info("admin access available", "path", "/admin/login", "operator", cfg.AdminEmail)
	return app, nil
}

var templateFuncs = template.FuncMap{
	"date": func(t time.Time) string {
		if t.IsZero() {
			return ""
		}
		return t.Format("Jan 2, 2006")
	},
	"join": strings.Join,
}

func (a *App) router() *gin.Engine {
	r := gin.New()
	r.Use(logging.RequestLogger(a.logger), gin.Recovery())
	r.Use(a.visitorTrackingMiddleware())
	r.SetFuncMap(templateFuncs)
	r.LoadHTMLGlob("templates/*")

	r.Static("/static", "./static")

	r.GET("/", a.handleIndex)
	r.GET("/health", a.handleHealth)

	// Project cards for the filter buttons
	r.GET("/projects", func(c *gin.Context) {
		filter := c.DefaultQuery("filter", "all")
		c.HTML(http.StatusOK, "projects.html", gin.H{
			"projects": filterProjects(filter),
			"filter":   filter,
		})
	})

	r.GET("/contact-form", func(c *gin.Context) {
		c.HTML(http.StatusOK, "contact.html", gin.H{
			"title": "Contact Me",
		})
	})
	r.POST("/contact", a.handleContact)

	a.setupBlogRoutes(r)
	a.setupFileRoutes(r)
	a.setupTerminalRoutes(r)
	a.setupAdminRoutes(r)
	return r
}

func (a *App) handleIndex(c *gin.Context) {
	ctx := c.Request.Context()
	cvAvailable, err := a.store.BlobExists(ctx, a.cfg.CVFileName)
	if err != nil {
		logging.FromContext(ctx).Error("could not resolve CV", "error", err)
	}
	c.HTML(http.StatusOK, "index.html", gin.H{
		"owner":       OwnerName,
		"tagline":     Tagline,
		"about":       AboutMe,
		"skills":      SkillGroups,
		"projects":    Projects,
		"categories":  ProjectCategories,
		"cvAvailable": cvAvailable,
	})
}

// handleHealth reports whether the database answers.
func (a *App) handleHealth(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()
	if err := a.store.Ping(ctx); err != nil {
		logging.FromContext(ctx).Error("health check failed", "error", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy", "database": "unreachable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "healthy", "database": "ok"})
}

type contactForm struct {
	Name    string `form:"fullName"`
	Email   string `form:"email"`
	Message string `form:"message"`
}

// trimmed returns the form with surrounding space removed and whether every
// field is filled in.
func (f contactForm) trimmed() (contactForm, bool) {
	f.Name = strings.TrimSpace(f.Name)
	f.Email = strings.TrimSpace(f.Email)
	f.Message = strings.TrimSpace(f.Message)
	return f, f.Name != "" && f.Email != "" && f.Message != ""
}

// Contact form submission, answered with an HTMX fragment
func (a *App) handleContact(c *gin.Context) {
	var form contactForm
	bindErr := c.ShouldBind(&form)
	form, ok := form.trimmed()
	if bindErr != nil || !ok {
		c.HTML(http.StatusBadRequest, "contact-error.html", gin.H{
			"error": "Please fill in your name, email and message.",
		})
		return
	}

	if err := a.sendMail(form.Name, form.Email, form.Message); err != nil {
		logging.FromContext(c.Request.Context()).Error("error sending contact email", "error", err)
		c.HTML(http.StatusOK, "contact-error.html", gin.H{
			"error": "Sorry, there was an error sending your message. Please try again later.",
		})
		return
	}

	c.HTML(http.StatusOK, "contact-success.html", gin.H{
		"success": "Thank you for your message! I'll get back to you soon.",
	})
}

var headerSafe = strings.NewReplacer("\r", "", "\n", " ")

func (a *App) sendContactEmail(name, email, message string) error {
	cfg := a.cfg
	if !cfg.SMTPConfigured() {
		return fmt.Errorf("SMTP credentials not configured")
	}

	msg := a.contactMessage(name, email, message)
	auth := smtp.PlainAuth("", cfg.SMTPUser, cfg.SMTPPass, cfg.SMTPHost)
	if err := smtp.SendMail(cfg.SMTPHost+":"+cfg.SMTPPort, auth, cfg.SMTPUser, []string{cfg.ToEmail}, msg); err != nil {
		return fmt.Errorf("send mail: %w", err)
	}

	a.logger.Info("contact email sent", "from", email)
	return nil
}

// contactMessage builds the mail relayed for a contact form submission.
func (a *App) contactMessage(name, email, message string) []byte {
	cfg := a.cfg

	// Header values must stay on one line.
	name = headerSafe.Replace(name)
	email = headerSafe.Replace(email)

	subject := fmt.Sprintf("Portfolio Contact: %s", name)
	body := fmt.Sprintf(`
New contact form submission from your portfolio:

Name: %s
Email: %s
Message:
%s

---
Sent from the contact form at %s
`, name, email, message, cfg.SiteURL)

	return []byte("To: " + cfg.ToEmail + "\r\n" +
		"Subject: " + subject + "\r\n" +
		"From: " + cfg.SMTPUser + "\r\n" +
		"Reply-To: " + email + "\r\n" +
		"\r\n" +
		body + "\r\n")
}

func (a *App) cleanupOldVisits() {
	n, err := a.store.CleanupVisits(context.Background(), a.cfg.VisitRetention)
	if err != nil {
		a.logger.Error("error cleaning up old visitor data", "error", err)
		return
	}
	if n > 0 {
		a.logger.Info("privacy cleanup removed old visitor records", "rows", n)
	}
}
