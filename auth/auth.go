// Package auth gates the admin panel behind a single operator account and
// signs the short-lived links used to download uploaded files.
package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidCredentials = errors.New("auth: invalid credentials")
	ErrInvalidToken       = errors.New("auth: invalid token")
)

const (
	audienceAdmin    = "admin"
	audienceDownload = "download"
)

// Operator is the one account allowed into the admin panel.
type Operator struct {
	Email        string
	PasswordHash []byte
}

// HashPassword returns a bcrypt hash suitable for Operator.PasswordHash.
func HashPassword(password string) ([]byte, error) {
	return bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
}

// Session is an authenticated operator session.
type Session struct {
	Email     string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// Manager issues and validates signed tokens.
type Manager struct {
	operator Operator
	secret   []byte
	ttl      time.Duration
	now      func() time.Time
}

// NewManager returns a manager signing with secret. Sessions last ttl.
func NewManager(op Operator, secret []byte, ttl time.Duration) *Manager {
	return &Manager{
		operator: op,
		secret:   secret,
		ttl:      ttl,
		now:      time.Now,
	}
}

// SignIn checks the credentials and returns a session with its token.
func (m *Manager) SignIn(email, password string) (Session, string, error) {
	emailOK := strings.EqualFold(strings.TrimSpace(email), m.operator.Email)
	// Always run bcrypt so a wrong email costs the same as a wrong password.
	pwErr := bcrypt.CompareHashAndPassword(m.operator.PasswordHash, []byte(password))
	if !emailOK || pwErr != nil {
		return Session{}, "", ErrInvalidCredentials
	}

	now := m.now().Truncate(time.Second)
	s := Session{
		Email:     m.operator.Email,
		IssuedAt:  now,
		ExpiresAt: now.Add(m.ttl),
	}
	token, err := m.sign(audienceAdmin, s.Email, now, s.ExpiresAt)
	if err != nil {
		return Session{}, "", err
	}
	return s, token, nil
}

// Current resolves a session token into the signed-in session.
func (m *Manager) Current(token string) (Session, error) {
	claims, err := m.parse(token, audienceAdmin)
	if err != nil {
		return Session{}, err
	}
	if !strings.EqualFold(claims.Subject, m.operator.Email) {
		return Session{}, ErrInvalidToken
	}
	return Session{
		Email:     claims.Subject,
		IssuedAt:  claims.IssuedAt.Time,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}

// SignDownload returns a token granting access to the named file for ttl.
func (m *Manager) SignDownload(name string, ttl time.Duration) (string, error) {
	now := m.now()
	return m.sign(audienceDownload, name, now, now.Add(ttl))
}

// VerifyDownload checks a download token was issued for name and is unexpired.
func (m *Manager) VerifyDownload(token, name string) error {
	claims, err := m.parse(token, audienceDownload)
	if err != nil {
		return err
	}
	if claims.Subject != name {
		return ErrInvalidToken
	}
	return nil
}

func (m *Manager) sign(audience, subject string, issued, expires time.Time) (string, error) {
	claims := jwt.RegisteredClaims{
		Subject:   subject,
		Audience:  jwt.ClaimStrings{audience},
		IssuedAt:  jwt.NewNumericDate(issued),
		ExpiresAt: jwt.NewNumericDate(expires),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return token, nil
}

func (m *Manager) parse(token, audience string) (*jwt.RegisteredClaims, error) {
	if token == "" {
		return nil, ErrInvalidToken
	}
	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(token, claims,
		func(t *jwt.Token) (interface{}, error) { return m.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithAudience(audience),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	return claims, nil
}
