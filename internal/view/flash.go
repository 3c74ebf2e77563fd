package view

import (
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/garnizeh/staffboard/pkg/models"
)

const FlashCookieName = "staffboard_flash"

// flashTTL bounds how long an unread message survives.
const flashTTL = 5 * time.Minute

type flashClaims struct {
	Messages []models.Message `json:"messages"`
	jwt.RegisteredClaims
}

// FlashStore keeps pending messages in a signed cookie between a redirect
// and the next rendered page.
type FlashStore struct {
	secret []byte
	secure bool
}

func NewFlashStore(secret string, secure bool) *FlashStore {
	return &FlashStore{secret: []byte("flash:" + secret), secure: secure}
}

// Read returns the messages stored on the request. Tampered or expired
// cookies yield no messages.
func (s *FlashStore) Read(r *http.Request) []models.Message {
	c, err := r.Cookie(FlashCookieName)
	if err != nil || c.Value == "" {
		return nil
	}
	msgs, err := s.Decode(c.Value)
	if err != nil {
		return nil
	}
	return msgs
}

// Decode verifies a flash cookie value and returns its messages.
func (s *FlashStore) Decode(value string) ([]models.Message, error) {
	claims := &flashClaims{}
	token, err := jwt.ParseWithClaims(value, claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, fmt.Errorf("invalid flash cookie: %w", err)
	}
	return claims.Messages, nil
}

// Write stores msgs for the next request. An empty list clears the cookie.
func (s *FlashStore) Write(w http.ResponseWriter, msgs []models.Message) error {
	if len(msgs) == 0 {
		s.Clear(w)
		return nil
	}

	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, flashClaims{
		Messages: msgs,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(flashTTL)),
		},
	})
	value, err := token.SignedString(s.secret)
	if err != nil {
		return fmt.Errorf("sign flash: %w", err)
	}

	http.SetCookie(w, &http.Cookie{
		Name:     FlashCookieName,
		Value:    value,
		Path:     "/",
		MaxAge:   int(flashTTL.Seconds()),
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

// Clear drops any stored messages.
func (s *FlashStore) Clear(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     FlashCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteLaxMode,
	})
}
