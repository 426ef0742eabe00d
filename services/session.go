package services

import (
	"crypto/sha256"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/gorilla/sessions"
	"golang.org/x/crypto/hkdf"

	"Vidshelf/config"
)

const sessionName = "vidshelf-session"

// Flash is a one-shot message shown on the next page render.
type Flash struct {
	Kind    string
	Message string
}

// SessionStore keeps flash messages in a signed and encrypted cookie.
type SessionStore struct {
	store *sessions.CookieStore
}

// NewSessionStore derives the cookie signing and encryption keys from cfg.SessionSecret.
func NewSessionStore(cfg *config.Config) (*SessionStore, error) {
	hashKey, err := deriveKey(cfg.SessionSecret, "vidshelf session auth", 64)
	if err != nil {
		return nil, err
	}
	blockKey, err := deriveKey(cfg.SessionSecret, "vidshelf session encryption", 32)
	if err != nil {
		return nil, err
	}

	store := sessions.NewCookieStore(hashKey, blockKey)
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   86400 * 7,
		HttpOnly: true,
		Secure:   cfg.IsProduction(),
		SameSite: http.SameSiteLaxMode,
	}
	return &SessionStore{store: store}, nil
}

func deriveKey(secret, info string, size int) ([]byte, error) {
	key := make([]byte, size)
	if _, err := io.ReadFull(hkdf.New(sha256.New, []byte(secret), nil, []byte(info)), key); err != nil {
		return nil, fmt.Errorf("failed to derive session key: %w", err)
	}
	return key, nil
}

// AddFlash queues a message for the next page. kind is "success" or "error".
func (s *SessionStore) AddFlash(w http.ResponseWriter, r *http.Request, kind, message string) error {
	session, err := s.store.Get(r, sessionName)
	if err != nil && session == nil {
		return err
	}
	session.AddFlash(kind+":"+message)
	return session.Save(r, w)
}

// Flashes returns and clears the queued messages. A missing or undecodable
// cookie yields no messages.
func (s *SessionStore) Flashes(w http.ResponseWriter, r *http.Request) []Flash {
	session, err := s.store.Get(r, sessionName)
	if err != nil || session == nil {
		return nil
	}

	raw := session.Flashes()
	if len(raw) == 0 {
		return nil
	}
	if err := session.Save(r, w); err != nil {
		return nil
	}

	flashes := make([]Flash, 0, len(raw))
	for _, v := range raw {
		text, ok := v.(string)
		if !ok {
			continue
		}
		kind, message, found := strings.Cut(text, ":")
		if !found {
			kind, message = "success", text
		}
		flashes = append(flashes, Flash{Kind: kind, Message: message})
	}
	return flashes
}
