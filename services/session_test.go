package services

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"Vidshelf/config"
)

func requestWithCookies(rec *httptest.ResponseRecorder) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/settings", nil)
	for _, c := range rec.Result().Cookies() {
		req.AddCookie(c)
	}
	return req
}

func TestSessionFlashesRoundTrip(t *testing.T) {
	store, err := NewSessionStore(&config.Config{SessionSecret: "test-secret"})
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	require.NoError(t, store.AddFlash(rec, httptest.NewRequest(http.MethodPost, "/scan", nil), "error", "Path: /nowhere"))

	rec2 := httptest.NewRecorder()
	flashes := store.Flashes(rec2, requestWithCookies(rec))
	require.Len(t, flashes, 1)
	assert.Equal(t, Flash{Kind: "error", Message: "Path: /nowhere"}, flashes[0])

	// Flashes are consumed on read.
	assert.Empty(t, store.Flashes(httptest.NewRecorder(), requestWithCookies(rec2)))
}

func TestSessionFlashesWithoutCookie(t *testing.T) {
	store, err := NewSessionStore(&config.Config{SessionSecret: "test-secret"})
	require.NoError(t, err)

	assert.Empty(t, store.Flashes(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil)))
}

func TestSessionRejectsCookieFromOtherSecret(t *testing.T) {
	first, err := NewSessionStore(&config.Config{SessionSecret: "one"})
	require.NoError(t, err)
	second, err := NewSessionStore(&config.Config{SessionSecret: "two"})
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	require.NoError(t, first.AddFlash(rec, httptest.NewRequest(http.MethodPost, "/", nil), "success", "hello"))

	assert.Empty(t, second.Flashes(httptest.NewRecorder(), requestWithCookies(rec)))
}

func TestDeriveKey(t *testing.T) {
	a, err := deriveKey("secret", "auth", 64)
	require.NoError(t, err)
	b, err := deriveKey("secret", "auth", 64)
	require.NoError(t, err)
	c, err := deriveKey("secret", "encryption", 64)
	require.NoError(t, err)

	assert.Len(t, a, 64)
	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
}
