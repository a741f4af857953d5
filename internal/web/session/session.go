package session

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/session"
)

// CookieName is the name of the cookie carrying the session ID.
const CookieName = "session"

// ErrNotInitialized is returned when the session store has not been set up.
var ErrNotInitialized = errors.New("session store not initialized")

// ErrNotFound is returned when no data is stored under a session ID.
var ErrNotFound = errors.New("session not found")

// Store is the global session store instance.
var Store *session.Store

// Data represents the session data structure. Only the user identity is
// kept; permissions are resolved from the database on every request.
type Data struct {
	UserID   uint64    `json:"userId"`
	Username string    `json:"username"`
	LoginAt  time.Time `json:"loginAt"`
}

// Write writes the session data for the given session ID with an expiration duration.
func (s *Data) Write(sessionID string, exp time.Duration) error {
	if Store == nil {
		return ErrNotInitialized
	}

	out, err := json.Marshal(s)
	if err != nil {
		return err
	}

	return Store.Storage.Set(sessionID, out, exp)
}

// Read reads the session data for the given session ID.
func (s *Data) Read(sessionID string) error {
	if Store == nil {
		return ErrNotInitialized
	}

	byteData, err := Store.Storage.Get(sessionID)
	if err != nil {
		return err
	}

	if len(byteData) == 0 {
		return ErrNotFound
	}

	return json.Unmarshal(byteData, s)
}

// Delete removes the session data for the given session ID.
func Delete(sessionID string) error {
	if Store == nil {
		return ErrNotInitialized
	}

	return Store.Storage.Delete(sessionID)
}

// Clear removes the session of the request's cookie from the store and
// expires the cookie.
func Clear(c *fiber.Ctx) error {
	var err error
	if sessionID := c.Cookies(CookieName); sessionID != "" {
		err = Delete(sessionID)
	}

	c.ClearCookie(CookieName)

	return err
}

// Init initializes the session store with the provided storage backend.
// A nil storage falls back to the in-memory store.
func Init(storage fiber.Storage, expiration time.Duration) {
	Store = session.New(session.Config{
		Storage:        storage,
		Expiration:     expiration,
		KeyLookup:      "cookie:" + CookieName,
		CookieHTTPOnly: true,
		CookieSameSite: "Lax",
	})
}

// GenerateSessionID generates a new secure random session ID.
func GenerateSessionID() (string, error) {
	// 32 bytes = 256 bits
	b := make([]byte, 32) //nolint:mnd
	if _, err := rand.Read(b); err != nil {
		return "", err
	}

	return hex.EncodeToString(b), nil
}
