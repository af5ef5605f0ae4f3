package auth

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/Makepad-fr/cafe/internal/config"
)

const credFileName = "credentials.json"

// EnvSession overrides the stored session.
const EnvSession = "CAFE_SESSION"

// Session is the server login the client rides on: the value of the
// server's session cookie, copied from a logged-in browser.
type Session struct {
	Value     string    `json:"value"`
	Source    string    `json:"source"`     // "env" | "file"
	CreatedAt time.Time `json:"created_at"` // when we saved to file
}

func credFilePath() string {
	return filepath.Join(config.Dir(), credFileName)
}

// Get returns the current session, or nil when not logged in.
func Get() (*Session, error) {
	if env := strings.TrimSpace(os.Getenv(EnvSession)); env != "" {
		return &Session{Value: stripCookieName(env), Source: "env"}, nil
	}

	b, err := os.ReadFile(credFilePath())
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read credentials: %w", err)
	}
	var s Session
	if err := json.Unmarshal(b, &s); err != nil {
		return nil, fmt.Errorf("parse credentials: %w", err)
	}
	s.Value = stripCookieName(s.Value)
	return &s, nil
}

// Set stores the session value owner-only under ~/.cafe.
func Set(value string) error {
	value = stripCookieName(strings.TrimSpace(value))
	if value == "" {
		return fmt.Errorf("empty session")
	}
	if err := os.MkdirAll(config.Dir(), 0o700); err != nil {
		return fmt.Errorf("mkdir: %w", err)
	}
	b, err := json.MarshalIndent(Session{
		Value:     value,
		Source:    "file",
		CreatedAt: time.Now(),
	}, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal: %w", err)
	}
	if err := os.WriteFile(credFilePath(), b, 0o600); err != nil {
		return fmt.Errorf("write: %w", err)
	}
	return nil
}

func Delete() error {
	if err := os.Remove(credFilePath()); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("remove: %w", err)
	}
	return nil
}

// stripCookieName accepts "sessionid=abc" as pasted from browser devtools.
func stripCookieName(s string) string {
	if i := strings.IndexByte(s, '='); i >= 0 {
		return strings.TrimSpace(s[i+1:])
	}
	return s
}
