// Package credential holds the API key used for generation calls and plays the
// host role for the session gate.
package credential

import (
	"context"
	"os"
	"strings"
	"sync"

	"github.com/joho/godotenv"
)

const EnvKey = "GEMINI_API_KEY"

// Store is safe for concurrent use.
type Store struct {
	mu         sync.RWMutex
	key        string
	staged     string
	dotenvPath string
}

func NewStore(initialKey, dotenvPath string) *Store {
	return &Store{
		key:        strings.TrimSpace(initialKey),
		dotenvPath: dotenvPath,
	}
}

// Select stages a key for the next selection flow.
func (s *Store) Select(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.staged = strings.TrimSpace(key)
}

// APIKey returns the active key, empty when none is selected.
func (s *Store) APIKey() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.key
}

func (s *Store) HasSelectedCredential(ctx context.Context) (bool, error) {
	return s.APIKey() != "", nil
}

// OpenCredentialSelection adopts a staged key if there is one; otherwise it
// re-reads the dotenv file and the process environment. A missing dotenv file
// is not an error. It never clears an already active key.
func (s *Store) OpenCredentialSelection(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.staged != "" {
		s.key, s.staged = s.staged, ""
		return nil
	}

	if s.dotenvPath != "" {
		values, err := godotenv.Read(s.dotenvPath)
		switch {
		case err == nil:
			if v := strings.TrimSpace(values[EnvKey]); v != "" {
				s.key = v
				return nil
			}
		case !os.IsNotExist(err):
			return err
		}
	}

	if v := strings.TrimSpace(os.Getenv(EnvKey)); v != "" {
		s.key = v
	}
	return nil
}
