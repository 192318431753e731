// Package auth stores the platform session token in the system keyring.
//
// Authentication itself is owned by the platform; khub only carries the
// issued token and attaches it to outgoing requests.
package auth

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/99designs/keyring"
)

const (
	serviceName = "khub"
	tokenKey    = "session-token"

	// EnvToken overrides the keyring when set, for headless environments.
	EnvToken = "KHUB_TOKEN"
)

// ErrNotLoggedIn is returned when no session token is available.
var ErrNotLoggedIn = errors.New("not logged in: run `khub login` or set KHUB_TOKEN")

func openRing() (keyring.Keyring, error) {
	ring, err := keyring.Open(keyring.Config{
		ServiceName: serviceName,
		AllowedBackends: []keyring.BackendType{
			keyring.KeychainBackend,
			keyring.SecretServiceBackend,
			keyring.WinCredBackend,
			keyring.PassBackend,
			keyring.FileBackend,
		},
		FileDir:                  "~/.config/khub/credentials",
		FilePasswordFunc:         keyring.FixedStringPrompt("khub-file-key"),
		KeychainTrustApplication: true,
	})
	if err != nil {
		return nil, fmt.Errorf("opening keyring: %w", err)
	}
	return ring, nil
}

// Token returns the stored session token. The KHUB_TOKEN environment variable
// takes precedence over the keyring.
func Token() (string, error) {
	if tok := strings.TrimSpace(os.Getenv(EnvToken)); tok != "" {
		return tok, nil
	}

	ring, err := openRing()
	if err != nil {
		return "", err
	}
	item, err := ring.Get(tokenKey)
	if err != nil {
		if errors.Is(err, keyring.ErrKeyNotFound) {
			return "", ErrNotLoggedIn
		}
		return "", fmt.Errorf("reading session token: %w", err)
	}
	token := strings.TrimSpace(string(item.Data))
	if token == "" {
		return "", ErrNotLoggedIn
	}
	return token, nil
}

// SaveToken stores the session token in the keyring.
func SaveToken(token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return errors.New("token must not be empty")
	}
	ring, err := openRing()
	if err != nil {
		return err
	}
	if err := ring.Set(keyring.Item{Key: tokenKey, Data: []byte(token)}); err != nil {
		return fmt.Errorf("storing session token: %w", err)
	}
	return nil
}

// ClearToken removes the stored session token, if any.
func ClearToken() error {
	ring, err := openRing()
	if err != nil {
		return err
	}
	if err := ring.Remove(tokenKey); err != nil && !errors.Is(err, keyring.ErrKeyNotFound) {
		return fmt.Errorf("removing session token: %w", err)
	}
	return nil
}
