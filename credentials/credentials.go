// Package credentials provides API-key resolution for LLM providers.
//
// Keys are resolved from the environment first, then from the operating
// system keyring (macOS Keychain, Windows Credential Manager, Linux Secret
// Service). The keyring path lets a workstation install keep keys out of
// shell profiles; CI and containers use the environment variables.
package credentials

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/zalando/go-keyring"
)

// keyringService is the service name used in the system keyring.
const keyringService = "dealsense"

// ErrKeyringUnavailable indicates the system keyring is not available.
var ErrKeyringUnavailable = errors.New("system keyring unavailable")

// envVars maps provider names to their conventional environment variables.
var envVars = map[string]string{
	"google": "GOOGLE_API_KEY",
	"openai": "OPENAI_API_KEY",
}

// EnvVar returns the environment variable consulted for a provider's API key.
func EnvVar(provider string) string {
	if v, ok := envVars[strings.ToLower(provider)]; ok {
		return v
	}
	return strings.ToUpper(provider) + "_API_KEY"
}

// APIKey resolves the API key for the named provider. The environment
// variable wins; the system keyring is the fallback. An empty string means
// no key is configured anywhere.
func APIKey(provider string) string {
	if key := os.Getenv(EnvVar(provider)); key != "" {
		return key
	}

	key, err := keyring.Get(keyringService, strings.ToLower(provider))
	if err != nil {
		return ""
	}
	return key
}

// SetAPIKey stores the API key for the named provider in the system keyring.
func SetAPIKey(provider, key string) error {
	if err := keyring.Set(keyringService, strings.ToLower(provider), key); err != nil {
		return fmt.Errorf("%w: %v", ErrKeyringUnavailable, err)
	}
	return nil
}

// DeleteAPIKey removes the stored API key for the named provider. Deleting a
// key that does not exist is not an error.
func DeleteAPIKey(provider string) error {
	err := keyring.Delete(keyringService, strings.ToLower(provider))
	if err != nil && !errors.Is(err, keyring.ErrNotFound) {
		return fmt.Errorf("%w: %v", ErrKeyringUnavailable, err)
	}
	return nil
}
