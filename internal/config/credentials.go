package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/SaadHafeez466/qa-app/internal/apperrors"
	"go.yaml.in/yaml/v3"
)

// DefaultCredentialsPath is where `key set` stores the API key.
const DefaultCredentialsPath = ".qa-app/credentials.yml"

// KeyAPIKey is the shared credential entry. Provider-specific entries are
// named "<provider>_api_key" and take precedence.
const KeyAPIKey = "api_key"

// CredentialStore is a flat key-value YAML file holding service
// credentials. A missing file reads as empty.
type CredentialStore struct {
	Path string
}

// NewCredentialStore returns a store at path, or DefaultCredentialsPath.
func NewCredentialStore(path string) *CredentialStore {
	if strings.TrimSpace(path) == "" {
		path = DefaultCredentialsPath
	}
	return &CredentialStore{Path: path}
}

// Load reads every entry.
func (s *CredentialStore) Load() (map[string]string, error) {
	data, err := os.ReadFile(s.Path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return map[string]string{}, nil
		}
		return nil, apperrors.Wrap("config.CredentialStore.Load", err)
	}

	entries := map[string]string{}
	if err := yaml.Unmarshal(data, &entries); err != nil {
		return nil, apperrors.Wrapf("config.CredentialStore.Load", err, "parsing %s", s.Path)
	}
	return entries, nil
}

// APIKey returns the stored key for provider, falling back to api_key.
func (s *CredentialStore) APIKey(provider string) (string, error) {
	entries, err := s.Load()
	if err != nil {
		return "", err
	}
	if provider != "" {
		if v := entries[ProviderKey(provider)]; v != "" {
			return v, nil
		}
	}
	return entries[KeyAPIKey], nil
}

// Set stores value under key, creating the file if needed.
func (s *CredentialStore) Set(key, value string) error {
	entries, err := s.Load()
	if err != nil {
		return err
	}
	entries[key] = value
	return s.save(entries)
}

// Delete removes key. Removing the last entry removes the file.
func (s *CredentialStore) Delete(key string) error {
	entries, err := s.Load()
	if err != nil {
		return err
	}
	delete(entries, key)
	if len(entries) == 0 {
		if err := os.Remove(s.Path); err != nil && !errors.Is(err, os.ErrNotExist) {
			return apperrors.Wrap("config.CredentialStore.Delete", err)
		}
		return nil
	}
	return s.save(entries)
}

func (s *CredentialStore) save(entries map[string]string) error {
	const op = "config.CredentialStore.save"

	data, err := yaml.Marshal(entries)
	if err != nil {
		return apperrors.Wrap(op, err)
	}
	if err := os.MkdirAll(filepath.Dir(s.Path), 0700); err != nil {
		return apperrors.Wrap(op, err)
	}
	if err := os.WriteFile(s.Path, data, 0600); err != nil {
		return apperrors.Wrap(op, err)
	}
	return nil
}

// ProviderKey is the entry name for a provider-specific key.
func ProviderKey(provider string) string {
	return strings.ToLower(strings.TrimSpace(provider)) + "_api_key"
}

// Mask hides all but the last four characters of a secret.
func Mask(secret string) string {
	if secret == "" {
		return ""
	}
	if len(secret) <= 4 {
		return strings.Repeat("•", len(secret))
	}
	return strings.Repeat("•", len(secret)-4) + secret[len(secret)-4:]
}
