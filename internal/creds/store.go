// Package creds persists provider API keys in a local credentials file.
package creds

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// Store reads and writes the provider→key credentials file. The file is a
// flat YAML map keyed by provider identifier.
type Store struct {
	path string
}

// DefaultPath returns the credentials file location under the user config
// directory.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", eris.Wrap(err, "creds: resolve user config dir")
	}
	return filepath.Join(dir, "pagesift", "credentials.yaml"), nil
}

// NewStore creates a Store backed by the file at path.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// Path returns the backing file location.
func (s *Store) Path() string {
	return s.path
}

// Get returns the stored key for provider, if any.
func (s *Store) Get(provider string) (string, bool, error) {
	keys, err := s.load()
	if err != nil {
		return "", false, err
	}
	key, ok := keys[provider]
	return key, ok && key != "", nil
}

// Set stores the key for provider, creating the file on first use.
func (s *Store) Set(provider, key string) error {
	keys, err := s.load()
	if err != nil {
		return err
	}
	keys[provider] = key

	data, err := yaml.Marshal(keys)
	if err != nil {
		return eris.Wrap(err, "creds: marshal")
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return eris.Wrap(err, "creds: create config dir")
	}
	if err := os.WriteFile(s.path, data, 0o600); err != nil {
		return eris.Wrap(err, "creds: write file")
	}
	return nil
}

// Providers returns the providers that have a non-empty stored key.
func (s *Store) Providers() ([]string, error) {
	keys, err := s.load()
	if err != nil {
		return nil, err
	}
	var names []string
	for p, k := range keys {
		if k != "" {
			names = append(names, p)
		}
	}
	return names, nil
}

func (s *Store) load() (map[string]string, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]string{}, nil
		}
		return nil, eris.Wrap(err, "creds: read file")
	}

	keys := map[string]string{}
	if err := yaml.Unmarshal(data, &keys); err != nil {
		return nil, eris.Wrap(err, "creds: unmarshal")
	}
	return keys, nil
}

// EnvKey returns the environment variable consulted for a provider's key,
// e.g. GEMINI_API_KEY. Environment values take precedence over the file.
func EnvKey(provider string) string {
	return strings.ToUpper(provider) + "_API_KEY"
}
