package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	apperrors "github.com/commitsmith/commitsmith/internal/pkg/errors"
)

const (
	// AppName names the per-user configuration directory.
	AppName = "commitsmith"

	// EnvPrefix prefixes environment overrides (COMMITSMITH_MODEL, ...).
	EnvPrefix = "COMMITSMITH"

	// DirEnvVar overrides the configuration directory.
	DirEnvVar = "COMMITSMITH_CONFIG_DIR"
)

// Permissions for the store location.
const (
	DirMode  os.FileMode = 0700
	FileMode os.FileMode = 0600
)

// Keys double as file names inside the configuration directory.
const (
	KeyAPIKey   = "api_key"
	KeyModel    = "model"
	KeyBaseURL  = "base_url"
	KeyProvider = "provider"
)

var storedKeys = []string{KeyAPIKey, KeyModel, KeyBaseURL, KeyProvider}

// FileStore implements Store as one flat file per setting.
type FileStore struct {
	dir string
}

// NewStore creates a new FileStore.
// If dir is empty, it uses COMMITSMITH_CONFIG_DIR or the user configuration directory.
func NewStore(dir string) (*FileStore, error) {
	if dir == "" {
		var err error
		dir, err = DefaultDir()
		if err != nil {
			return nil, err
		}
	}
	return &FileStore{dir: dir}, nil
}

// DefaultDir returns the directory the store uses when none is given.
func DefaultDir() (string, error) {
	if dir := os.Getenv(DirEnvVar); dir != "" {
		return dir, nil
	}
	base, err := os.UserConfigDir()
	if err != nil {
		return "", apperrors.Wrap(err, apperrors.ErrConfiguration, "failed to locate the user configuration directory")
	}
	return filepath.Join(base, AppName), nil
}

// Dir returns the directory holding the setting files.
func (s *FileStore) Dir() string {
	return s.dir
}

// Path returns the file that holds the given key.
func (s *FileStore) Path(key string) string {
	return filepath.Join(s.dir, key)
}

// Load reads the stored settings and fills the gaps with provider defaults.
// Priority: env > files > defaults. A missing directory or file means "use the default".
func (s *FileStore) Load() (Config, error) {
	stored, err := s.readAll()
	if err != nil {
		return Config{}, err
	}

	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	for _, key := range storedKeys {
		_ = v.BindEnv(key)
	}

	v.SetDefault(KeyProvider, string(DefaultProvider))
	v.SetDefault(KeyAPIKey, "")
	if err := v.MergeConfigMap(stored); err != nil {
		return Config{}, apperrors.Wrap(err, apperrors.ErrConfiguration, "failed to merge stored configuration")
	}

	provider, err := ParseProvider(v.GetString(KeyProvider))
	if err != nil {
		apperrors.Warn("Ignoring stored provider %q, falling back to %s", v.GetString(KeyProvider), DefaultProvider)
		provider = DefaultProvider
	}
	v.Set(KeyProvider, string(provider))

	// Model and base URL defaults depend on the resolved provider.
	v.SetDefault(KeyModel, DefaultModel(provider))
	v.SetDefault(KeyBaseURL, DefaultBaseURL(provider))

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, apperrors.Wrap(err, apperrors.ErrConfiguration, "failed to decode configuration")
	}

	cfg.APIKey = firstToken(cfg.APIKey)
	cfg.Model = strings.TrimSpace(cfg.Model)
	cfg.BaseURL = strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")

	return cfg, nil
}

// readAll returns the non-empty stored values keyed by setting name.
func (s *FileStore) readAll() (map[string]interface{}, error) {
	values := make(map[string]interface{})
	for _, key := range storedKeys {
		data, err := os.ReadFile(s.Path(key))
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return nil, apperrors.Wrap(err, apperrors.ErrConfiguration, fmt.Sprintf("failed to read %s", s.Path(key)))
		}
		if value := strings.TrimSpace(string(data)); value != "" {
			values[key] = value
		}
	}
	return values, nil
}

// SaveAPIKey stores the first whitespace-delimited token of raw.
func (s *FileStore) SaveAPIKey(raw string) error {
	key := firstToken(raw)
	if key == "" {
		return apperrors.NewMissingArgumentError("--api-key", "API key")
	}
	return s.write(KeyAPIKey, key)
}

// SaveModel stores the model name.
func (s *FileStore) SaveModel(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return apperrors.NewMissingArgumentError("--model", "model name")
	}
	return s.write(KeyModel, name)
}

// SaveBaseURL stores the base URL without a trailing slash.
func (s *FileStore) SaveBaseURL(url string) error {
	url = strings.TrimRight(strings.TrimSpace(url), "/")
	if url == "" {
		return apperrors.NewMissingArgumentError("--base-url", "URL")
	}
	return s.write(KeyBaseURL, url)
}

// SaveProvider stores the provider identifier.
func (s *FileStore) SaveProvider(p Provider) error {
	if _, err := ParseProvider(string(p)); err != nil {
		return err
	}
	return s.write(KeyProvider, string(p))
}

// UseProvider switches to p and resets the base URL and model to its defaults.
// The custom provider takes its base URL from baseURL.
func (s *FileStore) UseProvider(p Provider, baseURL string) error {
	if err := s.SaveProvider(p); err != nil {
		return err
	}
	if baseURL == "" {
		baseURL = DefaultBaseURL(p)
	}
	if err := s.SaveBaseURL(baseURL); err != nil {
		return err
	}
	return s.SaveModel(DefaultModel(p))
}

// write stores one value, creating the directory with owner-only access.
func (s *FileStore) write(key, value string) error {
	if err := os.MkdirAll(s.dir, DirMode); err != nil {
		return apperrors.Wrap(err, apperrors.ErrConfiguration, "failed to create config directory")
	}
	if err := os.Chmod(s.dir, DirMode); err != nil {
		return apperrors.Wrap(err, apperrors.ErrConfiguration, "failed to set config directory permissions")
	}

	path := s.Path(key)
	if err := os.WriteFile(path, []byte(value), FileMode); err != nil {
		return apperrors.Wrap(err, apperrors.ErrConfiguration, fmt.Sprintf("failed to write %s", path))
	}
	// WriteFile keeps the mode of a file that already exists.
	if err := os.Chmod(path, FileMode); err != nil {
		return apperrors.Wrap(err, apperrors.ErrConfiguration, fmt.Sprintf("failed to set permissions on %s", path))
	}

	apperrors.Debug("Saved %s to %s", key, path)
	return nil
}

// firstToken returns the first whitespace-delimited token of s.
func firstToken(s string) string {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}
