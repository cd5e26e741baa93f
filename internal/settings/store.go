// Package settings persists user-scoped configuration (LLM provider
// settings, profile, preferences) in SQLite as serialized key-value pairs.
package settings

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	_ "modernc.org/sqlite"

	"github.com/studiokit/projectdesk/pkg/lru"
)

const (
	llmKeyPrefix   = "llm_settings_"
	profileKey     = "userProfile"
	preferencesKey = "userPreferences"

	readCacheSize = 64
)

// LLMSettings holds the per-provider assistant configuration.
type LLMSettings struct {
	APIKey       string  `json:"api_key"`
	Model        string  `json:"model"`
	Temperature  float64 `json:"temperature"`
	MaxTokens    int     `json:"max_tokens"`
	SystemPrompt string  `json:"system_prompt"`
	Enabled      bool    `json:"enabled"`
}

// Profile holds the user profile shown on the profile screen.
type Profile struct {
	Name      string `json:"name"`
	Email     string `json:"email"`
	Role      string `json:"role"`
	AvatarURL string `json:"avatar_url,omitempty"`
}

// Preferences holds presentation preferences.
type Preferences struct {
	Theme         string `json:"theme"`
	Language      string `json:"language"`
	Notifications bool   `json:"notifications"`
}

// Store manages the settings SQLite database with a small read cache in
// front of it.
type Store struct {
	db     *sql.DB
	cache  *lru.Cache[string, string]
	logger zerolog.Logger
}

// New opens (or creates) the settings database and runs migrations.
// Use ":memory:" for tests.
func New(dbPath string, logger zerolog.Logger) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open settings database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping settings database: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to set pragma: %w", err)
		}
	}

	s := &Store{
		db:     db,
		cache:  lru.New[string, string](readCacheSize),
		logger: logger.With().Str("component", "settings.store").Logger(),
	}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("settings migration failed: %w", err)
	}
	return s, nil
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS settings (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL,
		updated_at INTEGER NOT NULL
	);
	`
	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("creating settings table: %w", err)
	}
	return nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Ping verifies the database connection, for readiness checks.
func (s *Store) Ping() error {
	return s.db.Ping()
}

// set serializes v under key and invalidates the read cache entry.
func (s *Store) set(key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("serializing %s: %w", key, err)
	}
	_, err = s.db.Exec(
		`INSERT INTO settings (key, value, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, string(raw), time.Now().UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("storing %s: %w", key, err)
	}
	s.cache.Put(key, string(raw))
	return nil
}

// get deserializes the value under key into out. Returns false if the key
// does not exist.
func (s *Store) get(key string, out any) (bool, error) {
	raw, ok := s.cache.Get(key)
	if !ok {
		err := s.db.QueryRow(`SELECT value FROM settings WHERE key = ?`, key).Scan(&raw)
		if err == sql.ErrNoRows {
			return false, nil
		}
		if err != nil {
			return false, fmt.Errorf("reading %s: %w", key, err)
		}
		s.cache.Put(key, raw)
	}
	if err := json.Unmarshal([]byte(raw), out); err != nil {
		return false, fmt.Errorf("parsing %s: %w", key, err)
	}
	return true, nil
}

// SetLLM stores the settings for one provider.
func (s *Store) SetLLM(providerID string, cfg LLMSettings) error {
	if providerID == "" {
		return fmt.Errorf("provider id is required")
	}
	return s.set(llmKeyPrefix+providerID, cfg)
}

// GetLLM loads the settings for one provider. Unconfigured providers
// return a zero value and false.
func (s *Store) GetLLM(providerID string) (LLMSettings, bool, error) {
	var cfg LLMSettings
	ok, err := s.get(llmKeyPrefix+providerID, &cfg)
	return cfg, ok, err
}

// SetProfile stores the user profile.
func (s *Store) SetProfile(p Profile) error {
	return s.set(profileKey, p)
}

// GetProfile loads the user profile.
func (s *Store) GetProfile() (Profile, bool, error) {
	var p Profile
	ok, err := s.get(profileKey, &p)
	return p, ok, err
}

// SetPreferences stores the user preferences.
func (s *Store) SetPreferences(p Preferences) error {
	return s.set(preferencesKey, p)
}

// GetPreferences loads the user preferences.
func (s *Store) GetPreferences() (Preferences, bool, error) {
	var p Preferences
	ok, err := s.get(preferencesKey, &p)
	return p, ok, err
}
