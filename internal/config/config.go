package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
	"github.com/steelproxy/twitta/internal/models"
	"github.com/steelproxy/twitta/internal/xapi"
)

// Version is the application version; config files carry it so a stale
// file can be flagged after an upgrade.
const Version = "0.2.5"

// DefaultPrompt is the prompt template new accounts start with.
const DefaultPrompt = "Make sure not to include commentary or anything extra in your response, just raw text. Reply to this tweet: {tweet_text}"

const defaultConfigFile = "config.json"

// Config holds all configuration for the application. Credentials and
// the watched-account list live in a JSON file; server-level settings
// come from the environment.
type Config struct {
	Version  string           `json:"version"`
	Twitter  xapi.Credentials `json:"twitter"`
	OpenAI   OpenAIConfig     `json:"openai"`
	Accounts []models.Account `json:"accounts_to_reply"`

	// Server configuration (environment, not persisted)
	Port  string `json:"-"`
	Debug bool   `json:"-"`

	// Optional report archive (environment, not persisted)
	StorageAccount   string `json:"-"`
	StorageContainer string `json:"-"`

	// Optional digest email (environment, not persisted)
	NotificationEmail string `json:"-"`
	SMTPHost          string `json:"-"`
	SMTPPort          int    `json:"-"`
	SMTPUsername      string `json:"-"`
	SMTPPassword      string `json:"-"`

	path string
	mu   sync.Mutex
}

// OpenAIConfig holds the generative backend credentials
type OpenAIConfig struct {
	APIKey string `json:"api_key"`
}

// Load reads the JSON config file (TWITTA_CONFIG or ./config.json) and
// applies environment overrides. A missing file is created as an empty
// template so the operator has something to fill in.
func Load() (*Config, error) {
	path := getEnv("TWITTA_CONFIG", defaultConfigFile)

	cfg, err := loadFile(path)
	if err != nil {
		return nil, err
	}

	cfg.Port = getEnv("PORT", "5000")
	cfg.Debug = getBoolEnv("DEBUG", false)
	cfg.StorageAccount = getEnv("AZURE_STORAGE_ACCOUNT", "")
	cfg.StorageContainer = getEnv("AZURE_STORAGE_CONTAINER", "twitta-reports")
	cfg.NotificationEmail = getEnv("NOTIFICATION_EMAIL", "")
	cfg.SMTPHost = getEnv("SMTP_HOST", "")
	cfg.SMTPPort = getIntEnv("SMTP_PORT", 587)
	cfg.SMTPUsername = getEnv("SMTP_USERNAME", "")
	cfg.SMTPPassword = getEnv("SMTP_PASSWORD", "")

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	if cfg.Version != Version {
		logrus.Errorf("Configuration file version does not match twitta version [current version: %s, config version: %s] recommend deleting %s and restarting twitta!", Version, cfg.Version, path)
	}

	return cfg, nil
}

func loadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		logrus.Warn("Configuration file not found. Creating a new one.")
		cfg := &Config{
			Version:  Version,
			Accounts: []models.Account{},
			path:     path,
		}
		if err := cfg.Save(); err != nil {
			return nil, err
		}
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := &Config{path: path}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("configuration file is invalid: %w", err)
	}

	return cfg, nil
}

// Validate checks the shape of the loaded configuration.
func (c *Config) Validate() error {
	if c.Version == "" {
		return fmt.Errorf("version is required")
	}

	for i, account := range c.Accounts {
		if account.Username == "" {
			return fmt.Errorf("accounts_to_reply[%d]: username is required", i)
		}
		if account.UseGPT && account.CustomPrompt == "" {
			return fmt.Errorf("accounts_to_reply[%d]: custom_prompt is required when use_gpt is set", i)
		}
	}

	return nil
}

// Save writes the configuration back to its file.
func (c *Config) Save() error {
	logrus.Infof("Saving configuration to %s", c.path)

	data, err := json.MarshalIndent(c, "", "    ")
	if err != nil {
		return fmt.Errorf("failed to marshal configuration: %w", err)
	}

	if err := os.WriteFile(c.path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// AddAccount appends a watched account and persists the change. An
// empty prompt falls back to the default template.
func (c *Config) AddAccount(account models.Account) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if account.Username == "" {
		return fmt.Errorf("username is required")
	}
	for _, existing := range c.Accounts {
		if strings.EqualFold(existing.Username, account.Username) {
			return fmt.Errorf("account @%s is already watched", account.Username)
		}
	}

	if account.CustomPrompt == "" {
		account.CustomPrompt = DefaultPrompt
	}
	if account.PredefinedReplies == nil {
		account.PredefinedReplies = []string{}
	}

	c.Accounts = append(c.Accounts, account)
	if err := c.Save(); err != nil {
		return err
	}

	logrus.Infof("Added @%s to reply list with gpt prompt: %s and predefined replies: %v [USING GPT %v]",
		account.Username, account.CustomPrompt, account.PredefinedReplies, account.UseGPT)
	return nil
}

// RemoveAccount deletes a watched account by username and persists the
// change.
func (c *Config) RemoveAccount(username string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i, account := range c.Accounts {
		if strings.EqualFold(account.Username, username) {
			c.Accounts = append(c.Accounts[:i], c.Accounts[i+1:]...)
			if err := c.Save(); err != nil {
				return err
			}
			logrus.Infof("Removed @%s from reply list", username)
			return nil
		}
	}

	return fmt.Errorf("account @%s is not watched", username)
}

// Snapshot returns a copy of the watched-account list for one cycle.
func (c *Config) Snapshot() []models.Account {
	c.mu.Lock()
	defer c.mu.Unlock()

	accounts := make([]models.Account, len(c.Accounts))
	copy(accounts, c.Accounts)
	return accounts
}

// Helper functions for environment variable parsing
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}
