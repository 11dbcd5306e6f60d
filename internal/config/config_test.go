package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/steelproxy/twitta/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func configPath(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.json")
	t.Setenv("TWITTA_CONFIG", path)
	return path
}

func TestLoad_CreatesTemplateWhenMissing(t *testing.T) {
	path := configPath(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, Version, cfg.Version)
	assert.Empty(t, cfg.Accounts)
	assert.FileExists(t, path)
}

func TestLoad_EnvironmentDefaults(t *testing.T) {
	configPath(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "5000", cfg.Port)
	assert.False(t, cfg.Debug)
	assert.Equal(t, "twitta-reports", cfg.StorageContainer)
	assert.Equal(t, 587, cfg.SMTPPort)
}

func TestLoad_EnvironmentOverrides(t *testing.T) {
	configPath(t)
	t.Setenv("PORT", "8080")
	t.Setenv("DEBUG", "true")
	t.Setenv("SMTP_PORT", "2525")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.True(t, cfg.Debug)
	assert.Equal(t, 2525, cfg.SMTPPort)
}

func TestLoad_InvalidJSON(t *testing.T) {
	path := configPath(t)
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0600))

	_, err := Load()
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{
			name:    "empty version",
			cfg:     Config{},
			wantErr: true,
		},
		{
			name: "account without username",
			cfg: Config{
				Version:  Version,
				Accounts: []models.Account{{Username: ""}},
			},
			wantErr: true,
		},
		{
			name: "gpt account without prompt",
			cfg: Config{
				Version:  Version,
				Accounts: []models.Account{{Username: "target", UseGPT: true}},
			},
			wantErr: true,
		},
		{
			name: "valid",
			cfg: Config{
				Version: Version,
				Accounts: []models.Account{
					{Username: "target", UseGPT: true, CustomPrompt: "Reply to {tweet_text}"},
					{Username: "other", PredefinedReplies: []string{"thanks"}},
				},
			},
			wantErr: false,
		},
	}

	for i := range tests {
		tt := &tests[i]
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestAddAccount_DefaultsAndPersistence(t *testing.T) {
	configPath(t)
	cfg, err := Load()
	require.NoError(t, err)

	require.NoError(t, cfg.AddAccount(models.Account{Username: "target"}))

	require.Len(t, cfg.Accounts, 1)
	assert.Equal(t, DefaultPrompt, cfg.Accounts[0].CustomPrompt)
	assert.NotNil(t, cfg.Accounts[0].PredefinedReplies)

	// The change survives a reload.
	reloaded, err := Load()
	require.NoError(t, err)
	require.Len(t, reloaded.Accounts, 1)
	assert.Equal(t, "target", reloaded.Accounts[0].Username)
}

func TestAddAccount_RejectsDuplicates(t *testing.T) {
	configPath(t)
	cfg, err := Load()
	require.NoError(t, err)

	require.NoError(t, cfg.AddAccount(models.Account{Username: "target"}))

	err = cfg.AddAccount(models.Account{Username: "TARGET"})
	assert.Error(t, err)
	assert.Len(t, cfg.Accounts, 1)
}

func TestAddAccount_RequiresUsername(t *testing.T) {
	configPath(t)
	cfg, err := Load()
	require.NoError(t, err)

	assert.Error(t, cfg.AddAccount(models.Account{}))
}

func TestRemoveAccount(t *testing.T) {
	configPath(t)
	cfg, err := Load()
	require.NoError(t, err)

	require.NoError(t, cfg.AddAccount(models.Account{Username: "target"}))
	require.NoError(t, cfg.RemoveAccount("Target"))
	assert.Empty(t, cfg.Accounts)

	assert.Error(t, cfg.RemoveAccount("target"))
}

func TestSnapshot_IsACopy(t *testing.T) {
	configPath(t)
	cfg, err := Load()
	require.NoError(t, err)
	require.NoError(t, cfg.AddAccount(models.Account{Username: "target"}))

	snapshot := cfg.Snapshot()
	snapshot[0].Username = "mutated"

	assert.Equal(t, "target", cfg.Accounts[0].Username)
}
