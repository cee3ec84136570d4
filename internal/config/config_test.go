package config

import (
	"os"
	"path/filepath"
	"testing"

	"tirecarstore/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	t.Setenv("TCS_DB_PATH", filepath.Join(tmpDir, "bookings.db"))

	yamlContent := `
app:
  name: "tire-car-store"
  environment: "test"
storage:
  backend: "sqlite"
  path: "${TCS_DB_PATH}"
  fallback_to_memory: false
seed:
  path: "seed.yaml"
`
	require.NoError(t, os.WriteFile(configPath, []byte(yamlContent), 0o644))

	cfg, err := Load(configPath)
	require.NoError(t, err)

	assert.Equal(t, "test", cfg.App.Environment)
	assert.Equal(t, filepath.Join(tmpDir, "bookings.db"), cfg.Storage.Path)
	assert.Equal(t, models.DefaultStorageKey, cfg.Storage.Key)
	assert.False(t, cfg.Storage.UseFallback())
	assert.Equal(t, "seed.yaml", cfg.Seed.Path)
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestValidateConfig(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{
			name:    "valid sqlite",
			cfg:     Config{Storage: StorageConfig{Backend: BackendSQLite, Path: "db", Key: "k"}},
			wantErr: false,
		},
		{
			name:    "valid memory",
			cfg:     Config{Storage: StorageConfig{Backend: BackendMemory, Key: "k"}},
			wantErr: false,
		},
		{
			name:    "sqlite without path",
			cfg:     Config{Storage: StorageConfig{Backend: BackendSQLite, Key: "k"}},
			wantErr: true,
		},
		{
			name:    "unknown backend",
			cfg:     Config{Storage: StorageConfig{Backend: "redis", Key: "k"}},
			wantErr: true,
		},
		{
			name:    "missing key",
			cfg:     Config{Storage: StorageConfig{Backend: BackendMemory}},
			wantErr: true,
		},
		{
			name: "metrics without textfile",
			cfg: Config{
				Storage:    StorageConfig{Backend: BackendMemory, Key: "k"},
				Monitoring: MonitoringConfig{MetricsEnabled: true},
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestApplyDefaults(t *testing.T) {
	cfg := Default()

	assert.Equal(t, BackendSQLite, cfg.Storage.Backend)
	assert.Equal(t, "data/bookings.db", cfg.Storage.Path)
	assert.Equal(t, models.DefaultStorageKey, cfg.Storage.Key)
	assert.True(t, cfg.Storage.UseFallback())
	assert.Equal(t, "exports", cfg.Exports.Path)
	assert.Equal(t, "backups", cfg.Backup.StoragePath)
	assert.NoError(t, cfg.Validate())
}
