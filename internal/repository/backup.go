package repository

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"tirecarstore/internal/config"

	"github.com/rs/zerolog"
)

// BackupService snapshots the sqlite storage into timestamped files.
type BackupService struct {
	storage *SQLiteStorage
	config  config.BackupConfig
	logger  *zerolog.Logger
}

func NewBackupService(storage *SQLiteStorage, cfg config.BackupConfig, logger *zerolog.Logger) *BackupService {
	return &BackupService{
		storage: storage,
		config:  cfg,
		logger:  logger,
	}
}

// PerformBackup writes a consistent copy of the storage and returns its path.
func (s *BackupService) PerformBackup(ctx context.Context) (string, error) {
	if err := s.storage.Ping(ctx); err != nil {
		return "", fmt.Errorf("storage unavailable: %w", err)
	}
	if err := os.MkdirAll(s.config.StoragePath, 0o755); err != nil {
		return "", fmt.Errorf("failed to create backup directory: %w", err)
	}

	timestamp := time.Now().Format("20060102_150405.000")
	backupPath := filepath.Join(s.config.StoragePath, fmt.Sprintf("backup_%s.db", timestamp))
	if strings.Contains(backupPath, "'") {
		return "", fmt.Errorf("backup path must not contain quotes: %s", backupPath)
	}

	s.logger.Info().Str("path", backupPath).Msg("Performing storage backup using VACUUM INTO")

	if _, err := s.storage.db.ExecContext(ctx, fmt.Sprintf("VACUUM INTO '%s'", backupPath)); err != nil {
		return "", fmt.Errorf("backup failed: %w", err)
	}

	s.logger.Info().Msg("Backup completed successfully")
	return backupPath, nil
}

// CleanupOldBackups removes backups older than the retention window and
// returns how many were deleted. Zero retention keeps everything.
func (s *BackupService) CleanupOldBackups() int {
	if s.config.RetentionDays <= 0 {
		return 0
	}

	files, err := os.ReadDir(s.config.StoragePath)
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to read backup directory for cleanup")
		return 0
	}

	cutoff := time.Now().AddDate(0, 0, -s.config.RetentionDays)
	removed := 0

	for _, file := range files {
		if file.IsDir() || !strings.HasPrefix(file.Name(), "backup_") {
			continue
		}

		info, err := file.Info()
		if err != nil {
			continue
		}

		if info.ModTime().Before(cutoff) {
			s.logger.Info().Str("file", file.Name()).Msg("Deleting old backup")
			if err := os.Remove(filepath.Join(s.config.StoragePath, file.Name())); err == nil {
				removed++
			}
		}
	}
	return removed
}
