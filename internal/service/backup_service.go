package service

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"lingoclash/internal/repository"
)

// BackupData represents the complete progress backup structure
type BackupData struct {
	Version         string    `json:"version"`
	ExportedAt      time.Time `json:"exported_at"`
	TotalXP         int       `json:"total_xp"`
	AwardedAttempts []string  `json:"awarded_attempts"`
}

// BackupService exports and restores the local progress store
type BackupService struct {
	repo *repository.ProgressRepository
}

// NewBackupService creates a new backup service
func NewBackupService(repo *repository.ProgressRepository) *BackupService {
	return &BackupService{repo: repo}
}

// Export writes the progress store to a JSON backup file
func (s *BackupService) Export(outputPath string) error {
	log.Println("Starting progress export...")

	attempts, err := s.repo.ListAwardedAttempts()
	if err != nil {
		return fmt.Errorf("failed to export awarded attempts: %w", err)
	}

	backup := &BackupData{
		Version:         "1.0",
		ExportedAt:      time.Now(),
		TotalXP:         s.repo.GetTotalXP(),
		AwardedAttempts: attempts,
	}

	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(backup); err != nil {
		return fmt.Errorf("failed to encode backup: %w", err)
	}

	log.Printf("Progress exported successfully to %s", outputPath)
	log.Printf("Exported: %d XP, %d awarded attempts", backup.TotalXP, len(backup.AwardedAttempts))

	return nil
}

// Import restores the progress store from a backup file. Without clear the
// backup is merged: the higher XP total wins and awarded attempts are
// unioned, mirroring the remote reconciliation policy.
func (s *BackupService) Import(inputPath string, clear bool) error {
	file, err := os.Open(inputPath)
	if err != nil {
		return fmt.Errorf("failed to open backup file: %w", err)
	}
	defer file.Close()

	return s.ImportFromReader(file, clear)
}

// ImportFromReader restores the progress store from a backup stream
func (s *BackupService) ImportFromReader(reader io.Reader, clear bool) error {
	var backup BackupData
	if err := json.NewDecoder(reader).Decode(&backup); err != nil {
		return fmt.Errorf("failed to decode backup: %w", err)
	}

	if backup.Version != "1.0" {
		return fmt.Errorf("unsupported backup version: %s", backup.Version)
	}

	if clear {
		log.Println("Clearing existing progress data...")
		if err := s.repo.ClearAll(); err != nil {
			return fmt.Errorf("failed to clear progress data: %w", err)
		}
	}

	total := backup.TotalXP
	if total < 0 {
		total = 0
	}
	if existing := s.repo.GetTotalXP(); existing > total {
		total = existing
	}
	if err := s.repo.SetTotalXP(total); err != nil {
		return fmt.Errorf("failed to restore XP total: %w", err)
	}

	for _, attemptID := range backup.AwardedAttempts {
		if err := s.repo.MarkAttemptAwarded(attemptID); err != nil {
			return fmt.Errorf("failed to restore attempt %s: %w", attemptID, err)
		}
	}

	log.Printf("Progress imported: %d XP, %d awarded attempts", total, len(backup.AwardedAttempts))
	return nil
}
