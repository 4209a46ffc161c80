package service

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"lingoclash/internal/database"
	"lingoclash/internal/repository"
)

func newTestRepo(t *testing.T) *repository.ProgressRepository {
	t.Helper()

	db, err := database.Initialize(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Failed to initialize database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := db.RunMigrations("../../migrations"); err != nil {
		t.Fatalf("Failed to run migrations: %v", err)
	}

	return repository.NewProgressRepository(db)
}

func TestBackupExportImportRoundTrip(t *testing.T) {
	source := newTestRepo(t)
	source.SetTotalXP(240)
	source.MarkAttemptAwarded("att_1")
	source.MarkAttemptAwarded("att_2")

	backupPath := filepath.Join(t.TempDir(), "backup.json")
	if err := NewBackupService(source).Export(backupPath); err != nil {
		t.Fatalf("Export failed: %v", err)
	}

	target := newTestRepo(t)
	if err := NewBackupService(target).Import(backupPath, false); err != nil {
		t.Fatalf("Import failed: %v", err)
	}

	if got := target.GetTotalXP(); got != 240 {
		t.Errorf("restored XP total = %d, expected 240", got)
	}
	if !target.HasAttemptAwarded("att_1") || !target.HasAttemptAwarded("att_2") {
		t.Error("restored store is missing awarded attempts")
	}
}

func TestImportMergesWithoutClear(t *testing.T) {
	repo := newTestRepo(t)
	repo.SetTotalXP(300)
	repo.MarkAttemptAwarded("att_local")

	backup := `{
		"version": "1.0",
		"exported_at": "2026-01-01T00:00:00Z",
		"total_xp": 150,
		"awarded_attempts": ["att_backup", "att_local"]
	}`

	if err := NewBackupService(repo).ImportFromReader(strings.NewReader(backup), false); err != nil {
		t.Fatalf("ImportFromReader failed: %v", err)
	}

	// Higher total wins; attempts are unioned.
	if got := repo.GetTotalXP(); got != 300 {
		t.Errorf("merged XP total = %d, expected 300", got)
	}
	if !repo.HasAttemptAwarded("att_local") || !repo.HasAttemptAwarded("att_backup") {
		t.Error("merged store is missing awarded attempts")
	}
}

func TestImportWithClearReplaces(t *testing.T) {
	repo := newTestRepo(t)
	repo.SetTotalXP(300)
	repo.MarkAttemptAwarded("att_local")

	backup := `{
		"version": "1.0",
		"exported_at": "2026-01-01T00:00:00Z",
		"total_xp": 150,
		"awarded_attempts": ["att_backup"]
	}`

	if err := NewBackupService(repo).ImportFromReader(strings.NewReader(backup), true); err != nil {
		t.Fatalf("ImportFromReader failed: %v", err)
	}

	if got := repo.GetTotalXP(); got != 150 {
		t.Errorf("restored XP total = %d, expected 150", got)
	}
	if repo.HasAttemptAwarded("att_local") {
		t.Error("cleared import kept a pre-existing attempt")
	}
	if !repo.HasAttemptAwarded("att_backup") {
		t.Error("cleared import is missing the backup attempt")
	}
}

func TestImportRejectsUnknownVersion(t *testing.T) {
	repo := newTestRepo(t)

	backup := `{"version": "9.9", "total_xp": 10, "awarded_attempts": []}`
	err := NewBackupService(repo).ImportFromReader(strings.NewReader(backup), false)
	if err == nil {
		t.Fatal("expected an error for unsupported version")
	}
}

func TestImportMissingFile(t *testing.T) {
	repo := newTestRepo(t)

	err := NewBackupService(repo).Import(filepath.Join(t.TempDir(), "missing.json"), false)
	if err == nil {
		t.Fatal("expected an error for missing file")
	}
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("error does not surface the missing file: %v", err)
	}
}
