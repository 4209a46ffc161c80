package repository

import (
	"database/sql"
	"errors"
	"log"
	"strconv"
	"strings"

	"lingoclash/internal/database"
)

// Key under which the XP total is persisted, string-encoded.
const totalXPKey = "xp_total"

// ProgressRepository persists the local progress record: the XP total in the
// progress_values key/value table and the awarded-attempt set in its own
// table. Reads fail soft: malformed or missing data degrades to the
// zero-value defaults rather than surfacing an error, so the HUD stays
// available even if the store is damaged.
type ProgressRepository struct {
	db database.DBTX
}

// NewProgressRepository creates a new progress repository
func NewProgressRepository(db database.DBTX) *ProgressRepository {
	return &ProgressRepository{db: db}
}

// GetTotalXP reads the persisted XP total. Absent or unparseable values
// default to 0.
func (r *ProgressRepository) GetTotalXP() int {
	var raw string
	// "key" is double-quoted for MySQL, where it is a reserved word; the
	// MySQL dialect enables ANSI_QUOTES on every connection.
	query := `SELECT value FROM progress_values WHERE "key" = ?`
	err := r.db.QueryRow(query, totalXPKey).Scan(&raw)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			log.Printf("progress: failed to read XP total, defaulting to 0: %v", err)
		}
		return 0
	}

	total, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || total < 0 {
		log.Printf("progress: stored XP total %q unparseable, defaulting to 0", raw)
		return 0
	}
	return total
}

// SetTotalXP persists an XP total, string-encoded.
func (r *ProgressRepository) SetTotalXP(total int) error {
	_, err := r.db.Exec(r.db.GetDialect().UpsertValue(), totalXPKey, strconv.Itoa(total))
	return err
}

// HasAttemptAwarded reports whether an attempt has already been credited.
// Read errors degrade to false.
func (r *ProgressRepository) HasAttemptAwarded(attemptID string) bool {
	var count int
	query := `SELECT COUNT(*) FROM awarded_attempts WHERE attempt_id = ?`
	err := r.db.QueryRow(query, attemptID).Scan(&count)
	if err != nil {
		log.Printf("progress: failed to check awarded attempt %s: %v", attemptID, err)
		return false
	}
	return count > 0
}

// MarkAttemptAwarded records an attempt in the awarded set. Marking the same
// attempt twice is a no-op.
func (r *ProgressRepository) MarkAttemptAwarded(attemptID string) error {
	_, err := r.db.Exec(r.db.GetDialect().InsertIgnoreAttempt(), attemptID)
	return err
}

// ListAwardedAttempts returns every awarded attempt ID, oldest first.
func (r *ProgressRepository) ListAwardedAttempts() ([]string, error) {
	query := `SELECT attempt_id FROM awarded_attempts ORDER BY awarded_at ASC, attempt_id ASC`
	rows, err := r.db.Query(query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// ClearAll removes all progress data in one transaction, so a backup restore
// never observes a half-cleared store. Used by the backup restore path.
func (r *ProgressRepository) ClearAll() error {
	tx, err := r.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM awarded_attempts"); err != nil {
		return err
	}
	if _, err := tx.Exec("DELETE FROM progress_values"); err != nil {
		return err
	}
	return tx.Commit()
}
