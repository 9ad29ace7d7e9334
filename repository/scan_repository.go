package repository

import (
	"database/sql"
	"fmt"
	"strings"

	"CupBack/model"
)

// ScanRepository defines the interface for scan ledger operations. The ledger
// is append-only: there is no update or delete.
type ScanRepository interface {
	CreateScan(scan *model.ScanEvent) error
	FindByOwnerAndDate(ownerKeys []string, date string) ([]model.ScanEvent, error)
	ListScansByOwner(ownerKeys []string) ([]model.ScanEvent, error)
	ListScans() ([]model.ScanEvent, error)
	CountScans() (int, error)
	CountScansByDate(date string) (int, error)
}

// mysqlScanRepository implements ScanRepository for MySQL.
type mysqlScanRepository struct {
	db *sql.DB
}

// NewMySQLScanRepository creates a new mysqlScanRepository.
func NewMySQLScanRepository(db *sql.DB) ScanRepository {
	return &mysqlScanRepository{db: db}
}

const scanColumns = "id, user_id, date, code, created_at"

// CreateScan appends a scan event to the ledger.
func (r *mysqlScanRepository) CreateScan(scan *model.ScanEvent) error {
	query := "INSERT INTO scan_events (" + scanColumns + ") VALUES (?, ?, ?, ?, ?)"
	stmt, err := r.db.Prepare(query)
	if err != nil {
		return fmt.Errorf("failed to prepare create scan statement: %w", err)
	}
	defer stmt.Close()

	_, err = stmt.Exec(scan.ID, scan.UserID, scan.Date, scan.Code, scan.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to execute create scan statement: %w", err)
	}
	return nil
}

// FindByOwnerAndDate retrieves events for a given date whose user_id matches
// any of the owner's identity keys. Legacy rows may be keyed by the auth id
// or email instead of the canonical id, so the whole equivalence class is
// queried at once.
func (r *mysqlScanRepository) FindByOwnerAndDate(ownerKeys []string, date string) ([]model.ScanEvent, error) {
	if len(ownerKeys) == 0 {
		return nil, nil
	}
	query := "SELECT " + scanColumns + " FROM scan_events WHERE user_id IN (" +
		placeholders(len(ownerKeys)) + ") AND date = ?"
	args := make([]interface{}, 0, len(ownerKeys)+1)
	for _, key := range ownerKeys {
		args = append(args, key)
	}
	args = append(args, date)

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query scans for date %s: %w", date, err)
	}
	defer rows.Close()
	return collectScans(rows)
}

// ListScansByOwner retrieves every event whose user_id matches any of the
// owner's identity keys.
func (r *mysqlScanRepository) ListScansByOwner(ownerKeys []string) ([]model.ScanEvent, error) {
	if len(ownerKeys) == 0 {
		return nil, nil
	}
	query := "SELECT " + scanColumns + " FROM scan_events WHERE user_id IN (" +
		placeholders(len(ownerKeys)) + ") ORDER BY created_at ASC"
	args := make([]interface{}, 0, len(ownerKeys))
	for _, key := range ownerKeys {
		args = append(args, key)
	}

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query scans by owner: %w", err)
	}
	defer rows.Close()
	return collectScans(rows)
}

// ListScans retrieves the full ledger, oldest first.
func (r *mysqlScanRepository) ListScans() ([]model.ScanEvent, error) {
	query := "SELECT " + scanColumns + " FROM scan_events ORDER BY created_at ASC"
	rows, err := r.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query scans: %w", err)
	}
	defer rows.Close()
	return collectScans(rows)
}

// CountScans returns the total number of events in the ledger.
func (r *mysqlScanRepository) CountScans() (int, error) {
	var count int
	if err := r.db.QueryRow("SELECT COUNT(*) FROM scan_events").Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count scans: %w", err)
	}
	return count, nil
}

// CountScansByDate returns the number of events on a calendar date.
func (r *mysqlScanRepository) CountScansByDate(date string) (int, error) {
	var count int
	if err := r.db.QueryRow("SELECT COUNT(*) FROM scan_events WHERE date = ?", date).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count scans for date %s: %w", date, err)
	}
	return count, nil
}

func collectScans(rows *sql.Rows) ([]model.ScanEvent, error) {
	var scans []model.ScanEvent
	for rows.Next() {
		var scan model.ScanEvent
		if err := rows.Scan(&scan.ID, &scan.UserID, &scan.Date, &scan.Code, &scan.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan ledger row: %w", err)
		}
		scans = append(scans, scan)
	}
	return scans, rows.Err()
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}
