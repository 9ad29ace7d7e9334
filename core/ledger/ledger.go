// Package ledger owns the append-only cup-return event log and the
// at-most-one-scan-per-user-per-day invariant.
package ledger

import (
	"errors"
	"fmt"
	"time"

	"CupBack/core/identity"
	"CupBack/core/stats"
	"CupBack/model"
	"CupBack/repository"

	"github.com/google/uuid"
)

// ErrDuplicateScan is returned when the user has already redeemed today.
// Recoverable: nothing to retry until the next calendar day.
var ErrDuplicateScan = errors.New("already scanned today")

// Ledger validates and appends scan events and serves aggregate reads.
type Ledger struct {
	scans       repository.ScanRepository
	users       repository.UserRepository
	gramsPerCup int
}

// New creates a Ledger.
func New(scans repository.ScanRepository, users repository.UserRepository, gramsPerCup int) *Ledger {
	return &Ledger{scans: scans, users: users, gramsPerCup: gramsPerCup}
}

// RecordScan appends a cup-return event for userID unless one already exists
// for today's calendar date. The duplicate check matches the user's whole
// identity alias class, so legacy rows keyed by auth id or email still block
// a second redemption.
//
// The check and the append are two storage calls, not one atomic operation.
// Two truly concurrent submissions from the same user can both pass the
// check; the storage layer offers no uniqueness primitive here, and the
// real-world trigger (one person scanning one code) makes the window
// acceptable.
func (l *Ledger) RecordScan(userID, code string, now time.Time) (*model.ScanEvent, error) {
	date := model.CalendarDate(now)

	ownerKeys := []string{userID}
	user, err := l.users.GetUserByID(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load user %s: %w", userID, err)
	}
	if user != nil {
		ownerKeys = identity.AliasKeys(user)
	}

	existing, err := l.scans.FindByOwnerAndDate(ownerKeys, date)
	if err != nil {
		return nil, fmt.Errorf("failed to check for existing scan: %w", err)
	}
	if len(existing) > 0 {
		return nil, ErrDuplicateScan
	}

	scan := &model.ScanEvent{
		ID:        uuid.New().String(),
		UserID:    userID,
		Date:      date,
		Code:      code,
		CreatedAt: now,
	}
	if err := l.scans.CreateScan(scan); err != nil {
		return nil, fmt.Errorf("failed to append scan: %w", err)
	}
	return scan, nil
}

// Stats returns the global aggregate view: full ledger recount on every call.
func (l *Ledger) Stats(now time.Time) (model.Stats, error) {
	scans, err := l.scans.ListScans()
	if err != nil {
		return model.Stats{}, fmt.Errorf("failed to list scans: %w", err)
	}
	userCount, err := l.users.CountUsers()
	if err != nil {
		return model.Stats{}, fmt.Errorf("failed to count users: %w", err)
	}
	return stats.Project(scans, userCount, now, l.gramsPerCup), nil
}

// UserStats returns the aggregate view restricted to one user's events,
// matched across the user's identity alias class.
func (l *Ledger) UserStats(userID string, now time.Time) (model.UserStats, error) {
	ownerKeys := []string{userID}
	user, err := l.users.GetUserByID(userID)
	if err != nil {
		return model.UserStats{}, fmt.Errorf("failed to load user %s: %w", userID, err)
	}
	if user != nil {
		ownerKeys = identity.AliasKeys(user)
	}

	scans, err := l.scans.ListScansByOwner(ownerKeys)
	if err != nil {
		return model.UserStats{}, fmt.Errorf("failed to list scans for user %s: %w", userID, err)
	}
	return stats.ProjectUser(scans, now, l.gramsPerCup), nil
}
