package repository

import (
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"CupBack/model"
)

var scanCols = []string{"id", "user_id", "date", "code", "created_at"}

func newScanMock(t *testing.T) (ScanRepository, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	return NewMySQLScanRepository(db), mock, func() {
		if err := mock.ExpectationsWereMet(); err != nil {
			t.Errorf("unmet expectations: %v", err)
		}
		db.Close()
	}
}

func TestCreateScan(t *testing.T) {
	repo, mock, done := newScanMock(t)
	defer done()

	now := time.Now()
	mock.ExpectPrepare(regexp.QuoteMeta("INSERT INTO scan_events")).
		ExpectExec().
		WithArgs("s1", "u1", "2025-01-01", "CUPBACK", now).
		WillReturnResult(sqlmock.NewResult(1, 1))

	err := repo.CreateScan(&model.ScanEvent{
		ID: "s1", UserID: "u1", Date: "2025-01-01", Code: "CUPBACK", CreatedAt: now,
	})
	if err != nil {
		t.Fatalf("CreateScan error: %v", err)
	}
}

func TestFindByOwnerAndDate_AliasClass(t *testing.T) {
	repo, mock, done := newScanMock(t)
	defer done()

	now := time.Now()
	rows := sqlmock.NewRows(scanCols).
		AddRow("s1", "auth-9", "2025-01-01", "CUPBACK", now)
	mock.ExpectQuery(regexp.QuoteMeta("WHERE user_id IN (?,?,?) AND date = ?")).
		WithArgs("u1", "auth-9", "a@campus.test", "2025-01-01").
		WillReturnRows(rows)

	scans, err := repo.FindByOwnerAndDate([]string{"u1", "auth-9", "a@campus.test"}, "2025-01-01")
	if err != nil {
		t.Fatalf("FindByOwnerAndDate error: %v", err)
	}
	if len(scans) != 1 || scans[0].UserID != "auth-9" {
		t.Errorf("scans = %+v", scans)
	}
}

func TestFindByOwnerAndDate_NoKeys(t *testing.T) {
	repo, _, done := newScanMock(t)
	defer done()

	// No query must be issued for an empty key set.
	scans, err := repo.FindByOwnerAndDate(nil, "2025-01-01")
	if err != nil {
		t.Fatalf("FindByOwnerAndDate error: %v", err)
	}
	if scans != nil {
		t.Errorf("scans = %+v, want nil", scans)
	}
}

func TestListScansByOwner(t *testing.T) {
	repo, mock, done := newScanMock(t)
	defer done()

	now := time.Now()
	rows := sqlmock.NewRows(scanCols).
		AddRow("s1", "u1", "2025-01-01", "CUPBACK", now).
		AddRow("s2", "u1", "2025-01-02", "CUPBACK", now.Add(24*time.Hour))
	mock.ExpectQuery(regexp.QuoteMeta("WHERE user_id IN (?) ORDER BY created_at ASC")).
		WithArgs("u1").
		WillReturnRows(rows)

	scans, err := repo.ListScansByOwner([]string{"u1"})
	if err != nil {
		t.Fatalf("ListScansByOwner error: %v", err)
	}
	if len(scans) != 2 {
		t.Errorf("len = %d, want 2", len(scans))
	}
}

func TestCountScansByDate(t *testing.T) {
	repo, mock, done := newScanMock(t)
	defer done()

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM scan_events WHERE date = ?")).
		WithArgs("2025-01-01").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(4))

	n, err := repo.CountScansByDate("2025-01-01")
	if err != nil {
		t.Fatalf("CountScansByDate error: %v", err)
	}
	if n != 4 {
		t.Errorf("count = %d, want 4", n)
	}
}

func TestPlaceholders(t *testing.T) {
	cases := map[int]string{1: "?", 3: "?,?,?"}
	for n, want := range cases {
		if got := placeholders(n); got != want {
			t.Errorf("placeholders(%d) = %q, want %q", n, got, want)
		}
	}
}
