package ranking

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"CupBack/model"
)

func user(id, nickname, dept string, created time.Time) model.User {
	return model.User{ID: id, Nickname: nickname, Department: dept, CreatedAt: created}
}

func scansFor(userID string, n int) []model.ScanEvent {
	out := make([]model.ScanEvent, n)
	for i := range out {
		out[i] = model.ScanEvent{
			UserID: userID,
			Date:   time.Date(2025, 1, 1+i, 0, 0, 0, 0, time.Local).Format(model.DateLayout),
			Code:   "CUPBACK",
		}
	}
	return out
}

func TestComputeRankings_Empty(t *testing.T) {
	r := ComputeRankings(nil, nil, 30)
	assert.Empty(t, r.Personal)
	assert.Empty(t, r.Department)
}

func TestComputeRankings_Order(t *testing.T) {
	t0 := time.Date(2025, 1, 1, 0, 0, 0, 0, time.Local)
	users := []model.User{
		user("alice", "ali", "CS", t0),
		user("bob", "bobby", "EE", t0.Add(time.Hour)),
		user("carol", "cc", "CS", t0.Add(2*time.Hour)),
	}
	var scans []model.ScanEvent
	scans = append(scans, scansFor("alice", 2)...)
	scans = append(scans, scansFor("bob", 5)...)
	scans = append(scans, scansFor("carol", 3)...)

	r := ComputeRankings(users, scans, 30)

	require.Len(t, r.Personal, 3)
	assert.Equal(t, "bob", r.Personal[0].UserID)
	assert.Equal(t, "carol", r.Personal[1].UserID)
	assert.Equal(t, "alice", r.Personal[2].UserID)
	for i, e := range r.Personal {
		assert.Equal(t, i+1, e.Rank)
		assert.Equal(t, e.TotalCups*30, e.TotalCO2)
	}
}

func TestComputeRankings_TieBreakByRegistration(t *testing.T) {
	t0 := time.Date(2025, 1, 1, 0, 0, 0, 0, time.Local)
	users := []model.User{
		user("late", "late", "", t0.Add(time.Hour)),
		user("early", "early", "", t0),
	}
	scans := append(scansFor("late", 4), scansFor("early", 4)...)

	r := ComputeRankings(users, scans, 30)

	require.Len(t, r.Personal, 2)
	assert.Equal(t, "early", r.Personal[0].UserID, "earlier registration wins the tie")
	assert.Equal(t, "late", r.Personal[1].UserID)
}

func TestComputeRankings_EveryUserAppearsOnce(t *testing.T) {
	t0 := time.Date(2025, 1, 1, 0, 0, 0, 0, time.Local)
	users := []model.User{
		user("alice", "ali", "CS", t0),
		user("bob", "bobby", "EE", t0),
		user("zero", "zero", "CS", t0), // never scanned
	}
	scans := scansFor("alice", 1)

	r := ComputeRankings(users, scans, 30)

	require.Len(t, r.Personal, 3)
	seen := map[string]bool{}
	for _, e := range r.Personal {
		assert.False(t, seen[e.UserID], "user %s listed twice", e.UserID)
		seen[e.UserID] = true
	}
	assert.Equal(t, 0, r.Personal[len(r.Personal)-1].TotalCups)
}

func TestComputeRankings_AliasOwnership(t *testing.T) {
	t0 := time.Date(2025, 1, 1, 0, 0, 0, 0, time.Local)
	u := model.User{
		ID: "profile-1", AuthID: "auth-9", Email: "a@campus.test",
		Nickname: "ali", CreatedAt: t0,
	}
	// Ledger rows written under all three generations of keying.
	scans := []model.ScanEvent{
		{UserID: "profile-1", Date: "2025-01-01"},
		{UserID: "auth-9", Date: "2025-01-02"},
		{UserID: "a@campus.test", Date: "2025-01-03"},
		{UserID: "nobody", Date: "2025-01-04"}, // matches no alias class
	}

	r := ComputeRankings([]model.User{u}, scans, 30)

	require.Len(t, r.Personal, 1)
	assert.Equal(t, 3, r.Personal[0].TotalCups)
	assert.Equal(t, 90, r.Personal[0].TotalCO2)
}

func TestComputeRankings_DepartmentRollup(t *testing.T) {
	t0 := time.Date(2025, 1, 1, 0, 0, 0, 0, time.Local)
	users := []model.User{
		user("a", "a", "CS", t0),
		user("b", "b", "CS", t0),
		user("c", "c", "EE", t0),
		user("d", "d", "", t0), // no department, excluded from rollup
	}
	var scans []model.ScanEvent
	scans = append(scans, scansFor("a", 2)...)
	scans = append(scans, scansFor("b", 1)...)
	scans = append(scans, scansFor("c", 4)...)
	scans = append(scans, scansFor("d", 9)...)

	r := ComputeRankings(users, scans, 30)

	require.Len(t, r.Department, 2)
	assert.Equal(t, DeptEntry{Rank: 1, Department: "EE", TotalCups: 4, TotalUsers: 1, TotalCO2: 120}, r.Department[0])
	assert.Equal(t, DeptEntry{Rank: 2, Department: "CS", TotalCups: 3, TotalUsers: 2, TotalCO2: 90}, r.Department[1])
}
