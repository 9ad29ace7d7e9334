// Package ranking produces the personal and department leaderboards. Full
// recompute from the user set and the scan ledger on every call; at the
// expected scale (hundreds to low thousands of events) an incremental view
// is not worth its consistency problems.
package ranking

import (
	"sort"

	"CupBack/core/identity"
	"CupBack/model"
)

// Entry is one row of the personal leaderboard.
type Entry struct {
	Rank       int    `json:"rank"`
	UserID     string `json:"userId"`
	Nickname   string `json:"nickname"`
	Name       string `json:"name,omitempty"`
	Department string `json:"department,omitempty"`
	TotalCups  int    `json:"totalCups"`
	TotalCO2   int    `json:"totalCO2"`
}

// DeptEntry is one row of the department leaderboard.
type DeptEntry struct {
	Rank       int    `json:"rank"`
	Department string `json:"department"`
	TotalCups  int    `json:"totalCups"`
	TotalUsers int    `json:"totalUsers"`
	TotalCO2   int    `json:"totalCO2"`
}

// Rankings is the combined leaderboard payload.
type Rankings struct {
	Personal   []Entry     `json:"personal"`
	Department []DeptEntry `json:"department"`
}

// ComputeRankings derives both leaderboards. Event ownership is matched
// through each user's identity alias class, not string equality on the
// canonical id alone: legacy ledger rows may carry the auth id or email.
//
// Order: descending by totalCups; ties break toward the earlier-registered
// user (explicit choice, the upstream behavior relied on iteration order).
// A scan matching no user's alias class counts toward no one.
func ComputeRankings(users []model.User, scans []model.ScanEvent, gramsPerCup int) Rankings {
	// Alias key -> index into users. A key claimed by two users keeps its
	// first owner; ListUsers order is registration order, so the older
	// account wins, matching how the legacy rows were written.
	owners := make(map[string]int, len(users))
	for i := range users {
		for _, key := range identity.AliasKeys(&users[i]) {
			if _, taken := owners[key]; !taken {
				owners[key] = i
			}
		}
	}

	cups := make([]int, len(users))
	for _, scan := range scans {
		if i, ok := owners[scan.UserID]; ok {
			cups[i]++
		}
	}

	personal := make([]Entry, len(users))
	order := make([]int, len(users))
	for i := range users {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		if cups[order[a]] != cups[order[b]] {
			return cups[order[a]] > cups[order[b]]
		}
		return users[order[a]].CreatedAt.Before(users[order[b]].CreatedAt)
	})
	for rank, i := range order {
		u := &users[i]
		personal[rank] = Entry{
			Rank:       rank + 1,
			UserID:     u.ID,
			Nickname:   u.Nickname,
			Name:       u.Name,
			Department: u.Department,
			TotalCups:  cups[i],
			TotalCO2:   cups[i] * gramsPerCup,
		}
	}

	// Department rollup. Users without a department are skipped.
	deptIndex := make(map[string]int)
	var depts []DeptEntry
	for i := range users {
		dept := users[i].Department
		if dept == "" {
			continue
		}
		j, ok := deptIndex[dept]
		if !ok {
			j = len(depts)
			deptIndex[dept] = j
			depts = append(depts, DeptEntry{Department: dept})
		}
		depts[j].TotalCups += cups[i]
		depts[j].TotalUsers++
	}
	for i := range depts {
		depts[i].TotalCO2 = depts[i].TotalCups * gramsPerCup
	}
	sort.SliceStable(depts, func(a, b int) bool {
		return depts[a].TotalCups > depts[b].TotalCups
	})
	for i := range depts {
		depts[i].Rank = i + 1
	}

	return Rankings{Personal: personal, Department: depts}
}
