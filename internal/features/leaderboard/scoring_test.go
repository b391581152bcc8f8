package leaderboard

import (
	"fmt"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xyz-asif/mangrovewatch/internal/features/auth"
	"github.com/xyz-asif/mangrovewatch/internal/features/reports"
)

var base = time.Date(2026, 2, 1, 8, 0, 0, 0, time.UTC)

func report(id, author string, status reports.Status, minutes int) reports.Report {
	return reports.Report{
		ID:          id,
		AuthorID:    author,
		Status:      status,
		Severity:    reports.SeverityModerate,
		Location:    reports.Location{Lat: 22.0, Lng: 89.0},
		SubmittedAt: base.Add(time.Duration(minutes) * time.Minute),
	}
}

func identities() []auth.Identity {
	return []auth.Identity{
		{ID: "A", Email: "a@example.org", DisplayName: "Ana", Role: auth.RoleUser},
		{ID: "B", Email: "b@example.org", DisplayName: "Bo", Role: auth.RoleUser},
		{ID: "C", Email: "c@example.org", DisplayName: "Cy", Role: auth.RoleUser},
	}
}

func scenario() []reports.Report {
	return []reports.Report{
		report("1", "A", reports.StatusResolved, 0),
		report("2", "A", reports.StatusResolved, 5),
		report("3", "A", reports.StatusPending, 10),
		report("4", "B", reports.StatusPending, 1),
		report("5", "B", reports.StatusInvestigating, 2),
	}
}

func TestCompute_Scenario(t *testing.T) {
	entries := Compute(scenario(), identities())
	require.Len(t, entries, 2)

	a, b := entries[0], entries[1]
	assert.Equal(t, "A", a.IdentityID)
	assert.Equal(t, "Ana", a.DisplayName)
	assert.Equal(t, 3, a.ReportCount)
	assert.Equal(t, 2, a.ResolvedCount)
	assert.Equal(t, 100, a.Points)
	assert.Equal(t, 1, a.Rank)

	assert.Equal(t, "B", b.IdentityID)
	assert.Equal(t, 60, b.Points)
	assert.Equal(t, 2, b.Rank)
	assert.Equal(t, "Scout", b.Level)
	assert.InDelta(t, 0.06, b.Progress, 1e-9)
}

func TestCompute_Empty(t *testing.T) {
	assert.Empty(t, Compute(nil, nil))
	assert.Empty(t, Compute(nil, identities()))
}

func TestCompute_OrderIndependentAndIdempotent(t *testing.T) {
	var rs []reports.Report
	for i := 0; i < 40; i++ {
		status := reports.StatusPending
		if i%3 == 0 {
			status = reports.StatusResolved
		}
		rs = append(rs, report(fmt.Sprint(i), []string{"A", "B", "C", "D"}[i%4], status, i))
	}

	want := Compute(rs, identities())
	assert.Equal(t, want, Compute(rs, identities()))

	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 20; i++ {
		shuffled := append([]reports.Report(nil), rs...)
		rng.Shuffle(len(shuffled), func(i, j int) { shuffled[i], shuffled[j] = shuffled[j], shuffled[i] })
		require.Equal(t, want, Compute(shuffled, identities()))
	}
}

func TestCompute_TieBreaks(t *testing.T) {
	rs := []reports.Report{
		report("1", "late", reports.StatusPending, 30),
		report("2", "early", reports.StatusPending, 10),
		report("3", "z-same", reports.StatusPending, 20),
		report("4", "a-same", reports.StatusPending, 20),
	}
	entries := Compute(rs, nil)

	var order []string
	for _, e := range entries {
		order = append(order, e.IdentityID)
		assert.Equal(t, UnknownContributor, e.DisplayName)
	}
	assert.Equal(t, []string{"early", "a-same", "z-same", "late"}, order)
}

func TestCompute_ExcludesAuthorsWithoutReports(t *testing.T) {
	entries := Compute(scenario(), identities())
	for _, e := range entries {
		assert.NotEqual(t, "C", e.IdentityID)
	}
}

func TestLevelFor(t *testing.T) {
	tests := []struct {
		points   int
		level    string
		progress float64
	}{
		{0, "Scout", 0},
		{500, "Scout", 0.5},
		{999, "Scout", 0.999},
		{1000, "Defender", 0},
		{1400, "Defender", 0.5},
		{1800, "Protector", 0},
		{2100, "Protector", 0.5},
		{2400, "Guardian", 1},
		{9000, "Guardian", 1},
	}
	for _, tt := range tests {
		level, progress := LevelFor(tt.points)
		assert.Equal(t, tt.level, level.Name, "points %d", tt.points)
		assert.InDelta(t, tt.progress, progress, 1e-9, "points %d", tt.points)
	}
}

func TestAchievements(t *testing.T) {
	var rs []reports.Report
	for i := 0; i < 34; i++ {
		r := report(fmt.Sprint(i), "A", reports.StatusPending, i)
		r.HasPhoto = i < 10
		// five distinct sites; the jitter rounds away
		r.Location = reports.Location{Lat: 22.0 + float64(i%5)*0.01 + 0.0001, Lng: 89.0}
		rs = append(rs, r)
	}

	e := Compute(rs, identities())[0]
	assert.Equal(t, 1020, e.Points)
	assert.Equal(t, []Achievement{
		AchievementFirstReport,
		AchievementPhotoEvidence,
		AchievementLocationScout,
		AchievementCommunityHero,
	}, e.Achievements)

	e = Compute(rs[:1], identities())[0]
	assert.Equal(t, []Achievement{AchievementFirstReport}, e.Achievements)
}

func TestFind(t *testing.T) {
	entries := Compute(scenario(), identities())
	assert.Equal(t, 2, Find(entries, "B").Rank)

	missing := Find(entries, "C")
	assert.Equal(t, 0, missing.Rank)
	assert.Equal(t, 0, missing.Points)
	assert.Equal(t, "Scout", missing.Level)
}

func TestCompute_DuplicateIdentityNameIsOrderIndependent(t *testing.T) {
	dupes := []auth.Identity{
		{ID: "A", DisplayName: "Ana Reyes"},
		{ID: "A", DisplayName: ""},
		{ID: "A", DisplayName: "Ana"},
		{ID: "B", DisplayName: "Bo"},
	}
	reversed := []auth.Identity{dupes[3], dupes[2], dupes[1], dupes[0]}

	forward := Compute(scenario(), dupes)
	backward := Compute(scenario(), reversed)

	require.Len(t, forward, 2)
	assert.Equal(t, "Ana", forward[0].DisplayName)
	assert.Equal(t, forward, backward)
}
