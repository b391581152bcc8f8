package leaderboard

import (
	"math"
	"sort"
	"time"

	"github.com/xyz-asif/mangrovewatch/internal/features/auth"
	"github.com/xyz-asif/mangrovewatch/internal/features/reports"
)

const (
	pointsPerReport   = 30
	pointsPerResolved = 20

	// UnknownContributor names authors with no matching identity.
	UnknownContributor = "Unknown contributor"
)

// Level is a rung of the contributor ladder.
type Level struct {
	Name      string `json:"name"`
	MinPoints int    `json:"minPoints"`
}

// Ladder is ordered by ascending threshold.
var Ladder = []Level{
	{Name: "Scout", MinPoints: 0},
	{Name: "Defender", MinPoints: 1000},
	{Name: "Protector", MinPoints: 1800},
	{Name: "Guardian", MinPoints: 2400},
}

// LevelFor returns the highest level points reaches and the fraction of
// the way to the next one. Progress is 1 on the top level.
func LevelFor(points int) (Level, float64) {
	i := 0
	for i+1 < len(Ladder) && points >= Ladder[i+1].MinPoints {
		i++
	}
	if i == len(Ladder)-1 {
		return Ladder[i], 1
	}

	span := Ladder[i+1].MinPoints - Ladder[i].MinPoints
	progress := float64(points-Ladder[i].MinPoints) / float64(span)
	return Ladder[i], math.Max(0, math.Min(1, progress))
}

// Achievement is a badge earned from a contributor's reports.
type Achievement string

const (
	AchievementFirstReport   Achievement = "first-report"
	AchievementPhotoEvidence Achievement = "photo-evidence"
	AchievementLocationScout Achievement = "location-scout"
	AchievementCommunityHero Achievement = "community-hero"
)

const (
	photoEvidenceReports = 10
	locationScoutSites   = 5
	communityHeroPoints  = 1000
)

// Points is the score of reportCount reports of which resolvedCount are resolved.
func Points(reportCount, resolvedCount int) int {
	return reportCount*pointsPerReport + resolvedCount*pointsPerResolved
}

// Entry is one contributor's row. It is derived from the report set and
// never stored.
type Entry struct {
	IdentityID    string        `json:"identityId"`
	DisplayName   string        `json:"displayName"`
	ReportCount   int           `json:"reportCount"`
	ResolvedCount int           `json:"resolvedCount"`
	Points        int           `json:"points"`
	Level         string        `json:"level"`
	Progress      float64       `json:"progress"`
	Rank          int           `json:"rank"`
	Achievements  []Achievement `json:"achievements"`
	FirstReportAt time.Time     `json:"firstReportAt"`
}

type tally struct {
	reports  int
	resolved int
	photos   int
	first    time.Time
	sites    map[[2]int64]struct{}
}

// Compute ranks every author of rs. The result depends only on the set of
// reports and identities, not on their order. Authors without reports do
// not appear.
func Compute(rs []reports.Report, identities []auth.Identity) []Entry {
	tallies := make(map[string]*tally)
	for i := range rs {
		r := &rs[i]
		t, ok := tallies[r.AuthorID]
		if !ok {
			t = &tally{first: r.SubmittedAt, sites: make(map[[2]int64]struct{})}
			tallies[r.AuthorID] = t
		}
		t.reports++
		if r.Status == reports.StatusResolved {
			t.resolved++
		}
		if r.HasPhoto {
			t.photos++
		}
		if r.SubmittedAt.Before(t.first) {
			t.first = r.SubmittedAt
		}
		t.sites[siteKey(r.Location)] = struct{}{}
	}

	// An id listed twice takes its smallest non-empty name, so the result
	// does not depend on identity order.
	names := make(map[string]string, len(identities))
	for _, id := range identities {
		if id.DisplayName == "" {
			continue
		}
		if current, seen := names[id.ID]; !seen || id.DisplayName < current {
			names[id.ID] = id.DisplayName
		}
	}

	entries := make([]Entry, 0, len(tallies))
	for authorID, t := range tallies {
		points := Points(t.reports, t.resolved)
		level, progress := LevelFor(points)

		name, ok := names[authorID]
		if !ok || name == "" {
			name = UnknownContributor
		}

		entries = append(entries, Entry{
			IdentityID:    authorID,
			DisplayName:   name,
			ReportCount:   t.reports,
			ResolvedCount: t.resolved,
			Points:        points,
			Level:         level.Name,
			Progress:      progress,
			Achievements:  achievements(t, points),
			FirstReportAt: t.first,
		})
	}

	sort.Slice(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if a.Points != b.Points {
			return a.Points > b.Points
		}
		if !a.FirstReportAt.Equal(b.FirstReportAt) {
			return a.FirstReportAt.Before(b.FirstReportAt)
		}
		return a.IdentityID < b.IdentityID
	})
	for i := range entries {
		entries[i].Rank = i + 1
	}
	return entries
}

// Find returns id's entry, or an unranked zero entry when id has no reports.
func Find(entries []Entry, id string) Entry {
	for _, e := range entries {
		if e.IdentityID == id {
			return e
		}
	}
	level, progress := LevelFor(0)
	return Entry{
		IdentityID:   id,
		Level:        level.Name,
		Progress:     progress,
		Achievements: []Achievement{},
	}
}

func achievements(t *tally, points int) []Achievement {
	earned := []Achievement{}
	if t.reports >= 1 {
		earned = append(earned, AchievementFirstReport)
	}
	if t.photos >= photoEvidenceReports {
		earned = append(earned, AchievementPhotoEvidence)
	}
	if len(t.sites) >= locationScoutSites {
		earned = append(earned, AchievementLocationScout)
	}
	if points >= communityHeroPoints {
		earned = append(earned, AchievementCommunityHero)
	}
	return earned
}

// siteKey rounds a location to three decimals, about 100 m.
func siteKey(l reports.Location) [2]int64 {
	return [2]int64{int64(math.Round(l.Lat * 1000)), int64(math.Round(l.Lng * 1000))}
}
