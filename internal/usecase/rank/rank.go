package rank

import (
	"sort"

	"qualisync/internal/ports"
)

// Entry is one ranked analysis project. Rank is 1-based; ties keep their
// stable input order.
type Entry struct {
	ports.RankingSnapshot
	Rank         int
	QualityScore float64
}

// severityOrder ranks hotspot review priorities, less severe first. A
// project with no hotspots at all sorts after every project that has
// some, per the missing-sorts-worse rule.
var severityOrder = map[string]int{
	"LOW":      1,
	"MEDIUM":   2,
	"HIGH":     3,
	"CRITICAL": 4,
}

const missingHotspotRank = 5

// Rank orders snapshots so the most attention-worthy project comes
// first. Keys in order: coverage descending, duplication ascending, new
// issues ascending, worst hotspot severity ascending. A missing value
// always sorts worse than any present value. The sort is stable, so
// fully tied projects keep the order the catalog returned them in.
func Rank(snapshots []ports.RankingSnapshot) []Entry {
	entries := make([]Entry, len(snapshots))
	for i, s := range snapshots {
		entries[i] = Entry{RankingSnapshot: s, QualityScore: QualityScore(s)}
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return snapshotLess(entries[i].RankingSnapshot, entries[j].RankingSnapshot)
	})

	for i := range entries {
		entries[i].Rank = i + 1
	}
	return entries
}

func snapshotLess(a, b ports.RankingSnapshot) bool {
	// Coverage: higher is better, missing is worst.
	ac, bc := floatOr(a.Coverage, -1), floatOr(b.Coverage, -1)
	if ac != bc {
		return ac > bc
	}

	// Duplication: lower is better, missing is worst.
	ad, bd := floatOr(a.Duplication, -1), floatOr(b.Duplication, -1)
	if ad != bd {
		if ad < 0 {
			return false
		}
		if bd < 0 {
			return true
		}
		return ad < bd
	}

	// New issues: fewer is better, missing is worst.
	ai, bi := intOr(a.NewIssues, -1), intOr(b.NewIssues, -1)
	if ai != bi {
		if ai < 0 {
			return false
		}
		if bi < 0 {
			return true
		}
		return ai < bi
	}

	// Worst hotspot: less severe is better, no hotspots is worst.
	ah, bh := hotspotRank(a.WorstHotspot), hotspotRank(b.WorstHotspot)
	return ah < bh
}

func hotspotRank(priority string) int {
	if rank, ok := severityOrder[priority]; ok {
		return rank
	}
	return missingHotspotRank
}

func floatOr(v *float64, fallback float64) float64 {
	if v == nil {
		return fallback
	}
	return *v
}

func intOr(v *int64, fallback int64) int64 {
	if v == nil {
		return fallback
	}
	return *v
}

// QualityScore condenses a snapshot into a 0-100 health score: 30%
// coverage, 20% inverted duplication, 30% platform ratings, 20% issue
// penalty (2 percent of the slice per issue, floored at zero). Ratings
// use the 1 (best) to 5 (worst) platform scale; a missing rating counts
// as worst, while missing coverage and duplication count as zero.
func QualityScore(s ports.RankingSnapshot) float64 {
	score := 0.0

	score += floatOr(s.Coverage, 0) / 100 * 30

	dupPoints := 100 - floatOr(s.Duplication, 0)
	if dupPoints < 0 {
		dupPoints = 0
	}
	score += dupPoints / 100 * 20

	ratings := [4]int{
		s.MaintainabilityRating,
		s.ReliabilityRating,
		s.SecurityRating,
		s.SecurityReviewRating,
	}
	ratingPoints := 0.0
	for _, r := range ratings {
		if r < 1 || r > 5 {
			r = 5
		}
		ratingPoints += float64(6-r) * 6
	}
	score += ratingPoints / 120 * 30

	issues := s.BugsCount + s.VulnerabilitiesCount + s.CodeSmellsCount
	issuePoints := 100 - float64(issues)*2
	if issuePoints < 0 {
		issuePoints = 0
	}
	score += issuePoints / 100 * 20

	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}
