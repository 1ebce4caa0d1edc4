package rank

import (
	"testing"

	"qualisync/internal/ports"
)

func fp(v float64) *float64 { return &v }
func ip(v int64) *int64     { return &v }

func snapshot(key string, coverage, duplication *float64, newIssues *int64, worstHotspot string) ports.RankingSnapshot {
	return ports.RankingSnapshot{
		Key:          key,
		Name:         key,
		Coverage:     coverage,
		Duplication:  duplication,
		NewIssues:    newIssues,
		WorstHotspot: worstHotspot,
	}
}

func rankedKeys(entries []Entry) []string {
	keys := make([]string, len(entries))
	for i, e := range entries {
		keys[i] = e.Key
	}
	return keys
}

func assertOrder(t *testing.T, entries []Entry, want ...string) {
	t.Helper()
	got := rankedKeys(entries)
	if len(got) != len(want) {
		t.Fatalf("ranked %d entries, want %d: %v", len(got), len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("order = %v, want %v", got, want)
		}
	}
	for i, e := range entries {
		if e.Rank != i+1 {
			t.Fatalf("entry %s has rank %d, want %d", e.Key, e.Rank, i+1)
		}
	}
}

func TestRankHotspotSeverityBreaksTie(t *testing.T) {
	entries := Rank([]ports.RankingSnapshot{
		snapshot("critical", fp(80), fp(2), ip(1), "CRITICAL"),
		snapshot("low", fp(80), fp(2), ip(1), "LOW"),
	})
	assertOrder(t, entries, "low", "critical")
}

func TestRankCoverageDominates(t *testing.T) {
	// Higher coverage wins even when every other signal is worse.
	entries := Rank([]ports.RankingSnapshot{
		snapshot("seventy", fp(70), fp(0), ip(0), "LOW"),
		snapshot("ninety", fp(90), fp(50), ip(40), "CRITICAL"),
	})
	assertOrder(t, entries, "ninety", "seventy")
}

func TestRankDuplicationAscending(t *testing.T) {
	entries := Rank([]ports.RankingSnapshot{
		snapshot("dupey", fp(80), fp(12), ip(0), "LOW"),
		snapshot("clean", fp(80), fp(1), ip(9), "CRITICAL"),
	})
	assertOrder(t, entries, "clean", "dupey")
}

func TestRankMissingValuesSortWorst(t *testing.T) {
	entries := Rank([]ports.RankingSnapshot{
		snapshot("no-coverage", nil, fp(0), ip(0), "LOW"),
		snapshot("zero-coverage", fp(0), fp(0), ip(0), "LOW"),
		snapshot("no-duplication", nil, nil, ip(0), "LOW"),
	})
	// Measured zero coverage beats missing coverage; among the missing-
	// coverage pair, measured duplication beats missing duplication.
	assertOrder(t, entries, "zero-coverage", "no-coverage", "no-duplication")
}

func TestRankNoHotspotsSortsAfterAnySeverity(t *testing.T) {
	entries := Rank([]ports.RankingSnapshot{
		snapshot("unscanned", fp(80), fp(2), ip(1), ""),
		snapshot("critical", fp(80), fp(2), ip(1), "CRITICAL"),
	})
	assertOrder(t, entries, "critical", "unscanned")
}

func TestRankStableOnFullTies(t *testing.T) {
	entries := Rank([]ports.RankingSnapshot{
		snapshot("first", fp(80), fp(2), ip(1), "MEDIUM"),
		snapshot("second", fp(80), fp(2), ip(1), "MEDIUM"),
		snapshot("third", fp(80), fp(2), ip(1), "MEDIUM"),
	})
	assertOrder(t, entries, "first", "second", "third")
}

func TestQualityScorePerfectProject(t *testing.T) {
	s := ports.RankingSnapshot{
		Coverage:              fp(100),
		Duplication:           fp(0),
		MaintainabilityRating: 1,
		ReliabilityRating:     1,
		SecurityRating:        1,
		SecurityReviewRating:  1,
	}
	if got := QualityScore(s); got != 100 {
		t.Fatalf("QualityScore(perfect) = %v, want 100", got)
	}
}

func TestQualityScoreMissingEverything(t *testing.T) {
	// No coverage, no ratings, no issues. Missing duplication counts as
	// zero percent, so the duplication and issue slices stay whole.
	if got := QualityScore(ports.RankingSnapshot{}); got != 46 {
		t.Fatalf("QualityScore(empty) = %v, want 46", got)
	}
}

func TestQualityScoreIssuePenaltySlope(t *testing.T) {
	base := ports.RankingSnapshot{
		Coverage:              fp(100),
		Duplication:           fp(0),
		MaintainabilityRating: 1,
		ReliabilityRating:     1,
		SecurityRating:        1,
		SecurityReviewRating:  1,
	}
	withIssues := base
	withIssues.BugsCount = 3
	withIssues.CodeSmellsCount = 2

	// Each issue costs 2 percent of the 20-point slice: 5 issues leave
	// 90/100 * 20 = 18 points.
	if got := QualityScore(withIssues); got != 98 {
		t.Fatalf("QualityScore(5 issues) = %v, want 98", got)
	}

	// The slice bottoms out at 50 issues and stays there.
	atFloor := base
	atFloor.BugsCount = 50
	pastFloor := base
	pastFloor.BugsCount = 50000
	if QualityScore(atFloor) != 80 || QualityScore(pastFloor) != 80 {
		t.Fatalf("issue floor scores = %v, %v, want 80 for both", QualityScore(atFloor), QualityScore(pastFloor))
	}
}

func TestQualityScoreMissingDuplicationCountsAsZero(t *testing.T) {
	measured := ports.RankingSnapshot{Coverage: fp(60), Duplication: fp(0), MaintainabilityRating: 2, ReliabilityRating: 2, SecurityRating: 2, SecurityReviewRating: 2}
	missing := measured
	missing.Duplication = nil

	if QualityScore(missing) != QualityScore(measured) {
		t.Fatalf("missing duplication = %v, want same as measured zero %v", QualityScore(missing), QualityScore(measured))
	}
}

func TestQualityScoreInvalidRatingCountsAsWorst(t *testing.T) {
	valid := ports.RankingSnapshot{MaintainabilityRating: 5, ReliabilityRating: 5, SecurityRating: 5, SecurityReviewRating: 5}
	invalid := ports.RankingSnapshot{MaintainabilityRating: 0, ReliabilityRating: 99, SecurityRating: -1, SecurityReviewRating: 7}
	if QualityScore(valid) != QualityScore(invalid) {
		t.Fatalf("out-of-range ratings = %v, want same as all-worst %v", QualityScore(invalid), QualityScore(valid))
	}
}
