package cmd

import (
	"fmt"
	"io"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	domainsync "qualisync/internal/domain/sync"
	"qualisync/internal/usecase/rank"
	syncuc "qualisync/internal/usecase/sync"
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true)
	okStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	failStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	detailStyle = lipgloss.NewStyle().Faint(true)
	headerStyle = lipgloss.NewStyle().Bold(true)
)

// maxFailureLines bounds the per-run failure detail; the full list is in
// the logs.
const maxFailureLines = 20

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.NormalBorder()).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle.Padding(0, 1)
			}
			return lipgloss.NewStyle().Padding(0, 1)
		}).
		Headers(headers...)
}

func renderSummary(w io.Writer, summary *domainsync.RunSummary) {
	fmt.Fprintln(w, titleStyle.Render("sync run"))

	t := newTable("TARGET", "STATUS", "CREATED", "UPDATED", "UNCHANGED", "FAILED", "LAST SYNCED")
	for _, target := range summary.Targets {
		status := okStyle.Render("ok")
		if !target.Succeeded {
			status = failStyle.Render("failed (" + target.ErrorKind + ")")
		}

		var totals domainsync.Counts
		if target.Stats != nil {
			totals = target.Stats.Totals()
		}
		t.Row(
			target.Target,
			status,
			strconv.Itoa(totals.Created),
			strconv.Itoa(totals.Updated),
			strconv.Itoa(totals.Unchanged),
			strconv.Itoa(totals.Failed),
			orDash(target.LastSyncedAt),
		)
	}
	fmt.Fprintln(w, t.Render())

	shown := 0
	for _, target := range summary.Targets {
		if !target.Succeeded {
			fmt.Fprintln(w, failStyle.Render(fmt.Sprintf("  %s: %s", target.Target, target.ErrorMessage)))
		}
		for _, failure := range target.RecordFailures {
			if shown >= maxFailureLines {
				fmt.Fprintln(w, detailStyle.Render("  ... more record failures omitted"))
				break
			}
			fmt.Fprintln(w, detailStyle.Render(fmt.Sprintf("  %s %s %s: %s", target.Target, failure.Kind, failure.Key, failure.Message)))
			shown++
		}
		if shown >= maxFailureLines {
			break
		}
	}

	totals := summary.Totals()
	line := fmt.Sprintf("totals: %d created, %d updated, %d unchanged, %d failed, %d/%d targets failed",
		totals.Created, totals.Updated, totals.Unchanged, totals.Failed,
		summary.FailedTargets(), len(summary.Targets))
	if summary.FailedTargets() > 0 {
		fmt.Fprintln(w, failStyle.Render(line))
	} else {
		fmt.Fprintln(w, okStyle.Render(line))
	}
}

func renderLinkReport(w io.Writer, report syncuc.LinkReport) {
	fmt.Fprintln(w, titleStyle.Render(fmt.Sprintf("link %s -> %s", report.Organization, report.Workspace)))

	t := newTable("LINKED", "ALREADY LINKED", "UNMATCHED", "CONFLICTS")
	t.Row(
		strconv.Itoa(report.Linked),
		strconv.Itoa(report.AlreadyLinked),
		strconv.Itoa(report.Unmatched),
		strconv.Itoa(len(report.Conflicts)),
	)
	fmt.Fprintln(w, t.Render())

	for _, key := range report.Conflicts {
		fmt.Fprintln(w, failStyle.Render("  conflict: "+key))
	}
}

func renderRanking(w io.Writer, organization string, entries []rank.Entry) {
	fmt.Fprintln(w, titleStyle.Render("priority ranking for "+organization))

	t := newTable("RANK", "PROJECT", "SCORE", "COVERAGE", "DUPLICATION", "NEW ISSUES", "WORST HOTSPOT")
	for _, e := range entries {
		t.Row(
			strconv.Itoa(e.Rank),
			e.Key,
			fmt.Sprintf("%.1f", e.QualityScore),
			fmtFloat(e.Coverage),
			fmtFloat(e.Duplication),
			fmtInt(e.NewIssues),
			orDash(e.WorstHotspot),
		)
	}
	fmt.Fprintln(w, t.Render())
}

func fmtFloat(v *float64) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprintf("%.1f", *v)
}

func fmtInt(v *int64) string {
	if v == nil {
		return "-"
	}
	return strconv.FormatInt(*v, 10)
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
