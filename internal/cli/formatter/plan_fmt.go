package formatter

import (
	"fmt"
	"strings"
	"time"

	"github.com/alexanderramin/dayplan/internal/contract"
	"github.com/alexanderramin/dayplan/internal/domain"
	"github.com/alexanderramin/dayplan/internal/scheduler"
)

// FormatPlan renders the schedule of a planning run, followed by the fill
// rate, the selected chain and any warnings.
func FormatPlan(resp *contract.PlanResponse) string {
	var b strings.Builder
	b.WriteString(Header("Day plan"))
	b.WriteString("\n")

	if len(resp.Results) == 0 {
		b.WriteString(Dim("No tasks to plan.") + "\n")
	} else {
		b.WriteString(RenderTable([]string{"TIME", "TASK", "STATUS", "BY"}, planRows(resp.Results)))
	}

	b.WriteString("\n")
	b.WriteString(fmt.Sprintf("Fill rate %s", RenderFillRate(resp.FillRate, 20)))
	if resp.SelectedChainID != nil {
		b.WriteString(Dim(fmt.Sprintf("   chain %s", *resp.SelectedChainID)))
	}
	b.WriteString(Dim(fmt.Sprintf("   run %s   %s", TruncID(resp.RunID), resp.ProcessTime.Round(time.Millisecond))))
	b.WriteString("\n")
	if resp.RecordID != "" {
		b.WriteString(Dim("Saved as "+resp.RecordID) + "\n")
	}

	if degraded := resp.Degraded(); degraded != nil {
		b.WriteString(StyleYellow.Render("▲ "+degraded.Message) + "\n")
	}
	if len(resp.Warnings) > 0 {
		b.WriteString("\n" + StyleYellow.Render("Warnings") + "\n")
		for _, w := range resp.Warnings {
			b.WriteString("  " + Dim("• ") + w + "\n")
		}
	}
	return b.String()
}

func planRows(results []domain.AssignmentResult) [][]string {
	rows := make([][]string, 0, len(results))
	for _, r := range results {
		title := r.Title
		if r.Type == domain.TaskFixed {
			title = Bold(title)
		}
		rows = append(rows, []string{
			timeRange(r.StartAt, r.EndAt),
			title,
			StatusPill(r.AssignmentStatus),
			Dim(string(r.AssignedBy)),
		})
		for _, c := range r.Children {
			rows = append(rows, []string{
				Dim("  " + c.StartAt + "-" + c.EndAt),
				Dim("  ↳ " + c.Title),
				"",
				"",
			})
		}
	}
	return rows
}

// timeRange renders "09:00-10:00", or "--" for tasks without a slot.
func timeRange(start, end *string) string {
	if start == nil || end == nil {
		return Dim("--")
	}
	return *start + "-" + *end
}

// FormatScores renders the judgement of every candidate chain. The
// selected chain is starred.
func FormatScores(scores []scheduler.ChainScore, selected *string) string {
	if len(scores) == 0 {
		return Dim("No chain candidates were judged.") + "\n"
	}
	rows := make([][]string, 0, len(scores))
	for _, s := range scores {
		id := s.ChainID
		if selected != nil && *selected == s.ChainID {
			id = StyleGreen.Render(id + " ★")
		}
		rows = append(rows, []string{
			id,
			fmt.Sprintf("%.2f", s.Total),
			fmt.Sprintf("%.2f", s.IncludedUtility),
			fmt.Sprintf("-%.2f", s.ExcludedCost),
			fmt.Sprintf("-%.2f", s.OverflowPenalty),
			fmt.Sprintf("-%.2f", s.FatiguePenalty),
			fmt.Sprintf("+%.2f", s.FocusAlignBonus),
			fmt.Sprintf("%d/%d", s.IncludedCount, s.IncludedCount+s.ExcludedCount),
		})
	}
	return Header("Chain scores") + "\n" +
		RenderTable([]string{"CHAIN", "TOTAL", "INCLUDED", "EXCLUDED", "OVERFLOW", "FATIGUE", "FOCUS", "TASKS"}, rows)
}
