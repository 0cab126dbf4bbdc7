package formatter

import (
	"fmt"
	"strings"
	"time"

	"github.com/alexanderramin/dayplan/internal/domain"
)

// FormatHistory renders a list of stored planning runs, newest first.
func FormatHistory(records []*domain.PlannerRecord, now time.Time) string {
	if len(records) == 0 {
		return Dim("No planner records yet. Run 'dayplan plan' to create one.") + "\n"
	}
	rows := make([][]string, 0, len(records))
	for _, r := range records {
		chain := "--"
		if r.SelectedChainID != nil {
			chain = *r.SelectedChainID
		}
		rows = append(rows, []string{
			StyleBlue.Render(TruncID(r.ID)),
			HumanTimestamp(r.CreatedAt, now),
			ZoneBadge(r.FocusTimeZone, false),
			fmt.Sprintf("%d/%d", r.AssignedCount, r.TotalTasks),
			RenderFillRate(r.FillRate, 10),
			Dim(chain),
		})
	}
	return Header("History") + "\n" +
		RenderTable([]string{"ID", "CREATED", "FOCUS", "TASKS", "FILL", "CHAIN"}, rows)
}

// FormatRecord renders one stored run with its task rows. Chunk rows are
// indented under their split parent.
func FormatRecord(r *domain.PlannerRecord) string {
	var b strings.Builder
	b.WriteString(Header("Planner record " + TruncID(r.ID)))
	b.WriteString("\n")

	chain := "--"
	if r.SelectedChainID != nil {
		chain = *r.SelectedChainID
	}
	summary := []string{
		fmt.Sprintf("%s %s", Dim("id       "), r.ID),
		fmt.Sprintf("%s %s", Dim("created  "), r.CreatedAt.Local().Format("2006-01-02 15:04")),
		fmt.Sprintf("%s %s-%s  focus %s", Dim("window   "), r.StartArrange, r.DayEndTime, ZoneBadge(r.FocusTimeZone, true)),
		fmt.Sprintf("%s %d assigned, %d excluded of %d", Dim("tasks    "), r.AssignedCount, r.ExcludedCount, r.TotalTasks),
		fmt.Sprintf("%s %s", Dim("fill rate"), RenderFillRate(r.FillRate, 20)),
		fmt.Sprintf("%s %s  %s", Dim("chain    "), chain, Dim(fmt.Sprintf("weights v%d", r.WeightsVersion))),
	}
	b.WriteString(strings.Join(summary, "\n"))
	b.WriteString("\n\n")

	rows := make([][]string, 0, len(r.Tasks))
	for _, t := range r.Tasks {
		if t.ChunkSeq != nil {
			rows = append(rows, []string{
				Dim("  " + timeRange(t.StartAt, t.EndAt)),
				Dim("  ↳ " + t.Title),
				"", "", "",
			})
			continue
		}
		category := "--"
		if t.Category != nil {
			category = string(*t.Category)
		}
		importance := "--"
		if t.ImportanceScore != nil {
			importance = fmt.Sprintf("%.2f", *t.ImportanceScore)
		}
		rows = append(rows, []string{
			timeRange(t.StartAt, t.EndAt),
			t.Title,
			StatusPill(t.AssignmentStatus),
			category,
			importance,
		})
	}
	b.WriteString(RenderTable([]string{"TIME", "TASK", "STATUS", "CATEGORY", "IMPORTANCE"}, rows))

	if len(r.Warnings) > 0 {
		b.WriteString("\n" + StyleYellow.Render("Warnings") + "\n")
		for _, w := range r.Warnings {
			b.WriteString("  " + Dim("• ") + w + "\n")
		}
	}
	return b.String()
}
