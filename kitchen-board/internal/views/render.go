package views

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"kebab-orders/pkg/domain"
)

// Render writes the dashboard as three plain-text tables.
func Render(w io.Writer, view DashboardView, notice *Notice) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)

	if notice != nil {
		fmt.Fprintf(tw, "! %s\n\n", notice.Message)
	}

	sections := []struct {
		title string
		cards []Card
	}{
		{"KITCHEN", view.KitchenActive},
		{"READY FOR DELIVERY", view.ReadyForDelivery},
		{"ARCHIVED", view.Archived},
	}
	for _, section := range sections {
		fmt.Fprintf(tw, "== %s (%d)\n", section.title, len(section.cards))
		fmt.Fprintln(tw, "ID\tSTATUS\tMIN\tTOTAL\tITEMS\tNEXT")
		for _, card := range section.cards {
			fmt.Fprintf(tw, "%s\t%s\t%d\t%s\t%s\t%s\n",
				card.ID,
				card.Status,
				card.ElapsedMinutes,
				card.Total,
				itemsSummary(card.Items),
				statusList(card.AllowedNext))
		}
		fmt.Fprintln(tw)
	}
	return tw.Flush()
}

func itemsSummary(items []domain.Item) string {
	parts := make([]string, 0, len(items))
	for _, item := range items {
		parts = append(parts, fmt.Sprintf("%dx %s", item.Quantity, item.Name))
	}
	return strings.Join(parts, ", ")
}

func statusList(statuses []domain.Status) string {
	if len(statuses) == 0 {
		return "-"
	}
	parts := make([]string, 0, len(statuses))
	for _, status := range statuses {
		parts = append(parts, string(status))
	}
	return strings.Join(parts, "|")
}
