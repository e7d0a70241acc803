package cli

import (
	"fmt"
	"strings"

	"facility-recon/internal/reconcile/model"
	"facility-recon/internal/storage"
)

// RenderSummary: итоговая таблица сверки в рамке.
func RenderSummary(s model.Summary, scorer string) string {
	var b strings.Builder
	for _, row := range s.Table() {
		count := CountStyle.Render(fmt.Sprint(row.Count))
		switch row.Label {
		case string(model.TierExact), string(model.TierHigh):
			count = SuccessStyle.Inherit(CountStyle).Render(fmt.Sprint(row.Count))
		case string(model.TierLow):
			if row.Count > 0 {
				count = WarningStyle.Inherit(CountStyle).Render(fmt.Sprint(row.Count))
			}
		}
		b.WriteString(LabelStyle.Render(row.Label) + count + "\n")
	}
	b.WriteString(SubtleStyle.Render(fmt.Sprintf("scorer %s, threshold %.2f", scorer, s.Threshold)))
	return RenderBox("Reconciliation summary", b.String())
}

// RenderRuns: список последних запусков из истории.
func RenderRuns(runs []storage.Run) string {
	if len(runs) == 0 {
		return SubtleStyle.Render("no runs recorded")
	}
	var b strings.Builder
	for i, r := range runs {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "%s  %s\n", TitleStyle.Render(r.ID[:min(8, len(r.ID))]),
			SubtleStyle.Render(r.CreatedAt.Local().Format("2006-01-02 15:04:05")))
		fmt.Fprintf(&b, "  %s -> %s (%s, %.2f)\n", r.MasterSource, r.ReferenceSource, r.Scorer, r.Threshold)
		fmt.Fprintf(&b, "  exact %d  high %d  low %d  of %d",
			r.Summary.Exact, r.Summary.High, r.Summary.Low, r.Summary.TotalMaster)
	}
	return b.String()
}
