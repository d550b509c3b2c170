// Package export writes scheduled projects in formats other tools read.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/sulaimanalsheibani1-lgtm/gantt-chart-app/internal/model"
	"github.com/sulaimanalsheibani1-lgtm/gantt-chart-app/internal/parse"
)

const dateLayout = "2006-01-02"

var csvHeader = []string{"id", "wbs", "name", "duration", "start", "finish", "predecessors", "progress"}

// CSV writes one row per task in list order. Dates are the early dates, so
// the project must have been scheduled.
func CSV(w io.Writer, p *model.Project) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, t := range p.Tasks {
		preds := parse.FormatLinks(t.Links)
		if t.LinkErr != nil {
			preds = t.LinkErr.Input
		}
		row := []string{
			strconv.Itoa(t.ID),
			t.WBS,
			t.Name,
			parse.FormatDuration(t.Duration),
			formatDate(t.EarlyStart),
			formatDate(t.EarlyFinish),
			preds,
			strconv.Itoa(t.PercentComplete),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write csv row for task %d: %w", t.ID, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(dateLayout)
}
