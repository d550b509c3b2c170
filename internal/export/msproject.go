package export

import (
	"encoding/xml"
	"fmt"
	"io"
	"math"
	"strconv"
	"time"

	"github.com/sulaimanalsheibani1-lgtm/gantt-chart-app/internal/calendar"
	"github.com/sulaimanalsheibani1-lgtm/gantt-chart-app/internal/model"
)

const msProjectNamespace = "http://schemas.microsoft.com/project"

// PredecessorLink type codes.
var linkTypeCodes = map[model.LinkKind]int{
	model.FS: 1,
	model.SS: 2,
	model.FF: 3,
	model.SF: 4,
}

type msProject struct {
	XMLName   xml.Name `xml:"Project"`
	Namespace string   `xml:"xmlns,attr"`
	Name      string   `xml:"Name"`
	StartDate string   `xml:"StartDate"`
	Tasks     []msTask `xml:"Tasks>Task"`
}

type msTask struct {
	UID             int           `xml:"UID"`
	ID              int           `xml:"ID"`
	Name            string        `xml:"Name"`
	WBS             string        `xml:"WBS,omitempty"`
	OutlineLevel    int           `xml:"OutlineLevel"`
	Summary         int           `xml:"Summary"`
	Milestone       int           `xml:"Milestone"`
	Critical        int           `xml:"Critical"`
	Manual          int           `xml:"Manual"`
	Start           string        `xml:"Start,omitempty"`
	Finish          string        `xml:"Finish,omitempty"`
	Duration        string        `xml:"Duration"`
	PercentComplete int           `xml:"PercentComplete"`
	Notes           string        `xml:"Notes,omitempty"`
	Predecessors    []msPredLink  `xml:"PredecessorLink"`
	Constraint      *msConstraint `xml:",omitempty"`
}

type msPredLink struct {
	PredecessorUID int     `xml:"PredecessorUID"`
	Type           int     `xml:"Type"`
	LinkLag        float64 `xml:"LinkLag"` // minutes
}

type msConstraint struct {
	XMLName xml.Name `xml:"ConstraintInfo"`
	Type    int      `xml:"ConstraintType"`
	Date    string   `xml:"ConstraintDate,omitempty"`
}

var constraintCodes = map[model.ConstraintKind]int{
	model.ASAP: 0,
	model.ALAP: 1,
	model.MSO:  2,
	model.MFO:  3,
	model.SNET: 4,
	model.FNLT: 7,
}

// MSProjectXML writes the project as an MS Project style XML document.
// Durations and lags are converted to minutes using the project calendar.
func MSProjectXML(w io.Writer, p *model.Project) error {
	cal, err := calendar.New(p.Calendar)
	if err != nil {
		return err
	}

	doc := msProject{
		Namespace: msProjectNamespace,
		Name:      p.Name,
		StartDate: xmlTime(p.Start),
	}
	for i, t := range p.Tasks {
		mt := msTask{
			UID:             t.ID,
			ID:              i + 1,
			Name:            t.Name,
			WBS:             t.WBS,
			OutlineLevel:    t.Level + 1,
			Summary:         flag(t.IsSummary),
			Milestone:       flag(t.IsMilestone() && !t.IsSummary),
			Critical:        flag(t.IsCritical),
			Start:           xmlTime(t.EarlyStart),
			Finish:          xmlTime(t.EarlyFinish),
			Duration:        "PT" + strconv.FormatFloat(minutes(cal, t.Duration), 'f', -1, 64) + "M",
			PercentComplete: t.PercentComplete,
			Notes:           t.Notes,
		}
		if _, ok := t.Mode.(model.Manual); ok {
			mt.Manual = 1
		}
		for _, l := range t.Links {
			mt.Predecessors = append(mt.Predecessors, msPredLink{
				PredecessorUID: l.PredecessorID,
				Type:           linkTypeCodes[l.KindOrDefault()],
				LinkLag:        minutes(cal, l.Lag),
			})
		}
		if k := t.Constraint.KindOrDefault(); k != model.ASAP {
			mt.Constraint = &msConstraint{Type: constraintCodes[k], Date: xmlTime(t.Constraint.Anchor)}
		}
		doc.Tasks = append(doc.Tasks, mt)
	}

	if _, err := io.WriteString(w, xml.Header); err != nil {
		return err
	}
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encode xml: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("encode xml: %w", err)
	}
	_, err = io.WriteString(w, "\n")
	return err
}

func minutes(cal *calendar.Calendar, d model.Duration) float64 {
	return math.Round(cal.ToDays(d)*cal.HoursPerDay()*60*1e6) / 1e6
}

func xmlTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("2006-01-02T15:04:05")
}

func flag(b bool) int {
	if b {
		return 1
	}
	return 0
}
