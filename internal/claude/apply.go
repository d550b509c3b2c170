package claude

import (
	"errors"
	"fmt"
	"strings"

	"github.com/sulaimanalsheibani1-lgtm/gantt-chart-app/internal/graph"
	"github.com/sulaimanalsheibani1-lgtm/gantt-chart-app/internal/model"
	"github.com/sulaimanalsheibani1-lgtm/gantt-chart-app/internal/parse"
	"github.com/sulaimanalsheibani1-lgtm/gantt-chart-app/internal/wbs"
)

// Rejection is a proposed link that was not applied.
type Rejection struct {
	Link   LinkEdge
	Reason string
}

// Summaries builds the task list sent for inference.
func Summaries(p *model.Project) []TaskSummary {
	codes := wbs.Assign(p.Levels())
	flags := wbs.SummaryFlags(p.Levels())
	out := make([]TaskSummary, len(p.Tasks))
	for i, t := range p.Tasks {
		out[i] = TaskSummary{
			ID:       t.ID,
			WBS:      codes[i],
			Name:     t.Name,
			Duration: parse.FormatDuration(t.Duration),
			Summary:  flags[i],
			Notes:    t.Notes,
		}
	}
	return out
}

// ApplyLinks adds proposed links to p one at a time, skipping any that name
// unknown or summary tasks, duplicate an existing link, fail to parse, or
// would close a cycle. Tasks are modified in place.
func ApplyLinks(p *model.Project, links []LinkEdge) (applied []LinkEdge, rejected []Rejection) {
	flags := wbs.SummaryFlags(p.Levels())
	summary := make(map[int]bool)
	for i, t := range p.Tasks {
		if flags[i] {
			summary[t.ID] = true
		}
	}

	for _, e := range links {
		reject := func(reason string) { rejected = append(rejected, Rejection{Link: e, Reason: reason}) }

		succ, pred := p.Task(e.SuccessorID), p.Task(e.PredecessorID)
		switch {
		case succ == nil || pred == nil:
			reject("unknown task id")
			continue
		case e.SuccessorID == e.PredecessorID:
			reject("self link")
			continue
		case summary[e.SuccessorID] || summary[e.PredecessorID]:
			reject("summary task")
			continue
		}

		link, err := toLink(e)
		if err != nil {
			reject(err.Error())
			continue
		}
		if hasLink(succ, link.PredecessorID) {
			reject("already linked")
			continue
		}

		succ.Links = append(succ.Links, link)
		if _, err := graph.Build(p.Tasks); err != nil {
			succ.Links = succ.Links[:len(succ.Links)-1]
			if errors.Is(err, model.ErrCycle) {
				reject("would create a cycle")
			} else {
				reject(err.Error())
			}
			continue
		}
		applied = append(applied, e)
	}
	return applied, rejected
}

// toLink parses an edge through the predecessor mini-language.
func toLink(e LinkEdge) (model.Link, error) {
	text := fmt.Sprintf("%d%s", e.PredecessorID, strings.ToLower(strings.TrimSpace(e.Kind)))
	if lag := strings.TrimSpace(e.Lag); lag != "" {
		if !strings.HasPrefix(lag, "-") && !strings.HasPrefix(lag, "+") {
			lag = "+" + lag
		}
		text += lag
	}
	links, err := parse.Links(text)
	if err != nil {
		return model.Link{}, err
	}
	return links[0], nil
}

func hasLink(t *model.Task, pred int) bool {
	for _, l := range t.Links {
		if l.PredecessorID == pred {
			return true
		}
	}
	return false
}
