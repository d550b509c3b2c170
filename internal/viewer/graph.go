package viewer

import (
	"sort"
	"time"

	"github.com/sulaimanalsheibani1-lgtm/gantt-chart-app/internal/planner"
)

// GraphNode is one task in the rendered network.
type GraphNode struct {
	ID         int     `json:"id"`
	WBS        string  `json:"wbs"`
	Name       string  `json:"name"`
	Start      string  `json:"start"`
	Finish     string  `json:"finish"`
	TotalFloat float64 `json:"total_float"`
	IsCritical bool    `json:"is_critical"`
	IsSummary  bool    `json:"is_summary"`
	WaveIndex  int     `json:"wave_index"`
}

// GraphEdge is a link from predecessor to successor.
type GraphEdge struct {
	From       int  `json:"from"`
	To         int  `json:"to"`
	IsCritical bool `json:"is_critical"`
}

type GraphMetadata struct {
	ID            string `json:"id"`
	Project       string `json:"project"`
	CreatedAt     string `json:"created_at"`
	ProjectFinish string `json:"project_finish"`
	TotalTasks    int    `json:"total_tasks"`
	TotalWaves    int    `json:"total_waves"`
}

type Graph struct {
	Nodes        []GraphNode   `json:"nodes"`
	Edges        []GraphEdge   `json:"edges"`
	CriticalPath []int         `json:"critical_path"`
	Metadata     GraphMetadata `json:"metadata"`
}

// toGraph converts a Plan into the normalised Graph a network view renders.
// Nodes follow task list order; edges are sorted for stable output.
func toGraph(plan *planner.Plan) *Graph {
	nodes := make([]GraphNode, 0, len(plan.Order))
	for _, id := range plan.Order {
		t := plan.Tasks[id]
		nodes = append(nodes, GraphNode{
			ID:         t.TaskID,
			WBS:        t.WBS,
			Name:       t.Name,
			Start:      t.EarlyStart.Format(time.RFC3339),
			Finish:     t.EarlyFinish.Format(time.RFC3339),
			TotalFloat: t.TotalFloat,
			IsCritical: t.IsCritical,
			IsSummary:  t.IsSummary,
			WaveIndex:  t.WaveIndex,
		})
	}

	edges := []GraphEdge{}
	for taskID, preds := range plan.Deps.Predecessors {
		for _, pred := range preds {
			from, to := plan.Tasks[pred], plan.Tasks[taskID]
			edges = append(edges, GraphEdge{
				From:       pred,
				To:         taskID,
				IsCritical: from != nil && to != nil && from.IsCritical && to.IsCritical,
			})
		}
	}
	sort.Slice(edges, func(i, j int) bool {
		if edges[i].To != edges[j].To {
			return edges[i].To < edges[j].To
		}
		return edges[i].From < edges[j].From
	})

	return &Graph{
		Nodes:        nodes,
		Edges:        edges,
		CriticalPath: plan.CriticalPath,
		Metadata: GraphMetadata{
			ID:            plan.ID,
			Project:       plan.Project,
			CreatedAt:     plan.CreatedAt.Format(time.RFC3339),
			ProjectFinish: plan.ProjectFinish.Format(time.RFC3339),
			TotalTasks:    plan.TotalTasks,
			TotalWaves:    plan.TotalWaves,
		},
	}
}
