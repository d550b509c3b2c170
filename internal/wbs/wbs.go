// Package wbs derives hierarchy facts from the level column of a task list:
// dotted WBS codes, summary flags and the parent/child tree.
package wbs

import (
	"sort"
	"strconv"
	"strings"

	"github.com/sulaimanalsheibani1-lgtm/gantt-chart-app/internal/model"
)

// Assign returns the WBS code of every row. counters[level] is bumped for each
// row and all deeper counters reset, so "1.2" follows "1.1.3".
func Assign(levels []int) []string {
	codes := make([]string, len(levels))
	var counters []int
	for i, lvl := range levels {
		for len(counters) <= lvl {
			counters = append(counters, 0)
		}
		counters[lvl]++
		for j := lvl + 1; j < len(counters); j++ {
			counters[j] = 0
		}
		parts := make([]string, lvl+1)
		for j := 0; j <= lvl; j++ {
			parts[j] = strconv.Itoa(counters[j])
		}
		codes[i] = strings.Join(parts, ".")
	}
	return codes
}

// SummaryFlags marks a row as a summary when the row right after it is one level deeper.
func SummaryFlags(levels []int) []bool {
	flags := make([]bool, len(levels))
	for i := 0; i+1 < len(levels); i++ {
		flags[i] = levels[i+1] == levels[i]+1
	}
	return flags
}

// Tree is the hierarchy as row indices. Parent is -1 for top-level rows.
type Tree struct {
	Parent   []int
	Children [][]int
	Level    []int
}

// BuildTree links each row to the nearest preceding row one level up.
// Levels must already satisfy the no-skip rule.
func BuildTree(levels []int) *Tree {
	t := &Tree{
		Parent:   make([]int, len(levels)),
		Children: make([][]int, len(levels)),
		Level:    append([]int(nil), levels...),
	}
	var open []int // open[l] is the latest row seen at level l
	for i, lvl := range levels {
		open = append(open[:min(lvl, len(open))], i)
		if lvl == 0 || len(open) < 2 {
			t.Parent[i] = -1
			continue
		}
		p := open[len(open)-2]
		t.Parent[i] = p
		t.Children[p] = append(t.Children[p], i)
	}
	return t
}

// IsSummary reports whether row i has children.
func (t *Tree) IsSummary(i int) bool { return len(t.Children[i]) > 0 }

// SummariesDeepestFirst returns the summary rows ordered so every summary comes
// after all summaries nested below it.
func (t *Tree) SummariesDeepestFirst() []int {
	var rows []int
	for i := range t.Children {
		if t.IsSummary(i) {
			rows = append(rows, i)
		}
	}
	sort.SliceStable(rows, func(a, b int) bool { return t.Level[rows[a]] > t.Level[rows[b]] })
	return rows
}

// Leaves returns every descendant of row i that is not itself a summary.
func (t *Tree) Leaves(i int) []int {
	var out []int
	for _, c := range t.Children[i] {
		if t.IsSummary(c) {
			out = append(out, t.Leaves(c)...)
		} else {
			out = append(out, c)
		}
	}
	return out
}

// Renumber writes WBS codes and summary flags onto the tasks in place.
func Renumber(tasks []*model.Task) {
	levels := make([]int, len(tasks))
	for i, t := range tasks {
		levels[i] = t.Level
	}
	codes := Assign(levels)
	flags := SummaryFlags(levels)
	for i, t := range tasks {
		t.WBS = codes[i]
		t.IsSummary = flags[i]
	}
}
