package viewer

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sulaimanalsheibani1-lgtm/gantt-chart-app/internal/model"
	"github.com/sulaimanalsheibani1-lgtm/gantt-chart-app/internal/planner"
	"github.com/sulaimanalsheibani1-lgtm/gantt-chart-app/internal/store"
)

const sampleDoc = `{
	"name": "ignored",
	"start": "2024-03-04",
	"tasks": [
		{"id": 1, "name": "Design", "duration": "3d"},
		{"id": 2, "name": "Build", "duration": "2d", "predecessors": "1fs+1d"},
		{"id": 3, "name": "Docs", "duration": "1d", "predecessors": "1ss+1d"}
	]
}`

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	db, err := store.Open(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	srv := NewServer(db, model.DefaultCalendar())
	srv.EnableMetrics()
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts
}

func do(t *testing.T, method, url, body string) (*http.Response, []byte) {
	t.Helper()
	req, err := http.NewRequest(method, url, strings.NewReader(body))
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, data
}

type errorBody struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
		Cycle   []int  `json:"cycle"`
	} `json:"error"`
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t)
	resp, body := do(t, http.MethodGet, ts.URL+"/health", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"status":"ok"}`, string(body))
}

func TestSchedule_Posted(t *testing.T) {
	ts := newTestServer(t)

	resp, body := do(t, http.MethodPost, ts.URL+"/schedule", sampleDoc)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))

	var plan planner.Plan
	require.NoError(t, json.Unmarshal(body, &plan))
	assert.Equal(t, []int{1, 2}, plan.CriticalPath)
	assert.Equal(t, 6.0, plan.TotalDuration)
	assert.Equal(t, 4.0, plan.Tasks[3].TotalFloat)
}

func TestSchedule_Errors(t *testing.T) {
	ts := newTestServer(t)

	tests := []struct {
		name   string
		body   string
		status int
		typ    string
	}{
		{"bad json", `{"tasks": [`, http.StatusBadRequest, "error"},
		{"parse", `{"start": "2024-03-04", "tasks": [{"id": 1, "name": "a", "duration": "abc"}]}`, http.StatusUnprocessableEntity, "parse_error"},
		{"bad link text", `{"start": "2024-03-04", "tasks": [{"id": 1, "name": "a", "predecessors": "x"}]}`, http.StatusUnprocessableEntity, "parse_error"},
		{"unknown predecessor", `{"start": "2024-03-04", "tasks": [{"id": 1, "name": "a", "predecessors": "7"}]}`, http.StatusUnprocessableEntity, "validation_error"},
		{"calendar", `{"start": "2024-03-04", "calendar": {"working_weekdays": [], "hours_per_day": 8}, "tasks": []}`, http.StatusUnprocessableEntity, "configuration_error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, body := do(t, http.MethodPost, ts.URL+"/schedule", tt.body)
			assert.Equal(t, tt.status, resp.StatusCode, string(body))
			var eb errorBody
			require.NoError(t, json.Unmarshal(body, &eb))
			assert.Equal(t, tt.typ, eb.Error.Type)
			assert.NotEmpty(t, eb.Error.Message)
		})
	}
}

func TestSchedule_Cycle(t *testing.T) {
	ts := newTestServer(t)

	doc := `{"start": "2024-03-04", "tasks": [
		{"id": 1, "name": "a", "duration": "1d", "predecessors": "2"},
		{"id": 2, "name": "b", "duration": "1d", "predecessors": "1"}
	]}`
	resp, body := do(t, http.MethodPost, ts.URL+"/schedule", doc)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	var eb errorBody
	require.NoError(t, json.Unmarshal(body, &eb))
	assert.Equal(t, "cycle", eb.Error.Type)
	assert.Contains(t, eb.Error.Cycle, 1)
	assert.Contains(t, eb.Error.Cycle, 2)
}

func TestStoredProjectLifecycle(t *testing.T) {
	ts := newTestServer(t)
	base := ts.URL + "/projects/launch"

	resp, _ := do(t, http.MethodGet, base, "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, body := do(t, http.MethodPut, base, sampleDoc)
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))

	resp, body = do(t, http.MethodGet, ts.URL+"/projects", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), `"launch"`)

	resp, body = do(t, http.MethodPost, base+"/schedule", "")
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))

	// Derived fields were written back to the stored document.
	resp, body = do(t, http.MethodGet, base, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var doc struct {
		Name  string `json:"name"`
		Tasks []struct {
			ID         int    `json:"id"`
			EarlyStart string `json:"early_start"`
			Critical   bool   `json:"critical"`
		} `json:"tasks"`
	}
	require.NoError(t, json.Unmarshal(body, &doc))
	assert.Equal(t, "launch", doc.Name)
	require.Len(t, doc.Tasks, 3)
	assert.Equal(t, "2024-03-08", doc.Tasks[1].EarlyStart)
	assert.True(t, doc.Tasks[1].Critical)

	resp, body = do(t, http.MethodGet, base+"/graph", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var g Graph
	require.NoError(t, json.Unmarshal(body, &g))
	assert.Len(t, g.Nodes, 3)
	assert.Equal(t, []GraphEdge{
		{From: 1, To: 2, IsCritical: true},
		{From: 1, To: 3, IsCritical: false},
	}, g.Edges)

	resp, body = do(t, http.MethodGet, base+"/runs", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var runs struct {
		Runs []store.Run `json:"runs"`
	}
	require.NoError(t, json.Unmarshal(body, &runs))
	assert.Len(t, runs.Runs, 1)

	resp, _ = do(t, http.MethodDelete, base, "")
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	resp, _ = do(t, http.MethodDelete, base, "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestGraph_SchedulesOnDemand(t *testing.T) {
	ts := newTestServer(t)
	base := ts.URL + "/projects/demand"

	resp, _ := do(t, http.MethodPut, base, sampleDoc)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp, body := do(t, http.MethodGet, base+"/graph", "")
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	assert.Contains(t, string(body), `"critical_path":[1,2]`)

	resp, _ = do(t, http.MethodGet, ts.URL+"/projects/missing/graph", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestScheduleStored_Concurrent(t *testing.T) {
	ts := newTestServer(t)
	base := ts.URL + "/projects/busy"

	resp, _ := do(t, http.MethodPut, base, sampleDoc)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var wg sync.WaitGroup
	codes := make([]int, 8)
	for i := range codes {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			resp, err := http.Post(base+"/schedule", "application/json", bytes.NewReader(nil))
			if err != nil {
				return
			}
			resp.Body.Close()
			codes[i] = resp.StatusCode
		}(i)
	}
	wg.Wait()

	for i, c := range codes {
		assert.Equal(t, http.StatusOK, c, "request %d", i)
	}
}

func TestPutProject_RejectsBadStructure(t *testing.T) {
	ts := newTestServer(t)
	doc := `{"start": "2024-03-04", "tasks": [{"id": 1, "name": "a", "level": 2}]}`
	resp, _ := do(t, http.MethodPut, ts.URL+"/projects/bad", doc)
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
}

func TestPushProject(t *testing.T) {
	ts := newTestServer(t)
	p := &model.Project{
		Name:     "pushed",
		Start:    mustDate(t, "2024-03-04"),
		Calendar: model.DefaultCalendar(),
		Tasks: []*model.Task{
			{ID: 1, Name: "only", Duration: model.Days(2)},
		},
	}

	plan, err := PushProject(ts.URL, p)
	require.NoError(t, err)
	assert.Equal(t, "pushed", plan.Project)
	assert.Equal(t, []int{1}, plan.CriticalPath)
}

func TestMetricsEndpoint(t *testing.T) {
	ts := newTestServer(t)
	do(t, http.MethodPost, ts.URL+"/schedule", sampleDoc)

	resp, body := do(t, http.MethodGet, ts.URL+"/metrics", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "ganttloom_schedule_runs_total")
	assert.Contains(t, string(body), "ganttloom_http_requests_total")
}

func mustDate(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := time.Parse("2006-01-02", s)
	require.NoError(t, err)
	return d
}
