// Package viewer serves the scheduling HTTP API.
package viewer

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/singleflight"

	"github.com/sulaimanalsheibani1-lgtm/gantt-chart-app/internal/cpm"
	"github.com/sulaimanalsheibani1-lgtm/gantt-chart-app/internal/metrics"
	"github.com/sulaimanalsheibani1-lgtm/gantt-chart-app/internal/model"
	"github.com/sulaimanalsheibani1-lgtm/gantt-chart-app/internal/planner"
	"github.com/sulaimanalsheibani1-lgtm/gantt-chart-app/internal/projectfile"
	"github.com/sulaimanalsheibani1-lgtm/gantt-chart-app/internal/store"
)

const maxBodyBytes = 8 << 20

// Server is the scheduling API server.
type Server struct {
	db             *store.DB
	calendar       model.CalendarSettings
	metricsEnabled bool

	runs  singleflight.Group
	mu    sync.RWMutex
	plans map[string]*planner.Plan // last plan per stored project
}

// NewServer creates a server backed by db. cal is the calendar for
// projects that do not carry one.
func NewServer(db *store.DB, cal model.CalendarSettings) *Server {
	return &Server{db: db, calendar: cal, plans: make(map[string]*planner.Plan)}
}

// EnableMetrics enables the /metrics Prometheus endpoint.
func (s *Server) EnableMetrics() { s.metricsEnabled = true }

// Handler returns the chi router with all routes mounted.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(time.Minute))
	r.Use(countRequests)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		status := "ok"
		if err := s.db.Ping(); err != nil {
			status = "degraded"
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": status})
	})

	r.Post("/schedule", s.handleSchedule)

	r.Route("/projects", func(r chi.Router) {
		r.Get("/", s.handleListProjects)
		r.Route("/{name}", func(r chi.Router) {
			r.Get("/", s.handleGetProject)
			r.Put("/", s.handlePutProject)
			r.Delete("/", s.handleDeleteProject)
			r.Post("/schedule", s.handleScheduleStored)
			r.Get("/graph", s.handleGraph)
			r.Get("/runs", s.handleRuns)
		})
	})

	if s.metricsEnabled {
		r.Handle("/metrics", promhttp.Handler())
	}

	return r
}

// handleSchedule schedules a posted project document without storing it.
func (s *Server) handleSchedule(w http.ResponseWriter, r *http.Request) {
	p, ok := s.decodeProject(w, r)
	if !ok {
		return
	}
	_, plan, err := schedule(p)
	if err != nil {
		writeScheduleError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, plan)
}

func (s *Server) handleListProjects(w http.ResponseWriter, r *http.Request) {
	list, err := s.db.ListProjects()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if list == nil {
		list = []store.ProjectInfo{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"projects": list})
}

func (s *Server) handleGetProject(w http.ResponseWriter, r *http.Request) {
	p, ok := s.loadProject(w, chi.URLParam(r, "name"))
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, projectfile.FromProject(p))
}

func (s *Server) handlePutProject(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	p, ok := s.decodeProject(w, r)
	if !ok {
		return
	}
	p.Name = name
	if err := p.ValidateStructure(); err != nil {
		writeScheduleError(w, err)
		return
	}
	if err := s.db.PutProject(p); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.mu.Lock()
	delete(s.plans, name)
	s.mu.Unlock()

	writeJSON(w, http.StatusCreated, map[string]string{"name": name})
}

func (s *Server) handleDeleteProject(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	err := s.db.DeleteProject(name)
	if errors.Is(err, store.ErrProjectNotFound) {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.mu.Lock()
	delete(s.plans, name)
	s.mu.Unlock()

	w.WriteHeader(http.StatusNoContent)
}

// handleScheduleStored reschedules a stored project and writes the derived
// fields back. Concurrent requests for the same project share one run.
func (s *Server) handleScheduleStored(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	v, err, shared := s.runs.Do(name, func() (any, error) {
		return s.scheduleStored(name)
	})
	if shared {
		log.Printf("[viewer] coalesced schedule request for %s", name)
	}
	if errors.Is(err, store.ErrProjectNotFound) {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	if err != nil {
		writeScheduleError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

func (s *Server) scheduleStored(name string) (*planner.Plan, error) {
	p, err := s.db.GetProject(name, s.calendar)
	if err != nil {
		return nil, err
	}

	started := time.Now()
	res, plan, runErr := schedule(p)
	if err := s.db.RecordRun(store.NewRun(name, started, res, runErr)); err != nil {
		log.Printf("[viewer] warning: record run for %s: %v", name, err)
	}
	if runErr != nil {
		return nil, runErr
	}

	if err := s.db.PutProject(p); err != nil {
		return nil, fmt.Errorf("save scheduled project: %w", err)
	}

	s.mu.Lock()
	s.plans[name] = plan
	s.mu.Unlock()
	return plan, nil
}

// handleGraph returns the network of the last schedule, scheduling first
// when the project has not been scheduled since it was stored.
func (s *Server) handleGraph(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	s.mu.RLock()
	plan := s.plans[name]
	s.mu.RUnlock()

	if plan == nil {
		v, err, _ := s.runs.Do(name, func() (any, error) {
			return s.scheduleStored(name)
		})
		if errors.Is(err, store.ErrProjectNotFound) {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		if err != nil {
			writeScheduleError(w, err)
			return
		}
		plan = v.(*planner.Plan)
	}

	writeJSON(w, http.StatusOK, toGraph(plan))
}

func (s *Server) handleRuns(w http.ResponseWriter, r *http.Request) {
	runs, err := s.db.ListRuns(chi.URLParam(r, "name"), 50)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if runs == nil {
		runs = []store.Run{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"runs": runs})
}

func (s *Server) decodeProject(w http.ResponseWriter, r *http.Request) (*model.Project, bool) {
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		writeError(w, http.StatusRequestEntityTooLarge, err.Error())
		return nil, false
	}
	doc, err := projectfile.Decode(data, projectfile.JSON)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return nil, false
	}
	p, err := doc.ToProject(s.calendar)
	if err != nil {
		writeScheduleError(w, err)
		return nil, false
	}
	return p, true
}

func (s *Server) loadProject(w http.ResponseWriter, name string) (*model.Project, bool) {
	p, err := s.db.GetProject(name, s.calendar)
	if errors.Is(err, store.ErrProjectNotFound) {
		writeError(w, http.StatusNotFound, err.Error())
		return nil, false
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return nil, false
	}
	return p, true
}

// schedule analyses p in place and builds its plan.
func schedule(p *model.Project) (*cpm.Result, *planner.Plan, error) {
	started := time.Now()
	res, err := cpm.Analyze(p)
	metrics.ObserveRun(res, err, time.Since(started))
	if err != nil {
		return nil, nil, err
	}
	plan, err := planner.Generate(p, res, planner.PlanConfig{SkipBriefs: true})
	if err != nil {
		return nil, nil, err
	}
	return res, plan, nil
}

// Start serves the API on addr until ctx is cancelled.
func (s *Server) Start(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("[viewer] listening on http://%s", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("listen on %s: %w", addr, err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// PushProject stores p on a running server and asks it to schedule.
func PushProject(baseURL string, p *model.Project) (*planner.Plan, error) {
	data, err := projectfile.Encode(projectfile.FromProject(p), projectfile.JSON)
	if err != nil {
		return nil, err
	}

	path := baseURL + "/projects/" + url.PathEscape(p.Name)
	req, err := http.NewRequest(http.MethodPut, path, bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("PUT /projects/%s: %w", p.Name, err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		return nil, fmt.Errorf("PUT /projects/%s returned %d", p.Name, resp.StatusCode)
	}

	resp, err = http.Post(path+"/schedule", "application/json", nil)
	if err != nil {
		return nil, fmt.Errorf("POST /projects/%s/schedule: %w", p.Name, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("POST /projects/%s/schedule returned %d", p.Name, resp.StatusCode)
	}

	var plan planner.Plan
	if err := json.NewDecoder(resp.Body).Decode(&plan); err != nil {
		return nil, fmt.Errorf("decode plan: %w", err)
	}
	return &plan, nil
}

// IsPortOpen checks if something is listening on the given address.
func IsPortOpen(addr string) bool {
	conn, err := net.DialTimeout("tcp", addr, 500*time.Millisecond)
	if err != nil {
		return false
	}
	conn.Close()
	return true
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, msg string) {
	writeTypedError(w, status, msg, "error")
}

func writeTypedError(w http.ResponseWriter, status int, msg, typ string) {
	writeJSON(w, status, map[string]any{
		"error": map[string]any{
			"message": msg,
			"type":    typ,
		},
	})
}

// writeScheduleError maps engine errors onto status codes. Cycles are a
// conflict in the submitted data; bad input is unprocessable.
func writeScheduleError(w http.ResponseWriter, err error) {
	outcome := metrics.Outcome(err)
	var cycle *model.CycleError
	switch {
	case errors.As(err, &cycle):
		writeJSON(w, http.StatusConflict, map[string]any{
			"error": map[string]any{
				"message": err.Error(),
				"type":    outcome,
				"cycle":   cycle.Cycle,
			},
		})
	case errors.Is(err, model.ErrParse), errors.Is(err, model.ErrValidation), errors.Is(err, model.ErrConfiguration):
		writeTypedError(w, http.StatusUnprocessableEntity, err.Error(), outcome)
	default:
		writeTypedError(w, http.StatusInternalServerError, err.Error(), outcome)
	}
}

// countRequests records each response by route pattern and status.
func countRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := r.URL.Path
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}
		metrics.HTTPRequests.WithLabelValues(route, fmt.Sprint(ww.Status())).Inc()
	})
}
