package state

import (
	"os"
	"sync"
	"testing"
	"time"
)

func TestNewAndLoad(t *testing.T) {
	chdir(t, t.TempDir())

	if Exists() {
		t.Fatal("state should not exist yet")
	}
	s, err := New("run-001")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if s.RunID != "run-001" {
		t.Errorf("expected run ID run-001, got %s", s.RunID)
	}
	if !Exists() {
		t.Fatal("expected state file after New")
	}

	loaded, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded.RunID != "run-001" {
		t.Errorf("loaded run ID mismatch: %s", loaded.RunID)
	}
	if loaded.Projects == nil {
		t.Error("loaded projects map should not be nil")
	}
}

func TestRecord(t *testing.T) {
	chdir(t, t.TempDir())

	s, err := New("run-002")
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	finish := time.Date(2024, 3, 11, 0, 0, 0, 0, time.UTC)
	pr := &ProjectRun{
		Status:       StatusScheduled,
		Name:         "launch",
		Finish:       &finish,
		TotalTasks:   4,
		CriticalPath: []int{1, 2},
	}
	if err := s.Record("launch.yaml", pr); err != nil {
		t.Fatalf("Record: %v", err)
	}

	got := s.Get("launch.yaml")
	if got == nil {
		t.Fatal("expected project run, got nil")
	}
	if got.Status != StatusScheduled {
		t.Errorf("expected scheduled, got %s", got.Status)
	}

	loaded, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	lp := loaded.Get("launch.yaml")
	if lp == nil || !lp.Finish.Equal(finish) || len(lp.CriticalPath) != 2 {
		t.Errorf("loaded project run mismatch: %+v", lp)
	}
}

func TestFailedAndFiles(t *testing.T) {
	chdir(t, t.TempDir())

	s, err := New("run-003")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	s.Record("b.yaml", &ProjectRun{Status: StatusFailed, Error: "dependency cycle: 1 -> 2 -> 1"})
	s.Record("a.yaml", &ProjectRun{Status: StatusScheduled})
	s.Record("c.yaml", &ProjectRun{Status: StatusFailed})

	files := s.Files()
	if len(files) != 3 || files[0] != "a.yaml" || files[2] != "c.yaml" {
		t.Errorf("files = %v", files)
	}
	failed := s.Failed()
	if len(failed) != 2 || failed[0] != "b.yaml" || failed[1] != "c.yaml" {
		t.Errorf("failed = %v", failed)
	}
}

func TestRecord_Concurrent(t *testing.T) {
	chdir(t, t.TempDir())

	s, err := New("run-004")
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	var wg sync.WaitGroup
	for _, f := range []string{"a.yaml", "b.yaml", "c.yaml", "d.yaml"} {
		wg.Add(1)
		go func(f string) {
			defer wg.Done()
			if err := s.Record(f, &ProjectRun{Status: StatusScheduled}); err != nil {
				t.Errorf("Record(%s): %v", f, err)
			}
		}(f)
	}
	wg.Wait()

	loaded, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(loaded.Projects) != 4 {
		t.Errorf("expected 4 projects, got %d", len(loaded.Projects))
	}
}

func TestClean(t *testing.T) {
	chdir(t, t.TempDir())

	if _, err := New("run-005"); err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := Clean(); err != nil {
		t.Fatalf("Clean: %v", err)
	}
	if Exists() {
		t.Error("state should be gone after Clean")
	}
	if _, err := Load(); err == nil {
		t.Error("expected error loading cleaned state")
	}
}

// chdir changes the working directory for the duration of the test and
// restores it on cleanup (equivalent of testing.T.Chdir, added in Go 1.24).
func chdir(t *testing.T, dir string) {
	t.Helper()
	old, err := os.Getwd()
	if err != nil {
		t.Fatalf("Getwd: %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("Chdir: %v", err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(old); err != nil {
			t.Fatalf("restore Chdir: %v", err)
		}
	})
}
