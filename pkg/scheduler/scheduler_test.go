package scheduler

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/oarkflow/spp/interpreter"
	"github.com/oarkflow/spp/pkg/config"
)

func writeScript(t *testing.T, dir, name, src string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(src), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestRunOnce(t *testing.T) {
	dir := t.TempDir()
	writeScript(t, dir, "greet.spp", `granteth yonder who equivalethTo proclaimedArguments addethPolitelyWith 0 withUtmostRespect
printethThouWordsForAllToSee("hail " addethPolitelyWith who) withUtmostRespect
40 addethPolitelyWith 2`)

	s, err := New([]config.ScheduleSpec{{ID: "greet", Cron: "@every 1h", Script: "greet.spp", Args: []string{"Romeo"}}}, Options{BaseDir: dir})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	run, err := s.RunOnce(context.Background(), "greet")
	if err != nil {
		t.Fatalf("RunOnce failed: %v", err)
	}
	if run.Result != "42" || run.Output != "hail Romeo" {
		t.Fatalf("unexpected run %#v", run)
	}
	last, ok := s.LastRun("greet")
	if !ok || last.Result != "42" {
		t.Fatalf("expected last run to be stored, got %#v", last)
	}
}

func TestRunOnceErrors(t *testing.T) {
	dir := t.TempDir()
	writeScript(t, dir, "bad.spp", `1 dividethPolitelyWith 0`)
	s, err := New([]config.ScheduleSpec{{ID: "bad", Cron: "* * * * *", Script: "bad.spp"}}, Options{BaseDir: dir})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if _, err := s.RunOnce(context.Background(), "bad"); err == nil {
		t.Fatalf("expected runtime error")
	} else if code, _ := interpreter.ErrorCodeOf(err); code != interpreter.ErrCodeRuntime {
		t.Fatalf("expected %s, got %v", interpreter.ErrCodeRuntime, err)
	}
	if _, err := s.RunOnce(context.Background(), "missing"); err == nil {
		t.Fatalf("expected unknown schedule error")
	}
}

func TestNewRejectsInvalidSpecs(t *testing.T) {
	if _, err := New([]config.ScheduleSpec{{ID: "x", Cron: "not a cron", Script: "x.spp"}}, Options{}); err == nil {
		t.Fatalf("expected invalid cron error")
	}
	dup := []config.ScheduleSpec{
		{ID: "x", Cron: "@every 1m", Script: "x.spp"},
		{ID: "x", Cron: "@every 1m", Script: "y.spp"},
	}
	if _, err := New(dup, Options{}); err == nil {
		t.Fatalf("expected duplicate id error")
	}
}

func TestStartStop(t *testing.T) {
	dir := t.TempDir()
	writeScript(t, dir, "tick.spp", `1`)
	s, err := New([]config.ScheduleSpec{{ID: "tick", Cron: "@every 1h", Script: "tick.spp"}}, Options{BaseDir: dir})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	s.Start()
	if next := s.Next()["tick"]; next.IsZero() || next.Before(time.Now()) {
		t.Fatalf("expected a future activation, got %v", next)
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := s.Stop(ctx); err != nil {
		t.Fatalf("Stop failed: %v", err)
	}
	if ids := s.IDs(); len(ids) != 1 || ids[0] != "tick" {
		t.Fatalf("unexpected ids %v", ids)
	}
}

func TestRunDoesNotReadTerminal(t *testing.T) {
	dir := t.TempDir()
	writeScript(t, dir, "ask.spp", `readethThineStringInput()`)
	s, err := New([]config.ScheduleSpec{{ID: "ask", Cron: "@every 1h", Script: "ask.spp"}}, Options{BaseDir: dir})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	done := make(chan error, 1)
	go func() {
		_, err := s.RunOnce(context.Background(), "ask")
		done <- err
	}()
	select {
	case err := <-done:
		if code, _ := interpreter.ErrorCodeOf(err); code != interpreter.ErrCodeRuntime {
			t.Fatalf("expected input to fail with %s, got %v", interpreter.ErrCodeRuntime, err)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("scheduled run blocked reading input")
	}
}
