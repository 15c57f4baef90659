package history

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/oarkflow/spp/interpreter"
)

func TestRecordAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.json")
	rec, err := Open(path)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}

	in := interpreter.New(interpreter.WithStdout(io.Discard))
	inputs := []string{
		"granteth yonder x equivalethTo 5 withUtmostRespect",
		"x addethPolitelyWith 2",
		"missing",
	}
	for _, src := range inputs {
		result, evalErr := in.Run(context.Background(), src)
		if _, err := rec.Record(src, result, evalErr); err != nil {
			t.Fatalf("Record failed: %v", err)
		}
	}
	if err := rec.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	entries, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(entries))
	}
	if entries[1].Result != "7" || entries[1].Error != "" {
		t.Fatalf("unexpected entry %#v", entries[1])
	}
	if entries[2].Error == "" || entries[2].Result != "" {
		t.Fatalf("expected failed entry, got %#v", entries[2])
	}
	if entries[0].ID == "" || entries[0].ID == entries[1].ID {
		t.Fatalf("expected unique ids, got %q and %q", entries[0].ID, entries[1].ID)
	}
}

func TestReopenAppends(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.json")
	for i := 0; i < 2; i++ {
		rec, err := Open(path)
		if err != nil {
			t.Fatalf("Open failed: %v", err)
		}
		if _, err := rec.Record("1", &interpreter.Number{Value: 1}, nil); err != nil {
			t.Fatalf("Record failed: %v", err)
		}
		rec.Close()
	}
	entries, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries after reopening, got %d", len(entries))
	}
}

func TestConcurrentRecord(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.json")
	rec, err := Open(path)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer rec.Close()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := rec.Record("x", nil, errors.New("boom")); err != nil {
				t.Errorf("Record failed: %v", err)
			}
		}()
	}
	wg.Wait()

	entries, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(entries) != 20 {
		t.Fatalf("expected 20 entries, got %d", len(entries))
	}
}

func TestOpenRejectsInvalidFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.json")
	if err := os.WriteFile(path, []byte(`{"not": "an array"}`), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Open(path); err == nil {
		t.Fatalf("expected error for a non-array file")
	}
}

func TestLoadMissingFile(t *testing.T) {
	entries, err := Load(filepath.Join(t.TempDir(), "absent.json"))
	if err != nil || entries != nil {
		t.Fatalf("expected no entries and no error, got %v, %v", entries, err)
	}
}
