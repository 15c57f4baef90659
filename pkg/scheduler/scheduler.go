package scheduler

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/oarkflow/log"
	"github.com/robfig/cron/v3"

	"github.com/oarkflow/spp/interpreter"
	"github.com/oarkflow/spp/pkg/config"
)

type Options struct {
	Logger  *log.Logger
	Runtime interpreter.RuntimeConfig
	// BaseDir resolves relative script paths, usually the config file's directory.
	BaseDir string
}

// Run describes the most recent execution of a scheduled script.
type Run struct {
	ID       string
	Started  time.Time
	Duration time.Duration
	Result   string
	Output   string
	Err      error
}

type job struct {
	spec    config.ScheduleSpec
	path    string
	entryID cron.EntryID
}

// Scheduler executes scripts on cron specs. Every run gets its own
// interpreter so jobs never share state.
type Scheduler struct {
	cron    *cron.Cron
	logger  *log.Logger
	runtime interpreter.RuntimeConfig
	jobs    map[string]*job

	mu      sync.Mutex
	lastRun map[string]Run
}

func New(specs []config.ScheduleSpec, opts Options) (*Scheduler, error) {
	if opts.Logger == nil {
		opts.Logger = &log.DefaultLogger
	}
	s := &Scheduler{
		cron:    cron.New(),
		logger:  opts.Logger,
		runtime: opts.Runtime,
		jobs:    make(map[string]*job, len(specs)),
		lastRun: make(map[string]Run),
	}
	for _, spec := range specs {
		if _, ok := s.jobs[spec.ID]; ok {
			return nil, fmt.Errorf("schedule %s is declared twice", spec.ID)
		}
		path := spec.Script
		if !filepath.IsAbs(path) && opts.BaseDir != "" {
			path = filepath.Join(opts.BaseDir, path)
		}
		j := &job{spec: spec, path: path}
		id, err := s.cron.AddFunc(spec.Cron, func() {
			s.execute(context.Background(), j)
		})
		if err != nil {
			return nil, fmt.Errorf("schedule %s: invalid cron spec %q: %w", spec.ID, spec.Cron, err)
		}
		j.entryID = id
		s.jobs[spec.ID] = j
	}
	return s, nil
}

func (s *Scheduler) Start() {
	s.logger.Info().Int("jobs", len(s.jobs)).Msg("scheduler started")
	s.cron.Start()
}

// Stop halts the cron loop and waits for running jobs until ctx is done.
func (s *Scheduler) Stop(ctx context.Context) error {
	done := s.cron.Stop()
	select {
	case <-done.Done():
		s.logger.Info().Msg("scheduler stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// RunOnce executes the job immediately, outside its schedule.
func (s *Scheduler) RunOnce(ctx context.Context, id string) (Run, error) {
	j, ok := s.jobs[id]
	if !ok {
		return Run{}, fmt.Errorf("unknown schedule %s", id)
	}
	run := s.execute(ctx, j)
	return run, run.Err
}

func (s *Scheduler) LastRun(id string) (Run, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	run, ok := s.lastRun[id]
	return run, ok
}

// Next reports the next activation of each job, keyed by schedule id.
func (s *Scheduler) Next() map[string]time.Time {
	out := make(map[string]time.Time, len(s.jobs))
	for id, j := range s.jobs {
		out[id] = s.cron.Entry(j.entryID).Next
	}
	return out
}

func (s *Scheduler) IDs() []string {
	ids := make([]string, 0, len(s.jobs))
	for id := range s.jobs {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func (s *Scheduler) execute(ctx context.Context, j *job) Run {
	var out bytes.Buffer
	run := Run{ID: j.spec.ID, Started: time.Now()}
	result, err := interpreter.ExecFile(ctx, j.path, nil,
		interpreter.WithStdout(&out),
		interpreter.WithStdin(strings.NewReader("")),
		interpreter.WithArgs(j.spec.Args),
		interpreter.WithLogger(s.logger),
		interpreter.WithRuntimeConfig(s.runtime),
	)
	run.Duration = time.Since(run.Started)
	run.Output = out.String()
	run.Err = err
	if result != nil {
		run.Result = result.Inspect()
	}

	if err != nil {
		s.logger.Error().Str("schedule", j.spec.ID).Str("script", j.path).Err(err).Msg("scheduled script failed")
	} else {
		s.logger.Info().Str("schedule", j.spec.ID).Str("script", j.path).Dur("duration", run.Duration).Str("result", run.Result).Msg("scheduled script finished")
	}

	s.mu.Lock()
	s.lastRun[j.spec.ID] = run
	s.mu.Unlock()
	return run
}
