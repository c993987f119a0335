// Package scheduler drives the named pipeline jobs on cron-like rules and
// exposes reschedule/cancel/run-now control with per-job mutual exclusion.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"

	"github.com/cesargomez89/gtstats/internal/logger"
	"github.com/cesargomez89/gtstats/internal/metrics"
	"github.com/cesargomez89/gtstats/internal/models"
)

// JobFunc is a pipeline entry point bound to a job name at startup. Bodies
// are never resolved dynamically; the registry is the complete set.
type JobFunc func(ctx context.Context) error

// Definition declares a schedulable job.
type Definition struct {
	Name    string
	Rule    string
	Enabled bool
	Fn      JobFunc
}

// job carries a definition plus its run-state. The state fields are mutated
// only under mu by the run wrapper and the control operations.
type job struct {
	mu  sync.Mutex
	def Definition

	running      bool
	count        int
	lastEnded    time.Time
	lastDuration time.Duration
	maxDuration  time.Duration
	lastError    string

	armed      bool
	entryID    cron.EntryID
	validUntil time.Time
}

// RunRecorder persists completed runs for the admin surface.
type RunRecorder interface {
	RecordRun(run models.JobRun) error
}

type Scheduler struct {
	cron     *cron.Cron
	jobs     map[string]*job
	order    []string
	log      *logger.Logger
	metrics  *metrics.Metrics
	runs     RunRecorder
	disabled bool
}

// New builds a scheduler. When disabled (development), jobs are registered
// but never armed; RunNow still works.
func New(log *logger.Logger, m *metrics.Metrics, runs RunRecorder, disabled bool) *Scheduler {
	parser := cron.NewParser(cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
	return &Scheduler{
		cron:     cron.New(cron.WithParser(parser)),
		jobs:     make(map[string]*job),
		log:      log.WithComponent("scheduler"),
		metrics:  m,
		runs:     runs,
		disabled: disabled,
	}
}

// Register adds job definitions to the registry without arming them.
func (s *Scheduler) Register(defs ...Definition) {
	for _, def := range defs {
		s.jobs[def.Name] = &job{def: def}
		s.order = append(s.order, def.Name)
	}
}

// Start arms every enabled job and starts the cron loop. In development
// nothing is armed.
func (s *Scheduler) Start() {
	if s.disabled {
		s.log.Info("not scheduling jobs in development")
		return
	}
	for _, name := range s.order {
		j := s.jobs[name]
		if !j.def.Enabled {
			s.log.Info("job not scheduled", "job", name)
			continue
		}
		if err := s.arm(j); err != nil {
			s.log.Error("job scheduling failed", "job", name, "error", err)
		}
	}
	s.cron.Start()
}

// Stop halts future firings; an in-flight run is never interrupted.
func (s *Scheduler) Stop() context.Context {
	return s.cron.Stop()
}

// arm registers a recurring trigger for the job with a fresh one-year
// validity window. Caller holds no job lock.
func (s *Scheduler) arm(j *job) error {
	entryID, err := s.cron.AddFunc(j.def.Rule, func() { s.run(j) })
	if err != nil {
		return fmt.Errorf("invalid rule %q: %w", j.def.Rule, err)
	}
	j.mu.Lock()
	j.armed = true
	j.entryID = entryID
	j.validUntil = time.Now().AddDate(1, 0, 0)
	j.mu.Unlock()
	s.log.Info("job scheduled", "job", j.def.Name, "rule", j.def.Rule)
	return nil
}

// run is the wrapper around every invocation, scheduled or manual. A job
// already running is skipped outright: no queueing, no preemption.
func (s *Scheduler) run(j *job) {
	name := j.def.Name

	j.mu.Lock()
	if j.armed && time.Now().After(j.validUntil) {
		entryID := j.entryID
		j.armed = false
		j.mu.Unlock()
		s.cron.Remove(entryID)
		s.log.Warn("trigger past validity window, removed", "job", name)
		return
	}
	if j.running {
		j.mu.Unlock()
		s.log.Warn("skipping already running job", "job", name)
		s.metrics.JobRuns.WithLabelValues(name, metrics.StatusSkipped).Inc()
		return
	}
	j.running = true
	j.count++
	j.mu.Unlock()

	start := time.Now()
	err := s.call(j.def.Fn)
	end := time.Now()
	duration := end.Sub(start)

	j.mu.Lock()
	j.lastEnded = end
	j.lastDuration = duration
	if duration > j.maxDuration {
		j.maxDuration = duration
	}
	if err != nil {
		j.lastError = err.Error()
	} else {
		j.lastError = ""
	}
	j.running = false
	j.mu.Unlock()

	status := metrics.StatusOK
	if err != nil {
		status = metrics.StatusError
		s.log.Error("job failed", "job", name, "duration", duration, "error", err)
	} else {
		s.log.Info("job finished", "job", name, "duration", duration)
	}
	s.metrics.JobRuns.WithLabelValues(name, status).Inc()
	s.metrics.JobDuration.WithLabelValues(name).Observe(duration.Seconds())

	s.record(name, start, end, err)
}

// call invokes the job body, converting panics into errors so a job can
// never take the process down.
func (s *Scheduler) call(fn JobFunc) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("job panicked: %v", r)
		}
	}()
	return fn(context.Background())
}

func (s *Scheduler) record(name string, start, end time.Time, runErr error) {
	if s.runs == nil {
		return
	}
	run := models.JobRun{
		ID:         uuid.New().String(),
		Name:       name,
		StartedAt:  start,
		EndedAt:    end,
		DurationMS: end.Sub(start).Milliseconds(),
	}
	if runErr != nil {
		run.Error = runErr.Error()
	}
	if err := s.runs.RecordRun(run); err != nil {
		s.log.Error("failed to record run", "job", name, "error", err)
	}
}

// Reschedule replaces the job's active trigger with a fresh one, keeping its
// run-state counters. A job that was never armed is armed instead.
func (s *Scheduler) Reschedule(name string) error {
	j, ok := s.jobs[name]
	if !ok {
		return fmt.Errorf("unknown job: %s", name)
	}

	j.mu.Lock()
	armed := j.armed
	entryID := j.entryID
	j.mu.Unlock()

	if armed {
		s.cron.Remove(entryID)
	}
	if err := s.arm(j); err != nil {
		return fmt.Errorf("could not reschedule job %s: %w", name, err)
	}
	s.log.Info("job rescheduled", "job", name)
	return nil
}

// Cancel deactivates the job's trigger for future firings. It fails when no
// active trigger exists.
func (s *Scheduler) Cancel(name string) error {
	j, ok := s.jobs[name]
	if !ok {
		return fmt.Errorf("unknown job: %s", name)
	}

	j.mu.Lock()
	defer j.mu.Unlock()
	if !j.armed {
		return fmt.Errorf("could not cancel job %s: no active trigger", name)
	}
	s.cron.Remove(j.entryID)
	j.armed = false
	s.log.Info("job cancelled", "job", name)
	return nil
}

// RunNow invokes the job outside its trigger, subject to the same mutual
// exclusion. Job errors are isolated and logged, never returned; only an
// unknown name is a caller error.
func (s *Scheduler) RunNow(name string) error {
	j, ok := s.jobs[name]
	if !ok {
		return fmt.Errorf("unknown job: %s", name)
	}
	go s.run(j)
	return nil
}

// Jobs returns a snapshot of every job's run-state in registration order.
func (s *Scheduler) Jobs() []models.JobInfo {
	infos := make([]models.JobInfo, 0, len(s.jobs))
	for _, name := range s.order {
		j := s.jobs[name]
		j.mu.Lock()
		info := models.JobInfo{
			Name:         name,
			Rule:         j.def.Rule,
			Enabled:      j.def.Enabled,
			Running:      j.running,
			Count:        j.count,
			LastDuration: j.lastDuration.Milliseconds(),
			MaxDuration:  j.maxDuration.Milliseconds(),
			LastError:    j.lastError,
		}
		if !j.lastEnded.IsZero() {
			ended := j.lastEnded
			info.LastEnded = &ended
		}
		if j.armed {
			next := s.cron.Entry(j.entryID).Next
			if !next.IsZero() {
				info.NextRun = &next
			}
		}
		j.mu.Unlock()
		infos = append(infos, info)
	}
	return infos
}
