// Package scheduler drives the collection jobs on their cron cadences and
// owns their pause/resume and overlap-drop behavior.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	log "github.com/sirupsen/logrus"

	"github.com/ukydev/gps-telemetry-collector/internal/models"
)

// ErrJobNotFound is returned for operations on an unregistered job name.
var ErrJobNotFound = errors.New("job not found")

// JobFunc executes one collection run and returns its run log.
type JobFunc func(ctx context.Context) *models.RunLog

// JobSpec registers one job with the scheduler.
type JobSpec struct {
	Name       string
	ReportType models.ReportType
	Cron       string
	Enabled    bool
	Run        JobFunc
}

// JobInfo is the inspection view of one registered job.
type JobInfo struct {
	Name         string                 `json:"name"`
	ReportType   models.ReportType      `json:"report_type"`
	Cron         string                 `json:"cron"`
	Paused       bool                   `json:"paused"`
	Running      bool                   `json:"running"`
	NextRun      *time.Time             `json:"next_run,omitempty"`
	LastRun      *time.Time             `json:"last_run,omitempty"`
	LastStatus   models.IngestionStatus `json:"last_status,omitempty"`
	SkippedTicks int                    `json:"skipped_ticks"`
}

type managedJob struct {
	spec         JobSpec
	entryID      cron.EntryID
	paused       bool
	running      bool
	lastRun      time.Time
	lastStatus   models.IngestionStatus
	skippedTicks int
}

// Scheduler owns the set of collection jobs. Each job runs at most once
// concurrently: a tick that fires while the prior run is still active is
// dropped and counted, never queued.
type Scheduler struct {
	cron *cron.Cron

	mu   sync.Mutex
	jobs map[string]*managedJob
	wg   sync.WaitGroup

	baseCtx context.Context
	cancel  context.CancelFunc
}

// New builds an empty scheduler. Jobs use standard 5-field cron expressions.
func New() *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		cron:    cron.New(),
		jobs:    make(map[string]*managedJob),
		baseCtx: ctx,
		cancel:  cancel,
	}
}

// Register adds a job. Disabled jobs are registered paused so they remain
// inspectable and resumable.
func (s *Scheduler) Register(spec JobSpec) error {
	if spec.Name == "" || spec.Run == nil {
		return fmt.Errorf("job spec requires a name and a run function")
	}
	if _, err := cron.ParseStandard(spec.Cron); err != nil {
		return fmt.Errorf("invalid cron expression %q for job %s: %w", spec.Cron, spec.Name, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.jobs[spec.Name]; exists {
		return fmt.Errorf("job %s already registered", spec.Name)
	}

	job := &managedJob{spec: spec, paused: !spec.Enabled}
	name := spec.Name
	entryID, err := s.cron.AddFunc(spec.Cron, func() { s.tick(name) })
	if err != nil {
		return fmt.Errorf("schedule job %s: %w", spec.Name, err)
	}
	job.entryID = entryID
	s.jobs[spec.Name] = job

	log.WithFields(log.Fields{"job": spec.Name, "cron": spec.Cron, "enabled": spec.Enabled}).
		Info("Job registered")
	return nil
}

// Start activates the cron loop.
func (s *Scheduler) Start() {
	s.cron.Start()
	log.WithField("jobs", len(s.jobs)).Info("Scheduler started")
}

// Stop halts scheduling and waits for in-flight runs to finish, bounded by
// ctx. Runs already started keep an uncancelled context until the wait budget
// expires; only then are they interrupted. Future ticks never fire.
func (s *Scheduler) Stop(ctx context.Context) error {
	s.cron.Stop()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		s.cancel()
		log.Info("Scheduler stopped")
		return nil
	case <-ctx.Done():
		s.cancel()
		return fmt.Errorf("shutdown timed out waiting for running jobs: %w", ctx.Err())
	}
}

// tick is the cron entry point for one job. It drops overlapping ticks
// instead of queueing them; the drop is visible in the job's skip counter.
func (s *Scheduler) tick(name string) {
	s.mu.Lock()
	job, ok := s.jobs[name]
	if !ok {
		s.mu.Unlock()
		return
	}
	if job.paused {
		s.mu.Unlock()
		return
	}
	if job.running {
		job.skippedTicks++
		s.mu.Unlock()
		log.WithField("job", name).Warn("Tick dropped, prior run still active")
		return
	}
	job.running = true
	run := job.spec.Run
	s.wg.Add(1)
	s.mu.Unlock()

	defer s.wg.Done()
	runLog := run(s.baseCtx)

	s.mu.Lock()
	job.running = false
	if runLog != nil {
		job.lastRun = runLog.StartTime
		job.lastStatus = runLog.Status
	}
	s.mu.Unlock()
}

// RunNow triggers a job immediately, subject to the same overlap rule.
// Returns true if the run was started.
func (s *Scheduler) RunNow(name string) (bool, error) {
	s.mu.Lock()
	job, ok := s.jobs[name]
	if !ok {
		s.mu.Unlock()
		return false, ErrJobNotFound
	}
	busy := job.running || job.paused
	s.mu.Unlock()
	if busy {
		return false, nil
	}
	s.tick(name)
	return true, nil
}

// Pause stops future ticks for a job. Idempotent.
func (s *Scheduler) Pause(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	job, ok := s.jobs[name]
	if !ok {
		return ErrJobNotFound
	}
	job.paused = true
	log.WithField("job", name).Info("Job paused")
	return nil
}

// Resume re-enables a paused job. Idempotent.
func (s *Scheduler) Resume(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	job, ok := s.jobs[name]
	if !ok {
		return ErrJobNotFound
	}
	job.paused = false
	log.WithField("job", name).Info("Job resumed")
	return nil
}

// Jobs lists every registered job with its schedule state, sorted by name.
func (s *Scheduler) Jobs() []JobInfo {
	s.mu.Lock()
	defer s.mu.Unlock()

	infos := make([]JobInfo, 0, len(s.jobs))
	for name, job := range s.jobs {
		info := JobInfo{
			Name:         name,
			ReportType:   job.spec.ReportType,
			Cron:         job.spec.Cron,
			Paused:       job.paused,
			Running:      job.running,
			LastStatus:   job.lastStatus,
			SkippedTicks: job.skippedTicks,
		}
		if !job.lastRun.IsZero() {
			t := job.lastRun
			info.LastRun = &t
		}
		if entry := s.cron.Entry(job.entryID); !entry.Next.IsZero() {
			t := entry.Next
			info.NextRun = &t
		}
		infos = append(infos, info)
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].Name < infos[j].Name })
	return infos
}

// SkippedTicks reports how many overlapping ticks have been dropped for a
// job since startup.
func (s *Scheduler) SkippedTicks(name string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	job, ok := s.jobs[name]
	if !ok {
		return 0, ErrJobNotFound
	}
	return job.skippedTicks, nil
}
