// Package scheduler provides cron-based background jobs for the
// daemon: firing due alarms every minute and refreshing live traffic
// every five minutes.
package scheduler

import (
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/nvoss/ontime/internal/config"
	"github.com/nvoss/ontime/internal/logging"
)

// Scheduler manages the daemon's periodic jobs using cron.
type Scheduler struct {
	cron           *cron.Cron
	mu             sync.Mutex
	lastCheck      time.Time
	alarmChecker   *AlarmChecker
	trafficChecker *TrafficChecker
	debug          bool
}

// NewScheduler creates a new scheduler.
func NewScheduler() *Scheduler {
	return &Scheduler{
		cron: cron.New(cron.WithSeconds()),
	}
}

// SetDebug enables debug output.
func (s *Scheduler) SetDebug(debug bool) {
	s.debug = debug
}

// SetAlarmChecker sets the due-alarm checker run every minute.
func (s *Scheduler) SetAlarmChecker(checker *AlarmChecker) {
	s.alarmChecker = checker
}

// SetTrafficChecker sets the traffic refresher run every five minutes.
func (s *Scheduler) SetTrafficChecker(checker *TrafficChecker) {
	s.trafficChecker = checker
}

// Start starts the scheduler with all configured jobs.
func (s *Scheduler) Start() error {
	s.lastCheck = time.Now()

	_, err := s.cron.AddFunc("0 * * * * *", func() {
		s.runMinuteChecks()
	})
	if err != nil {
		return fmt.Errorf("failed to add minute checks: %w", err)
	}

	_, err = s.cron.AddFunc("0 */5 * * * *", func() {
		s.runFiveMinuteChecks()
	})
	if err != nil {
		return fmt.Errorf("failed to add 5-minute checks: %w", err)
	}

	s.cron.Start()
	logging.Debug("scheduler started")

	return nil
}

// Stop stops the scheduler and waits for running jobs.
func (s *Scheduler) Stop() {
	if s.cron != nil {
		ctx := s.cron.Stop()
		<-ctx.Done()
	}
	logging.Debug("scheduler stopped")
}

// runMinuteChecks fires due alarms. After a long suspend the gap of
// missed minutes is skipped rather than replayed: a missed alarm is
// dropped, never fired retroactively.
func (s *Scheduler) runMinuteChecks() {
	s.mu.Lock()
	elapsed := time.Since(s.lastCheck)
	s.lastCheck = time.Now()
	s.mu.Unlock()

	if elapsed > config.Global.Scheduler.SleepThreshold {
		logging.Debug("skipping stale checks after sleep",
			logging.KeyDuration, elapsed.Round(time.Second).String())
		if s.alarmChecker != nil {
			s.alarmChecker.DropMissed()
		}
		return
	}

	if s.alarmChecker != nil {
		s.alarmChecker.Check()
	}
}

// runFiveMinuteChecks refreshes live traffic for enabled trips.
func (s *Scheduler) runFiveMinuteChecks() {
	if s.trafficChecker != nil {
		s.trafficChecker.Check()
	}
}

// AddJob adds a custom job to the scheduler.
func (s *Scheduler) AddJob(spec string, job func()) (cron.EntryID, error) {
	return s.cron.AddFunc(spec, job)
}

// NextRun returns the next scheduled run time for any job.
func (s *Scheduler) NextRun() time.Time {
	entries := s.cron.Entries()
	if len(entries) == 0 {
		return time.Time{}
	}

	next := entries[0].Next
	for _, e := range entries[1:] {
		if e.Next.Before(next) {
			next = e.Next
		}
	}
	return next
}
