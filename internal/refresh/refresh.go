// Package refresh schedules background re-fetches of the visible week.
package refresh

import (
	"fmt"

	"github.com/robfig/cron/v3"

	"github.com/julianstephens/trainweek/internal/logger"
)

// Trigger is anything that can publish a refresh, normally *calendar.State.
type Trigger interface {
	TriggerRefresh() uint64
}

type Scheduler struct {
	cron *cron.Cron
	spec string
}

// New schedules trigger on a standard five-field cron spec. An empty spec
// yields a scheduler that never fires.
func New(spec string, trigger Trigger) (*Scheduler, error) {
	s := &Scheduler{cron: cron.New(), spec: spec}
	if spec == "" {
		return s, nil
	}
	_, err := s.cron.AddFunc(spec, func() {
		n := trigger.TriggerRefresh()
		logger.Debug("scheduled refresh", "count", n)
	})
	if err != nil {
		return nil, fmt.Errorf("invalid refresh schedule %q: %w", spec, err)
	}
	return s, nil
}

func (s *Scheduler) Enabled() bool {
	return s.spec != ""
}

func (s *Scheduler) Start() {
	if s.Enabled() {
		logger.Info("auto refresh enabled", "schedule", s.spec)
	}
	s.cron.Start()
}

// Stop halts the scheduler and waits for a running trigger to return.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
}

// RunNow fires every scheduled job immediately, outside the schedule.
func (s *Scheduler) RunNow() {
	for _, entry := range s.cron.Entries() {
		entry.Job.Run()
	}
}
