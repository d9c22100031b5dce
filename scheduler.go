package mazduino

import (
	"time"

	"github.com/jonboulle/clockwork"
	log "github.com/sirupsen/logrus"
)

// Task is one entry of the loop's task table. A zero Interval runs the
// task on every step.
type Task struct {
	Name     string
	Interval time.Duration
	Run      func() error

	lastRun time.Time
	ran     bool
	// last failure, so a persistent error is logged once
	lastErr string
}

func (t *Task) due(now time.Time) bool {
	return !t.ran || now.Sub(t.lastRun) >= t.Interval
}

// Scheduler runs due tasks in the order they were added. Nothing blocks
// between tasks; a task's failure is logged and the step continues.
type Scheduler struct {
	clock clockwork.Clock
	tasks []*Task
}

func NewScheduler(clock clockwork.Clock) *Scheduler {
	return &Scheduler{clock: clock}
}

func (s *Scheduler) Add(name string, interval time.Duration, run func() error) *Task {
	t := &Task{Name: name, Interval: interval, Run: run}
	s.tasks = append(s.tasks, t)
	return t
}

// Step runs every due task once. A failing task is logged when its error
// changes and again when it recovers.
func (s *Scheduler) Step() {
	for _, t := range s.tasks {
		now := s.clock.Now()
		if !t.due(now) {
			continue
		}
		t.lastRun = now
		t.ran = true
		err := t.Run()
		switch {
		case err != nil && err.Error() != t.lastErr:
			t.lastErr = err.Error()
			log.WithFields(log.Fields{
				"task": t.Name,
				"err":  err,
			}).Error("task failed")
		case err == nil && t.lastErr != "":
			t.lastErr = ""
			log.WithField("task", t.Name).Info("task recovered")
		}
	}
}
