package system

import "time"

// ScheduleStatus provides information about scheduled execution.
type ScheduleStatus struct {
	LastExecution    time.Time
	NextExecution    time.Time
	ExecutionCount   uint64
	MissedExecutions uint64
}

// Scheduler paces a fixed-timestep loop against deadlines instead of
// sleeping a fixed amount after each tick, so tick cost does not accumulate
// as drift. When the loop falls behind it runs at most maxCatchUp ticks in a
// row and drops the rest of the backlog.
//
// Scheduler is not safe for concurrent use.
type Scheduler struct {
	interval   time.Duration
	maxCatchUp int
	status     ScheduleStatus
}

func NewScheduler(interval time.Duration, maxCatchUp int) *Scheduler {
	return &Scheduler{interval: interval, maxCatchUp: max(1, maxCatchUp)}
}

func (s *Scheduler) Interval() time.Duration { return s.interval }

// Start sets the first deadline one interval after now.
func (s *Scheduler) Start(now time.Time) {
	s.status = ScheduleStatus{NextExecution: now.Add(s.interval)}
}

// Due returns how many ticks to run at now and moves the deadline past now.
func (s *Scheduler) Due(now time.Time) int {
	next := s.status.NextExecution
	if now.Before(next) {
		return 0
	}

	behind := int(now.Sub(next)/s.interval) + 1
	n := min(behind, s.maxCatchUp)
	if behind > n {
		s.status.MissedExecutions += uint64(behind - n)
		s.status.NextExecution = now.Add(s.interval)
	} else {
		s.status.NextExecution = next.Add(time.Duration(n) * s.interval)
	}
	s.status.LastExecution = now
	s.status.ExecutionCount += uint64(n)
	return n
}

// Until returns the wait before the next deadline, never negative.
func (s *Scheduler) Until(now time.Time) time.Duration {
	return max(0, s.status.NextExecution.Sub(now))
}

func (s *Scheduler) Status() ScheduleStatus { return s.status }
