package calendar

import (
	"sync"
	"time"
)

// State is the shared, run-scoped calendar window plus the refresh signal.
// WeekStart and WeekEnd are derived from the anchor on every read.
type State struct {
	mu           sync.RWMutex
	currentDate  time.Time
	weekStartsOn time.Weekday
	refresh      uint64
	subscribers  map[int]chan uint64
	nextSub      int
	now          func() time.Time
}

// NewState anchors a new state at now.
func NewState(now time.Time, weekStartsOn time.Weekday) *State {
	return &State{
		currentDate:  now,
		weekStartsOn: weekStartsOn,
		subscribers:  make(map[int]chan uint64),
		now:          time.Now,
	}
}

// WithClock overrides the clock used by GoToToday.
func (s *State) WithClock(now func() time.Time) *State {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
	return s
}

func (s *State) CurrentDate() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.currentDate
}

func (s *State) SetCurrentDate(d time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.currentDate = d
}

func (s *State) WeekStartsOn() time.Weekday {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.weekStartsOn
}

func (s *State) WeekStart() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return StartOfWeek(s.currentDate, s.weekStartsOn)
}

// WeekEnd is the exclusive end of the current week.
func (s *State) WeekEnd() time.Time {
	return s.WeekStart().AddDate(0, 0, 7)
}

func (s *State) PreviousWeek() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.currentDate = PreviousWeek(s.currentDate)
}

func (s *State) NextWeek() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.currentDate = NextWeek(s.currentDate)
}

func (s *State) GoToToday() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.currentDate = Today(s.now())
}

func (s *State) RefreshCount() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.refresh
}

// TriggerRefresh bumps the refresh counter and notifies every subscriber.
// Slow subscribers never block the caller; they see the latest count on
// their next receive.
func (s *State) TriggerRefresh() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.refresh++
	for _, ch := range s.subscribers {
		select {
		case ch <- s.refresh:
		default:
			// drop the stale pending value and replace it
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- s.refresh:
			default:
			}
		}
	}
	return s.refresh
}

// Subscribe registers for refresh notifications. The returned cancel func
// closes the channel and must be called once the subscriber is done.
func (s *State) Subscribe() (<-chan uint64, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextSub
	s.nextSub++
	ch := make(chan uint64, 1)
	s.subscribers[id] = ch

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			delete(s.subscribers, id)
			close(ch)
		})
	}
	return ch, cancel
}
