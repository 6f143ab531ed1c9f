package calendar

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

func TestStateDerivedWindow(t *testing.T) {
	s := NewState(time.Date(2024, 6, 5, 10, 0, 0, 0, time.UTC), time.Sunday)

	if want := time.Date(2024, 6, 2, 0, 0, 0, 0, time.UTC); !s.WeekStart().Equal(want) {
		t.Errorf("WeekStart = %v, want %v", s.WeekStart(), want)
	}
	if want := time.Date(2024, 6, 9, 0, 0, 0, 0, time.UTC); !s.WeekEnd().Equal(want) {
		t.Errorf("WeekEnd = %v, want %v", s.WeekEnd(), want)
	}

	s.NextWeek()
	if want := time.Date(2024, 6, 9, 0, 0, 0, 0, time.UTC); !s.WeekStart().Equal(want) {
		t.Errorf("after NextWeek WeekStart = %v, want %v", s.WeekStart(), want)
	}
	s.PreviousWeek()
	s.PreviousWeek()
	if want := time.Date(2024, 5, 26, 0, 0, 0, 0, time.UTC); !s.WeekStart().Equal(want) {
		t.Errorf("after PreviousWeek WeekStart = %v, want %v", s.WeekStart(), want)
	}
}

func TestStateGoToToday(t *testing.T) {
	today := time.Date(2025, 1, 15, 8, 0, 0, 0, time.UTC)
	s := NewState(time.Date(2024, 6, 5, 10, 0, 0, 0, time.UTC), time.Monday).
		WithClock(func() time.Time { return today })

	s.GoToToday()
	if !s.CurrentDate().Equal(today) {
		t.Errorf("CurrentDate = %v, want %v", s.CurrentDate(), today)
	}
	if want := time.Date(2025, 1, 13, 0, 0, 0, 0, time.UTC); !s.WeekStart().Equal(want) {
		t.Errorf("WeekStart = %v, want %v", s.WeekStart(), want)
	}
}

func TestTriggerRefreshNotifiesSubscribers(t *testing.T) {
	s := NewState(time.Now(), time.Sunday)
	ch, cancel := s.Subscribe()
	defer cancel()

	if got := s.TriggerRefresh(); got != 1 {
		t.Fatalf("TriggerRefresh = %d, want 1", got)
	}

	select {
	case n := <-ch:
		if n != 1 {
			t.Errorf("received %d, want 1", n)
		}
	case <-time.After(time.Second):
		t.Fatal("subscriber was not notified")
	}
}

func TestTriggerRefreshCoalescesForSlowSubscriber(t *testing.T) {
	s := NewState(time.Now(), time.Sunday)
	ch, cancel := s.Subscribe()
	defer cancel()

	s.TriggerRefresh()
	s.TriggerRefresh()
	s.TriggerRefresh()

	if n := <-ch; n != 3 {
		t.Errorf("received %d, want latest count 3", n)
	}
	if s.RefreshCount() != 3 {
		t.Errorf("RefreshCount = %d, want 3", s.RefreshCount())
	}
}

func TestSubscribeCancelClosesChannel(t *testing.T) {
	s := NewState(time.Now(), time.Sunday)
	ch, cancel := s.Subscribe()
	cancel()
	cancel()

	if _, ok := <-ch; ok {
		t.Error("expected closed channel after cancel")
	}
	// Publishing after cancel must not panic.
	s.TriggerRefresh()
}

func TestStateConcurrentAccess(t *testing.T) {
	s := NewState(time.Now(), time.Sunday)
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			s.NextWeek()
			s.TriggerRefresh()
		}()
		go func() {
			defer wg.Done()
			_ = s.WeekStart()
			_ = s.RefreshCount()
		}()
	}
	wg.Wait()
	if s.RefreshCount() != 50 {
		t.Errorf("RefreshCount = %d, want 50", s.RefreshCount())
	}
}

func TestFromContext(t *testing.T) {
	if _, err := FromContext(context.Background()); !errors.Is(err, ErrNoProvider) {
		t.Errorf("expected ErrNoProvider, got %v", err)
	}

	s := NewState(time.Now(), time.Sunday)
	ctx := WithState(context.Background(), s)
	got, err := FromContext(ctx)
	if err != nil {
		t.Fatalf("FromContext: %v", err)
	}
	if got != s {
		t.Error("FromContext returned a different state")
	}
}

func TestMustFromContextPanics(t *testing.T) {
	defer func() {
		r := recover()
		err, ok := r.(error)
		if !ok || !errors.Is(err, ErrNoProvider) {
			t.Errorf("expected panic with ErrNoProvider, got %v", r)
		}
	}()
	MustFromContext(context.Background())
}
