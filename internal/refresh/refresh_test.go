package refresh

import (
	"sync/atomic"
	"testing"
)

type counter struct {
	n atomic.Uint64
}

func (c *counter) TriggerRefresh() uint64 {
	return c.n.Add(1)
}

func TestNewRejectsInvalidSpec(t *testing.T) {
	if _, err := New("every tuesday", &counter{}); err == nil {
		t.Error("expected error for invalid spec")
	}
}

func TestDisabledScheduler(t *testing.T) {
	c := &counter{}
	s, err := New("", c)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if s.Enabled() {
		t.Error("empty spec should disable the scheduler")
	}
	s.Start()
	s.RunNow()
	s.Stop()
	if c.n.Load() != 0 {
		t.Errorf("disabled scheduler fired %d times", c.n.Load())
	}
}

func TestRunNowPublishesRefresh(t *testing.T) {
	c := &counter{}
	s, err := New("*/5 * * * *", c)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	s.Start()
	defer s.Stop()

	s.RunNow()
	if c.n.Load() != 1 {
		t.Errorf("expected 1 refresh, got %d", c.n.Load())
	}
}
