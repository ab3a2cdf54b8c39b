package backoff

import (
	"testing"
	"time"
)

func TestStrategyGrowsExponentiallyUpToCap(t *testing.T) {
	s := New(100*time.Millisecond, 2.0, 5*time.Second)

	want := []time.Duration{
		100 * time.Millisecond,
		200 * time.Millisecond,
		400 * time.Millisecond,
		800 * time.Millisecond,
		1600 * time.Millisecond,
		3200 * time.Millisecond,
		5 * time.Second, // 6.4s would exceed the cap
		5 * time.Second, // stays capped on further failures
	}

	for i, w := range want {
		<-s.Next()
		if got := s.Duration(); got != w {
			t.Errorf("step %d: expected duration %v, got %v", i, w, got)
		}
	}
}

func TestStrategyDurationBeforeFirstNext(t *testing.T) {
	s := New(100*time.Millisecond, 2.0, 5*time.Second)
	if got := s.Duration(); got != 100*time.Millisecond {
		t.Errorf("expected initial duration before any Next call, got %v", got)
	}
}

func TestStrategyReset(t *testing.T) {
	s := New(100*time.Millisecond, 2.0, 5*time.Second)
	<-s.Next()
	<-s.Next()
	<-s.Next()
	if s.Duration() == 100*time.Millisecond {
		t.Fatal("test setup: expected duration to have grown past the initial value")
	}

	s.Reset()
	if got := s.Duration(); got != 100*time.Millisecond {
		t.Errorf("expected Reset to restore the initial duration, got %v", got)
	}

	<-s.Next()
	if got := s.Duration(); got != 100*time.Millisecond {
		t.Errorf("expected the first Next after Reset to reapply the initial duration, got %v", got)
	}
}

func TestStrategyNextReturnsReadableChannel(t *testing.T) {
	s := New(time.Millisecond, 2.0, time.Second)
	select {
	case <-s.Next():
	case <-time.After(time.Second):
		t.Fatal("expected Next's channel to fire")
	}
}
