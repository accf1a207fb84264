package testfixtures

import (
	"testing"
	"time"
)

func TestClockDefaultsToReferenceTime(t *testing.T) {
	clock := NewClock(time.Time{})
	if !clock.Now().Equal(ReferenceTime()) {
		t.Fatalf("expected ReferenceTime, got %v", clock.Now())
	}
}

func TestClockAdvance(t *testing.T) {
	clock := NewClock(ReferenceTime())
	updated := clock.Advance(90 * time.Minute)
	want := ReferenceTime().Add(90 * time.Minute)
	if !updated.Equal(want) {
		t.Fatalf("expected %v, got %v", want, updated)
	}
	if !clock.Now().Equal(want) {
		t.Fatalf("expected Now to track advance, got %v", clock.Now())
	}
}

func TestIDGeneratorSequence(t *testing.T) {
	gen := NewIDGenerator("worker")
	if got := gen.Next(); got != "worker-1" {
		t.Fatalf("unexpected first id: %q", got)
	}
	if got := gen.Next(); got != "worker-2" {
		t.Fatalf("unexpected second id: %q", got)
	}
}
