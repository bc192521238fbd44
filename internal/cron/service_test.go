package cron

import (
	"context"
	"errors"
	"testing"
)

type stubLock struct {
	acquire  bool
	released int
}

func (s *stubLock) Acquire(context.Context) (bool, error) { return s.acquire, nil }
func (s *stubLock) Release(context.Context) error {
	s.released++
	return nil
}

type countingJob struct {
	name string
	runs int
	err  error
}

func (j *countingJob) Name() string              { return j.name }
func (j *countingJob) Run(context.Context) error { j.runs++; return j.err }

func TestRunCycleExecutesAllJobs(t *testing.T) {
	lock := &stubLock{acquire: true}
	first := &countingJob{name: "first", err: errors.New("boom")}
	second := &countingJob{name: "second"}

	svc, err := NewService(ServiceParams{
		Logger:   testLogger(),
		Registry: NewRegistry(first, second),
		Lock:     lock,
	})
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}

	if err := svc.runCycle(context.Background()); err != nil {
		t.Fatalf("runCycle: %v", err)
	}
	if first.runs != 1 || second.runs != 1 {
		t.Errorf("runs = %d/%d, want 1/1; a failing job must not stop the rest", first.runs, second.runs)
	}
	if lock.released != 1 {
		t.Errorf("lock released %d times, want 1", lock.released)
	}
}

func TestRunCycleSkipsWithoutLock(t *testing.T) {
	job := &countingJob{name: "noop"}
	svc, err := NewService(ServiceParams{
		Logger:   testLogger(),
		Registry: NewRegistry(job),
		Lock:     &stubLock{acquire: false},
	})
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}

	if err := svc.runCycle(context.Background()); err != nil {
		t.Fatalf("runCycle: %v", err)
	}
	if job.runs != 0 {
		t.Error("jobs must not run without the lock")
	}
}

func TestRegistryIgnoresNilJobs(t *testing.T) {
	registry := NewRegistry(nil, &countingJob{name: "real"})
	if got := len(registry.Jobs()); got != 1 {
		t.Errorf("jobs = %d, want 1", got)
	}
}
