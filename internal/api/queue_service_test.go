package api

import (
	"context"
	"errors"
	"testing"

	"storyreel/internal/queue"
)

type stubReader struct {
	jobs []*queue.Job
	err  error
}

func (s *stubReader) List(_ context.Context, statuses ...queue.Status) ([]*queue.Job, error) {
	if s.err != nil {
		return nil, s.err
	}
	if len(statuses) == 0 {
		return s.jobs, nil
	}
	var filtered []*queue.Job
	for _, job := range s.jobs {
		for _, status := range statuses {
			if job.Status == status {
				filtered = append(filtered, job)
			}
		}
	}
	return filtered, nil
}

func (s *stubReader) Stats(context.Context) (map[queue.Status]int, error) {
	if s.err != nil {
		return nil, s.err
	}
	stats := map[queue.Status]int{}
	for _, job := range s.jobs {
		stats[job.Status]++
	}
	return stats, nil
}

func (s *stubReader) GetByID(_ context.Context, id int64) (*queue.Job, error) {
	for _, job := range s.jobs {
		if job.ID == id {
			return job, nil
		}
	}
	return nil, nil
}

func (s *stubReader) GetByToken(_ context.Context, token string) (*queue.Job, error) {
	for _, job := range s.jobs {
		if job.Token == token {
			return job, nil
		}
	}
	return nil, nil
}

func TestQueueServiceListFiltersByStatus(t *testing.T) {
	svc := NewQueueService(&stubReader{jobs: []*queue.Job{
		{ID: 1, Token: "a", Status: queue.StatusPending},
		{ID: 2, Token: "b", Status: queue.StatusCompleted},
	}})

	jobs, err := svc.List(context.Background(), queue.StatusCompleted)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(jobs) != 1 || jobs[0].JobID != "b" {
		t.Fatalf("jobs = %+v", jobs)
	}
}

func TestQueueServiceDescribeTokenMissing(t *testing.T) {
	svc := NewQueueService(&stubReader{})
	job, err := svc.DescribeToken(context.Background(), "nope")
	if err != nil || job != nil {
		t.Fatalf("missing token should be nil/nil, got %+v %v", job, err)
	}
}

func TestQueueServicePropagatesErrors(t *testing.T) {
	svc := NewQueueService(&stubReader{err: errors.New("db locked")})
	if _, err := svc.List(context.Background()); err == nil {
		t.Fatal("list should propagate store error")
	}
	if _, err := svc.Stats(context.Background()); err == nil {
		t.Fatal("stats should propagate store error")
	}
}

func TestNewQueueServiceNilStore(t *testing.T) {
	if svc := NewQueueService(nil); svc != nil {
		t.Fatal("nil reader should produce nil service")
	}
}
