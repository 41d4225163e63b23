// Package queueaccess gives the CLI a single view of the queue whether the
// daemon is running or not: daemon API when reachable, direct store access
// otherwise.
package queueaccess

import (
	"context"
	"strings"

	"storyreel/internal/api"
	"storyreel/internal/daemonctl"
	"storyreel/internal/queue"
)

// Access provides queue operations regardless of daemon or store backing.
type Access interface {
	Submit(ctx context.Context, text, documentPath string) (string, error)
	Stats(ctx context.Context) (map[string]int, error)
	List(ctx context.Context, statuses []string) ([]api.Job, error)
	Describe(ctx context.Context, id int64) (*api.Job, error)
	DescribeToken(ctx context.Context, token string) (*api.Job, error)
}

// NewClientAccess returns an Access backed by the daemon HTTP API.
func NewClientAccess(client *daemonctl.Client) Access {
	return &clientAccess{client: client}
}

// NewStoreAccess returns an Access backed by direct database access.
func NewStoreAccess(store *queue.Store) Access {
	return &storeAccess{store: store, service: api.NewQueueService(store)}
}

type clientAccess struct {
	client *daemonctl.Client
}

func (a *clientAccess) Submit(ctx context.Context, text, documentPath string) (string, error) {
	resp, err := a.client.Submit(ctx, text, documentPath)
	if err != nil {
		return "", err
	}
	return resp.JobID, nil
}

func (a *clientAccess) Stats(ctx context.Context) (map[string]int, error) {
	status, err := a.client.Status(ctx)
	if err != nil {
		return nil, err
	}
	return status.Workflow.QueueStats, nil
}

func (a *clientAccess) List(ctx context.Context, statuses []string) ([]api.Job, error) {
	return a.client.QueueList(ctx, statuses)
}

func (a *clientAccess) Describe(ctx context.Context, id int64) (*api.Job, error) {
	return a.client.QueueJob(ctx, id)
}

func (a *clientAccess) DescribeToken(ctx context.Context, token string) (*api.Job, error) {
	return a.client.JobByToken(ctx, token)
}

type storeAccess struct {
	store   *queue.Store
	service *api.QueueService
}

func (a *storeAccess) Submit(ctx context.Context, text, documentPath string) (string, error) {
	job, err := a.store.NewJob(ctx, text, documentPath)
	if err != nil {
		return "", err
	}
	return job.Token, nil
}

func (a *storeAccess) Stats(ctx context.Context) (map[string]int, error) {
	return a.service.Stats(ctx)
}

func (a *storeAccess) List(ctx context.Context, statuses []string) ([]api.Job, error) {
	var filters []queue.Status
	for _, s := range statuses {
		if parsed, ok := queue.ParseStatus(strings.TrimSpace(s)); ok {
			filters = append(filters, parsed)
		}
	}
	return a.service.List(ctx, filters...)
}

func (a *storeAccess) Describe(ctx context.Context, id int64) (*api.Job, error) {
	return a.service.Describe(ctx, id)
}

func (a *storeAccess) DescribeToken(ctx context.Context, token string) (*api.Job, error) {
	return a.service.DescribeToken(ctx, token)
}
