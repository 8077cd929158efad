package board

import (
	"context"
	"sync"

	"github.com/0x13a/jobservice/internal/job"
	"github.com/0x13a/jobservice/internal/jobstore"
	"github.com/pkg/errors"
)

var errAPI = errors.New("api down")

type fakeSource struct {
	mu          sync.Mutex
	jobs        []job.Job
	listErr     error
	searchErr   error
	createErr   error
	deleteErr   error
	searches    []string
	created     []job.JobRq
	deleted     []string
	searchGates map[string]chan struct{}
	deleteGates map[string]chan struct{}
	deleteCalls int
	events      chan jobstore.Event
}

func newFakeSource(jobs ...job.Job) *fakeSource {
	return &fakeSource{
		jobs:        jobs,
		searchGates: make(map[string]chan struct{}),
		deleteGates: make(map[string]chan struct{}),
		events:      make(chan jobstore.Event, 8),
	}
}

func (f *fakeSource) List(ctx context.Context) ([]job.Job, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	return append([]job.Job{}, f.jobs...), nil
}

func (f *fakeSource) Search(ctx context.Context, keyword string) ([]job.Job, error) {
	f.mu.Lock()
	f.searches = append(f.searches, keyword)
	gate := f.searchGates[keyword]
	f.mu.Unlock()
	if gate != nil {
		<-gate
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.searchErr != nil {
		return nil, f.searchErr
	}
	var out []job.Job
	for _, j := range f.jobs {
		for _, s := range j.Skills {
			if s == keyword {
				out = append(out, j)
				break
			}
		}
	}
	return out, nil
}

func (f *fakeSource) Create(ctx context.Context, rq job.JobRq) (*job.Job, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return nil, f.createErr
	}
	f.created = append(f.created, rq)
	j := job.Job{ID: "created", Title: rq.Title, Skills: rq.Skills}
	f.jobs = append(f.jobs, j)
	return &j, nil
}

func (f *fakeSource) Delete(ctx context.Context, id string) error {
	f.mu.Lock()
	f.deleteCalls++
	gate := f.deleteGates[id]
	f.mu.Unlock()
	if gate != nil {
		<-gate
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.deleted = append(f.deleted, id)
	f.jobs = job.WithoutID(f.jobs, id)
	return nil
}

func (f *fakeSource) Subscribe() (<-chan jobstore.Event, func()) {
	return f.events, func() {}
}

func (f *fakeSource) gate(keyword string) chan struct{} {
	f.mu.Lock()
	defer f.mu.Unlock()
	ch := make(chan struct{})
	f.searchGates[keyword] = ch
	return ch
}

func (f *fakeSource) gateDelete(id string) chan struct{} {
	f.mu.Lock()
	defer f.mu.Unlock()
	ch := make(chan struct{})
	f.deleteGates[id] = ch
	return ch
}

func (f *fakeSource) deleteCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.deleteCalls
}

func (f *fakeSource) searchCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.searches)
}
