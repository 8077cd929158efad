package jobstore

import (
	"bytes"
	"context"
	"encoding/gob"
	"sync"

	"github.com/0x13a/jobservice/internal/job"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"
)

const (
	CacheKeyJobsIndex = "jobs:index"
	cacheKeyJobPrefix = "job:"

	subscriberBuffer = 16
)

type EventKind int

const (
	Created EventKind = iota + 1
	Deleted
)

func (k EventKind) String() string {
	switch k {
	case Created:
		return "created"
	case Deleted:
		return "deleted"
	}
	return "unknown"
}

// Event notifies subscribers that the job set changed.
type Event struct {
	Kind EventKind
	ID   string
}

// Repository is the remote source of truth for jobs.
type Repository interface {
	Jobs(ctx context.Context) ([]job.Job, error)
	JobsByKeyword(ctx context.Context, keyword string) ([]job.Job, error)
	SaveJob(ctx context.Context, rq job.JobRq) (*job.Job, error)
	DeleteJobByID(ctx context.Context, id string) error
}

// Store is the single client-side copy of job data, keyed by job id.
// Listing and search read through it; create and delete invalidate it.
type Store struct {
	repo    Repository
	backend Backend
	log     zerolog.Logger
	group   singleflight.Group

	// cacheMu orders index writes against create and delete; gen counts
	// the changes so a list fetched before one is never cached.
	cacheMu sync.Mutex
	gen     uint64

	mu   sync.Mutex
	subs map[int]chan Event
	next int
}

func New(repo Repository, backend Backend, log zerolog.Logger) *Store {
	return &Store{
		repo:    repo,
		backend: backend,
		log:     log,
		subs:    make(map[int]chan Event),
	}
}

// List returns all jobs, from cache when the index is warm.
// Concurrent misses share one fetch which outlives any single caller.
func (s *Store) List(ctx context.Context) ([]job.Job, error) {
	if jobs, ok := s.cachedList(ctx); ok {
		return jobs, nil
	}
	fetchCtx := context.WithoutCancel(ctx)
	ch := s.group.DoChan(CacheKeyJobsIndex, func() (interface{}, error) {
		gen := s.generation()
		jobs, err := s.repo.Jobs(fetchCtx)
		if err != nil {
			return nil, err
		}
		s.storeList(fetchCtx, gen, jobs)
		return jobs, nil
	})
	select {
	case <-ctx.Done():
		return nil, errors.Wrap(ctx.Err(), "unable to list jobs")
	case res := <-ch:
		if res.Err != nil {
			return nil, errors.Wrap(res.Err, "unable to list jobs")
		}
		return copyJobs(res.Val.([]job.Job)), nil
	}
}

// Search always asks the API; matching is owned by the server.
func (s *Store) Search(ctx context.Context, keyword string) ([]job.Job, error) {
	jobs, err := s.repo.JobsByKeyword(ctx, keyword)
	if err != nil {
		return nil, errors.Wrapf(err, "unable to search jobs for %q", keyword)
	}
	for _, j := range jobs {
		s.setJob(ctx, j)
	}
	return jobs, nil
}

func (s *Store) Create(ctx context.Context, rq job.JobRq) (*job.Job, error) {
	created, err := s.repo.SaveJob(ctx, rq)
	if err != nil {
		return nil, errors.Wrap(err, "unable to create job")
	}
	s.cacheMu.Lock()
	s.changed()
	if err := s.backend.Delete(ctx, CacheKeyJobsIndex); err != nil {
		s.log.Warn().Err(err).Msg("unable to invalidate jobs index")
	}
	ev := Event{Kind: Created}
	if created != nil {
		ev.ID = created.ID
		s.setJob(ctx, *created)
	}
	s.cacheMu.Unlock()
	s.publish(ev)
	return created, nil
}

func (s *Store) Delete(ctx context.Context, id string) error {
	if err := s.repo.DeleteJobByID(ctx, id); err != nil {
		return errors.Wrapf(err, "unable to delete job %s", id)
	}
	s.cacheMu.Lock()
	s.changed()
	if err := s.backend.Delete(ctx, cacheKeyJobPrefix+id); err != nil {
		s.log.Warn().Err(err).Str("id", id).Msg("unable to evict job")
	}
	if ids, ok := s.index(ctx); ok {
		kept := make([]string, 0, len(ids))
		for _, v := range ids {
			if v != id {
				kept = append(kept, v)
			}
		}
		s.setEncoded(ctx, CacheKeyJobsIndex, kept)
	}
	s.cacheMu.Unlock()
	s.publish(Event{Kind: Deleted, ID: id})
	return nil
}

func (s *Store) generation() uint64 {
	s.cacheMu.Lock()
	defer s.cacheMu.Unlock()
	return s.gen
}

// changed must be called with cacheMu held. Later List calls stop joining
// a fetch that started before the change.
func (s *Store) changed() {
	s.gen++
	s.group.Forget(CacheKeyJobsIndex)
}

// Subscribe returns a channel of change events and a func to stop receiving them.
// Events are dropped for subscribers that do not keep up.
func (s *Store) Subscribe() (<-chan Event, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.next
	s.next++
	ch := make(chan Event, subscriberBuffer)
	s.subs[id] = ch
	var once sync.Once
	return ch, func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			delete(s.subs, id)
			close(ch)
		})
	}
}

func (s *Store) publish(ev Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, ch := range s.subs {
		select {
		case ch <- ev:
		default:
			s.log.Warn().Stringer("kind", ev.Kind).Str("id", ev.ID).Msg("subscriber is slow, dropping job event")
		}
	}
}

func (s *Store) cachedList(ctx context.Context) ([]job.Job, bool) {
	ids, ok := s.index(ctx)
	if !ok {
		return nil, false
	}
	jobs := make([]job.Job, 0, len(ids))
	for _, id := range ids {
		var j job.Job
		if !s.getEncoded(ctx, cacheKeyJobPrefix+id, &j) {
			return nil, false
		}
		jobs = append(jobs, j)
	}
	return jobs, true
}

func (s *Store) storeList(ctx context.Context, gen uint64, jobs []job.Job) {
	s.cacheMu.Lock()
	defer s.cacheMu.Unlock()
	if gen != s.gen {
		s.log.Debug().Msg("jobs changed while listing, not caching the fetched list")
		return
	}
	ids := make([]string, 0, len(jobs))
	for _, j := range jobs {
		s.setJob(ctx, j)
		ids = append(ids, j.ID)
	}
	s.setEncoded(ctx, CacheKeyJobsIndex, ids)
}

func (s *Store) index(ctx context.Context) ([]string, bool) {
	var ids []string
	if !s.getEncoded(ctx, CacheKeyJobsIndex, &ids) {
		return nil, false
	}
	return ids, true
}

func (s *Store) setJob(ctx context.Context, j job.Job) {
	if j.ID == "" {
		return
	}
	s.setEncoded(ctx, cacheKeyJobPrefix+j.ID, j)
}

func (s *Store) getEncoded(ctx context.Context, key string, out interface{}) bool {
	raw, err := s.backend.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			s.log.Warn().Err(err).Str("key", key).Msg("cache get failed")
		}
		return false
	}
	if err := gob.NewDecoder(bytes.NewReader(raw)).Decode(out); err != nil {
		s.log.Warn().Err(err).Str("key", key).Msg("unable to decode cached value")
		return false
	}
	return true
}

func (s *Store) setEncoded(ctx context.Context, key string, val interface{}) {
	buf := &bytes.Buffer{}
	if err := gob.NewEncoder(buf).Encode(val); err != nil {
		s.log.Warn().Err(err).Str("key", key).Msg("unable to encode cache value")
		return
	}
	if err := s.backend.Set(ctx, key, buf.Bytes()); err != nil {
		s.log.Warn().Err(err).Str("key", key).Msg("cache set failed")
	}
}

func copyJobs(jobs []job.Job) []job.Job {
	out := make([]job.Job, len(jobs))
	copy(out, jobs)
	return out
}
