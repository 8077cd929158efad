package board

import (
	"context"
	"fmt"
	"sync"

	"github.com/0x13a/jobservice/internal/job"
	"github.com/0x13a/jobservice/internal/jobstore"
	"github.com/rs/zerolog"
)

// Listing shows every job as a card with a per-card delete action.
type Listing struct {
	src    Source
	apiURL string
	log    zerolog.Logger

	mu         sync.Mutex
	state      State
	jobs       []job.Job
	deleting   map[string]bool
	deleteErrs map[string]string
	seq        uint64
}

type ListingSnapshot struct {
	State   State
	Cards   []job.Card
	Message string
	Hint    string
}

func NewListing(src Source, apiURL string, log zerolog.Logger) *Listing {
	return &Listing{
		src:        src,
		apiURL:     apiURL,
		log:        log,
		deleting:   make(map[string]bool),
		deleteErrs: make(map[string]string),
	}
}

// Load fetches all jobs. A load overtaken by a newer one returns ErrStale.
func (l *Listing) Load(ctx context.Context) error {
	l.mu.Lock()
	l.seq++
	seq := l.seq
	l.state = Loading
	l.mu.Unlock()

	jobs, err := l.src.List(ctx)

	l.mu.Lock()
	defer l.mu.Unlock()
	if seq != l.seq {
		return ErrStale
	}
	if err != nil {
		l.state = Failed
		l.jobs = nil
		return err
	}
	l.jobs = jobs
	l.deleteErrs = make(map[string]string)
	l.settle()
	return nil
}

// Delete removes one job. On failure the job stays and its card carries an inline error.
func (l *Listing) Delete(ctx context.Context, id string) error {
	l.mu.Lock()
	if l.deleting[id] {
		l.mu.Unlock()
		return ErrBusy
	}
	l.deleting[id] = true
	delete(l.deleteErrs, id)
	l.mu.Unlock()

	err := l.src.Delete(ctx, id)

	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.deleting, id)
	if err != nil {
		l.log.Error().Err(err).Str("id", id).Msg("unable to delete job from listing")
		l.deleteErrs[id] = MsgDeleteFailed
		return err
	}
	l.drop(id)
	return nil
}

// Watch keeps the listing in step with store events until ctx is done.
func (l *Listing) Watch(ctx context.Context, w Watcher) {
	events, cancel := w.Subscribe()
	defer cancel()
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			switch ev.Kind {
			case jobstore.Created:
				if err := l.Load(ctx); err != nil && err != ErrStale {
					l.log.Warn().Err(err).Msg("unable to reload listing after create")
				}
			case jobstore.Deleted:
				l.mu.Lock()
				l.drop(ev.ID)
				l.mu.Unlock()
			}
		}
	}
}

func (l *Listing) Snapshot() ListingSnapshot {
	l.mu.Lock()
	defer l.mu.Unlock()
	snap := ListingSnapshot{State: l.state}
	switch l.state {
	case Failed:
		snap.Message = fmt.Sprintf(MsgLoadFailed, l.apiURL)
	case Empty:
		snap.Message = MsgNoJobs
		snap.Hint = MsgNoJobsHint
	case Ready:
		snap.Cards = make([]job.Card, 0, len(l.jobs))
		for _, j := range l.jobs {
			c := job.NewCard(j)
			c.Deleting = l.deleting[j.ID]
			c.Error = l.deleteErrs[j.ID]
			snap.Cards = append(snap.Cards, c)
		}
	}
	return snap
}

// Jobs returns a copy of the jobs currently shown.
func (l *Listing) Jobs() []job.Job {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]job.Job{}, l.jobs...)
}

func (l *Listing) drop(id string) {
	l.jobs = job.WithoutID(l.jobs, id)
	delete(l.deleteErrs, id)
	l.settle()
}

func (l *Listing) settle() {
	if l.state == Loading || l.state == Ready || l.state == Empty {
		if len(l.jobs) == 0 {
			l.state = Empty
		} else {
			l.state = Ready
		}
	}
}
