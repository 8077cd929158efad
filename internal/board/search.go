package board

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/0x13a/jobservice/internal/job"
	"github.com/0x13a/jobservice/internal/jobstore"
	"github.com/rs/zerolog"
)

// Search keeps the live input buffer apart from the committed term. Only the
// request for the latest committed term may write results.
type Search struct {
	src Source
	log zerolog.Logger

	mu         sync.Mutex
	input      string
	term       string
	results    []job.Job
	err        string
	loading    bool
	seq        uint64
	deleting   map[string]bool
	deleteErrs map[string]string
}

type SearchResult struct {
	Job      job.Job
	Deleting bool
	Error    string
}

type SearchSnapshot struct {
	Input     string
	Term      string
	Loading   bool
	CanSubmit bool
	Header    string
	Results   []SearchResult
	Error     string
	NoResults string
}

func NewSearch(src Source, log zerolog.Logger) *Search {
	return &Search{
		src:        src,
		log:        log,
		deleting:   make(map[string]bool),
		deleteErrs: make(map[string]string),
	}
}

func (s *Search) SetInput(input string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.input = input
}

// Submit commits the trimmed input when it is not blank; a blank input is a no-op.
func (s *Search) Submit(ctx context.Context) error {
	s.mu.Lock()
	term := strings.TrimSpace(s.input)
	s.mu.Unlock()
	if term == "" {
		return nil
	}
	return s.Commit(ctx, term)
}

// Commit makes term the active search. An empty term clears the results
// without a request; any other term issues exactly one request.
func (s *Search) Commit(ctx context.Context, term string) error {
	term = strings.TrimSpace(term)

	s.mu.Lock()
	s.seq++
	seq := s.seq
	s.term = term
	s.err = ""
	s.deleteErrs = make(map[string]string)
	if term == "" {
		s.results = nil
		s.loading = false
		s.mu.Unlock()
		return nil
	}
	s.loading = true
	s.mu.Unlock()

	jobs, err := s.src.Search(ctx, term)

	s.mu.Lock()
	defer s.mu.Unlock()
	if seq != s.seq {
		return ErrStale
	}
	s.loading = false
	if err != nil {
		s.log.Error().Err(err).Str("keyword", term).Msg("unable to search jobs")
		s.err = MsgSearchFailed
		s.results = nil
		return err
	}
	s.results = jobs
	return nil
}

// Clear resets input, committed term, results and error together.
func (s *Search) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	s.input = ""
	s.term = ""
	s.results = nil
	s.err = ""
	s.loading = false
	s.deleteErrs = make(map[string]string)
}

// Delete removes one result. On failure the row stays and carries an inline error.
func (s *Search) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	if s.deleting[id] {
		s.mu.Unlock()
		return ErrBusy
	}
	s.deleting[id] = true
	delete(s.deleteErrs, id)
	s.mu.Unlock()

	err := s.src.Delete(ctx, id)

	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.deleting, id)
	if err != nil {
		s.log.Error().Err(err).Str("id", id).Msg("unable to delete job from search results")
		s.deleteErrs[id] = MsgDeleteFailed
		return err
	}
	s.results = job.WithoutID(s.results, id)
	return nil
}

// Watch drops deleted jobs and re-runs the committed search when a job is created.
func (s *Search) Watch(ctx context.Context, w Watcher) {
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
				term := s.Term()
				if term == "" {
					continue
				}
				if err := s.Commit(ctx, term); err != nil && err != ErrStale {
					s.log.Warn().Err(err).Msg("unable to refresh search after create")
				}
			case jobstore.Deleted:
				s.mu.Lock()
				s.results = job.WithoutID(s.results, ev.ID)
				s.mu.Unlock()
			}
		}
	}
}

func (s *Search) Term() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.term
}

func (s *Search) Results() []job.Job {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]job.Job{}, s.results...)
}

func (s *Search) Snapshot() SearchSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := SearchSnapshot{
		Input:     s.input,
		Term:      s.term,
		Loading:   s.loading,
		CanSubmit: strings.TrimSpace(s.input) != "" && !s.loading,
		Error:     s.err,
	}
	if len(s.results) > 0 {
		snap.Header = fmt.Sprintf("Search Results (%d)", len(s.results))
		snap.Results = make([]SearchResult, 0, len(s.results))
		for _, j := range s.results {
			snap.Results = append(snap.Results, SearchResult{
				Job:      j,
				Deleting: s.deleting[j.ID],
				Error:    s.deleteErrs[j.ID],
			})
		}
	}
	if s.term != "" && len(s.results) == 0 && !s.loading && s.err == "" {
		snap.NoResults = fmt.Sprintf(MsgNoSearchResult, s.term)
	}
	return snap
}
