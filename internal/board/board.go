// Package board holds the state of the three job board views: the listing,
// the keyword search and the creation form. Views share job data through a
// Source and never talk to each other directly; cross-view updates travel as
// store events.
package board

import (
	"context"

	"github.com/0x13a/jobservice/internal/job"
	"github.com/0x13a/jobservice/internal/jobstore"
	"github.com/pkg/errors"
)

type State int

const (
	Idle State = iota
	Loading
	Ready
	Empty
	Failed
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Loading:
		return "loading"
	case Ready:
		return "ready"
	case Empty:
		return "empty"
	case Failed:
		return "failed"
	}
	return "unknown"
}

const (
	MsgLoadFailed     = "Failed to load jobs. Please make sure the API server is running on %s"
	MsgNoJobs         = "No jobs found"
	MsgNoJobsHint     = "Start by creating a new job posting"
	MsgSearchFailed   = "Failed to search jobs. Please try again."
	MsgNoSearchResult = `No jobs found for "%s"`
	MsgDeleteFailed   = "Failed to delete job"
	MsgCreateFailed   = "Failed to create job. Please try again."
	MsgInvalidExp     = "Years of experience must be a whole number of zero or more."
	MsgMissingField   = "Please fill in the %s."
)

var (
	// ErrStale is returned when a newer request superseded this one and its result was dropped.
	ErrStale = errors.New("result superseded by a newer request")
	// ErrBusy is returned when the same action is already in flight.
	ErrBusy = errors.New("action already in progress")
)

// Source is where views read and mutate jobs. *jobstore.Store implements it.
type Source interface {
	List(ctx context.Context) ([]job.Job, error)
	Search(ctx context.Context, keyword string) ([]job.Job, error)
	Create(ctx context.Context, rq job.JobRq) (*job.Job, error)
	Delete(ctx context.Context, id string) error
}

// Watcher delivers job change events.
type Watcher interface {
	Subscribe() (<-chan jobstore.Event, func())
}
