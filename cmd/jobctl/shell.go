package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/0x13a/jobservice/internal/board"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
)

const shellHelp = `commands:
  list               show the listing
  search <keyword>   search in the background, newer searches win
  clear              clear the search
  results            show the current search results
  delete <id>        delete a job
  create             fill in and submit a new job
  help | quit
`

// session holds the long lived views of one interactive shell. The listing
// and the search follow store events, so a delete or create from any command
// shows up in both.
type session struct {
	*app
	listing    *board.Listing
	searchView *board.Search
	form       *board.CreateForm
	lines      chan string
	done       chan struct{}

	outMu sync.Mutex
	wg    sync.WaitGroup
}

func (a *app) shell(ctx context.Context, in io.Reader) error {
	s := &session{
		app:        a,
		listing:    board.NewListing(a.store, a.apiURL, a.log),
		searchView: board.NewSearch(a.store, a.log),
		form:       board.NewCreateForm(a.store, a.log),
		lines:      make(chan string),
		done:       make(chan struct{}),
	}
	defer close(s.done)
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// stdin cannot be interrupted, so the reader lives outside the group
	go s.read(in)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.listing.Watch(ctx, a.store)
		return nil
	})
	g.Go(func() error {
		s.searchView.Watch(ctx, a.store)
		return nil
	})
	g.Go(func() error {
		defer cancel()
		s.listing.Load(ctx)
		s.printf("%s", shellHelp)
		return s.loop(ctx)
	})
	err := g.Wait()
	s.wg.Wait()
	return err
}

func (s *session) printf(format string, args ...interface{}) {
	s.outMu.Lock()
	defer s.outMu.Unlock()
	fmt.Fprintf(s.out, format, args...)
}

func (s *session) locked(fn func()) {
	s.outMu.Lock()
	defer s.outMu.Unlock()
	fn()
}

func (s *session) read(in io.Reader) {
	defer close(s.lines)
	sc := bufio.NewScanner(in)
	for sc.Scan() {
		select {
		case s.lines <- sc.Text():
		case <-s.done:
			return
		}
	}
	if err := sc.Err(); err != nil {
		s.log.Warn().Err(err).Msg("unable to read input")
	}
}

// next waits for a line of input. It reports false once input ends or ctx is done.
func (s *session) next(ctx context.Context) (string, bool) {
	select {
	case <-ctx.Done():
		return "", false
	case line, ok := <-s.lines:
		return line, ok
	}
}

func (s *session) prompt(ctx context.Context, label string) (string, bool) {
	s.printf("%s: ", label)
	return s.next(ctx)
}

func (s *session) loop(ctx context.Context) error {
	for {
		s.printf("> ")
		line, ok := s.next(ctx)
		if !ok {
			return nil
		}
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		arg := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(line), fields[0]))
		switch fields[0] {
		case "quit", "exit":
			return nil
		case "help":
			s.printf("%s", shellHelp)
		case "list":
			s.locked(func() { s.printListing(s.listing.Snapshot()) })
		case "search":
			s.startSearch(ctx, arg)
		case "clear":
			s.searchView.Clear()
			s.printf("search cleared\n")
		case "results":
			s.locked(func() { s.printSearch(s.searchView.Snapshot()) })
		case "delete":
			if arg == "" {
				s.printf("delete needs an id\n")
				continue
			}
			if err := s.listing.Delete(ctx, arg); err != nil {
				s.printf("%s\n", board.MsgDeleteFailed)
				continue
			}
			s.printf("deleted %s\n", arg)
		case "create":
			if !s.fillForm(ctx) {
				return nil
			}
			created, err := s.form.Submit(ctx)
			if err != nil {
				s.printf("%s\n", s.form.Snapshot().Error)
				continue
			}
			if created != nil {
				s.printf("created %s\n", created.ID)
			}
		default:
			s.printf("unknown command %q, try help\n", fields[0])
		}
	}
}

// startSearch commits the keyword without blocking the prompt. Results of a
// search overtaken by a newer one are never printed.
func (s *session) startSearch(ctx context.Context, keyword string) {
	if strings.TrimSpace(keyword) == "" {
		s.printf("type a keyword to search\n")
		return
	}
	s.searchView.SetInput(keyword)
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		err := s.searchView.Submit(ctx)
		if errors.Is(err, board.ErrStale) || ctx.Err() != nil {
			return
		}
		s.locked(func() {
			fmt.Fprintln(s.out)
			s.printSearch(s.searchView.Snapshot())
		})
	}()
}

// fillForm prompts for each field. Values typed earlier are kept when a
// field is left blank, so a failed submit can be retried.
func (s *session) fillForm(ctx context.Context) bool {
	s.form.Open()
	prev := s.form.Snapshot().Values
	fields := []struct {
		label string
		dst   *string
	}{
		{"Job Title", &prev.Title},
		{"Company", &prev.Company},
		{"Description", &prev.Description},
		{"Location", &prev.Location},
		{"Years of Experience", &prev.Exp},
	}
	for _, f := range fields {
		label := f.label
		if *f.dst != "" {
			label = fmt.Sprintf("%s [%s]", f.label, *f.dst)
		}
		v, ok := s.prompt(ctx, label)
		if !ok {
			return false
		}
		if strings.TrimSpace(v) != "" {
			*f.dst = v
		}
	}
	s.form.SetValues(prev)
	for {
		v, ok := s.prompt(ctx, "Skill (blank to finish, -name to remove)")
		if !ok {
			return false
		}
		v = strings.TrimSpace(v)
		if v == "" {
			return true
		}
		if strings.HasPrefix(v, "-") {
			s.form.RemoveSkill(strings.TrimPrefix(v, "-"))
		} else {
			s.form.SetSkillInput(v)
			if !s.form.AddSkill() {
				s.printf("skill %q already added\n", v)
			}
		}
		s.printf("skills: %s\n", strings.Join(s.form.Snapshot().Values.Skills, ", "))
	}
}
