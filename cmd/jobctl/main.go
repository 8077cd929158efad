package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/0x13a/jobservice/internal/board"
	"github.com/0x13a/jobservice/internal/job"
	"github.com/0x13a/jobservice/internal/jobstore"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
)

const usage = `usage: jobctl [-api URL] [-timeout 10s] <command> [args]

commands:
  list                      show every job
  search <keyword>          search jobs by keyword
  delete <id>               delete a job
  create -title T -company C -description D -location L -exp N [-skill S ...]
  shell                     interactive session
`

type skillFlags []string

func (s *skillFlags) String() string { return strings.Join(*s, ",") }

func (s *skillFlags) Set(v string) error {
	*s = append(*s, v)
	return nil
}

type app struct {
	store  *jobstore.Store
	apiURL string
	log    zerolog.Logger
	out    io.Writer
}

func main() {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		fmt.Fprintf(os.Stderr, "unable to load .env: %v\n", err)
		os.Exit(1)
	}
	fs := flag.NewFlagSet("jobctl", flag.ExitOnError)
	fs.Usage = func() { fmt.Fprint(os.Stderr, usage) }
	apiURL := fs.String("api", envOr("JOBS_API_URL", "http://localhost:8080"), "jobs API base URL")
	timeout := fs.Duration("timeout", 10*time.Second, "per request timeout")
	verbose := fs.Bool("v", false, "log debug output to stderr")
	fs.Parse(os.Args[1:])
	if fs.NArg() == 0 {
		fs.Usage()
		os.Exit(2)
	}

	level := zerolog.WarnLevel
	if *verbose {
		level = zerolog.DebugLevel
	}
	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).Level(level).With().Timestamp().Logger()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	backend, err := jobstore.OpenBackend(ctx, jobstore.RedisOptions{
		Addr:     os.Getenv("REDIS_URL"),
		Password: os.Getenv("REDIS_PASSWORD"),
		TTL:      time.Minute,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("unable to open job cache")
	}
	defer backend.Close()

	a := &app{
		store:  jobstore.New(job.NewRepository(*apiURL, *timeout), backend, log),
		apiURL: strings.TrimRight(*apiURL, "/"),
		log:    log,
		out:    os.Stdout,
	}
	if err := a.run(ctx, fs.Arg(0), fs.Args()[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func (a *app) run(ctx context.Context, cmd string, args []string) error {
	switch cmd {
	case "list":
		return a.list(ctx)
	case "search":
		if len(args) == 0 {
			return fmt.Errorf("search needs a keyword")
		}
		return a.search(ctx, strings.Join(args, " "))
	case "delete":
		if len(args) != 1 {
			return fmt.Errorf("delete needs exactly one id")
		}
		return a.delete(ctx, args[0])
	case "create":
		return a.create(ctx, args)
	case "shell":
		return a.shell(ctx, os.Stdin)
	}
	return fmt.Errorf("unknown command %q\n\n%s", cmd, usage)
}

func (a *app) list(ctx context.Context) error {
	listing := board.NewListing(a.store, a.apiURL, a.log)
	listing.Load(ctx)
	a.printListing(listing.Snapshot())
	if listing.Snapshot().State == board.Failed {
		return fmt.Errorf("list failed")
	}
	return nil
}

func (a *app) search(ctx context.Context, keyword string) error {
	s := board.NewSearch(a.store, a.log)
	s.SetInput(keyword)
	err := s.Submit(ctx)
	a.printSearch(s.Snapshot())
	return err
}

func (a *app) delete(ctx context.Context, id string) error {
	listing := board.NewListing(a.store, a.apiURL, a.log)
	if err := listing.Delete(ctx, id); err != nil {
		return fmt.Errorf("%s: %v", board.MsgDeleteFailed, err)
	}
	fmt.Fprintf(a.out, "deleted %s\n", id)
	return nil
}

func (a *app) create(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("create", flag.ContinueOnError)
	fs.SetOutput(a.out)
	var v board.FormValues
	var skills skillFlags
	fs.StringVar(&v.Title, "title", "", "job title")
	fs.StringVar(&v.Company, "company", "", "company name")
	fs.StringVar(&v.Description, "description", "", "job description")
	fs.StringVar(&v.Location, "location", "", "job location")
	fs.StringVar(&v.Exp, "exp", "", "years of experience")
	fs.Var(&skills, "skill", "required skill, repeatable")
	if err := fs.Parse(args); err != nil {
		return err
	}

	form := board.NewCreateForm(a.store, a.log)
	form.Open()
	form.SetValues(v)
	for _, s := range skills {
		form.SetSkillInput(s)
		form.AddSkill()
	}
	created, err := form.Submit(ctx)
	if err != nil {
		return fmt.Errorf("%s", form.Snapshot().Error)
	}
	if created != nil {
		fmt.Fprintf(a.out, "created %s\n", created.ID)
	} else {
		fmt.Fprintln(a.out, "created")
	}
	return nil
}

func (a *app) printListing(snap board.ListingSnapshot) {
	switch snap.State {
	case board.Failed:
		fmt.Fprintln(a.out, snap.Message)
		return
	case board.Empty:
		fmt.Fprintf(a.out, "%s. %s.\n", snap.Message, snap.Hint)
		return
	}
	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTITLE\tCOMPANY\tLOCATION\tEXP\tSKILLS")
	for _, c := range snap.Cards {
		skills := strings.Join(c.Badges, ", ")
		if c.Overflow > 0 {
			skills += fmt.Sprintf(" +%d", c.Overflow)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d+ years\t%s\n", c.ID, c.Title, c.Company, c.Location, c.Exp, skills)
		if c.Error != "" {
			fmt.Fprintf(tw, "\t! %s\t\t\t\t\n", c.Error)
		}
	}
	tw.Flush()
}

func (a *app) printSearch(snap board.SearchSnapshot) {
	if snap.Term != "" {
		fmt.Fprintf(a.out, "Searching for: %s\n", snap.Term)
	}
	switch {
	case snap.Error != "":
		fmt.Fprintln(a.out, snap.Error)
	case snap.NoResults != "":
		fmt.Fprintln(a.out, snap.NoResults)
	case len(snap.Results) > 0:
		fmt.Fprintln(a.out, snap.Header)
		tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
		for _, r := range snap.Results {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d years exp\t%s\n",
				r.Job.ID, r.Job.Title, r.Job.Company, r.Job.Location, r.Job.Exp, strings.Join(r.Job.Skills, ", "))
		}
		tw.Flush()
	}
}
