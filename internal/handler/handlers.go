package handler

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/0x13a/jobservice/internal/board"
	"github.com/0x13a/jobservice/internal/job"
	"github.com/0x13a/jobservice/internal/server"
	"github.com/0x13a/jobservice/static"
	"github.com/gorilla/feeds"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

func requestLogger(r *http.Request) zerolog.Logger {
	return *zerolog.Ctx(r.Context())
}

func IndexPageHandler(svr server.Server, src board.Source) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log := requestLogger(r)
		term := svr.SearchTerm(r)
		// plain form submission without htmx
		if kw, ok := r.URL.Query()["keyword"]; ok {
			term = strings.TrimSpace(kw[0])
			if err := svr.SetSearchTerm(w, r, term); err != nil {
				svr.Log(err, "unable to save search term")
			}
		}

		listing := board.NewListing(src, svr.GetConfig().JobsAPIURL, log)
		search := board.NewSearch(src, log)
		search.SetInput(term)

		var g errgroup.Group
		g.Go(func() error {
			listing.Load(r.Context())
			return nil
		})
		if term != "" {
			g.Go(func() error {
				search.Commit(r.Context(), term)
				return nil
			})
		}
		g.Wait()

		err := svr.Render(w, http.StatusOK, "index.html", map[string]interface{}{
			"Listing": listing.Snapshot(),
			"Search":  search.Snapshot(),
			"Form":    board.NewCreateForm(src, log).Snapshot(),
		})
		if err != nil {
			svr.Log(err, "unable to render index page")
		}
	}
}

func ListingFragmentHandler(svr server.Server, src board.Source) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		listing := board.NewListing(src, svr.GetConfig().JobsAPIURL, requestLogger(r))
		listing.Load(r.Context())
		if err := svr.Render(w, http.StatusOK, "listing", map[string]interface{}{
			"Listing": listing.Snapshot(),
		}); err != nil {
			svr.Log(err, "unable to render listing")
		}
	}
}

// SearchFragmentHandler commits the keyword when one is given and otherwise
// re-runs the search kept in the session. An empty keyword clears the search.
func SearchFragmentHandler(svr server.Server, src board.Source) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !server.IsHTMX(r) {
			svr.Redirect(w, r, http.StatusSeeOther, "/?"+r.URL.RawQuery)
			return
		}
		search := board.NewSearch(src, requestLogger(r))
		term := svr.SearchTerm(r)
		if kw, ok := r.URL.Query()["keyword"]; ok {
			search.SetInput(kw[0])
			term = strings.TrimSpace(kw[0])
			if err := svr.SetSearchTerm(w, r, term); err != nil {
				svr.Log(err, "unable to save search term")
			}
		} else {
			search.SetInput(term)
		}
		search.Commit(r.Context(), term)

		if err := svr.Render(w, http.StatusOK, "search", map[string]interface{}{
			"Search": search.Snapshot(),
		}); err != nil {
			svr.Log(err, "unable to render search")
		}
	}
}

func ClearSearchHandler(svr server.Server, src board.Source) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := svr.SetSearchTerm(w, r, ""); err != nil {
			svr.Log(err, "unable to clear search term")
		}
		search := board.NewSearch(src, requestLogger(r))
		search.Clear()
		if err := svr.Render(w, http.StatusOK, "search", map[string]interface{}{
			"Search": search.Snapshot(),
		}); err != nil {
			svr.Log(err, "unable to render search")
		}
	}
}

func formFromRequest(src board.Source, r *http.Request) *board.CreateForm {
	form := board.NewCreateForm(src, requestLogger(r))
	form.Open()
	form.SetValues(board.FormValues{
		Title:       r.PostForm.Get("title"),
		Company:     r.PostForm.Get("company"),
		Description: r.PostForm.Get("description"),
		Location:    r.PostForm.Get("location"),
		Exp:         r.PostForm.Get("exp"),
	})
	form.SetSkills(job.FromValues(r.PostForm["skills"]))
	form.SetSkillInput(r.PostForm.Get("skill_input"))
	return form
}

// CreateJobHandler always answers 200 so htmx swaps the form, inline errors included.
func CreateJobHandler(svr server.Server, src board.Source) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			svr.TEXT(w, http.StatusBadRequest, "invalid form")
			return
		}
		form := formFromRequest(src, r)
		created, err := form.Submit(r.Context())
		if err == nil {
			if created != nil {
				zerolog.Ctx(r.Context()).Info().Str("id", created.ID).Msg("job created")
			}
			if !server.IsHTMX(r) {
				svr.Redirect(w, r, http.StatusSeeOther, "/")
				return
			}
			svr.Trigger(w, server.EventJobsChanged, server.EventCloseCreate)
		}
		if err := svr.Render(w, http.StatusOK, "create-form", map[string]interface{}{
			"Form": form.Snapshot(),
		}); err != nil {
			svr.Log(err, "unable to render create form")
		}
	}
}

// EditSkillsHandler adds the typed skill, or removes the one named by remove_skill.
func EditSkillsHandler(svr server.Server, src board.Source) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			svr.TEXT(w, http.StatusBadRequest, "invalid form")
			return
		}
		form := formFromRequest(src, r)
		if skill, ok := r.PostForm["remove_skill"]; ok {
			form.RemoveSkill(skill[0])
		} else {
			form.AddSkill()
		}
		if err := svr.Render(w, http.StatusOK, "create-form", map[string]interface{}{
			"Form": form.Snapshot(),
		}); err != nil {
			svr.Log(err, "unable to render create form")
		}
	}
}

// DeleteJobHandler answers an empty body on success so htmx drops the card.
// On failure the card, or the search row when view=search, comes back with
// the error inline.
func DeleteJobHandler(svr server.Server, src board.Source) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := mux.Vars(r)["id"]
		listing := board.NewListing(src, svr.GetConfig().JobsAPIURL, requestLogger(r))
		if err := listing.Delete(r.Context(), id); err == nil {
			svr.Trigger(w, server.EventJobsChanged)
			w.WriteHeader(http.StatusOK)
			return
		}

		// the job is still there, look it up to render it again
		failed := job.Job{ID: id}
		if listing.Load(r.Context()) == nil {
			for _, j := range listing.Jobs() {
				if j.ID == id {
					failed = j
					break
				}
			}
		}

		if r.URL.Query().Get("view") == "search" {
			if err := svr.Render(w, http.StatusOK, "search-row-fragment", map[string]interface{}{
				"Result": board.SearchResult{Job: failed, Error: board.MsgDeleteFailed},
			}); err != nil {
				svr.Log(err, "unable to render search row")
			}
			return
		}

		card := job.NewCard(failed)
		card.Error = board.MsgDeleteFailed
		if err := svr.Render(w, http.StatusOK, "card-fragment", map[string]interface{}{
			"Card": card,
		}); err != nil {
			svr.Log(err, "unable to render job card")
		}
	}
}

func ServeRSSFeed(svr server.Server, src board.Source) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		jobs, err := src.List(r.Context())
		if err != nil {
			svr.Log(err, "unable to retrieve jobs for RSS Feed")
			svr.XML(w, http.StatusInternalServerError, []byte{})
			return
		}
		cfg := svr.GetConfig()
		siteURL := cfg.URLProtocol + cfg.SiteHost
		home, err := url.Parse(siteURL + "/")
		if err != nil {
			svr.Log(err, "unable to parse site url for RSS Feed")
			svr.XML(w, http.StatusInternalServerError, []byte{})
			return
		}
		feed := &feeds.Feed{
			Title:       cfg.SiteName,
			Link:        &feeds.Link{Href: siteURL},
			Description: cfg.SiteTagline,
			Author:      &feeds.Author{Name: cfg.SiteName},
			Created:     time.Now(),
		}
		for _, j := range jobs {
			link := *home
			link.Fragment = job.Anchor(j.ID, j.Title)
			feed.Items = append(feed.Items, &feeds.Item{
				Id:          j.ID,
				Title:       fmt.Sprintf("%s with %s - %s", j.Title, j.Company, j.Location),
				Link:        &feeds.Link{Href: link.String()},
				Description: string(svr.MarkdownToHTML(jobFeedDescription(j))),
				Author:      &feeds.Author{Name: j.Company},
			})
		}
		rssFeed, err := feed.ToRss()
		if err != nil {
			svr.Log(err, "unable to convert rss feed to xml")
			svr.XML(w, http.StatusInternalServerError, []byte{})
			return
		}
		svr.XML(w, http.StatusOK, []byte(rssFeed))
	}
}

func jobFeedDescription(j job.Job) string {
	desc := j.Description
	if len(j.Skills) > 0 {
		desc += "\n\n**Skills:** " + strings.Join(j.Skills, ", ")
	}
	return desc + fmt.Sprintf("\n\n**Experience:** %d+ years", j.Exp)
}

func RobotsTxtHandler(svr server.Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		svr.TEXT(w, http.StatusOK, static.RobotsTxt)
	}
}

func HealthHandler(svr server.Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		svr.JSON(w, http.StatusOK, map[string]string{
			"status":   "ok",
			"jobs_api": svr.GetConfig().JobsAPIURL,
		})
	}
}
