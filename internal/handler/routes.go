package handler

import (
	"github.com/0x13a/jobservice/internal/board"
	"github.com/0x13a/jobservice/internal/server"
)

func RegisterRoutes(svr server.Server, src board.Source) {
	svr.RegisterRoute("/", IndexPageHandler(svr, src), []string{"GET"})
	svr.RegisterRoute("/rss", ServeRSSFeed(svr, src), []string{"GET"})
	svr.RegisterRoute("/healthz", HealthHandler(svr), []string{"GET"})
	svr.RegisterRoute("/robots.txt", RobotsTxtHandler(svr), []string{"GET"})

	// listing fragment, re-fetched on jobsChanged
	svr.RegisterRoute("/x/jobs", ListingFragmentHandler(svr, src), []string{"GET"})

	// create job
	svr.RegisterRoute("/x/jobs", CreateJobHandler(svr, src), []string{"POST"})

	// add or remove a skill tag on the create form
	svr.RegisterRoute("/x/jobs/skills", EditSkillsHandler(svr, src), []string{"POST"})

	// delete job, ?view=search answers with a search row instead of a card
	svr.RegisterRoute("/x/jobs/{id}", DeleteJobHandler(svr, src), []string{"DELETE"})

	// search fragment and clear
	svr.RegisterRoute("/x/search", SearchFragmentHandler(svr, src), []string{"GET"})
	svr.RegisterRoute("/x/search/clear", ClearSearchHandler(svr, src), []string{"POST"})
}
