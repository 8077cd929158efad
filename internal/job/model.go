package job

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/gosimple/slug"
)

const (
	// MaxCardBadges is the number of skill badges shown on a listing card
	// before the remainder collapses into an overflow badge.
	MaxCardBadges = 4
	// CardSummaryLength is the rune length of the description shown on a card.
	CardSummaryLength = 160
)

// Job is a posting as returned by the jobs API. ID is issued by the server.
type Job struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Company     string   `json:"company"`
	Exp         int      `json:"exp"`
	Skills      []string `json:"skills"`
	Location    string   `json:"location"`
}

// JobRq is the creation payload. It never carries an id.
type JobRq struct {
	Title       string   `json:"title" validate:"required"`
	Description string   `json:"description" validate:"required"`
	Company     string   `json:"company" validate:"required"`
	Exp         int      `json:"exp" validate:"min=0"`
	Skills      []string `json:"skills"`
	Location    string   `json:"location" validate:"required"`
}

type Card struct {
	ID       string
	Title    string
	Company  string
	Summary  string
	Badges   []string
	Overflow int
	Location string
	Exp      int
	Deleting bool
	Error    string
}

func NewCard(j Job) Card {
	c := Card{
		ID:       j.ID,
		Title:    j.Title,
		Company:  j.Company,
		Summary:  Summarize(j.Description, CardSummaryLength),
		Location: j.Location,
		Exp:      j.Exp,
	}
	if len(j.Skills) > MaxCardBadges {
		c.Badges = append([]string{}, j.Skills[:MaxCardBadges]...)
		c.Overflow = len(j.Skills) - MaxCardBadges
	} else {
		c.Badges = append([]string{}, j.Skills...)
	}
	return c
}

// Anchor is the element id of a job on the board, also used as the
// fragment of links pointing at it.
func Anchor(id, title string) string {
	if s := slug.Make(title); s != "" {
		return fmt.Sprintf("job-%s-%s", s, id)
	}
	return "job-" + id
}

// Summarize cuts s to at most n runes, ending with an ellipsis when cut.
func Summarize(s string, n int) string {
	s = strings.TrimSpace(s)
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return strings.TrimRightFunc(string(runes[:n]), isSpace) + "…"
}

func isSpace(r rune) bool {
	return r == ' ' || r == '\n' || r == '\t' || r == '\r'
}

// WithoutID returns jobs minus the entry with the given id, keeping order.
func WithoutID(jobs []Job, id string) []Job {
	out := make([]Job, 0, len(jobs))
	for _, j := range jobs {
		if j.ID != id {
			out = append(out, j)
		}
	}
	return out
}
