package template

import (
	"embed"
	"net/http"

	stdtemplate "html/template"

	"github.com/0x13a/jobservice/internal/job"
	humanize "github.com/dustin/go-humanize"
	"github.com/dustin/go-humanize/english"
	"github.com/microcosm-cc/bluemonday"
	blackfriday "gopkg.in/russross/blackfriday.v2"
)

type Template struct {
	templates *stdtemplate.Template
	funcMap   stdtemplate.FuncMap
	policy    *bluemonday.Policy
}

func NewTemplate(fs embed.FS) *Template {
	t := &Template{policy: bluemonday.UGCPolicy()}
	t.funcMap = stdtemplate.FuncMap{
		"humannumber": func(n int) string {
			return humanize.Comma(int64(n))
		},
		"plural": func(n int, singular string) string {
			return english.PluralWord(n, singular, "")
		},
		"jobanchor": job.Anchor,
		"markdown": t.MarkdownToHTML,
	}
	t.templates = stdtemplate.Must(stdtemplate.New("stdtmpl").Funcs(t.funcMap).ParseFS(fs, "views/*.html"))
	return t
}

func (t *Template) Render(w http.ResponseWriter, status int, name string, data interface{}) error {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	return t.templates.ExecuteTemplate(w, name, data)
}

// MarkdownToHTML renders s and strips anything the UGC policy does not allow.
func (t *Template) MarkdownToHTML(s string) stdtemplate.HTML {
	renderer := blackfriday.NewHTMLRenderer(blackfriday.HTMLRendererParameters{
		Flags: blackfriday.Safelink |
			blackfriday.NofollowLinks |
			blackfriday.NoreferrerLinks |
			blackfriday.HrefTargetBlank,
	})
	out := blackfriday.Run([]byte(s), blackfriday.WithRenderer(renderer))
	return stdtemplate.HTML(t.policy.SanitizeBytes(out))
}
