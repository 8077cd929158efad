package board

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/0x13a/jobservice/internal/job"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// FormValues are the creation form inputs as typed.
type FormValues struct {
	Title       string
	Company     string
	Description string
	Location    string
	Exp         string
	Skills      job.Skills
}

// Request converts the inputs into a creation payload, validating them first.
func (v FormValues) Request() (job.JobRq, error) {
	rq := job.JobRq{
		Title:       strings.TrimSpace(v.Title),
		Description: strings.TrimSpace(v.Description),
		Company:     strings.TrimSpace(v.Company),
		Skills:      append([]string{}, v.Skills...),
		Location:    strings.TrimSpace(v.Location),
	}
	if err := rq.Validate(); err != nil {
		return job.JobRq{}, err
	}
	exp, err := job.ParseExp(v.Exp)
	if err != nil {
		return job.JobRq{}, err
	}
	rq.Exp = exp
	return rq, nil
}

// CreateForm is the modal job creation form.
type CreateForm struct {
	src Source
	log zerolog.Logger

	mu         sync.Mutex
	values     FormValues
	skillInput string
	open       bool
	submitting bool
	err        string
}

type FormSnapshot struct {
	Values     FormValues
	SkillInput string
	Open       bool
	Submitting bool
	Error      string
}

func NewCreateForm(src Source, log zerolog.Logger) *CreateForm {
	return &CreateForm{src: src, log: log}
}

func (f *CreateForm) Open() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.open = true
}

// Close hides the form and keeps what was typed.
func (f *CreateForm) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.open = false
}

// SetValues replaces the text fields; the skill list is left alone.
func (f *CreateForm) SetValues(v FormValues) {
	f.mu.Lock()
	defer f.mu.Unlock()
	skills := f.values.Skills
	f.values = v
	f.values.Skills = skills
}

func (f *CreateForm) SetSkills(skills job.Skills) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.values.Skills = job.FromValues(skills)
}

func (f *CreateForm) SetSkillInput(s string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.skillInput = s
}

// AddSkill moves the skill input into the list. The input is cleared only when the skill was added.
func (f *CreateForm) AddSkill() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.values.Skills.Add(f.skillInput) {
		return false
	}
	f.skillInput = ""
	return true
}

func (f *CreateForm) RemoveSkill(skill string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.values.Skills.Remove(skill)
}

// Submit validates and sends the form. On success the form is reset and closed;
// on failure the values stay for a retry and the error is shown inline.
func (f *CreateForm) Submit(ctx context.Context) (*job.Job, error) {
	f.mu.Lock()
	if f.submitting {
		f.mu.Unlock()
		return nil, ErrBusy
	}
	f.err = ""
	rq, err := f.values.Request()
	if err != nil {
		f.err = validationMessage(err)
		f.mu.Unlock()
		return nil, err
	}
	f.submitting = true
	f.mu.Unlock()

	created, err := f.src.Create(ctx, rq)

	f.mu.Lock()
	defer f.mu.Unlock()
	f.submitting = false
	if err != nil {
		f.log.Error().Err(err).Str("title", rq.Title).Msg("unable to create job")
		f.err = MsgCreateFailed
		return nil, err
	}
	f.reset()
	f.open = false
	return created, nil
}

func (f *CreateForm) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reset()
}

func (f *CreateForm) Snapshot() FormSnapshot {
	f.mu.Lock()
	defer f.mu.Unlock()
	v := f.values
	v.Skills = append(job.Skills{}, f.values.Skills...)
	return FormSnapshot{
		Values:     v,
		SkillInput: f.skillInput,
		Open:       f.open,
		Submitting: f.submitting,
		Error:      f.err,
	}
}

func (f *CreateForm) reset() {
	f.values = FormValues{}
	f.skillInput = ""
	f.err = ""
}

func validationMessage(err error) string {
	if errors.Is(err, job.ErrInvalidExp) {
		return MsgInvalidExp
	}
	if errors.Is(err, job.ErrMissingField) {
		field := strings.TrimSuffix(err.Error(), ": "+job.ErrMissingField.Error())
		return fmt.Sprintf(MsgMissingField, field)
	}
	return MsgCreateFailed
}
