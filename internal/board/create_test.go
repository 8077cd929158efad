package board

import (
	"context"
	"testing"

	"github.com/0x13a/jobservice/internal/job"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func filledForm(src Source) *CreateForm {
	f := NewCreateForm(src, zerolog.Nop())
	f.Open()
	f.SetValues(FormValues{
		Title:       "Backend Developer",
		Company:     "Tech Corp",
		Description: "APIs in Go",
		Location:    "Remote",
		Exp:         "3",
	})
	return f
}

func TestCreateForm_SkillsInInsertionOrder(t *testing.T) {
	src := newFakeSource()
	f := filledForm(src)
	for _, s := range []string{"Go", "SQL"} {
		f.SetSkillInput(s)
		require.True(t, f.AddSkill())
	}

	_, err := f.Submit(context.Background())
	require.NoError(t, err)
	require.Len(t, src.created, 1)
	assert.Equal(t, []string{"Go", "SQL"}, src.created[0].Skills)
	assert.Equal(t, 3, src.created[0].Exp)
}

func TestCreateForm_DuplicateSkillIsNoop(t *testing.T) {
	f := filledForm(newFakeSource())
	f.SetSkillInput("Go")
	require.True(t, f.AddSkill())
	assert.Empty(t, f.Snapshot().SkillInput)

	f.SetSkillInput("Go")
	assert.False(t, f.AddSkill())
	snap := f.Snapshot()
	assert.Equal(t, job.Skills{"Go"}, snap.Values.Skills)
	assert.Equal(t, "Go", snap.SkillInput)

	f.SetSkillInput("  ")
	assert.False(t, f.AddSkill())
	assert.Len(t, f.Snapshot().Values.Skills, 1)
}

func TestCreateForm_RemoveSkill(t *testing.T) {
	f := filledForm(newFakeSource())
	f.SetSkills(job.Skills{"Go", "SQL", "Docker"})
	f.RemoveSkill("SQL")
	assert.Equal(t, job.Skills{"Go", "Docker"}, f.Snapshot().Values.Skills)
}

func TestCreateForm_SuccessResetsAndCloses(t *testing.T) {
	src := newFakeSource()
	f := filledForm(src)
	f.SetSkills(job.Skills{"Go"})

	created, err := f.Submit(context.Background())
	require.NoError(t, err)
	require.NotNil(t, created)
	assert.Equal(t, FormSnapshot{Values: FormValues{Skills: job.Skills{}}}, f.Snapshot())
}

func TestCreateForm_FailureKeepsValuesAndStaysOpen(t *testing.T) {
	src := newFakeSource()
	src.createErr = errAPI
	f := filledForm(src)
	f.SetSkills(job.Skills{"Go"})

	_, err := f.Submit(context.Background())
	require.Error(t, err)
	snap := f.Snapshot()
	assert.True(t, snap.Open)
	assert.False(t, snap.Submitting)
	assert.Equal(t, MsgCreateFailed, snap.Error)
	assert.Equal(t, "Backend Developer", snap.Values.Title)
	assert.Equal(t, job.Skills{"Go"}, snap.Values.Skills)

	src.createErr = nil
	_, err = f.Submit(context.Background())
	require.NoError(t, err)
	assert.Empty(t, f.Snapshot().Error)
}

func TestCreateForm_ValidationStopsRequest(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(v *FormValues)
		wantErr error
		wantMsg string
	}{
		{"unparsable exp", func(v *FormValues) { v.Exp = "three" }, job.ErrInvalidExp, MsgInvalidExp},
		{"negative exp", func(v *FormValues) { v.Exp = "-1" }, job.ErrInvalidExp, MsgInvalidExp},
		{"blank title", func(v *FormValues) { v.Title = " " }, job.ErrMissingField, "Please fill in the title."},
		{"blank location", func(v *FormValues) { v.Location = "" }, job.ErrMissingField, "Please fill in the location."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := newFakeSource()
			f := NewCreateForm(src, zerolog.Nop())
			v := FormValues{Title: "t", Company: "c", Description: "d", Location: "l", Exp: "1"}
			tt.mutate(&v)
			f.SetValues(v)

			_, err := f.Submit(context.Background())
			assert.True(t, errors.Is(err, tt.wantErr))
			assert.Equal(t, tt.wantMsg, f.Snapshot().Error)
			assert.Empty(t, src.created)
		})
	}
}

func TestCreateForm_CloseKeepsValues(t *testing.T) {
	f := filledForm(newFakeSource())
	f.Close()
	snap := f.Snapshot()
	assert.False(t, snap.Open)
	assert.Equal(t, "Tech Corp", snap.Values.Company)
}
