package job

import (
	"strings"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCard_Badges(t *testing.T) {
	tests := []struct {
		name     string
		skills   []string
		badges   []string
		overflow int
	}{
		{"none", nil, []string{}, 0},
		{"exactly four", []string{"a", "b", "c", "d"}, []string{"a", "b", "c", "d"}, 0},
		{"six", []string{"a", "b", "c", "d", "e", "f"}, []string{"a", "b", "c", "d"}, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewCard(Job{ID: "1", Skills: tt.skills})
			assert.Equal(t, tt.badges, c.Badges)
			assert.Equal(t, tt.overflow, c.Overflow)
		})
	}
}

func TestSummarize(t *testing.T) {
	assert.Equal(t, "short", Summarize("  short  ", 10))
	long := strings.Repeat("é", 200)
	got := Summarize(long, CardSummaryLength)
	assert.True(t, strings.HasSuffix(got, "…"))
	assert.Equal(t, CardSummaryLength+1, len([]rune(got)))
}

func TestAnchor(t *testing.T) {
	assert.Equal(t, "job-backend-java-developer-1", Anchor("1", "Backend Java Developer"))
	assert.Equal(t, "job-7", Anchor("7", "!!!"))
}

func TestWithoutID_KeepsOrder(t *testing.T) {
	jobs := []Job{{ID: "a"}, {ID: "b"}, {ID: "c"}, {ID: "d"}}
	got := WithoutID(jobs, "b")
	assert.Equal(t, []Job{{ID: "a"}, {ID: "c"}, {ID: "d"}}, got)
	assert.Len(t, jobs, 4)
}

func TestSkills_AddAndRemove(t *testing.T) {
	var s Skills
	assert.True(t, s.Add(" Go "))
	assert.True(t, s.Add("SQL"))
	assert.False(t, s.Add("Go"))
	assert.False(t, s.Add("   "))
	assert.True(t, s.Add("go"))
	assert.Equal(t, Skills{"Go", "SQL", "go"}, s)

	s.Remove("SQL")
	assert.Equal(t, Skills{"Go", "go"}, s)
	s.Remove("missing")
	assert.Len(t, s, 2)
}

func TestFromValues(t *testing.T) {
	assert.Equal(t, Skills{"Go", "SQL"}, FromValues([]string{"Go", "", "SQL", "Go"}))
}

func TestParseExp(t *testing.T) {
	n, err := ParseExp(" 3 ")
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	for _, in := range []string{"", "abc", "2.5", "-1"} {
		_, err := ParseExp(in)
		assert.True(t, errors.Is(err, ErrInvalidExp), in)
	}
}

func TestJobRq_Validate(t *testing.T) {
	valid := JobRq{Title: "t", Description: "d", Company: "c", Location: "l", Exp: 0}
	require.NoError(t, valid.Validate())

	missing := valid
	missing.Company = "  "
	err := missing.Validate()
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMissingField))
	assert.Contains(t, err.Error(), "company")

	negative := valid
	negative.Exp = -2
	assert.True(t, errors.Is(negative.Validate(), ErrInvalidExp))
}
