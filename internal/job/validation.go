package job

import (
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
)

var (
	ErrInvalidExp     = errors.New("years of experience must be a whole number of zero or more")
	ErrMissingField   = errors.New("required field is empty")
	validate          = validator.New()
	fieldDisplayNames = map[string]string{
		"Title":       "title",
		"Description": "description",
		"Company":     "company",
		"Location":    "location",
		"Exp":         "years of experience",
	}
)

// ParseExp parses the experience input. Blank, fractional and negative values are rejected.
func ParseExp(s string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, errors.Wrapf(ErrInvalidExp, "parse %q", s)
	}
	if n < 0 {
		return 0, errors.Wrapf(ErrInvalidExp, "negative value %d", n)
	}
	return n, nil
}

// Validate checks required fields and the experience lower bound.
func (rq JobRq) Validate() error {
	rq.Title = strings.TrimSpace(rq.Title)
	rq.Description = strings.TrimSpace(rq.Description)
	rq.Company = strings.TrimSpace(rq.Company)
	rq.Location = strings.TrimSpace(rq.Location)
	err := validate.Struct(rq)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return errors.Wrap(err, "validate job request")
	}
	first := fieldErrs[0]
	name, ok := fieldDisplayNames[first.Field()]
	if !ok {
		name = strings.ToLower(first.Field())
	}
	if first.Tag() == "min" {
		return errors.Wrap(ErrInvalidExp, name)
	}
	return errors.Wrap(ErrMissingField, name)
}
