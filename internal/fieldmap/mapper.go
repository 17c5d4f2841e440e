// Package fieldmap turns form submissions into organization and person records.
package fieldmap

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"tallybridge/internal/submission"
	dErrors "tallybridge/pkg/domain-errors"
)

// ErrInvalidDateOfBirth is returned when the person's date of birth is absent
// or not in YYYY-MM-DD form.
var ErrInvalidDateOfBirth = errors.New("date of birth is missing or invalid")

// Mapper applies a fixed pair of dictionaries. It is safe for concurrent use.
type Mapper struct {
	dicts  Dictionaries
	logger *slog.Logger
}

// Option configures a Mapper.
type Option func(*Mapper)

// WithLogger sets the logger used for per-field debug output. Values are never logged.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Mapper) {
		m.logger = logger
	}
}

// New validates and copies the dictionaries.
func New(dicts Dictionaries, opts ...Option) (*Mapper, error) {
	if err := dicts.Validate(); err != nil {
		return nil, err
	}
	m := &Mapper{
		dicts:  dicts.clone(),
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m, nil
}

// Map builds both records in a single pass over the fields. Unknown keys are
// ignored and a repeated key keeps its last value.
func (m *Mapper) Map(fields []submission.FormField) (OrganizationRecord, PersonRecord, error) {
	org := newOrganizationRecord()
	person := newPersonRecord()

	for _, f := range fields {
		if attr, ok := m.dicts.Organization[f.Key]; ok {
			org.Record[attr] = f.Value
			m.logger.Debug("mapped organization field", "key", f.Key, "attribute", attr)
		}
		if attr, ok := m.dicts.Person[f.Key]; ok {
			person.Record[attr] = f.Value
			m.logger.Debug("mapped person field", "key", f.Key, "attribute", attr)
		}
	}

	dob, err := ParseDateOfBirth(person.Text(PersonDOB))
	if err != nil {
		return OrganizationRecord{}, PersonRecord{}, err
	}
	person.DOB = dob

	return org, person, nil
}

// ParseDateOfBirth splits YYYY-MM-DD into its parts without dropping zero padding.
func ParseDateOfBirth(s string) (DateOfBirth, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return DateOfBirth{}, invalidDOB("date of birth is missing")
	}
	parts := strings.Split(s, "-")
	if len(parts) != 3 || len(parts[0]) != 4 || len(parts[1]) != 2 || len(parts[2]) != 2 {
		return DateOfBirth{}, invalidDOB(fmt.Sprintf("date of birth %q is not YYYY-MM-DD", s))
	}
	month, err := strconv.Atoi(parts[1])
	if err != nil || month < 1 || month > 12 {
		return DateOfBirth{}, invalidDOB(fmt.Sprintf("date of birth %q has an invalid month", s))
	}
	day, err := strconv.Atoi(parts[2])
	if err != nil || day < 1 || day > 31 {
		return DateOfBirth{}, invalidDOB(fmt.Sprintf("date of birth %q has an invalid day", s))
	}
	if _, err := strconv.Atoi(parts[0]); err != nil {
		return DateOfBirth{}, invalidDOB(fmt.Sprintf("date of birth %q has an invalid year", s))
	}
	return DateOfBirth{Year: parts[0], Month: parts[1], Day: parts[2]}, nil
}

func invalidDOB(detail string) error {
	return dErrors.Wrap(fmt.Errorf("%w: %s", ErrInvalidDateOfBirth, detail), dErrors.CodeValidation, ErrInvalidDateOfBirth.Error())
}
