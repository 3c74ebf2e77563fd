// Package validation holds the pure request checks shared by the employee
// and poll handlers. Nothing here touches storage or the request.
package validation

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/garnizeh/staffboard/pkg/models"
)

// Field is a named form value for Required.
type Field struct {
	Name  string
	Value string
}

const requiredMessage = "This field is required."

// Required reports every field whose trimmed value is empty.
func Required(fields ...Field) error {
	ve := &ValidationError{}
	for _, f := range fields {
		if strings.TrimSpace(f.Value) == "" {
			ve.Add(f.Name, requiredMessage)
		}
	}
	return ve.Err()
}

// ParseSalary parses a submitted salary. An empty string means "keep the
// stored value" and is reported through keep rather than as an error.
// Negative values are accepted.
func ParseSalary(raw string) (value int64, keep bool, err error) {
	if raw == "" {
		return 0, true, nil
	}
	v, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil {
		return 0, false, &SalaryError{Raw: raw, Err: err}
	}
	return v, false, nil
}

// ParseDate parses an optional YYYY-MM-DD form value; empty yields nil.
func ParseDate(raw string) (*time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse(models.DateLayout, raw)
	if err != nil {
		return nil, fmt.Errorf("%q is not a valid date, use YYYY-MM-DD", raw)
	}
	return &t, nil
}

// ParseID parses a submitted primary key.
func ParseID(raw string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("field 'id' expected a number but got %q", raw)
	}
	return id, nil
}

// day truncates t to its calendar date in its own location.
func day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// IsQuestionActive reports whether q accepts votes on today's date. The
// window is inclusive on both ends and an unset bound is open.
func IsQuestionActive(q models.Question, today time.Time) bool {
	if !q.IsActive {
		return false
	}
	d := day(today)
	if q.StartDate != nil && d.Before(day(*q.StartDate)) {
		return false
	}
	if q.EndDate != nil && d.After(day(*q.EndDate)) {
		return false
	}
	return true
}

// Partition splits questions into active and inactive, keeping input order.
func Partition(questions []models.Question, today time.Time) (active, inactive []models.Question) {
	active = []models.Question{}
	inactive = []models.Question{}
	for _, q := range questions {
		if IsQuestionActive(q, today) {
			active = append(active, q)
		} else {
			inactive = append(inactive, q)
		}
	}
	return active, inactive
}

// ChoiceForQuestion resolves a submitted choice id against the question's own
// choices only.
func ChoiceForQuestion(raw string, choices []models.Choice) (models.Choice, error) {
	nf := &NotFoundError{Kind: "choice", ID: raw}
	if strings.TrimSpace(raw) == "" {
		return models.Choice{}, nf
	}
	id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil {
		return models.Choice{}, nf
	}
	for _, c := range choices {
		if c.ID == id {
			return c, nil
		}
	}
	return models.Choice{}, nf
}

// Authorize runs the two request gates in order: a session must exist, and
// when staff is set the user must carry the staff flag.
func Authorize(user *models.User, staff bool) error {
	if user == nil {
		return ErrUnauthenticated
	}
	if staff && !user.IsStaff {
		return ErrForbidden
	}
	return nil
}

const maxUsernameLen = 150

var usernameRe = regexp.MustCompile(`^[\w.@+-]+$`)

// Registration is the sign-up form.
type Registration struct {
	Username  string
	Password1 string
	Password2 string
	FirstName string
	LastName  string
}

// ValidateRegistration checks the sign-up form. Username uniqueness is left
// to the store.
func ValidateRegistration(reg Registration) error {
	ve := &ValidationError{}
	if err := Required(Field{"username", reg.Username}); err != nil {
		ve.Errors = append(ve.Errors, err.(*ValidationError).Errors...)
	}
	// passwords are taken verbatim, so only a truly empty value is missing
	if reg.Password1 == "" {
		ve.Add("password1", requiredMessage)
	}
	if reg.Password2 == "" {
		ve.Add("password2", requiredMessage)
	}

	if u := strings.TrimSpace(reg.Username); u != "" {
		if len([]rune(u)) > maxUsernameLen {
			ve.Add("username", fmt.Sprintf("Ensure this value has at most %d characters.", maxUsernameLen))
		} else if !usernameRe.MatchString(u) {
			ve.Add("username", "Enter a valid username. This value may contain only letters, numbers, and @/./+/-/_ characters.")
		}
	}

	if reg.Password1 != "" && reg.Password2 != "" && reg.Password1 != reg.Password2 {
		ve.Add("password2", "The two password fields didn't match.")
	}

	return ve.Err()
}
